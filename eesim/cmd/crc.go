package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/flexee/crc"
)

func newCRCCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crc [HEX...]",
		Short: "Compute CRC-16 checksums.",
		Long: "Without arguments, `crc` prints the checksum of the configuration " +
			"set and tells if the stored checksum matches it. With arguments, " +
			"it prints the CRC-16 of each hex string.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				for _, arg := range args {
					data, err := hex.DecodeString(strings.TrimPrefix(arg, "0x"))
					if err != nil {
						return errors.Wrapf(err, "invalid hex %q", arg)
					}

					fmt.Fprintf(out, "0x%04x %s\n", crc.Checksum(data), arg)
				}

				return nil
			}

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			cfg := settings.Config
			sum := cfg.ComputeChecksum()

			status := okColor("match")
			if sum != cfg.Checksum {
				status = failColor(fmt.Sprintf("stored 0x%04x", cfg.Checksum))
			}

			fmt.Fprintf(out, "0x%04x %s\n", sum, status)

			return nil
		},
	}
}
