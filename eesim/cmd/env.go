package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/flexee/config"
)

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env [FILE]",
		Short: "Print or save the effective settings.",
		Long: "`env` prints every settings key with its effective value. " +
			"`env FILE` saves them to FILE, which --env can read back.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				return config.Write(settings, args[0])
			}

			env := config.Env(settings)
			for _, key := range config.Keys() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", key, env[key])
			}

			return nil
		},
	}
}
