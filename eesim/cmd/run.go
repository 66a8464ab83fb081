package cmd

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/flexee/datarecording"
	"github.com/sarchlab/flexee/simulation"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run SCRIPT",
		Short: "Run a job script against the simulator.",
		Long: "`run SCRIPT` initializes the driver and runs the jobs of the " +
			"script one after the other, printing the result of each. " +
			"Use - to read the script from standard input.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := readScript(cmd, args[0])
			if err != nil {
				return err
			}

			b, err := simulationBuilder(cmd)
			if err != nil {
				return err
			}

			if tracePath, _ := cmd.Flags().GetString("trace"); tracePath != "" {
				f, err := os.Create(tracePath)
				if err != nil {
					return err
				}
				defer f.Close()

				b = b.WithJobTrace(f)
			}

			s := b.Build()
			defer s.Terminate()

			if err := runSteps(cmd.OutOrStdout(), s, steps); err != nil {
				return err
			}

			if serve, _ := cmd.Flags().GetBool("serve"); serve {
				return serveUntilInterrupted(cmd, s)
			}

			return s.Terminate()
		},
	}

	addRecordFlags(runCmd)
	runCmd.Flags().String("trace", "",
		"Write every finished job to this file as JSON lines")
	runCmd.Flags().Bool("serve", false,
		"Keep the monitor running after the script")
	addServeFlags(runCmd)

	return runCmd
}

func buildSimulation(cmd *cobra.Command) (*simulation.Simulation, error) {
	b, err := simulationBuilder(cmd)
	if err != nil {
		return nil, err
	}

	return b.Build(), nil
}

func simulationBuilder(cmd *cobra.Command) (simulation.Builder, error) {
	settings, err := loadSettings()
	if err != nil {
		return simulation.Builder{}, err
	}

	b := simulation.MakeBuilder().
		WithSettings(settings).
		WithLogger(newLogger())

	dbPath, _ := cmd.Flags().GetString("db")
	dsn, _ := cmd.Flags().GetString("clickhouse")

	switch {
	case dbPath != "" && dsn != "":
		return simulation.Builder{},
			errors.New("--db and --clickhouse cannot be used together")
	case dbPath != "":
		b = b.WithOutputFileName(dbPath)
	case dsn != "":
		recorder, err := datarecording.NewClickHouseRecorder(dsn, 0)
		if err != nil {
			return simulation.Builder{}, err
		}

		b = b.WithDataRecorder(recorder)
	}

	return b, nil
}

func readScript(cmd *cobra.Command, name string) ([]step, error) {
	var r io.Reader = cmd.InOrStdin()

	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		r = f
	}

	return parseScript(r)
}
