package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sarchlab/flexee/simulation"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the monitor of an idle simulator.",
		Long: "`serve` initializes the driver and serves the monitor until " +
			"interrupted. With --db, the jobs ticked through the monitor are " +
			"recorded in DB.sqlite3.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := buildSimulation(cmd)
			if err != nil {
				return err
			}
			defer s.Terminate()

			if err := s.InitDriver(); err != nil {
				return err
			}

			return serveUntilInterrupted(cmd, s)
		},
	}

	addRecordFlags(serveCmd)
	addServeFlags(serveCmd)

	return serveCmd
}

func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().String("db", "", "Record the jobs in DB.sqlite3")
	cmd.Flags().String("clickhouse", "",
		"Record the jobs in the ClickHouse server at this DSN")
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().Int("port", 0, "Monitor port, random if 0")
	cmd.Flags().Bool("browser", false, "Open the monitor in a browser")
}

func serveUntilInterrupted(cmd *cobra.Command, s *simulation.Simulation) error {
	port, _ := cmd.Flags().GetInt("port")
	openBrowser, _ := cmd.Flags().GetBool("browser")

	m, err := s.NewMonitor()
	if err != nil {
		return err
	}

	_, err = m.WithPortNumber(port).WithBrowser(openBrowser).StartServer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	<-ctx.Done()

	return nil
}
