// Package cmd provides the command-line interface of eesim.
package cmd

import (
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sarchlab/flexee/config"
)

var (
	envFiles []string
	verbose  int
)

// newRootCmd builds the base command with every subcommand attached. Each
// call returns a fresh tree with its flags at their defaults.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "eesim",
		Short: "eesim runs emulated-EEPROM jobs against a simulated flash controller.",
		Long: `eesim runs emulated-EEPROM jobs against a simulated flash ` +
			`controller. Settings are read from .env files given with --env; ` +
			`see the env command for the keys.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringSliceVarP(&envFiles, "env", "e", nil,
		"Settings files, later files win")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v",
		"Log controller diagnostics, twice to log every event")

	rootCmd.AddCommand(
		newCRCCmd(),
		newEnvCmd(),
		newRunCmd(),
		newServeCmd(),
	)

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := newRootCmd().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func loadSettings() (config.Settings, error) {
	if len(envFiles) == 0 {
		return config.Defaults(), nil
	}

	return config.Load(envFiles...)
}

func newLogger() logr.Logger {
	level := zapcore.Level(-verbose)

	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	zapLog := zap.New(core)

	atexit.Register(func() {
		_ = zapLog.Sync()
	})

	return zapr.NewLogger(zapLog)
}
