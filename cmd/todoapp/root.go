package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "todoapp",
	Short: "Todo app server, client and end-to-end harness",
	Long: `Run the todo REST API, manage todos from the command line, load SQL
fixtures and drive the web UI through recorded end-to-end scenarios.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(debug)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

// Global flags
var (
	jsonOutput bool
	debug      bool
)

var logger = zap.NewNop()

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Verbose development logging")
}

// newLogger returns a production logger, or a development one with debug.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		printError(os.Stderr, err, jsonOutput)
		os.Exit(ExitGeneralError)
	}
}
