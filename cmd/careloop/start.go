package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/verdantlabs/careloop/pkg/log"
	"github.com/verdantlabs/careloop/pkg/srv"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the CareLoop services",
	Long:  `Initializes storage, the conversation engine, and the configured transports (HTTP API, CLI).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting careloop")

		services := NewServices(ctx)

		srv.StartServices(ctx, services)

		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("careloop has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
