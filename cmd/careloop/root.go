package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/verdantlabs/careloop/internal/config"
	"github.com/verdantlabs/careloop/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "careloop",
	Short: "CareLoop — personal health companion",
	Long:  `CareLoop is a personal health-tracking assistant with conversation memory and store-grounded answers.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
