// Package app implements the kickstart command line.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/kickstart/internal/config"
	"github.com/dmitrymomot/kickstart/middlewares"
	"github.com/dmitrymomot/kickstart/pkg/logger"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kickstart",
		Short:         "kickstart service",
		Long:          "kickstart serves the sample REST API, drains the sample event queue and runs scheduled jobs.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newVersionCmd())
	return root
}

// bootstrap loads the configuration and builds the process logger.
// The returned function flushes and closes log outputs.
func bootstrap() (*config.Config, *slog.Logger, func(context.Context) error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, flush := logger.New(cfg.Log,
		middlewares.RequestIDExtractor(),
		middlewares.CorrelationIDExtractor(),
	)
	log = log.With(
		slog.String("service", cfg.ServiceName),
		slog.String("profile", cfg.Profile),
	)
	slog.SetDefault(log)
	return cfg, log, flush, nil
}
