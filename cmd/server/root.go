package main

import (
	"fmt"

	"github.com/godilite/feedback-server/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries what every subcommand needs once the root has run.
type cli struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (c *cli) setup() error {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "feedbackd",
		Short: "Service-center customer feedback server",
		Long: `feedbackd collects customer feedback for service centers and reports
on it: category averages, period comparisons, daily trends and per-center
rankings over HTTP and gRPC.

Configuration is read from the environment (and a .env file when present).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context())
		},
	}

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newSeedCmd(c),
		newExportCmd(c),
	)
	return root
}
