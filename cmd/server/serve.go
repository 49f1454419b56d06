package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/godilite/feedback-server/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context())
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, c.cfg, c.logger)
	if err != nil {
		c.logger.Error("Failed to initialize application", zap.Error(err))
		return err
	}

	if c.cfg.SeedFile != "" {
		seed, err := app.LoadSeed(c.cfg.SeedFile)
		if err == nil {
			err = application.Seed(ctx, seed)
		}
		if err != nil {
			_ = application.Close()
			return fmt.Errorf("seed from %s: %w", c.cfg.SeedFile, err)
		}
	}

	if err := application.Run(ctx); err != nil {
		c.logger.Error("Application exited with error", zap.Error(err))
		return err
	}
	return nil
}
