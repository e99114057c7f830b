package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vietddude/guardian/internal/control"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the connectivity probe, journal pruner and diagnostics server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := control.NewGuardian(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize guardian: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	slog.Info("Guardian serving", "config", cfgPath, "port", cfg.Server.Port)
	if err := app.Run(ctx); err != nil {
		return err
	}
	slog.Info("Received signal, shut down")
	return nil
}
