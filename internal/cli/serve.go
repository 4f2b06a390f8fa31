package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/contactbook/internal/api"
)

const shutdownTimeout = 30 * time.Second

func (a *app) newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return a.runServe(cmd.Context(), a.logger(cmd, "api"))
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on (overrides config)")
	return cmd
}

// runServe runs the API server until ctx is cancelled.
func (a *app) runServe(ctx context.Context, logger *slog.Logger) error {
	svc, closeDB, err := a.openService(logger)
	if err != nil {
		return err
	}
	defer closeDB()

	apiCfg := api.Config{
		Port:           a.cfg.Server.Port,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		BirthdayDays:   a.cfg.Birthdays.DefaultDays,
	}
	server := api.NewServer(apiCfg, svc, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		return err
	}
	if err := <-errCh; err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
