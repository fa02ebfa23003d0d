package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/eventsadmin/internal/transport"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the authorization proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, closeLog := ctx.logger(cmd.OutOrStdout())
			defer closeLog()

			if cfg.Backend.BaseURL == "" || cfg.Backend.AdminToken == "" {
				logger.Warn("backend not fully configured; imports will fail",
					"api_url_set", cfg.Backend.BaseURL != "",
					"admin_token_set", cfg.Backend.AdminToken != "")
			}

			return ctx.withStore(logger, func(s *store) error {
				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				if purged, err := s.sessions.PurgeExpired(runCtx); err != nil {
					logger.Warn("failed to purge expired sessions", "error", err)
				} else if purged > 0 {
					logger.Info("purged expired sessions", "count", purged)
				}

				metrics := transport.NewMetrics()
				proxy := transport.NewImportProxy(transport.ProxyOptions{
					Config: transport.ProxyConfig{
						BaseURL:    cfg.Backend.BaseURL,
						AdminToken: cfg.Backend.AdminToken,
						Timeout:    cfg.Backend.Timeout,
					},
					Sessions:   s.sessions,
					CookieName: cfg.Session.CookieName,
					Recorder:   s.activity,
					Metrics:    metrics,
					Logger:     logger,
				})

				addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
				httpServer := &http.Server{
					Addr:              addr,
					Handler:           transport.NewServer(proxy, metrics),
					ReadHeaderTimeout: 10 * time.Second,
				}
				return serveUntilDone(runCtx, logger, httpServer)
			})
		},
	}
}

func serveUntilDone(ctx context.Context, logger *slog.Logger, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
