package main

import (
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/rpggio/eventsadmin/internal/config"
	"github.com/rpggio/eventsadmin/internal/console"
	"github.com/rpggio/eventsadmin/internal/mcp"
)

func newReviewConsole(cfg config.Config, token string, logger *slog.Logger) *console.Console {
	events := console.NewEventsClient(console.EventsClientOptions{
		BaseURL:  cfg.Backend.BaseURL,
		RetryMax: cfg.Console.RetryMax,
		Timeout:  cfg.Backend.Timeout,
		Logger:   logger,
	})
	importer := console.NewProxyClient(cfg.Console.ProxyURL, token, &http.Client{Timeout: 2 * cfg.Backend.Timeout})
	return console.New(console.Options{
		Events:      events,
		Importer:    importer,
		DefaultCity: cfg.Console.City,
		PageSize:    cfg.Console.PageSize,
		Logger:      logger,
	})
}

func newConsoleCommand(ctx *commandContext) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Serve the review console as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// Stdout carries the protocol; logs go to stderr.
			logger, closeLog := ctx.logger(cmd.ErrOrStderr())
			defer closeLog()

			if strings.TrimSpace(token) == "" {
				token = cfg.Console.OperatorToken
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			review := newReviewConsole(cfg, token, logger)
			if token != "" {
				review.SetAuthenticated(runCtx, true)
			} else {
				logger.Warn("no operator token; imports will be rejected by the proxy")
			}

			server := mcp.NewServer(mcp.Config{Console: review, Logger: logger})
			logger.Info("starting stdio transport", "proxy_url", cfg.Console.ProxyURL)
			return server.Run(runCtx, &sdkmcp.StdioTransport{})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Operator session token (defaults to "+config.EnvOperatorToken+")")
	return cmd
}
