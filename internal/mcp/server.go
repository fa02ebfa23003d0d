package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/eventsadmin/internal/console"
	"github.com/rpggio/eventsadmin/internal/domain/event"
)

const serverInstructions = `Review console for scraped events.

Call list_events to load the first page for the current filters (city defaults to Sydney).
The list is only available once the console holds an operator session.
Every tool returns the console state: rows, selection, in-flight imports and the last message.
import_event promotes one event through the authorization proxy. Rows that are already
imported or importing are skipped; check "accepted" and the message for the outcome.`

// Console is the review console driven by the tools.
type Console interface {
	LoadEvents(ctx context.Context)
	SetCriteria(criteria event.FilterCriteria)
	ResetCriteria()
	SelectEvent(id event.ID) error
	SetImportNotes(notes string)
	TriggerImport(ctx context.Context, id event.ID, notes string) bool
	State() console.State
	Snapshot() console.Snapshot
}

// Config contains server configuration.
type Config struct {
	Console Console
	Version string
	Logger  *slog.Logger
}

// NewServer creates an MCP server exposing the console as tools.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "eventsadmin",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Console)

	return server
}
