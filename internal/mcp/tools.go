package mcp

import (
	"context"
	"errors"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/eventsadmin/internal/console"
	"github.com/rpggio/eventsadmin/internal/domain/event"
)

// ErrSignInRequired is returned by list_events before an operator session is
// attached to the console.
var ErrSignInRequired = errors.New("sign in required: start the console with an operator token")

type ListEventsParams struct {
	City     *string `json:"city,omitempty" jsonschema:"city filter where an empty string clears it"`
	Q        *string `json:"q,omitempty" jsonschema:"keyword filter"`
	FromDate *string `json:"from_date,omitempty" jsonschema:"earliest start date as YYYY-MM-DD"`
	ToDate   *string `json:"to_date,omitempty" jsonschema:"latest start date as YYYY-MM-DD"`
}

type SelectEventParams struct {
	ID string `json:"id" jsonschema:"id of a listed event"`
}

type SetImportNotesParams struct {
	Notes string `json:"notes" jsonschema:"notes sent with the next import"`
}

type ImportEventParams struct {
	ID    string  `json:"id" jsonschema:"id of a listed event"`
	Notes *string `json:"notes,omitempty" jsonschema:"import notes that default to the console notes"`
}

type EmptyParams struct{}

// StateResult is the output of every tool.
type StateResult struct {
	Accepted *bool            `json:"accepted,omitempty"`
	Console  console.Snapshot `json:"console"`
}

func registerTools(server *sdkmcp.Server, c Console) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_events",
		Description: "Apply the given filters (omitted fields keep their value) and load page 1",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListEventsParams) (*sdkmcp.CallToolResult, StateResult, error) {
		if !c.State().Authenticated {
			return nil, StateResult{}, ErrSignInRequired
		}
		c.SetCriteria(mergeCriteria(c.State().Criteria, in))
		c.LoadEvents(ctx)
		return nil, StateResult{Console: c.Snapshot()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "reset_filters",
		Description: "Restore the default filters without reloading",
	}, func(_ context.Context, _ *sdkmcp.CallToolRequest, _ EmptyParams) (*sdkmcp.CallToolResult, StateResult, error) {
		c.ResetCriteria()
		return nil, StateResult{Console: c.Snapshot()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "select_event",
		Description: "Select a listed event",
	}, func(_ context.Context, _ *sdkmcp.CallToolRequest, in SelectEventParams) (*sdkmcp.CallToolResult, StateResult, error) {
		if err := c.SelectEvent(event.ID(in.ID)); err != nil {
			return nil, StateResult{}, err
		}
		return nil, StateResult{Console: c.Snapshot()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_import_notes",
		Description: "Set the notes attached to subsequent imports",
	}, func(_ context.Context, _ *sdkmcp.CallToolRequest, in SetImportNotesParams) (*sdkmcp.CallToolResult, StateResult, error) {
		c.SetImportNotes(in.Notes)
		return nil, StateResult{Console: c.Snapshot()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "import_event",
		Description: "Import a listed event through the authorization proxy",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ImportEventParams) (*sdkmcp.CallToolResult, StateResult, error) {
		notes := c.State().ImportNotes
		if in.Notes != nil {
			notes = *in.Notes
		}
		accepted := c.TriggerImport(ctx, event.ID(in.ID), notes)
		return nil, StateResult{Accepted: &accepted, Console: c.Snapshot()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "console_state",
		Description: "Return the current console state",
	}, func(_ context.Context, _ *sdkmcp.CallToolRequest, _ EmptyParams) (*sdkmcp.CallToolResult, StateResult, error) {
		return nil, StateResult{Console: c.Snapshot()}, nil
	})
}

func mergeCriteria(current event.FilterCriteria, in ListEventsParams) event.FilterCriteria {
	if in.City != nil {
		current.City = *in.City
	}
	if in.Q != nil {
		current.Q = *in.Q
	}
	if in.FromDate != nil {
		current.FromDate = *in.FromDate
	}
	if in.ToDate != nil {
		current.ToDate = *in.ToDate
	}
	return current
}
