package console

import (
	"sort"
	"time"

	"github.com/rpggio/eventsadmin/internal/domain/event"
)

// Import button labels.
const (
	LabelImporting = "Importing…"
	LabelImported  = "Imported"
	LabelImport    = "Import"
)

// Row is one list entry as rendered by a console surface.
type Row struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Start       string `json:"start,omitempty"`
	When        string `json:"when"`
	Venue       string `json:"venue"`
	City        string `json:"city,omitempty"`
	Source      string `json:"source"`
	SourceURL   string `json:"source_url,omitempty"`
	Status      string `json:"status"`
	Preview     string `json:"preview,omitempty"`
	ImportNotes string `json:"import_notes,omitempty"`
	ImportLabel string `json:"import_label"`
	CanImport   bool   `json:"can_import"`
	Selected    bool   `json:"selected"`
}

// Snapshot is a rendering-ready view of the console state.
type Snapshot struct {
	Status        string               `json:"status"`
	Authenticated bool                 `json:"authenticated"`
	Criteria      event.FilterCriteria `json:"criteria"`
	ImportNotes   string               `json:"import_notes"`
	Message       string               `json:"message,omitempty"`
	SelectedID    string               `json:"selected_id,omitempty"`
	Importing     []string             `json:"importing"`
	Rows          []Row                `json:"rows"`
}

// ImportLabel returns the import button label for id.
func (s State) ImportLabel(id event.ID) string {
	if s.InFlight[id] {
		return LabelImporting
	}
	if i := s.indexOf(id); i >= 0 && s.Events[i].IsImported() {
		return LabelImported
	}
	return LabelImport
}

// Snapshot renders the state with times shown in loc.
func (s State) Snapshot(loc *time.Location) Snapshot {
	snap := Snapshot{
		Status:        string(s.Status),
		Authenticated: s.Authenticated,
		Criteria:      s.Criteria,
		ImportNotes:   s.ImportNotes,
		Message:       s.Message,
		SelectedID:    s.SelectedID.String(),
		Importing:     []string{},
		Rows:          make([]Row, 0, len(s.Events)),
	}
	for id, busy := range s.InFlight {
		if busy {
			snap.Importing = append(snap.Importing, id.String())
		}
	}
	sort.Strings(snap.Importing)

	for _, ev := range s.Events {
		row := Row{
			ID:          ev.ID.String(),
			Title:       ev.Title,
			When:        ev.When(loc),
			Venue:       ev.VenueLabel(),
			City:        ev.City,
			Source:      ev.SourceLabel(),
			SourceURL:   ev.SourceURL,
			Status:      ev.StatusLabel(),
			Preview:     ev.Preview(),
			ImportNotes: ev.ImportNotes,
			ImportLabel: s.ImportLabel(ev.ID),
			CanImport:   canImport(s, ev.ID),
			Selected:    ev.ID == s.SelectedID,
		}
		if start, ok := ev.Start(); ok {
			row.Start = start.UTC().Format(time.RFC3339)
		}
		snap.Rows = append(snap.Rows, row)
	}
	return snap
}

// Snapshot renders the current state.
func (c *Console) Snapshot() Snapshot {
	return c.State().Snapshot(time.Local)
}
