package event

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Status is the backend review status of a scraped event.
type Status string

const (
	StatusUnimported Status = "unimported"
	StatusImported   Status = "imported"
)

// ID is an opaque event identifier. The backend may send it as a JSON
// string or number; both decode to the same textual form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Instant is a start time as reported by the backend. Values that cannot be
// parsed decode to the zero time and are treated as absent.
type Instant struct {
	time.Time
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (i *Instant) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		i.Time = time.Time{}
		return nil
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			i.Time = t
			return nil
		}
	}
	i.Time = time.Time{}
	return nil
}

func (i Instant) MarshalJSON() ([]byte, error) {
	if i.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(i.Time.UTC().Format(time.RFC3339))
}

// Summary is one scraped event as surfaced to the review console.
type Summary struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	StartTime   *Instant `json:"start_time,omitempty"`
	Venue       string   `json:"venue,omitempty"`
	City        string   `json:"city,omitempty"`
	Description string   `json:"description,omitempty"`
	SourceName  string   `json:"source_name,omitempty"`
	SourceURL   string   `json:"source_url,omitempty"`
	Status      Status   `json:"status,omitempty"`
	ImportNotes string   `json:"importNotes,omitempty"`
	ImportedBy  string   `json:"importedBy,omitempty"`
}

// Start returns the event start time, if known.
func (s Summary) Start() (time.Time, bool) {
	if s.StartTime == nil || s.StartTime.IsZero() {
		return time.Time{}, false
	}
	return s.StartTime.Time, true
}

// IsImported reports whether the event has already been promoted.
func (s Summary) IsImported() bool {
	return s.Status == StatusImported
}

// Page is the events query response envelope.
type Page struct {
	Count   int       `json:"count,omitempty"`
	Results []Summary `json:"results"`
}
