package event

import (
	"time"
	"unicode/utf8"
)

const (
	placeholderTBA    = "TBA"
	placeholderNone   = "—"
	previewRuneLimit  = 90
	displayTimeLayout = "Mon 2 Jan 2006 15:04"
)

// When renders the start time for display, or TBA.
func (s Summary) When(loc *time.Location) string {
	start, ok := s.Start()
	if !ok {
		return placeholderTBA
	}
	if loc == nil {
		loc = time.UTC
	}
	return start.In(loc).Format(displayTimeLayout)
}

func (s Summary) VenueLabel() string {
	if s.Venue == "" {
		return placeholderTBA
	}
	return s.Venue
}

func (s Summary) SourceLabel() string {
	if s.SourceName == "" {
		return placeholderNone
	}
	return s.SourceName
}

func (s Summary) StatusLabel() string {
	if s.Status == "" {
		return placeholderNone
	}
	return string(s.Status)
}

// Preview returns the description cut to a list-row sized snippet.
func (s Summary) Preview() string {
	if utf8.RuneCountInString(s.Description) <= previewRuneLimit {
		return s.Description
	}
	runes := []rune(s.Description)
	return string(runes[:previewRuneLimit]) + "…"
}
