package console

import (
	"github.com/rpggio/eventsadmin/internal/domain/event"
)

// ListStatus is the lifecycle of the event list.
type ListStatus string

const (
	ListIdle    ListStatus = "idle"
	ListLoading ListStatus = "loading"
	ListReady   ListStatus = "ready"
)

// State is the full console state. Every transition below takes a State and
// returns a new one; the receiver is never mutated.
type State struct {
	Status        ListStatus
	Events        []event.Summary
	SelectedID    event.ID
	InFlight      map[event.ID]bool
	Message       string
	Criteria      event.FilterCriteria
	ImportNotes   string
	Authenticated bool

	// loadID identifies the most recently issued list load. Responses for
	// any other load are discarded.
	loadID string
}

// NewState returns the state of a console that has not loaded anything yet.
func NewState(criteria event.FilterCriteria) State {
	return State{
		Status:   ListIdle,
		InFlight: map[event.ID]bool{},
		Criteria: criteria,
	}
}

func (s State) clone() State {
	next := s
	next.Events = append([]event.Summary(nil), s.Events...)
	next.InFlight = make(map[event.ID]bool, len(s.InFlight))
	for id, busy := range s.InFlight {
		if busy {
			next.InFlight[id] = true
		}
	}
	return next
}

func (s State) indexOf(id event.ID) int {
	if id == "" {
		return -1
	}
	for i, ev := range s.Events {
		if ev.ID == id {
			return i
		}
	}
	return -1
}

// Selected returns the selected event, if any.
func (s State) Selected() (event.Summary, bool) {
	i := s.indexOf(s.SelectedID)
	if i < 0 {
		return event.Summary{}, false
	}
	return s.Events[i], true
}

// Importing reports whether an import for id is outstanding.
func (s State) Importing(id event.ID) bool {
	return s.InFlight[id]
}

// reconcileSelection keeps a selection that is still listed, otherwise falls
// back to the first event. An empty list clears it.
func reconcileSelection(events []event.Summary, selected event.ID) event.ID {
	if len(events) == 0 {
		return ""
	}
	for _, ev := range events {
		if ev.ID == selected && selected != "" {
			return selected
		}
	}
	return events[0].ID
}

func beginLoad(s State, loadID string) State {
	next := s.clone()
	next.Status = ListLoading
	next.loadID = loadID
	return next
}

// applyLoad replaces the list with the result of load loadID. It reports
// false and leaves s untouched when loadID is no longer the current load.
func applyLoad(s State, loadID string, events []event.Summary) (State, bool) {
	if loadID == "" || loadID != s.loadID {
		return s, false
	}
	next := s.clone()
	next.Events = append([]event.Summary(nil), events...)
	next.SelectedID = reconcileSelection(next.Events, s.SelectedID)
	next.Status = ListReady
	next.loadID = ""
	return next, true
}

func selectEvent(s State, id event.ID) State {
	if s.indexOf(id) < 0 {
		return s
	}
	next := s.clone()
	next.SelectedID = id
	return next
}

func setCriteria(s State, c event.FilterCriteria) State {
	next := s.clone()
	next.Criteria = c
	return next
}

func setImportNotes(s State, notes string) State {
	next := s.clone()
	next.ImportNotes = notes
	return next
}

// canImport is the guard shared by the trigger and the row view.
func canImport(s State, id event.ID) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	return !s.InFlight[id] && !s.Events[i].IsImported()
}

// beginImport marks id as importing and clears the previous message. It
// reports false when the guard rejects the import.
func beginImport(s State, id event.ID) (State, bool) {
	if !canImport(s, id) {
		return s, false
	}
	next := s.clone()
	next.InFlight[id] = true
	next.Message = ""
	return next, true
}

type importOutcome struct {
	ok      bool
	notes   string
	message string
}

// finishImport releases id and applies the outcome. Other rows are untouched.
func finishImport(s State, id event.ID, outcome importOutcome) State {
	next := s.clone()
	delete(next.InFlight, id)
	next.Message = outcome.message
	if !outcome.ok {
		return next
	}
	if i := next.indexOf(id); i >= 0 {
		ev := next.Events[i]
		ev.Status = event.StatusImported
		if outcome.notes != "" {
			ev.ImportNotes = outcome.notes
		}
		next.Events[i] = ev
	}
	return next
}

// signIn marks the console authenticated.
func signIn(s State) State {
	next := s.clone()
	next.Authenticated = true
	return next
}

// signOut drops everything tied to the operator. Criteria survive and any
// pending load is orphaned. In-flight flags survive too: an outstanding
// import still resolves and releases its own id.
func signOut(s State) State {
	next := NewState(s.Criteria)
	for id, busy := range s.InFlight {
		if busy {
			next.InFlight[id] = true
		}
	}
	return next
}
