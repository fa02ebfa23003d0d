package console

import (
	"testing"

	"github.com/rpggio/eventsadmin/internal/domain/event"
	"github.com/stretchr/testify/require"
)

func summaries(ids ...string) []event.Summary {
	out := make([]event.Summary, 0, len(ids))
	for _, id := range ids {
		out = append(out, event.Summary{ID: event.ID(id), Title: "Event " + id, Status: event.StatusUnimported})
	}
	return out
}

func loaded(ids ...string) State {
	s := beginLoad(NewState(event.DefaultCriteria("")), "load-1")
	s, _ = applyLoad(s, "load-1", summaries(ids...))
	return s
}

func TestApplyLoad_SelectionFallsBackToFirst(t *testing.T) {
	s := loaded("A", "B", "C")
	require.Equal(t, event.ID("A"), s.SelectedID)

	s = selectEvent(s, "B")
	require.Equal(t, event.ID("B"), s.SelectedID)

	s = beginLoad(s, "load-2")
	s, applied := applyLoad(s, "load-2", summaries("C", "D"))
	require.True(t, applied)
	require.Equal(t, event.ID("C"), s.SelectedID)
	require.Equal(t, ListReady, s.Status)
}

func TestApplyLoad_SelectionKeptWhenStillListed(t *testing.T) {
	s := selectEvent(loaded("A", "B", "C"), "B")

	s = beginLoad(s, "load-2")
	s, _ = applyLoad(s, "load-2", summaries("D", "B"))
	require.Equal(t, event.ID("B"), s.SelectedID)
}

func TestApplyLoad_EmptyListClearsSelection(t *testing.T) {
	s := loaded("A")

	s = beginLoad(s, "load-2")
	s, _ = applyLoad(s, "load-2", nil)
	require.Empty(t, s.SelectedID)
	require.Empty(t, s.Events)
	require.Equal(t, ListReady, s.Status)
	_, ok := s.Selected()
	require.False(t, ok)
}

func TestApplyLoad_IgnoresSupersededLoad(t *testing.T) {
	s := loaded("A")
	s = beginLoad(s, "older")
	s = beginLoad(s, "newer")

	s, applied := applyLoad(s, "older", summaries("X"))
	require.False(t, applied)
	require.Equal(t, ListLoading, s.Status)

	s, applied = applyLoad(s, "newer", summaries("Y"))
	require.True(t, applied)
	require.Equal(t, event.ID("Y"), s.SelectedID)

	_, applied = applyLoad(s, "newer", summaries("Z"))
	require.False(t, applied)
}

func TestSelectEvent_UnlistedIsNoOp(t *testing.T) {
	s := loaded("A", "B")
	next := selectEvent(s, "Z")
	require.Equal(t, event.ID("A"), next.SelectedID)
}

func TestBeginImport_Guard(t *testing.T) {
	s := loaded("A", "B")
	s.Events[1].Status = event.StatusImported

	s, ok := beginImport(s, "A")
	require.True(t, ok)
	require.True(t, s.Importing("A"))

	_, ok = beginImport(s, "A")
	require.False(t, ok, "in-flight row")

	_, ok = beginImport(s, "B")
	require.False(t, ok, "imported row")

	_, ok = beginImport(s, "missing")
	require.False(t, ok, "unlisted row")
}

func TestBeginImport_ClearsMessage(t *testing.T) {
	s := loaded("A")
	s.Message = "Imported: Z"

	s, ok := beginImport(s, "A")
	require.True(t, ok)
	require.Empty(t, s.Message)
}

func TestFinishImport_Success(t *testing.T) {
	s := loaded("A", "B")
	s.Events[0].ImportNotes = "earlier"
	s, _ = beginImport(s, "A")
	s, _ = beginImport(s, "B")

	s = finishImport(s, "A", importOutcome{ok: true, message: "Imported: A"})
	require.False(t, s.Importing("A"))
	require.True(t, s.Importing("B"))
	require.Equal(t, event.StatusImported, s.Events[0].Status)
	require.Equal(t, "earlier", s.Events[0].ImportNotes)
	require.Equal(t, "Imported: A", s.Message)

	s = finishImport(s, "B", importOutcome{ok: true, notes: "fresh", message: "Imported: B"})
	require.Equal(t, "fresh", s.Events[1].ImportNotes)
	require.Empty(t, s.InFlight)
}

func TestFinishImport_FailureKeepsStatus(t *testing.T) {
	s := loaded("A")
	s, _ = beginImport(s, "A")

	s = finishImport(s, "A", importOutcome{message: "Import failed: 500"})
	require.False(t, s.Importing("A"))
	require.Equal(t, event.StatusUnimported, s.Events[0].Status)
	require.Equal(t, "Import failed: 500", s.Message)
}

func TestTransitions_DoNotMutateInput(t *testing.T) {
	s := loaded("A", "B")
	before := s.clone()

	_, _ = beginImport(s, "A")
	_ = finishImport(s, "A", importOutcome{ok: true})
	_ = selectEvent(s, "B")

	require.Equal(t, before.Events, s.Events)
	require.Equal(t, before.SelectedID, s.SelectedID)
	require.Empty(t, s.InFlight)
}

func TestSignOut_ClearsOperatorState(t *testing.T) {
	s := signIn(loaded("A"))
	s = setImportNotes(s, "note")
	s = setCriteria(s, event.FilterCriteria{City: "Perth"})
	s = beginLoad(s, "pending")

	s = signOut(s)
	require.False(t, s.Authenticated)
	require.Empty(t, s.Events)
	require.Empty(t, s.SelectedID)
	require.Empty(t, s.ImportNotes)
	require.Equal(t, ListIdle, s.Status)
	require.Equal(t, "Perth", s.Criteria.City)

	_, applied := applyLoad(s, "pending", summaries("A"))
	require.False(t, applied)
}

func TestSignOut_KeepsPendingImports(t *testing.T) {
	s := signIn(loaded("A", "B"))
	s, _ = beginImport(s, "A")

	s = signOut(s)
	require.True(t, s.Importing("A"))
	require.False(t, s.Importing("B"))

	s = signIn(s)
	s, _ = applyLoad(beginLoad(s, "again"), "again", summaries("A", "B"))
	_, ok := beginImport(s, "A")
	require.False(t, ok, "A is still importing")

	s = finishImport(s, "A", importOutcome{ok: true, message: "Imported: A"})
	require.False(t, s.Importing("A"))
	require.Equal(t, event.StatusImported, s.Events[0].Status)
}

func TestSnapshot_Rows(t *testing.T) {
	s := loaded("A", "B")
	s.Events[1].Status = event.StatusImported
	s, _ = beginImport(s, "A")

	snap := s.Snapshot(nil)
	require.Equal(t, "ready", snap.Status)
	require.Equal(t, []string{"A"}, snap.Importing)
	require.Len(t, snap.Rows, 2)

	require.Equal(t, LabelImporting, snap.Rows[0].ImportLabel)
	require.False(t, snap.Rows[0].CanImport)
	require.True(t, snap.Rows[0].Selected)
	require.Equal(t, "TBA", snap.Rows[0].When)

	require.Equal(t, LabelImported, snap.Rows[1].ImportLabel)
	require.False(t, snap.Rows[1].CanImport)

	s = finishImport(s, "A", importOutcome{message: "Import failed: 500"})
	snap = s.Snapshot(nil)
	require.Equal(t, LabelImport, snap.Rows[0].ImportLabel)
	require.True(t, snap.Rows[0].CanImport)
}
