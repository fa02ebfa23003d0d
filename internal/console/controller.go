package console

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/rpggio/eventsadmin/internal/domain/event"
)

// Options wires a Console.
type Options struct {
	Events      EventsSource
	Importer    Importer
	DefaultCity string
	PageSize    int
	Logger      *slog.Logger

	// NewLoadID overrides load identity generation in tests.
	NewLoadID func() string
}

// Console drives the review workflow over a single page of events.
type Console struct {
	mu    sync.Mutex
	state State

	events      EventsSource
	importer    Importer
	defaultCity string
	pageSize    int
	logger      *slog.Logger
	newLoadID   func() string
}

// New creates a Console with default criteria and an empty list.
func New(opts Options) *Console {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	newLoadID := opts.NewLoadID
	if newLoadID == nil {
		newLoadID = uuid.NewString
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	criteria := event.DefaultCriteria(opts.DefaultCity)
	return &Console{
		state:       NewState(criteria),
		events:      opts.Events,
		importer:    opts.Importer,
		defaultCity: criteria.City,
		pageSize:    pageSize,
		logger:      logger,
		newLoadID:   newLoadID,
	}
}

// State returns a copy of the current state.
func (c *Console) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// LoadEvents replaces the list with page 1 for the current criteria. Any
// failure leaves the list ready and empty. If another load is issued before
// this one returns, this one's result is dropped.
func (c *Console) LoadEvents(ctx context.Context) {
	loadID := c.newLoadID()

	c.mu.Lock()
	c.state = beginLoad(c.state, loadID)
	criteria := c.state.Criteria
	c.mu.Unlock()

	logger := c.logger.With("load_id", loadID)
	events, err := c.fetch(ctx, criteria)
	if err != nil {
		logger.Warn("failed to load events", "error", err, "city", criteria.City, "q", criteria.Q)
		events = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	next, applied := applyLoad(c.state, loadID, events)
	if !applied {
		logger.Debug("discarded superseded events response")
		return
	}
	c.state = next
	logger.Debug("events loaded", "count", len(next.Events))
}

func (c *Console) fetch(ctx context.Context, criteria event.FilterCriteria) ([]event.Summary, error) {
	if c.events == nil {
		return nil, fmt.Errorf("no events source configured")
	}
	query, err := event.BuildQuery(criteria, c.pageSize)
	if err != nil {
		return nil, err
	}
	return c.events.ListEvents(ctx, query)
}

// SelectEvent selects a listed event. Unlisted ids leave the selection as is.
func (c *Console) SelectEvent(id event.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, id)
	}
	c.state = selectEvent(c.state, id)
	return nil
}

// SetCriteria replaces the filter criteria without reloading.
func (c *Console) SetCriteria(criteria event.FilterCriteria) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = setCriteria(c.state, criteria)
}

// ResetCriteria restores the default criteria without reloading.
func (c *Console) ResetCriteria() {
	c.SetCriteria(event.DefaultCriteria(c.defaultCity))
}

// SetImportNotes sets the notes attached to the next import.
func (c *Console) SetImportNotes(notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = setImportNotes(c.state, notes)
}

// SetAuthenticated applies a session transition. Signing in loads the list;
// signing out clears it.
func (c *Console) SetAuthenticated(ctx context.Context, authenticated bool) {
	c.mu.Lock()
	if !authenticated {
		c.state = signOut(c.state)
		c.mu.Unlock()
		return
	}
	c.state = signIn(c.state)
	c.mu.Unlock()
	c.LoadEvents(ctx)
}

// TriggerImport imports id through the proxy. It returns false without
// doing anything when id is unlisted, already imported or already importing.
// The in-flight flag for id is released on every exit path.
func (c *Console) TriggerImport(ctx context.Context, id event.ID, notes string) bool {
	c.mu.Lock()
	next, ok := beginImport(c.state, id)
	c.state = next
	c.mu.Unlock()
	if !ok {
		c.logger.Debug("import ignored", "event_id", id.String())
		return false
	}

	outcome := importOutcome{message: importMessage(id.String(), fmt.Errorf("import aborted"))}
	defer func() {
		c.mu.Lock()
		c.state = finishImport(c.state, id, outcome)
		c.mu.Unlock()
	}()

	err := c.runImport(ctx, id, notes)
	outcome = importOutcome{ok: err == nil, notes: notes, message: importMessage(id.String(), err)}
	if err != nil {
		c.logger.Warn("import failed", "event_id", id.String(), "error", err)
	} else {
		c.logger.Info("event imported", "event_id", id.String())
	}
	return true
}

func (c *Console) runImport(ctx context.Context, id event.ID, notes string) error {
	if c.importer == nil {
		return fmt.Errorf("no importer configured")
	}
	res, err := c.importer.Import(ctx, id, notes)
	if err != nil {
		return err
	}
	if !res.OK() {
		return &ImportError{StatusCode: res.StatusCode, Detail: res.Detail()}
	}
	return nil
}
