package testserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/eventsadmin/internal/domain/activity"
	"github.com/rpggio/eventsadmin/internal/domain/event"
	"github.com/rpggio/eventsadmin/internal/domain/operator"
	"github.com/rpggio/eventsadmin/internal/sqlite"
	"github.com/rpggio/eventsadmin/internal/transport"
	"github.com/stretchr/testify/require"
)

// AdminToken is the service credential the fake backend accepts.
const AdminToken = "backend-admin-token"

// BackendImport is one import call received by the fake backend.
type BackendImport struct {
	EventID   string
	Operator  string
	Notes     *string
	RequestID string
}

// Backend is a fake events API. It serves a fixed event list and accepts
// imports authorized with AdminToken.
type Backend struct {
	Server *httptest.Server

	mu      sync.Mutex
	events  []event.Summary
	imports []BackendImport
	queries []string
}

// NewBackend starts a fake backend serving events.
func NewBackend(t *testing.T, events []event.Summary) *Backend {
	t.Helper()

	b := &Backend{events: append([]event.Summary(nil), events...)}
	router := chi.NewRouter()
	router.Get("/events/", b.listEvents)
	router.Post("/admin/import/{id}/", b.importEvent)
	b.Server = httptest.NewServer(router)
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) listEvents(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, r.URL.RawQuery)

	city := r.URL.Query().Get("city")
	q := strings.ToLower(r.URL.Query().Get("q"))
	results := []event.Summary{}
	for _, ev := range b.events {
		if city != "" && !strings.EqualFold(ev.City, city) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(ev.Title), q) {
			continue
		}
		results = append(results, ev)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(event.Page{Count: len(results), Results: results})
}

func (b *Backend) importEvent(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(transport.HeaderAdminToken) != AdminToken {
		writeDetail(w, http.StatusForbidden, "Invalid admin token")
		return
	}
	var body struct {
		Notes *string `json:"notes"`
	}
	data, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(data, &body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid body")
		return
	}

	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ev := range b.events {
		if ev.ID.String() != id {
			continue
		}
		b.imports = append(b.imports, BackendImport{
			EventID:   id,
			Operator:  r.Header.Get(transport.HeaderUserEmail),
			Notes:     body.Notes,
			RequestID: r.Header.Get(transport.RequestIDHeader),
		})
		b.events[i].Status = event.StatusImported
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"imported"}`)
		return
	}
	writeDetail(w, http.StatusNotFound, "Not found")
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// Imports returns the imports received so far.
func (b *Backend) Imports() []BackendImport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]BackendImport(nil), b.imports...)
}

// Queries returns the raw query strings of every events request.
func (b *Backend) Queries() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.queries...)
}

// TestServer runs the authorization proxy against a fake backend with a
// sqlite session store and audit log.
type TestServer struct {
	Server   *httptest.Server
	Backend  *Backend
	DB       *sqlite.DB
	Sessions *operator.Service
	Activity *activity.Service
	Metrics  *transport.Metrics
}

// New starts a proxy wired to backend.
func New(t *testing.T, backend *Backend) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	sessions := operator.NewService(sqlite.NewOperatorSessionRepository(db), nil)
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	metrics := transport.NewMetrics()

	proxy := transport.NewImportProxy(transport.ProxyOptions{
		Config: transport.ProxyConfig{
			BaseURL:    backend.Server.URL,
			AdminToken: AdminToken,
			Timeout:    5 * time.Second,
		},
		Sessions: sessions,
		Recorder: activitySvc,
		Metrics:  metrics,
	})
	server := httptest.NewServer(transport.NewServer(proxy, metrics))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:   server,
		Backend:  backend,
		DB:       db,
		Sessions: sessions,
		Activity: activitySvc,
		Metrics:  metrics,
	}
}

// IssueToken creates an operator session and returns its token.
func (ts *TestServer) IssueToken(t *testing.T, email string) string {
	t.Helper()
	issued, err := ts.Sessions.Issue(context.Background(), email, time.Hour)
	require.NoError(t, err)
	return issued.Token
}
