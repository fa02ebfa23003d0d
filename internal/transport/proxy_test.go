package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rpggio/eventsadmin/internal/config"
	"github.com/rpggio/eventsadmin/internal/domain/activity"
	"github.com/rpggio/eventsadmin/internal/domain/operator"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type capturedCall struct {
	path    string
	headers http.Header
	body    string
}

type fakeBackend struct {
	mu     sync.Mutex
	calls  []capturedCall
	status int
	body   string
	ctype  string
	err    error
}

func (b *fakeBackend) client() *http.Client {
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.calls = append(b.calls, capturedCall{path: r.URL.EscapedPath(), headers: r.Header.Clone(), body: string(data)})
		b.mu.Unlock()
		if b.err != nil {
			return nil, b.err
		}
		header := http.Header{}
		if b.ctype != "" {
			header.Set("Content-Type", b.ctype)
		}
		return &http.Response{
			StatusCode: b.status,
			Header:     header,
			Body:       io.NopCloser(strings.NewReader(b.body)),
			Request:    r,
		}, nil
	})}
}

func (b *fakeBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

type memoryRecorder struct {
	mu      sync.Mutex
	entries []activity.ImportEntry
	err     error
}

func (m *memoryRecorder) RecordImport(_ context.Context, entry *activity.ImportEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return m.err
}

var validConfig = ProxyConfig{BaseURL: "http://backend.test/api", AdminToken: "svc-secret"}

func operatorResolver() *testResolver {
	return &testResolver{tokenToSession: map[string]*operator.Session{
		"tok":       {Email: "ops@example.com"},
		"anonymous": {},
	}}
}

func newTestProxy(cfg ProxyConfig, backend *fakeBackend, recorder ImportRecorder) *ImportProxy {
	return NewImportProxy(ProxyOptions{
		Config:   cfg,
		Sessions: operatorResolver(),
		Client:   backend.client(),
		Recorder: recorder,
		Metrics:  NewMetrics(),
	})
}

func doImport(t *testing.T, proxy http.Handler, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, ImportPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestImportProxy_Unauthorized(t *testing.T) {
	for _, token := range []string{"", "unknown", "anonymous"} {
		backend := &fakeBackend{status: http.StatusOK}
		proxy := newTestProxy(validConfig, backend, nil)

		rec := doImport(t, proxy, token, `{"event_id":"42"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "token %q", token)
		require.Equal(t, ErrorBody{Error: "Unauthorized"}, decodeError(t, rec))
		require.Zero(t, backend.callCount())
	}
}

func TestImportProxy_UnauthorizedBeforeConfigCheck(t *testing.T) {
	backend := &fakeBackend{status: http.StatusOK}
	proxy := newTestProxy(ProxyConfig{}, backend, nil)

	rec := doImport(t, proxy, "", `{}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestImportProxy_MissingEventID(t *testing.T) {
	for _, body := range []string{`{}`, `{"event_id":""}`, `{"event_id":"  "}`, `{"event_id":null}`, `{"event_id":0}`, `{"event_id":0.0}`, `{"event_id":false}`, ``, `{"notes":"x"}`} {
		backend := &fakeBackend{status: http.StatusOK}
		proxy := newTestProxy(validConfig, backend, nil)

		rec := doImport(t, proxy, "tok", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		require.Equal(t, ErrorBody{Error: "Missing event_id"}, decodeError(t, rec))
		require.Zero(t, backend.callCount())
	}
}

func TestImportProxy_MalformedBody(t *testing.T) {
	backend := &fakeBackend{status: http.StatusOK}
	proxy := newTestProxy(validConfig, backend, nil)

	rec := doImport(t, proxy, "tok", `{"event_id":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, backend.callCount())
}

func TestImportProxy_NonScalarEventID(t *testing.T) {
	for _, body := range []string{`{"event_id":true}`, `{"event_id":{"id":1}}`, `{"event_id":[1]}`} {
		backend := &fakeBackend{status: http.StatusOK}
		proxy := newTestProxy(validConfig, backend, nil)

		rec := doImport(t, proxy, "tok", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		require.Equal(t, ErrorBody{Error: "Invalid request body"}, decodeError(t, rec))
		require.Zero(t, backend.callCount())
	}
}

func TestImportProxy_MissingConfiguration(t *testing.T) {
	cases := []struct {
		name string
		cfg  ProxyConfig
		want string
	}{
		{name: "base url", cfg: ProxyConfig{AdminToken: "svc"}, want: "Missing " + config.EnvAPIURL},
		{name: "admin token", cfg: ProxyConfig{BaseURL: "http://backend.test"}, want: "Missing " + config.EnvAdminToken},
		{name: "both", cfg: ProxyConfig{}, want: "Missing " + config.EnvAPIURL},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend := &fakeBackend{status: http.StatusOK}
			proxy := newTestProxy(tc.cfg, backend, nil)

			rec := doImport(t, proxy, "tok", `{"event_id":"42"}`)
			require.Equal(t, http.StatusInternalServerError, rec.Code)
			require.Equal(t, ErrorBody{Error: tc.want}, decodeError(t, rec))
			require.Zero(t, backend.callCount())
		})
	}
}

func TestImportProxy_ForwardsAndRelays(t *testing.T) {
	backend := &fakeBackend{status: http.StatusOK, body: `{"status":"imported"}`, ctype: "application/json"}
	recorder := &memoryRecorder{}
	proxy := newTestProxy(validConfig, backend, recorder)

	rec := doImport(t, proxy, "tok", `{"event_id":"42","notes":"ok"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"status":"imported"}`, rec.Body.String())

	require.Equal(t, 1, backend.callCount())
	call := backend.calls[0]
	require.Equal(t, "/api/admin/import/42/", call.path)
	require.Equal(t, "svc-secret", call.headers.Get(HeaderAdminToken))
	require.Equal(t, "ops@example.com", call.headers.Get(HeaderUserEmail))
	require.Equal(t, "application/json", call.headers.Get("Content-Type"))
	require.JSONEq(t, `{"notes":"ok"}`, call.body)

	require.Len(t, recorder.entries, 1)
	require.Equal(t, "42", recorder.entries[0].EventID)
	require.Equal(t, activity.OutcomeImported, recorder.entries[0].Outcome)
	require.Equal(t, "ops@example.com", recorder.entries[0].Operator)
}

func TestImportProxy_NullNotes(t *testing.T) {
	for _, body := range []string{`{"event_id":"42"}`, `{"event_id":"42","notes":""}`, `{"event_id":"42","notes":null}`} {
		backend := &fakeBackend{status: http.StatusOK, body: `{}`}
		proxy := newTestProxy(validConfig, backend, nil)

		rec := doImport(t, proxy, "tok", body)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"notes":null}`, backend.calls[0].body)
	}
}

func TestImportProxy_EncodesEventID(t *testing.T) {
	backend := &fakeBackend{status: http.StatusOK}
	proxy := newTestProxy(ProxyConfig{BaseURL: "http://backend.test/api/", AdminToken: "svc"}, backend, nil)

	doImport(t, proxy, "tok", `{"event_id":"a/b c"}`)
	require.Equal(t, "/api/admin/import/a%2Fb%20c/", backend.calls[0].path)

	doImport(t, proxy, "tok", `{"event_id":7}`)
	require.Equal(t, "/api/admin/import/7/", backend.calls[1].path)
}

func TestImportProxy_RelaysBackendFailureUnchanged(t *testing.T) {
	backend := &fakeBackend{status: http.StatusNotFound, body: `{"detail":"Not found"}`, ctype: "application/json"}
	recorder := &memoryRecorder{}
	proxy := newTestProxy(validConfig, backend, recorder)

	rec := doImport(t, proxy, "tok", `{"event_id":"42"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"detail":"Not found"}`, rec.Body.String())
	require.Equal(t, activity.OutcomeRejected, recorder.entries[0].Outcome)
}

func TestImportProxy_DefaultContentType(t *testing.T) {
	backend := &fakeBackend{status: http.StatusAccepted, body: "queued"}
	proxy := newTestProxy(validConfig, backend, nil)

	rec := doImport(t, proxy, "tok", `{"event_id":"42"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	require.Equal(t, "queued", rec.Body.String())
}

func TestImportProxy_BackendUnreachable(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	recorder := &memoryRecorder{}
	proxy := newTestProxy(validConfig, backend, recorder)

	rec := doImport(t, proxy, "tok", `{"event_id":"42"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeError(t, rec)
	require.Equal(t, "Failed to reach backend", body.Error)
	require.Equal(t, "connection refused", body.Details)
	require.Equal(t, 1, backend.callCount())

	require.Len(t, recorder.entries, 1)
	require.Equal(t, activity.OutcomeBadGateway, recorder.entries[0].Outcome)
	require.Equal(t, "connection refused", recorder.entries[0].Details)
}

func TestImportProxy_RealConnectionFailure(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	baseURL := closed.URL
	closed.Close()

	proxy := NewImportProxy(ProxyOptions{
		Config:   ProxyConfig{BaseURL: baseURL, AdminToken: "svc"},
		Sessions: operatorResolver(),
	})

	rec := doImport(t, proxy, "tok", `{"event_id":"42"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.NotEmpty(t, decodeError(t, rec).Details)
}

func TestImportProxy_AuditFailureDoesNotChangeResponse(t *testing.T) {
	backend := &fakeBackend{status: http.StatusOK, body: `{"status":"imported"}`, ctype: "application/json"}
	proxy := newTestProxy(validConfig, backend, &memoryRecorder{err: errors.New("disk full")})

	rec := doImport(t, proxy, "tok", `{"event_id":"42"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestImportProxy_CookieSession(t *testing.T) {
	backend := &fakeBackend{status: http.StatusOK, body: `{}`}
	proxy := NewImportProxy(ProxyOptions{
		Config:     validConfig,
		Sessions:   operatorResolver(),
		CookieName: "console_sid",
		Client:     backend.client(),
	})

	req := httptest.NewRequest(http.MethodPost, ImportPath, strings.NewReader(`{"event_id":"42"}`))
	req.AddCookie(&http.Cookie{Name: "console_sid", Value: "tok"})
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ops@example.com", backend.calls[0].headers.Get(HeaderUserEmail))
}

func TestImportProxy_ThroughRouter(t *testing.T) {
	backend := &fakeBackend{status: http.StatusOK, body: `{"status":"imported"}`, ctype: "application/json"}
	proxy := newTestProxy(validConfig, backend, nil)
	server := httptest.NewServer(NewServer(proxy, nil))
	t.Cleanup(server.Close)

	req, err := http.NewRequest(http.MethodPost, server.URL+ImportPath, strings.NewReader(`{"event_id":"42"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set(RequestIDHeader, "req-9")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "req-9", backend.calls[0].headers.Get(RequestIDHeader))
}
