package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/rpggio/eventsadmin/internal/config"
	"github.com/rpggio/eventsadmin/internal/domain/activity"
	"github.com/rpggio/eventsadmin/internal/domain/event"
	"github.com/rpggio/eventsadmin/internal/domain/operator"
)

// Backend request metadata headers.
const (
	HeaderAdminToken = "X-Admin-Token"
	HeaderUserEmail  = "X-User-Email"
)

const (
	defaultRelayContentType = "text/plain"
	maxImportBodyBytes      = 64 << 10
)

// ProxyConfig is the deployment configuration the proxy needs. Empty values
// are reported by key name at request time.
type ProxyConfig struct {
	BaseURL    string
	AdminToken string
	Timeout    time.Duration
}

// ImportRecorder receives an audit entry for every import that was forwarded.
type ImportRecorder interface {
	RecordImport(ctx context.Context, entry *activity.ImportEntry) error
}

// ProxyOptions wires an ImportProxy.
type ProxyOptions struct {
	Config     ProxyConfig
	Sessions   SessionResolver
	CookieName string
	Client     *http.Client
	Recorder   ImportRecorder
	Metrics    *Metrics
	Logger     *slog.Logger
}

// ImportProxy gates the backend import action behind an operator session
// and injects the service credential.
type ImportProxy struct {
	cfg        ProxyConfig
	sessions   SessionResolver
	cookieName string
	client     *http.Client
	recorder   ImportRecorder
	metrics    *Metrics
	logger     *slog.Logger
}

// NewImportProxy creates an ImportProxy.
func NewImportProxy(opts ProxyOptions) *ImportProxy {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Config.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cookieName := opts.CookieName
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return &ImportProxy{
		cfg:        opts.Config,
		sessions:   opts.Sessions,
		cookieName: cookieName,
		client:     client,
		recorder:   opts.Recorder,
		metrics:    opts.Metrics,
		logger:     logger,
	}
}

// ImportRequest is the browser-facing request body.
type ImportRequest struct {
	EventID event.ID `json:"event_id"`
	Notes   *string  `json:"notes"`
}

type backendImportBody struct {
	Notes *string `json:"notes"`
}

// ServeHTTP handles POST /api/admin/import.
func (p *ImportProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)
	logger := p.logger.With("request_id", reqID)

	sess := resolveOperator(r, p.sessions, p.cookieName)
	if sess == nil {
		p.fail(w, logger, unauthorized())
		return
	}
	logger = logger.With("operator", sess.Email)

	req, perr := decodeImportRequest(r.Body)
	if perr != nil {
		p.fail(w, logger, perr)
		return
	}
	logger = logger.With("event_id", req.EventID.String())

	if p.cfg.BaseURL == "" {
		p.fail(w, logger, misconfigured(config.EnvAPIURL))
		return
	}
	if p.cfg.AdminToken == "" {
		p.fail(w, logger, misconfigured(config.EnvAdminToken))
		return
	}

	p.forward(r.Context(), w, logger, reqID, sess, req)
}

func decodeImportRequest(body io.Reader) (ImportRequest, *ProxyError) {
	var req ImportRequest
	data, err := io.ReadAll(io.LimitReader(body, maxImportBodyBytes))
	if err != nil {
		return req, badRequest("Invalid request body")
	}
	var wire struct {
		EventID json.RawMessage `json:"event_id"`
		Notes   *string         `json:"notes"`
	}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &wire); err != nil {
			return req, badRequest("Invalid request body")
		}
	}
	if blankEventID(wire.EventID) {
		return req, badRequest("Missing event_id")
	}
	if err := json.Unmarshal(wire.EventID, &req.EventID); err != nil {
		return req, badRequest("Invalid request body")
	}
	req.Notes = wire.Notes
	if req.Notes != nil && *req.Notes == "" {
		req.Notes = nil
	}
	return req, nil
}

// blankEventID reports whether raw is absent or a falsy JSON value: null,
// false, 0 or a blank string.
func blankEventID(raw json.RawMessage) bool {
	v := gjson.ParseBytes(raw)
	switch v.Type {
	case gjson.Null, gjson.False:
		return true
	case gjson.String:
		return strings.TrimSpace(v.Str) == ""
	case gjson.Number:
		return v.Num == 0
	}
	return false
}

func (p *ImportProxy) backendURL(eventID event.ID) string {
	base := strings.TrimRight(p.cfg.BaseURL, "/")
	return base + "/admin/import/" + url.PathEscape(eventID.String()) + "/"
}

func (p *ImportProxy) forward(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, reqID string, sess *operator.Session, req ImportRequest) {
	payload, err := json.Marshal(backendImportBody{Notes: req.Notes})
	if err != nil {
		p.fail(w, logger, badRequest("Invalid request body"))
		return
	}

	out, err := http.NewRequestWithContext(ctx, http.MethodPost, p.backendURL(req.EventID), bytes.NewReader(payload))
	if err != nil {
		p.fail(w, logger, misconfigured(config.EnvAPIURL))
		return
	}
	out.Header.Set("Content-Type", "application/json")
	out.Header.Set(HeaderAdminToken, p.cfg.AdminToken)
	out.Header.Set(HeaderUserEmail, sess.Email)
	out.Header.Set(RequestIDHeader, reqID)

	entry := &activity.ImportEntry{
		RequestID: reqID,
		EventID:   req.EventID.String(),
		Operator:  sess.Email,
		Notes:     req.Notes,
	}
	unreachable := func(err error) {
		entry.StatusCode = http.StatusBadGateway
		entry.Outcome = activity.OutcomeBadGateway
		entry.Details = failureDetails(err)
		p.audit(ctx, logger, entry)
		p.fail(w, logger, badGateway(entry.Details))
	}

	started := time.Now()
	resp, err := p.client.Do(out)
	if err != nil {
		unreachable(err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		unreachable(err)
		return
	}
	elapsed := time.Since(started)

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultRelayContentType
	}

	entry.StatusCode = resp.StatusCode
	entry.Outcome = activity.OutcomeForStatus(resp.StatusCode)
	p.audit(ctx, logger, entry)
	p.metrics.observeRelay(resp.StatusCode, elapsed)
	logger.Info("import relayed", "status", resp.StatusCode, "elapsed", elapsed)

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(body)
}

func (p *ImportProxy) audit(ctx context.Context, logger *slog.Logger, entry *activity.ImportEntry) {
	if p.recorder == nil {
		return
	}
	// Audit writes outlive the inbound request.
	if err := p.recorder.RecordImport(context.WithoutCancel(ctx), entry); err != nil {
		logger.Warn("failed to record import activity", "error", err)
	}
}

func (p *ImportProxy) fail(w http.ResponseWriter, logger *slog.Logger, e *ProxyError) {
	p.metrics.observeFailure(e)
	attrs := []any{"kind", e.kindLabel(), "status", e.Status(), "error", e.Message}
	if e.Details != "" {
		attrs = append(attrs, "details", e.Details)
	}
	switch {
	case errors.Is(e, ErrServerMisconfigured):
		logger.Error("import proxy misconfigured", attrs...)
	case errors.Is(e, ErrBadGateway):
		logger.Error("import backend unreachable", attrs...)
	default:
		logger.Warn("import request rejected", attrs...)
	}
	writeProxyError(w, e)
}

// failureDetails strips the request line net/http prepends to transport errors.
func failureDetails(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "unknown error"
}
