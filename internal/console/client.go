package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rpggio/eventsadmin/internal/domain/event"
	"github.com/rpggio/eventsadmin/internal/transport"
	"github.com/tidwall/gjson"
)

const maxResponseBytes = 4 << 20

// EventsSource fetches a page of events.
type EventsSource interface {
	ListEvents(ctx context.Context, q event.Query) ([]event.Summary, error)
}

// Importer asks the authorization proxy to import an event. The error is
// reserved for failures to get any response at all.
type Importer interface {
	Import(ctx context.Context, id event.ID, notes string) (*ImportResult, error)
}

// ImportResult is the relayed proxy response.
type ImportResult struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx response.
func (r *ImportResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Detail returns the best available failure description: the body's detail
// field, then its error field, then the status code.
func (r *ImportResult) Detail() string {
	if gjson.ValidBytes(r.Body) {
		for _, path := range []string{"detail", "error"} {
			if v := gjson.GetBytes(r.Body, path); v.Exists() && v.String() != "" {
				return v.String()
			}
		}
	}
	return strconv.Itoa(r.StatusCode)
}

// EventsClient reads the public events endpoint. Reads are idempotent, so
// transient failures are retried.
type EventsClient struct {
	baseURL string
	http    *retryablehttp.Client
}

// EventsClientOptions configures an EventsClient.
type EventsClientOptions struct {
	BaseURL  string
	RetryMax int
	Timeout  time.Duration
	Logger   *slog.Logger
}

// NewEventsClient creates an EventsClient.
func NewEventsClient(opts EventsClientOptions) *EventsClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}
	rc.Logger = nil
	if opts.Logger != nil {
		rc.Logger = opts.Logger
	}
	return &EventsClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    rc,
	}
}

// ListEvents issues GET <base>/events/?<query> and decodes the results.
func (c *EventsClient) ListEvents(ctx context.Context, q event.Query) ([]event.Summary, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("events base url is not configured")
	}
	endpoint := c.baseURL + "/events/?" + q.Values().Encode()
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build events request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read events response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch events: unexpected status %d", resp.StatusCode)
	}

	var page event.Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode events response: %w", err)
	}
	return page.Results, nil
}

// ProxyClient calls the authorization proxy with an operator session token.
// Imports are never retried.
type ProxyClient struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewProxyClient creates a ProxyClient for the proxy at baseURL.
func NewProxyClient(baseURL, token string, client *http.Client) *ProxyClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ProxyClient{
		endpoint: strings.TrimRight(baseURL, "/") + transport.ImportPath,
		token:    token,
		http:     client,
	}
}

// Import posts {event_id, notes} to the proxy and returns whatever it relays.
func (c *ProxyClient) Import(ctx context.Context, id event.ID, notes string) (*ImportResult, error) {
	payload, err := json.Marshal(transport.ImportRequest{EventID: id, Notes: notesOrNil(notes)})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	return &ImportResult{StatusCode: resp.StatusCode, Body: body}, nil
}

func notesOrNil(notes string) *string {
	if notes == "" {
		return nil
	}
	return &notes
}
