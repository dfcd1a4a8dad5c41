package attendee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ticket-lookup/internal/status"
	"ticket-lookup/models"
	"ticket-lookup/monitoring"
	"ticket-lookup/utils"
)

// maxLoggedBody caps how much of an upstream error body reaches the log.
const maxLoggedBody = 512

type Config struct {
	BaseURL string
	EventID string
	Token   string

	// Timeout bounds a single page request.
	Timeout time.Duration

	Breaker utils.Settings
}

// Client reads the attendee listing of one event from the ticketing API.
type Client struct {
	// endpoint is {BaseURL}/{EventID}/attendees, nil when not configured.
	endpoint *url.URL

	// token is sent as a bearer credential when set.
	token string

	hc      *http.Client
	breaker *utils.CircuitBreaker
	monitor *monitoring.Monitor
}

// NewClient creates an attendee API client. A client built from an
// incomplete config is still usable: every FetchPage fails with
// status.ErrUpstreamNotConfigured.
func NewClient(cfg Config, monitor *monitoring.Monitor) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	settings := cfg.Breaker
	if settings.IsSuccessful == nil {
		// a caller giving up is not an upstream failure
		settings.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		}
	}

	return &Client{
		endpoint: buildEndpoint(cfg.BaseURL, cfg.EventID),
		token:    strings.TrimSpace(cfg.Token),
		hc:       &http.Client{Timeout: timeout},
		breaker:  utils.NewCircuitBreaker("attendee-api", settings),
		monitor:  monitor,
	}
}

func buildEndpoint(base, eventID string) *url.URL {
	base = strings.TrimSpace(base)
	eventID = strings.TrimSpace(eventID)
	if base == "" || eventID == "" {
		return nil
	}

	u, err := url.Parse(strings.TrimRight(base, "/") + "/" + url.PathEscape(eventID) + "/attendees")
	if err != nil || u.Scheme == "" || u.Host == "" {
		slog.Error("attendee api: invalid base url", "base", base, "error", err)
		return nil
	}
	return u
}

// Configured reports whether the base url and event id were provided.
func (c *Client) Configured() bool {
	return c.endpoint != nil
}

// PageURL returns the request url for page n.
func (c *Client) PageURL(page int) string {
	if c.endpoint == nil {
		return ""
	}
	u := *c.endpoint
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// FetchPage performs one GET for the given page. Responses are never served
// from a cache. Failures are returned as *status.UpstreamError.
func (c *Client) FetchPage(ctx context.Context, page int) (*models.AttendeePage, error) {
	if c.endpoint == nil {
		return nil, &status.UpstreamError{Reason: "not configured", Err: status.ErrUpstreamNotConfigured}
	}

	var result *models.AttendeePage
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		result, err = c.fetch(ctx, page)
		return err
	})

	switch {
	case errors.Is(err, utils.ErrOpenState), errors.Is(err, utils.ErrTooManyRequests):
		c.monitor.TrackPageFetch("breaker_open")
		slog.Warn("attendee api: circuit breaker rejected request", "page", page, "state", c.breaker.State().String())
		return nil, &status.UpstreamError{Reason: "circuit open", Err: err}
	case err != nil:
		return nil, err
	}

	c.monitor.TrackPageFetch("ok")
	return result, nil
}

func (c *Client) fetch(ctx context.Context, page int) (*models.AttendeePage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PageURL(page), nil)
	if err != nil {
		return nil, &status.UpstreamError{Reason: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.monitor.TrackPageFetch("transport_error")
		slog.Error("attendee api: request failed", "page", page, "reason", "transport", "error", err)
		return nil, &status.UpstreamError{Reason: "request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
		c.monitor.TrackPageFetch("http_error")
		slog.Error("attendee api: unexpected status",
			"page", page,
			"status", resp.StatusCode,
			"reason", http.StatusText(resp.StatusCode),
			"body", string(body),
		)
		return nil, &status.UpstreamError{StatusCode: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}

	var reply models.AttendeePage
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		c.monitor.TrackPageFetch("decode_error")
		slog.Error("attendee api: invalid body", "page", page, "reason", "decode", "error", err)
		return nil, &status.UpstreamError{StatusCode: resp.StatusCode, Reason: "decode", Err: fmt.Errorf("json.Decode: %w", err)}
	}

	return &reply, nil
}
