package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ticket-lookup/models"
)

// DefaultTimeout bounds a single lookup or transfer post.
const DefaultTimeout = 8 * time.Second

// TicketsRoute is the resolver path the lookup client calls.
const TicketsRoute = "/api/tickets"

// LookupClient fetches tickets from the resolver endpoint.
type LookupClient struct {
	base    *url.URL
	hc      *http.Client
	timeout time.Duration
}

// NewLookupClient creates a client for the resolver served at baseURL.
// hc may be nil.
func NewLookupClient(baseURL string, hc *http.Client, timeout time.Duration) (*LookupClient, error) {
	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &LookupClient{base: base, hc: hc, timeout: timeout}, nil
}

func parseBase(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(raw), "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: server url %q must be absolute", raw)
	}
	return u, nil
}

// FetchTicket looks up one ticket. It makes exactly one request and never
// retries. Empty input fails with KindInvalid without touching the network.
func (c *LookupClient) FetchTicket(ctx context.Context, refRaw string) (*models.Ticket, error) {
	ref := models.NormalizeRef(refRaw)
	if ref == "" {
		return nil, &Error{Kind: KindInvalid, Code: http.StatusBadRequest, Err: errors.New("empty reference")}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ticketURL(ref), nil)
	if err != nil {
		return nil, &Error{Kind: KindAPI, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindAPI, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: kindForStatus(resp.StatusCode), Code: resp.StatusCode}
	}

	var ticket models.Ticket
	if err := json.NewDecoder(resp.Body).Decode(&ticket); err != nil {
		return nil, &Error{Kind: KindAPI, Code: resp.StatusCode, Err: fmt.Errorf("json.Decode: %w", err)}
	}
	if strings.TrimSpace(ticket.ID) == "" {
		return nil, &Error{Kind: KindAPI, Code: resp.StatusCode, Err: errors.New("response without ticket id")}
	}
	// the resolver is deployed separately
	ticket.Status = models.NormalizeStatus(string(ticket.Status))

	return &ticket, nil
}

// ticketURL appends the ref as a single escaped path segment, so a ref
// holding "/" or ".." still reaches the resolver verbatim.
func (c *LookupClient) ticketURL(ref string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + TicketsRoute + "/" + ref
	u.RawPath = strings.TrimRight(c.base.EscapedPath(), "/") + TicketsRoute + "/" + url.PathEscape(ref)
	return u.String()
}
