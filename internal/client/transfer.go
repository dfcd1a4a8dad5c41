package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ticket-lookup/models"
)

// TransferSink posts transfer forms to the form host. Only the HTTP status
// is inspected: the sink has no response body contract.
type TransferSink struct {
	endpoint *url.URL
	hc       *http.Client
	timeout  time.Duration
}

// NewTransferSink creates a sink posting to the root of baseURL.
func NewTransferSink(baseURL string, hc *http.Client, timeout time.Duration) (*TransferSink, error) {
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
	return &TransferSink{endpoint: base.JoinPath("/"), hc: hc, timeout: timeout}, nil
}

// Submit sends one url-encoded post of form. Any 2xx response is success.
func (s *TransferSink) Submit(ctx context.Context, form models.TransferForm) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body := strings.NewReader(form.Values().Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint.String(), body)
	if err != nil {
		return &Error{Kind: KindAPI, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.hc.Do(req)
	if err != nil {
		return &Error{Kind: KindAPI, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: KindAPI, Code: resp.StatusCode}
	}
	return nil
}
