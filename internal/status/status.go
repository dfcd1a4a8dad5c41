package status

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidReference      = errors.New("ref code: missing or invalid ticket reference")
	ErrRefCodeNotFound       = errors.New("ref code: ref code not found")
	ErrInvalidTransferForm   = errors.New("transfer: invalid transfer form")
	ErrUnknownForm           = errors.New("transfer: unknown form name")
	ErrUpstreamNotConfigured = errors.New("upstream: attendee api base url or event id not configured")
)

// UpstreamError reports a failed call to the attendee API. StatusCode is
// zero when no response was received.
type UpstreamError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("upstream: status %d (%s): %v", e.StatusCode, e.Reason, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("upstream: status %d (%s)", e.StatusCode, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("upstream: %s: %v", e.Reason, e.Err)
	default:
		return "upstream: " + e.Reason
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err is, or wraps, an UpstreamError.
func IsUpstream(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream)
}
