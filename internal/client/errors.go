package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call for the page controller.
type Kind int

const (
	KindInvalid Kind = iota + 1
	KindNotFound
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

// Error is returned by every client call. Code is the HTTP status, or 0 when
// no response was received.
type Error struct {
	Kind Kind
	Code int
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("client: %s", e.Kind)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, KindAPI for errors not produced by this
// package and 0 for nil.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindAPI
}

// kindForStatus maps a non-success response status.
func kindForStatus(code int) Kind {
	switch code {
	case 404:
		return KindNotFound
	case 400:
		return KindInvalid
	default:
		return KindAPI
	}
}
