package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Attendee is one record of the upstream attendee collection. It never
// leaves the resolver.
type Attendee struct {
	RefID     string          `json:"ref_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     *string         `json:"phone"`
	ScannedAt *string         `json:"scanned_at"`
	Ticket    *AttendeeTicket `json:"ticket,omitempty"`
	User      *AttendeeUser   `json:"user,omitempty"`
}

type AttendeeTicket struct {
	Name string `json:"name"`
}

type AttendeeUser struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
}

// Key is the normalized reference code used for matching.
func (a *Attendee) Key() string {
	return NormalizeRef(a.RefID)
}

// Scanned reports whether the ticket has been used at the door.
func (a *Attendee) Scanned() bool {
	return a.ScannedAt != nil && strings.TrimSpace(*a.ScannedAt) != ""
}

// AttendeePage is one page of the upstream listing.
type AttendeePage struct {
	Data []Attendee `json:"data"`
	Meta PageMeta   `json:"meta"`
}

type PageMeta struct {
	LastPage     PageBound `json:"last_page"`
	HasMorePages *bool     `json:"has_more_pages"`
}

// PageBound is the last page number reported by the upstream. The upstream
// sends either a number or an array whose first element is the number; both
// are folded into a single optional integer when decoded.
type PageBound struct {
	value int
	set   bool
}

func NewPageBound(n int) PageBound {
	return PageBound{value: n, set: true}
}

// Get returns the bound and whether one was reported.
func (b PageBound) Get() (int, bool) {
	return b.value, b.set
}

func (b PageBound) MarshalJSON() ([]byte, error) {
	if !b.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(b.value)), nil
}

func (b *PageBound) UnmarshalJSON(data []byte) error {
	*b = PageBound{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return b.UnmarshalJSON(items[0])

	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*b = NewPageBound(int(n))
		}
		return nil

	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			// booleans and objects carry no bound
			return nil
		}
		*b = NewPageBound(int(n))
		return nil
	}
}
