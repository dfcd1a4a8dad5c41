package models

import "strings"

type TicketStatus string

const (
	StatusActive  TicketStatus = "ACTIVE"
	StatusUsed    TicketStatus = "USED"
	StatusUnknown TicketStatus = "UNKNOWN"
)

// DefaultProduct is shown when neither the ticket type nor the attendee
// carries a usable label.
const DefaultProduct = "Billett"

// Ticket is the view model returned by the resolver and rendered by the
// lookup page. Phone is empty when the holder has none on record;
// OriginalOwner is only ever set locally after a transfer.
type Ticket struct {
	ID            string       `json:"id"`
	Product       string       `json:"product"`
	OwnerName     string       `json:"ownerName"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	OriginalOwner *string      `json:"originalOwner"`
	Status        TicketStatus `json:"status"`
}

// NormalizeRef returns the canonical form of a reference code used for
// matching: surrounding whitespace removed, upper case.
func NormalizeRef(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// NormalizeStatus collapses any raw status into one of the three known
// values.
func NormalizeStatus(raw string) TicketStatus {
	switch s := TicketStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusActive, StatusUsed, StatusUnknown:
		return s
	default:
		return StatusUnknown
	}
}

// HasPhone reports whether the phone row should be shown.
func (t *Ticket) HasPhone() bool {
	return strings.TrimSpace(t.Phone) != ""
}
