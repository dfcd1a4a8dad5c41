package models

import (
	"net/url"
	"strings"
	"time"
)

// TransferFormName identifies transfer submissions at the form sink.
const TransferFormName = "ticket-transfer"

// Form field names shared by the transfer form and the sink.
const (
	FieldFormName    = "form-name"
	FieldTicketID    = "ticketId"
	FieldNewName     = "newName"
	FieldNewEmail    = "newEmail"
	FieldNewPhone    = "newPhone"
	FieldReason      = "reason"
	FieldCountryCode = "countryCode"
)

// TransferForm holds the values entered in the transfer dialog.
type TransferForm struct {
	TicketID    string
	NewName     string
	NewEmail    string
	NewPhone    string
	Reason      string
	CountryCode string
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f TransferForm) Trimmed() TransferForm {
	return TransferForm{
		TicketID:    strings.TrimSpace(f.TicketID),
		NewName:     strings.TrimSpace(f.NewName),
		NewEmail:    strings.TrimSpace(f.NewEmail),
		NewPhone:    strings.TrimSpace(f.NewPhone),
		Reason:      strings.TrimSpace(f.Reason),
		CountryCode: strings.TrimSpace(f.CountryCode),
	}
}

// Missing lists the required fields that are empty after trimming.
func (f TransferForm) Missing() []string {
	t := f.Trimmed()
	var missing []string
	if t.NewName == "" {
		missing = append(missing, FieldNewName)
	}
	if t.NewEmail == "" {
		missing = append(missing, FieldNewEmail)
	}
	if t.NewPhone == "" {
		missing = append(missing, FieldNewPhone)
	}
	return missing
}

// Values encodes the form as posted to the sink, including the fixed form
// identifier and the ticket identifier when known.
func (f TransferForm) Values() url.Values {
	t := f.Trimmed()
	v := url.Values{}
	v.Set(FieldFormName, TransferFormName)
	v.Set(FieldNewName, t.NewName)
	v.Set(FieldNewEmail, t.NewEmail)
	v.Set(FieldNewPhone, t.NewPhone)
	if t.Reason != "" {
		v.Set(FieldReason, t.Reason)
	}
	if t.CountryCode != "" {
		v.Set(FieldCountryCode, t.CountryCode)
	}
	if t.TicketID != "" {
		v.Set(FieldTicketID, t.TicketID)
	}
	return v
}

// ParseTransferForm reads a transfer submission from decoded form values.
func ParseTransferForm(v url.Values) TransferForm {
	return TransferForm{
		TicketID:    v.Get(FieldTicketID),
		NewName:     v.Get(FieldNewName),
		NewEmail:    v.Get(FieldNewEmail),
		NewPhone:    v.Get(FieldNewPhone),
		Reason:      v.Get(FieldReason),
		CountryCode: v.Get(FieldCountryCode),
	}.Trimmed()
}

// TransferRecord is a transfer as stored by the form sink.
type TransferRecord struct {
	ID            string    `json:"id"`
	TicketID      string    `json:"ticket_id"`
	NewName       string    `json:"new_name"`
	NewEmail      string    `json:"new_email"`
	NewPhone      string    `json:"new_phone"`
	Reason        string    `json:"reason,omitempty"`
	CountryCode   string    `json:"country_code,omitempty"`
	PreviousOwner string    `json:"previous_owner,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
