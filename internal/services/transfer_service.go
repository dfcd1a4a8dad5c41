package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"ticket-lookup/internal/status"
	"ticket-lookup/models"
	"ticket-lookup/monitoring"
)

// TransferStore persists transfer submissions.
type TransferStore interface {
	LatestForTicket(ctx context.Context, ticketID string) (*models.TransferRecord, error)
	Save(ctx context.Context, rec *models.TransferRecord) error
}

// Notifier tells the people who reconcile transfers by hand that one
// arrived.
type Notifier interface {
	Publish(ctx context.Context, channel string, message any) error
}

// TicketResolver is the subset of TicketService the transfer intake needs.
type TicketResolver interface {
	Resolve(ctx context.Context, ref string) (*models.Ticket, error)
}

// TransferService accepts transfer form submissions when this service acts
// as the form sink. A stored record is a request, not a completed change:
// the attendee API is never written to and its records are reconciled by
// an operator.
type TransferService struct {
	store    TransferStore
	resolver TicketResolver
	notifier Notifier
	channel  string
	monitor  *monitoring.Monitor
}

// NewTransferService creates the intake. resolver and notifier may be nil.
func NewTransferService(store TransferStore, resolver TicketResolver, notifier Notifier, channel string, monitor *monitoring.Monitor) *TransferService {
	return &TransferService{
		store:    store,
		resolver: resolver,
		notifier: notifier,
		channel:  channel,
		monitor:  monitor,
	}
}

// TransferNotice is the message published for each stored transfer.
type TransferNotice struct {
	Type          string    `json:"type"`
	RecordID      string    `json:"record_id"`
	TicketID      string    `json:"ticket_id"`
	NewName       string    `json:"new_name"`
	NewEmail      string    `json:"new_email"`
	PreviousOwner string    `json:"previous_owner,omitempty"`
	ReceivedAt    time.Time `json:"received_at"`
}

// Receive validates and stores one submission of the named form.
func (s *TransferService) Receive(ctx context.Context, formName string, form models.TransferForm) (*models.TransferRecord, error) {
	if formName != models.TransferFormName {
		s.monitor.TrackTransfer("unknown_form")
		return nil, fmt.Errorf("%w: %q", status.ErrUnknownForm, formName)
	}

	form = form.Trimmed()
	if err := ValidateTransfer(form); err != nil {
		s.monitor.TrackTransfer("invalid")
		return nil, fmt.Errorf("%w: %w", status.ErrInvalidTransferForm, err)
	}

	rec := &models.TransferRecord{
		TicketID:    models.NormalizeRef(form.TicketID),
		NewName:     form.NewName,
		NewEmail:    form.NewEmail,
		NewPhone:    form.NewPhone,
		Reason:      form.Reason,
		CountryCode: form.CountryCode,
	}
	rec.PreviousOwner = s.previousOwner(ctx, rec.TicketID)

	if err := s.store.Save(ctx, rec); err != nil {
		s.monitor.TrackTransfer("store_error")
		return nil, fmt.Errorf("receive transfer: save: %w", err)
	}
	s.monitor.TrackTransfer("accepted")
	slog.Info("transfer received", "record_id", rec.ID, "ticket_id", rec.TicketID)

	s.notify(ctx, rec)
	return rec, nil
}

// previousOwner is the owner named by the latest stored transfer, or the
// current upstream holder when the ticket was never transferred. Failures
// only cost the hint.
func (s *TransferService) previousOwner(ctx context.Context, ticketID string) string {
	if ticketID == "" {
		return ""
	}

	latest, err := s.store.LatestForTicket(ctx, ticketID)
	if err != nil {
		slog.Warn("transfer: previous transfer lookup failed", "ticket_id", ticketID, "error", err)
	} else if latest != nil {
		return latest.NewName
	}

	if s.resolver == nil {
		return ""
	}
	ticket, err := s.resolver.Resolve(ctx, ticketID)
	if err != nil {
		slog.Warn("transfer: current owner lookup failed", "ticket_id", ticketID, "error", err)
		return ""
	}
	return ticket.OwnerName
}

func (s *TransferService) notify(ctx context.Context, rec *models.TransferRecord) {
	if s.notifier == nil || s.channel == "" {
		return
	}

	notice := TransferNotice{
		Type:          "ticket_transfer",
		RecordID:      rec.ID,
		TicketID:      rec.TicketID,
		NewName:       rec.NewName,
		NewEmail:      rec.NewEmail,
		PreviousOwner: rec.PreviousOwner,
		ReceivedAt:    rec.CreatedAt,
	}
	if err := s.notifier.Publish(ctx, s.channel, notice); err != nil {
		slog.Error("transfer: notify operators", "record_id", rec.ID, "channel", s.channel, "error", err)
	}
}

// ValidateTransfer checks the required transfer fields.
func ValidateTransfer(form models.TransferForm) error {
	return validation.Errors{
		models.FieldNewName:  validation.Validate(form.NewName, validation.Required, validation.Length(1, 200)),
		models.FieldNewEmail: validation.Validate(form.NewEmail, validation.Required, is.EmailFormat),
		models.FieldNewPhone: validation.Validate(form.NewPhone, validation.Required, validation.Length(4, 32)),
	}.Filter()
}
