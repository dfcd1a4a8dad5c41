package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-lookup/internal/status"
	"ticket-lookup/models"
)

type memoryStore struct {
	mu      sync.Mutex
	records []*models.TransferRecord
	saveErr error
	findErr error
}

func (m *memoryStore) LatestForTicket(_ context.Context, ticketID string) (*models.TransferRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].TicketID == ticketID {
			return m.records[i], nil
		}
	}
	return nil, nil
}

func (m *memoryStore) Save(_ context.Context, rec *models.TransferRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	rec.ID = fmt.Sprintf("rec%d", len(m.records)+1)
	rec.CreatedAt = time.Now().UTC()
	m.records = append(m.records, rec)
	return nil
}

type recordingNotifier struct {
	channels []string
	messages []any
	err      error
}

func (n *recordingNotifier) Publish(_ context.Context, channel string, message any) error {
	n.channels = append(n.channels, channel)
	n.messages = append(n.messages, message)
	return n.err
}

type fixedResolver struct {
	ticket *models.Ticket
	err    error
	calls  int
}

func (r *fixedResolver) Resolve(_ context.Context, _ string) (*models.Ticket, error) {
	r.calls++
	return r.ticket, r.err
}

func validForm() models.TransferForm {
	return models.TransferForm{
		TicketID:    " d91de9e1 ",
		NewName:     "  Ola Nordmann ",
		NewEmail:    "ola@example.no",
		NewPhone:    "98765432",
		Reason:      "Kan ikke komme",
		CountryCode: "+47",
	}
}

func TestTransferService_Receive_StoresAndNotifies(t *testing.T) {
	store := &memoryStore{}
	notifier := &recordingNotifier{}
	resolver := &fixedResolver{ticket: &models.Ticket{ID: "D91DE9E1", OwnerName: "Kari Nordmann"}}
	svc := NewTransferService(store, resolver, notifier, "ticket-transfers", nil)

	rec, err := svc.Receive(context.Background(), models.TransferFormName, validForm())

	require.NoError(t, err)
	assert.Equal(t, "rec1", rec.ID)
	assert.Equal(t, "D91DE9E1", rec.TicketID)
	assert.Equal(t, "Ola Nordmann", rec.NewName)
	assert.Equal(t, "Kari Nordmann", rec.PreviousOwner)
	assert.Equal(t, "+47", rec.CountryCode)
	require.Len(t, store.records, 1)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "ticket-transfers", notifier.channels[0])
	notice, ok := notifier.messages[0].(TransferNotice)
	require.True(t, ok)
	assert.Equal(t, "ticket_transfer", notice.Type)
	assert.Equal(t, "rec1", notice.RecordID)
	assert.Equal(t, "Kari Nordmann", notice.PreviousOwner)
}

func TestTransferService_Receive_PreviousOwnerFromLatestTransfer(t *testing.T) {
	store := &memoryStore{}
	resolver := &fixedResolver{ticket: &models.Ticket{OwnerName: "Kari Nordmann"}}
	svc := NewTransferService(store, resolver, nil, "", nil)

	_, err := svc.Receive(context.Background(), models.TransferFormName, validForm())
	require.NoError(t, err)

	second := validForm()
	second.NewName = "Per Hansen"
	rec, err := svc.Receive(context.Background(), models.TransferFormName, second)

	require.NoError(t, err)
	assert.Equal(t, "Ola Nordmann", rec.PreviousOwner)
	assert.Equal(t, 1, resolver.calls)
}

func TestTransferService_Receive_OwnerHintIsBestEffort(t *testing.T) {
	store := &memoryStore{findErr: errors.New("db gone")}
	resolver := &fixedResolver{err: status.ErrRefCodeNotFound}
	svc := NewTransferService(store, resolver, nil, "", nil)

	rec, err := svc.Receive(context.Background(), models.TransferFormName, validForm())

	require.NoError(t, err)
	assert.Empty(t, rec.PreviousOwner)
}

func TestTransferService_Receive_UnknownForm(t *testing.T) {
	store := &memoryStore{}
	svc := NewTransferService(store, nil, nil, "", nil)

	_, err := svc.Receive(context.Background(), "contact", validForm())

	assert.ErrorIs(t, err, status.ErrUnknownForm)
	assert.Empty(t, store.records)
}

func TestTransferService_Receive_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.TransferForm)
	}{
		{"blank name", func(f *models.TransferForm) { f.NewName = "   " }},
		{"missing email", func(f *models.TransferForm) { f.NewEmail = "" }},
		{"malformed email", func(f *models.TransferForm) { f.NewEmail = "ola(at)example" }},
		{"missing phone", func(f *models.TransferForm) { f.NewPhone = "" }},
		{"short phone", func(f *models.TransferForm) { f.NewPhone = "12" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			notifier := &recordingNotifier{}
			svc := NewTransferService(store, nil, notifier, "ticket-transfers", nil)

			form := validForm()
			tt.mutate(&form)
			_, err := svc.Receive(context.Background(), models.TransferFormName, form)

			assert.ErrorIs(t, err, status.ErrInvalidTransferForm)
			assert.Empty(t, store.records)
			assert.Empty(t, notifier.messages)
		})
	}
}

func TestTransferService_Receive_StoreFailure(t *testing.T) {
	store := &memoryStore{saveErr: errors.New("disk full")}
	notifier := &recordingNotifier{}
	svc := NewTransferService(store, nil, notifier, "ticket-transfers", nil)

	_, err := svc.Receive(context.Background(), models.TransferFormName, validForm())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, notifier.messages)
}

func TestTransferService_Receive_NotifyFailureKeepsRecord(t *testing.T) {
	store := &memoryStore{}
	notifier := &recordingNotifier{err: errors.New("pubnub down")}
	svc := NewTransferService(store, nil, notifier, "ticket-transfers", nil)

	rec, err := svc.Receive(context.Background(), models.TransferFormName, validForm())

	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Len(t, store.records, 1)
}

func TestValidateTransfer(t *testing.T) {
	assert.NoError(t, ValidateTransfer(validForm().Trimmed()))

	err := ValidateTransfer(models.TransferForm{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), models.FieldNewName)
	assert.Contains(t, err.Error(), models.FieldNewEmail)
	assert.Contains(t, err.Error(), models.FieldNewPhone)
}
