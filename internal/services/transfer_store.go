package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"ticket-lookup/models"
)

// TransfersCollection holds transfer submissions received by the form sink.
const TransfersCollection = "ticket_transfers"

// RecordTransferStore stores transfers as records of TransfersCollection.
type RecordTransferStore struct {
	app core.App
}

func NewRecordTransferStore(app core.App) *RecordTransferStore {
	return &RecordTransferStore{app: app}
}

type transferRow struct {
	ID            string         `db:"id"`
	TicketID      string         `db:"ticket_id"`
	NewName       string         `db:"new_name"`
	NewEmail      string         `db:"new_email"`
	NewPhone      string         `db:"new_phone"`
	Reason        string         `db:"reason"`
	CountryCode   string         `db:"country_code"`
	PreviousOwner string         `db:"previous_owner"`
	Created       types.DateTime `db:"created"`
}

func (r *transferRow) toModel() *models.TransferRecord {
	return &models.TransferRecord{
		ID:            r.ID,
		TicketID:      r.TicketID,
		NewName:       r.NewName,
		NewEmail:      r.NewEmail,
		NewPhone:      r.NewPhone,
		Reason:        r.Reason,
		CountryCode:   r.CountryCode,
		PreviousOwner: r.PreviousOwner,
		CreatedAt:     r.Created.Time(),
	}
}

// LatestForTicket returns the most recent transfer of a ticket, or nil.
func (s *RecordTransferStore) LatestForTicket(ctx context.Context, ticketID string) (*models.TransferRecord, error) {
	var row transferRow
	err := s.app.DB().
		Select("id", "ticket_id", "new_name", "new_email", "new_phone", "reason", "country_code", "previous_owner", "created").
		From(TransfersCollection).
		Where(dbx.HashExp{"ticket_id": ticketID}).
		OrderBy("created DESC").
		Limit(1).
		WithContext(ctx).
		One(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest transfer: %w", err)
	}
	return row.toModel(), nil
}

// ListForTicket returns all transfers of a ticket, oldest first.
func (s *RecordTransferStore) ListForTicket(ctx context.Context, ticketID string) ([]*models.TransferRecord, error) {
	var rows []transferRow
	err := s.app.DB().
		Select("id", "ticket_id", "new_name", "new_email", "new_phone", "reason", "country_code", "previous_owner", "created").
		From(TransfersCollection).
		Where(dbx.HashExp{"ticket_id": ticketID}).
		OrderBy("created ASC").
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}

	records := make([]*models.TransferRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toModel())
	}
	return records, nil
}

// Save creates a record and fills in its id and creation time.
func (s *RecordTransferStore) Save(ctx context.Context, rec *models.TransferRecord) error {
	collection, err := s.app.FindCollectionByNameOrId(TransfersCollection)
	if err != nil {
		return fmt.Errorf("save transfer: collection: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("ticket_id", rec.TicketID)
	record.Set("new_name", rec.NewName)
	record.Set("new_email", rec.NewEmail)
	record.Set("new_phone", rec.NewPhone)
	record.Set("reason", rec.Reason)
	record.Set("country_code", rec.CountryCode)
	record.Set("previous_owner", rec.PreviousOwner)

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("save transfer: %w", err)
	}

	rec.ID = record.Id
	rec.CreatedAt = record.GetDateTime("created").Time()
	return nil
}
