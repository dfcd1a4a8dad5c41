package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ticket-lookup/internal/status"
	"ticket-lookup/models"
	"ticket-lookup/monitoring"
)

// AttendeeSource fetches one page of the upstream attendee listing.
type AttendeeSource interface {
	FetchPage(ctx context.Context, page int) (*models.AttendeePage, error)
}

// TicketService resolves reference codes to tickets by searching the
// upstream attendee listing.
type TicketService struct {
	source  AttendeeSource
	timeout time.Duration
	monitor *monitoring.Monitor
}

// NewTicketService creates a resolver. timeout bounds a whole search across
// all pages; zero means no bound beyond the caller's context.
func NewTicketService(source AttendeeSource, timeout time.Duration, monitor *monitoring.Monitor) *TicketService {
	return &TicketService{
		source:  source,
		timeout: timeout,
		monitor: monitor,
	}
}

// Resolve returns the ticket whose reference code matches refRaw, ignoring
// case and surrounding whitespace. It fails with status.ErrInvalidReference
// for empty input, status.ErrRefCodeNotFound when no page holds a match and
// a *status.UpstreamError when the attendee API fails.
func (s *TicketService) Resolve(ctx context.Context, refRaw string) (*models.Ticket, error) {
	start := time.Now()

	ref := models.NormalizeRef(refRaw)
	if ref == "" {
		s.monitor.TrackLookup(monitoring.ResultInvalid, 0, time.Since(start))
		return nil, status.ErrInvalidReference
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	fetch := func(ctx context.Context, n int) (*Page[models.Attendee], error) {
		page, err := s.source.FetchPage(ctx, n)
		if err != nil {
			return nil, err
		}
		return &Page[models.Attendee]{
			Items:    page.Data,
			LastPage: page.Meta.LastPage,
			HasMore:  page.Meta.HasMorePages,
		}, nil
	}

	attendee, found, pages, err := FindFirst(ctx, fetch, func(a models.Attendee) bool {
		return a.Key() == ref
	})
	if err != nil {
		if !status.IsUpstream(err) {
			// the search budget ran out between pages
			err = &status.UpstreamError{Reason: "lookup aborted", Err: err}
		}
		s.monitor.TrackLookup(monitoring.ResultUpstreamError, pages, time.Since(start))
		slog.Error("ticket lookup failed", "ref", ref, "pages", pages, "error", err)
		return nil, fmt.Errorf("resolve %s: %w", ref, err)
	}
	if !found {
		s.monitor.TrackLookup(monitoring.ResultNotFound, pages, time.Since(start))
		return nil, status.ErrRefCodeNotFound
	}

	s.monitor.TrackLookup(monitoring.ResultFound, pages, time.Since(start))
	return MapAttendee(&attendee), nil
}

// MapAttendee converts an upstream record to the ticket view model. Nested
// user contact details take precedence over the attendee's own. The original
// owner is never known here.
func MapAttendee(a *models.Attendee) *models.Ticket {
	t := &models.Ticket{
		ID:      a.Key(),
		Product: models.DefaultProduct,
		Status:  models.StatusActive,
	}
	if a.Scanned() {
		t.Status = models.StatusUsed
	}

	if a.Ticket != nil && strings.TrimSpace(a.Ticket.Name) != "" {
		t.Product = a.Ticket.Name
	} else if strings.TrimSpace(a.Name) != "" {
		t.Product = a.Name
	}

	t.OwnerName = a.Name
	t.Email = a.Email
	t.Phone = deref(a.Phone)
	if u := a.User; u != nil {
		t.OwnerName = firstNonEmpty(u.Name, t.OwnerName)
		t.Email = firstNonEmpty(u.Email, t.Email)
		t.Phone = firstNonEmpty(deref(u.Phone), t.Phone)
	}

	return t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
