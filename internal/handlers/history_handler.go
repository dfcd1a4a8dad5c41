package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"ticket-lookup/models"
)

// TransferLister reads stored transfers of one ticket.
type TransferLister interface {
	ListForTicket(ctx context.Context, ticketID string) ([]*models.TransferRecord, error)
}

// HistoryHandler serves the transfer history operators reconcile from.
type HistoryHandler struct {
	lister TransferLister
}

func NewHistoryHandler(lister TransferLister) *HistoryHandler {
	return &HistoryHandler{lister: lister}
}

// ListTransfers - GET /api/transfers/{ticketId}
func (h *HistoryHandler) ListTransfers(e *core.RequestEvent) error {
	ticketID := models.NormalizeRef(e.Request.PathValue("ticketId"))
	if ticketID == "" {
		return apis.NewBadRequestError("Missing ticket reference", nil)
	}

	records, err := h.lister.ListForTicket(e.Request.Context(), ticketID)
	if err != nil {
		slog.Error("list transfers failed", "ticket_id", ticketID, "error", err)
		return router.NewApiError(http.StatusInternalServerError, "Server error", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"ticketId":  ticketID,
		"transfers": records,
	})
}
