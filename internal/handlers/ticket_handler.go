package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"ticket-lookup/internal/services"
	"ticket-lookup/internal/status"
	"ticket-lookup/models"
)

type TicketHandler struct {
	resolver services.TicketResolver
}

func NewTicketHandler(resolver services.TicketResolver) *TicketHandler {
	return &TicketHandler{resolver: resolver}
}

// GetTicket - GET /api/tickets/{ref}
func (h *TicketHandler) GetTicket(e *core.RequestEvent) error {
	e.Response.Header().Set("Cache-Control", "no-store")

	ref := models.NormalizeRef(e.Request.PathValue("ref"))
	if ref == "" {
		return apis.NewBadRequestError("Missing ticket reference", nil)
	}

	ticket, err := h.resolver.Resolve(e.Request.Context(), ref)
	switch {
	case err == nil:
		return e.JSON(http.StatusOK, ticket)
	case errors.Is(err, status.ErrInvalidReference):
		return apis.NewBadRequestError("Missing ticket reference", nil)
	case errors.Is(err, status.ErrRefCodeNotFound):
		return apis.NewNotFoundError("Not found", nil)
	}

	// upstream detail stays in the log
	logUpstream(ref, err)
	return router.NewApiError(http.StatusInternalServerError, "Server error", nil)
}

func logUpstream(ref string, err error) {
	var upstream *status.UpstreamError
	if errors.As(err, &upstream) {
		slog.Error("ticket api error", "ref", ref, "status", upstream.StatusCode, "reason", upstream.Reason, "error", err)
		return
	}
	slog.Error("ticket api error", "ref", ref, "error", err)
}
