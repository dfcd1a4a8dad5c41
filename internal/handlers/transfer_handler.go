package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"ticket-lookup/internal/status"
	"ticket-lookup/models"
)

// TransferReceiver stores transfer form submissions.
type TransferReceiver interface {
	Receive(ctx context.Context, formName string, form models.TransferForm) (*models.TransferRecord, error)
}

type TransferHandler struct {
	receiver TransferReceiver
}

func NewTransferHandler(receiver TransferReceiver) *TransferHandler {
	return &TransferHandler{receiver: receiver}
}

// SubmitForm - POST /
//
// Accepts url-encoded form posts the way a static site form host does,
// dispatching on the form-name field.
func (h *TransferHandler) SubmitForm(e *core.RequestEvent) error {
	if err := e.Request.ParseForm(); err != nil {
		return apis.NewBadRequestError("Invalid form body", err)
	}

	formName := e.Request.PostForm.Get(models.FieldFormName)
	form := models.ParseTransferForm(e.Request.PostForm)

	rec, err := h.receiver.Receive(e.Request.Context(), formName, form)
	switch {
	case err == nil:
		return e.JSON(http.StatusOK, map[string]any{
			"message": "ok",
			"id":      rec.ID,
		})
	case errors.Is(err, status.ErrUnknownForm):
		return apis.NewBadRequestError("Unknown form", nil)
	case errors.Is(err, status.ErrInvalidTransferForm):
		var fields validation.Errors
		errors.As(err, &fields)
		return apis.NewBadRequestError("Missing required fields", fields)
	}

	slog.Error("transfer submission failed", "ticket_id", form.TicketID, "error", err)
	return router.NewApiError(http.StatusInternalServerError, "Server error", nil)
}
