// Package page is the lookup page controller: it ties the lookup form, the
// ticket view, the QR and transfer dialogs and the transfer form together.
package page

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"ticket-lookup/internal/client"
	"ticket-lookup/internal/ui/dialog"
	"ticket-lookup/internal/ui/selectbox"
	"ticket-lookup/models"
)

// Lookup fetches a ticket by reference code.
type Lookup interface {
	FetchTicket(ctx context.Context, ref string) (*models.Ticket, error)
}

// Submitter posts a transfer form to the form sink.
type Submitter interface {
	Submit(ctx context.Context, form models.TransferForm) error
}

// TransferConfirmer decides whether an accepted transfer post may be shown
// as done. The rendered ticket and the stored transfer are separate copies
// reconciled by an operator; a confirmer is where a read-back would go.
type TransferConfirmer interface {
	Confirm(ctx context.Context, form models.TransferForm) (bool, error)
}

// AcceptOnSuccess treats any successful post as final.
type AcceptOnSuccess struct{}

func (AcceptOnSuccess) Confirm(context.Context, models.TransferForm) (bool, error) {
	return true, nil
}

// TicketView is everything the view needs to render a ticket.
type TicketView struct {
	Ticket models.Ticket
	QRCode string
}

// View renders the page. Calls are made with the controller's lock held and
// must not call back into the controller.
type View interface {
	SetStatus(msg string, tone Tone)
	SetLookupInput(ref string)
	// RenderTicket shows the result panel and hides the placeholder.
	RenderTicket(t TicketView)
	// HideResult hides the result panel and shows the placeholder.
	HideResult()
	SetTransferSubmitEnabled(enabled bool)
	ResetTransferForm()
	ShowLargeQR(src string)
	// ReplaceLocation swaps the visible address without navigating.
	ReplaceLocation(u string)
}

type Config struct {
	View      View
	Lookup    Lookup
	Submitter Submitter

	TransferDialog *dialog.Controller
	QRDialog       *dialog.Controller
	Selects        *selectbox.Group

	// Confirmer defaults to AcceptOnSuccess.
	Confirmer TransferConfirmer
}

type Controller struct {
	mu sync.Mutex

	view      View
	lookup    Lookup
	submitter Submitter
	confirmer TransferConfirmer

	transferDlg *dialog.Controller
	qrDlg       *dialog.Controller
	selects     *selectbox.Group

	// generation identifies the latest lookup; results of older ones are
	// dropped.
	generation uint64
	cancel     context.CancelFunc

	ticket *models.Ticket

	// transferTicketID is the hidden ticket field of the transfer form.
	transferTicketID string
	transferBusy     bool
}

func New(cfg Config) *Controller {
	confirmer := cfg.Confirmer
	if confirmer == nil {
		confirmer = AcceptOnSuccess{}
	}
	c := &Controller{
		view:        cfg.View,
		lookup:      cfg.Lookup,
		submitter:   cfg.Submitter,
		confirmer:   confirmer,
		transferDlg: cfg.TransferDialog,
		qrDlg:       cfg.QRDialog,
		selects:     cfg.Selects,
	}
	if c.selects != nil {
		c.selects.Setup()
	}
	return c
}

// Ticket returns a copy of the rendered ticket, or nil.
func (c *Controller) Ticket() *models.Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ticket == nil {
		return nil
	}
	t := *c.ticket
	return &t
}

// TransferTicketID returns the ticket id the transfer form will carry.
func (c *Controller) TransferTicketID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transferTicketID
}

// Submit runs one lookup for the raw input. A newer Submit, including one
// with empty input, cancels this one and its result is never rendered.
func (c *Controller) Submit(ctx context.Context, raw string) {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		c.mu.Lock()
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		c.generation++
		c.view.SetStatus(MsgEnterTicketID, ToneError)
		c.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	c.cancel = cancel
	c.ticket = nil
	c.view.HideResult()
	c.mu.Unlock()

	ticket, err := c.lookup.FetchTicket(ctx, ref)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		slog.Debug("dropping superseded lookup", "ref", ref)
		return
	}
	c.cancel = nil

	if err != nil {
		c.view.SetStatus(lookupMessage(err), ToneError)
		return
	}

	c.view.SetStatus("", ToneInfo)
	c.render(ticket)
}

func lookupMessage(err error) string {
	switch client.KindOf(err) {
	case client.KindNotFound:
		return MsgTicketNotFound
	case client.KindInvalid:
		return MsgInvalidTicketID
	default:
		return MsgLookupFailed
	}
}

// render must be called with c.mu held.
func (c *Controller) render(t *models.Ticket) {
	c.ticket = t
	c.transferTicketID = t.ID
	c.view.RenderTicket(TicketView{Ticket: *t, QRCode: QRCodeURL(t.ID)})
}

// HandleDeepLink looks up the ticket named by the page address, if any, and
// strips the parameter from the visible address. It reports whether a
// lookup ran.
func (c *Controller) HandleDeepLink(ctx context.Context, location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}

	q := u.Query()
	var ref string
	for _, p := range DeepLinkParams {
		if v := strings.TrimSpace(q.Get(p)); v != "" {
			ref = v
			break
		}
	}
	if ref == "" {
		return false
	}

	for _, p := range DeepLinkParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()

	c.mu.Lock()
	c.view.SetLookupInput(ref)
	c.view.ReplaceLocation(u.String())
	c.mu.Unlock()

	c.Submit(ctx, ref)
	return true
}

// OpenTransfer opens the transfer dialog for the rendered ticket.
func (c *Controller) OpenTransfer() {
	if c.transferDlg == nil || c.Ticket() == nil {
		return
	}
	c.transferDlg.Open()
}

// OpenQR shows the rendered ticket's QR code enlarged.
func (c *Controller) OpenQR() {
	t := c.Ticket()
	if c.qrDlg == nil || t == nil {
		return
	}
	c.mu.Lock()
	c.view.ShowLargeQR(QRCodeURL(t.ID))
	c.mu.Unlock()
	c.qrDlg.Open()
}

// SubmitTransfer posts the transfer form once. While a post is in flight
// further submits are ignored. It reports whether the transfer was
// accepted.
func (c *Controller) SubmitTransfer(ctx context.Context, form models.TransferForm) bool {
	form = form.Trimmed()

	c.mu.Lock()
	if len(form.Missing()) > 0 {
		c.view.SetStatus(MsgTransferMissingFields, ToneError)
		c.mu.Unlock()
		return false
	}
	if c.transferBusy {
		c.mu.Unlock()
		return false
	}
	c.transferBusy = true
	c.view.SetTransferSubmitEnabled(false)
	if form.TicketID == "" {
		form.TicketID = c.transferTicketID
	}
	if form.TicketID == "" && c.ticket != nil {
		form.TicketID = c.ticket.ID
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.transferBusy = false
		c.view.SetTransferSubmitEnabled(true)
		c.mu.Unlock()
	}()

	err := c.submitter.Submit(ctx, form)
	if err == nil {
		var ok bool
		ok, err = c.confirmer.Confirm(ctx, form)
		if err == nil && !ok {
			err = errTransferNotConfirmed
		}
	}
	if err != nil {
		slog.Warn("transfer submit failed", "ticket_id", form.TicketID, "error", err)
		c.mu.Lock()
		c.view.SetStatus(MsgTransferFailed, ToneError)
		c.mu.Unlock()
		return false
	}

	c.mu.Lock()
	if c.ticket != nil {
		updated := *c.ticket
		if updated.OriginalOwner == nil && updated.OwnerName != "" {
			prev := updated.OwnerName
			updated.OriginalOwner = &prev
		}
		updated.OwnerName = form.NewName
		if form.NewPhone != "" {
			updated.Phone = form.NewPhone
		}
		c.render(&updated)
	}
	c.view.ResetTransferForm()
	c.mu.Unlock()

	if c.transferDlg != nil {
		c.transferDlg.RequestClose()
	}
	if c.selects != nil {
		c.selects.SyncAll()
	}

	c.mu.Lock()
	c.view.SetStatus(MsgTransferReceived, ToneSuccess)
	c.view.HideResult()
	c.mu.Unlock()
	return true
}
