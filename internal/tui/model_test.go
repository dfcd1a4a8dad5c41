package tui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-lookup/internal/client"
	"ticket-lookup/internal/ui/dialog"
	"ticket-lookup/internal/ui/page"
	"ticket-lookup/models"
)

type stubLookup struct {
	mu   sync.Mutex
	refs []string
}

func (s *stubLookup) FetchTicket(_ context.Context, ref string) (*models.Ticket, error) {
	s.mu.Lock()
	s.refs = append(s.refs, ref)
	s.mu.Unlock()

	if models.NormalizeRef(ref) != "D91DE9E1" {
		return nil, &client.Error{Kind: client.KindNotFound, Code: 404}
	}
	return &models.Ticket{
		ID:        "D91DE9E1",
		Product:   "Dagspass",
		OwnerName: "Kari Nordmann",
		Email:     "kari@example.no",
		Status:    models.StatusActive,
	}, nil
}

type stubSubmitter struct {
	forms []models.TransferForm
}

func (s *stubSubmitter) Submit(_ context.Context, form models.TransferForm) error {
	s.forms = append(s.forms, form)
	return nil
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(Model)
}

func press(t *testing.T, m Model, keyType tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: keyType})
	return updated.(Model), cmd
}

// run executes a command that is known to return a single message and
// feeds it back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	updated, next := m.Update(cmd())
	return updated.(Model), next
}

func lookedUp(t *testing.T, lookup *stubLookup, submitter *stubSubmitter) Model {
	t.Helper()

	m := New(Options{Lookup: lookup, Submitter: submitter})
	m = typeText(t, m, "d91de9e1")
	m, cmd := press(t, m, tea.KeyEnter)
	m, _ = run(t, m, cmd)
	return m
}

func TestModel_Lookup(t *testing.T) {
	lookup := &stubLookup{}
	m := lookedUp(t, lookup, &stubSubmitter{})

	view := m.View()
	assert.Contains(t, view, "Kari Nordmann")
	assert.Contains(t, view, "Dagspass")
	assert.Contains(t, view, "ACTIVE")
	assert.Contains(t, view, page.QRCodeURL("D91DE9E1"))
	assert.Equal(t, []string{"d91de9e1"}, lookup.refs)
}

func TestModel_EmptyLookup(t *testing.T) {
	lookup := &stubLookup{}
	m := New(Options{Lookup: lookup})

	m, cmd := press(t, m, tea.KeyEnter)
	m, _ = run(t, m, cmd)

	assert.Contains(t, m.View(), page.MsgEnterTicketID)
	assert.Empty(t, lookup.refs)
}

func TestModel_NotFound(t *testing.T) {
	m := New(Options{Lookup: &stubLookup{}})
	m = typeText(t, m, "nope")

	m, cmd := press(t, m, tea.KeyEnter)
	m, _ = run(t, m, cmd)

	assert.Contains(t, m.View(), page.MsgTicketNotFound)
}

func TestModel_DeepLink(t *testing.T) {
	lookup := &stubLookup{}
	m := New(Options{Lookup: lookup, Location: "https://example.no/billett/?ticketId=D91DE9E1"})

	m, _ = run(t, m, m.startupLookup())

	assert.Equal(t, []string{"D91DE9E1"}, lookup.refs)
	assert.Equal(t, "D91DE9E1", m.lookupInput.Value())
	assert.Equal(t, "https://example.no/billett/", m.screen.location)
	assert.Contains(t, m.View(), "Kari Nordmann")
}

func TestModel_NoDeepLink(t *testing.T) {
	m := New(Options{Lookup: &stubLookup{}})

	assert.Nil(t, m.startupLookup())
}

func TestModel_TransferFlow(t *testing.T) {
	submitter := &stubSubmitter{}
	m := lookedUp(t, &stubLookup{}, submitter)

	m, _ = press(t, m, tea.KeyCtrlO)
	require.Equal(t, dialog.StateOpen, m.transferDlg.State())

	m = typeText(t, m, "Ola Nordmann")
	m, _ = press(t, m, tea.KeyTab)
	m = typeText(t, m, "ola@example.no")
	m, _ = press(t, m, tea.KeyTab)
	m = typeText(t, m, "98765432")
	m, _ = press(t, m, tea.KeyTab)

	// country select: open, move to Sverige, choose
	m, _ = press(t, m, tea.KeySpace)
	require.True(t, m.country.IsOpen())
	m, _ = press(t, m, tea.KeyDown)
	m, _ = press(t, m, tea.KeyEnter)
	assert.False(t, m.country.IsOpen())
	assert.Equal(t, "+46", m.country.Value())

	m, _ = press(t, m, tea.KeyTab)
	m, _ = press(t, m, tea.KeyTab)
	require.Equal(t, focusSubmit, m.transferFocus)

	m, cmd := press(t, m, tea.KeyEnter)
	m, tick := run(t, m, cmd)

	require.Len(t, submitter.forms, 1)
	sent := submitter.forms[0]
	assert.Equal(t, "Ola Nordmann", sent.NewName)
	assert.Equal(t, "ola@example.no", sent.NewEmail)
	assert.Equal(t, "98765432", sent.NewPhone)
	assert.Equal(t, "+46", sent.CountryCode)
	assert.Equal(t, "D91DE9E1", sent.TicketID)

	assert.Equal(t, dialog.StateClosing, m.transferDlg.State())
	assert.Contains(t, m.View(), page.MsgTransferReceived)
	assert.Empty(t, m.transferInputs[focusName].Value())
	assert.Equal(t, "+47", m.country.Value())

	owner := m.ctrl.Ticket()
	require.NotNil(t, owner)
	assert.Equal(t, "Ola Nordmann", owner.OwnerName)

	m, _ = run(t, m, tick)
	assert.Equal(t, dialog.StateClosed, m.transferDlg.State())
	assert.True(t, m.lookupInput.Focused())
}

func TestModel_TransferMissingFields(t *testing.T) {
	submitter := &stubSubmitter{}
	m := lookedUp(t, &stubLookup{}, submitter)
	m, _ = press(t, m, tea.KeyCtrlO)

	m, _ = press(t, m, tea.KeyShiftTab)
	require.Equal(t, focusSubmit, m.transferFocus)
	m, cmd := press(t, m, tea.KeyEnter)
	m, _ = run(t, m, cmd)

	assert.Empty(t, submitter.forms)
	assert.Contains(t, m.View(), page.MsgTransferMissingFields)
	assert.Equal(t, dialog.StateOpen, m.transferDlg.State())
}

func TestModel_SelectsAreMutuallyExclusive(t *testing.T) {
	m := lookedUp(t, &stubLookup{}, &stubSubmitter{})
	m, _ = press(t, m, tea.KeyCtrlO)
	m.setTransferFocus(focusCountry)

	m, _ = press(t, m, tea.KeySpace)
	require.True(t, m.country.IsOpen())

	// escape closes only the dropdown
	m, _ = press(t, m, tea.KeyEsc)
	assert.False(t, m.country.IsOpen())
	assert.Equal(t, dialog.StateOpen, m.transferDlg.State())

	m, _ = press(t, m, tea.KeySpace)
	m.setTransferFocus(focusReason)
	assert.False(t, m.country.IsOpen())
	m, _ = press(t, m, tea.KeySpace)
	assert.True(t, m.reason.IsOpen())
	assert.False(t, m.country.IsOpen())
}

func TestModel_ClosingSelectFocusesTrigger(t *testing.T) {
	m := lookedUp(t, &stubLookup{}, &stubSubmitter{})
	m, _ = press(t, m, tea.KeyCtrlO)
	require.Equal(t, focusName, m.transferFocus)

	// opened by pointer while the name input has focus
	m.selects.Toggle(m.reason)
	m, _ = press(t, m, tea.KeyEsc)

	assert.False(t, m.reason.IsOpen())
	assert.Equal(t, focusReason, m.transferFocus)
	assert.False(t, m.transferInputs[focusName].Focused())

	m.selects.Toggle(m.country)
	m, _ = press(t, m, tea.KeyEnter)

	assert.False(t, m.country.IsOpen())
	assert.Equal(t, focusCountry, m.transferFocus)
}

func TestModel_EscClosesTransferDialog(t *testing.T) {
	m := lookedUp(t, &stubLookup{}, &stubSubmitter{})
	m, _ = press(t, m, tea.KeyCtrlO)

	m, tick := press(t, m, tea.KeyEsc)
	assert.Equal(t, dialog.StateClosing, m.transferDlg.State())

	// keys are ignored while the dialog animates out
	m = typeText(t, m, "x")
	assert.Empty(t, m.transferInputs[focusName].Value())

	m, _ = run(t, m, tick)
	assert.Equal(t, dialog.StateClosed, m.transferDlg.State())
}

func TestModel_QRDialog(t *testing.T) {
	m := lookedUp(t, &stubLookup{}, &stubSubmitter{})

	m, _ = press(t, m, tea.KeyCtrlR)

	require.Equal(t, dialog.StateOpen, m.qrDlg.State())
	assert.Contains(t, m.View(), "QR-kode")
	assert.Equal(t, page.QRCodeURL("D91DE9E1"), m.screen.snapshot().largeQR)

	m, _ = press(t, m, tea.KeyEsc)
	assert.Equal(t, dialog.StateClosing, m.qrDlg.State())
}

func TestModel_TransferNeedsTicket(t *testing.T) {
	m := New(Options{Lookup: &stubLookup{}})

	m, _ = press(t, m, tea.KeyCtrlO)

	assert.Equal(t, dialog.StateClosed, m.transferDlg.State())
}

func TestModel_Quit(t *testing.T) {
	m := New(Options{Lookup: &stubLookup{}})

	_, cmd := press(t, m, tea.KeyCtrlC)

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
