// Package tui is a terminal front-end for the ticket lookup page. It renders
// the page controller's view and feeds keyboard input into the page, dialog
// and select state machines.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ticket-lookup/internal/ui/dialog"
	"ticket-lookup/internal/ui/page"
	"ticket-lookup/internal/ui/selectbox"
	"ticket-lookup/models"
)

var countryOptions = []selectbox.Option{
	{Value: "+47", Label: "Norge (+47)"},
	{Value: "+46", Label: "Sverige (+46)"},
	{Value: "+45", Label: "Danmark (+45)"},
	{Value: "+358", Label: "Finland (+358)"},
}

var reasonOptions = []selectbox.Option{
	{Value: "sold", Label: "Solgt billetten"},
	{Value: "gift", Label: "Gitt bort"},
	{Value: "other", Label: "Annet"},
}

// Transfer dialog focus order: three text inputs, two selects, submit.
const (
	focusName = iota
	focusEmail
	focusPhone
	focusCountry
	focusReason
	focusSubmit
	focusCount
)

type Options struct {
	Lookup    page.Lookup
	Submitter page.Submitter
	Confirmer page.TransferConfirmer

	// Location is the page address. A ticketId or ref parameter starts a
	// lookup when the program starts.
	Location string
}

type lookupDoneMsg struct{}

type transferDoneMsg struct{ accepted bool }

type timerMsg struct{ fn func() }

type Model struct {
	ctx  context.Context
	keys KeyMap

	ctrl        *page.Controller
	screen      *screen
	sched       *scheduler
	transferDlg *dialog.Controller
	qrDlg       *dialog.Controller
	transferSrf *surface
	qrSrf       *surface
	selects     *selectbox.Group
	country     *selectbox.Widget
	reason      *selectbox.Widget

	lookupInput    textinput.Model
	transferInputs []textinput.Model
	transferFocus  int
	optionCursor   int

	location string
	width    int
}

func New(opts Options) Model {
	countryField, reasonField := &field{}, &field{}
	country := selectbox.NewWidget(models.FieldCountryCode, countryField, countryOptions)
	country.DefaultValue = "+47"
	reason := selectbox.NewWidget(models.FieldReason, reasonField, reasonOptions)
	reason.Placeholder = "Velg årsak"
	selects := selectbox.NewGroup(country, reason)

	scr := newScreen(countryField, reasonField)
	sched := &scheduler{}
	transferSrf, qrSrf := &surface{}, &surface{}
	transferDlg := dialog.New(transferSrf, sched)
	qrDlg := dialog.New(qrSrf, sched)

	ctrl := page.New(page.Config{
		View:           scr,
		Lookup:         opts.Lookup,
		Submitter:      opts.Submitter,
		TransferDialog: transferDlg,
		QRDialog:       qrDlg,
		Selects:        selects,
		Confirmer:      opts.Confirmer,
	})

	lookupInput := textinput.New()
	lookupInput.Placeholder = "Billett-ID, f.eks. D91DE9E1"
	lookupInput.CharLimit = 64
	lookupInput.Focus()

	inputs := make([]textinput.Model, 3)
	for i, placeholder := range []string{"Fullt navn", "E-post", "Telefonnummer"} {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholder
		inputs[i].CharLimit = 200
	}

	return Model{
		ctx:            context.Background(),
		keys:           DefaultKeyMap,
		ctrl:           ctrl,
		screen:         scr,
		sched:          sched,
		transferDlg:    transferDlg,
		qrDlg:          qrDlg,
		transferSrf:    transferSrf,
		qrSrf:          qrSrf,
		selects:        selects,
		country:        country,
		reason:         reason,
		lookupInput:    lookupInput,
		transferInputs: inputs,
		location:       opts.Location,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.startupLookup())
}

// startupLookup handles a deep link in the starting location.
func (m Model) startupLookup() tea.Cmd {
	if m.location == "" {
		return nil
	}
	ctx, ctrl, location := m.ctx, m.ctrl, m.location
	return func() tea.Msg {
		ctrl.HandleDeepLink(ctx, location)
		return lookupDoneMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case timerMsg:
		msg.fn()
	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)
	}

	m.applyPending()
	for _, t := range m.sched.drain() {
		fn := t.fn
		cmds = append(cmds, tea.Tick(t.delay, func(time.Time) tea.Msg { return timerMsg{fn: fn} }))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) applyPending() {
	input, reset := m.screen.takePending()
	if input != nil {
		m.lookupInput.SetValue(*input)
	}
	if reset {
		for i := range m.transferInputs {
			m.transferInputs[i].Reset()
			m.transferInputs[i].Blur()
		}
		m.transferFocus = focusName
	}
	if !m.transferDlg.Visible() && !m.lookupInput.Focused() {
		m.lookupInput.Focus()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch {
	case m.qrDlg.Visible():
		if key.Matches(msg, m.keys.Close, m.keys.Submit) {
			m.qrDlg.Cancel()
		}
		return m, nil
	case m.transferDlg.State() == dialog.StateClosing:
		return m, nil
	case m.transferDlg.Visible():
		return m.handleTransferKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m, m.lookupCmd(m.lookupInput.Value())
	case key.Matches(msg, m.keys.Transfer):
		m.ctrl.OpenTransfer()
		if m.transferDlg.Visible() {
			m.lookupInput.Blur()
			m.setTransferFocus(focusName)
		}
		return m, nil
	case key.Matches(msg, m.keys.QR):
		m.ctrl.OpenQR()
		return m, nil
	}

	var cmd tea.Cmd
	m.lookupInput, cmd = m.lookupInput.Update(msg)
	return m, cmd
}

func (m Model) lookupCmd(raw string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctrl.Submit(ctx, raw)
		return lookupDoneMsg{}
	}
}

func (m Model) handleTransferKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if open := m.selects.Open(); open != nil {
		options := open.Options()
		switch {
		case key.Matches(msg, m.keys.Up):
			m.optionCursor = (m.optionCursor + len(options) - 1) % len(options)
		case key.Matches(msg, m.keys.Down):
			m.optionCursor = (m.optionCursor + 1) % len(options)
		case key.Matches(msg, m.keys.Submit, m.keys.Toggle):
			m.selects.Choose(open, options[m.optionCursor].Value)
			m.focusTrigger()
		case key.Matches(msg, m.keys.Close):
			m.selects.Escape(open)
			m.focusTrigger()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Close):
		m.selects.EscapeAll()
		m.transferDlg.Cancel()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.setTransferFocus((m.transferFocus + 1) % focusCount)
		return m, nil
	case key.Matches(msg, m.keys.Previous):
		m.setTransferFocus((m.transferFocus + focusCount - 1) % focusCount)
		return m, nil
	}

	if w := m.focusedSelect(); w != nil {
		if key.Matches(msg, m.keys.Submit, m.keys.Toggle) {
			m.selects.Toggle(w)
			m.optionCursor = optionIndex(w.Options(), w.Value())
		}
		return m, nil
	}

	if m.transferFocus == focusSubmit {
		if key.Matches(msg, m.keys.Submit) {
			return m, m.transferCmd()
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Submit) {
		m.setTransferFocus(m.transferFocus + 1)
		return m, nil
	}

	var cmd tea.Cmd
	m.transferInputs[m.transferFocus], cmd = m.transferInputs[m.transferFocus].Update(msg)
	return m, cmd
}

func (m *Model) setTransferFocus(focus int) {
	m.transferFocus = focus
	// moving focus is a click somewhere else on the form
	m.selects.ClickOutside(m.focusedSelect())
	for i := range m.transferInputs {
		if i == focus {
			m.transferInputs[i].Focus()
		} else {
			m.transferInputs[i].Blur()
		}
	}
}

// focusTrigger moves form focus to the select trigger the group handed
// focus back to.
func (m *Model) focusTrigger() {
	switch m.selects.Focused() {
	case m.country:
		m.setTransferFocus(focusCountry)
	case m.reason:
		m.setTransferFocus(focusReason)
	}
}

func (m Model) focusedSelect() *selectbox.Widget {
	switch m.transferFocus {
	case focusCountry:
		return m.country
	case focusReason:
		return m.reason
	}
	return nil
}

func optionIndex(options []selectbox.Option, value string) int {
	for i, o := range options {
		if o.Value == value {
			return i
		}
	}
	return 0
}

func (m Model) transferForm() models.TransferForm {
	return models.TransferForm{
		NewName:     m.transferInputs[focusName].Value(),
		NewEmail:    m.transferInputs[focusEmail].Value(),
		NewPhone:    m.transferInputs[focusPhone].Value(),
		Reason:      m.reason.Value(),
		CountryCode: m.country.Value(),
	}
}

func (m Model) transferCmd() tea.Cmd {
	ctx, ctrl, form := m.ctx, m.ctrl, m.transferForm()
	return func() tea.Msg {
		return transferDoneMsg{accepted: ctrl.SubmitTransfer(ctx, form)}
	}
}

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	infoStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("217")).Background(lipgloss.Color("52")).Padding(0, 1)
	successStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("157")).Background(lipgloss.Color("22")).Padding(0, 1)
	panelStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	dialogStyle      = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("212")).Padding(0, 1)
	closingStyle     = dialogStyle.Faint(true)
	focusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	disabledStyle    = lipgloss.NewStyle().Faint(true)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeBadgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("22")).Background(lipgloss.Color("157")).Padding(0, 1)
	usedBadgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("94")).Background(lipgloss.Color("229")).Padding(0, 1)
	otherBadgeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("236")).Background(lipgloss.Color("252")).Padding(0, 1)
)

func (m Model) View() string {
	snap := m.screen.snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Finn billetten din"))
	b.WriteString("\n\n")
	b.WriteString(m.lookupInput.View())
	b.WriteString("\n\n")

	if line := renderStatus(snap.status, snap.tone); line != "" {
		b.WriteString(line)
		b.WriteString("\n\n")
	}

	if snap.resultVisible && snap.ticket != nil {
		b.WriteString(renderTicket(snap.ticket))
	} else {
		b.WriteString(helpStyle.Render("Skriv inn billett-ID-en fra e-posten din for å se billetten."))
	}
	b.WriteString("\n")

	if visible, closing := m.transferSrf.state(); visible {
		b.WriteString("\n")
		b.WriteString(m.renderTransferDialog(snap, closing))
	}
	if visible, closing := m.qrSrf.state(); visible {
		style := dialogStyle
		if closing {
			style = closingStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(titleStyle.Render("QR-kode") + "\n\n" + snap.largeQR + "\n\n" + helpStyle.Render("esc lukk")))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter søk • C-o overfør • C-r QR-kode • C-c avslutt"))
	return b.String()
}

func renderStatus(msg string, tone page.Tone) string {
	if msg == "" {
		return ""
	}
	switch tone {
	case page.ToneError:
		return errorStyle.Render(msg)
	case page.ToneSuccess:
		return successStyle.Render(msg)
	default:
		return infoStyle.Render(msg)
	}
}

func renderTicket(v *page.TicketView) string {
	t := v.Ticket

	product := t.Product
	if product == "" {
		product = models.DefaultProduct
	}

	rows := []string{
		titleStyle.Render(product) + "  " + renderBadge(t.Status),
		labelStyle.Render("Billett-ID") + t.ID,
		labelStyle.Render("Eier") + t.OwnerName,
		labelStyle.Render("E-post") + t.Email,
	}
	if t.HasPhone() {
		rows = append(rows, labelStyle.Render("Telefon")+t.Phone)
	}
	if t.OriginalOwner != nil && *t.OriginalOwner != "" {
		rows = append(rows, labelStyle.Render("Opprinnelig eier")+*t.OriginalOwner)
	}
	rows = append(rows, labelStyle.Render("QR-kode")+v.QRCode)

	return panelStyle.Render(strings.Join(rows, "\n"))
}

func renderBadge(status models.TicketStatus) string {
	label := string(status)
	if label == "" {
		label = string(models.StatusActive)
	}
	switch models.TicketStatus(label) {
	case models.StatusActive:
		return activeBadgeStyle.Render(label)
	case models.StatusUsed:
		return usedBadgeStyle.Render(label)
	default:
		return otherBadgeStyle.Render(label)
	}
}

func (m Model) renderTransferDialog(snap snapshot, closing bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Overfør billett"))
	b.WriteString("\n\n")

	for i, label := range []string{"Fullt navn", "E-post", "Telefon"} {
		b.WriteString(m.focusMarker(i) + labelStyle.Render(label) + m.transferInputs[i].View() + "\n")
	}
	b.WriteString(m.renderSelect(focusCountry, "Landskode", m.country))
	b.WriteString(m.renderSelect(focusReason, "Årsak", m.reason))

	button := "[ Send inn ]"
	switch {
	case !snap.submitEnabled:
		button = disabledStyle.Render(button)
	case m.transferFocus == focusSubmit:
		button = focusStyle.Render(button)
	}
	b.WriteString("\n" + m.focusMarker(focusSubmit) + button + "\n\n")
	b.WriteString(helpStyle.Render("tab neste • space velg • esc lukk"))

	style := dialogStyle
	if closing {
		style = closingStyle
	}
	return style.Render(b.String())
}

func (m Model) renderSelect(focus int, label string, w *selectbox.Widget) string {
	chevron := "▾"
	if w.IsOpen() {
		chevron = "▴"
	}
	line := fmt.Sprintf("%s%s%s %s\n", m.focusMarker(focus), labelStyle.Render(label), w.Label(), chevron)
	if !w.IsOpen() {
		return line
	}

	var b strings.Builder
	b.WriteString(line)
	for i, o := range w.Options() {
		cursor := "  "
		if i == m.optionCursor {
			cursor = focusStyle.Render("> ")
		}
		check := " "
		if w.IsSelected(o.Value) {
			check = "✓"
		}
		text := o.Label
		if text == "" {
			text = o.Value
		}
		b.WriteString(fmt.Sprintf("%s%s%s %s\n", strings.Repeat(" ", 18), cursor, check, text))
	}
	return b.String()
}

func (m Model) focusMarker(focus int) string {
	if m.transferFocus == focus {
		return focusStyle.Render("› ")
	}
	return "  "
}
