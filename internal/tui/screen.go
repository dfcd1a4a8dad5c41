package tui

import (
	"sync"
	"time"

	"ticket-lookup/internal/ui/page"
)

// screen is the page.View of the terminal front-end. The page controller
// writes to it from command goroutines; the model reads snapshots of it
// when rendering.
type screen struct {
	mu sync.Mutex

	status        string
	tone          page.Tone
	ticket        *page.TicketView
	resultVisible bool
	submitEnabled bool
	largeQR       string
	location      string

	// pendingInput is a lookup input value the model has not applied yet.
	pendingInput *string
	// pendingReset asks the model to clear the transfer text inputs.
	pendingReset bool

	// selectFields are cleared synchronously on reset so the following
	// select sync sees empty values.
	selectFields []*field
}

func newScreen(selectFields ...*field) *screen {
	return &screen{submitEnabled: true, selectFields: selectFields}
}

func (s *screen) SetStatus(msg string, tone page.Tone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status, s.tone = msg, tone
}

func (s *screen) SetLookupInput(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingInput = &ref
}

func (s *screen) RenderTicket(t page.TicketView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticket = &t
	s.resultVisible = true
}

func (s *screen) HideResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resultVisible = false
}

func (s *screen) SetTransferSubmitEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitEnabled = enabled
}

func (s *screen) ResetTransferForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingReset = true
	for _, f := range s.selectFields {
		f.Set("")
	}
}

func (s *screen) ShowLargeQR(src string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.largeQR = src
}

func (s *screen) ReplaceLocation(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = u
}

type snapshot struct {
	status        string
	tone          page.Tone
	ticket        *page.TicketView
	resultVisible bool
	submitEnabled bool
	largeQR       string
}

func (s *screen) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		status:        s.status,
		tone:          s.tone,
		ticket:        s.ticket,
		resultVisible: s.resultVisible,
		submitEnabled: s.submitEnabled,
		largeQR:       s.largeQR,
	}
}

// takePending returns and clears the updates the model must apply to its
// own widgets.
func (s *screen) takePending() (input *string, reset bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	input, reset = s.pendingInput, s.pendingReset
	s.pendingInput, s.pendingReset = nil, false
	return input, reset
}

// surface renders a dialog as an overlay. Terminal overlays always block
// the page behind them, so ShowModal never fails.
type surface struct {
	mu      sync.Mutex
	visible bool
	closing bool
}

func (s *surface) ShowModal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = true
	return nil
}

func (s *surface) ShowPlain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = true
}

func (s *surface) SetClosing(closing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closing = closing
}

func (s *surface) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = false
}

func (s *surface) state() (visible, closing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible, s.closing
}

type timer struct {
	delay time.Duration
	fn    func()
}

// scheduler queues dialog timers until the model turns them into ticks, so
// the callbacks run on the bubbletea event loop.
type scheduler struct {
	mu      sync.Mutex
	pending []timer
}

func (s *scheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, timer{delay: d, fn: f})
}

func (s *scheduler) drain() []timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.pending
	s.pending = nil
	return pending
}

// field is a select's hidden form value.
type field struct {
	mu    sync.Mutex
	value string
}

func (f *field) Get() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *field) Set(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = value
}
