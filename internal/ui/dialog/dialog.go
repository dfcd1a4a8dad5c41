// Package dialog drives a modal through an animated open/close cycle.
package dialog

import (
	"sync"
	"time"
)

// CloseDelay is the length of the closing animation.
const CloseDelay = 150 * time.Millisecond

type State int

const (
	StateClosed State = iota
	StateOpening
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Surface is the rendering side of a modal.
type Surface interface {
	// ShowModal presents the dialog with backdrop semantics. An error means
	// the platform has no modal support.
	ShowModal() error
	// ShowPlain makes the dialog visible without a backdrop.
	ShowPlain()
	// SetClosing toggles the closing animation.
	SetClosing(closing bool)
	Hide()
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(d time.Duration, f func())

func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) { fn(d, f) }

// TimerScheduler runs callbacks on a time.AfterFunc goroutine.
var TimerScheduler Scheduler = SchedulerFunc(func(d time.Duration, f func()) {
	time.AfterFunc(d, f)
})

// Controller is the state machine of one modal. Controllers for different
// modals share nothing.
type Controller struct {
	mu      sync.Mutex
	state   State
	modal   bool
	surface Surface
	sched   Scheduler

	// OnClosed, when set, runs after the dialog is fully hidden.
	OnClosed func()
}

// New creates a closed dialog. sched defaults to TimerScheduler.
func New(surface Surface, sched Scheduler) *Controller {
	if sched == nil {
		sched = TimerScheduler
	}
	return &Controller{surface: surface, sched: sched}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Modal reports whether the current opening got backdrop semantics.
func (c *Controller) Modal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal
}

// Open shows a closed dialog. Opening an open or closing dialog does
// nothing.
func (c *Controller) Open() {
	c.mu.Lock()
	if c.state != StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateOpening
	c.mu.Unlock()

	modal := true
	if err := c.surface.ShowModal(); err != nil {
		modal = false
		c.surface.ShowPlain()
	}

	c.mu.Lock()
	c.modal = modal
	c.state = StateOpen
	c.mu.Unlock()
}

// RequestClose starts the closing animation. It is the single close path:
// close buttons, the dismiss gesture and outside clicks all end here.
// Requests while not open are ignored.
func (c *Controller) RequestClose() {
	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return
	}
	c.state = StateClosing
	c.mu.Unlock()

	c.surface.SetClosing(true)
	c.sched.AfterFunc(CloseDelay, c.finishClose)
}

func (c *Controller) finishClose() {
	c.mu.Lock()
	if c.state != StateClosing {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	c.modal = false
	onClosed := c.OnClosed
	c.mu.Unlock()

	c.surface.Hide()
	c.surface.SetClosing(false)
	if onClosed != nil {
		onClosed()
	}
}

// Cancel handles the platform dismiss gesture (Escape) by routing it
// through the animated close instead of closing instantly.
func (c *Controller) Cancel() {
	c.RequestClose()
}

// ClickOutside handles a pointer event on the dialog backdrop. insidePanel
// reports whether the event hit the content panel.
func (c *Controller) ClickOutside(insidePanel bool) {
	if insidePanel {
		return
	}
	c.RequestClose()
}

// CloseButton handles any control marked as a close control.
func (c *Controller) CloseButton() {
	c.RequestClose()
}

// Visible reports whether the user currently sees the dialog.
func (c *Controller) Visible() bool {
	s := c.State()
	return s == StateOpen || s == StateClosing
}
