package dialog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	noModal bool
	calls   []string
	closing bool
	visible bool
}

func (s *fakeSurface) ShowModal() error {
	s.calls = append(s.calls, "showModal")
	if s.noModal {
		return errors.New("not supported")
	}
	s.visible = true
	return nil
}

func (s *fakeSurface) ShowPlain() {
	s.calls = append(s.calls, "showPlain")
	s.visible = true
}

func (s *fakeSurface) SetClosing(closing bool) {
	s.closing = closing
}

func (s *fakeSurface) Hide() {
	s.calls = append(s.calls, "hide")
	s.visible = false
}

type manualScheduler struct {
	delays  []time.Duration
	pending []func()
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) {
	m.delays = append(m.delays, d)
	m.pending = append(m.pending, f)
}

func (m *manualScheduler) fire() {
	pending := m.pending
	m.pending = nil
	for _, f := range pending {
		f()
	}
}

func TestController_OpenAndAnimatedClose(t *testing.T) {
	surface := &fakeSurface{}
	sched := &manualScheduler{}
	c := New(surface, sched)

	c.Open()
	assert.Equal(t, StateOpen, c.State())
	assert.True(t, c.Modal())
	assert.True(t, surface.visible)

	c.RequestClose()
	assert.Equal(t, StateClosing, c.State())
	assert.True(t, surface.closing)
	assert.True(t, surface.visible)
	assert.True(t, c.Visible())
	require.Equal(t, []time.Duration{CloseDelay}, sched.delays)

	sched.fire()
	assert.Equal(t, StateClosed, c.State())
	assert.False(t, surface.closing)
	assert.False(t, surface.visible)
	assert.False(t, c.Visible())
}

func TestController_FallbackWithoutModalSupport(t *testing.T) {
	surface := &fakeSurface{noModal: true}
	c := New(surface, &manualScheduler{})

	c.Open()

	assert.Equal(t, StateOpen, c.State())
	assert.False(t, c.Modal())
	assert.Equal(t, []string{"showModal", "showPlain"}, surface.calls)
}

func TestController_ReentrantCloseIsNoop(t *testing.T) {
	sched := &manualScheduler{}
	c := New(&fakeSurface{}, sched)
	c.Open()

	c.RequestClose()
	c.RequestClose()
	c.Cancel()
	c.ClickOutside(false)

	assert.Len(t, sched.pending, 1)
	sched.fire()
	assert.Equal(t, StateClosed, c.State())
}

func TestController_CloseWhenClosedIsNoop(t *testing.T) {
	sched := &manualScheduler{}
	surface := &fakeSurface{}
	c := New(surface, sched)

	c.RequestClose()

	assert.Equal(t, StateClosed, c.State())
	assert.Empty(t, sched.pending)
	assert.Empty(t, surface.calls)
}

func TestController_ClosePaths(t *testing.T) {
	tests := []struct {
		name  string
		close func(*Controller)
	}{
		{"cancel gesture", (*Controller).Cancel},
		{"close button", (*Controller).CloseButton},
		{"outside click", func(c *Controller) { c.ClickOutside(false) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := &manualScheduler{}
			c := New(&fakeSurface{}, sched)
			c.Open()

			tt.close(c)

			assert.Equal(t, StateClosing, c.State())
			assert.Equal(t, []time.Duration{CloseDelay}, sched.delays)
		})
	}
}

func TestController_ClickInsidePanelKeepsOpen(t *testing.T) {
	sched := &manualScheduler{}
	c := New(&fakeSurface{}, sched)
	c.Open()

	c.ClickOutside(true)

	assert.Equal(t, StateOpen, c.State())
	assert.Empty(t, sched.pending)
}

func TestController_OpenWhileClosingIsIgnored(t *testing.T) {
	sched := &manualScheduler{}
	surface := &fakeSurface{}
	c := New(surface, sched)
	c.Open()
	c.RequestClose()

	c.Open()
	assert.Equal(t, StateClosing, c.State())

	sched.fire()
	assert.Equal(t, StateClosed, c.State())

	c.Open()
	assert.Equal(t, StateOpen, c.State())
}

func TestController_OnClosed(t *testing.T) {
	sched := &manualScheduler{}
	c := New(&fakeSurface{}, sched)
	closed := 0
	c.OnClosed = func() { closed++ }

	c.Open()
	c.RequestClose()
	assert.Zero(t, closed)
	sched.fire()
	assert.Equal(t, 1, closed)
}

func TestController_TimerScheduler(t *testing.T) {
	done := make(chan struct{})
	c := New(&fakeSurface{}, nil)
	c.OnClosed = func() { close(done) }

	c.Open()
	c.RequestClose()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dialog never finished closing")
	}
	assert.Equal(t, StateClosed, c.State())
}

func TestController_IndependentDialogs(t *testing.T) {
	sched := &manualScheduler{}
	transfer := New(&fakeSurface{}, sched)
	qr := New(&fakeSurface{}, sched)

	transfer.Open()
	qr.Open()
	transfer.RequestClose()
	sched.fire()

	assert.Equal(t, StateClosed, transfer.State())
	assert.Equal(t, StateOpen, qr.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closing", StateClosing.String())
	assert.Equal(t, "unknown", State(9).String())
}
