// Package selectbox implements custom dropdowns bound to hidden form fields.
package selectbox

import (
	"strings"
	"sync"
)

// DefaultPlaceholder is shown when the bound value matches no option.
const DefaultPlaceholder = "Velg"

type Option struct {
	Value string
	Label string
}

// label falls back to the value when no label is set.
func (o Option) label() string {
	if strings.TrimSpace(o.Label) != "" {
		return o.Label
	}
	return o.Value
}

// Field is the hidden form field a widget writes its value to.
type Field interface {
	Get() string
	Set(value string)
}

// StringField binds a widget to a string variable.
type StringField struct {
	p *string
}

func BindString(p *string) StringField { return StringField{p: p} }

func (f StringField) Get() string      { return *f.p }
func (f StringField) Set(value string) { *f.p = value }

// Widget is one dropdown. Widgets added to a Group share the group's lock,
// so a group may be driven from several goroutines.
type Widget struct {
	Name         string
	Placeholder  string
	DefaultValue string

	// OnChange runs when the user commits an option, after the widget's
	// lock is released. Programmatic syncs never call it.
	OnChange func(value string)

	mu       *sync.Mutex
	options  []Option
	field    Field
	open     bool
	label    string
	selected string
}

func NewWidget(name string, field Field, options []Option) *Widget {
	return &Widget{
		Name:        name,
		Placeholder: DefaultPlaceholder,
		mu:          &sync.Mutex{},
		options:     options,
		field:       field,
	}
}

func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

func (w *Widget) Label() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.label
}

func (w *Widget) Value() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.field.Get()
}

func (w *Widget) Options() []Option { return w.options }

// IsSelected reports whether the option with value is the committed one.
func (w *Widget) IsSelected(value string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selected != "" && w.selected == value
}

// Sync re-reads the bound field (or the default value when it is empty)
// and updates the label without a change notification.
func (w *Widget) Sync() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sync()
}

func (w *Widget) find(value string) (Option, bool) {
	for _, o := range w.options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

func (w *Widget) placeholder() string {
	if w.Placeholder != "" {
		return w.Placeholder
	}
	return DefaultPlaceholder
}

func (w *Widget) commit(value, label string) {
	w.field.Set(value)
	w.selected = value
	w.label = label
	if w.label == "" {
		w.label = w.placeholder()
	}
}

func (w *Widget) sync() {
	value := w.field.Get()
	if value == "" {
		value = w.DefaultValue
	}
	if o, ok := w.find(value); ok {
		w.commit(value, o.label())
		return
	}
	w.selected = ""
	w.label = w.placeholder()
}

// Group enforces that at most one of its widgets is open.
type Group struct {
	mu      *sync.Mutex
	widgets []*Widget
	focus   *Widget
	setup   sync.Once
}

func NewGroup(widgets ...*Widget) *Group {
	g := &Group{mu: &sync.Mutex{}, widgets: widgets}
	for _, w := range widgets {
		w.mu = g.mu
	}
	return g
}

func (g *Group) Widgets() []*Widget { return g.widgets }

// Setup syncs every widget to its bound field. Only the first call has any
// effect; it reports whether this call did the work.
func (g *Group) Setup() bool {
	ran := false
	g.setup.Do(func() {
		ran = true
		g.SyncAll()
	})
	return ran
}

// Open returns the open widget, or nil.
func (g *Group) Open() *Widget {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, w := range g.widgets {
		if w.open {
			return w
		}
	}
	return nil
}

// Focused returns the widget whose trigger last received focus.
func (g *Group) Focused() *Widget {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.focus
}

// Toggle handles a click on w's trigger.
func (g *Group) Toggle(w *Widget) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if w.open {
		w.open = false
		return
	}
	for _, other := range g.widgets {
		if other != w {
			other.open = false
		}
	}
	w.open = true
}

// Choose commits the option with value on an open widget, notifies the
// change, closes the widget and returns focus to its trigger. It reports
// whether an option was committed.
func (g *Group) Choose(w *Widget, value string) bool {
	g.mu.Lock()
	if !w.open {
		g.mu.Unlock()
		return false
	}
	o, ok := w.find(value)
	if !ok {
		g.mu.Unlock()
		return false
	}
	w.commit(o.Value, o.label())
	w.open = false
	g.focus = w
	onChange := w.OnChange
	g.mu.Unlock()

	if onChange != nil {
		onChange(o.Value)
	}
	return true
}

// Escape closes w if open and returns focus to its trigger.
func (g *Group) Escape(w *Widget) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !w.open {
		return
	}
	w.open = false
	g.focus = w
}

// EscapeAll closes every widget.
func (g *Group) EscapeAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, w := range g.widgets {
		w.open = false
	}
}

// ClickOutside handles a click that landed inside target, or outside every
// widget when target is nil. Every other widget closes.
func (g *Group) ClickOutside(target *Widget) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, w := range g.widgets {
		if w != target {
			w.open = false
		}
	}
}

// SyncAll re-syncs every widget, typically after a form reset.
func (g *Group) SyncAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, w := range g.widgets {
		w.sync()
	}
}
