package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Submit   key.Binding
	Transfer key.Binding
	QR       key.Binding
	Next     key.Binding
	Previous key.Binding
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Close    key.Binding
	Quit     key.Binding
}

var DefaultKeyMap = KeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "søk"),
	),
	Transfer: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("C-o", "overfør"),
	),
	QR: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("C-r", "QR-kode"),
	),
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "neste felt"),
	),
	Previous: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-tab", "forrige felt"),
	),
	Up: key.NewBinding(
		key.WithKeys("up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "velg"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "lukk"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "avslutt"),
	),
}
