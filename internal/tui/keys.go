package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Tab       key.Binding
	ShiftTab  key.Binding
	Quit      key.Binding
	Help      key.Binding
	Add       key.Binding
	Energy    key.Binding
	Refresh   key.Binding
	Back      key.Binding
	Breakdown key.Binding
	Delegate  key.Binding
	HireOut   key.Binding
	Keep      key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Quit, k.Help},
		{k.Add, k.Energy, k.Refresh},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev tab"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add task"),
		),
		Energy: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "cycle energy"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Breakdown: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "break down"),
		),
		Delegate: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delegate"),
		),
		HireOut: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hire out"),
		),
		Keep: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "keep"),
		),
	}
}
