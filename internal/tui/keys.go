package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the counter screen.
type KeyMap struct {
	// Counter
	Increase key.Binding
	Decrease key.Binding
	Reset    key.Binding
	Plus10   key.Binding
	Plus100  key.Binding
	Minus10  key.Binding
	Minus100 key.Binding

	// Goals and minigames
	Goal      key.Binding
	Step      key.Binding
	Challenge key.Binding
	Speed     key.Binding
	Precision key.Binding

	// Data
	Save         key.Binding
	Load         key.Binding
	Export       key.Binding
	ClearHistory key.Binding
	ResetAll     key.Binding

	// Settings
	Theme   key.Binding
	Sound   key.Binding
	Animate key.Binding

	// General
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Increase: key.NewBinding(
			key.WithKeys("up", "+", "="),
			key.WithHelp("↑/+", "increase"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("down", "-"),
			key.WithHelp("↓/-", "decrease"),
		),
		Reset: key.NewBinding(
			key.WithKeys(" ", "r", "R"),
			key.WithHelp("space/r", "reset"),
		),
		Plus10: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "+10"),
		),
		Plus100: key.NewBinding(
			key.WithKeys("}"),
			key.WithHelp("}", "+100"),
		),
		Minus10: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "-10"),
		),
		Minus100: key.NewBinding(
			key.WithKeys("{"),
			key.WithHelp("{", "-100"),
		),

		Goal: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "set goal"),
		),
		Step: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "step size"),
		),
		Challenge: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "random challenge"),
		),
		Speed: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "speed test"),
		),
		Precision: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "precision test"),
		),

		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Load: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "load"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		ClearHistory: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "clear history"),
		),
		ResetAll: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "reset everything"),
		),

		Theme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "next theme"),
		),
		Sound: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "sound on/off"),
		),
		Animate: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "animation on/off"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Increase, k.Decrease, k.Reset, k.Goal, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Increase, k.Decrease, k.Reset, k.Plus10, k.Plus100, k.Minus10, k.Minus100},
		{k.Goal, k.Step, k.Challenge, k.Speed, k.Precision},
		{k.Save, k.Load, k.Export, k.ClearHistory, k.ResetAll},
		{k.Theme, k.Sound, k.Animate, k.Help, k.Quit},
	}
}
