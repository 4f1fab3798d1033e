package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for list screens.
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	Select        key.Binding
	Back          key.Binding
	Quit          key.Binding
	Help          key.Binding
	Refresh       key.Binding
	GameNight     key.Binding
	Cocktails     key.Binding
	RestaurantBar key.Binding
	TryVoxxy      key.Binding
	Location      key.Binding
	Blocked       key.Binding
	Block         key.Binding
	Unblock       key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", "l"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "h"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		GameNight: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "game night"),
		),
		Cocktails: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "cocktails"),
		),
		RestaurantBar: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "restaurant/bar"),
		),
		TryVoxxy: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "try voxxy"),
		),
		Location: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "saved location"),
		),
		Blocked: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "blocked users"),
		),
		Block: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "block user"),
		),
		Unblock: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d", "unblock"),
		),
	}
}

// WizardKeyMap defines the keybindings inside a wizard.
type WizardKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Toggle key.Binding
	Next   key.Binding
	Back   key.Binding
}

// DefaultWizardKeyMap returns the default wizard keybindings.
func DefaultWizardKeyMap() WizardKeyMap {
	return WizardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		Choose: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "ctrl+s"),
			key.WithHelp("tab", "next/finish"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "shift+tab"),
			key.WithHelp("esc", "back"),
		),
	}
}
