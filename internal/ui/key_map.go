package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	tab       key.Binding
	search    key.Binding
	login     key.Binding
	logout    key.Binding
	dashboard key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "home")),
		tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		search:    key.NewBinding(key.WithKeys("s", "/"), key.WithHelp("s", "search")),
		login:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "login")),
		logout:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "logout")),
		dashboard: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dashboard")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.tab},
		{k.search, k.login, k.logout, k.dashboard},
		{k.back, k.quit},
	}
}
