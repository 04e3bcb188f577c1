package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the form.
type keyMap struct {
	next    key.Binding
	prev    key.Binding
	submit  key.Binding
	browse  key.Binding
	copy1   key.Binding
	copy2   key.Binding
	open    key.Binding
	history key.Binding
	dismiss key.Binding
	back    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:    key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:    key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "download")),
		browse:  key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "browse")),
		copy1:   key.NewBinding(key.WithKeys("alt+1"), key.WithHelp("alt+1", "copy similar 1")),
		copy2:   key.NewBinding(key.WithKeys("alt+2"), key.WithHelp("alt+2", "copy similar 2")),
		open:    key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "open folder")),
		history: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "history")),
		dismiss: key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "dismiss")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:    key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.submit, k.next, k.browse, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev, k.submit},
		{k.browse, k.open, k.history},
		{k.copy1, k.copy2, k.quit},
	}
}
