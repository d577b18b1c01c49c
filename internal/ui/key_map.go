package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the review prompt.
type keyMap struct {
	yes  key.Binding
	no   key.Binding
	open key.Binding
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		yes:  key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "download")),
		no:   key.NewBinding(key.WithKeys("n", "N", "enter"), key.WithHelp("n", "skip")),
		open: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "stop reviewing")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.yes, k.no, k.open, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.yes, k.no},
		{k.open, k.quit},
	}
}
