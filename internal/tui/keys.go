// SPDX-License-Identifier: MPL-2.0

package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the panel bindings. It implements help.KeyMap.
type keyMap struct {
	Retry    key.Binding
	Quit     key.Binding
	Next     key.Binding
	Copy     key.Binding
	CopyAll  key.Binding
	Save     key.Binding
	Guide    key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Quit:     key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("q/esc", "cancel")),
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next section")),
		Copy:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy section")),
		CopyAll:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy digest")),
		Save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Guide:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "setup guide")),
		Up:       key.NewBinding(key.WithKeys("up", "k")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "b")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "f", " ")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Copy, k.CopyAll, k.Save, k.Retry, k.Guide, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
