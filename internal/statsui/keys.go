package statsui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev     key.Binding
	Next     key.Binding
	Wider    key.Binding
	Narrower key.Binding
	Settings key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev:     key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←/→", "tabs")),
		Next:     key.NewBinding(key.WithKeys("right", "l", "tab")),
		Wider:    key.NewBinding(key.WithKeys("=", "+"), key.WithHelp("-/=", "curve window")),
		Narrower: key.NewBinding(key.WithKeys("-")),
		Settings: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filters")),
		Top:      key.NewBinding(key.WithKeys("g", "home")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() string {
	out := ""
	for i, b := range []key.Binding{k.Prev, k.Wider, k.Settings, k.Quit} {
		if i > 0 {
			out += "  "
		}
		out += b.Help().Key + " " + b.Help().Desc
	}
	return out
}
