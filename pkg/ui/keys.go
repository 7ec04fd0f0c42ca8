package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists every binding of the browser. It satisfies help.KeyMap.
type KeyMap struct {
	Search    key.Binding
	Blur      key.Binding
	Mode      key.Binding
	Algorithm key.Binding
	DepthUp   key.Binding
	DepthDown key.Binding
	LimitUp   key.Binding
	LimitDown key.Binding
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Details   key.Binding
	Copy      key.Binding
	Reload    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave search/close"),
		),
		Mode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "diagram/list"),
		),
		Algorithm: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "tree/force"),
		),
		DepthUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "more context"),
		),
		DepthDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "less context"),
		),
		LimitUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "raise limit"),
		),
		LimitDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "lower limit"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "previous node"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "next node"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy outline"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp is the one-line footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Mode, k.Algorithm, k.Details, k.Help, k.Quit}
}

// FullHelp groups every binding by topic.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Blur, k.Mode, k.Algorithm},
		{k.DepthUp, k.DepthDown, k.LimitUp, k.LimitDown},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Details, k.Copy, k.Reload, k.Help, k.Quit},
	}
}
