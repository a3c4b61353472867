package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Settings   key.Binding
	RequestLog key.Binding
	Escape     key.Binding

	// Screens
	NextScreen key.Binding
	PrevScreen key.Binding
	Dashboard  key.Binding
	Clients    key.Binding
	Sessions   key.Binding
	Payments   key.Binding
	Calendar   key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Actions
	Reload       key.Binding
	New          key.Binding
	Edit         key.Binding
	Delete       key.Binding
	FilterClient key.Binding

	// Modals
	Confirm   key.Binding
	NextField key.Binding
	PrevField key.Binding
	Yes       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Settings: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Server settings"),
		),
		RequestLog: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Request log"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close"),
		),

		NextScreen: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next screen"),
		),
		PrevScreen: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous screen"),
		),
		Dashboard: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "Dashboard")),
		Clients:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "Clients")),
		Sessions:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "Sessions")),
		Payments:  key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "Payments")),
		Calendar:  key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "Calendar")),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Edit client"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete"),
		),
		FilterClient: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Filter by client"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "Yes"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextScreen, k.Reload, k.New, k.Delete, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextScreen, k.PrevScreen, k.Dashboard, k.Clients, k.Sessions, k.Payments, k.Calendar},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Reload, k.New, k.Edit, k.Delete, k.FilterClient},
		{k.Settings, k.RequestLog, k.CycleTheme, k.Help, k.Quit},
	}
}
