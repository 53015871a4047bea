package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the list view key bindings.
type keyMap struct {
	Quit         key.Binding
	Help         key.Binding
	CycleTheme   key.Binding
	NextPage     key.Binding
	PrevPage     key.Binding
	PageSizeUp   key.Binding
	PageSizeDown key.Binding
	Search       key.Binding
	ClearSearch  key.Binding
	Create       key.Binding
	View         key.Binding
	Edit         key.Binding
	Delete       key.Binding
	Refresh      key.Binding
	Dismiss      key.Binding
	Logs         key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "Quit")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "Toggle help")),
		CycleTheme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "Cycle theme")),
		NextPage:     key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "Next page")),
		PrevPage:     key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "Previous page")),
		PageSizeUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "Larger pages")),
		PageSizeDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "Smaller pages")),
		Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "Search")),
		ClearSearch:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "Clear search")),
		Create:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "Create book")),
		View:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "View book")),
		Edit:         key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "Edit book")),
		Delete:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "Delete book")),
		Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Refresh")),
		Dismiss:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "Dismiss error")),
		Logs:         key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "Toggle logs")),
	}
}

// commandBar lists the bindings shown under the header.
func (k keyMap) commandBar() []key.Binding {
	return []key.Binding{k.Create, k.View, k.Edit, k.Delete, k.Search, k.NextPage, k.PrevPage, k.Refresh, k.Logs, k.Help, k.Quit}
}

// helpSections groups the bindings for the help overlay.
func (k keyMap) helpSections() []helpSection {
	return []helpSection{
		{title: "Books", bindings: []key.Binding{k.Create, k.View, k.Edit, k.Delete, k.Refresh}},
		{title: "Paging", bindings: []key.Binding{k.NextPage, k.PrevPage, k.PageSizeUp, k.PageSizeDown}},
		{title: "Search", bindings: []key.Binding{k.Search, k.ClearSearch}},
		{title: "General", bindings: []key.Binding{k.Dismiss, k.Logs, k.CycleTheme, k.Help, k.Quit}},
	}
}
