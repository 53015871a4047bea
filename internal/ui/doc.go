// Package ui provides the bookdash terminal dashboard.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model never calls the book API itself; every
// user action runs a Dashboard method in a tea.Cmd and the resulting store
// state is read back through state.Store.Snapshot. A one-second tick keeps the
// table in step with background polls and with optimistic inserts made while
// a create request is still in flight.
//
// # Package Structure
//
//   - app.go: Model, Update loop, key dispatch and the Run entry point
//   - keys.go: key bindings (bubbles/key)
//   - form.go: create and edit form built from bubbles/textinput
//   - render.go: header, book table, detail panel, form and status bar
//   - logs.go: log pane fed by logtail
//   - help.go: help overlay
//   - theme.go: Dracula and Slate lipgloss themes
//
// # Views
//
//	List    paged book table with search bar and pager
//	Detail  one book loaded with GetBookByID
//	Form    create or edit; field errors come from request validation
//	Logs    tail of the bookdash log file
//
// # Error Display
//
// The status bar shows the store's ErrorCause as a toast until it is
// dismissed with x. While a toast is visible the poller stays paused.
// Validation failures never reach the API and are shown next to the
// offending form field.
package ui
