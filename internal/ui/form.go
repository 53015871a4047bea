package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/bookdash/internal/books"
)

type formField struct {
	name  string // request struct field, as reported by validation
	label string
}

var formFields = []formField{
	{name: "Title", label: "Title"},
	{name: "Author", label: "Author"},
	{name: "PublicationYear", label: "Publication year"},
	{name: "ISBN", label: "ISBN"},
	{name: "CoverURL", label: "Cover image URL"},
}

// cursorMode applies to every text input the UI creates.
var cursorMode = cursor.CursorBlink

// formModel is the create/edit form.
type formModel struct {
	inputs    []textinput.Model
	focus     int
	editingID string
	errs      map[string]string
}

func newForm(book books.Book) formModel {
	values := map[string]string{
		"Title":           book.Title,
		"Author":          book.Author,
		"PublicationYear": book.PublicationYear,
		"ISBN":            book.ISBN,
		"CoverURL":        book.CoverURL,
	}

	inputs := make([]textinput.Model, len(formFields))
	for i, f := range formFields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		in.Cursor.SetMode(cursorMode)
		in.SetValue(values[f.name])
		if f.name == "PublicationYear" {
			in.CharLimit = 8
			in.Placeholder = "YYYY"
		}
		inputs[i] = in
	}
	return formModel{inputs: inputs, editingID: book.ID}
}

func (f formModel) editing() bool {
	return f.editingID != ""
}

func (f *formModel) setWidth(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(width-24, 10)
	}
}

func (f formModel) value(name string) string {
	for i, field := range formFields {
		if field.name == name {
			return strings.TrimSpace(f.inputs[i].Value())
		}
	}
	return ""
}

func (f formModel) createRequest() books.CreateBookRequest {
	return books.CreateBookRequest{
		Title:           f.value("Title"),
		Author:          f.value("Author"),
		PublicationYear: f.value("PublicationYear"),
		ISBN:            f.value("ISBN"),
		CoverURL:        f.value("CoverURL"),
	}
}

func (f *formModel) focusField(idx int) tea.Cmd {
	n := len(f.inputs)
	f.focus = ((idx % n) + n) % n
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[f.focus].Focus()
}

// setErrors maps a validation failure onto the form fields.
func (f *formModel) setErrors(err error) {
	f.errs = nil
	var verr *books.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	f.errs = make(map[string]string, len(verr.Fields))
	for _, fe := range verr.Fields {
		f.errs[fe.Field] = fe.Message
	}
}

func (m Model) openForm(book books.Book) (tea.Model, tea.Cmd) {
	m.form = newForm(book)
	m.form.setWidth(m.width)
	m.currentView = ViewForm
	return m, m.form.focusField(0)
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.currentView = ViewList
		return m, nil
	case "tab", "down":
		return m, m.form.focusField(m.form.focus + 1)
	case "shift+tab", "up":
		return m, m.form.focusField(m.form.focus - 1)
	case "enter":
		if m.form.focus < len(m.form.inputs)-1 {
			return m, m.form.focusField(m.form.focus + 1)
		}
		return m.submitForm()
	case "ctrl+s":
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

// submitForm validates locally so field errors stay on the form, then hands
// the request to the controller and returns to the list.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	req := m.form.createRequest()

	if m.form.editing() {
		update := books.UpdateBookRequest{ID: m.form.editingID, CreateBookRequest: req}
		if err := update.Validate(); err != nil {
			m.form.setErrors(err)
			return m, nil
		}
		m.currentView = ViewList
		return m, m.run("update", func(ctx context.Context) error { return m.dash.UpdateBook(ctx, update) })
	}

	if err := req.Validate(); err != nil {
		m.form.setErrors(err)
		return m, nil
	}
	m.currentView = ViewList
	return m, tea.Batch(
		m.run("create", func(ctx context.Context) error { return m.dash.CreateBook(ctx, req) }),
		m.fetchSnapshot(),
	)
}
