package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/bookdash/internal/books"
)

// Lines used by the header, command bar, search bar, pager and status bar.
const chromeHeight = 7

func (m Model) renderMain() string {
	parts := []string{
		m.renderHeader(),
		m.renderCommandBar(),
		m.renderContent(),
		m.renderStatusBar(),
	}
	return strings.Join(parts, "\n")
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	parts := []string{styles.Logo.Render("bookdash")}
	if m.apiURL != "" {
		parts = append(parts, styles.MutedText.Render(truncateMiddle(m.apiURL, 40)))
	}

	flags := m.snapshot.Flags
	switch {
	case flags.Creating:
		parts = append(parts, styles.InfoText.Render("Creating..."))
	case flags.Refreshing:
		parts = append(parts, styles.InfoText.Render("Refreshing..."))
	}
	if filter := m.dash.Filter(); filter != "" {
		parts = append(parts, styles.AccentText.Render("search: "+filter))
	}
	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, styles.FaintText.Render("updated "+m.snapshot.LastUpdated.Format("15:04:05")))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		Render(styles.Header.Render(strings.Join(parts, "  ")))
}

func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bindings := m.keys.commandBar()
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.WarningText.Render(h.Key)+" "+styles.MutedText.Render(h.Desc))
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDetail:
		return m.renderDetail()
	case ViewForm:
		return m.renderForm()
	case ViewLogs:
		return m.logViewport.View()
	default:
		return m.renderList()
	}
}

func (m Model) renderList() string {
	styles := m.theme.Styles()

	var b strings.Builder
	if m.searching {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(styles.FaintText.Render("press / to search"))
	}
	b.WriteString("\n")

	if len(m.snapshot.Page.Items) == 0 {
		if m.snapshot.Flags.Refreshing || m.snapshot.LastUpdated.IsZero() {
			b.WriteString(styles.MutedText.Render("Loading books..."))
		} else {
			b.WriteString(styles.MutedText.Render("No books found"))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	page := m.snapshot.Page
	pager := fmt.Sprintf("Page %d of %d", max(page.CurrentPage, 1), max(page.TotalPage, 1))
	b.WriteString(styles.MutedText.Render(pager))
	b.WriteString("  ")
	b.WriteString(styles.FaintText.Render(fmt.Sprintf("%d per page", m.dash.PageSize())))
	return b.String()
}

func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	if m.detailErr != nil {
		msg := "Could not load book"
		if books.IsNotFound(m.detailErr) {
			msg = "Book not found"
		}
		return styles.Panel.Render(styles.DangerText.Render(msg) + "\n" + styles.MutedText.Render(m.detailErr.Error()))
	}

	book := m.detail
	rows := [][2]string{
		{"Title", book.Title},
		{"Author", book.Author},
		{"Publication year", book.PublicationYear},
		{"ISBN", book.ISBN},
		{"Cover image", book.CoverURL},
		{"ID", book.ID},
	}
	if book.CreatedAt != nil {
		rows = append(rows, [2]string{"Created", book.CreatedAt.Local().Format("2006-01-02 15:04")})
	}
	if book.UpdatedAt != nil {
		rows = append(rows, [2]string{"Updated", book.UpdatedAt.Local().Format("2006-01-02 15:04")})
	}

	var b strings.Builder
	for _, row := range rows {
		value := row[1]
		if value == "" {
			value = styles.FaintText.Render("-")
		}
		b.WriteString(styles.Label.Render(row[0]))
		b.WriteString(styles.Text.Render(value))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("e edit  esc back"))
	return styles.Panel.Render(b.String())
}

func (m Model) renderForm() string {
	styles := m.theme.Styles()

	title := "New book"
	if m.form.editing() {
		title = "Edit book"
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	b.WriteString("\n\n")
	for i, field := range formFields {
		label := styles.Label
		if i == m.form.focus {
			label = label.Inherit(styles.Focused)
		}
		b.WriteString(label.Render(field.label))
		b.WriteString(m.form.inputs[i].View())
		b.WriteString("\n")
		if msg, ok := m.form.errs[field.name]; ok {
			b.WriteString(styles.Label.Render(""))
			b.WriteString(styles.DangerText.Render(msg))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("tab next  enter save  esc cancel"))
	return styles.Panel.Render(b.String())
}

func (m Model) renderStatusBar() string {
	styles := m.theme.Styles()

	switch {
	case m.confirmID != "":
		return styles.WarningText.Render(fmt.Sprintf("Delete %s? (y/n)", m.bookTitle(m.confirmID)))
	case m.snapshot.Flags.ErrorCause.Message() != "":
		return styles.Toast.Render(m.snapshot.Flags.ErrorCause.Message()) + " " +
			styles.FaintText.Render("x dismiss")
	case m.notice != "":
		return styles.WarningText.Render(m.notice)
	}
	return styles.Footer.Render(fmt.Sprintf("%d books on this page", len(m.snapshot.Page.Items)))
}

func (m Model) bookTitle(id string) string {
	for _, b := range m.snapshot.Page.Items {
		if b.ID == id {
			return fmt.Sprintf("%q", b.Title)
		}
	}
	return id
}

func bookColumns(width int) []table.Column {
	year, isbn := 6, 17
	rest := width - year - isbn - 8
	if rest < 20 {
		rest = 20
	}
	title := rest * 3 / 5
	return []table.Column{
		{Title: "Title", Width: title},
		{Title: "Author", Width: rest - title},
		{Title: "Year", Width: year},
		{Title: "ISBN", Width: isbn},
	}
}

func bookRows(items []books.Book) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, b := range items {
		rows = append(rows, table.Row{b.Title, b.Author, b.PublicationYear, b.ISBN})
	}
	return rows
}

func truncateMiddle(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit || limit <= 3 {
		return s
	}
	half := (limit - 3) / 2
	return string(runes[:half]) + "..." + string(runes[len(runes)-(limit-3-half):])
}
