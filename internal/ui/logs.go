package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/bookdash/internal/logtail"
)

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

func (m Model) refreshLogs() tea.Cmd {
	path, limit := m.logPath, m.logLimit
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.Read(path, limit)
		return logsMsg{entries: entries, err: err}
	}
}

func (m *Model) handleLogs(msg logsMsg) {
	if msg.err != nil {
		m.logViewport.SetContent(m.theme.Styles().DangerText.Render(msg.err.Error()))
		return
	}
	follow := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0
	m.logViewport.SetContent(m.formatLogs(msg.entries))
	if follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) formatLogs(entries []logtail.Entry) string {
	styles := m.theme.Styles()
	if len(entries) == 0 {
		return styles.MutedText.Render("No log entries yet")
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := e.String()
		switch strings.ToLower(e.Level) {
		case "error", "dpanic", "panic", "fatal":
			line = styles.DangerText.Render(line)
		case "warn":
			line = styles.WarningText.Render(line)
		case "debug":
			line = styles.FaintText.Render(line)
		default:
			line = styles.Text.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
