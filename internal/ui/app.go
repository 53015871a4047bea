package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/bookdash/internal/books"
	"github.com/five82/bookdash/internal/dashboard"
	"github.com/five82/bookdash/internal/prefs"
	"github.com/five82/bookdash/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewList View = iota
	ViewDetail
	ViewForm
	ViewLogs
)

// Dashboard is the controller surface the UI drives.
type Dashboard interface {
	Store() *state.Store
	PageSize() int
	Filter() string
	Refresh(ctx context.Context, params dashboard.RefreshParams) error
	Reload(ctx context.Context) error
	NextPage(ctx context.Context) error
	PreviousPage(ctx context.Context) error
	CyclePageSize(ctx context.Context, delta int) error
	Search(ctx context.Context, value string) error
	ClearSearch(ctx context.Context) error
	CreateBook(ctx context.Context, req books.CreateBookRequest) error
	ViewBook(ctx context.Context, id string) (books.Book, error)
	UpdateBook(ctx context.Context, req books.UpdateBookRequest) error
	DeleteBook(ctx context.Context, id string) error
	DismissError()
}

var _ Dashboard = (*dashboard.Controller)(nil)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Dashboard  Dashboard
	Logger     *zap.Logger
	LogPath    string
	APIURL     string
	ThemeName  string
	PrefsPath  string
	RefreshUI  time.Duration
	LogHistory int
}

const (
	defaultUIInterval = time.Second
	defaultLogHistory = 200
)

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	dash      Dashboard
	logger    *zap.Logger
	logPath   string
	apiURL    string
	prefsPath string
	uiTick    time.Duration
	logLimit  int

	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	snapshot state.Snapshot

	table       table.Model
	search      textinput.Model
	searching   bool
	confirmID   string
	notice      string
	detail      books.Book
	detailErr   error
	form        formModel
	logViewport viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	uiTick := opts.RefreshUI
	if uiTick <= 0 {
		uiTick = defaultUIInterval
	}
	logLimit := opts.LogHistory
	if logLimit <= 0 {
		logLimit = defaultLogHistory
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	theme := GetTheme(opts.ThemeName)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "title or author"
	search.CharLimit = 100
	search.Cursor.SetMode(cursorMode)

	t := table.New(
		table.WithColumns(bookColumns(80)),
		table.WithFocused(true),
		table.WithHeight(dashboard.DefaultPageSize+1),
	)
	t.SetStyles(theme.TableStyles())

	return Model{
		ctx:         ctx,
		dash:        opts.Dashboard,
		logger:      logger,
		logPath:     opts.LogPath,
		apiURL:      opts.APIURL,
		prefsPath:   prefsPath,
		uiTick:      uiTick,
		logLimit:    logLimit,
		keys:        DefaultKeyMap(),
		theme:       theme,
		currentView: ViewList,
		table:       t,
		search:      search,
		logViewport: viewport.New(80, 20),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.uiTick),
		m.run("load", func(ctx context.Context) error {
			return m.dash.Refresh(ctx, dashboard.RefreshParams{})
		}),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case opDoneMsg:
		return m.handleOpDone(msg)

	case bookLoadedMsg:
		m.detail = msg.book
		m.detailErr = msg.err
		return m, nil

	case logsMsg:
		m.handleLogs(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.currentView == ViewForm:
		return m.handleFormKey(msg)
	case m.searching:
		return m.handleSearchKey(msg)
	case m.confirmID != "":
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		m.dash.DismissError()
		return m, m.fetchSnapshot()
	case key.Matches(msg, m.keys.Logs):
		if m.currentView == ViewLogs {
			m.currentView = ViewList
			return m, nil
		}
		m.currentView = ViewLogs
		return m, m.refreshLogs()
	}

	switch m.currentView {
	case ViewDetail, ViewLogs:
		if msg.String() == "esc" {
			m.currentView = ViewList
			return m, nil
		}
		if m.currentView == ViewDetail && key.Matches(msg, m.keys.Edit) && !m.detail.IsZero() {
			return m.openForm(m.detail)
		}
		if m.currentView == ViewLogs {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextPage):
		return m, m.run("next page", m.dash.NextPage)
	case key.Matches(msg, m.keys.PrevPage):
		return m, m.run("previous page", m.dash.PreviousPage)
	case key.Matches(msg, m.keys.PageSizeUp):
		return m, m.run("page size", func(ctx context.Context) error { return m.dash.CyclePageSize(ctx, 1) })
	case key.Matches(msg, m.keys.PageSizeDown):
		return m, m.run("page size", func(ctx context.Context) error { return m.dash.CyclePageSize(ctx, -1) })
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.dash.Filter())
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.ClearSearch):
		if m.dash.Filter() == "" {
			return m, nil
		}
		m.search.SetValue("")
		return m, m.run("clear search", m.dash.ClearSearch)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.run("refresh", m.dash.Reload)
	case key.Matches(msg, m.keys.Create):
		return m.openForm(books.Book{})
	}

	selected, ok := m.selectedBook()
	switch {
	case key.Matches(msg, m.keys.View):
		if !ok {
			return m, nil
		}
		m.currentView = ViewDetail
		m.detail = selected
		m.detailErr = nil
		return m, m.loadBook(selected.ID)
	case key.Matches(msg, m.keys.Edit):
		if !ok {
			return m, nil
		}
		return m.openForm(selected)
	case key.Matches(msg, m.keys.Delete):
		if !ok {
			return m, nil
		}
		m.confirmID = selected.ID
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		value := m.search.Value()
		return m, m.run("search", func(ctx context.Context) error { return m.dash.Search(ctx, value) })
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue(m.dash.Filter())
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmID
	m.confirmID = ""
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		return m, m.run("delete", func(ctx context.Context) error { return m.dash.DeleteBook(ctx, id) })
	}
	return m, nil
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.table.SetStyles(m.theme.TableStyles())
	name := m.theme.Name
	if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name }); err != nil {
		m.logger.Warn("save theme preference failed", zap.Error(err))
	}
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.fetchSnapshot(), tickCmd(m.uiTick)}
	if m.currentView == ViewLogs {
		cmds = append(cmds, m.refreshLogs())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	if msg.err != nil {
		var verr *books.ValidationError
		switch {
		case errors.As(msg.err, &verr):
			m.notice = verr.Error()
		case errors.Is(msg.err, context.Canceled):
		default:
			m.logger.Debug("action failed", zap.String("action", msg.op), zap.Error(msg.err))
		}
	}
	if msg.op == "delete" && msg.err == nil && m.currentView == ViewDetail {
		m.currentView = ViewList
	}
	return m, m.fetchSnapshot()
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.table.SetRows(bookRows(snap.Page.Items))
	if cursor := m.table.Cursor(); cursor >= len(snap.Page.Items) && len(snap.Page.Items) > 0 {
		m.table.SetCursor(len(snap.Page.Items) - 1)
	}
}

func (m Model) selectedBook() (books.Book, bool) {
	items := m.snapshot.Page.Items
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(items) {
		return books.Book{}, false
	}
	return items[cursor], true
}

func (m *Model) resize() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.table.SetColumns(bookColumns(width))
	m.table.SetWidth(width)

	height := m.height - chromeHeight
	if height < 3 {
		height = 3
	}
	m.table.SetHeight(height)
	m.logViewport.Width = width
	m.logViewport.Height = height
	m.search.Width = width - 4
	m.form.setWidth(width)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type opDoneMsg struct {
	op  string
	err error
}

type bookLoadedMsg struct {
	book books.Book
	err  error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchSnapshot() tea.Cmd {
	store := m.dash.Store()
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// run executes fn off the UI goroutine and reports completion.
func (m Model) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) loadBook(id string) tea.Cmd {
	ctx, dash := m.ctx, m.dash
	return func() tea.Msg {
		book, err := dash.ViewBook(ctx, id)
		return bookLoadedMsg{book: book, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
