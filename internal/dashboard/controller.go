package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/bookdash/internal/books"
	"github.com/five82/bookdash/internal/state"
)

// DefaultPageSize is used until the user picks another size.
const DefaultPageSize = 5

// PageSizes are the sizes the dashboard cycles through.
var PageSizes = []int{5, 10, 15}

// BookAPI is the subset of the book client the controller drives.
type BookAPI interface {
	CreateBook(ctx context.Context, book books.CreateBookRequest) error
	GetBooks(ctx context.Context, params books.ListParams) (books.ListResponse, error)
	GetBookByID(ctx context.Context, id string) (books.Book, error)
	UpdateBook(ctx context.Context, book books.UpdateBookRequest) error
	DeleteBookByID(ctx context.Context, id string) error
	Revalidate(ctx context.Context) error
}

// RefreshParams overrides parts of the current view for one refresh. Zero
// values fall back to the controller's state; a nil Search keeps the current
// filter.
type RefreshParams struct {
	Page     int
	PageSize int
	Search   *string
	Polling  bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithPageSize sets the initial page size.
func WithPageSize(size int) Option {
	return func(c *Controller) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIDGenerator replaces the temporary id source used for optimistic inserts.
func WithIDGenerator(gen func() string) Option {
	return func(c *Controller) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// WithPageSizeListener registers fn to be called whenever the page size changes.
func WithPageSizeListener(fn func(int)) Option {
	return func(c *Controller) {
		c.onPageSize = fn
	}
}

// Controller turns user intents into API calls and store updates.
type Controller struct {
	api   BookAPI
	store *state.Store

	logger     *zap.Logger
	newID      func() string
	onPageSize func(int)

	mu       sync.Mutex
	pageSize int
	filter   string
}

// New builds a controller around api and store.
func New(api BookAPI, store *state.Store, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		store:    store,
		logger:   zap.NewNop(),
		newID:    uuid.NewString,
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the store the controller writes to.
func (c *Controller) Store() *state.Store {
	return c.store
}

// PageSize reports the selected page size.
func (c *Controller) PageSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageSize
}

// Filter reports the active search filter.
func (c *Controller) Filter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Refresh loads a page from the API. A successful response replaces the page;
// a failure keeps the previous page and, unless the refresh was a poll, is
// surfaced as CauseFetchingBooks.
func (c *Controller) Refresh(ctx context.Context, params RefreshParams) error {
	page := params.Page
	if page <= 0 {
		page = c.store.Page().CurrentPage
	}
	if page <= 0 {
		page = 1
	}

	c.mu.Lock()
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = c.pageSize
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	search := c.filter
	if params.Search != nil {
		search = *params.Search
	}
	c.mu.Unlock()

	seq := c.store.BeginRefresh()
	started := time.Now()
	resp, err := c.api.GetBooks(ctx, books.ListParams{Page: page, PageSize: pageSize, Search: search})
	if err != nil {
		cause := state.CauseFetchingBooks
		if params.Polling {
			cause = state.CauseNone
		}
		c.store.FailRefresh(seq, cause, err)
		c.logger.Warn("fetch books failed",
			zap.Int("page", page),
			zap.Int("page_size", pageSize),
			zap.Bool("polling", params.Polling),
			zap.Error(err))
		return fmt.Errorf("refresh page %d: %w", page, err)
	}

	applied := c.store.CommitRefresh(seq, state.SetPage{
		Items:       resp.Books,
		TotalPage:   resp.TotalPage,
		CurrentPage: page,
	})
	if !applied {
		c.logger.Debug("discarded stale books response", zap.Uint64("seq", seq), zap.Int("page", page))
		return nil
	}
	c.logger.Debug("books refreshed",
		zap.Int("page", page),
		zap.Int("count", len(resp.Books)),
		zap.Int("total_page", resp.TotalPage),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}

// Poll runs a background refresh of the current view.
func (c *Controller) Poll(ctx context.Context) error {
	return c.Refresh(ctx, RefreshParams{Polling: true})
}

// Reload drops cached responses and refreshes the current view.
func (c *Controller) Reload(ctx context.Context) error {
	if err := c.api.Revalidate(ctx); err != nil {
		c.logger.Warn("revalidate failed", zap.Error(err))
	}
	return c.Refresh(ctx, RefreshParams{})
}

// NextPage moves forward one page unless already on the last one.
func (c *Controller) NextPage(ctx context.Context) error {
	p := c.store.Page()
	if p.CurrentPage >= p.TotalPage {
		return nil
	}
	return c.Refresh(ctx, RefreshParams{Page: p.CurrentPage + 1})
}

// PreviousPage moves back one page unless already on the first one.
func (c *Controller) PreviousPage(ctx context.Context) error {
	p := c.store.Page()
	if p.CurrentPage <= 1 {
		return nil
	}
	return c.Refresh(ctx, RefreshParams{Page: p.CurrentPage - 1})
}

// GoToPage loads page when it is within range.
func (c *Controller) GoToPage(ctx context.Context, page int) error {
	p := c.store.Page()
	if page < 1 || (p.TotalPage > 0 && page > p.TotalPage) {
		return nil
	}
	return c.Refresh(ctx, RefreshParams{Page: page})
}

// SetPageSize switches the page size, notifies the listener and reloads the
// current page.
func (c *Controller) SetPageSize(ctx context.Context, size int) error {
	if size <= 0 {
		return fmt.Errorf("invalid page size %d", size)
	}
	c.mu.Lock()
	changed := c.pageSize != size
	c.pageSize = size
	listener := c.onPageSize
	c.mu.Unlock()

	if changed && listener != nil {
		listener(size)
	}
	return c.Refresh(ctx, RefreshParams{PageSize: size})
}

// CyclePageSize steps through PageSizes by delta positions.
func (c *Controller) CyclePageSize(ctx context.Context, delta int) error {
	current := c.PageSize()
	idx := 0
	for i, size := range PageSizes {
		if size == current {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 || idx >= len(PageSizes) {
		return nil
	}
	return c.SetPageSize(ctx, PageSizes[idx])
}

// Search filters the list by value and returns to page 1. A blank value
// clears the filter.
func (c *Controller) Search(ctx context.Context, value string) error {
	value = strings.TrimSpace(value)
	c.mu.Lock()
	c.filter = value
	c.mu.Unlock()
	return c.Refresh(ctx, RefreshParams{Page: 1, Search: &value})
}

// ClearSearch drops the filter and reloads page 1 without a search term.
func (c *Controller) ClearSearch(ctx context.Context) error {
	return c.Search(ctx, "")
}

// CreateBook inserts req into the page immediately, then confirms it with
// the API. On failure the placeholder is removed and CauseCreatingBook is
// recorded; on success the page is reloaded from the server.
func (c *Controller) CreateBook(ctx context.Context, req books.CreateBookRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	tempID := c.newID()
	pageSize := c.PageSize()

	c.store.BeginCreate()
	defer c.store.EndCreate()

	c.store.Apply(state.InsertOptimistic{
		Book: books.Book{
			ID:              tempID,
			CoverURL:        req.CoverURL,
			ISBN:            req.ISBN,
			Title:           req.Title,
			Author:          req.Author,
			PublicationYear: req.PublicationYear,
		},
		PageSize: pageSize,
	})

	if err := c.api.CreateBook(ctx, req); err != nil {
		c.store.Apply(state.RevertOptimistic{ID: tempID})
		c.store.SetError(state.CauseCreatingBook, err)
		c.logger.Warn("create book failed", zap.String("temp_id", tempID), zap.Error(err))
		return fmt.Errorf("create book: %w", err)
	}

	c.logger.Info("book created", zap.String("title", req.Title))
	return c.Refresh(ctx, RefreshParams{})
}

// ViewBook loads a single book.
func (c *Controller) ViewBook(ctx context.Context, id string) (books.Book, error) {
	book, err := c.api.GetBookByID(ctx, id)
	if err != nil {
		c.logger.Warn("get book failed", zap.String("id", id), zap.Error(err))
		return books.Book{}, fmt.Errorf("view book %s: %w", id, err)
	}
	return book, nil
}

// UpdateBook saves req and reloads the current page.
func (c *Controller) UpdateBook(ctx context.Context, req books.UpdateBookRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := c.api.UpdateBook(ctx, req); err != nil {
		c.store.SetError(state.CauseUpdatingBook, err)
		c.logger.Warn("update book failed", zap.String("id", req.ID), zap.Error(err))
		return fmt.Errorf("update book %s: %w", req.ID, err)
	}
	c.logger.Info("book updated", zap.String("id", req.ID))
	return c.Refresh(ctx, RefreshParams{})
}

// DeleteBook removes the book and reloads the current page, stepping back a
// page when the last item on a trailing page was deleted.
func (c *Controller) DeleteBook(ctx context.Context, id string) error {
	if err := c.api.DeleteBookByID(ctx, id); err != nil {
		c.store.SetError(state.CauseDeletingBook, err)
		c.logger.Warn("delete book failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	c.logger.Info("book deleted", zap.String("id", id))

	p := c.store.Page()
	page := p.CurrentPage
	if len(p.Items) == 1 && page > 1 {
		page--
	}
	return c.Refresh(ctx, RefreshParams{Page: page})
}

// DismissError clears the current failure so polling resumes.
func (c *Controller) DismissError() {
	c.store.ClearError()
}

// ShouldPoll reports whether a background refresh may run given flags.
func ShouldPoll(f state.Flags) bool {
	return !f.Refreshing && !f.Creating && f.ErrorCause == state.CauseNone
}
