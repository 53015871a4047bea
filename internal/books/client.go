package books

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/bytedance/sonic"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/five82/bookdash/internal/cache"
)

// Cache tags attached to GET responses. CacheKey is shared by list and detail
// entries so Revalidate can drop both without touching anything else.
const (
	CacheKey  = "books-cache"
	TagList   = "books"
	TagDetail = "book"
)

const (
	tracerName       = "github.com/five82/bookdash/internal/books"
	defaultUserAgent = "bookdash/0.1"
	defaultCacheTTL  = time.Hour
	defaultPage      = 1
	defaultPageSize  = 5
	maxErrorBody     = 512
)

// API is the set of book operations the dashboard depends on. It is
// implemented by *Client and can be mocked in tests.
type API interface {
	CreateBook(ctx context.Context, book CreateBookRequest) error
	GetBooks(ctx context.Context, params ListParams) (ListResponse, error)
	GetBookByID(ctx context.Context, id string) (Book, error)
	UpdateBook(ctx context.Context, book UpdateBookRequest) error
	DeleteBookByID(ctx context.Context, id string) error
	Revalidate(ctx context.Context) error
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Observer receives one call per client operation.
type Observer interface {
	ObserveRequest(operation, outcome string, elapsed time.Duration)
}

// Config is the static configuration of a Client.
type Config struct {
	BaseURL    string
	RetryLimit int // total attempts per request; zero uses 3
}

// Option customizes a Client.
type Option func(*options)

type options struct {
	httpClient     *http.Client
	tracerProvider trace.TracerProvider
	cache          cache.Store
	cacheTTL       time.Duration
	logger         *zap.Logger
	limiter        *rate.Limiter
	retryBackoff   time.Duration
	observer       Observer
	userAgent      string
}

// WithHTTPClient uses hc as the base client. Its transport is wrapped with
// retry and tracing.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithTracerProvider sets the provider used for operation spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithCache enables response caching for list and detail reads.
func WithCache(store cache.Store) Option {
	return func(o *options) { o.cache = store }
}

// WithCacheTTL sets how long cached reads stay valid.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.cacheTTL = ttl }
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRateLimit throttles outgoing attempts to rps requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		if rps <= 0 {
			o.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetryBackoff sets the delay before the first retry. Later retries double it.
func WithRetryBackoff(d time.Duration) Option {
	return func(o *options) { o.retryBackoff = d }
}

// WithObserver reports per-operation outcomes, typically to metrics.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// Client talks to the book API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tracer    trace.Tracer
	cache     cache.Store
	cacheTTL  time.Duration
	log       *zap.Logger
	observer  Observer
	userAgent string
	gens      tagGenerations
}

// tagGenerations counts invalidations per tag. A read that started before an
// invalidation of one of its tags must not write its body back.
type tagGenerations struct {
	mu   sync.Mutex
	gens map[string]uint64
}

// sum is compared rather than each tag because generations only grow.
func (g *tagGenerations) sum(tags []string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	var total uint64
	for _, tag := range tags {
		total += g.gens[tag]
	}
	return total
}

func (g *tagGenerations) bump(tags []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gens == nil {
		g.gens = make(map[string]uint64)
	}
	for _, tag := range tags {
		g.gens[tag]++
	}
}

// NewClient builds a Client. It fails with ErrMissingBaseURL when cfg has no
// base URL; every other failure surfaces from the operations themselves.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	o := options{
		cacheTTL:     defaultCacheTTL,
		retryBackoff: defaultRetryBackoff,
		userAgent:    defaultUserAgent,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	attempts := cfg.RetryLimit
	if attempts <= 0 {
		attempts = defaultRetryLimit
	}

	hc := &http.Client{}
	if o.httpClient != nil {
		dup := *o.httpClient
		hc = &dup
	}
	next := hc.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	hc.Transport = &retryTransport{
		next:     otelhttp.NewTransport(next, otelhttp.WithTracerProvider(o.tracerProvider)),
		attempts: attempts,
		initial:  o.retryBackoff,
		limiter:  o.limiter,
	}

	return &Client{
		baseURL:   base,
		http:      hc,
		tracer:    o.tracerProvider.Tracer(tracerName),
		cache:     o.cache,
		cacheTTL:  o.cacheTTL,
		log:       o.logger,
		observer:  o.observer,
		userAgent: o.userAgent,
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// CreateBook posts a new book.
func (c *Client) CreateBook(ctx context.Context, book CreateBookRequest) (err error) {
	const op = "CreateBook"
	ctx, done := c.start(ctx, op, "Book created successfully",
		attribute.String("newBook", fmt.Sprintf("%+v", book)),
	)
	defer func() { done(err) }()

	if _, err = c.send(ctx, op, http.MethodPost, &url.URL{Path: "book"}, book); err != nil {
		return err
	}
	c.invalidate(ctx, TagList)
	return nil
}

// GetBooks lists one page of books. On failure the returned response is empty.
func (c *Client) GetBooks(ctx context.Context, params ListParams) (resp ListResponse, err error) {
	const op = "GetBooks"
	ctx, done := c.start(ctx, op, "Books fetched successfully",
		attribute.Int("page", params.Page),
		attribute.Int("pageSize", params.PageSize),
		attribute.String("search", params.Search),
	)
	defer func() { done(err) }()

	ref := &url.URL{Path: "books", RawQuery: listQuery(params).Encode()}
	var payload ListResponse
	if err = c.fetch(ctx, op, ref, &payload, TagList, CacheKey); err != nil {
		return ListResponse{}, err
	}
	return payload, nil
}

// GetBookByID fetches a single book. On failure the returned book is empty.
func (c *Client) GetBookByID(ctx context.Context, id string) (book Book, err error) {
	const op = "GetBookByID"
	ctx, done := c.start(ctx, op, "Book fetched successfully", attribute.String("bookId", id))
	defer func() { done(err) }()

	var payload bookEnvelope
	if err = c.fetch(ctx, op, bookRef(id), &payload, TagDetail, CacheKey); err != nil {
		return Book{}, err
	}
	return payload.Book, nil
}

// UpdateBook replaces the book identified by book.ID.
func (c *Client) UpdateBook(ctx context.Context, book UpdateBookRequest) (err error) {
	const op = "UpdateBook"
	ctx, done := c.start(ctx, op, "Book updated successfully", attribute.String("bookId", book.ID))
	defer func() { done(err) }()

	if _, err = c.send(ctx, op, http.MethodPut, bookRef(book.ID), book); err != nil {
		return err
	}
	c.invalidate(ctx, TagList, TagDetail)
	return nil
}

// DeleteBookByID removes a book.
func (c *Client) DeleteBookByID(ctx context.Context, id string) (err error) {
	const op = "DeleteBookByID"
	ctx, done := c.start(ctx, op, "Book deleted successfully", attribute.String("bookId", id))
	defer func() { done(err) }()

	if _, err = c.send(ctx, op, http.MethodDelete, bookRef(id), nil); err != nil {
		return err
	}
	c.invalidate(ctx, TagList, TagDetail)
	return nil
}

// Revalidate drops every cached list and detail response. It is used after a
// mutation that happened outside this client.
func (c *Client) Revalidate(ctx context.Context) (err error) {
	const op = "Revalidate"
	ctx, span := c.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("tag", CacheKey)))
	defer span.End()

	if c.cache == nil {
		return nil
	}
	c.gens.bump([]string{CacheKey})
	if err = c.cache.InvalidateTags(ctx, CacheKey); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("revalidate %s: %w", CacheKey, err)
	}
	span.SetStatus(codes.Ok, "Cache revalidated")
	return nil
}

// start opens the operation span. The returned func must run exactly once on
// every exit path; it records the outcome and ends the span.
func (c *Client) start(ctx context.Context, op, okMessage string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	began := time.Now()
	ctx, span := c.tracer.Start(ctx, op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		defer span.End()
		if c.observer != nil {
			c.observer.ObserveRequest(op, outcome(err), time.Since(began))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if code := StatusCode(err); code != 0 {
				span.SetAttributes(attribute.Int("http.status_code", code))
			}
			c.log.Warn("book api call failed", zap.String("operation", op), zap.Error(err))
			return
		}
		span.SetStatus(codes.Ok, okMessage)
	}
}

func (c *Client) fetch(ctx context.Context, op string, ref *url.URL, dest any, tags ...string) error {
	key := c.baseURL.ResolveReference(ref).String()
	if body, ok := c.cached(ctx, key); ok {
		if err := json.Unmarshal(body, dest); err == nil {
			trace.SpanFromContext(ctx).AddEvent("cache hit", trace.WithAttributes(attribute.String("key", key)))
			return nil
		}
		c.log.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	gen := c.gens.sum(tags)
	body, err := c.send(ctx, op, http.MethodGet, ref, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return &Error{Op: op, Kind: KindDecode, Err: err}
	}
	if c.gens.sum(tags) != gen {
		c.log.Debug("skipping cache write invalidated in flight", zap.String("key", key))
		return nil
	}
	c.store(ctx, key, body, tags)
	return nil
}

func (c *Client) send(ctx context.Context, op, method string, ref *url.URL, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(encoded)
	}

	reqURL := c.baseURL.ResolveReference(ref)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Op:         op,
			Kind:       KindHTTP,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s %s: %s", method, reqURL.Path, errorSnippet(data, resp.Status)),
		}
	}
	c.log.Debug("book api call",
		zap.String("operation", op),
		zap.String("method", method),
		zap.String("url", reqURL.String()),
		zap.Int("status", resp.StatusCode),
	)
	return data, nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return body, ok
}

func (c *Client) store(ctx context.Context, key string, body []byte, tags []string) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	if err := c.cache.Set(ctx, key, body, c.cacheTTL, tags...); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Client) invalidate(ctx context.Context, tags ...string) {
	if c.cache == nil {
		return
	}
	c.gens.bump(tags)
	if err := c.cache.InvalidateTags(ctx, tags...); err != nil {
		c.log.Warn("cache invalidation failed", zap.Strings("tags", tags), zap.Error(err))
	}
}

func listQuery(params ListParams) url.Values {
	values := url.Values{}
	if params.Page > 0 || params.PageSize > 0 {
		page := params.Page
		if page <= 0 {
			page = defaultPage
		}
		size := params.PageSize
		if size <= 0 {
			size = defaultPageSize
		}
		values.Set("page", strconv.Itoa(page))
		values.Set("pageSize", strconv.Itoa(size))
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		values.Set("search", search)
	}
	return values
}

func bookRef(id string) *url.URL {
	return &url.URL{Path: "book/" + id, RawPath: "book/" + url.PathEscape(id)}
}

func errorSnippet(body []byte, status string) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return status
	}
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrMissingBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base URL %q: missing host", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/"
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
