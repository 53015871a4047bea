package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/bookdash/internal/books"
	"github.com/five82/bookdash/internal/cache"
	"github.com/five82/bookdash/internal/config"
	"github.com/five82/bookdash/internal/dashboard"
	"github.com/five82/bookdash/internal/metrics"
	"github.com/five82/bookdash/internal/prefs"
	"github.com/five82/bookdash/internal/state"
	"github.com/five82/bookdash/internal/telemetry"
	"github.com/five82/bookdash/internal/ui"
)

// Version is reported in the trace resource and User-Agent.
var Version = "dev"

const (
	cachePrefix     = "bookdash"
	rateLimitBurst  = 5
	shutdownTimeout = 5 * time.Second
)

// Options configure the bookdash application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/bookdash/prefs.toml
	PollEvery  int    // seconds; zero uses the configured interval
}

// Run boots the dashboard until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) (err error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.SetPollInterval(time.Duration(opts.PollEvery) * time.Second)

	logger, closeLog, err := telemetry.NewLogger(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = closeLog() }()
	logger.Info("bookdash starting",
		zap.String("version", Version),
		zap.String("api_url", cfg.APIURL),
		zap.Duration("poll_interval", cfg.PollInterval))

	tp, shutdownTracing, err := telemetry.InitTracing(ctx, telemetry.TracingConfig{
		Endpoint: cfg.OTLPEndpoint,
		Version:  Version,
		Insecure: true,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdownWithTimeout(logger, "tracing", shutdownTracing)

	registry := metrics.NewRegistry()
	if cfg.MetricsAddr != "" {
		srv := metrics.NewServer(cfg.MetricsAddr, registry, logger.Named("metrics"))
		if err := srv.Start(); err != nil {
			logger.Warn("metrics server disabled", zap.String("addr", cfg.MetricsAddr), zap.Error(err))
		} else {
			defer shutdownWithTimeout(logger, "metrics", srv.Shutdown)
		}
	}

	clientOpts := []books.Option{
		books.WithTracerProvider(tp),
		books.WithLogger(logger.Named("books")),
		books.WithObserver(registry),
		books.WithRateLimit(cfg.RateLimit, rateLimitBurst),
		books.WithUserAgent("bookdash/" + Version),
	}
	respCache, closeCache := openCache(ctx, cfg, logger)
	defer closeCache()
	if respCache != nil {
		clientOpts = append(clientOpts, books.WithCache(respCache), books.WithCacheTTL(cfg.CacheTTL))
	}

	client, err := books.NewClient(books.Config{BaseURL: cfg.APIURL, RetryLimit: cfg.RetryLimit}, clientOpts...)
	if err != nil {
		return fmt.Errorf("init book client: %w", err)
	}

	userPrefs := prefs.Load(opts.PrefsPath)
	ctrl := dashboard.New(client, &state.Store{},
		dashboard.WithPageSize(userPrefs.PageSize),
		dashboard.WithLogger(logger.Named("dashboard")),
		dashboard.WithPageSizeListener(func(size int) {
			if err := prefs.Update(opts.PrefsPath, func(p *prefs.Prefs) { p.PageSize = size }); err != nil {
				logger.Warn("save page size preference failed", zap.Error(err))
			}
		}),
	)

	poller := StartPoller(ctx, PollerConfig{
		Interval:      cfg.PollInterval,
		ShouldRefresh: dashboard.ShouldPoll,
		Logger:        logger.Named("poller"),
	}, ctrl)
	defer poller.Stop()

	err = ui.Run(ui.Options{
		Context:   ctx,
		Dashboard: ctrl,
		Logger:    logger.Named("ui"),
		LogPath:   cfg.LogPath,
		APIURL:    client.BaseURL(),
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
	})
	logger.Info("bookdash stopped", zap.Error(err))
	return err
}

// openCache picks the response cache: redis when configured and reachable,
// otherwise an in-process store. A zero TTL disables caching.
func openCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (cache.Store, func()) {
	if cfg.CacheTTL <= 0 {
		return nil, func() {}
	}
	if cfg.RedisURL == "" {
		return cache.NewMemory(), func() {}
	}

	redisCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	r, err := cache.NewRedis(redisCtx, cfg.RedisURL, cachePrefix)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		return cache.NewMemory(), func() {}
	}
	return r, func() {
		if err := r.Close(); err != nil {
			logger.Debug("close redis", zap.Error(err))
		}
	}
}

func shutdownWithTimeout(logger *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("shutdown failed", zap.String("component", name), zap.Error(err))
	}
}
