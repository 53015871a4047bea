package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/five82/bookdash/internal/cache"
	"github.com/five82/bookdash/internal/config"
)

func TestOpenCache(t *testing.T) {
	logger := zap.NewNop()

	cfg := config.Default()
	cfg.CacheTTL = 0
	store, closeFn := openCache(context.Background(), cfg, logger)
	closeFn()
	if store != nil {
		t.Fatalf("store = %T, want nil when TTL is zero", store)
	}

	cfg.CacheTTL = time.Minute
	cfg.RedisURL = ""
	store, closeFn = openCache(context.Background(), cfg, logger)
	closeFn()
	if _, ok := store.(*cache.Memory); !ok {
		t.Fatalf("store = %T, want *cache.Memory", store)
	}

	cfg.RedisURL = "not-a-redis-url"
	store, closeFn = openCache(context.Background(), cfg, logger)
	closeFn()
	if _, ok := store.(*cache.Memory); !ok {
		t.Fatalf("store = %T, want in-memory fallback", store)
	}
}

func TestRunRequiresAPIURL(t *testing.T) {
	t.Setenv("BOOKDASH_API_URL", "")
	t.Chdir(t.TempDir())

	err := Run(context.Background(), Options{ConfigPath: t.TempDir() + "/missing.toml"})
	if !errors.Is(err, config.ErrMissingAPIURL) {
		t.Fatalf("Run error = %v, want ErrMissingAPIURL", err)
	}
}

func TestShutdownWithTimeoutPassesDeadline(t *testing.T) {
	var hasDeadline bool
	shutdownWithTimeout(zap.NewNop(), "test", func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})
	if !hasDeadline {
		t.Fatal("shutdown context has no deadline")
	}
}
