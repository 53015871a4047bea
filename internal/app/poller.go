package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/bookdash/internal/dashboard"
	"github.com/five82/bookdash/internal/state"
)

const defaultPollInterval = 30 * time.Second

// PollTarget is refreshed by the poller.
type PollTarget interface {
	Store() *state.Store
	Poll(ctx context.Context) error
}

// PollerConfig controls the poll cadence and when a tick is skipped.
type PollerConfig struct {
	Interval      time.Duration
	ShouldRefresh func(state.Flags) bool
	Logger        *zap.Logger
}

// Poller refreshes a target on a fixed cadence until stopped.
type Poller struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartPoller launches a background goroutine that polls target every
// interval while cfg.ShouldRefresh allows it. It returns immediately.
func StartPoller(ctx context.Context, cfg PollerConfig, target PollTarget) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	shouldRefresh := cfg.ShouldRefresh
	if shouldRefresh == nil {
		shouldRefresh = dashboard.ShouldPoll
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Poller{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if !shouldRefresh(target.Store().Flags()) {
				logger.Debug("poll skipped")
				continue
			}
			if err := target.Poll(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Debug("poll failed", zap.Error(err))
			}
		}
	}()
	return p
}

// Stop cancels the poller and waits for an in-flight refresh to return.
func (p *Poller) Stop() {
	p.once.Do(p.cancel)
	<-p.done
}
