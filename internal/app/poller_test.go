package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/bookdash/internal/state"
)

type countingTarget struct {
	store *state.Store
	polls atomic.Int32
}

func (c *countingTarget) Store() *state.Store { return c.store }

func (c *countingTarget) Poll(context.Context) error {
	c.polls.Add(1)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPoller_PollsOnTick(t *testing.T) {
	target := &countingTarget{store: &state.Store{}}
	p := StartPoller(context.Background(), PollerConfig{Interval: 10 * time.Millisecond}, target)
	defer p.Stop()

	waitFor(t, func() bool { return target.polls.Load() >= 2 })
}

func TestPoller_SkipsWhileBusy(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*state.Store)
	}{
		{"creating", func(s *state.Store) { s.BeginCreate() }},
		{"refreshing", func(s *state.Store) { s.BeginRefresh() }},
		{"error shown", func(s *state.Store) { s.SetError(state.CauseFetchingBooks, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &state.Store{}
			tt.setup(store)

			var checks atomic.Int32
			target := &countingTarget{store: store}
			p := StartPoller(context.Background(), PollerConfig{
				Interval: 5 * time.Millisecond,
				ShouldRefresh: func(f state.Flags) bool {
					checks.Add(1)
					return f.ErrorCause == state.CauseNone && !f.Creating && !f.Refreshing
				},
			}, target)

			waitFor(t, func() bool { return checks.Load() >= 3 })
			p.Stop()
			if got := target.polls.Load(); got != 0 {
				t.Fatalf("polls = %d, want 0", got)
			}
		})
	}
}

func TestPoller_DefaultPredicateResumesAfterDismiss(t *testing.T) {
	store := &state.Store{}
	store.SetError(state.CauseCreatingBook, nil)
	target := &countingTarget{store: store}

	p := StartPoller(context.Background(), PollerConfig{Interval: 5 * time.Millisecond}, target)
	defer p.Stop()

	time.Sleep(30 * time.Millisecond)
	if got := target.polls.Load(); got != 0 {
		t.Fatalf("polls = %d while error shown, want 0", got)
	}

	store.ClearError()
	waitFor(t, func() bool { return target.polls.Load() >= 1 })
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	target := &countingTarget{store: &state.Store{}}
	p := StartPoller(context.Background(), PollerConfig{Interval: time.Hour}, target)
	p.Stop()
	p.Stop()
}

func TestPoller_StopsWithParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	target := &countingTarget{store: &state.Store{}}
	p := StartPoller(ctx, PollerConfig{Interval: time.Hour}, target)
	cancel()

	select {
	case <-p.done:
	case <-time.After(time.Second):
		t.Fatal("poller did not exit after parent cancel")
	}
}
