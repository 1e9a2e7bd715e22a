package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeSweeper struct {
	mu     sync.Mutex
	sweeps []time.Time
}

func (f *fakeSweeper) Sweep(now time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps = append(f.sweeps, now)

	return 1
}

func (f *fakeSweeper) Len() int {
	return 0
}

func (f *fakeSweeper) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.sweeps)
}

func TestSweepCacheUsesClock(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(context.Background(), "@every 1m", sweeper, slog.New(slog.DiscardHandler))

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.sweepCache()

	if sweeper.count() != 1 || !sweeper.sweeps[0].Equal(now) {
		t.Fatalf("expected one sweep at %v, got %v", now, sweeper.sweeps)
	}
}

func TestSweepCacheSkipsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sweeper := &fakeSweeper{}
	New(ctx, "@every 1m", sweeper, slog.New(slog.DiscardHandler)).sweepCache()

	if sweeper.count() != 0 {
		t.Fatalf("expected no sweep after cancel, got %d", sweeper.count())
	}
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := New(context.Background(), "not a spec", &fakeSweeper{}, slog.New(slog.DiscardHandler))

	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatalf("expected invalid spec to be rejected")
	}
}

func TestStartAndStop(t *testing.T) {
	s := New(context.Background(), "*/15 * * * *", &fakeSweeper{}, slog.New(slog.DiscardHandler))

	if err := s.Start(); err != nil {
		t.Fatalf("start scheduler: %v", err)
	}

	s.Stop()
}
