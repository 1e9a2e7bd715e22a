package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
)

// Sweeper drops expired entries and reports how many were removed.
type Sweeper interface {
	Sweep(now time.Time) int
	Len() int
}

type Scheduler struct {
	ctx     context.Context
	cron    *cron.Cron
	spec    string
	sweeper Sweeper
	now     func() time.Time
	log     *slog.Logger
}

func New(ctx context.Context, spec string, sweeper Sweeper, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:     ctx,
		cron:    c,
		spec:    spec,
		sweeper: sweeper,
		now:     time.Now,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.sweepCache); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepCache() {
	select {
	case <-s.ctx.Done():
		s.log.InfoContext(s.ctx, "Scheduler context is done",
			"error", s.ctx.Err())
		return
	default:
	}

	removed := s.sweeper.Sweep(s.now())

	s.log.DebugContext(s.ctx, "Summary cache is swept",
		"removed", removed,
		"remaining", s.sweeper.Len())
}
