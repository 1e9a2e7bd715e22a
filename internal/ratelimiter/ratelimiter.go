package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"clubsafe/internal/tagger"
)

const queueSize = 1000

type request struct {
	ctx   context.Context
	ready chan error
}

// RateLimiter spaces the start of outbound model calls by a minimum interval.
// Calls themselves run concurrently.
type RateLimiter struct {
	interval time.Duration
	queue    chan request
	lastSent time.Time
	ctx      context.Context
	cancel   context.CancelFunc
	log      *slog.Logger
}

func New(interval time.Duration, log *slog.Logger) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	rl := &RateLimiter{
		interval: interval,
		queue:    make(chan request, queueSize),
		ctx:      ctx,
		cancel:   cancel,
		log:      log,
	}

	go rl.processQueue()

	return rl
}

// Wait blocks until the caller may start its call.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	req := request{
		ctx:   ctx,
		ready: make(chan error, 1),
	}

	select {
	case rl.queue <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.ctx.Done():
		return rl.ctx.Err()
	}

	select {
	case err := <-req.ready:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.ctx.Done():
		return rl.ctx.Err()
	}
}

// Factory wraps every model built by next so its calls go through the limiter.
func (rl *RateLimiter) Factory(next tagger.ModelFactory) tagger.ModelFactory {
	return func(apiKey string) (tagger.Model, error) {
		model, err := next(apiKey)
		if err != nil {
			return nil, err
		}

		return &limitedModel{limiter: rl, next: model}, nil
	}
}

func (rl *RateLimiter) Stop() {
	rl.cancel()
}

func (rl *RateLimiter) processQueue() {
	for {
		select {
		case req := <-rl.queue:
			rl.handleRequest(req)
		case <-rl.ctx.Done():
			for {
				select {
				case req := <-rl.queue:
					req.ready <- rl.ctx.Err()
				default:
					return
				}
			}
		}
	}
}

func (rl *RateLimiter) handleRequest(req request) {
	if err := req.ctx.Err(); err != nil {
		req.ready <- err

		return
	}

	if delay := getDelay(rl.interval, rl.lastSent, time.Now()); delay > 0 {
		rl.log.DebugContext(req.ctx, "Rate limiting model call",
			"delay", delay,
			"queueLen", len(rl.queue))

		select {
		case <-time.After(delay):
		case <-req.ctx.Done():
			req.ready <- req.ctx.Err()

			return
		case <-rl.ctx.Done():
			req.ready <- rl.ctx.Err()

			return
		}
	}

	rl.lastSent = time.Now()
	req.ready <- nil
}

func getDelay(interval time.Duration, lastSent, now time.Time) time.Duration {
	if lastSent.IsZero() {
		return 0
	}

	return max(interval-now.Sub(lastSent), 0)
}

type limitedModel struct {
	limiter *RateLimiter
	next    tagger.Model
}

func (m *limitedModel) Generate(ctx context.Context, prompt string) (tagger.Response, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return tagger.Response{}, err
	}

	return m.next.Generate(ctx, prompt)
}
