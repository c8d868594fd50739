package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"sbpzip/pkg/metrics"
)

type Config struct {
	// RPS is the sustained number of records per second. Zero disables limiting.
	RPS   float64
	Burst int
}

// Limiter paces record publishing. A nil *Limiter never waits.
type Limiter struct {
	limiter *rate.Limiter
}

func New(cfg Config) *Limiter {
	if cfg.RPS <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(cfg.RPS), burst)}
}

// Wait blocks until the next record may be sent or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	started := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	metrics.PublishThrottleSeconds.Add(time.Since(started).Seconds())
	return nil
}
