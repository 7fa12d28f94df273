// Package pacing enforces a minimum spacing between consecutive upstream
// requests. The ReceitaWS free tier allows 3 requests per minute and counts
// failed calls against the quota, so every request in a batch run shares one
// pacing clock regardless of outcome.
package pacing

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for pacing.
var (
	pacingWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cnpj_pacing_wait_seconds",
		Help:    "Time spent waiting to respect the minimum request interval",
		Buckets: []float64{1, 5, 10, 15, 20, 30},
	})

	pacingWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cnpj_pacing_waits_total",
		Help: "Total number of requests that had to wait for the pacing clock",
	})
)

// DefaultInterval matches the ReceitaWS free tier quota of 3 requests/minute.
const DefaultInterval = 20 * time.Second

// Clock abstracts time for the pacer so pacing logic can be tested without
// real timers.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock { return realClock{} }

// Pacer tracks the completion timestamp of the previous request and blocks
// until the configured interval has elapsed. It is not safe for concurrent
// use; the batch runs on a single goroutine.
type Pacer struct {
	interval time.Duration
	clock    Clock
	lastDone time.Time
	logger   zerolog.Logger
}

// NewPacer creates a pacer with the given minimum inter-request interval.
// An interval <= 0 falls back to DefaultInterval.
func NewPacer(interval time.Duration, logger zerolog.Logger) *Pacer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Pacer{
		interval: interval,
		clock:    realClock{},
		logger:   logger,
	}
}

// SetClock replaces the pacer's clock (for testing).
func (p *Pacer) SetClock(clock Clock) {
	p.clock = clock
}

// Interval returns the configured minimum inter-request interval.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Wait blocks until the minimum interval since the previous Mark has elapsed.
// The first call returns immediately. Returns the context error if ctx is
// done before the wait completes.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.lastDone.IsZero() {
		return nil
	}

	elapsed := p.clock.Now().Sub(p.lastDone)
	if elapsed >= p.interval {
		return nil
	}

	wait := p.interval - elapsed
	pacingWaitsTotal.Inc()
	pacingWaitSeconds.Observe(wait.Seconds())

	p.logger.Debug().
		Dur("wait", wait).
		Dur("interval", p.interval).
		Msg("Waiting for pacing clock")

	select {
	case <-ctx.Done():
		return fmt.Errorf("pacing wait interrupted: %w", ctx.Err())
	case <-p.clock.After(wait):
		return nil
	}
}

// Mark records the completion of a request. Success and failure both count:
// the upstream quota makes no distinction.
func (p *Pacer) Mark() {
	p.lastDone = p.clock.Now()
}
