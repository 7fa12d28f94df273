package client

import (
	"context"
	"fmt"
	"time"

	"github.com/brdata-dev/cnpj-enricher/pkg/pacing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for retry operations.
var (
	lookupRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cnpj_lookup_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cnpj_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{2, 5, 10, 20, 40, 80, 160},
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cnpj_retry_exhausted_total",
		Help: "Total number of lookups that exhausted all retry attempts",
	}, []string{"error_class"})
)

// Backoff bases for the two ramps. Both ramps scale the same doubling factor;
// a 429 wait therefore also inflates a later generic-error wait for the same
// lookup, matching the upstream-observed behavior this tool was tuned against.
const (
	rateLimitBackoffBase = 5 * time.Second
	errorBackoffBase     = 2 * time.Second
)

// retryPhase is the state of the retry loop for one lookup.
type retryPhase int

const (
	phaseAttempting retryPhase = iota
	phaseBackingOffRateLimit
	phaseBackingOffError
	phaseSucceeded
	phaseExhausted
)

// retryLoop drives the attempt/backoff cycle for a single lookup. Both the
// rate-limit ramp (factor × 5s) and the generic-error ramp (factor × 2s) share
// one exponentially growing factor and one attempt budget.
type retryLoop struct {
	maxAttempts int
	clock       pacing.Clock
	logger      zerolog.Logger

	phase   retryPhase
	attempt int
	factor  int
}

func newRetryLoop(maxAttempts int, clock pacing.Clock, logger zerolog.Logger) *retryLoop {
	return &retryLoop{
		maxAttempts: maxAttempts,
		clock:       clock,
		logger:      logger,
		phase:       phaseAttempting,
		factor:      1,
	}
}

// begin opens the next attempt slot and returns its 1-based number.
func (r *retryLoop) begin() int {
	r.phase = phaseAttempting
	r.attempt++
	return r.attempt
}

// succeed marks the loop finished.
func (r *retryLoop) succeed() {
	r.phase = phaseSucceeded
}

// exhausted reports whether the attempt budget is spent.
func (r *retryLoop) exhausted() bool {
	if r.attempt >= r.maxAttempts {
		r.phase = phaseExhausted
		return true
	}
	return false
}

// backoff waits before the next attempt. Rate-limit failures wait factor × 5s,
// everything else factor × 2s; either path doubles the shared factor.
func (r *retryLoop) backoff(ctx context.Context, class ErrorClass) error {
	var wait time.Duration
	if class == ErrorClassRateLimit {
		r.phase = phaseBackingOffRateLimit
		wait = time.Duration(r.factor) * rateLimitBackoffBase
	} else {
		r.phase = phaseBackingOffError
		wait = time.Duration(r.factor) * errorBackoffBase
	}
	r.factor *= 2

	lookupRetriesTotal.WithLabelValues(string(class)).Inc()
	retryBackoffSeconds.WithLabelValues(string(class)).Observe(wait.Seconds())

	r.logger.Warn().
		Str("error_class", string(class)).
		Int("attempt", r.attempt).
		Int("max_attempts", r.maxAttempts).
		Dur("backoff", wait).
		Msg("Retrying lookup after backoff")

	select {
	case <-ctx.Done():
		r.logger.Warn().
			Int("attempt", r.attempt).
			Msg("Context cancelled during retry backoff")
		return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
	case <-r.clock.After(wait):
		return nil
	}
}
