// Package client provides the rate-limited ReceitaWS lookup client with
// retry, caching, and error classification.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/brdata-dev/cnpj-enricher/pkg/cache"
	"github.com/brdata-dev/cnpj-enricher/pkg/pacing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for lookup operations.
var (
	lookupRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cnpj_lookup_requests_total",
		Help: "Total lookup requests by HTTP status",
	}, []string{"status"})

	lookupDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cnpj_lookup_duration_seconds",
		Help:    "Lookup duration in seconds, including pacing and backoff waits",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120},
	})

	lookupErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cnpj_lookup_errors_total",
		Help: "Total failed lookup attempts by error class",
	}, []string{"class"})
)

// DefaultBaseURL is the public ReceitaWS CNPJ endpoint.
const DefaultBaseURL = "https://receitaws.com.br/v1/cnpj"

// Config holds the client configuration.
type Config struct {
	// BaseURL of the registry API; the normalized CNPJ is appended as a
	// path segment.
	BaseURL string

	// Timeout bounds each individual HTTP attempt.
	Timeout time.Duration

	// MaxAttempts is the total attempt budget per lookup, shared between
	// the rate-limit and generic-error backoff ramps.
	MaxAttempts int

	// MinInterval is the minimum spacing between consecutive requests
	// across the whole batch.
	MinInterval time.Duration

	// Cache is the optional Redis lookup cache. Nil disables caching.
	Cache *cache.Manager

	// CacheTTL is the lifetime of cached lookups.
	CacheTTL time.Duration
}

// DefaultConfig returns a configuration tuned for the ReceitaWS free tier.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Timeout:     10 * time.Second,
		MaxAttempts: 5,
		MinInterval: pacing.DefaultInterval,
		CacheTTL:    cache.DefaultTTL,
	}
}

// Client is the ReceitaWS lookup client. Not safe for concurrent use: the
// pacing clock serializes requests by design.
type Client struct {
	httpClient *http.Client
	config     Config
	pacer      *pacing.Pacer
	clock      pacing.Clock
	cache      *cache.Manager
	logger     zerolog.Logger
}

// New creates a new lookup client. Zero-value config fields fall back to
// DefaultConfig values.
func New(cfg Config) (*Client, error) {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.MinInterval == 0 {
		cfg.MinInterval = def.MinInterval
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = def.CacheTTL
	}

	if cfg.Timeout < 0 || cfg.MaxAttempts < 0 || cfg.MinInterval < 0 {
		return nil, fmt.Errorf("negative timeout, max_attempts, or min_interval")
	}

	logger := log.With().Str("component", "receitaws-client").Logger()

	return &Client{
		httpClient: &http.Client{},
		config:     cfg,
		pacer:      pacing.NewPacer(cfg.MinInterval, logger),
		clock:      pacing.SystemClock(),
		cache:      cfg.Cache,
		logger:     logger,
	}, nil
}

// Lookup fetches the registry payload for one normalized CNPJ. It paces the
// request against the global clock, retries transient failures, and consults
// the cache when one is configured.
//
// A payload with status "ERROR" is a definitive upstream answer and is
// returned without retrying. ErrRetryExhausted is returned once the attempt
// budget is spent; the caller downgrades that to placeholder records.
func (c *Client) Lookup(ctx context.Context, id string) (*Company, error) {
	logger := c.logger.With().Str("cnpj", id).Logger()

	start := time.Now()
	defer func() {
		lookupDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	if company, ok := c.fromCache(ctx, id, logger); ok {
		return company, nil
	}

	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	company, err := c.lookupWithRetry(ctx, id, logger)

	// Success and failure both consume upstream quota.
	c.pacer.Mark()

	if err != nil {
		return nil, err
	}

	c.toCache(ctx, id, company, logger)
	return company, nil
}

// fromCache returns a cached payload when available.
func (c *Client) fromCache(ctx context.Context, id string, logger zerolog.Logger) (*Company, bool) {
	if c.cache == nil {
		return nil, false
	}

	entry, err := c.cache.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn().Err(err).Msg("Cache get error")
		}
		return nil, false
	}

	var company Company
	if err := json.Unmarshal(entry.Data, &company); err != nil {
		logger.Warn().Err(err).Msg("Corrupt cache entry, discarding")
		_ = c.cache.Delete(ctx, id)
		return nil, false
	}

	logger.Debug().Bool("cache_hit", true).Msg("Lookup served from cache")
	return &company, true
}

// toCache stores a resolved payload. Error payloads are not cached.
func (c *Client) toCache(ctx context.Context, id string, company *Company, logger zerolog.Logger) {
	if c.cache == nil || company.IsError() {
		return
	}

	data, err := json.Marshal(company)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to encode payload for cache")
		return
	}

	if err := c.cache.Set(ctx, id, cache.NewEntry(data, c.config.CacheTTL)); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache lookup")
	}
}

// lookupWithRetry runs the attempt/backoff cycle for one CNPJ.
func (c *Client) lookupWithRetry(ctx context.Context, id string, logger zerolog.Logger) (*Company, error) {
	loop := newRetryLoop(c.config.MaxAttempts, c.clock, logger)

	var lastErr error
	lastClass := ErrorClassNetwork

	for {
		attempt := loop.begin()

		company, err := c.doAttempt(ctx, id)
		if err == nil {
			loop.succeed()
			if attempt > 1 {
				logger.Info().Int("attempt", attempt).Msg("Lookup succeeded after retry")
			}
			return company, nil
		}

		lastErr = err
		var lookupErr *LookupError
		if errors.As(err, &lookupErr) {
			lastClass = lookupErr.ErrorClass
		} else {
			lastClass = ErrorClassNetwork
		}
		lookupErrorsTotal.WithLabelValues(string(lastClass)).Inc()

		logger.Warn().
			Err(err).
			Str("error_class", string(lastClass)).
			Int("attempt", attempt).
			Msg("Lookup attempt failed")

		if loop.exhausted() {
			break
		}

		if err := loop.backoff(ctx, lastClass); err != nil {
			return nil, err
		}
	}

	retryExhaustedTotal.WithLabelValues(string(lastClass)).Inc()
	logger.Error().
		Int("max_attempts", c.config.MaxAttempts).
		Msg("Lookup retry attempts exhausted")

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, c.config.MaxAttempts, lastErr)
}

// doAttempt issues a single GET with the per-attempt timeout and decodes the
// JSON body on 200.
func (c *Client) doAttempt(ctx context.Context, id string) (*Company, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.config.BaseURL+"/"+id, nil)
	if err != nil {
		return nil, &LookupError{ErrorClass: ErrorClassNetwork, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		lookupRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, &LookupError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	lookupRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		return nil, &LookupError{
			StatusCode: resp.StatusCode,
			ErrorClass: classify(resp.StatusCode, nil),
			Message:    resp.Status,
		}
	}

	var company Company
	if err := json.NewDecoder(resp.Body).Decode(&company); err != nil {
		return nil, &LookupError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassServer,
			Message:    "decode payload",
			Err:        err,
		}
	}

	return &company, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetClock replaces the clock used for pacing and backoff waits (for testing).
func (c *Client) SetClock(clock pacing.Clock) {
	c.clock = clock
	c.pacer.SetClock(clock)
}
