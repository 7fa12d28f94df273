// Package batch drives the enrichment run: every identifier flows through the
// lookup client and the normalizer, and every identifier produces at least one
// record regardless of lookup outcome.
//
// Processing is strictly sequential. The upstream quota (3 requests/minute)
// makes parallel fetching pointless: a worker pool would only queue behind the
// same pacing clock.
package batch

import (
	"context"
	"time"

	"github.com/brdata-dev/cnpj-enricher/pkg/client"
	"github.com/brdata-dev/cnpj-enricher/pkg/phonefind"
	"github.com/brdata-dev/cnpj-enricher/pkg/qsa"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for batch processing.
var (
	identifiersProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cnpj_identifiers_processed_total",
		Help: "Total identifiers processed by outcome",
	}, []string{"result"}) // "ok", "error_status", "failed"

	recordsProducedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cnpj_records_produced_total",
		Help: "Total normalized records produced",
	})
)

// Fetcher is the lookup dependency of the runner.
type Fetcher interface {
	Lookup(ctx context.Context, cnpj string) (*client.Company, error)
}

// Runner processes identifiers sequentially through lookup and normalization.
type Runner struct {
	fetcher Fetcher
	phones  *phonefind.Finder
	logger  zerolog.Logger
}

// NewRunner creates a batch runner.
func NewRunner(fetcher Fetcher, logger zerolog.Logger) *Runner {
	return &Runner{
		fetcher: fetcher,
		logger:  logger,
	}
}

// SetPhoneFinder enables the best-effort site phone lookup used by the
// detailed layout. Nil (the default) writes the not-found marker instead.
func (r *Runner) SetPhoneFinder(finder *phonefind.Finder) {
	r.phones = finder
}

// RunQSA processes all identifiers and returns the per-partner records in
// input order, partners in payload order. A failed lookup contributes one
// placeholder record and never aborts the batch.
func (r *Runner) RunQSA(ctx context.Context, ids []string) []qsa.Record {
	start := time.Now()
	var all []qsa.Record

	for i, id := range ids {
		records := qsa.Normalize(id, r.lookup(ctx, i, len(ids), id))
		recordsProducedTotal.Add(float64(len(records)))
		all = append(all, records...)
	}

	r.logger.Info().
		Int("identifiers", len(ids)).
		Int("records", len(all)).
		Dur("duration", time.Since(start)).
		Msg("Batch complete")

	return all
}

// RunDetailed processes all identifiers into the one-row-per-company layout,
// optionally enriched with a site phone lookup per company.
func (r *Runner) RunDetailed(ctx context.Context, ids []string) []qsa.DetailedRecord {
	start := time.Now()
	var all []qsa.DetailedRecord

	for i, id := range ids {
		records := qsa.Normalize(id, r.lookup(ctx, i, len(ids), id))
		recordsProducedTotal.Inc()

		sitePhone := phonefind.NotFound
		if r.phones != nil {
			sitePhone = r.phones.PhoneForCompany(ctx, records[0].CompanyName)
		}

		all = append(all, qsa.Collapse(records, sitePhone))
	}

	r.logger.Info().
		Int("identifiers", len(ids)).
		Int("records", len(all)).
		Dur("duration", time.Since(start)).
		Msg("Batch complete")

	return all
}

// lookup fetches one identifier and classifies the outcome. Errors are logged
// and downgraded to a nil payload; the normalizer turns that into placeholder
// records.
func (r *Runner) lookup(ctx context.Context, index, total int, id string) *client.Company {
	r.logger.Info().
		Str("cnpj", id).
		Int("position", index+1).
		Int("total", total).
		Msg("Processing CNPJ")

	company, err := r.fetcher.Lookup(ctx, id)
	switch {
	case err != nil:
		r.logger.Error().Err(err).Str("cnpj", id).Msg("Lookup failed, writing placeholder record")
		identifiersProcessedTotal.WithLabelValues("failed").Inc()
		return nil
	case company.IsError():
		r.logger.Warn().
			Str("cnpj", id).
			Str("message", company.Message).
			Msg("Registry reported an error for this CNPJ")
		identifiersProcessedTotal.WithLabelValues("error_status").Inc()
		return company
	default:
		identifiersProcessedTotal.WithLabelValues("ok").Inc()
		return company
	}
}
