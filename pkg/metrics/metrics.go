// Package metrics provides the centralized Prometheus metrics reference for
// the CNPJ enrichment tool. All metrics are defined in their respective
// packages (client, pacing, cache, batch, phonefind) via promauto to maintain
// modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the tool.
// All metrics are automatically registered via promauto in their packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Pacing Metrics (pkg/pacing):
//   - cnpj_pacing_wait_seconds (Histogram): Time spent waiting for the minimum request interval
//   - cnpj_pacing_waits_total (Counter): Requests that had to wait for the pacing clock
//
// Lookup Metrics (pkg/client):
//   - cnpj_lookup_requests_total{status} (Counter): Requests by HTTP status (or network_error)
//   - cnpj_lookup_duration_seconds (Histogram): Full lookup duration including waits
//   - cnpj_lookup_errors_total{class} (Counter): Failed attempts by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - cnpj_lookup_retries_total{error_class} (Counter): Retry attempts by error class
//   - cnpj_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - cnpj_retry_exhausted_total{error_class} (Counter): Lookups that exhausted the attempt budget
//
// Cache Metrics (pkg/cache):
//   - cnpj_cache_hits_total (Counter): Lookup cache hits
//   - cnpj_cache_misses_total (Counter): Lookup cache misses
//   - cnpj_cache_errors_total{operation} (Counter): Cache operation errors
//
// Batch Metrics (pkg/batch):
//   - cnpj_identifiers_processed_total{result} (Counter): Identifiers by outcome (ok, error_status, failed)
//   - cnpj_records_produced_total (Counter): Normalized records produced
//
// Phone Lookup Metrics (pkg/phonefind):
//   - cnpj_phone_lookups_total{result} (Counter): Site phone lookups (found, not_found, error)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   rate(cnpj_cache_hits_total[5m]) /
//   (rate(cnpj_cache_hits_total[5m]) + rate(cnpj_cache_misses_total[5m]))
//
//   # Share of identifiers that exhausted retries
//   rate(cnpj_identifiers_processed_total{result="failed"}[5m])
//
//   # P95 Lookup Latency (dominated by pacing waits)
//   histogram_quantile(0.95, rate(cnpj_lookup_duration_seconds_bucket[5m]))
