// Command cnpj-enrich looks up a list of CNPJs against ReceitaWS and writes
// the normalized results to a CSV file.
//
// Configuration comes from the environment (a .env file is honored):
//
//	INPUT_FILE       input path, one CNPJ per line (default cnpj.csv)
//	OUTPUT_FILE      output path (default depends on MODE)
//	MODE             "qsa" (one row per partner) or "detailed" (one row per company)
//	RECEITAWS_URL    registry base URL
//	MIN_INTERVAL     minimum spacing between requests (default 20s)
//	REQUEST_TIMEOUT  per-attempt HTTP timeout (default 10s)
//	MAX_ATTEMPTS     retry budget per lookup (default 5)
//	REDIS_URL        optional Redis address; enables the lookup cache
//	CACHE_TTL        cached lookup lifetime (default 24h)
//	PHONE_LOOKUP     enable the site phone search in detailed mode (default true)
//	SEARCH_ENDPOINT  HTML search engine used by the phone lookup
//	METRICS_ADDR     optional address for a background /metrics listener
//	LOG_LEVEL        debug, info, warn, error (default info)
//	LOG_PRETTY       human-readable console output (default false)
package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/brdata-dev/cnpj-enricher/pkg/batch"
	"github.com/brdata-dev/cnpj-enricher/pkg/cache"
	"github.com/brdata-dev/cnpj-enricher/pkg/client"
	"github.com/brdata-dev/cnpj-enricher/pkg/cnpj"
	"github.com/brdata-dev/cnpj-enricher/pkg/logging"
	"github.com/brdata-dev/cnpj-enricher/pkg/phonefind"
	"github.com/brdata-dev/cnpj-enricher/pkg/report"
)

func main() {
	// A missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnvBool("LOG_PRETTY", false),
		Output: os.Stderr,
	})

	mode := getEnv("MODE", "qsa")
	if mode != "qsa" && mode != "detailed" {
		logger.Fatal().Str("mode", mode).Msg("Unknown MODE (want qsa or detailed)")
	}

	inputFile := getEnv("INPUT_FILE", "cnpj.csv")
	defaultOutput := "qsa_resultados.csv"
	if mode == "detailed" {
		defaultOutput = "cnpj_detalhado.csv"
	}
	outputFile := getEnv("OUTPUT_FILE", defaultOutput)

	cfg := client.DefaultConfig()
	cfg.BaseURL = getEnv("RECEITAWS_URL", cfg.BaseURL)
	cfg.Timeout = getEnvDuration(logger, "REQUEST_TIMEOUT", cfg.Timeout)
	cfg.MinInterval = getEnvDuration(logger, "MIN_INTERVAL", cfg.MinInterval)
	cfg.MaxAttempts = getEnvInt(logger, "MAX_ATTEMPTS", cfg.MaxAttempts)
	cfg.CacheTTL = getEnvDuration(logger, "CACHE_TTL", cfg.CacheTTL)

	ctx := context.Background()

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisURL})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", redisURL).Msg("Redis unavailable, caching disabled")
		} else {
			logger.Info().Str("addr", redisURL).Msg("Lookup cache enabled")
			cfg.Cache = cache.NewManager(rdb)
			defer rdb.Close()
		}
	}

	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		go serveMetrics(addr)
		logger.Info().Str("addr", addr).Msg("Metrics listener started")
	}

	ids := cnpj.LoadFile(inputFile, logger)
	if len(ids) == 0 {
		logger.Info().Msg("No CNPJs to process")
		return
	}

	lookupClient, err := client.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid client configuration")
	}

	runner := batch.NewRunner(lookupClient, logging.NewLogger("batch"))

	var count int
	switch mode {
	case "detailed":
		if getEnvBool("PHONE_LOOKUP", true) {
			searcher := phonefind.NewWebSearcher(os.Getenv("SEARCH_ENDPOINT"), 1)
			runner.SetPhoneFinder(phonefind.NewFinder(searcher, logging.NewLogger("phonefind")))
		}
		records := runner.RunDetailed(ctx, ids)
		count = len(records)
		err = report.WriteDetailed(outputFile, records, logger)
	default:
		records := runner.RunQSA(ctx, ids)
		count = len(records)
		err = report.WriteQSA(outputFile, records, logger)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("path", outputFile).Msg("Failed to write output file")
	}

	logger.Info().
		Str("path", outputFile).
		Int("records", count).
		Msg("Enrichment complete")
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	_ = http.ListenAndServe(addr, mux)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(logger zerolog.Logger, key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", value).Msg("Invalid integer, using default")
		return defaultValue
	}
	return parsed
}

func getEnvDuration(logger zerolog.Logger, key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", value).Msg("Invalid duration, using default")
		return defaultValue
	}
	return parsed
}
