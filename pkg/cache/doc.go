// Package cache provides a Redis-backed cache for registry lookups.
//
// The upstream quota (3 requests/minute on the free tier) makes every avoided
// request worth 20 seconds of wall time, so decoded lookups are cached by
// normalized CNPJ with a fixed TTL. ReceitaWS serves no cache validators
// (ETag, Expires), so there is no conditional-request machinery; entries
// simply age out.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	entry, err := manager.Get(ctx, "11222333000181")
//	if err == cache.ErrCacheMiss {
//		// fetch from ReceitaWS, then:
//		_ = manager.Set(ctx, "11222333000181", cache.NewEntry(payload, cache.DefaultTTL))
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - cnpj_cache_hits_total - Cache hits
//   - cnpj_cache_misses_total - Cache misses
//   - cnpj_cache_errors_total{operation} - Cache operation errors
//
// Error payloads (status "ERROR") are never cached; the client retries them
// on the next run instead of pinning a bad answer for a day.
package cache
