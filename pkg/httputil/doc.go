// Package httputil provides HTTP utilities for audio clip service clients.
//
// # Overview
//
// This package provides infrastructure used by clients that talk to the
// clip delivery service:
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores HTTP responses in the filesystem (~/.cache/constellation/)
// with configurable TTL. Clip metadata rarely changes, so caching it
// avoids a round trip per phrase during playback.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 24 * time.Hour)
//	ok, err := cache.Get("clip:es-101-p1", &meta) // Check cache
//	if !ok {
//	    meta = fetchFromService()
//	    cache.Set("clip:es-101-p1", meta) // Store for later
//	}
//
// Cache keys should be namespaced by resource kind to avoid collisions.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// It uses exponential backoff to avoid hammering a struggling service:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetchClipMetadata(ctx, clipID)
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/constellation/
//   - Default TTL: 24 hours
//   - Max retries: 3
//   - Base backoff: 1 second
//
// The cache can be cleared via `constellation cache clear` or by deleting
// the cache directory.
package httputil
