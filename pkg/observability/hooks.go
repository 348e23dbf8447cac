// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about scene operations (layout, paint,
// animation) and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach avoids import cycles (hooks are registered by main, not by
// libraries), keeps the core library free of observability frameworks, and
// allows different backends (OpenTelemetry, Prometheus, DataDog, etc.).
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSceneHooks(&mySceneHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Scene().OnLayoutStart(ctx, courseID, roundCount)
//	// ... compute layout ...
//	observability.Scene().OnLayoutComplete(ctx, courseID, nodeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Scene Hooks
// =============================================================================

// SceneHooks receives events from the scene pipeline: layout computation,
// frame painting, and path animation.
type SceneHooks interface {
	// Layout events
	OnLayoutStart(ctx context.Context, courseID string, roundCount int)
	OnLayoutComplete(ctx context.Context, courseID string, nodeCount int, duration time.Duration, err error)

	// Paint events
	OnPaintStart(ctx context.Context, nodeCount, edgeCount int)
	OnPaintComplete(ctx context.Context, fullGlyphs, ghosts int, duration time.Duration, err error)

	// Animation events
	OnAnimationStart(ctx context.Context, steps int, audioDuration time.Duration)
	OnAnimationStopped(ctx context.Context, generation uint64)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSceneHooks is a no-op implementation of SceneHooks.
type NoopSceneHooks struct{}

func (NoopSceneHooks) OnLayoutStart(context.Context, string, int) {}
func (NoopSceneHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopSceneHooks) OnPaintStart(context.Context, int, int)                        {}
func (NoopSceneHooks) OnPaintComplete(context.Context, int, int, time.Duration, error) {}
func (NoopSceneHooks) OnAnimationStart(context.Context, int, time.Duration)          {}
func (NoopSceneHooks) OnAnimationStopped(context.Context, uint64)                    {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sceneHooks SceneHooks = NoopSceneHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetSceneHooks registers custom scene hooks.
// This should be called once at application startup before any scene operations.
func SetSceneHooks(h SceneHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sceneHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Scene returns the registered scene hooks.
func Scene() SceneHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sceneHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sceneHooks = NoopSceneHooks{}
	cacheHooks = NoopCacheHooks{}
}
