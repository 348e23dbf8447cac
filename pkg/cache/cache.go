package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte blobs under string keys with optional expiry.
// Implementations: FileCache for CLI runs, RedisCache for the server,
// NullCache to disable caching.
type Cache interface {
	// Get returns the cached blob and whether it was present. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a blob. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any backend resources.
	Close() error
}

// Keyer builds cache keys for the pipeline's cacheable stages: fetched
// scripts, computed layouts, and rendered frames.
type Keyer interface {
	// ScriptKey keys a fetched course script.
	ScriptKey(courseID string) string

	// LayoutKey keys a computed layout by its input script hash and the
	// layout parameters that affect node positions.
	LayoutKey(scriptHash string, opts LayoutKeyOpts) string

	// FrameKey keys a rendered frame by the layout hash and every render
	// input that changes pixels.
	FrameKey(layoutHash string, opts FrameKeyOpts) string
}

// LayoutKeyOpts are the layout inputs that change node placement. Two
// layouts with the same script hash and opts are byte-identical.
type LayoutKeyOpts struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	BoundaryTier int     `json:"boundary_tier"`
}

// FrameKeyOpts are the render inputs that change pixels: viewport transform,
// reveal state digest, and output geometry.
type FrameKeyOpts struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	PixelRatio   float64 `json:"pixel_ratio"`
	Scale        float64 `json:"scale"`
	PanX         float64 `json:"pan_x"`
	PanY         float64 `json:"pan_y"`
	RevealDigest string  `json:"reveal_digest"`
}

// DefaultKeyer is the standard key scheme. Keys are namespaced by stage and
// hash their parameters, so any parameter change is a clean miss rather than
// a stale hit.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ScriptKey generates a key for a fetched script.
func (k *DefaultKeyer) ScriptKey(courseID string) string {
	return "script:" + courseID
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(scriptHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", scriptHash, opts)
}

// FrameKey generates a key for a rendered frame.
func (k *DefaultKeyer) FrameKey(layoutHash string, opts FrameKeyOpts) string {
	return hashKey("frame", layoutHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)
