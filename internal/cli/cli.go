// Package cli implements the constellation command-line interface.
package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/linguamesh/constellation/pkg/cache"
	"github.com/linguamesh/constellation/pkg/httputil"
	"github.com/linguamesh/constellation/pkg/pipeline"
	"github.com/linguamesh/constellation/pkg/playback"
	"github.com/linguamesh/constellation/pkg/script"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "constellation"

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func newRunner(cfg *Config, provider script.Provider, noCache bool, logger *log.Logger) (*pipeline.Runner, error) {
	c, err := newCache(context.Background(), cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(provider, c, nil, logger), nil
}

// newCache picks the cache backend: null when disabled, Redis when
// configured, file cache otherwise.
func newCache(ctx context.Context, cfg *Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Redis.Addr != "" {
		return cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newProvider picks the script source: MongoDB when a URI is configured,
// the local courses directory otherwise.
func newProvider(ctx context.Context, cfg *Config) (script.Provider, func(), error) {
	if cfg.Mongo.URI != "" {
		p, err := script.NewMongoProvider(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close(context.Background()) }, nil
	}
	return script.NewFileProvider(cfg.Courses.Dir), func() {}, nil
}

// newAudioSource builds the clip service client, or nil when no clip
// service is configured.
func newAudioSource(cfg *Config, logger *log.Logger) (playback.AudioSource, error) {
	if cfg.Clips.BaseURL == "" {
		return nil, nil
	}
	metaCache, err := httputil.NewCache("", 24*time.Hour)
	if err != nil {
		metaCache = nil
	}
	return playback.NewHTTPAudioSource(cfg.Clips.BaseURL, metaCache, logger)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/constellation/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Flag Helpers
// =============================================================================

// parseRevealed parses the --revealed flag: a comma-separated node ID list,
// or "all" to reveal the entire graph (returned as nil with all=true).
func parseRevealed(s string) (ids []string, all bool) {
	if s == "" {
		return nil, false
	}
	if s == "all" {
		return nil, true
	}
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, false
}
