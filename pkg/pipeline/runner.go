package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/linguamesh/constellation/pkg/cache"
	apperrors "github.com/linguamesh/constellation/pkg/errors"
	"github.com/linguamesh/constellation/pkg/graph"
	"github.com/linguamesh/constellation/pkg/graph/layout"
	"github.com/linguamesh/constellation/pkg/observability"
	"github.com/linguamesh/constellation/pkg/script"
)

// Runner encapsulates pipeline execution with caching. Both CLI and server
// use this to avoid duplicating caching logic.
//
// The Runner is stateless apart from its collaborators; multiple goroutines
// can safely share one Runner.
type Runner struct {
	Provider script.Provider
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil keyer means the default key scheme; a
// nil cache disables caching; a nil logger falls back to log.Default().
func NewRunner(provider script.Provider, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Provider: provider,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
	}
}

// Execute runs the complete fetch → layout pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := apperrors.ValidateCourseID(opts.CourseID); err != nil {
		return nil, err
	}
	if err := apperrors.ValidateCanvas(opts.Canvas.Width, opts.Canvas.Height); err != nil {
		return nil, err
	}

	result := &Result{}

	fetchStart := time.Now()
	sc, scriptHit, err := r.FetchScript(ctx, opts.CourseID, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("fetch script: %w", err)
	}
	result.Script = sc
	result.Stats.FetchTime = time.Since(fetchStart)
	result.CacheInfo.ScriptHit = scriptHit
	result.ScriptHash = scriptHash(sc)

	r.Logger.Info("fetched script",
		"course", sc.CourseID,
		"rounds", len(sc.Rounds),
		"cached", scriptHit,
		"duration", result.Stats.FetchTime)

	layoutStart := time.Now()
	g, layoutHit, err := r.BuildLayout(ctx, sc, opts.Canvas, opts.BoundaryTier, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Graph = g
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// FetchScript resolves a course script with caching. The bool reports a
// cache hit.
func (r *Runner) FetchScript(ctx context.Context, courseID string, refresh bool) (script.Script, bool, error) {
	if r.Provider == nil {
		return script.Script{}, false, apperrors.New(apperrors.ErrCodeInternal, "no script provider configured")
	}

	key := r.Keyer.ScriptKey(courseID)
	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var sc script.Script
			if err := json.Unmarshal(data, &sc); err == nil {
				observability.Cache().OnCacheHit(ctx, "script")
				return sc, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "script")
	}

	sc, err := r.Provider.Script(ctx, courseID)
	if err != nil {
		return script.Script{}, false, err
	}

	if data, err := json.Marshal(sc); err == nil {
		if err := r.Cache.Set(ctx, key, data, TTLScript); err != nil {
			r.Logger.Warn("script cache write failed", "course", courseID, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "script", len(data))
		}
	}
	return sc, false, nil
}

// BuildLayout computes the positioned graph for a script with caching. The
// layout key covers the script content, canvas, and boundary tier, so any
// change is a clean miss.
func (r *Runner) BuildLayout(ctx context.Context, sc script.Script, canvas layout.Size, boundaryTier graph.Tier, refresh bool) (graph.Graph, bool, error) {
	key := r.Keyer.LayoutKey(scriptHash(sc), cache.LayoutKeyOpts{
		Width:        canvas.Width,
		Height:       canvas.Height,
		BoundaryTier: int(boundaryTier),
	})

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if g, err := graph.UnmarshalGraph(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return g, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	g, err := layout.Build(sc.Rounds, sc.Connections, canvas, boundaryTier, r.Logger)
	if err != nil {
		return graph.Graph{}, false, err
	}

	if data, err := graph.MarshalGraph(g); err == nil {
		if err := r.Cache.Set(ctx, key, data, TTLLayout); err != nil {
			r.Logger.Warn("layout cache write failed", "course", sc.CourseID, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return g, false, nil
}

// scriptHash digests a script into a stable cache-key component.
func scriptHash(sc script.Script) string {
	data, _ := json.Marshal(sc)
	return cache.Hash(data)
}
