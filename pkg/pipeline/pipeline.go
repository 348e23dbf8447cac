// Package pipeline provides the cached fetch → layout pipeline for
// Constellation.
//
// This package implements the course-loading path shared by the CLI and the
// HTTP server: fetch the course script from its provider, then compute the
// deterministic layout. Both stages are cached, so a layout computed once
// serves every subsequent request for the same script and canvas.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(provider, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    CourseID:     "es-101",
//	    Canvas:       layout.Size{Width: 800, Height: 600},
//	    BoundaryTier: graph.TierBlue,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	scene.InstallGraph(result.Script, result.Graph)
//
// Run individual stages:
//
//	sc, hit, err := runner.FetchScript(ctx, "es-101", false)
//	g, hit, err := runner.BuildLayout(ctx, sc, canvas, tier, false)
package pipeline

import (
	"time"

	"github.com/linguamesh/constellation/pkg/graph"
	"github.com/linguamesh/constellation/pkg/graph/layout"
	"github.com/linguamesh/constellation/pkg/script"
)

// Cache TTLs per stage. Scripts change when courses are re-authored, so they
// expire; layouts are pure functions of their key and never go stale.
const (
	TTLScript = 24 * time.Hour
	TTLLayout = 0 // no expiry
)

// Options configures a pipeline run.
type Options struct {
	// CourseID names the course script to fetch.
	CourseID string `json:"course_id"`

	// Canvas is the layout drawing area in display units.
	Canvas layout.Size `json:"canvas"`

	// BoundaryTier caps the layout boundary; pass the learner's tier.
	BoundaryTier graph.Tier `json:"boundary_tier"`

	// Refresh bypasses the cache for every stage.
	Refresh bool `json:"refresh,omitempty"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Script is the fetched course script.
	Script script.Script

	// ScriptHash is the content hash of the script, used in layout keys.
	ScriptHash string

	// Graph is the positioned graph.
	Graph graph.Graph

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	FetchTime  time.Duration
	LayoutTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ScriptHit bool // whether the script came from cache
	LayoutHit bool // whether the layout came from cache
}
