// Package pkg provides the core libraries for Constellation vocabulary
// visualization.
//
// # Overview
//
// Constellation renders a learner's course vocabulary as an interactive
// knowledge graph: revealed words shine as stars colored by progress tier,
// unrevealed words stay as faint ghost dots, and phrase playback traces
// bright paths between the words of a phrase. The pkg directory is organized
// into five main areas:
//
//  1. [graph] - Graph types, deterministic layout, and serialization
//  2. [store] - Reveal, selection, and highlight state with change events
//  3. [render] - Raster painting, the interaction overlay, and exports
//  4. [pipeline] - Orchestration (fetch script → layout), with caching
//  5. [scene] - Composition of store, render, viewport, and playback
//
// # Architecture
//
// The typical data flow through Constellation:
//
//	Course Script (file or MongoDB)
//	         ↓
//	    [graph/layout] package (golden-angle spiral positions)
//	         ↓
//	    [store] package (reveal/selection/highlight state)
//	         ↓
//	    [render] + [overlay] packages (raster + rings)
//	         ↓
//	    PNG frame / SVG export / terminal view
//
// # Quick Start
//
// Lay out a course and render a frame:
//
//	import (
//	    "context"
//	    "github.com/linguamesh/constellation/pkg/scene"
//	    "github.com/linguamesh/constellation/pkg/script"
//	    "github.com/linguamesh/constellation/pkg/viewport"
//	)
//
//	provider := script.NewFileProvider("courses")
//	s, _ := scene.New(scene.Config{
//	    Display:  viewport.Size{Width: 800, Height: 600},
//	    Provider: provider,
//	})
//	_ = s.LoadCourse(context.Background(), "es-101", graph.TierWhite)
//	s.SetRevealed([]string{"agua", "fuego"})
//	_ = s.EncodeFrame(context.Background(), out)
//
// # Main Packages
//
// ## Graph and Layout
//
// [graph] - Node, edge, tier, and provider input types, plus JSON
// serialization for positioned graphs. Positions are assigned once at load
// and never change afterwards.
//
// [graph/layout] - Deterministic golden-angle spiral layout. The same rounds
// and canvas always produce the same positions, so layouts are cacheable by
// content hash.
//
// ## State
//
// [store] - The single owner of graph data, the revealed set, the selection,
// and the highlight path. Mutations publish typed events; every consumer
// (raster repaint, overlay, hosts) reacts to the same committed state.
//
// ## Rendering and Interaction
//
// [render] - Paints the base raster: tier-colored star glyphs, ghost dots,
// and strength-weighted co-occurrence edges on a deep-navy canvas.
//
// [render/nodelink] - Graphviz DOT and SVG exports of the positioned graph
// for external tooling.
//
// [overlay] - Sparse ring layer for selection, search matches, and the
// playback path. Hit testing with a minimum touch radius lives here.
//
// [viewport] - Pan/zoom controller. Transforms are view-space only and are
// pushed to every registered layer from one place, so layers never drift.
//
// [animate] - Generation-guarded timer chain that advances the highlight
// cursor along a phrase path in step with clip durations.
//
// ## Playback
//
// [playback] - Phrase sequencing over an AudioSource. The HTTP source
// resolves clip durations from the clip service with caching and retry.
//
// [script] - Course script types and providers (local files, MongoDB).
//
// ## Orchestration
//
// [pipeline] - Fetch → layout with two-stage caching (script by course ID
// with TTL, layout by content hash without expiry). Used by CLI and server.
//
// [scene] - Composes everything into one object hosts can drive: load,
// tap, search, playback, frame compositing. The cached raster repaints only
// when graph data changes; pan/zoom recomposites without repainting.
//
// ## Infrastructure
//
// [cache] - Cache interface with file, Redis, and null backends, plus the
// key scheme for scripts, layouts, and frames.
//
// [session] - Learner progress persistence (revealed set and selection per
// course) with a file-based store.
//
// [httputil] - HTTP response caching and retry with exponential backoff for
// clip service clients.
//
// [errors] - Structured error codes and input validation shared by all
// entry points.
//
// [observability] - Hook interfaces for layout, paint, and animation
// instrumentation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/graph/...      # Specific package
//	go test -run Example         # Examples only
//
// [graph]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/graph
// [graph/layout]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/graph/layout
// [store]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/store
// [render]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/render/nodelink
// [overlay]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/overlay
// [viewport]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/viewport
// [animate]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/animate
// [playback]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/playback
// [script]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/script
// [pipeline]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/pipeline
// [scene]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/scene
// [cache]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/cache
// [session]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/session
// [httputil]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/errors
// [observability]: https://pkg.go.dev/github.com/linguamesh/constellation/pkg/observability
package pkg
