package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"

	"github.com/linguamesh/constellation/pkg/graph"
)

// Glyph geometry relative to Options.NodeRadius.
const (
	glowRadiusFactor  = 1.9
	glowAlpha         = 0.18
	coreAlpha         = 0.95
	innerDotFactor    = 0.42
	ghostRadiusFactor = 0.8
)

// Default glyph geometry. Exported because the interaction overlay sizes its
// hit circles from the same numbers.
const (
	DefaultNodeRadius   = 7.0
	DefaultCompactScale = 0.62
)

// Ghost opacity bounds: visible enough to hint at shape, dim enough to hide
// content.
const (
	minGhostOpacity = 0.03
	maxGhostOpacity = 0.15
)

// Edge stroke bounds.
const (
	dimEdgeAlphaUnit    = 0.05 // per sqrt(strength), endpoints not both revealed
	brightEdgeAlphaUnit = 0.2  // per sqrt(strength), both endpoints revealed
	maxDimEdgeAlpha     = 0.12
	maxBrightEdgeAlpha  = 0.55
	maxEdgeWidth        = 2.5
	maxEdgeBend         = 24.0
	edgeBendFactor      = 0.15
)

// Options configures a single paint call.
type Options struct {
	// HideUnrevealed omits unrevealed nodes entirely instead of drawing ghost
	// dots. Used by constrained presentation views.
	HideUnrevealed bool

	// GhostOpacity is the alpha of unrevealed ghost dots. Zero means the
	// default (0.08); values are clamped into [0.03, 0.15].
	GhostOpacity float64

	// NodeRadius is the core disc radius in display units. Zero means 7.
	NodeRadius float64

	// CompactScale shrinks the glyph for compact-variant nodes. Zero means 0.62.
	CompactScale float64

	// Background fills the surface before painting. Nil means the default
	// deep-navy canvas.
	Background color.Color
}

// withDefaults fills zero values and clamps the ghost opacity.
func (o Options) withDefaults() Options {
	if o.GhostOpacity == 0 {
		o.GhostOpacity = 0.08
	}
	o.GhostOpacity = math.Min(maxGhostOpacity, math.Max(minGhostOpacity, o.GhostOpacity))
	if o.NodeRadius == 0 {
		o.NodeRadius = DefaultNodeRadius
	}
	if o.CompactScale == 0 {
		o.CompactScale = DefaultCompactScale
	}
	if o.Background == nil {
		o.Background = defaultBackground
	}
	return o
}

// Stats reports what a paint call drew, so callers (and tests) can check
// reveal-set properties without inspecting pixels.
type Stats struct {
	FullGlyphs  int // revealed nodes drawn with the three-element glyph
	Ghosts      int // unrevealed nodes drawn as ghost dots
	Edges       int // edges stroked in total
	BrightEdges int // edges with both endpoints revealed
}

// Painter repaints a Surface from graph data. It is stateless between calls:
// every paint fully clears and redraws, with no incremental diffing, so it
// must only run when node/edge/reveal data changes, never per interaction
// frame. Pan and zoom are applied downstream as a compositing transform.
type Painter struct {
	logger *log.Logger
}

// NewPainter creates a painter. A nil logger falls back to log.Default().
func NewPainter(logger *log.Logger) *Painter {
	if logger == nil {
		logger = log.Default()
	}
	return &Painter{logger: logger}
}

// Paint clears the surface and draws all edges and nodes. Unrevealed nodes
// are ghosted or omitted per opts; edges are quadratic curves whose curvature
// direction derives from a hash of the edge id, so repeated repaints never
// jitter.
//
// A missing drawing context aborts this single repaint with a logged error;
// the next data change retries naturally.
func (p *Painter) Paint(s *Surface, nodes []graph.Node, edges []graph.Edge, revealed map[string]struct{}, opts Options) (Stats, error) {
	ctx := s.context()
	if ctx == nil {
		err := fmt.Errorf("paint: no drawing context")
		p.logger.Error("repaint aborted", "err", err)
		return Stats{}, err
	}
	opts = opts.withDefaults()

	ctx.SetColor(opts.Background)
	ctx.Clear()

	index := make(map[string]graph.Node, len(nodes))
	for _, n := range nodes {
		index[n.ID] = n
	}
	isRevealed := func(id string) bool {
		_, ok := revealed[id]
		return ok
	}

	var stats Stats

	// Edges under nodes.
	for _, e := range edges {
		a, okA := index[e.Source]
		b, okB := index[e.Target]
		if !okA || !okB {
			// Load-time filtering should make this unreachable; tolerate it
			// anyway so a bad snapshot degrades instead of crashing.
			p.logger.Debug("skipping edge with missing endpoint", "edge", e.ID)
			continue
		}
		bright := isRevealed(e.Source) && isRevealed(e.Target)
		p.strokeEdge(ctx, e, a, b, bright)
		stats.Edges++
		if bright {
			stats.BrightEdges++
		}
	}

	for _, n := range nodes {
		r := opts.NodeRadius
		if n.Compact {
			r *= opts.CompactScale
		}
		if isRevealed(n.ID) {
			drawGlyph(ctx, n, r)
			stats.FullGlyphs++
			continue
		}
		if opts.HideUnrevealed {
			continue
		}
		drawGhost(ctx, n, r, opts.GhostOpacity)
		stats.Ghosts++
	}

	return stats, nil
}

// strokeEdge draws one quadratic co-occurrence curve. Opacity and width scale
// with sqrt(strength); dim unless both endpoints are revealed.
func (p *Painter) strokeEdge(ctx *gg.Context, e graph.Edge, a, b graph.Node, bright bool) {
	strength := e.Strength
	if strength < 1 {
		strength = 1
	}
	unit := math.Sqrt(float64(strength))

	alpha := dimEdgeAlphaUnit * unit
	maxAlpha := maxDimEdgeAlpha
	if bright {
		alpha = brightEdgeAlphaUnit * unit
		maxAlpha = maxBrightEdgeAlpha
	}
	alpha = math.Min(alpha, maxAlpha)

	width := 0.5 + 0.35*unit
	if width > maxEdgeWidth {
		width = maxEdgeWidth
	}

	cx, cy := edgeControlPoint(e.ID, a, b)

	ctx.SetRGBA(float64(edgeColor.R)/255, float64(edgeColor.G)/255, float64(edgeColor.B)/255, alpha)
	ctx.SetLineWidth(width)
	ctx.MoveTo(a.X, a.Y)
	ctx.QuadraticTo(cx, cy, b.X, b.Y)
	ctx.Stroke()
}

// edgeControlPoint bends the curve perpendicular to the chord. The bend side
// comes from the edge-id hash: deterministic, so repaints are pixel-stable.
func edgeControlPoint(id string, a, b graph.Node) (float64, float64) {
	mx, my := (a.X+b.X)/2, (a.Y+b.Y)/2
	dx, dy := b.X-a.X, b.Y-a.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return mx, my
	}
	bend := math.Min(maxEdgeBend, dist*edgeBendFactor)
	if graph.HashID(id)&1 == 1 {
		bend = -bend
	}
	// Unit perpendicular of the chord.
	px, py := -dy/dist, dx/dist
	return mx + px*bend, my + py*bend
}

// drawGlyph paints a revealed node: outer glow ring, core disc, bright inner
// dot, all in the node's tier color.
func drawGlyph(ctx *gg.Context, n graph.Node, r float64) {
	c := TierColor(n.Tier)
	cr, cg, cb := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255

	ctx.SetRGBA(cr, cg, cb, glowAlpha)
	ctx.DrawCircle(n.X, n.Y, r*glowRadiusFactor)
	ctx.Fill()

	ctx.SetRGBA(cr, cg, cb, coreAlpha)
	ctx.DrawCircle(n.X, n.Y, r)
	ctx.Fill()

	ctx.SetRGBA(float64(innerDotColor.R)/255, float64(innerDotColor.G)/255, float64(innerDotColor.B)/255, 1)
	ctx.DrawCircle(n.X, n.Y, r*innerDotFactor)
	ctx.Fill()
}

// drawGhost paints an unrevealed node as a near-invisible dot: shape without
// content.
func drawGhost(ctx *gg.Context, n graph.Node, r float64, opacity float64) {
	ctx.SetRGBA(float64(ghostColor.R)/255, float64(ghostColor.G)/255, float64(ghostColor.B)/255, opacity)
	ctx.DrawCircle(n.X, n.Y, r*ghostRadiusFactor)
	ctx.Fill()
}

