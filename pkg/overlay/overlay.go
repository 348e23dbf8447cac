package overlay

import (
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"

	"github.com/linguamesh/constellation/pkg/graph"
	"github.com/linguamesh/constellation/pkg/viewport"
)

// Hit-circle sizing. Hit targets are deliberately larger than the painted
// glyph so small and compact nodes stay reliably tappable on touch.
const (
	// MinHitRadius is a screen-space floor in display pixels; it does not
	// shrink when zoomed out.
	MinHitRadius = 14.0

	// hitRadiusFactor oversizes the hit circle relative to the visual radius.
	hitRadiusFactor = 1.6
)

// Ring styling for the visible highlight rings.
const (
	ringRadiusFactor = 1.75
	ringLineWidth    = 1.6
)

// Kind of visible ring drawn for a node.
type RingKind int

const (
	RingSelected RingKind = iota
	RingPathActive
	RingPathTrail
	RingSearchMatch
)

// Overlay is the vector interaction layer: one invisible oversized hit circle
// per node for tap detection, plus visible rings for the handful of nodes
// that are selected, in an active highlight path, or search-matched.
//
// The overlay registers as a viewport layer and therefore always carries the
// exact transform applied to the raster surface. Hit circles drifting from
// painted glyphs is a correctness bug, so the transform is never set by any
// other path.
//
// All methods are safe for concurrent use.
type Overlay struct {
	mu     sync.RWMutex
	logger *log.Logger

	size  viewport.Size
	t     viewport.Transform
	nodes []graph.Node

	visualRadius float64
	compactScale float64
}

// New creates an overlay for a viewport of the given display size. The
// visual radius and compact scale must match the painter's options so hit
// circles wrap the painted glyphs.
func New(size viewport.Size, visualRadius, compactScale float64, logger *log.Logger) *Overlay {
	if logger == nil {
		logger = log.Default()
	}
	if visualRadius <= 0 {
		visualRadius = 7
	}
	if compactScale <= 0 {
		compactScale = 0.62
	}
	return &Overlay{
		logger:       logger,
		size:         size,
		t:            viewport.Identity,
		visualRadius: visualRadius,
		compactScale: compactScale,
	}
}

// ApplyTransform implements viewport.Layer. The overlay stores the transform
// for hit testing and ring drawing; easing is irrelevant to a hit-test layer.
func (o *Overlay) ApplyTransform(t viewport.Transform, eased bool) {
	o.mu.Lock()
	o.t = t
	o.mu.Unlock()
}

// Transform returns the transform the overlay currently carries, for
// asserting layer alignment.
func (o *Overlay) Transform() viewport.Transform {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.t
}

// SetNodes replaces the hit-target set. Called on data change only, never on
// pan/zoom.
func (o *Overlay) SetNodes(nodes []graph.Node) {
	copied := make([]graph.Node, len(nodes))
	copy(copied, nodes)
	o.mu.Lock()
	o.nodes = copied
	o.mu.Unlock()
}

// Resize updates the display size on viewport resize.
func (o *Overlay) Resize(size viewport.Size) {
	o.mu.Lock()
	o.size = size
	o.mu.Unlock()
}

// =============================================================================
// Hit Testing
// =============================================================================

// HitTest returns the node whose hit circle contains the screen-space point.
// When circles overlap, the node whose center is nearest the point wins. The
// hit radius is the oversized visual radius scaled by the current zoom, with
// a screen-space floor so targets never shrink below a tappable size.
func (o *Overlay) HitTest(q viewport.Point) (graph.Node, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var best graph.Node
	bestDist := math.Inf(1)
	found := false

	for _, n := range o.nodes {
		p := o.t.Project(viewport.Point{X: n.X, Y: n.Y}, o.size)
		r := o.hitRadius(n)
		d := math.Hypot(q.X-p.X, q.Y-p.Y)
		if d <= r && d < bestDist {
			best, bestDist, found = n, d, true
		}
	}
	return best, found
}

// hitRadius returns the screen-space hit radius for a node. Caller holds the
// lock.
func (o *Overlay) hitRadius(n graph.Node) float64 {
	r := o.visualRadius
	if n.Compact {
		r *= o.compactScale
	}
	r = r * hitRadiusFactor * o.t.Scale
	if r < MinHitRadius {
		r = MinHitRadius
	}
	return r
}

// Tap resolves a tap at a screen-space point. A hit absorbs the tap and
// returns the full node record; a tap that reaches the background returns
// ok=false, which callers surface as a deselect.
func (o *Overlay) Tap(q viewport.Point) (graph.Node, bool) {
	n, ok := o.HitTest(q)
	if ok {
		o.logger.Debug("tap hit node", "node", n.ID)
	}
	return n, ok
}

// =============================================================================
// Ring Drawing
// =============================================================================

// Rings names the node subsets that get visible rings. Everything else on
// this layer is invisible, which keeps overlay cost independent of graph
// size.
type Rings struct {
	Selected string   // node id, "" for none
	Path     []string // highlight path in order
	Active   int      // cursor into Path; -1 = not started
	Matches  []string // search-matched node ids
}

// DrawRings strokes the visible rings into ctx, which must already carry the
// shared viewport transform (see Scene.Frame). Returns the number of rings
// drawn so tests can assert the layer stays sparse.
func (o *Overlay) DrawRings(ctx *gg.Context, rings Rings) int {
	o.mu.RLock()
	defer o.mu.RUnlock()

	index := make(map[string]graph.Node, len(o.nodes))
	for _, n := range o.nodes {
		index[n.ID] = n
	}

	drawn := 0
	stroke := func(id string, kind RingKind) {
		n, ok := index[id]
		if !ok {
			return
		}
		r := o.visualRadius
		if n.Compact {
			r *= o.compactScale
		}
		cr, cg, cb, alpha := ringColor(kind)
		ctx.SetRGBA(cr, cg, cb, alpha)
		ctx.SetLineWidth(ringLineWidth)
		ctx.DrawCircle(n.X, n.Y, r*ringRadiusFactor)
		ctx.Stroke()
		drawn++
	}

	for i, id := range rings.Path {
		switch {
		case rings.Active >= 0 && i == rings.Active:
			stroke(id, RingPathActive)
		case rings.Active >= 0 && i < rings.Active:
			// Already-lit steps keep a dimmer trail ring behind the cursor.
			stroke(id, RingPathTrail)
		}
	}
	for _, id := range rings.Matches {
		stroke(id, RingSearchMatch)
	}
	if rings.Selected != "" {
		stroke(rings.Selected, RingSelected)
	}
	return drawn
}

// ringColor returns the stroke color of a ring kind as unit RGBA components.
func ringColor(kind RingKind) (r, g, b, a float64) {
	switch kind {
	case RingSelected:
		return 1, 1, 1, 0.95
	case RingPathActive:
		return 1, 0.85, 0.35, 0.95
	case RingPathTrail:
		return 1, 0.85, 0.35, 0.45
	case RingSearchMatch:
		return 0.45, 0.85, 1, 0.8
	default:
		return 1, 1, 1, 0.5
	}
}
