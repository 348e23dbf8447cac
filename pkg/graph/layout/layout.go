package layout

import (
	"fmt"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/linguamesh/constellation/pkg/graph"
)

// goldenAngle spreads successive placements around the center without ever
// stacking two nodes on the same ray. Value is pi * (3 - sqrt(5)).
const goldenAngle = 2.3999632297286533

// Tuning constants for the placement pass.
const (
	// jitterFraction is how far (as a fraction of the local band width) the
	// id-hash jitter may displace a node from its spiral slot.
	jitterFraction = 0.22

	// pullLimit caps how far connection strength may drag a node toward the
	// centroid of its already-placed neighbors.
	pullLimit = 0.35

	// innerMargin keeps every node strictly inside the boundary shape.
	innerMargin = 0.96
)

// Size is a drawing area in display units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the midpoint of the area.
func (s Size) Center() (float64, float64) { return s.Width / 2, s.Height / 2 }

// Build assigns every round's node a deterministic position and assembles the
// positioned graph. The same input always produces the same output: placement
// depends only on acquisition order, tier, connection strength, and an FNV
// hash of the node id.
//
// Placement is a golden-angle spiral banded by tier: earlier tiers sit closer
// to the center, and within a band nodes fan outward by acquisition order. A
// bounded pull toward the centroid of already-placed strong neighbors makes
// heavily co-occurring nodes cluster. When boundaryTier is a valid tier, all
// positions are clamped inside the tier's growing region (see Boundary).
//
// Connections referencing unknown nodes are dropped with a debug log.
func Build(rounds []graph.Round, connections []graph.Connection, canvas Size, boundaryTier graph.Tier, logger *log.Logger) (graph.Graph, error) {
	if logger == nil {
		logger = log.Default()
	}
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return graph.Graph{}, fmt.Errorf("invalid canvas %gx%g", canvas.Width, canvas.Height)
	}

	// Order is the layout seed; never trust provider ordering.
	rounds = slices.Clone(rounds)
	slices.SortFunc(rounds, func(a, b graph.Round) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		// Stable tiebreak for duplicate order values.
		if a.NodeID < b.NodeID {
			return -1
		}
		if a.NodeID > b.NodeID {
			return 1
		}
		return 0
	})

	// Aggregate connection strength per node pair for the clustering pull.
	strength := make(map[string]map[string]float64)
	addStrength := func(a, b string, w float64) {
		if strength[a] == nil {
			strength[a] = make(map[string]float64)
		}
		strength[a][b] += w
	}
	for _, c := range connections {
		if c.Count <= 0 {
			continue
		}
		addStrength(c.Source, c.Target, float64(c.Count))
		addStrength(c.Target, c.Source, float64(c.Count))
	}

	cx, cy := canvas.Center()
	maxR := BoundaryRadius(canvas, boundaryTier)

	// Count nodes per tier so each band can be fanned by within-tier order.
	perTier := make(map[graph.Tier]int)
	for _, r := range rounds {
		perTier[r.Tier]++
	}

	g := graph.Graph{Nodes: make([]graph.Node, 0, len(rounds))}
	placed := make(map[string]int) // id → index into g.Nodes
	tierSeen := make(map[graph.Tier]int)

	for i, r := range rounds {
		if _, dup := placed[r.NodeID]; dup {
			logger.Debug("duplicate round for node, keeping first", "node", r.NodeID, "order", r.Order)
			continue
		}

		band := tierBand(r.Tier, maxR)
		k := tierSeen[r.Tier]
		tierSeen[r.Tier]++

		// Fan outward within the band by within-tier order; the global order
		// drives the angle so bands interleave instead of forming rings of
		// simultaneous placements.
		frac := 0.0
		if n := perTier[r.Tier]; n > 1 {
			frac = math.Sqrt(float64(k) / float64(n-1))
		}
		radius := band.inner + frac*(band.outer-band.inner)

		h := graph.HashID(r.NodeID)
		angle := float64(i)*goldenAngle + (float64(h%1000)/1000.0-0.5)*0.3
		jitter := (float64((h>>10)%1000)/1000.0 - 0.5) * 2 * jitterFraction * (band.outer - band.inner)
		radius += jitter

		x := cx + radius*math.Cos(angle)
		y := cy + radius*math.Sin(angle)

		// Pull toward already-placed strong neighbors so co-occurring nodes
		// cluster. Bounded, and only backward-looking, so placement remains a
		// pure fold over acquisition order.
		if neighbors := strength[r.NodeID]; len(neighbors) > 0 {
			// Sorted iteration: float accumulation order must not depend on
			// map ordering or two builds could disagree in the last bit.
			ids := make([]string, 0, len(neighbors))
			for id := range neighbors {
				ids = append(ids, id)
			}
			slices.Sort(ids)

			var sx, sy, sw float64
			for _, id := range ids {
				j, ok := placed[id]
				if !ok {
					continue
				}
				w := neighbors[id]
				sx += g.Nodes[j].X * w
				sy += g.Nodes[j].Y * w
				sw += w
			}
			if sw > 0 {
				pull := math.Min(pullLimit, math.Sqrt(sw)/10)
				x += (sx/sw - x) * pull
				y += (sy/sw - y) * pull
			}
		}

		x, y = clampToBoundary(x, y, cx, cy, maxR*innerMargin)

		placed[r.NodeID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, graph.Node{
			ID:      r.NodeID,
			X:       x,
			Y:       y,
			Tier:    r.Tier,
			Compact: r.Compact,
			Text:    r.Text,
			Gloss:   r.Gloss,
		})
	}

	g.Edges = buildEdges(connections, placed, logger)
	return g, nil
}

// buildEdges converts connections into edges, merging duplicate pairs and
// silently dropping references to unknown nodes.
func buildEdges(connections []graph.Connection, placed map[string]int, logger *log.Logger) []graph.Edge {
	merged := make(map[string]*graph.Edge)
	var order []string

	for _, c := range connections {
		if _, ok := placed[c.Source]; !ok {
			logger.Debug("dropping connection with unknown source", "source", c.Source, "target", c.Target)
			continue
		}
		if _, ok := placed[c.Target]; !ok {
			logger.Debug("dropping connection with unknown target", "source", c.Source, "target", c.Target)
			continue
		}
		if c.Source == c.Target || c.Count <= 0 {
			continue
		}

		// Undirected: normalize pair orientation before merging.
		src, dst := c.Source, c.Target
		if dst < src {
			src, dst = dst, src
		}
		id := graph.EdgeID(src, dst)
		if e, ok := merged[id]; ok {
			e.Strength += c.Count
			continue
		}
		merged[id] = &graph.Edge{ID: id, Source: src, Target: dst, Strength: c.Count}
		order = append(order, id)
	}

	edges := make([]graph.Edge, 0, len(order))
	for _, id := range order {
		edges = append(edges, *merged[id])
	}
	return edges
}

// clampToBoundary projects (x, y) back inside the circle of radius maxR
// around (cx, cy) if it fell outside.
func clampToBoundary(x, y, cx, cy, maxR float64) (float64, float64) {
	dx, dy := x-cx, y-cy
	d := math.Hypot(dx, dy)
	if d <= maxR || d == 0 {
		return x, y
	}
	s := maxR / d
	return cx + dx*s, cy + dy*s
}
