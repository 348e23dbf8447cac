package render

import (
	"bytes"
	"image"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/linguamesh/constellation/pkg/graph"
)

func testPainter() *Painter {
	return NewPainter(log.New(io.Discard))
}

func testSurface(t *testing.T) *Surface {
	t.Helper()
	s, err := NewSurface(200, 150, 1)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	return s
}

func testNodes(n int) []graph.Node {
	nodes := make([]graph.Node, n)
	for i := range nodes {
		nodes[i] = graph.Node{
			ID:   string(rune('a' + i)),
			X:    float64(20 + i*15),
			Y:    float64(20 + (i%5)*20),
			Tier: graph.Tier(i % graph.TierCount),
		}
	}
	return nodes
}

func set(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func TestNewSurface(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		ratio      float64
		wantErr    bool
		wantPixels image.Point
	}{
		{"Plain", 100, 80, 1, false, image.Point{100, 80}},
		{"Retina", 100, 80, 2, false, image.Point{200, 160}},
		{"FractionalRatio", 100, 80, 1.5, false, image.Point{150, 120}},
		{"ZeroRatioDefaultsToOne", 100, 80, 0, false, image.Point{100, 80}},
		{"ZeroWidth", 0, 80, 1, true, image.Point{}},
		{"NegativeHeight", 100, -1, 1, true, image.Point{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSurface(tt.w, tt.h, tt.ratio)
			if tt.wantErr {
				if err == nil {
					t.Fatal("want error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSurface: %v", err)
			}
			b := s.Image().Bounds()
			if b.Dx() != tt.wantPixels.X || b.Dy() != tt.wantPixels.Y {
				t.Errorf("pixel size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantPixels.X, tt.wantPixels.Y)
			}
		})
	}
}

func TestPaintRevealCounts(t *testing.T) {
	nodes := testNodes(10)

	tests := []struct {
		name       string
		revealed   map[string]struct{}
		hide       bool
		wantFull   int
		wantGhosts int
	}{
		{"NoneRevealed", set(), false, 0, 10},
		{"SomeRevealed", set("a", "b", "c"), false, 3, 7},
		{"AllRevealed", set("a", "b", "c", "d", "e", "f", "g", "h", "i", "j"), false, 10, 0},
		{"HideUnrevealed", set("a", "b"), true, 2, 0},
		{"HideAllHidden", set(), true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := testPainter().Paint(testSurface(t), nodes, nil, tt.revealed, Options{HideUnrevealed: tt.hide})
			if err != nil {
				t.Fatalf("Paint: %v", err)
			}
			if stats.FullGlyphs != tt.wantFull {
				t.Errorf("FullGlyphs = %d, want %d", stats.FullGlyphs, tt.wantFull)
			}
			if stats.Ghosts != tt.wantGhosts {
				t.Errorf("Ghosts = %d, want %d", stats.Ghosts, tt.wantGhosts)
			}
		})
	}
}

// Mirrors the canonical two-node scenario: one revealed endpoint must yield
// one full glyph, one ghost, and a dim (not bright) edge.
func TestPaintPartiallyRevealedEdge(t *testing.T) {
	nodes := []graph.Node{
		{ID: "a", X: 0, Y: 0},
		{ID: "b", X: 10, Y: 10},
	}
	edges := []graph.Edge{{ID: graph.EdgeID("a", "b"), Source: "a", Target: "b", Strength: 1}}

	stats, err := testPainter().Paint(testSurface(t), nodes, edges, set("a"), Options{})
	if err != nil {
		t.Fatalf("Paint: %v", err)
	}

	if stats.FullGlyphs != 1 || stats.Ghosts != 1 {
		t.Errorf("glyphs = %d full / %d ghost, want 1/1", stats.FullGlyphs, stats.Ghosts)
	}
	if stats.Edges != 1 {
		t.Errorf("edges = %d, want 1", stats.Edges)
	}
	if stats.BrightEdges != 0 {
		t.Error("edge counted bright with only one endpoint revealed")
	}

	// Revealing both endpoints flips the edge to bright.
	stats, err = testPainter().Paint(testSurface(t), nodes, edges, set("a", "b"), Options{})
	if err != nil {
		t.Fatalf("Paint: %v", err)
	}
	if stats.BrightEdges != 1 {
		t.Error("edge not bright with both endpoints revealed")
	}
}

func TestPaintNeverPanics(t *testing.T) {
	awkward := [][]graph.Node{
		nil,
		{},
		{{ID: "", X: -1e9, Y: 1e9}},
		{{ID: "dup"}, {ID: "dup"}},
	}
	edges := []graph.Edge{
		{ID: "x", Source: "nope", Target: "also-nope", Strength: -5},
		{ID: "", Source: "", Target: ""},
	}

	for _, nodes := range awkward {
		if _, err := testPainter().Paint(testSurface(t), nodes, edges, nil, Options{}); err != nil {
			t.Errorf("Paint(%v): %v", nodes, err)
		}
	}
}

func TestPaintMissingContext(t *testing.T) {
	if _, err := testPainter().Paint(nil, testNodes(2), nil, nil, Options{}); err == nil {
		t.Error("Paint on nil surface succeeded, want error")
	}
	if _, err := testPainter().Paint(&Surface{}, testNodes(2), nil, nil, Options{}); err == nil {
		t.Error("Paint on context-less surface succeeded, want error")
	}
}

func TestPaintDeterministic(t *testing.T) {
	nodes := testNodes(12)
	var edges []graph.Edge
	for i := 0; i < 11; i++ {
		a, b := nodes[i].ID, nodes[i+1].ID
		edges = append(edges, graph.Edge{ID: graph.EdgeID(a, b), Source: a, Target: b, Strength: i + 1})
	}
	revealed := set("a", "c", "e", "g")

	s1, s2 := testSurface(t), testSurface(t)
	if _, err := testPainter().Paint(s1, nodes, edges, revealed, Options{}); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	if _, err := testPainter().Paint(s2, nodes, edges, revealed, Options{}); err != nil {
		t.Fatalf("Paint: %v", err)
	}

	p1 := s1.Image().(*image.RGBA).Pix
	p2 := s2.Image().(*image.RGBA).Pix
	if !bytes.Equal(p1, p2) {
		t.Error("two paints of identical data produced different pixels")
	}
}

func TestPaintClearsPreviousFrame(t *testing.T) {
	s := testSurface(t)
	nodes := testNodes(6)
	all := set("a", "b", "c", "d", "e", "f")

	if _, err := testPainter().Paint(s, nodes, nil, all, Options{}); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	busy := append([]uint8(nil), s.Image().(*image.RGBA).Pix...)

	// Repainting with nothing revealed and nothing ghosted must not leave old
	// glyphs behind.
	if _, err := testPainter().Paint(s, nodes, nil, set(), Options{HideUnrevealed: true}); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	empty, err := NewSurface(200, 150, 1)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	if _, err := testPainter().Paint(empty, nil, nil, nil, Options{}); err != nil {
		t.Fatalf("Paint: %v", err)
	}

	if !bytes.Equal(s.Image().(*image.RGBA).Pix, empty.Image().(*image.RGBA).Pix) {
		t.Error("repaint did not fully clear the previous frame")
	}
	if bytes.Equal(busy, empty.Image().(*image.RGBA).Pix) {
		t.Error("sanity check failed: populated frame identical to empty frame")
	}
}

func TestGhostOpacityClamped(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0.08},
		{0.01, minGhostOpacity},
		{0.5, maxGhostOpacity},
		{0.1, 0.1},
	}
	for _, tt := range tests {
		got := Options{GhostOpacity: tt.in}.withDefaults().GhostOpacity
		if got != tt.want {
			t.Errorf("GhostOpacity %g clamped to %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestEdgeControlPointDeterministic(t *testing.T) {
	a := graph.Node{ID: "a", X: 0, Y: 0}
	b := graph.Node{ID: "b", X: 100, Y: 0}

	x1, y1 := edgeControlPoint("a--b", a, b)
	x2, y2 := edgeControlPoint("a--b", a, b)
	if x1 != x2 || y1 != y2 {
		t.Error("control point not stable across calls")
	}

	// Coincident endpoints degenerate to the midpoint without NaN.
	x, y := edgeControlPoint("self", a, a)
	if x != a.X || y != a.Y {
		t.Errorf("degenerate control point = (%g,%g), want (%g,%g)", x, y, a.X, a.Y)
	}
}

func TestEncodePNG(t *testing.T) {
	s := testSurface(t)
	if _, err := testPainter().Paint(s, testNodes(3), nil, set("a"), Options{}); err != nil {
		t.Fatalf("Paint: %v", err)
	}

	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty PNG output")
	}

	var none *Surface
	if err := none.EncodePNG(&buf); err == nil {
		t.Error("EncodePNG on nil surface succeeded, want error")
	}
}
