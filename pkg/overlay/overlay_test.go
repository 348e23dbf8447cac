package overlay

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"

	"github.com/linguamesh/constellation/pkg/graph"
	"github.com/linguamesh/constellation/pkg/viewport"
)

var testSize = viewport.Size{Width: 800, Height: 600}

func newTestOverlay(nodes ...graph.Node) *Overlay {
	o := New(testSize, 7, 0.62, log.New(io.Discard))
	o.SetNodes(nodes)
	return o
}

func TestHitTestIdentityTransform(t *testing.T) {
	a := graph.Node{ID: "a", X: 100, Y: 100}
	b := graph.Node{ID: "b", X: 300, Y: 300}
	o := newTestOverlay(a, b)

	tests := []struct {
		name   string
		point  viewport.Point
		wantID string
		wantOK bool
	}{
		{"DeadCenter", viewport.Point{X: 100, Y: 100}, "a", true},
		{"InsideOversizedCircle", viewport.Point{X: 108, Y: 105}, "a", true},
		{"OtherNode", viewport.Point{X: 301, Y: 299}, "b", true},
		{"Background", viewport.Point{X: 200, Y: 200}, "", false},
		{"FarOutside", viewport.Point{X: 700, Y: 50}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := o.HitTest(tt.point)
			if ok != tt.wantOK {
				t.Fatalf("hit = %v, want %v", ok, tt.wantOK)
			}
			if ok && n.ID != tt.wantID {
				t.Errorf("hit node %q, want %q", n.ID, tt.wantID)
			}
		})
	}
}

func TestHitTestUnderTransform(t *testing.T) {
	n := graph.Node{ID: "a", X: 100, Y: 100}
	o := newTestOverlay(n)

	tr := viewport.Transform{Scale: 2, PanX: 30, PanY: -10}
	o.ApplyTransform(tr, true)

	screen := tr.Project(viewport.Point{X: n.X, Y: n.Y}, testSize)
	hit, ok := o.HitTest(screen)
	if !ok || hit.ID != "a" {
		t.Fatalf("projected center missed: ok=%v", ok)
	}

	// The old, untransformed position must now be background.
	if _, ok := o.HitTest(viewport.Point{X: 100, Y: 100}); ok {
		t.Error("hit circle did not move with the transform")
	}
}

func TestHitRadiusFloorWhenZoomedOut(t *testing.T) {
	n := graph.Node{ID: "tiny", X: 400, Y: 300, Compact: true}
	o := newTestOverlay(n)

	// At minimum zoom, the visual radius is far below MinHitRadius; the
	// screen-space floor keeps the node tappable.
	tr := viewport.Transform{Scale: viewport.MinScale}
	o.ApplyTransform(tr, true)
	center := tr.Project(viewport.Point{X: n.X, Y: n.Y}, testSize)

	justInside := viewport.Point{X: center.X + MinHitRadius - 0.5, Y: center.Y}
	if _, ok := o.HitTest(justInside); !ok {
		t.Error("compact node untappable at min zoom despite hit-radius floor")
	}

	justOutside := viewport.Point{X: center.X + MinHitRadius + 0.5, Y: center.Y}
	if _, ok := o.HitTest(justOutside); ok {
		t.Error("hit circle larger than the floor at min zoom")
	}
}

func TestHitTestNearestWins(t *testing.T) {
	a := graph.Node{ID: "a", X: 100, Y: 100}
	b := graph.Node{ID: "b", X: 110, Y: 100} // overlapping hit circles
	o := newTestOverlay(a, b)

	n, ok := o.HitTest(viewport.Point{X: 108, Y: 100})
	if !ok || n.ID != "b" {
		t.Errorf("hit %q, want nearest node b", n.ID)
	}
}

func TestTap(t *testing.T) {
	o := newTestOverlay(graph.Node{ID: "a", X: 100, Y: 100, Text: "hej", Tier: graph.TierGreen})

	n, ok := o.Tap(viewport.Point{X: 100, Y: 100})
	if !ok {
		t.Fatal("tap on node not absorbed")
	}
	// The full node record comes back, not just an id.
	if n.Text != "hej" || n.Tier != graph.TierGreen {
		t.Errorf("tap returned partial record: %+v", n)
	}

	if _, ok := o.Tap(viewport.Point{X: 500, Y: 500}); ok {
		t.Error("background tap reported a hit")
	}
}

func TestDrawRingsSparse(t *testing.T) {
	nodes := make([]graph.Node, 50)
	for i := range nodes {
		nodes[i] = graph.Node{ID: id(i), X: float64(i * 10), Y: 100}
	}
	o := newTestOverlay(nodes...)
	ctx := gg.NewContext(800, 600)

	tests := []struct {
		name  string
		rings Rings
		want  int
	}{
		{"Nothing", Rings{Active: -1}, 0},
		{"SelectedOnly", Rings{Selected: id(3), Active: -1}, 1},
		{"PathNotStarted", Rings{Path: []string{id(0), id(1), id(2)}, Active: -1}, 0},
		{"PathMidway", Rings{Path: []string{id(0), id(1), id(2)}, Active: 1}, 2},
		{"PathDone", Rings{Path: []string{id(0), id(1), id(2)}, Active: 2}, 3},
		{"Matches", Rings{Matches: []string{id(5), id(6)}, Active: -1}, 2},
		{"UnknownIDsSkipped", Rings{Selected: "nope", Matches: []string{"also-nope"}, Active: -1}, 0},
		{
			"Combined",
			Rings{Selected: id(9), Path: []string{id(0), id(1)}, Active: 0, Matches: []string{id(20)}},
			3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := o.DrawRings(ctx, tt.rings); got != tt.want {
				t.Errorf("drew %d rings, want %d", got, tt.want)
			}
		})
	}
}

func id(i int) string {
	return "n" + string(rune('a'+i%26)) + string(rune('0'+i/26))
}

func TestApplyTransformStored(t *testing.T) {
	o := newTestOverlay()
	tr := viewport.Transform{Scale: 1.5, PanX: 3, PanY: 4}
	o.ApplyTransform(tr, false)
	if got := o.Transform(); got != tr {
		t.Errorf("stored transform %+v, want %+v", got, tr)
	}
}
