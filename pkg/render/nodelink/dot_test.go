package nodelink

import (
	"strings"
	"testing"

	"github.com/linguamesh/constellation/pkg/graph"
)

func sampleGraph() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			{ID: "agua", X: 100, Y: 120, Tier: graph.TierWhite, Text: "agua", Gloss: "water"},
			{ID: "fuego", X: 240, Y: 80, Tier: graph.TierBlack, Text: "fuego"},
			{ID: "sol", X: 300, Y: 200, Tier: graph.TierYellow, Text: "sol"},
		},
		Edges: []graph.Edge{
			{ID: "agua--fuego", Source: "agua", Target: "fuego", Strength: 3},
			{ID: "fuego--sol", Source: "fuego", Target: "sol", Strength: 1},
		},
	}
}

func TestToDOTStructure(t *testing.T) {
	revealed := map[string]bool{"agua": true, "fuego": true, "sol": true}
	dot := ToDOT(sampleGraph(), revealed, Options{})

	if !strings.HasPrefix(dot, "graph constellation {") {
		t.Errorf("DOT should open an undirected graph, got prefix %q", dot[:30])
	}
	for _, want := range []string{`"agua"`, `"fuego"`, `"sol"`, `"agua" -- "fuego"`, `"fuego" -- "sol"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s:\n%s", want, dot)
		}
	}
	// Dark-tier node switches font color.
	if !strings.Contains(dot, "fontcolor=white") {
		t.Error("black-tier node should use white font")
	}
}

func TestToDOTGhosts(t *testing.T) {
	revealed := map[string]bool{"agua": true}
	dot := ToDOT(sampleGraph(), revealed, Options{})

	if !strings.Contains(dot, `"fuego"`) {
		t.Fatal("unrevealed node should still appear as ghost")
	}
	if !strings.Contains(dot, "rounded,dashed") {
		t.Error("unrevealed nodes should be dashed")
	}
	if strings.Count(dot, "rounded,dashed") != 2 {
		t.Errorf("expected 2 ghost nodes, dot:\n%s", dot)
	}
}

func TestToDOTHideUnrevealed(t *testing.T) {
	revealed := map[string]bool{"agua": true, "fuego": true}
	dot := ToDOT(sampleGraph(), revealed, Options{HideUnrevealed: true})

	if strings.Contains(dot, `"sol"`) {
		t.Error("hidden node should be omitted entirely")
	}
	// Edge to the omitted node must go with it.
	if strings.Contains(dot, `-- "sol"`) || strings.Contains(dot, `"sol" --`) {
		t.Error("edges to omitted nodes should be dropped")
	}
	if !strings.Contains(dot, `"agua" -- "fuego"`) {
		t.Error("edge between kept nodes should remain")
	}
}

func TestToDOTDetailedLabels(t *testing.T) {
	revealed := map[string]bool{"agua": true}
	dot := ToDOT(sampleGraph(), revealed, Options{Detailed: true})

	for _, want := range []string{"tier: white", "gloss: water"} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed label missing %q:\n%s", want, dot)
		}
	}
}

func TestPenWidthCapped(t *testing.T) {
	if w := penWidth(1); w <= 0.5 {
		t.Errorf("penWidth(1) = %v, want > 0.5", w)
	}
	if w := penWidth(100); w != 3 {
		t.Errorf("penWidth(100) = %v, want capped at 3", w)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?><svg width="8in" height="6in" viewBox="0.00 0.00 576.00 432.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 576.00 432.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="576" height="432"`) {
		t.Errorf("dimensions not set in pixels: %s", out)
	}
	if strings.Contains(out, "8in") {
		t.Errorf("inch dimensions should be replaced: %s", out)
	}
}

func TestNormalizeViewBoxPassThrough(t *testing.T) {
	in := []byte(`<svg><g/></svg>`)
	if got := string(normalizeViewBox(in)); got != string(in) {
		t.Errorf("SVG without viewBox should pass through, got %s", got)
	}
}
