package cli

import (
	"testing"

	"github.com/linguamesh/constellation/pkg/graph"
)

func TestValidateExportFormat(t *testing.T) {
	for _, f := range []string{"dot", "svg", "json"} {
		if err := validateExportFormat(f); err != nil {
			t.Errorf("validateExportFormat(%q) = %v, want nil", f, err)
		}
	}
	for _, f := range []string{"", "pdf", "gif"} {
		if err := validateExportFormat(f); err == nil {
			t.Errorf("validateExportFormat(%q) should fail", f)
		}
	}
}

func TestRevealedSet(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{{ID: "agua"}, {ID: "fuego"}, {ID: "sol"}}}

	set := revealedSet(g, "agua,sol")
	if len(set) != 2 || !set["agua"] || !set["sol"] {
		t.Errorf("revealedSet list = %v", set)
	}

	set = revealedSet(g, "all")
	if len(set) != 3 {
		t.Errorf("revealedSet all = %v, want every node", set)
	}

	set = revealedSet(g, "")
	if len(set) != 0 {
		t.Errorf("revealedSet empty = %v, want empty", set)
	}
}
