package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Graph - Canonical Serialization Format
// =============================================================================

// Graph is the canonical serialization format for a positioned knowledge
// graph. Used for API responses, the layout cache, and static export.
//
// Node order is normalized (sorted by ID) on marshal so the same graph always
// serializes to the same bytes.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node returns the node with the given id, if present.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Index builds an id → Node lookup map.
func (g *Graph) Index() map[string]Node {
	idx := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		idx[n.ID] = n
	}
	return idx
}

// FilterDangling returns a copy of g without edges whose source or target is
// not in the node set. Dropped edges are logged at debug level; a dangling
// edge is a data-quality recovery, not a fatal condition.
func (g Graph) FilterDangling(logger *log.Logger) Graph {
	if logger == nil {
		logger = log.Default()
	}
	idx := g.Index()
	kept := make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if _, ok := idx[e.Source]; !ok {
			logger.Debug("dropping edge with unknown source", "edge", e.ID, "source", e.Source)
			continue
		}
		if _, ok := idx[e.Target]; !ok {
			logger.Debug("dropping edge with unknown target", "edge", e.ID, "target", e.Target)
			continue
		}
		kept = append(kept, e)
	}
	g.Edges = kept
	return g
}

// normalized returns a copy of g with nodes and edges sorted by ID for
// deterministic output. The receiver's slices are left untouched.
func (g Graph) normalized() Graph {
	g.Nodes = slices.Clone(g.Nodes)
	g.Edges = slices.Clone(g.Edges)
	slices.SortFunc(g.Nodes, func(a, b Node) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	slices.SortFunc(g.Edges, func(a, b Edge) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return g
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalGraph converts a Graph to JSON bytes with normalized node order.
func MarshalGraph(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("decode graph: %w", err)
	}
	return g, nil
}

// WriteGraph writes a Graph as indented JSON to an io.Writer.
func WriteGraph(g Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// WriteGraphFile writes a Graph to a JSON file created with 0644 permissions.
func WriteGraphFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
func ReadGraph(r io.Reader) (Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	return g, nil
}

// ReadGraphFile reads a JSON file and returns the decoded Graph.
func ReadGraphFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

func writeGraphTo(g Graph, w io.Writer) error {
	g = g.normalized()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
