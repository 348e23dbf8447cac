package store

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/linguamesh/constellation/pkg/graph"
	"github.com/linguamesh/constellation/pkg/graph/layout"
)

// Store is the canonical in-memory model of the knowledge graph: positioned
// nodes and edges, the revealed subset, the current selection, and the
// transient highlight path. It knows nothing about rendering.
//
// All methods are safe for concurrent use. Mutators publish typed events to
// subscribers after the state change is committed.
type Store struct {
	mu     sync.RWMutex
	logger *log.Logger

	nodes []graph.Node
	index map[string]int
	edges []graph.Edge

	revealed map[string]struct{}
	selected string // node id, "" when nothing selected
	hero     string // preferred center target, "" for canvas center
	path     *HighlightPath

	subs   map[int]func(Event)
	nextID int
}

// HighlightPath is an ordered node-id sequence with a cursor. Active is the
// index of the most recently lit node; -1 means the path exists but playback
// has not started.
type HighlightPath struct {
	IDs    []string
	Active int
}

// New creates an empty store. A nil logger falls back to log.Default().
func New(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		logger:   logger,
		index:    make(map[string]int),
		revealed: make(map[string]struct{}),
		subs:     make(map[int]func(Event)),
	}
}

// =============================================================================
// Loading
// =============================================================================

// Load builds the node/edge arrays from provider rounds and connections,
// assigning deterministic positions via layout.Build. Loading replaces any
// previous graph and clears reveal, selection, and highlight state.
//
// Connections referencing unknown nodes are dropped inside the layout pass
// with a diagnostic log; Load only fails on structurally unusable input
// (empty canvas).
func (s *Store) Load(rounds []graph.Round, canvas layout.Size, connections []graph.Connection, boundaryTier graph.Tier) error {
	g, err := layout.Build(rounds, connections, canvas, boundaryTier, s.logger)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	s.LoadGraph(g)
	return nil
}

// LoadGraph installs an already-positioned graph (e.g. from the layout
// cache). Dangling edges are filtered; reveal, selection, and highlight state
// are reset.
func (s *Store) LoadGraph(g graph.Graph) {
	g = g.FilterDangling(s.logger)

	s.mu.Lock()
	s.nodes = g.Nodes
	s.edges = g.Edges
	s.index = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		s.index[n.ID] = i
	}
	s.revealed = make(map[string]struct{})
	s.selected = ""
	s.hero = ""
	s.path = nil
	s.mu.Unlock()

	s.publish(GraphLoaded{Nodes: len(g.Nodes), Edges: len(g.Edges)})
}

// =============================================================================
// Read Access
// =============================================================================

// Nodes returns a copy of the node slice.
func (s *Store) Nodes() []graph.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]graph.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Edges returns a copy of the edge slice.
func (s *Store) Edges() []graph.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]graph.Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Node returns the node with the given id.
func (s *Store) Node(id string) (graph.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return graph.Node{}, false
	}
	return s.nodes[i], true
}

// Revealed returns the current reveal set. The returned map is the store's
// own immutable snapshot: reveal sets are replaced wholesale, never mutated,
// so handing it out is safe.
func (s *Store) Revealed() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revealed
}

// IsRevealed reports whether the node id is in the reveal set.
func (s *Store) IsRevealed(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revealed[id]
	return ok
}

// Selected returns the currently selected node, if any.
func (s *Store) Selected() (graph.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[s.selected]
	if !ok {
		return graph.Node{}, false
	}
	return s.nodes[i], true
}

// Hero returns the preferred center-target node id, or "" for canvas center.
func (s *Store) Hero() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hero
}

// Highlight returns a copy of the current highlight path, or nil.
func (s *Store) Highlight() *HighlightPath {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.path == nil {
		return nil
	}
	ids := make([]string, len(s.path.IDs))
	copy(ids, s.path.IDs)
	return &HighlightPath{IDs: ids, Active: s.path.Active}
}

// =============================================================================
// Mutators
// =============================================================================

// SetRevealed replaces the reveal set. The set is copied, never merged with
// the previous one, so observers can rely on identity changes. Ids not in the
// graph are kept out of the stored set.
func (s *Store) SetRevealed(ids map[string]struct{}) {
	s.mu.Lock()
	next := make(map[string]struct{}, len(ids))
	for id := range ids {
		if _, ok := s.index[id]; ok {
			next[id] = struct{}{}
		}
	}
	s.revealed = next
	count := len(next)
	s.mu.Unlock()

	s.publish(RevealChanged{Count: count})
}

// Select marks the node as selected and the hero target. Selecting an unknown
// id is a no-op. Select("") deselects.
func (s *Store) Select(id string) {
	s.mu.Lock()
	if id != "" {
		if _, ok := s.index[id]; !ok {
			s.mu.Unlock()
			s.logger.Debug("select of unknown node ignored", "node", id)
			return
		}
	}
	s.selected = id
	s.hero = id
	var node *graph.Node
	if i, ok := s.index[id]; ok {
		n := s.nodes[i]
		node = &n
	}
	s.mu.Unlock()

	s.publish(SelectionChanged{Node: node})
}

// SetHighlightPath begins a highlight path over the given node ids with the
// cursor at -1 ("not yet started"). Unknown ids are dropped with a debug log.
func (s *Store) SetHighlightPath(ids []string) {
	s.mu.Lock()
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.index[id]; !ok {
			s.logger.Debug("highlight path references unknown node", "node", id)
			continue
		}
		kept = append(kept, id)
	}
	s.path = &HighlightPath{IDs: kept, Active: -1}
	snapshot := append([]string(nil), kept...)
	s.mu.Unlock()

	s.publish(HighlightChanged{IDs: snapshot, Active: -1})
}

// Advance moves the highlight cursor to index i, clamped into
// [-1, len(path)-1]. Without an active path it is a no-op.
func (s *Store) Advance(i int) {
	s.mu.Lock()
	if s.path == nil {
		s.mu.Unlock()
		return
	}
	if i < -1 {
		i = -1
	}
	if last := len(s.path.IDs) - 1; i > last {
		i = last
	}
	s.path.Active = i
	snapshot := append([]string(nil), s.path.IDs...)
	s.mu.Unlock()

	s.publish(HighlightChanged{IDs: snapshot, Active: i})
}

// ClearHighlight removes the highlight path entirely.
func (s *Store) ClearHighlight() {
	s.mu.Lock()
	had := s.path != nil
	s.path = nil
	s.mu.Unlock()

	if had {
		s.publish(HighlightChanged{IDs: nil, Active: -1})
	}
}
