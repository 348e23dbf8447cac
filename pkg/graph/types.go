package graph

import (
	"fmt"
	"hash/fnv"
)

// =============================================================================
// Tier - Coarse Progress Bands
// =============================================================================

// Tier classifies a node (and the learner's overall standing) into a coarse
// progress band. Bands are ordered: a higher tier means later acquisition.
type Tier int

// Progress tiers, in acquisition order.
const (
	TierWhite Tier = iota
	TierYellow
	TierOrange
	TierGreen
	TierBlue
	TierBrown
	TierBlack
)

// TierCount is the number of defined tiers.
const TierCount = int(TierBlack) + 1

var tierNames = [...]string{"white", "yellow", "orange", "green", "blue", "brown", "black"}

// String returns the lowercase band name, or "tier(N)" for out-of-range values.
func (t Tier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// Valid reports whether t is one of the defined bands.
func (t Tier) Valid() bool { return t >= 0 && int(t) < TierCount }

// Progress returns the tier's position in [0, 1], where TierWhite is 0 and
// TierBlack is 1. Out-of-range tiers are clamped.
func (t Tier) Progress() float64 {
	if t <= TierWhite {
		return 0
	}
	if int(t) >= TierCount-1 {
		return 1
	}
	return float64(t) / float64(TierCount-1)
}

// ParseTier converts a band name to its Tier value.
func ParseTier(s string) (Tier, error) {
	for i, name := range tierNames {
		if s == name {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

// =============================================================================
// Node - Vocabulary Unit Vertex
// =============================================================================

// Node is one vocabulary/grammar unit in the knowledge graph.
//
// Positions are assigned once by layout.Build and never change afterwards;
// pan/zoom is a view-space transform and does not touch X/Y. Nodes are plain
// values: copy them freely, never share pointers across components.
type Node struct {
	ID      string  `json:"id" bson:"id"`
	X       float64 `json:"x" bson:"x"`
	Y       float64 `json:"y" bson:"y"`
	Tier    Tier    `json:"tier" bson:"tier"`
	Compact bool    `json:"compact,omitempty" bson:"compact,omitempty"` // smaller glyph variant
	Text    string  `json:"text,omitempty" bson:"text,omitempty"`       // target-language rendering
	Gloss   string  `json:"gloss,omitempty" bson:"gloss,omitempty"`     // native-language rendering
}

// DisplayText returns the target-language text if set, otherwise the ID.
func (n *Node) DisplayText() string {
	if n.Text != "" {
		return n.Text
	}
	return n.ID
}

// =============================================================================
// Edge - Co-occurrence Link
// =============================================================================

// Edge links two nodes that co-occur in learned phrases. Strength is the
// co-occurrence count; rendering scales opacity and width with sqrt(Strength).
type Edge struct {
	ID       string `json:"id" bson:"id"`
	Source   string `json:"source" bson:"source"`
	Target   string `json:"target" bson:"target"`
	Strength int    `json:"strength" bson:"strength"`
}

// EdgeID derives the canonical edge identifier for a source/target pair.
func EdgeID(source, target string) string {
	return source + "--" + target
}

// =============================================================================
// Provider Input Types
// =============================================================================

// Round identifies one node together with its acquisition order, as delivered
// by the external course/script provider. Order is the position in the course
// sequence and drives deterministic layout.
type Round struct {
	NodeID  string `json:"node_id" bson:"node_id"`
	Order   int    `json:"order" bson:"order"`
	Tier    Tier   `json:"tier" bson:"tier"`
	Compact bool   `json:"compact,omitempty" bson:"compact,omitempty"`
	Text    string `json:"text,omitempty" bson:"text,omitempty"`
	Gloss   string `json:"gloss,omitempty" bson:"gloss,omitempty"`
}

// Connection is a raw co-occurrence record from the provider. Connections
// referencing unknown nodes are dropped at load time, never surfaced as errors.
type Connection struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Count  int    `json:"count" bson:"count"`
}

// =============================================================================
// Deterministic Hashing
// =============================================================================

// HashID returns a stable FNV-1a hash of an identifier. Layout jitter and
// edge curvature direction derive from this hash rather than randomness, so
// repeated builds and repaints never differ.
func HashID(id string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return h.Sum32()
}
