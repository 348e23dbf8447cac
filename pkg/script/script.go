package script

import (
	"context"
	"fmt"

	"github.com/linguamesh/constellation/pkg/graph"
)

// Script is one course's worth of graph-building material as delivered by an
// external provider: the ordered acquisition rounds, the co-occurrence
// connections, and the phrases available for playback.
type Script struct {
	CourseID    string             `json:"course_id" bson:"course_id"`
	Rounds      []graph.Round      `json:"rounds" bson:"rounds"`
	Connections []graph.Connection `json:"connections" bson:"connections"`
	Phrases     []Phrase           `json:"phrases,omitempty" bson:"phrases,omitempty"`
}

// Phrase is a playable unit: its audio clip id and the ordered node ids that
// compose it (the decomposition that drives path highlighting).
type Phrase struct {
	ID      string   `json:"id" bson:"id"`
	ClipID  string   `json:"clip_id" bson:"clip_id"`
	Text    string   `json:"text,omitempty" bson:"text,omitempty"`
	NodeIDs []string `json:"node_ids" bson:"node_ids"`
}

// Provider fetches course scripts. Implementations: FileProvider for local
// JSON documents, MongoProvider for a shared course store.
type Provider interface {
	// Script returns the script for a course. A missing course is an error;
	// internally inconsistent data (dangling connections) is not, since the
	// graph load recovers from it.
	Script(ctx context.Context, courseID string) (Script, error)
}

// Validate checks the structural minimum: a course id and at least one round,
// each round carrying a node id. Dangling connections are deliberately not an
// error here.
func (s Script) Validate() error {
	if s.CourseID == "" {
		return fmt.Errorf("script missing course id")
	}
	if len(s.Rounds) == 0 {
		return fmt.Errorf("script %s has no rounds", s.CourseID)
	}
	for i, r := range s.Rounds {
		if r.NodeID == "" {
			return fmt.Errorf("script %s: round %d missing node id", s.CourseID, i)
		}
	}
	for i, p := range s.Phrases {
		if p.ID == "" {
			return fmt.Errorf("script %s: phrase %d missing id", s.CourseID, i)
		}
	}
	return nil
}
