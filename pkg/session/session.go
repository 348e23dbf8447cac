// Package session tracks a learner's progress through a course.
//
// A session records which vocabulary nodes the learner has revealed and
// which node is currently selected, so the constellation can be restored
// exactly where the learner left off. Sessions expire after a TTL; an
// expired session means the learner starts the course fresh.
//
// The Store interface abstracts the storage backend. FileStore keeps
// sessions as JSON files under the user config directory, which is what
// the CLI uses. Servers that need shared state across instances can
// implement Store over Redis using the same expiry semantics.
//
// # Usage
//
//	store, err := session.NewFileStore("") // ~/.config/constellation/sessions/
//	if err != nil {
//	    return err
//	}
//
//	sess, err := store.Get(ctx, session.CourseSessionID("es-101"))
//	if sess == nil {
//	    sess, err = session.New("es-101", session.DefaultTTL)
//	}
//	sess.Reveal("agua", "fuego")
//	store.Set(ctx, sess)
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// Session stores a learner's progress for a single course.
type Session struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Revealed  []string  `json:"revealed"`
	Selected  string    `json:"selected,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Reveal adds node IDs to the revealed set, skipping duplicates,
// and bumps UpdatedAt.
func (s *Session) Reveal(nodeIDs ...string) {
	seen := make(map[string]bool, len(s.Revealed))
	for _, id := range s.Revealed {
		seen[id] = true
	}
	for _, id := range nodeIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		s.Revealed = append(s.Revealed, id)
	}
	s.UpdatedAt = time.Now()
}

// IsRevealed reports whether the learner has already revealed the node.
func (s *Session) IsRevealed(nodeID string) bool {
	for _, id := range s.Revealed {
		if id == nodeID {
			return true
		}
	}
	return false
}

// Select records the currently selected node and bumps UpdatedAt.
// An empty ID clears the selection.
func (s *Session) Select(nodeID string) {
	s.Selected = nodeID
	s.UpdatedAt = time.Now()
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// DefaultTTL is the default session duration. Progress older than this
// is treated as abandoned and the course starts over.
const DefaultTTL = 90 * 24 * time.Hour

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CourseSessionID returns the well-known session ID the CLI uses for a
// course. Each course gets one local session; servers that track many
// learners generate random IDs with GenerateID instead.
func CourseSessionID(courseID string) string {
	return "course-" + courseID
}

// New creates a fresh session for a course with no revealed nodes.
func New(courseID string, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:        id,
		CourseID:  courseID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}
