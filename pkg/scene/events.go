package scene

import (
	"time"

	"github.com/linguamesh/constellation/pkg/graph"
	"github.com/linguamesh/constellation/pkg/script"
)

// Event is a typed notification emitted by the scene. Subscribers switch on
// the concrete type.
type Event interface{ sceneEvent() }

// CourseLoaded fires after a course script has been laid out and installed.
type CourseLoaded struct {
	CourseID  string
	NodeCount int
}

// NodeSelected fires when a tap lands on a node.
type NodeSelected struct {
	Node graph.Node
}

// BackgroundTapped fires when a tap misses every hit circle. The selection
// has already been cleared.
type BackgroundTapped struct{}

// PhraseStarted fires when playback begins a phrase; Duration is the clip
// length estimate pacing the path animation.
type PhraseStarted struct {
	Phrase   script.Phrase
	Duration time.Duration
}

func (CourseLoaded) sceneEvent()     {}
func (NodeSelected) sceneEvent()     {}
func (BackgroundTapped) sceneEvent() {}
func (PhraseStarted) sceneEvent()    {}
