package store

import "github.com/linguamesh/constellation/pkg/graph"

// Event is a typed change notification published by the store. Subscribers
// receive events synchronously, after the state change is committed, on the
// goroutine that performed the mutation.
type Event interface{ storeEvent() }

// GraphLoaded is published when a new graph replaces the old one.
type GraphLoaded struct {
	Nodes int
	Edges int
}

// RevealChanged is published when the reveal set is replaced.
type RevealChanged struct {
	Count int
}

// SelectionChanged is published when the selection changes. Node is nil on
// deselect.
type SelectionChanged struct {
	Node *graph.Node
}

// HighlightChanged is published when a highlight path is created, advanced,
// or cleared. A cleared path has nil IDs.
type HighlightChanged struct {
	IDs    []string
	Active int
}

func (GraphLoaded) storeEvent()      {}
func (RevealChanged) storeEvent()    {}
func (SelectionChanged) storeEvent() {}
func (HighlightChanged) storeEvent() {}

// Subscribe registers fn for all future events and returns a cancel function.
// Subscribers must not block: they run inline on the mutating call.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// publish delivers ev to every subscriber. Called without the lock held so a
// subscriber may read back from the store.
func (s *Store) publish(ev Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
