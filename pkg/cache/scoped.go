package cache

// ScopedKeyer wraps a Keyer with a prefix, isolating cache namespaces when
// one backend serves several deployments or learners.
//
// Example:
//
//	// Per-learner keys so reveal-dependent frames never collide.
//	learnerKeyer := NewScopedKeyer(NewDefaultKeyer(), "learner:abc123:")
//
//	// Shared keys for course scripts and layouts.
//	sharedKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every generated
// key. A nil inner keyer falls back to the default scheme.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ScriptKey generates a prefixed script key.
func (k *ScopedKeyer) ScriptKey(courseID string) string {
	return k.prefix + k.inner.ScriptKey(courseID)
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(scriptHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(scriptHash, opts)
}

// FrameKey generates a prefixed frame key.
func (k *ScopedKeyer) FrameKey(layoutHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(layoutHash, opts)
}
