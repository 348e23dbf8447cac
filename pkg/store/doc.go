// Package store holds the canonical in-memory graph state.
//
// The store is pure data plus mutators: nodes and edges (immutable after
// load), the reveal set (replaced wholesale on every change), the selection,
// and the transient highlight path with its cursor. Rendering, viewport math,
// and hit testing live elsewhere and consume read-only snapshots.
//
// State changes are published as typed Event values through an explicit
// subscription interface rather than any implicit event bubbling, so the
// owning coordinator decides how changes propagate.
package store
