// Package layout places knowledge-graph nodes deterministically.
//
// Positions are computed once per course load and never recomputed by pan,
// zoom, or reveal changes. Build is a pure function of its inputs: acquisition
// order drives a golden-angle spiral, tier selects a radial band, aggregate
// connection strength pulls nodes toward their already-placed neighbors, and
// all jitter comes from an FNV hash of the node id. Two calls with the same
// input yield byte-identical positions, which the layout cache and the
// rendering tests both rely on.
//
// When a boundary tier is supplied, every position is clamped inside a
// tier-dependent enclosing circle whose area grows with tier. This is the
// "growing region" that conveys overall progress visually.
package layout
