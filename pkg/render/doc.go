// Package render paints the knowledge graph onto a raster surface.
//
// The painter is a pure function of its inputs: (nodes, edges, reveal set,
// options) to pixels. Every call fully clears and repaints, with no
// incremental diffing, so callers invoke it only when data changes, never
// per interaction frame. Pan and zoom are a compositing concern owned by the
// viewport; they never trigger a repaint here.
//
// Revealed nodes get a three-element glyph (glow ring, core disc, inner dot)
// in their tier color. Unrevealed nodes are ghost dots at near-zero
// opacity, keeping the unlearned graph's silhouette without exposing
// content, or are
// omitted entirely with HideUnrevealed. Edges are quadratic curves whose bend
// direction is hashed from the edge id, so repaints are pixel-identical.
//
// Static export of the same data to DOT/SVG lives in the [nodelink]
// subpackage.
package render
