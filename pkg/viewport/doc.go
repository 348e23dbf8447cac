// Package viewport owns the user-controlled pan/zoom transform.
//
// The controller interprets wheel, drag, pinch, and keyboard input into a
// single Transform value (uniform scale in [0.3, 3.0] plus a pan in unscaled
// layout units) and pushes it to every registered layer. Pushing a transform
// is cheap compositing; it never repaints the raster, which is the whole
// point: repaint cost and interaction cost stay decoupled.
//
// The correctness invariant of the component is that the raster layer and
// the interaction overlay always receive identical transform values. Any
// divergence makes hit targets drift away from painted glyphs, which is a
// correctness bug, not a cosmetic one. The controller enforces this
// structurally: one value, one push loop, same order for every layer.
//
// Zoom gestures are fixed-point: the layout point under the cursor (or pinch
// midpoint) stays visually fixed, which is achieved by correcting pan with
// the anchor's offset from the viewport center projected through the scale
// delta.
package viewport
