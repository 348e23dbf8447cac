// Package scene composes the full constellation pipeline: graph store,
// raster painter, viewport controller, interaction overlay, path animator,
// and phrase playback. Hosts (CLI, TUI, HTTP server) construct one Scene and
// drive it; the packages underneath are never wired by hand twice.
//
// The central discipline is the split between data changes and view changes.
// Loading a course or changing the reveal set invalidates the cached raster;
// pan and zoom only change the compositing transform. Frame reflects both:
// it repaints the raster when (and only when) data changed, then composites
// it under the current transform with the overlay rings on top.
package scene
