// Package overlay is the vector interaction layer over the raster graph.
//
// It carries an invisible, oversized hit circle for every node so taps
// resolve reliably even on compact glyphs at low zoom, and visible rings for
// only the few nodes that are selected, path-active, or search-matched. The
// full node set is never drawn here; overlay cost is independent of graph
// size.
//
// The overlay receives its transform exclusively through the viewport
// controller's layer interface, the same push that drives the raster
// compositor. That shared source is what keeps hit circles pixel-aligned
// with painted glyphs.
package overlay
