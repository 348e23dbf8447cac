// Package nodelink exports a vocabulary graph as a traditional node-link
// diagram. It is the inspection view: where the raster painter draws the
// constellation as the learner sees it, nodelink produces a structural
// diagram for debugging layouts and sharing course graphs.
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, revealed, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Revealed nodes are drawn as solid boxes tinted by tier; unrevealed nodes
// get dashed grey outlines, mirroring the ghost treatment in the raster
// renderer. The generated DOT can also be saved and processed with external
// Graphviz tooling.
//
// SVG rendering is in-process via [github.com/goccy/go-graphviz].
package nodelink
