package layout

import (
	"math"

	"github.com/linguamesh/constellation/pkg/graph"
)

// Boundary growth limits as fractions of the canvas's half-extent. The first
// tier's region covers a bit more than a third of the canvas; the last tier
// fills it.
const (
	boundaryMinFraction = 0.38
	boundaryMaxFraction = 1.0
)

// bandRange is the radial slice of the boundary a tier's nodes occupy.
type bandRange struct {
	inner float64
	outer float64
}

// BoundaryRadius returns the radius of the growing region for the given tier:
// an enclosing circle whose area increases with tier, conveying how much of
// the course the learner has unlocked. An invalid tier means "no boundary"
// and yields the full canvas extent.
func BoundaryRadius(canvas Size, tier graph.Tier) float64 {
	half := math.Min(canvas.Width, canvas.Height) / 2
	if !tier.Valid() {
		return half * boundaryMaxFraction
	}
	f := boundaryMinFraction + (boundaryMaxFraction-boundaryMinFraction)*tier.Progress()
	return half * f
}

// tierBand maps a tier to the radial band its nodes occupy inside maxR.
// Bands share a small core so early-tier nodes do not all collapse onto the
// exact center, and each band overlaps its predecessor slightly so the rings
// read as one organism rather than concentric shells.
func tierBand(tier graph.Tier, maxR float64) bandRange {
	if !tier.Valid() {
		return bandRange{inner: maxR * 0.1, outer: maxR}
	}
	step := maxR / float64(graph.TierCount)
	inner := step * float64(tier) * 0.85
	outer := step * float64(int(tier)+1)
	if inner < maxR*0.06 {
		inner = maxR * 0.06
	}
	return bandRange{inner: inner, outer: outer}
}
