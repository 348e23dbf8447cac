package render

import (
	"image/color"

	"github.com/linguamesh/constellation/pkg/graph"
)

// Default canvas background: deep navy, dark enough that ghost dots read as a
// faint silhouette rather than visible content.
var defaultBackground = color.RGBA{R: 11, G: 16, B: 32, A: 255}

// DefaultBackground returns the standard canvas fill. Compositors clear with
// the same color so letterboxing around a zoomed-out frame stays seamless.
func DefaultBackground() color.Color { return defaultBackground }

// Edge stroke base color before alpha scaling.
var edgeColor = color.RGBA{R: 168, G: 190, B: 235, A: 255}

// Ghost dot color; opacity comes from Options.GhostOpacity.
var ghostColor = color.RGBA{R: 190, G: 200, B: 220, A: 255}

// Inner dot color shared by all tiers.
var innerDotColor = color.RGBA{R: 244, G: 248, B: 255, A: 255}

// tierPalette maps each tier band to its core glyph color. Glow rings reuse
// the core color at low alpha.
var tierPalette = [graph.TierCount]color.RGBA{
	graph.TierWhite:  {R: 224, G: 228, B: 235, A: 255},
	graph.TierYellow: {R: 240, G: 200, B: 80, A: 255},
	graph.TierOrange: {R: 235, G: 140, B: 64, A: 255},
	graph.TierGreen:  {R: 96, G: 190, B: 120, A: 255},
	graph.TierBlue:   {R: 90, G: 150, B: 235, A: 255},
	graph.TierBrown:  {R: 160, G: 116, B: 80, A: 255},
	graph.TierBlack:  {R: 140, G: 120, B: 200, A: 255},
}

// TierColor returns the glyph color for a tier band. Out-of-range tiers get
// the white-band color so malformed data still paints something sensible.
func TierColor(t graph.Tier) color.RGBA {
	if !t.Valid() {
		return tierPalette[graph.TierWhite]
	}
	return tierPalette[t]
}
