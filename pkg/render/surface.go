package render

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"
)

// Surface is the raster drawing target. Its backing image is sized
// displaySize × pixelRatio with the drawing context pre-scaled by pixelRatio,
// so painters work in display units and strokes stay crisp on high-density
// displays.
//
// A Surface is exclusively owned by the render pipeline: nothing else draws
// on it, and pan/zoom never touches it (the viewport transform is applied at
// composite time, not here).
type Surface struct {
	ctx    *gg.Context
	width  int
	height int
	ratio  float64
}

// NewSurface allocates a raster surface of width × height display units at
// the given pixel ratio. A ratio of 0 or less defaults to 1.
func NewSurface(width, height int, pixelRatio float64) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	pw := int(math.Round(float64(width) * pixelRatio))
	ph := int(math.Round(float64(height) * pixelRatio))
	ctx := gg.NewContext(pw, ph)
	ctx.Scale(pixelRatio, pixelRatio)
	return &Surface{ctx: ctx, width: width, height: height, ratio: pixelRatio}, nil
}

// Width returns the surface width in display units.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in display units.
func (s *Surface) Height() int { return s.height }

// PixelRatio returns the device pixel ratio the surface was allocated with.
func (s *Surface) PixelRatio() float64 { return s.ratio }

// Image returns the backing raster image (at pixel resolution, not display
// resolution).
func (s *Surface) Image() image.Image {
	if s == nil || s.ctx == nil {
		return nil
	}
	return s.ctx.Image()
}

// EncodePNG writes the surface contents as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	if s == nil || s.ctx == nil {
		return fmt.Errorf("encode png: no drawing context")
	}
	return s.ctx.EncodePNG(w)
}

// context returns the drawing context, or nil if the surface is unusable.
// Painters must treat nil as "abort this repaint", not as a crash.
func (s *Surface) context() *gg.Context {
	if s == nil {
		return nil
	}
	return s.ctx
}
