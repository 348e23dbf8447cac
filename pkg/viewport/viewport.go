package viewport

import (
	"math"
	"sync"

	"github.com/charmbracelet/log"
)

// Scale bounds and gesture step sizes.
const (
	MinScale = 0.3
	MaxScale = 3.0

	// wheelFactor is the per-event zoom multiplier (±10%).
	wheelFactor = 1.1

	// Programmatic ZoomIn/ZoomOut step.
	buttonZoomFactor = 1.25

	// Keyboard steps, divided by the current scale so perceived speed is
	// zoom-independent.
	keyZoomStep = 0.2
	keyPanStep  = 40.0
)

// Point is a 2D coordinate. Whether it is in screen or layout space depends
// on context; Project and Unproject convert between the two.
type Point struct {
	X float64
	Y float64
}

// Size is the viewport's display extent.
type Size struct {
	Width  float64
	Height float64
}

// Center returns the viewport midpoint, the shared transform origin.
func (s Size) Center() Point { return Point{X: s.Width / 2, Y: s.Height / 2} }

// Transform is the user-controlled view transform: a uniform scale plus a pan
// in unscaled layout units, composed around the viewport center. A layout
// point p maps to screen space as
//
//	screen = center + scale × (p − center + pan)
//
// which matches a translate-then-scale composite with transform-origin at the
// viewport center. Pure UI state: never persisted, reset on demand.
type Transform struct {
	Scale float64
	PanX  float64
	PanY  float64
}

// Identity is the reset transform: scale 1, no pan.
var Identity = Transform{Scale: 1}

// Project maps a layout-space point to screen space within a viewport of the
// given size.
func (t Transform) Project(p Point, size Size) Point {
	c := size.Center()
	return Point{
		X: c.X + t.Scale*(p.X-c.X+t.PanX),
		Y: c.Y + t.Scale*(p.Y-c.Y+t.PanY),
	}
}

// Unproject maps a screen-space point back to layout space.
func (t Transform) Unproject(q Point, size Size) Point {
	c := size.Center()
	return Point{
		X: (q.X-c.X)/t.Scale + c.X - t.PanX,
		Y: (q.Y-c.Y)/t.Scale + c.Y - t.PanY,
	}
}

// Layer receives transform updates. Both visual layers (raster compositor and
// interaction overlay) register as layers and are pushed the same values on
// every change; eased is false while a gesture is in progress so layers skip
// transition animation for immediate feedback.
type Layer interface {
	ApplyTransform(t Transform, eased bool)
}

// Controller owns the viewport transform and interprets gesture input.
// Repaint cost and interaction cost are decoupled by construction: the
// controller never triggers a repaint, it only pushes transform values to its
// layers.
//
// All methods are safe for concurrent use.
type Controller struct {
	mu     sync.Mutex
	logger *log.Logger

	size     Size
	t        Transform
	disabled bool

	dragging bool
	pinch    *pinchState

	layers []Layer
}

// pinchState captures the initial two-touch configuration; zoom is driven by
// the ratio of the current touch-pair distance to the initial one.
type pinchState struct {
	startDist  float64
	startScale float64
}

// NewController creates a controller over a viewport of the given display
// size, starting at the identity transform.
func NewController(size Size, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{logger: logger, size: size, t: Identity}
}

// AddLayer registers a layer and immediately pushes the current transform so
// a late-registered layer can never be out of sync.
func (c *Controller) AddLayer(l Layer) {
	c.mu.Lock()
	c.layers = append(c.layers, l)
	t, eased := c.t, !c.gestureActiveLocked()
	c.mu.Unlock()
	l.ApplyTransform(t, eased)
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Size returns the viewport display size.
func (c *Controller) Size() Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Resize updates the viewport display size (e.g. on window resize) and
// re-pushes the transform since the shared origin moved.
func (c *Controller) Resize(size Size) {
	c.mu.Lock()
	c.size = size
	c.mu.Unlock()
	c.push()
}

// SetInteractionDisabled turns every gesture handler into a no-op, used for
// fixed presentation views where user panning would break the boundary
// metaphor. Programmatic operations (ZoomIn, Reset) keep working.
func (c *Controller) SetInteractionDisabled(disabled bool) {
	c.mu.Lock()
	c.disabled = disabled
	c.dragging = false
	c.pinch = nil
	c.mu.Unlock()
}

// InteractionDisabled reports whether gestures are ignored.
func (c *Controller) InteractionDisabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disabled
}

// =============================================================================
// Gestures
// =============================================================================

// Wheel applies one wheel-zoom step anchored at the cursor: negative deltaY
// zooms in by 10%, positive zooms out. The layout point under the cursor
// stays visually fixed, which requires a pan correction proportional to the
// cursor's offset from the viewport center, not just a scale change.
func (c *Controller) Wheel(cursor Point, deltaY float64) {
	c.mu.Lock()
	defer c.unlockAndPush()
	if c.disabled || deltaY == 0 {
		return
	}
	factor := wheelFactor
	if deltaY > 0 {
		factor = 1 / wheelFactor
	}
	c.zoomAboutLocked(cursor, c.t.Scale*factor)
}

// DragStart begins a drag pan (mouse down or single touch). While any gesture
// is active, eased transitions are suppressed.
func (c *Controller) DragStart() {
	c.mu.Lock()
	defer c.unlockAndPush()
	if c.disabled {
		return
	}
	c.dragging = true
}

// DragBy pans by a raw pointer delta in screen pixels. The delta is divided
// by the current scale so perceived drag speed is independent of zoom level.
func (c *Controller) DragBy(dx, dy float64) {
	c.mu.Lock()
	defer c.unlockAndPush()
	if c.disabled || !c.dragging {
		return
	}
	c.t.PanX += dx / c.t.Scale
	c.t.PanY += dy / c.t.Scale
}

// DragEnd finishes a drag pan and restores eased transitions.
func (c *Controller) DragEnd() {
	c.mu.Lock()
	defer c.unlockAndPush()
	c.dragging = false
}

// PinchStart begins a two-touch pinch zoom.
func (c *Controller) PinchStart(a, b Point) {
	c.mu.Lock()
	defer c.unlockAndPush()
	if c.disabled {
		return
	}
	d := math.Hypot(b.X-a.X, b.Y-a.Y)
	if d == 0 {
		return
	}
	c.pinch = &pinchState{startDist: d, startScale: c.t.Scale}
}

// PinchMove updates a pinch in progress: the scale is the start scale times
// the ratio of current to initial touch-pair distance, anchored at the
// current touch midpoint so the pinched content stays under the fingers.
func (c *Controller) PinchMove(a, b Point) {
	c.mu.Lock()
	defer c.unlockAndPush()
	if c.disabled || c.pinch == nil {
		return
	}
	d := math.Hypot(b.X-a.X, b.Y-a.Y)
	if d == 0 {
		return
	}
	mid := Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	c.zoomAboutLocked(mid, c.pinch.startScale*d/c.pinch.startDist)
}

// PinchEnd finishes a pinch zoom.
func (c *Controller) PinchEnd() {
	c.mu.Lock()
	defer c.unlockAndPush()
	c.pinch = nil
}

// Key handles keyboard input: "+"/"=" and "-" zoom by a fixed step, arrow
// keys pan by a fixed step (both scaled by 1/scale for consistent perceived
// speed), and "0" resets to the identity transform. Unknown keys are ignored.
func (c *Controller) Key(key string) {
	c.mu.Lock()
	defer c.unlockAndPush()
	if c.disabled {
		return
	}
	switch key {
	case "+", "=":
		c.zoomAboutLocked(c.size.Center(), c.t.Scale*(1+keyZoomStep))
	case "-":
		c.zoomAboutLocked(c.size.Center(), c.t.Scale/(1+keyZoomStep))
	case "up":
		c.t.PanY += keyPanStep / c.t.Scale
	case "down":
		c.t.PanY -= keyPanStep / c.t.Scale
	case "left":
		c.t.PanX += keyPanStep / c.t.Scale
	case "right":
		c.t.PanX -= keyPanStep / c.t.Scale
	case "0":
		c.t = Identity
	}
}

// =============================================================================
// Programmatic Operations
// =============================================================================

// ZoomIn zooms one programmatic step about the viewport center. Works even
// when interaction is disabled.
func (c *Controller) ZoomIn() {
	c.mu.Lock()
	defer c.unlockAndPush()
	c.zoomAboutLocked(c.size.Center(), c.t.Scale*buttonZoomFactor)
}

// ZoomOut zooms out one programmatic step about the viewport center.
func (c *Controller) ZoomOut() {
	c.mu.Lock()
	defer c.unlockAndPush()
	c.zoomAboutLocked(c.size.Center(), c.t.Scale/buttonZoomFactor)
}

// Reset restores the identity transform (scale 1, pan (0,0)).
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.unlockAndPush()
	c.t = Identity
}

// CenterOn pans so the given layout point lands on the viewport center at the
// current scale, used for "recenter on hero node" commands.
func (c *Controller) CenterOn(p Point) {
	c.mu.Lock()
	defer c.unlockAndPush()
	center := c.size.Center()
	c.t.PanX = center.X - p.X
	c.t.PanY = center.Y - p.Y
}

// =============================================================================
// Internals
// =============================================================================

// zoomAboutLocked sets the scale, clamped to [MinScale, MaxScale], adjusting
// pan so the layout point under the screen anchor stays fixed:
//
//	pan' = pan + (anchor − center) × (1/scale' − 1/scale)
func (c *Controller) zoomAboutLocked(anchor Point, next float64) {
	next = math.Min(MaxScale, math.Max(MinScale, next))
	if next == c.t.Scale {
		return
	}
	center := c.size.Center()
	inv := 1/next - 1/c.t.Scale
	c.t.PanX += (anchor.X - center.X) * inv
	c.t.PanY += (anchor.Y - center.Y) * inv
	c.t.Scale = next
}

func (c *Controller) gestureActiveLocked() bool {
	return c.dragging || c.pinch != nil
}

// unlockAndPush publishes the current transform to all layers after releasing
// the lock. Every mutator defers this, so raster and overlay always observe
// the same values, in the same order.
func (c *Controller) unlockAndPush() {
	t := c.t
	eased := !c.gestureActiveLocked()
	layers := make([]Layer, len(c.layers))
	copy(layers, c.layers)
	c.mu.Unlock()

	for _, l := range layers {
		l.ApplyTransform(t, eased)
	}
}

// push re-publishes the current transform outside a mutator.
func (c *Controller) push() {
	c.mu.Lock()
	c.unlockAndPush()
}
