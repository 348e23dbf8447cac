package scene

import (
	"context"
	"fmt"
	"image"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"

	"github.com/linguamesh/constellation/pkg/animate"
	apperrors "github.com/linguamesh/constellation/pkg/errors"
	"github.com/linguamesh/constellation/pkg/graph"
	"github.com/linguamesh/constellation/pkg/graph/layout"
	"github.com/linguamesh/constellation/pkg/observability"
	"github.com/linguamesh/constellation/pkg/overlay"
	"github.com/linguamesh/constellation/pkg/playback"
	"github.com/linguamesh/constellation/pkg/render"
	"github.com/linguamesh/constellation/pkg/script"
	"github.com/linguamesh/constellation/pkg/store"
	"github.com/linguamesh/constellation/pkg/viewport"
)

// Config assembles a Scene. Display and PixelRatio describe the output
// surface; Provider supplies course scripts; Audio is optional (a nil source
// animates paths at the minimum step pace and disables PlayAll).
type Config struct {
	Display    viewport.Size
	PixelRatio float64
	Provider   script.Provider
	Audio      playback.AudioSource
	Render     render.Options
	Logger     *log.Logger
}

// Scene owns one constellation: the store, the raster pipeline, the viewport
// with its layers, and path animation. It is the single composition point;
// the CLI, TUI, and HTTP server all drive a Scene rather than wiring the
// packages themselves.
//
// The raster surface repaints only when graph data changes (load, reveal).
// Pan and zoom never repaint it: Frame composites the cached raster under the
// current transform, then strokes the sparse overlay rings on top. Both the
// raster layer and the overlay receive every transform from the same
// controller push, so they can never drift apart.
type Scene struct {
	logger   *log.Logger
	store    *store.Store
	painter  *render.Painter
	viewport *viewport.Controller
	overlay  *overlay.Overlay
	animator *animate.Animator
	provider script.Provider
	seq      *playback.Sequencer

	dataDirty atomic.Bool

	mu        sync.Mutex
	base      *render.Surface
	size      viewport.Size
	ratio     float64
	transform viewport.Transform
	opts      render.Options
	courseID  string
	phrases   []script.Phrase
	matches   []string

	subsMu sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// rasterLayer adapts the scene to viewport.Layer. A transform change only
// updates the composite transform; it never marks the raster dirty.
type rasterLayer struct{ s *Scene }

func (l *rasterLayer) ApplyTransform(t viewport.Transform, eased bool) {
	l.s.mu.Lock()
	l.s.transform = t
	l.s.mu.Unlock()
}

// New assembles a scene. The overlay's hit geometry is derived from the
// render options so hit circles always wrap the painted glyphs.
func New(cfg Config) (*Scene, error) {
	if err := apperrors.ValidateCanvas(cfg.Display.Width, cfg.Display.Height); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	if cfg.PixelRatio <= 0 {
		cfg.PixelRatio = 1
	}

	base, err := render.NewSurface(int(cfg.Display.Width), int(cfg.Display.Height), cfg.PixelRatio)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeRenderSurface, err, "allocate raster surface")
	}

	radius := cfg.Render.NodeRadius
	if radius <= 0 {
		radius = render.DefaultNodeRadius
	}
	compact := cfg.Render.CompactScale
	if compact <= 0 {
		compact = render.DefaultCompactScale
	}

	s := &Scene{
		logger:    logger,
		store:     store.New(logger),
		painter:   render.NewPainter(logger),
		viewport:  viewport.NewController(cfg.Display, logger),
		overlay:   overlay.New(cfg.Display, radius, compact, logger),
		provider:  cfg.Provider,
		base:      base,
		size:      cfg.Display,
		ratio:     cfg.PixelRatio,
		transform: viewport.Identity,
		opts:      cfg.Render,
		subs:      make(map[int]func(Event)),
	}
	s.animator = animate.New(s.store.Advance, logger)
	if cfg.Audio != nil {
		s.seq = playback.New(cfg.Audio, logger)
	}

	// The raster layer and overlay share one controller, which is the
	// transform-equality guarantee.
	s.viewport.AddLayer(&rasterLayer{s: s})
	s.viewport.AddLayer(s.overlay)

	// Any committed store change invalidates the cached raster.
	s.store.Subscribe(func(store.Event) { s.dataDirty.Store(true) })
	s.dataDirty.Store(true)
	return s, nil
}

// Store exposes the underlying graph store for read access and event
// subscription.
func (s *Scene) Store() *store.Store { return s.store }

// Viewport exposes the controller so hosts can forward gestures directly.
func (s *Scene) Viewport() *viewport.Controller { return s.viewport }

// =============================================================================
// Loading and reveal
// =============================================================================

// LoadCourse fetches a course script, lays it out for the current display
// size, and installs the result. The boundary tier caps the layout boundary;
// pass the learner's current tier.
func (s *Scene) LoadCourse(ctx context.Context, courseID string, boundaryTier graph.Tier) error {
	if s.provider == nil {
		return apperrors.New(apperrors.ErrCodeInternal, "no script provider configured")
	}
	if err := apperrors.ValidateCourseID(courseID); err != nil {
		return err
	}

	sc, err := s.provider.Script(ctx, courseID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeCourseNotFound, err, "load course %s", courseID)
	}
	return s.LoadScript(ctx, sc, boundaryTier)
}

// LoadScript lays out and installs an already-fetched script.
func (s *Scene) LoadScript(ctx context.Context, sc script.Script, boundaryTier graph.Tier) error {
	s.mu.Lock()
	canvas := layout.Size{Width: s.size.Width, Height: s.size.Height}
	s.mu.Unlock()

	hooks := observability.Scene()
	hooks.OnLayoutStart(ctx, sc.CourseID, len(sc.Rounds))
	start := time.Now()
	err := s.store.Load(sc.Rounds, canvas, sc.Connections, boundaryTier)
	hooks.OnLayoutComplete(ctx, sc.CourseID, len(s.store.Nodes()), time.Since(start), err)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidScript, err, "layout course %s", sc.CourseID)
	}

	s.finishLoad(sc)
	return nil
}

// InstallGraph installs an already-positioned graph (typically from the
// layout cache) together with the script it was built from, skipping the
// layout pass.
func (s *Scene) InstallGraph(sc script.Script, g graph.Graph) {
	s.store.LoadGraph(g)
	s.finishLoad(sc)
}

// finishLoad resets view state around a freshly installed graph and
// publishes CourseLoaded.
func (s *Scene) finishLoad(sc script.Script) {
	nodes := s.store.Nodes()
	s.overlay.SetNodes(nodes)
	s.animator.Stop()
	s.viewport.Reset()

	s.mu.Lock()
	s.courseID = sc.CourseID
	s.phrases = append([]script.Phrase(nil), sc.Phrases...)
	s.matches = nil
	s.mu.Unlock()

	s.publish(CourseLoaded{CourseID: sc.CourseID, NodeCount: len(nodes)})
}

// SetRevealed replaces the revealed set with the given node ids.
func (s *Scene) SetRevealed(ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	s.store.SetRevealed(set)
}

// =============================================================================
// Interaction
// =============================================================================

// Tap routes a screen-space tap. A node hit selects the node; a background
// tap clears the selection. The corresponding event is published either way.
func (s *Scene) Tap(p viewport.Point) Event {
	n, ok := s.overlay.Tap(p)
	if !ok {
		s.store.Select("")
		ev := BackgroundTapped{}
		s.publish(ev)
		return ev
	}
	s.store.Select(n.ID)
	ev := NodeSelected{Node: n}
	s.publish(ev)
	return ev
}

// CenterOnSelected eases the viewport so the selected node lands at the
// display center. No-op without a selection.
func (s *Scene) CenterOnSelected() {
	n, ok := s.store.Selected()
	if !ok {
		return
	}
	s.viewport.CenterOn(viewport.Point{X: n.X, Y: n.Y})
}

// Search marks nodes whose id, text, or gloss contains the query
// (case-insensitive) and returns them. An empty query clears the marks.
func (s *Scene) Search(query string) []graph.Node {
	query = strings.ToLower(strings.TrimSpace(query))

	var found []graph.Node
	var ids []string
	if query != "" {
		for _, n := range s.store.Nodes() {
			if strings.Contains(strings.ToLower(n.ID), query) ||
				strings.Contains(strings.ToLower(n.Text), query) ||
				strings.Contains(strings.ToLower(n.Gloss), query) {
				found = append(found, n)
				ids = append(ids, n.ID)
			}
		}
	}

	s.mu.Lock()
	s.matches = ids
	s.mu.Unlock()
	return found
}

// =============================================================================
// Playback
// =============================================================================

// PlayPhrase highlights a phrase's node path and animates the cursor paced
// to the clip duration. Without an audio source the animation runs at the
// minimum step pace and no clip plays.
func (s *Scene) PlayPhrase(ctx context.Context, phraseID string) error {
	p, ok := s.phrase(phraseID)
	if !ok {
		return apperrors.New(apperrors.ErrCodeNotFound, "unknown phrase %q", phraseID)
	}

	if s.seq == nil {
		s.startPath(ctx, p, 0)
		return nil
	}
	return s.seq.PlayAll(ctx, []script.Phrase{p}, func(p script.Phrase, d time.Duration) {
		s.startPath(ctx, p, d)
	})
}

// PlayAll plays every phrase of the loaded course in order, animating each
// phrase's path as its clip starts. Requires an audio source.
func (s *Scene) PlayAll(ctx context.Context) error {
	if s.seq == nil {
		return apperrors.New(apperrors.ErrCodeAudioFailed, "no audio source configured")
	}
	s.mu.Lock()
	phrases := append([]script.Phrase(nil), s.phrases...)
	s.mu.Unlock()

	return s.seq.PlayAll(ctx, phrases, func(p script.Phrase, d time.Duration) {
		s.startPath(ctx, p, d)
	})
}

// StopPlayback halts audio and animation and clears the highlight path.
func (s *Scene) StopPlayback(ctx context.Context) {
	if s.seq != nil {
		s.seq.Stop()
	}
	s.animator.Stop()
	observability.Scene().OnAnimationStopped(ctx, s.animator.Generation())
	s.store.ClearHighlight()
}

// startPath installs the highlight path and kicks off the timed reveal.
func (s *Scene) startPath(ctx context.Context, p script.Phrase, d time.Duration) {
	s.store.SetHighlightPath(p.NodeIDs)
	observability.Scene().OnAnimationStart(ctx, len(p.NodeIDs), d)
	s.animator.Start(len(p.NodeIDs), d)
	s.publish(PhraseStarted{Phrase: p, Duration: d})
}

func (s *Scene) phrase(id string) (script.Phrase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.phrases {
		if p.ID == id {
			return p, true
		}
	}
	return script.Phrase{}, false
}

// =============================================================================
// Frame production
// =============================================================================

// Frame produces the current composite frame: the cached raster under the
// viewport transform, overlay rings on top. The raster repaints only when
// graph data changed since the last frame.
func (s *Scene) Frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dataDirty.Swap(false) {
		if err := s.repaintLocked(ctx); err != nil {
			s.dataDirty.Store(true)
			return nil, err
		}
	}

	pw := int(s.size.Width * s.ratio)
	ph := int(s.size.Height * s.ratio)
	comp := gg.NewContext(pw, ph)
	comp.Scale(s.ratio, s.ratio)

	bg := s.opts.Background
	if bg == nil {
		bg = render.DefaultBackground()
	}
	comp.SetColor(bg)
	comp.Clear()

	t := s.transform
	cx, cy := s.size.Width/2, s.size.Height/2
	comp.Push()
	comp.Translate(cx*(1-t.Scale)+t.Scale*t.PanX, cy*(1-t.Scale)+t.Scale*t.PanY)
	comp.Scale(t.Scale, t.Scale)

	// The base image is at pixel resolution; undo the ratio for drawing in
	// display units.
	comp.Push()
	comp.Scale(1/s.ratio, 1/s.ratio)
	comp.DrawImage(s.base.Image(), 0, 0)
	comp.Pop()

	s.overlay.DrawRings(comp, s.ringsLocked())
	comp.Pop()

	return comp.Image(), nil
}

// EncodeFrame writes the current frame as PNG.
func (s *Scene) EncodeFrame(ctx context.Context, w io.Writer) error {
	img, err := s.Frame(ctx)
	if err != nil {
		return err
	}
	comp, ok := img.(*image.RGBA)
	if !ok {
		return fmt.Errorf("unexpected frame image type %T", img)
	}
	return gg.NewContextForRGBA(comp).EncodePNG(w)
}

// repaintLocked redraws the base raster from the current store snapshot.
func (s *Scene) repaintLocked(ctx context.Context) error {
	nodes := s.store.Nodes()
	edges := s.store.Edges()
	hooks := observability.Scene()
	hooks.OnPaintStart(ctx, len(nodes), len(edges))

	start := time.Now()
	stats, err := s.painter.Paint(s.base, nodes, edges, s.store.Revealed(), s.opts)
	hooks.OnPaintComplete(ctx, stats.FullGlyphs, stats.Ghosts, time.Since(start), err)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeRenderSurface, err, "repaint")
	}
	return nil
}

// ringsLocked assembles the sparse ring set from store state.
func (s *Scene) ringsLocked() overlay.Rings {
	rings := overlay.Rings{Active: -1, Matches: s.matches}
	if n, ok := s.store.Selected(); ok {
		rings.Selected = n.ID
	}
	if hp := s.store.Highlight(); hp != nil {
		rings.Path = hp.IDs
		rings.Active = hp.Active
	}
	return rings
}

// =============================================================================
// Geometry
// =============================================================================

// Resize reallocates the raster surface for a new display size and resizes
// the viewport and overlay. The layout itself is not recomputed; pan and
// zoom absorb the difference.
func (s *Scene) Resize(size viewport.Size) error {
	if err := apperrors.ValidateCanvas(size.Width, size.Height); err != nil {
		return err
	}

	s.mu.Lock()
	base, err := render.NewSurface(int(size.Width), int(size.Height), s.ratio)
	if err != nil {
		s.mu.Unlock()
		return apperrors.Wrap(apperrors.ErrCodeRenderSurface, err, "reallocate raster surface")
	}
	s.base = base
	s.size = size
	s.mu.Unlock()

	s.viewport.Resize(size)
	s.overlay.Resize(size)
	s.dataDirty.Store(true)
	return nil
}

// CourseID returns the loaded course id, or "" before any load.
func (s *Scene) CourseID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.courseID
}

// Phrases returns the loaded course's phrases.
func (s *Scene) Phrases() []script.Phrase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]script.Phrase(nil), s.phrases...)
}

// =============================================================================
// Events
// =============================================================================

// Subscribe registers fn for scene events. The returned cancel removes the
// subscription. Callbacks run inline on the publishing goroutine.
func (s *Scene) Subscribe(fn func(Event)) (cancel func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Scene) publish(ev Event) {
	s.subsMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
