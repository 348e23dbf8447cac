package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linguamesh/constellation/pkg/graph"
	"github.com/linguamesh/constellation/pkg/graph/layout"
	"github.com/linguamesh/constellation/pkg/pipeline"
	"github.com/linguamesh/constellation/pkg/render"
	"github.com/linguamesh/constellation/pkg/scene"
	"github.com/linguamesh/constellation/pkg/viewport"
)

// renderOpts holds the command-line flags for the render command.
// These options control the frame geometry, reveal state, and output path.
type renderOpts struct {
	output         string  // output PNG path
	width          float64 // frame width in display units
	height         float64 // frame height in display units
	pixelRatio     float64 // device pixel ratio (2 for retina-density output)
	tier           string  // learner tier capping the layout boundary
	revealed       string  // comma-separated node IDs, or "all"
	hideUnrevealed bool    // omit ghost dots entirely
	ghostOpacity   float64 // alpha for unrevealed ghost dots
	zoom           float64 // viewport scale applied before the frame
	noCache        bool    // disable the pipeline cache
	refresh        bool    // bypass cached entries but still write fresh ones
}

// newRenderCmd creates the render command for generating constellation frames.
// It fetches the course script, lays out the graph (cached when possible),
// and writes a composited PNG frame.
func newRenderCmd() *cobra.Command {
	opts := renderOpts{tier: "white"}

	cmd := &cobra.Command{
		Use:   "render [course-id]",
		Short: "Render a course constellation to a PNG frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <course-id>.png)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "frame width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "frame height (default from config)")
	cmd.Flags().Float64Var(&opts.pixelRatio, "pixel-ratio", 0, "device pixel ratio (default from config)")
	cmd.Flags().StringVar(&opts.tier, "tier", opts.tier, "learner tier: white, yellow, orange, green, blue, brown, black")
	cmd.Flags().StringVar(&opts.revealed, "revealed", "", "comma-separated node IDs to reveal, or 'all'")
	cmd.Flags().BoolVar(&opts.hideUnrevealed, "hide-unrevealed", false, "omit unrevealed ghost dots")
	cmd.Flags().Float64Var(&opts.ghostOpacity, "ghost-opacity", 0, "alpha for unrevealed ghost dots")
	cmd.Flags().Float64Var(&opts.zoom, "zoom", 1, "viewport scale for the frame")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the script and layout caches")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute cached stages")

	return cmd
}

// runRender executes the full render path: pipeline fetch and layout, scene
// assembly, reveal state, and PNG encode.
func runRender(ctx context.Context, courseID string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)
	applyRenderDefaults(opts, cfg)

	tier, err := graph.ParseTier(opts.tier)
	if err != nil {
		return err
	}

	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	runner, err := newRunner(cfg, provider, opts.noCache, logger)
	if err != nil {
		return err
	}

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %s...", courseID))
	spin.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		CourseID:     courseID,
		Canvas:       layout.Size{Width: opts.width, Height: opts.height},
		BoundaryTier: tier,
		Refresh:      opts.refresh,
	})
	if err != nil {
		spin.StopWithError(fmt.Sprintf("Layout failed: %v", err))
		return err
	}
	spin.Stop()
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)

	s, err := scene.New(scene.Config{
		Display:    viewport.Size{Width: opts.width, Height: opts.height},
		PixelRatio: opts.pixelRatio,
		Render: render.Options{
			HideUnrevealed: opts.hideUnrevealed,
			GhostOpacity:   opts.ghostOpacity,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	s.InstallGraph(result.Script, result.Graph)

	ids, all := parseRevealed(opts.revealed)
	if all {
		ids = make([]string, 0, len(result.Graph.Nodes))
		for _, n := range result.Graph.Nodes {
			ids = append(ids, n.ID)
		}
	}
	if len(ids) > 0 {
		s.SetRevealed(ids)
	}
	if vp := s.Viewport(); opts.zoom > 1 {
		// ZoomIn clamps at the scale ceiling, so stop once it sticks.
		for vp.Transform().Scale < opts.zoom {
			before := vp.Transform().Scale
			vp.ZoomIn()
			if vp.Transform().Scale == before {
				break
			}
		}
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = courseID + ".png"
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := s.EncodeFrame(ctx, out); err != nil {
		return err
	}

	printSuccess("Rendered %s", courseID)
	printFile(outputPath)
	printNewline()
	printNextStep("Explore interactively", "constellation explore "+courseID)
	return nil
}

// applyRenderDefaults fills zero-valued flags from the loaded config.
func applyRenderDefaults(opts *renderOpts, cfg *Config) {
	if opts.width <= 0 {
		opts.width = cfg.Render.Width
	}
	if opts.height <= 0 {
		opts.height = cfg.Render.Height
	}
	if opts.pixelRatio <= 0 {
		opts.pixelRatio = cfg.Render.PixelRatio
	}
	if opts.ghostOpacity == 0 {
		opts.ghostOpacity = cfg.Render.GhostOpacity
	}
	if !opts.hideUnrevealed {
		opts.hideUnrevealed = cfg.Render.HideUnrevealed
	}
}

// openOutput creates the output file, making parent directories as needed.
func openOutput(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != string(filepath.Separator) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}

// baseName strips a known extension from an output path.
func baseName(path string) string {
	ext := filepath.Ext(path)
	switch strings.TrimPrefix(ext, ".") {
	case "png", "svg", "dot", "json":
		return strings.TrimSuffix(path, ext)
	}
	return path
}
