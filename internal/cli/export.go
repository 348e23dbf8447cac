package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linguamesh/constellation/pkg/graph"
	"github.com/linguamesh/constellation/pkg/graph/layout"
	"github.com/linguamesh/constellation/pkg/pipeline"
	"github.com/linguamesh/constellation/pkg/render/nodelink"
)

const (
	formatDOT   = "dot"
	formatSVG   = "svg"
	formatJSON  = "json"
	defaultSize = 800.0 // square canvas for exports
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output         string // output file path
	format         string // "dot", "svg", or "json"
	tier           string // learner tier capping the layout boundary
	revealed       string // comma-separated node IDs, or "all"
	detailed       bool   // include tier and gloss in node labels
	hideUnrevealed bool   // drop unrevealed nodes from the export
	noCache        bool   // disable the pipeline cache
}

// newExportCmd creates the export command for emitting the constellation as
// Graphviz DOT, SVG, or positioned graph JSON for external tooling.
func newExportCmd() *cobra.Command {
	opts := exportOpts{format: formatSVG, tier: "white"}

	cmd := &cobra.Command{
		Use:   "export [course-id]",
		Short: "Export a course constellation as DOT, SVG, or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateExportFormat(opts.format); err != nil {
				return err
			}
			return runExport(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <course-id>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot, json")
	cmd.Flags().StringVar(&opts.tier, "tier", opts.tier, "learner tier: white, yellow, orange, green, blue, brown, black")
	cmd.Flags().StringVar(&opts.revealed, "revealed", "", "comma-separated node IDs to reveal, or 'all'")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include tier and gloss in node labels")
	cmd.Flags().BoolVar(&opts.hideUnrevealed, "hide-unrevealed", false, "drop unrevealed nodes from the export")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the script and layout caches")

	return cmd
}

// validFormats is the set of supported export formats.
var validFormats = map[string]bool{formatDOT: true, formatSVG: true, formatJSON: true}

// validateExportFormat checks that the requested format is supported.
func validateExportFormat(f string) error {
	if !validFormats[f] {
		return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'json')", f)
	}
	return nil
}

// runExport lays out the course and writes the requested representation.
func runExport(ctx context.Context, courseID string, opts *exportOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

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

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		CourseID:     courseID,
		Canvas:       layout.Size{Width: defaultSize, Height: defaultSize},
		BoundaryTier: tier,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d nodes", result.Stats.NodeCount))

	revealed := revealedSet(result.Graph, opts.revealed)

	var data []byte
	switch opts.format {
	case formatDOT:
		data = []byte(nodelink.ToDOT(result.Graph, revealed, nodelink.Options{
			Detailed:       opts.detailed,
			HideUnrevealed: opts.hideUnrevealed,
		}))
	case formatSVG:
		dot := nodelink.ToDOT(result.Graph, revealed, nodelink.Options{
			Detailed:       opts.detailed,
			HideUnrevealed: opts.hideUnrevealed,
		})
		data, err = nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return err
		}
	case formatJSON:
		data, err = graph.MarshalGraph(result.Graph)
		if err != nil {
			return err
		}
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = courseID + "." + opts.format
	} else {
		outputPath = baseName(outputPath) + "." + opts.format
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}

	printSuccess("Exported %s", courseID)
	printFile(outputPath)
	return nil
}

// revealedSet expands the --revealed flag against the laid-out graph.
func revealedSet(g graph.Graph, flag string) map[string]bool {
	ids, all := parseRevealed(flag)
	set := make(map[string]bool, len(ids))
	if all {
		for _, n := range g.Nodes {
			set[n.ID] = true
		}
		return set
	}
	for _, id := range ids {
		set[id] = true
	}
	return set
}
