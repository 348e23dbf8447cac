package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/linguamesh/constellation/pkg/graph"
)

// Options configures node-link diagram generation.
type Options struct {
	// Detailed includes tier, gloss, and position in node labels.
	// When false, only the display text (or id) is shown.
	Detailed bool

	// HideUnrevealed omits unrevealed nodes entirely instead of drawing
	// them as dashed ghosts.
	HideUnrevealed bool
}

// tierFill maps tiers to DOT fill colors, light to dark in acquisition
// order. Dark fills switch the font to white.
var tierFill = [graph.TierCount]string{
	"#f5f5f5", // white
	"#fff3b0", // yellow
	"#ffd29d", // orange
	"#c9e4ca", // green
	"#bcd4f5", // blue
	"#d7b89c", // brown
	"#4a4a4a", // black
}

// ToDOT converts a graph to Graphviz DOT. Revealed nodes are solid boxes
// filled by tier color; unrevealed nodes are dashed grey ghosts (or omitted
// when opts.HideUnrevealed is set). Edge pen width follows connection
// strength so strong associations stand out in the diagram.
func ToDOT(g graph.Graph, revealed map[string]bool, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph constellation {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [color=\"#8899bb\"];\n")
	buf.WriteString("\n")

	kept := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if !revealed[n.ID] && opts.HideUnrevealed {
			continue
		}
		kept[n.ID] = true
		attrs := nodeAttrs(n, revealed[n.ID], opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if !kept[e.Source] || !kept[e.Target] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q [penwidth=%.2f];\n", e.Source, e.Target, penWidth(float64(e.Strength)))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n graph.Node, revealed, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, detailed))}

	if !revealed {
		return append(attrs,
			"style=\"rounded,dashed\"",
			"color=\"#999999\"",
			"fontcolor=\"#999999\"")
	}

	fill := tierFill[0]
	if n.Tier.Valid() {
		fill = tierFill[n.Tier]
	}
	attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	if n.Tier >= graph.TierBlack {
		attrs = append(attrs, "fontcolor=white")
	}
	// Pin to the computed layout position so the diagram matches the
	// constellation's geometry. neato units are inches.
	attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.X/72, -n.Y/72))
	return attrs
}

func nodeLabel(n graph.Node, detailed bool) string {
	text := n.Text
	if text == "" {
		text = n.ID
	}
	if !detailed {
		return text
	}

	parts := []string{fmt.Sprintf("tier: %s", n.Tier)}
	if n.Gloss != "" {
		parts = append(parts, fmt.Sprintf("gloss: %s", n.Gloss))
	}
	parts = append(parts, fmt.Sprintf("at: %.0f,%.0f", n.X, n.Y))
	return text + "\n" + strings.Join(parts, "\n")
}

// penWidth maps connection strength to a stroke width, capped so hub edges
// do not dominate the diagram.
func penWidth(strength float64) float64 {
	w := 0.5 + strength*0.3
	if w > 3 {
		w = 3
	}
	return w
}

// RenderSVG renders DOT source to SVG using in-process Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element to a zero-origin viewBox
// with explicit pixel dimensions, which embeds cleanly in web clients.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
