package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/craftgraph/pkg/cache"
	"github.com/matzehuels/craftgraph/pkg/dag"
	"github.com/matzehuels/craftgraph/pkg/recipe"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds node IDs and depths to labels.
	// When false, labels show the item, rate and machines only.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(g *dag.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		d, _ := g.Depth(n.ID())
		attrs := fmtAttrs(n, fmtLabel(n, d, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID().String(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for d := 0; d <= g.MaxDepth(); d++ {
		var ids []string
		for _, n := range g.NodesAtDepth(d) {
			ids = append(ids, strconv.Quote(n.ID().String()))
		}
		if len(ids) > 0 {
			fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(ids, "; "))
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From.String(), e.To.String())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n dag.Node, depth int, detailed bool) string {
	var lines []string
	switch n := n.(type) {
	case *dag.Root:
		lines = append(lines,
			n.Recipe.PrimaryOutput().Item.String(),
			fmt.Sprintf("%s/s", fmtRate(n.Rate)),
			fmt.Sprintf("%s× %s", fmtRate(n.Machines()), machineName(n.Machine)))
	case *dag.Intermediate:
		lines = append(lines,
			n.Item.String(),
			fmt.Sprintf("%s/s via %s", fmtRate(n.Rate), n.Recipe.Name),
			fmt.Sprintf("%s× %s", fmtRate(n.Machines()), machineName(n.Machine)))
	case *dag.Terminal:
		lines = append(lines, n.Item.String(), fmt.Sprintf("%s/s", fmtRate(n.Rate)))
	}
	if detailed {
		lines = append(lines, fmt.Sprintf("#%d depth %d", n.ID(), depth))
	}
	return strings.Join(lines, "\n")
}

func machineName(m *recipe.Machine) string {
	if m == nil {
		return "machines"
	}
	return m.Name
}

func fmtAttrs(n dag.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind() {
	case dag.KindRoot:
		attrs = append(attrs, "shape=doubleoctagon", "fillcolor=\"#ffe9a8\"")
	case dag.KindTerminal:
		attrs = append(attrs, "shape=ellipse", "fillcolor=lightgrey")
	}
	return attrs
}

func fmtRate(r float64) string {
	return strconv.FormatFloat(r, 'g', 4, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	out, err := render(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// svgTTL bounds how long a cached SVG render is reused.
const svgTTL = 7 * 24 * time.Hour

// RenderSVGCached is [RenderSVG] backed by c, keyed by the DOT text.
// Cache failures fall back to rendering.
func RenderSVGCached(ctx context.Context, c cache.Cache, dot string) ([]byte, error) {
	key := cache.RenderKey("svg", dot)
	if data, hit, err := c.Get(ctx, key); err == nil && hit {
		return data, nil
	}
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	_ = c.Set(ctx, key, svg, svgTTL)
	return svg, nil
}
