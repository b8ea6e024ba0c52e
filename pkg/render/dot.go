package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/erdlayout/pkg/diagram"
	"github.com/matzehuels/erdlayout/pkg/layout"
)

// Options configures DOT export.
type Options struct {
	// Detailed adds the node id and role under each label.
	// When false, only the display label is shown.
	Detailed bool
}

// ToDOT converts a diagram to Graphviz DOT with pinned node positions.
// Edges whose endpoints are not nodes are skipped.
func ToDOT(d *diagram.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fixedsize=true, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	known := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if known[n.ID] {
			continue
		}
		known[n.ID] = true
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		if !known[e.Source] || !known[e.Target] {
			continue
		}
		if e.Kind == diagram.EdgeAttribute {
			fmt.Fprintf(&buf, "  %q -- %q [style=dashed];\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n diagram.Node, detailed bool) string {
	if !detailed {
		return n.DisplayLabel()
	}
	role := string(n.Role)
	if role == "" {
		role = "unknown"
	}
	return fmt.Sprintf("%s\n%s (%s)", n.DisplayLabel(), n.ID, role)
}

func fmtAttrs(n diagram.Node, label string) []string {
	size := layout.Footprint(n.Role)
	if size.Width == 0 {
		size = layout.Size{Width: 100, Height: 40}
	}
	cx := n.Position.X + size.Width/2
	cy := -(n.Position.Y + size.Height/2)

	return []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("shape=%s", shape(n.Role)),
		fmt.Sprintf("width=%s", inches(size.Width)),
		fmt.Sprintf("height=%s", inches(size.Height)),
		fmt.Sprintf("pos=\"%s,%s!\"", num(cx), num(cy)),
	}
}

func shape(r diagram.Role) string {
	switch r {
	case diagram.RoleEntity:
		return "box"
	case diagram.RoleRelationship:
		return "diamond"
	case diagram.RoleAttribute:
		return "ellipse"
	case diagram.RoleIsa:
		return "invtriangle"
	default:
		return "note"
	}
}

func inches(points float64) string { return num(points / 72) }

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// RenderSVG renders a DOT graph to SVG using the Graphviz neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

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

// normalizeViewBox rewrites the root svg element so the drawing scales to
// its container.
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
