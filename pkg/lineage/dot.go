package lineage

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Options configures inheritance diagram rendering.
type Options struct {
	// Detailed includes version, depth, and template markers in node
	// labels. When false, only the entry name is shown.
	Detailed bool
}

// ToDOT converts the inheritance graph to Graphviz DOT format. Roots render
// at the top with extends arrows pointing upward from child to parent.
// Templates are drawn with dashed grey boxes, missing parents as red ghosts.
// The resulting DOT string can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(g *Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph extends {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, name := range g.Names() {
		node, _ := g.Node(name)
		label := fmtLabel(node, opts.Detailed)
		attrs := fmtAttrs(node, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", node.Name, strings.Join(attrs, ", "))
	}

	missing := slices.Compact(slices.Sorted(maps.Values(g.MissingParents())))
	for _, parent := range missing {
		fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,dashed\", color=red, fontcolor=red];\n",
			parent, parent+"\n(missing)")
	}

	buf.WriteString("\n")
	for _, name := range g.Names() {
		node, _ := g.Node(name)
		if node.Extends == "" {
			continue
		}
		target := node.Extends
		if p, ok := g.Node(node.Extends); ok {
			target = p.Name
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", node.Name, target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *Node, detailed bool) string {
	if !detailed {
		return n.Name
	}

	var parts []string
	if n.Version != "" {
		parts = append(parts, "version: "+n.Version)
	}
	if n.Depth >= 0 {
		parts = append(parts, fmt.Sprintf("depth: %d", n.Depth))
	}
	if n.Template {
		parts = append(parts, "template")
	}
	if len(parts) == 0 {
		return n.Name
	}
	return n.Name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Template {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG, normalizeViewBox)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG, nil)
}

func render(dot string, format graphviz.Format, post func([]byte) []byte) ([]byte, error) {
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
	out := buf.Bytes()
	if post != nil {
		out = post(out)
	}
	return out, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the diagram embeds cleanly:
// a zero-origin viewBox with explicit pixel dimensions.
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
