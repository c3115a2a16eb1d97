package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/conceptmap/conceptmerge/pkg/graph"
	"github.com/conceptmap/conceptmerge/pkg/layout"
)

// Layout selects which coordinate pair pins the nodes.
type Layout string

// Supported layouts.
const (
	LayoutRows  Layout = "rows"
	LayoutRings Layout = "rings"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(s)); l {
	case LayoutRows, LayoutRings:
		return l, nil
	}
	return "", fmt.Errorf("invalid layout: %q (must be one of: rows, rings)", s)
}

// Options configures node-link diagram rendering.
type Options struct {
	Layout Layout

	// Canvas is used to flip screen y coordinates into Graphviz's
	// bottom-up space. Zero means layout.DefaultCanvas().
	Canvas layout.Canvas

	// Detailed adds the module title to node labels.
	Detailed bool
}

// palette colors courses in order of first appearance.
var palette = []string{"#cfe8fc", "#fde2c8", "#d9f2d0", "#eadcf8", "#fbd5d5"}

// ToDOT converts a combined graph to Graphviz DOT with pinned positions.
func ToDOT(g *graph.Combined, opts Options) string {
	canvas := opts.Canvas
	if canvas == (layout.Canvas{}) {
		canvas = layout.DefaultCanvas()
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, width=0.45, fontsize=9];\n")
	buf.WriteString("  edge [color=\"#888888\"];\n")
	buf.WriteString("\n")

	colors := courseColors(g.Nodes)
	course := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		course[n.ID] = n.Course
		x, y := position(n, opts.Layout)
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
			fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(x), fmtFloat(canvas.Height-y)),
			fmt.Sprintf("fillcolor=%q", colors[n.Course]),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Links {
		attrs := []string{}
		if len(e.Tags) > 0 {
			attrs = append(attrs, fmt.Sprintf("tooltip=%q", strings.Join(e.Tags, ", ")))
		}
		if course[e.Source] != course[e.Target] {
			attrs = append(attrs, "style=dashed", "color=\"#d9534f\"")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -- %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func position(n *graph.Node, l Layout) (float64, float64) {
	if l == LayoutRings {
		return n.RX, n.RY
	}
	return n.SX, n.SY
}

func fmtLabel(n *graph.Node, detailed bool) string {
	if !detailed {
		return n.BaseID
	}
	return n.BaseID + "\n" + n.ModuleTitle
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func courseColors(nodes []*graph.Node) map[string]string {
	var courses []string
	for _, n := range nodes {
		if !slices.Contains(courses, n.Course) {
			courses = append(courses, n.Course)
		}
	}
	colors := make(map[string]string, len(courses))
	for i, c := range courses {
		colors[c] = palette[i%len(palette)]
	}
	return colors
}

// RenderSVG renders DOT produced by [ToDOT] to SVG using the neato engine.
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
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// unitless one so browsers scale the drawing to its container.
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
