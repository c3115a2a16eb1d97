// Package layout assigns deterministic 2D coordinates to combined-graph nodes.
//
// Two independent strategies are provided:
//
//   - [Rows] stacks one horizontal row per module, lowest module at the
//     bottom, concepts spread evenly left to right by base ID. It sets the
//     logical pair (SX, SY) and the working pair (X, Y).
//   - [Rings] places module centers on a large circle, first module at the
//     top and the rest clockwise, with each module's concepts on a small
//     circle around its center. It sets (RX, RY).
//
// Both are pure functions of module numbers, base IDs and module sizes, so
// the same input always yields the same coordinates. Neither reads the
// other's output.
package layout

import (
	"cmp"
	"slices"

	"github.com/conceptmap/conceptmerge/pkg/graph"
)

// Canvas is the logical drawing area, in screen coordinates (y grows down).
type Canvas struct {
	Width  float64 `toml:"width" hcl:"width,optional" json:"width"`
	Height float64 `toml:"height" hcl:"height,optional" json:"height"`
	Left   float64 `toml:"left" hcl:"left,optional" json:"left"`
	Right  float64 `toml:"right" hcl:"right,optional" json:"right"`
	Top    float64 `toml:"top" hcl:"top,optional" json:"top"`
	Bottom float64 `toml:"bottom" hcl:"bottom,optional" json:"bottom"`
}

// DefaultCanvas returns the 1400x1000 canvas with 120 horizontal and 90
// vertical margins.
func DefaultCanvas() Canvas {
	return Canvas{Width: 1400, Height: 1000, Left: 120, Right: 120, Top: 90, Bottom: 90}
}

// WithDefaults returns c with every zero field taken from DefaultCanvas.
func (c Canvas) WithDefaults() Canvas {
	d := DefaultCanvas()
	for _, f := range []struct{ v, def *float64 }{
		{&c.Width, &d.Width}, {&c.Height, &d.Height},
		{&c.Left, &d.Left}, {&c.Right, &d.Right},
		{&c.Top, &d.Top}, {&c.Bottom, &d.Bottom},
	} {
		if *f.v == 0 {
			*f.v = *f.def
		}
	}
	return c
}

// UsableWidth is the width between the left and right margins.
func (c Canvas) UsableWidth() float64 { return c.Width - c.Left - c.Right }

// UsableHeight is the height between the top and bottom margins.
func (c Canvas) UsableHeight() float64 { return c.Height - c.Top - c.Bottom }

// Strategy assigns one coordinate pair to every node.
type Strategy interface {
	Apply(nodes []*graph.Node)
}

// Apply runs each strategy over nodes in order.
func Apply(nodes []*graph.Node, strategies ...Strategy) {
	for _, s := range strategies {
		s.Apply(nodes)
	}
}

// Module is one module's nodes, sorted by base ID.
type Module struct {
	Num   int
	Nodes []*graph.Node
}

// GroupByModule groups nodes by ModuleNum. Modules are returned in
// ascending order; nodes within a module are sorted by BaseID, with ties
// kept in input order.
func GroupByModule(nodes []*graph.Node) []Module {
	byNum := make(map[int][]*graph.Node)
	for _, n := range nodes {
		byNum[n.ModuleNum] = append(byNum[n.ModuleNum], n)
	}

	modules := make([]Module, 0, len(byNum))
	for num, ns := range byNum {
		slices.SortStableFunc(ns, func(a, b *graph.Node) int {
			return cmp.Compare(a.BaseID, b.BaseID)
		})
		modules = append(modules, Module{Num: num, Nodes: ns})
	}
	slices.SortFunc(modules, func(a, b Module) int { return cmp.Compare(a.Num, b.Num) })
	return modules
}
