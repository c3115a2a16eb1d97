// Package nodelink renders a combined concept graph as a node-link diagram.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Layout: nodelink.LayoutRows})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Nodes are pinned at the coordinates computed by the layout package, so the
// picture matches what the browser viewer draws. [LayoutRows] uses the row
// layout (SX, SY); [LayoutRings] uses the ring fallback (RX, RY).
//
// Links whose endpoints belong to different courses are drawn dashed.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering with the neato engine, which honors pinned positions. The DOT
// output of [ToDOT] can also be fed to an external `neato -n2` binary.
package nodelink
