package layout

import "github.com/conceptmap/conceptmerge/pkg/graph"

// minRows keeps row spacing finite when there is a single module.
const minRows = 2

// Rows lays modules out as horizontal rows, first module lowest.
type Rows struct {
	Canvas Canvas
}

// RowSpacing returns the vertical distance between consecutive rows for the
// given number of modules.
func (r Rows) RowSpacing(modules int) float64 {
	return r.Canvas.UsableHeight() / float64(max(minRows, modules)-1)
}

// Apply sets SX/SY and X/Y on every node.
func (r Rows) Apply(nodes []*graph.Node) {
	modules := GroupByModule(nodes)
	spacing := r.RowSpacing(len(modules))
	width := r.Canvas.UsableWidth()

	for idx, m := range modules {
		y := r.Canvas.Height - r.Canvas.Bottom - float64(idx)*spacing
		step := width / float64(len(m.Nodes)+1)
		for i, n := range m.Nodes {
			n.SX = r.Canvas.Left + float64(i+1)*step
			n.SY = y
			n.X, n.Y = n.SX, n.SY
		}
	}
}
