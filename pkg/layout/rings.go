package layout

import (
	"math"

	"github.com/conceptmap/conceptmerge/pkg/graph"
)

const (
	ringRadiusRatio = 0.38
	miniRadiusScale = 210.0
	miniRadiusMin   = 18.0
	miniRadiusMax   = 55.0
)

// Rings lays modules out on a circle, each module a small ring of concepts.
type Rings struct {
	Canvas Canvas
}

// MiniRadius returns the radius of a module ring holding count concepts.
func MiniRadius(count int) float64 {
	r := miniRadiusScale / math.Sqrt(float64(count+1))
	return math.Max(miniRadiusMin, math.Min(miniRadiusMax, r))
}

// Apply sets RX/RY on every node.
func (r Rings) Apply(nodes []*graph.Node) {
	modules := GroupByModule(nodes)
	if len(modules) == 0 {
		return
	}
	cx, cy := r.Canvas.Width/2, r.Canvas.Height/2
	bigR := math.Min(r.Canvas.Width, r.Canvas.Height) * ringRadiusRatio

	for mi, m := range modules {
		a0 := 2*math.Pi*float64(mi)/float64(len(modules)) - math.Pi/2
		mx := cx + bigR*math.Cos(a0)
		my := cy + bigR*math.Sin(a0)
		miniR := MiniRadius(len(m.Nodes))
		for i, n := range m.Nodes {
			a := 2 * math.Pi * float64(i) / float64(len(m.Nodes))
			n.RX = mx + miniR*math.Cos(a)
			n.RY = my + miniR*math.Sin(a)
		}
	}
}
