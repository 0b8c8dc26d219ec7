package graph

import (
	"github.com/voidshard/landgraph/internal/hydro"
)

// SeaCosts weights traversal of the sea graph.
type SeaCosts struct {
	// NearshorePenalty inflates edges by penalty / hops-to-land, so routes
	// prefer open water but may still hug the coast.
	NearshorePenalty float64 `yaml:"nearshorePenalty" json:"nearshorePenalty"`
}

// DefaultSeaCosts returns the standard sea lane cost model.
func DefaultSeaCosts() SeaCosts {
	return SeaCosts{NearshorePenalty: 1.5}
}

// BuildSea returns the graph over water cells.
func BuildSea(in Inputs, c SeaCosts) *Graph {
	g := newGraph(Sea, in.Mesh, in.Stamp())
	if !in.Ready() {
		return g
	}

	s := in.Hydro
	m := in.Mesh
	proximity := func(i int) float64 {
		step := s.CoastStep[i]
		if step >= 0 || step == hydro.UnreachedWater {
			return 0
		}
		return c.NearshorePenalty / float64(-step)
	}

	g.build(s.IsWater, func(u, v int) float64 {
		near := proximity(u)
		if p := proximity(v); p > near {
			near = p
		}
		return m.Dist(u, v) * (1 + near)
	})
	return g
}
