package hydro

import (
	"math"

	"github.com/voidshard/landgraph/internal/mesh"
)

// maxRiverDegree caps how "wide" a river gets
const maxRiverDegree = 5

// riverWalk accumulates flux down the drainage forest (lakes drain out of
// their outlet) & marks cells carrying enough of it.
//
// Cells are ordered with kahn's algorithm so every cell passes its flux on
// once all of its upstream has arrived; cells caught in a cycle pass
// nothing on.
type riverWalk struct {
	flow      []int
	indeg     []int
	order     queue
	seeds     queue
	threshold float64
}

func newRiverWalk(n int, p Params) *riverWalk {
	threshold := p.RiverThreshold
	if threshold <= 0 {
		threshold = math.Max(3, float64(n)/50)
	}
	return &riverWalk{flow: fill(n, -1), indeg: make([]int, n), threshold: threshold}
}

// route sets where cell i drains to.
func (r *riverWalk) route(s *State, i int) {
	if s.IsSea(i) {
		return
	}
	r.flow[i] = s.Downhill[i]
	if id := s.LakeID[i]; id >= 0 && r.flow[i] < 0 {
		r.flow[i] = s.Lakes[id].Outlet
	}
}

// count tallies inflows & gives land cells their own unit of flux.
func (r *riverWalk) count(s *State, i int) {
	if f := r.flow[i]; f >= 0 {
		r.indeg[f]++
	}
	if !s.IsSea(i) {
		s.Flux[i] = 1
	}
}

// head queues cells nothing drains into.
func (r *riverWalk) head(i int) {
	if r.indeg[i] == 0 {
		r.order.push(i)
	}
}

// accumulate passes flux downstream.
func (r *riverWalk) accumulate(s *State, budget *int) bool {
	return r.order.drain(budget, func(c int) {
		f := r.flow[c]
		if f < 0 {
			return
		}
		s.Flux[f] += s.Flux[c]
		r.indeg[f]--
		if r.indeg[f] == 0 {
			r.order.push(f)
		}
	})
}

// mark gives cell i a river degree if it carries enough flux.
func (r *riverWalk) mark(s *State, i int) {
	if s.IsWater(i) || s.Flux[i] < r.threshold {
		return
	}
	deg := 1 + int(math.Log2(s.Flux[i]/r.threshold))
	if deg > maxRiverDegree {
		deg = maxRiverDegree
	}
	s.RiverDegree[i] = deg
	s.RiverStep[i] = 0
	r.seeds.push(i)
}

// spread counts steps out from river cells over land.
func (r *riverWalk) spread(m *mesh.Mesh, s *State, budget *int) bool {
	return r.seeds.drain(budget, func(c int) {
		for _, nb := range m.Neighbors(c) {
			if !s.IsWater(nb) && s.RiverStep[nb] == Unreached {
				s.RiverStep[nb] = s.RiverStep[c] + 1
				r.seeds.push(nb)
			}
		}
	})
}
