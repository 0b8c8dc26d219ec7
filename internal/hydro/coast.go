package hydro

import (
	"github.com/voidshard/landgraph/internal/mesh"
)

// coastWalk runs a bfs out from the shoreline in both directions.
type coastWalk struct {
	land  queue
	water queue
}

// seed resets cell i & queues it if it sits on the shoreline.
func (w *coastWalk) seed(m *mesh.Mesh, s *State, i int) {
	s.CoastStep[i] = Unreached
	if s.IsWater(i) {
		s.CoastStep[i] = UnreachedWater
	}
	for _, n := range m.Neighbors(i) {
		if s.IsWater(i) == s.IsWater(n) {
			continue
		}
		if s.IsWater(i) {
			s.CoastStep[i] = -1
			w.water.push(i)
		} else {
			s.CoastStep[i] = 0
			w.land.push(i)
		}
		return
	}
}

// inland steps the land side of the walk.
func (w *coastWalk) inland(m *mesh.Mesh, s *State, budget *int) bool {
	return w.land.drain(budget, func(c int) {
		for _, n := range m.Neighbors(c) {
			if !s.IsWater(n) && s.CoastStep[n] == Unreached {
				s.CoastStep[n] = s.CoastStep[c] + 1
				w.land.push(n)
			}
		}
	})
}

// offshore steps the water side of the walk.
func (w *coastWalk) offshore(m *mesh.Mesh, s *State, budget *int) bool {
	return w.water.drain(budget, func(c int) {
		for _, n := range m.Neighbors(c) {
			if s.IsWater(n) && s.CoastStep[n] == UnreachedWater {
				s.CoastStep[n] = s.CoastStep[c] - 1
				w.water.push(n)
			}
		}
	})
}
