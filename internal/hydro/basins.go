package hydro

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/voidshard/landgraph/internal/heightfield"
	"github.com/voidshard/landgraph/internal/mesh"
)

// labeller finds connected groups of cells for which member(i) holds,
// each sorted, in order of their lowest cell id. It can be stopped &
// resumed between any two cells.
type labeller struct {
	member func(i int) bool
	label  []int // group per cell, -1 if not (yet) in one
	next   int   // next cell that may start a group
	group  queue
	out    [][]int
}

func newLabeller(n int, member func(i int) bool) *labeller {
	return &labeller{member: member, label: fill(n, -1)}
}

// step labels cells until done or budget runs out, every cell scanned or
// expanded costing one unit.
func (l *labeller) step(m *mesh.Mesh, budget *int) bool {
	for {
		id := len(l.out)
		expanded := l.group.drain(budget, func(c int) {
			for _, n := range m.Neighbors(c) {
				if l.label[n] < 0 && l.member(n) {
					l.label[n] = id
					l.group.push(n)
				}
			}
		})
		if !expanded {
			return false
		}
		if len(l.group.items) > 0 {
			sort.Ints(l.group.items)
			l.out = append(l.out, l.group.items)
			l.group = queue{}
		}

		for l.next < len(l.label) && (l.label[l.next] >= 0 || !l.member(l.next)) {
			if *budget <= 0 {
				return false
			}
			l.next++
			*budget--
		}
		if l.next >= len(l.label) {
			return true
		}
		l.label[l.next] = len(l.out)
		l.group.push(l.next)
	}
}

// suppressing returns if any island suppression is configured.
func suppressing(p Params) bool {
	return p.KeepLandmasses > 0 || p.MinLandmassSize > 0
}

// suppressIslands sinks land components that are neither among the largest
// KeepLandmasses nor at least MinLandmassSize. Heights are modified.
func suppressIslands(f *heightfield.Field, s *State, land [][]int, p Params, log *zap.Logger) {
	if !suppressing(p) || len(land) <= 1 {
		return
	}

	bySize := make([]int, len(land))
	for i := range bySize {
		bySize[i] = i
	}
	sort.SliceStable(bySize, func(a, b int) bool {
		return len(land[bySize[a]]) > len(land[bySize[b]])
	})

	sink := []int{}
	for rank, idx := range bySize {
		if rank < p.KeepLandmasses || (p.MinLandmassSize > 0 && len(land[idx]) >= p.MinLandmassSize) {
			continue
		}
		sink = append(sink, land[idx]...)
	}
	if len(sink) == 0 {
		return
	}

	f.Lower(sink, math.Max(0, p.SeaLevel-sinkMargin))
	for _, c := range sink {
		s.Sea.Set(c, true)
	}
	s.Suppressed = len(sink)

	log.Debug("suppressed small islands", zap.Int("cells", len(sink)))
}

// lakeScan walks every sink's basin (the cells draining into it) & floods
// the part of it below its spill height, if that makes a big & deep
// enough lake above sea level. Sinks are visited one at a time.
type lakeScan struct {
	uphill  [][]int
	inBasin []int
}

// newLakeScan indexes the drainage; downhill must be complete.
func newLakeScan(s *State) *lakeScan {
	n := s.Len()
	l := &lakeScan{uphill: make([][]int, n), inBasin: fill(n, -1)}
	for i, d := range s.Downhill {
		if d >= 0 {
			l.uphill[d] = append(l.uphill[d], i)
		}
	}
	return l
}

// visit floods the basin of sink, if it is one.
func (l *lakeScan) visit(m *mesh.Mesh, h []float64, s *State, p Params, sink int) {
	if s.Sea.Get(sink) || s.Downhill[sink] >= 0 {
		return
	}

	basin := []int{sink}
	l.inBasin[sink] = sink
	for q := 0; q < len(basin); q++ {
		for _, u := range l.uphill[basin[q]] {
			if l.inBasin[u] != sink {
				l.inBasin[u] = sink
				basin = append(basin, u)
			}
		}
	}

	spill, outlet := math.Inf(1), -1
	for _, c := range basin {
		for _, nb := range m.Neighbors(c) {
			if l.inBasin[nb] == sink {
				continue
			}
			if h[nb] < spill || (h[nb] == spill && nb < outlet) {
				spill, outlet = h[nb], nb
			}
		}
	}
	if outlet < 0 || spill <= p.SeaLevel {
		return
	}

	members := []int{}
	depth := 0.0
	for _, c := range basin {
		if h[c] < spill {
			members = append(members, c)
			depth = math.Max(depth, spill-h[c])
		}
	}
	if len(members) < maxInt(1, p.LakeMinSize) || depth < p.LakeMinDepth {
		return
	}
	sort.Ints(members)

	lake := &Lake{ID: len(s.Lakes), Spill: spill, Outlet: outlet, Members: members, MaxDepth: depth}
	for _, c := range members {
		s.Lake.Set(c, true)
		s.LakeID[c] = lake.ID
	}
	s.Lakes = append(s.Lakes, lake)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
