package network

import (
	"math"
	"sort"

	"github.com/unixpickle/model3d/model2d"
	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"

	"github.com/voidshard/landgraph/internal/route"
)

// component is a set of terminals mutually reachable over primary roads,
// along with every cell reached.
type component struct {
	terminals []*Settlement
	cells     []int
}

// Components partitions terminals of one landmass by reachability through
// primary road cells. Components are ordered by their first terminal.
func (b *Builder) Components(group []*Settlement) [][]*Settlement {
	comps := b.components(group)
	out := make([][]*Settlement, len(comps))
	for i, c := range comps {
		out[i] = c.terminals
	}
	return out
}

func (b *Builder) components(group []*Settlement) []*component {
	owner := map[int]int{}
	comps := []*component{}

	for _, t := range group {
		if idx, ok := owner[t.Cell]; ok {
			comps[idx].terminals = append(comps[idx].terminals, t)
			continue
		}

		idx := len(comps)
		comp := &component{terminals: []*Settlement{t}, cells: []int{t.Cell}}
		owner[t.Cell] = idx
		for q := 0; q < len(comp.cells); q++ {
			for _, n := range b.land.Neighbors(comp.cells[q]) {
				if _, seen := owner[n]; seen || !b.IsPrimary(n) {
					continue
				}
				owner[n] = idx
				comp.cells = append(comp.cells, n)
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

type candidate struct {
	from, to int
	dist     float64
}

// nearestPairs returns, for each pair of components, the closest pair of
// cells between them by straight line.
func (b *Builder) nearestPairs(comps []*component) []candidate {
	trees := make([]*model2d.CoordTree, len(comps))
	cellAt := make([]map[model2d.Coord]int, len(comps))
	for i, c := range comps {
		coords := make([]model2d.Coord, 0, len(c.cells))
		cellAt[i] = map[model2d.Coord]int{}
		for _, cell := range c.cells {
			p := b.land.Pos(cell)
			if _, ok := cellAt[i][p]; !ok {
				cellAt[i][p] = cell
				coords = append(coords, p)
			}
		}
		trees[i] = model2d.NewCoordTree(coords)
	}

	out := []candidate{}
	for i := range comps {
		for j := i + 1; j < len(comps); j++ {
			best := candidate{from: -1, dist: math.Inf(1)}
			for _, cell := range comps[i].cells {
				p := b.land.Pos(cell)
				q := trees[j].NearestNeighbor(p)
				if d := p.Dist(q); d < best.dist {
					best = candidate{from: cell, to: cellAt[j][q], dist: d}
				}
			}
			if best.from >= 0 {
				out = append(out, best)
			}
		}
	}

	sort.SliceStable(out, func(x, y int) bool { return out[x].dist < out[y].dist })
	return out
}

// Repair bridges terminals on the same landmass that the backbone left
// disconnected. Each round tries the closest few cross component cell pairs
// & keeps the cheapest path found. Returns the number of bridges added.
func (b *Builder) Repair(settlements []*Settlement) int {
	order, groups := b.terminalsByLandmass(settlements)

	added := 0
	for _, lm := range order {
		group := groups[lm]
		tried := mapset.New[[2]int]()

		for round := 0; round < maxInt(1, b.p.RepairRounds); round++ {
			comps := b.components(group)
			if len(comps) <= 1 {
				break
			}

			var best route.Path
			found := false
			considered := 0
			for _, c := range b.nearestPairs(comps) {
				if considered >= maxInt(1, b.p.RepairCandidates) {
					break
				}
				key := [2]int{c.from, c.to}
				if tried.Has(key) {
					continue
				}
				tried.Put(key)
				considered++

				path, ok := b.find(c.from, c.to)
				if ok && (!found || path.Cost < best.Cost) {
					best, found = path, true
				}
			}
			if !found {
				b.log.Warn("no viable bridge between road components",
					zap.Int("landmass", lm),
					zap.Int("components", len(comps)),
				)
				break
			}

			b.addRoad(Primary, best, -1, -1)
			b.Bridges++
			added++
		}
	}

	return added
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
