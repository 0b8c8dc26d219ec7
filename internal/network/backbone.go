package network

import (
	"sort"

	"go.uber.org/zap"
)

// unionFind is a disjoint set forest over [0, n)
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

// union joins the sets of a & b, returning false if they were already one.
func (u *unionFind) union(a, b int) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
	return true
}

type pair struct {
	a, b int // indexes into a terminal group
	dist float64
}

// spanningPairs returns the minimum spanning tree over the complete graph
// of group, by straight line distance. Ties keep input order.
func (b *Builder) spanningPairs(group []*Settlement) []pair {
	pairs := []pair{}
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			d := b.land.Pos(group[i].Cell).Dist(b.land.Pos(group[j].Cell))
			pairs = append(pairs, pair{i, j, d})
		}
	}
	sort.SliceStable(pairs, func(x, y int) bool {
		return pairs[x].dist < pairs[y].dist
	})

	uf := newUnionFind(len(group))
	tree := []pair{}
	for _, p := range pairs {
		if uf.union(p.a, p.b) {
			tree = append(tree, p)
			if len(tree) == len(group)-1 {
				break
			}
		}
	}
	return tree
}

// Backbone connects the terminals (capitals & ports) of each landmass with
// a minimum spanning tree of primary roads. Returns the number of roads laid.
func (b *Builder) Backbone(settlements []*Settlement) int {
	order, groups := b.terminalsByLandmass(settlements)

	laid := 0
	for _, lm := range order {
		group := groups[lm]

		// terminals anchor the network even before any road reaches them
		for _, t := range group {
			b.roaded.Set(t.Cell, true)
		}

		for _, p := range b.spanningPairs(group) {
			from, to := group[p.a], group[p.b]
			path, ok := b.find(from.Cell, to.Cell)
			if !ok {
				b.log.Warn("backbone edge not realized, leaving it to repair",
					zap.Int("landmass", lm),
					zap.Int("from", from.ID),
					zap.Int("to", to.ID),
				)
				continue
			}
			b.addRoad(Primary, path, from.ID, to.ID)
			laid++
		}
	}

	b.log.Debug("backbone built", zap.Int("roads", laid), zap.Int("landmasses", len(order)))
	return laid
}

func sortInts(in []int) {
	sort.Ints(in)
}
