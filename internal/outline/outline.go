// Package outline traces the boundary between two sets of cells, eg. the
// coastline between land & water.
package outline

import (
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/landgraph/internal/mesh"
)

// Segment is one polygon edge
type Segment [2]model2d.Coord

// edgeKey orders the ends of an edge so both cells sharing it agree.
type edgeKey [2]model2d.Coord

func keyOf(a, b model2d.Coord) edgeKey {
	if b.X < a.X || (a.X == b.X && b.Y < a.Y) {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Circuit finds every edge separating an "inside" cell from an "outside"
// one. Edges are returned in cell id then polygon order. With withBorder,
// edges of inside cells lying along the domain border are included too,
// closing the circuit at the map edge.
func Circuit(m *mesh.Mesh, inside func(i int) bool, withBorder bool) []Segment {
	// we start with every edge of an outside cell, then keep only the
	// edges of inside cells that are also found there
	ownedOutside := map[edgeKey]bool{}
	for _, c := range m.Cells {
		if inside(c.ID) {
			continue
		}
		for i, p := range c.Polygon {
			ownedOutside[keyOf(p, c.Polygon[(i+1)%len(c.Polygon)])] = true
		}
	}

	onBorder := func(p model2d.Coord) bool {
		const eps = 1e-6
		b := m.Bounds
		return p.X <= b.X.Lo+eps || p.X >= b.X.Hi-eps || p.Y <= b.Y.Lo+eps || p.Y >= b.Y.Hi-eps
	}

	wall := []Segment{}
	for _, c := range m.Cells {
		if !inside(c.ID) || len(c.Polygon) < 2 {
			continue
		}
		for i, p := range c.Polygon {
			q := c.Polygon[(i+1)%len(c.Polygon)]
			if ownedOutside[keyOf(p, q)] {
				wall = append(wall, Segment{p, q})
			} else if withBorder && onBorder(p) && onBorder(q) {
				wall = append(wall, Segment{p, q})
			}
		}
	}
	return wall
}

// Chains joins segments sharing end points into polylines. A closed loop
// repeats its first point at the end.
func Chains(segs []Segment) [][]model2d.Coord {
	adj := map[model2d.Coord][]int{}
	for i, s := range segs {
		adj[s[0]] = append(adj[s[0]], i)
		adj[s[1]] = append(adj[s[1]], i)
	}

	used := make([]bool, len(segs))
	next := func(at model2d.Coord) (int, bool) {
		for _, i := range adj[at] {
			if !used[i] {
				return i, true
			}
		}
		return 0, false
	}
	other := func(i int, at model2d.Coord) model2d.Coord {
		if segs[i][0] == at {
			return segs[i][1]
		}
		return segs[i][0]
	}

	// start open chains at dead ends first so they aren't split in two
	order := make([]int, 0, len(segs))
	for i, s := range segs {
		if len(adj[s[0]])%2 == 1 || len(adj[s[1]])%2 == 1 {
			order = append(order, i)
		}
	}
	for i := range segs {
		order = append(order, i)
	}

	out := [][]model2d.Coord{}
	for _, start := range order {
		if used[start] {
			continue
		}
		used[start] = true

		head := segs[start][0]
		if len(adj[segs[start][1]])%2 == 1 && len(adj[head])%2 == 0 {
			head = segs[start][1]
		}
		line := []model2d.Coord{head, other(start, head)}
		for {
			i, ok := next(line[len(line)-1])
			if !ok {
				break
			}
			used[i] = true
			line = append(line, other(i, line[len(line)-1]))
		}
		out = append(out, line)
	}
	return out
}
