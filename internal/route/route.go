// Package route finds paths over cell graphs.
package route

import (
	"math"

	"github.com/unixpickle/model3d/model2d"
	"github.com/zyedidia/generic/heap"
)

// Graph is what the searches walk.
type Graph interface {
	Neighbors(i int) []int
	Pos(i int) model2d.Coord
	HasNode(i int) bool
}

// CostFunc returns the cost of stepping u -> v.
type CostFunc func(u, v int) float64

// Outcome of a search
type Outcome int

const (
	Found Outcome = iota
	Unreachable
	Exhausted // gave up at the iteration cap
)

// Options tune A*.
type Options struct {
	// MaxIterations caps node expansions, 0 is unlimited.
	MaxIterations int

	// MinFactor is the lowest multiple of straight line distance any step
	// can cost. The heuristic is distance * MinFactor, keeping it admissible.
	// 0 means 1.
	MinFactor float64

	// HeuristicScale > 1 trades optimality for speed. 0 means 1.
	HeuristicScale float64
}

// Path is an ordered list of cells & what it cost. An empty path means
// the search failed.
type Path struct {
	Cells []int
	Cost  float64
}

// Empty returns if there are no cells
func (p Path) Empty() bool {
	return len(p.Cells) == 0
}

// Start cell, or -1
func (p Path) Start() int {
	if p.Empty() {
		return -1
	}
	return p.Cells[0]
}

// End cell, or -1
func (p Path) End() int {
	if p.Empty() {
		return -1
	}
	return p.Cells[len(p.Cells)-1]
}

type node struct {
	id int
	g  float64
	f  float64
}

// less orders by f, preferring deeper nodes on ties, then by id so the
// search is deterministic.
func less(a, b node) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	if a.g != b.g {
		return a.g > b.g
	}
	return a.id < b.id
}

// AStar finds the cheapest path from start to goal.
func AStar(g Graph, cost CostFunc, start, goal int, opts Options) (Path, Outcome) {
	if !g.HasNode(start) || !g.HasNode(goal) {
		return Path{}, Unreachable
	}
	if start == goal {
		return Path{Cells: []int{start}}, Found
	}

	factor := opts.MinFactor
	if factor <= 0 {
		factor = 1
	}
	if opts.HeuristicScale > 0 {
		factor *= opts.HeuristicScale
	}
	target := g.Pos(goal)
	h := func(i int) float64 {
		return g.Pos(i).Dist(target) * factor
	}

	best := map[int]float64{start: 0}
	prev := map[int]int{}
	closed := map[int]bool{}

	open := heap.New[node](less)
	open.Push(node{id: start, g: 0, f: h(start)})

	for iterations := 0; open.Size() > 0; {
		cur, _ := open.Pop()
		if closed[cur.id] || cur.g > best[cur.id] {
			continue
		}
		if cur.id == goal {
			return Path{Cells: unwind(prev, start, goal), Cost: cur.g}, Found
		}
		closed[cur.id] = true

		iterations++
		if opts.MaxIterations > 0 && iterations > opts.MaxIterations {
			return Path{}, Exhausted
		}

		for _, n := range g.Neighbors(cur.id) {
			if closed[n] || !g.HasNode(n) {
				continue
			}
			step := cost(cur.id, n)
			if math.IsInf(step, 1) || math.IsNaN(step) {
				continue
			}
			ng := cur.g + step
			if old, ok := best[n]; ok && ng >= old {
				continue
			}
			best[n] = ng
			prev[n] = cur.id
			open.Push(node{id: n, g: ng, f: ng + h(n)})
		}
	}

	return Path{}, Unreachable
}

// BFS walks outward from start by hop count until isGoal holds, visiting at
// most maxVisits cells (0 is unlimited). The path is the fewest hops, its
// cost is summed with cost.
func BFS(g Graph, cost CostFunc, start int, isGoal func(int) bool, maxVisits int) (Path, Outcome) {
	if !g.HasNode(start) {
		return Path{}, Unreachable
	}

	prev := map[int]int{start: -1}
	queue := []int{start}
	for q := 0; q < len(queue); q++ {
		cur := queue[q]
		if isGoal(cur) {
			cells := unwind(prev, start, cur)
			total := 0.0
			for i := 1; i < len(cells); i++ {
				total += cost(cells[i-1], cells[i])
			}
			return Path{Cells: cells, Cost: total}, Found
		}
		if maxVisits > 0 && q >= maxVisits {
			return Path{}, Exhausted
		}
		for _, n := range g.Neighbors(cur) {
			if _, seen := prev[n]; seen || !g.HasNode(n) {
				continue
			}
			prev[n] = cur
			queue = append(queue, n)
		}
	}
	return Path{}, Unreachable
}

// Find runs A*, falling back to a capped BFS if A* gives up at its
// iteration cap.
func Find(g Graph, cost CostFunc, start, goal int, opts Options) (Path, bool) {
	p, out := AStar(g, cost, start, goal, opts)
	switch out {
	case Found:
		return p, true
	case Exhausted:
		p, out = BFS(g, cost, start, func(i int) bool { return i == goal }, 4*opts.MaxIterations)
		return p, out == Found
	}
	return Path{}, false
}

// unwind follows prev back from end to start.
func unwind(prev map[int]int, start, end int) []int {
	cells := []int{end}
	for c := end; c != start; {
		c = prev[c]
		cells = append(cells, c)
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}
