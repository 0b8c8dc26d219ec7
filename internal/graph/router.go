package graph

import (
	"math"

	"github.com/zyedidia/generic/heap"
)

// Tree is a shortest path tree from one origin.
type Tree struct {
	Origin int
	Dist   []float64 // +Inf where unreached
	Prev   []int     // -1 at the origin & where unreached

	// Complete is false if the search stopped early once its goals were found.
	Complete bool
}

// Reached returns if target has a finite distance
func (t *Tree) Reached(target int) bool {
	return target >= 0 && target < len(t.Dist) && !math.IsInf(t.Dist[target], 1)
}

// PathTo walks predecessors back from target. Returns false if the target
// wasn't reached.
func (t *Tree) PathTo(target int) ([]int, float64, bool) {
	if !t.Reached(target) {
		return nil, math.Inf(1), false
	}
	path := []int{}
	for c := target; c >= 0; c = t.Prev[c] {
		path = append(path, c)
		if c == t.Origin {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, t.Dist[target], true
}

// Router answers single source queries over one graph, caching full trees
// per origin for the graph's lifetime.
type Router struct {
	g     *Graph
	trees map[int]*Tree
}

// NewRouter returns a router over g
func NewRouter(g *Graph) *Router {
	return &Router{g: g, trees: map[int]*Tree{}}
}

// Graph the router searches
func (r *Router) Graph() *Graph {
	return r.g
}

// Cached returns how many origins have a cached tree.
func (r *Router) Cached() int {
	return len(r.trees)
}

// EnsureFor returns the full shortest path tree from origin, computing it
// once.
func (r *Router) EnsureFor(origin int) *Tree {
	if t, ok := r.trees[origin]; ok {
		return t
	}
	t := r.dijkstra(origin, nil)
	if r.g.HasNode(origin) {
		r.trees[origin] = t
	}
	return t
}

// EnsureForTargets runs the same search but stops once every goal has been
// settled. A cached full tree is returned if there is one; partial trees
// are not cached.
func (r *Router) EnsureForTargets(origin int, goals []int) *Tree {
	if t, ok := r.trees[origin]; ok {
		return t
	}
	t := r.dijkstra(origin, goals)
	if t.Complete && r.g.HasNode(origin) {
		r.trees[origin] = t
	}
	return t
}

type item struct {
	node int
	dist float64
}

// dijkstra from origin, optionally stopping when every goal is popped.
func (r *Router) dijkstra(origin int, goals []int) *Tree {
	n := r.g.Len()
	t := &Tree{Origin: origin, Dist: make([]float64, n), Prev: make([]int, n)}
	for i := range t.Dist {
		t.Dist[i] = math.Inf(1)
		t.Prev[i] = -1
	}
	if !r.g.HasNode(origin) {
		t.Complete = true
		return t
	}

	waiting := map[int]bool{}
	for _, g := range goals {
		if r.g.HasNode(g) {
			waiting[g] = true
		}
	}
	early := len(waiting) > 0

	settled := make([]bool, n)
	pq := heap.New[item](func(a, b item) bool { return a.dist < b.dist })
	t.Dist[origin] = 0
	pq.Push(item{origin, 0})

	for pq.Size() > 0 {
		cur, _ := pq.Pop()
		if settled[cur.node] || cur.dist > t.Dist[cur.node] {
			continue
		}
		settled[cur.node] = true

		if early {
			delete(waiting, cur.node)
			if len(waiting) == 0 {
				return t
			}
		}

		for _, a := range r.g.Arcs(cur.node) {
			nd := cur.dist + a.Weight
			if nd < t.Dist[a.To] {
				t.Dist[a.To] = nd
				t.Prev[a.To] = cur.node
				pq.Push(item{a.To, nd})
			}
		}
	}

	t.Complete = true
	return t
}
