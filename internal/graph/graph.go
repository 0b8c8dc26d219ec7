// Package graph builds the land & sea traversal graphs over a classified
// mesh, caches them & answers shortest path queries over the sea.
package graph

import (
	"fmt"
	"math"

	"github.com/boljen/go-bitmap"
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/landgraph/internal/encoding"
	"github.com/voidshard/landgraph/internal/hydro"
	"github.com/voidshard/landgraph/internal/mesh"
)

// Kind of graph
type Kind int

const (
	Land Kind = iota
	Sea
)

// String returns a readable graph kind
func (k Kind) String() string {
	switch k {
	case Land:
		return "land"
	case Sea:
		return "sea"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Inputs are what graphs are derived from.
type Inputs struct {
	Mesh          *mesh.Mesh
	Hydro         *hydro.State
	HeightVersion uint32
}

// Ready returns if the inputs describe the same, non empty, set of cells.
func (in Inputs) Ready() bool {
	return in.Mesh.Len() > 0 && in.Hydro.Len() == in.Mesh.Len()
}

// Stamp identifies the height & water data graphs were built from.
func (in Inputs) Stamp() uint64 {
	if in.Hydro == nil {
		return encoding.Stamp(in.HeightVersion, 0)
	}
	return encoding.Stamp(in.HeightVersion, in.Hydro.Version)
}

// Arc is a directed half of an undirected edge.
type Arc struct {
	To     int
	Weight float64
}

// Graph is a read only view of the mesh restricted to one kind of cell.
type Graph struct {
	Kind  Kind
	Stamp uint64

	// MinFactor is the smallest multiple of straight line distance any
	// traversal can cost; heuristics scaled by it stay admissible.
	MinFactor float64

	mesh      *mesh.Mesh
	nodes     bitmap.Bitmap
	count     int
	edges     int
	arcs      [][]Arc
	neighbors [][]int
}

// newGraph allocates an empty graph over m.
func newGraph(k Kind, m *mesh.Mesh, stamp uint64) *Graph {
	g := &Graph{Kind: k, Stamp: stamp, MinFactor: 1, mesh: m}
	n := m.Len()
	if n > 0 {
		g.nodes = bitmap.New(n)
	}
	g.arcs = make([][]Arc, n)
	g.neighbors = make([][]int, n)
	return g
}

// build adds nodes for which member holds & edges between neighbouring
// members, weighted by weight.
func (g *Graph) build(member func(i int) bool, weight func(u, v int) float64) {
	for i := 0; i < g.mesh.Len(); i++ {
		if member(i) {
			g.nodes.Set(i, true)
			g.count++
		}
	}
	for u := 0; u < g.mesh.Len(); u++ {
		if !g.HasNode(u) {
			continue
		}
		for _, v := range g.mesh.Neighbors(u) {
			if !g.HasNode(v) {
				continue
			}
			g.arcs[u] = append(g.arcs[u], Arc{To: v, Weight: weight(u, v)})
			g.neighbors[u] = append(g.neighbors[u], v)
			if u < v {
				g.edges++
			}
		}
	}
}

// Mesh the graph is over
func (g *Graph) Mesh() *mesh.Mesh {
	return g.mesh
}

// Len is the number of cells in the underlying mesh (not nodes).
func (g *Graph) Len() int {
	return len(g.arcs)
}

// NodeCount is the number of cells that are nodes.
func (g *Graph) NodeCount() int {
	return g.count
}

// EdgeCount is the number of undirected edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// HasNode returns if cell i is part of this graph
func (g *Graph) HasNode(i int) bool {
	return i >= 0 && i < len(g.arcs) && g.nodes.Get(i)
}

// Neighbors of node i within the graph.
func (g *Graph) Neighbors(i int) []int {
	if i < 0 || i >= len(g.neighbors) {
		return nil
	}
	return g.neighbors[i]
}

// Arcs leaving node i
func (g *Graph) Arcs(i int) []Arc {
	if i < 0 || i >= len(g.arcs) {
		return nil
	}
	return g.arcs[i]
}

// Pos is the centroid of cell i
func (g *Graph) Pos(i int) model2d.Coord {
	return g.mesh.Pos(i)
}

// Weight returns the base cost of the edge u-v, if there is one.
func (g *Graph) Weight(u, v int) (float64, bool) {
	for _, a := range g.Arcs(u) {
		if a.To == v {
			return a.Weight, true
		}
	}
	return math.Inf(1), false
}

// Cost is Weight as a plain cost function, +Inf for non edges.
func (g *Graph) Cost(u, v int) float64 {
	w, _ := g.Weight(u, v)
	return w
}

// Nodes returns every node id ascending.
func (g *Graph) Nodes() []int {
	out := make([]int, 0, g.count)
	for i := range g.arcs {
		if g.HasNode(i) {
			out = append(out, i)
		}
	}
	return out
}
