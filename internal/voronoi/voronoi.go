package voronoi

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/unixpickle/model3d/model2d"
)

// Voronoi is a repaired diagram with adjacency worked out.
type Voronoi struct {
	vg     VoronoiDiagram
	cells  []*Site
	bounds r2.Rect
}

// newVoronoi builds a voronoi diagram using the given builder information
func newVoronoi(b *Builder) *Voronoi {
	me := &Voronoi{bounds: b.bounds}

	// coincident sites are cut once; later copies become twins
	first := map[model2d.Coord]int{}
	unique := []model2d.Coord{}
	uniqueOf := make([]int, len(b.sites))
	for i, s := range b.sites {
		if j, ok := first[s]; ok {
			uniqueOf[i] = -1 - j
			continue
		}
		first[s] = i
		uniqueOf[i] = len(unique)
		unique = append(unique, s)
	}

	size := math.Max(b.bounds.X.Length(), b.bounds.Y.Length())
	epsilon := 1e-9 * math.Max(1, size)

	me.vg = VoronoiCells(
		model2d.XY(b.bounds.X.Lo, b.bounds.Y.Lo),
		model2d.XY(b.bounds.X.Hi, b.bounds.Y.Hi),
		unique,
		b.neighbours,
	)
	me.vg.Repair(epsilon)

	me.cells = make([]*Site, len(b.sites))
	for i, s := range b.sites {
		site := &Site{ID: i, Center: s, Twin: -1}
		if u := uniqueOf[i]; u >= 0 {
			site.Polygon = me.vg[u].Polygon()
		} else {
			site.Twin = -1 - u
			site.Polygon = []model2d.Coord{s}
		}
		if len(site.Polygon) == 0 {
			site.Polygon = []model2d.Coord{s}
		}
		site.Border = me.onBorder(site.Polygon, epsilon)
		me.cells[i] = site
	}

	me.link()
	return me
}

// link sets neighbours for every site: sites sharing two or more vertices
// share an edge. Twins are linked to the site they coincide with.
func (v *Voronoi) link() {
	byVertex := map[model2d.Coord][]int{}
	for _, s := range v.cells {
		if s.Twin >= 0 {
			continue
		}
		for _, p := range s.Polygon {
			byVertex[p] = append(byVertex[p], s.ID)
		}
	}

	shared := make([]map[int]int, len(v.cells))
	for _, ids := range byVertex {
		for _, a := range ids {
			for _, b := range ids {
				if a == b {
					continue
				}
				if shared[a] == nil {
					shared[a] = map[int]int{}
				}
				shared[a][b]++
			}
		}
	}

	adj := make([]map[int]bool, len(v.cells))
	add := func(a, b int) {
		if adj[a] == nil {
			adj[a] = map[int]bool{}
		}
		if adj[b] == nil {
			adj[b] = map[int]bool{}
		}
		adj[a][b] = true
		adj[b][a] = true
	}
	for a, counts := range shared {
		for b, n := range counts {
			if n >= 2 {
				add(a, b)
			}
		}
	}
	for _, s := range v.cells {
		if s.Twin >= 0 {
			add(s.ID, s.Twin)
		}
	}

	for i, s := range v.cells {
		s.Neighbours = make([]int, 0, len(adj[i]))
		for n := range adj[i] {
			s.Neighbours = append(s.Neighbours, n)
		}
		sort.Ints(s.Neighbours)
	}
}

// onBorder returns if any vertex lies on the bounds.
func (v *Voronoi) onBorder(poly []model2d.Coord, epsilon float64) bool {
	for _, p := range poly {
		if p.X <= v.bounds.X.Lo+epsilon || p.X >= v.bounds.X.Hi-epsilon ||
			p.Y <= v.bounds.Y.Lo+epsilon || p.Y >= v.bounds.Y.Hi-epsilon {
			return true
		}
	}
	return false
}

// Bounds returns the bounding rect for this diagram
func (v *Voronoi) Bounds() r2.Rect {
	return v.bounds
}

// Sites returns all sites
func (v *Voronoi) Sites() []*Site {
	return v.cells
}

// SiteByID returns the given Site by it's ID
func (v *Voronoi) SiteByID(i int) *Site {
	if i < 0 || i >= len(v.cells) {
		return nil
	}
	return v.cells[i]
}

// RenderTo writes a png of the diagram to fpath.
func (v *Voronoi) RenderTo(fpath string) error {
	return v.vg.Render(fpath)
}
