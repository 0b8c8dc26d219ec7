// Package mesh holds the planar cell mesh every other layer is built on.
package mesh

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/landgraph/internal/voronoi"
)

var (
	// ErrInputNotReady is returned when the mesh cannot be built from the
	// given parameters.
	ErrInputNotReady = fmt.Errorf("mesh input not ready")
)

// Params controls mesh construction.
type Params struct {
	Cells  int     `yaml:"cells" json:"cells"`   // number of sites
	Width  float64 `yaml:"width" json:"width"`   // domain width
	Height float64 `yaml:"height" json:"height"` // domain height

	// Relax is the number of Lloyd relaxation passes, we default to one.
	Relax int `yaml:"relax" json:"relax"`

	// MinSpacing rejects random sites closer than this to an existing site.
	// Ignored if 0. Slow for very large meshes.
	MinSpacing float64 `yaml:"minSpacing" json:"minSpacing"`

	// Neighbours is how many nearby sites initially cut each cell. Cells
	// needing more are recut automatically. 0 keeps the default.
	Neighbours int `yaml:"neighbours" json:"neighbours"`
}

// Cell is one polygon of the mesh.
type Cell struct {
	ID        int
	Site      model2d.Coord
	Centroid  model2d.Coord
	Polygon   []model2d.Coord
	Neighbors []int
	Border    bool
}

// Mesh is an ordered set of cells over a rectangular domain.
// Immutable once built.
type Mesh struct {
	Cells  []*Cell
	Bounds r2.Rect

	diagram *voronoi.Voronoi
	tree    *model2d.CoordTree
	bySite  map[model2d.Coord]int
}

// Build distributes p.Cells random sites over the domain, relaxes them &
// computes the cells.
func Build(p Params, rng *rand.Rand) (*Mesh, error) {
	if p.Cells <= 0 || p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("%w: cells %d, size %.1fx%.1f", ErrInputNotReady, p.Cells, p.Width, p.Height)
	}

	bounds := r2.RectFromPoints(r2.Point{}, r2.Point{X: p.Width, Y: p.Height})
	b := voronoi.NewBuilder(bounds, rng)
	if p.MinSpacing > 0 {
		b.SetSiteFilters(voronoi.MinDistance(p.MinSpacing))
	}
	if p.Neighbours > 0 {
		b.SetNeighbours(p.Neighbours)
	}

	// filters may reject sites, so give up after a fair number of attempts
	for attempts := 0; b.SiteCount() < p.Cells && attempts < p.Cells*20; attempts++ {
		b.AddRandomSite()
	}
	if b.SiteCount() == 0 {
		return nil, fmt.Errorf("%w: no sites could be placed", ErrInputNotReady)
	}

	relax := p.Relax
	if relax <= 0 {
		relax = 1
	}
	for i := 0; i < relax; i++ {
		if err := b.Relax(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInputNotReady, err)
		}
	}

	return fromBuilder(b)
}

// FromSites builds a mesh with exactly the given sites, no relaxation.
func FromSites(bounds r2.Rect, sites []model2d.Coord) (*Mesh, error) {
	b := voronoi.NewBuilder(bounds, nil)
	for _, s := range sites {
		if _, ok := b.AddSite(s); !ok {
			return nil, fmt.Errorf("%w: site %v outside bounds", ErrInputNotReady, s)
		}
	}
	return fromBuilder(b)
}

func fromBuilder(b *voronoi.Builder) (*Mesh, error) {
	v, err := b.Voronoi()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputNotReady, err)
	}

	m := &Mesh{
		Bounds:  v.Bounds(),
		diagram: v,
		bySite:  map[model2d.Coord]int{},
	}

	sites := make([]model2d.Coord, 0, len(v.Sites()))
	for _, s := range v.Sites() {
		m.Cells = append(m.Cells, &Cell{
			ID:        s.ID,
			Site:      s.Center,
			Centroid:  s.Centroid(),
			Polygon:   s.Polygon,
			Neighbors: s.Neighbours,
			Border:    s.Border,
		})
		if _, ok := m.bySite[s.Center]; !ok {
			m.bySite[s.Center] = s.ID
			sites = append(sites, s.Center)
		}
	}
	m.tree = model2d.NewCoordTree(sites)

	return m, nil
}

// Len returns the number of cells
func (m *Mesh) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Cells)
}

// Neighbors of cell i
func (m *Mesh) Neighbors(i int) []int {
	return m.Cells[i].Neighbors
}

// Pos returns the centroid of cell i.
func (m *Mesh) Pos(i int) model2d.Coord {
	return m.Cells[i].Centroid
}

// Dist returns the straight line distance between two cell centroids.
func (m *Mesh) Dist(a, b int) float64 {
	return m.Cells[a].Centroid.Dist(m.Cells[b].Centroid)
}

// Nearest returns the cell whose site is closest to p.
func (m *Mesh) Nearest(p model2d.Coord) int {
	if m.Len() == 0 {
		return -1
	}
	return m.bySite[m.tree.NearestNeighbor(p)]
}

// Center returns the middle of the domain.
func (m *Mesh) Center() model2d.Coord {
	c := m.Bounds.Center()
	return model2d.XY(c.X, c.Y)
}

// MeanSpacing is the typical distance between neighbouring sites.
func (m *Mesh) MeanSpacing() float64 {
	if m.Len() == 0 {
		return 0
	}
	area := m.Bounds.X.Length() * m.Bounds.Y.Length()
	return math.Sqrt(area / float64(m.Len()))
}

// Render writes a debug png of the cells to fpath.
func (m *Mesh) Render(fpath string) error {
	return m.diagram.RenderTo(fpath)
}
