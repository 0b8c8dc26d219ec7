package voronoi

import (
	"fmt"
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/unixpickle/model3d/model2d"
)

var (
	// ErrNoSites is returned when asking for a diagram before any site is set.
	ErrNoSites = fmt.Errorf("voronoi diagram requires at least one site")

	// ErrEmptyBounds is returned if the builder bounds have no area.
	ErrEmptyBounds = fmt.Errorf("voronoi bounds are empty")
)

// defaultNeighbours is the number of nearest sites considered when cutting
// each cell. It's doubled for any cell that turns out to need more.
const defaultNeighbours = 24

// Builder struct makes managing the setup of a voronoi diagram easier.
// Sites (centres of voronoi cells) are float coords within bounds.
type Builder struct {
	bounds r2.Rect
	sites  []model2d.Coord
	rng    *rand.Rand
	sfilt  []SiteFilter
	cfilt  []CandidateFilter

	neighbours int
}

// NewBuilder returns a new Voronoi diagram builder drawing random sites from rng.
func NewBuilder(bounds r2.Rect, rng *rand.Rand) *Builder {
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}
	return &Builder{
		bounds:     bounds,
		sites:      []model2d.Coord{},
		rng:        rng,
		neighbours: defaultNeighbours,
	}
}

// Bounds of the diagram
func (b *Builder) Bounds() r2.Rect {
	return b.bounds
}

// SiteCount returns how many sites we've currently got configured
func (b *Builder) SiteCount() int {
	return len(b.sites)
}

// Sites returns a copy of the current sites.
func (b *Builder) Sites() []model2d.Coord {
	out := make([]model2d.Coord, len(b.sites))
	copy(out, b.sites)
	return out
}

// SetNeighbours sets how many nearby sites cut each cell initially.
func (b *Builder) SetNeighbours(k int) {
	if k < 3 {
		k = 3
	}
	b.neighbours = k
}

// SetCandidateFilters sets filters that accept / reject a proposed site without
// reference to other currently set site(s).
func (b *Builder) SetCandidateFilters(f ...CandidateFilter) {
	b.cfilt = f
}

// SetSiteFilters sets filters that compare proposed sites to all current sites.
func (b *Builder) SetSiteFilters(f ...SiteFilter) {
	b.sfilt = f
}

// AddRandomSite places a site at random, assuming it obeys all currently set filters.
func (b *Builder) AddRandomSite() (model2d.Coord, int, bool) {
	candidate := model2d.XY(
		b.bounds.X.Lo+b.rng.Float64()*b.bounds.X.Length(),
		b.bounds.Y.Lo+b.rng.Float64()*b.bounds.Y.Length(),
	)

	if !b.accepted(candidate) {
		return candidate, 0, false
	}

	return candidate, b.addSite(candidate), true
}

// AddSite places a site at the given location, assuming it obeys currently set filters.
func (b *Builder) AddSite(c model2d.Coord) (int, bool) {
	if !b.bounds.ContainsPoint(r2.Point{X: c.X, Y: c.Y}) {
		return 0, false
	}
	if !b.accepted(c) {
		return 0, false
	}
	return b.addSite(c), true
}

// Relax performs one pass of Lloyd relaxation, moving every site to the
// centroid of its cell (clamped to bounds).
func (b *Builder) Relax() error {
	v, err := b.Voronoi()
	if err != nil {
		return err
	}
	for i, cell := range v.cells {
		if cell.Twin >= 0 || len(cell.Polygon) < 3 {
			continue
		}
		b.sites[i] = b.clamp(polygonCentroid(cell.Polygon))
	}
	return nil
}

// Voronoi returns the Voronoi diagram given our current sites.
func (b *Builder) Voronoi() (*Voronoi, error) {
	if b.bounds.IsEmpty() || b.bounds.X.Length() <= 0 || b.bounds.Y.Length() <= 0 {
		return nil, ErrEmptyBounds
	}
	if len(b.sites) == 0 {
		return nil, ErrNoSites
	}
	return newVoronoi(b), nil
}

// accepted returns if the proposed site location is acceptable to our filters.
// We run CandidateFilter(s) first so we can hopefully reject candidates early.
func (b *Builder) accepted(c model2d.Coord) bool {
	for _, fn := range b.cfilt {
		if !fn(c) {
			return false
		}
	}

	if len(b.sfilt) == 0 {
		return true
	}
	for _, s := range b.sites {
		for _, fn := range b.sfilt {
			if !fn(c, s) {
				return false
			}
		}
	}

	return true
}

// clamp forces c to lie within our bounds.
func (b *Builder) clamp(c model2d.Coord) model2d.Coord {
	p := b.bounds.ClampPoint(r2.Point{X: c.X, Y: c.Y})
	return model2d.XY(p.X, p.Y)
}

// addSite adds a site, no filters are run.
func (b *Builder) addSite(c model2d.Coord) int {
	id := len(b.sites)
	b.sites = append(b.sites, c)
	return id
}
