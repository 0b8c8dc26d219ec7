package graph

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/landgraph/internal/heightfield"
	"github.com/voidshard/landgraph/internal/hydro"
	"github.com/voidshard/landgraph/internal/mesh"
)

// island returns a size x size grid: a square island surrounded by sea.
func island(t *testing.T, size int) (Inputs, *heightfield.Field) {
	sites := []model2d.Coord{}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			sites = append(sites, model2d.XY(float64(x)*10+5, float64(y)*10+5))
		}
	}
	bounds := r2.RectFromPoints(r2.Point{}, r2.Point{X: float64(size) * 10, Y: float64(size) * 10})
	m, err := mesh.FromSites(bounds, sites)
	if err != nil {
		t.Fatal(err)
	}

	h := make([]float64, len(sites))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x >= 2 && y >= 2 && x < size-2 && y < size-2 {
				h[y*size+x] = 0.6
			}
		}
	}
	f := heightfield.New(m, 1, heightfield.Params{}, nil)
	f.Set(h)

	s := hydro.Classify(m, f, hydro.DefaultParams(), nil)
	return Inputs{Mesh: m, Hydro: s, HeightVersion: f.Version()}, f
}

func TestLandAndSeaNodes(t *testing.T) {
	in, _ := island(t, 10)

	land := BuildLand(in, DefaultLandCosts())
	sea := BuildSea(in, DefaultSeaCosts())

	for i := 0; i < in.Mesh.Len(); i++ {
		if land.HasNode(i) == in.Hydro.IsWater(i) {
			t.Errorf("cell %d land node=%v water=%v", i, land.HasNode(i), in.Hydro.IsWater(i))
		}
		if sea.HasNode(i) != in.Hydro.IsWater(i) {
			t.Errorf("cell %d sea node=%v water=%v", i, sea.HasNode(i), in.Hydro.IsWater(i))
		}
	}
	if land.NodeCount() != 36 {
		t.Errorf("expected 36 land nodes got %d", land.NodeCount())
	}
	if land.NodeCount()+sea.NodeCount() != in.Mesh.Len() {
		t.Error("land & sea should partition the mesh")
	}

	for _, u := range land.Nodes() {
		for _, a := range land.Arcs(u) {
			if a.Weight < in.Mesh.Dist(u, a.To)-1e-9 {
				t.Errorf("edge %d-%d cheaper than straight line", u, a.To)
			}
			back, ok := land.Weight(a.To, u)
			if !ok || back != a.Weight {
				t.Errorf("edge %d-%d not symmetric", u, a.To)
			}
		}
	}
}

func TestSeaPrefersOffshore(t *testing.T) {
	in, _ := island(t, 10)
	sea := BuildSea(in, DefaultSeaCosts())

	// a shoreline edge costs more than an edge on the map rim
	shore, _ := sea.Weight(1*10+3, 1*10+4)
	rim, _ := sea.Weight(0*10+3, 0*10+4)
	if shore <= rim {
		t.Errorf("expected nearshore edge (%f) to cost more than offshore (%f)", shore, rim)
	}
}

func TestCacheIdempotent(t *testing.T) {
	in, f := island(t, 8)
	c := NewCache(DefaultLandCosts(), DefaultSeaCosts(), nil)

	a := c.Land(in)
	b := c.Land(in)
	if a != b {
		t.Error("repeated Land calls should return the same graph")
	}
	if c.Sea(in) != c.Sea(in) {
		t.Error("repeated Sea calls should return the same graph")
	}
	if c.Builds() != 2 {
		t.Errorf("expected 2 builds got %d", c.Builds())
	}

	c.Invalidate(Land)
	if c.Land(in) == a {
		t.Error("invalidate should force a rebuild")
	}

	// a height change yields a new stamp, the cache notices by itself
	f.Add(0.01, 0.5, 1)
	in.HeightVersion = f.Version()
	if c.Land(in) == a || c.Builds() != 4 {
		t.Errorf("stale graph should be rebuilt, builds %d", c.Builds())
	}
}

func TestCacheNotReady(t *testing.T) {
	c := NewCache(DefaultLandCosts(), DefaultSeaCosts(), nil)
	g := c.Land(Inputs{})
	if g == nil || g.NodeCount() != 0 {
		t.Error("expected an empty graph for missing inputs")
	}
}

func TestRouter(t *testing.T) {
	in, _ := island(t, 10)
	c := NewCache(DefaultLandCosts(), DefaultSeaCosts(), nil)
	r := c.Router(in)

	origin, target := 0, 99 // opposite corners, both sea
	tree := r.EnsureFor(origin)
	if !tree.Complete {
		t.Error("full search should be complete")
	}
	if r.EnsureFor(origin) != tree {
		t.Error("tree should be cached")
	}

	path, cost, ok := tree.PathTo(target)
	if !ok {
		t.Fatal("expected a sea route around the island")
	}
	if path[0] != origin || path[len(path)-1] != target {
		t.Errorf("path should run origin to target: %v", path)
	}
	for i := 1; i < len(path); i++ {
		if !r.Graph().HasNode(path[i]) {
			t.Errorf("path crosses land at %d", path[i])
		}
	}
	if cost < in.Mesh.Dist(origin, target) {
		t.Errorf("cost %f below straight line", cost)
	}

	partial := r.EnsureForTargets(5, []int{6})
	if partial.Complete {
		t.Error("search for a neighbour should stop early")
	}
	if !partial.Reached(6) {
		t.Error("goal should be reached")
	}
	if r.Cached() != 1 {
		t.Errorf("partial trees should not be cached, have %d", r.Cached())
	}

	// the full tree is reused for target queries
	if r.EnsureForTargets(origin, []int{target}) != tree {
		t.Error("expected the cached full tree")
	}

	land := 5*10 + 5
	if _, _, ok := r.EnsureFor(land).PathTo(target); ok {
		t.Error("a land origin should reach nothing")
	}
	if !math.IsInf(r.EnsureFor(land).Dist[target], 1) {
		t.Error("unreached distance should be +Inf")
	}
}

func TestReuseCost(t *testing.T) {
	cases := []struct {
		Name     string
		Discount float64
		U, V     int
		Expect   float64
	}{
		{"unused", 0.5, 0, 0, 10},
		{"one end used", 0.5, 1, 0, 10},
		{"both used", 0.5, 2, 1, 5},
		{"unset discount", 0, 1, 1, 10},
		{"discount above one", 3, 1, 1, 10},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			c := LandCosts{ReuseDiscount: tt.Discount}
			if got := c.ReuseCost(10, tt.U, tt.V); got != tt.Expect {
				t.Errorf("expected %f got %f", tt.Expect, got)
			}
		})
	}
}
