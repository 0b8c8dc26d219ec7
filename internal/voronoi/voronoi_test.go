package voronoi

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/unixpickle/model3d/model2d"
)

func testBounds() r2.Rect {
	return r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: 100, Y: 100})
}

func gridBuilder(t *testing.T) *Builder {
	b := NewBuilder(testBounds(), rand.New(rand.NewSource(1)))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if _, ok := b.AddSite(model2d.XY(float64(x)*30+20, float64(y)*30+20)); !ok {
				t.Fatalf("site %d,%d rejected", x, y)
			}
		}
	}
	return b
}

func TestGridNeighbours(t *testing.T) {
	v, err := gridBuilder(t).Voronoi()
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		Site   int
		Expect []int
	}{
		{0, []int{1, 3}},
		{4, []int{1, 3, 5, 7}},
		{8, []int{5, 7}},
	}

	for _, c := range cases {
		got := v.SiteByID(c.Site).Neighbours
		if len(got) != len(c.Expect) {
			t.Errorf("site %d expected neighbours %v got %v", c.Site, c.Expect, got)
			continue
		}
		for i := range got {
			if got[i] != c.Expect[i] {
				t.Errorf("site %d expected neighbours %v got %v", c.Site, c.Expect, got)
				break
			}
		}
	}

	if v.SiteByID(4).Border {
		t.Error("centre site should not touch the border")
	}
	if !v.SiteByID(0).Border {
		t.Error("corner site should touch the border")
	}
}

func TestRandomSymmetric(t *testing.T) {
	b := NewBuilder(testBounds(), rand.New(rand.NewSource(42)))
	for i := 0; i < 200; i++ {
		b.AddRandomSite()
	}
	if err := b.Relax(); err != nil {
		t.Fatal(err)
	}
	v, err := b.Voronoi()
	if err != nil {
		t.Fatal(err)
	}

	totalArea := 0.0
	for _, s := range v.Sites() {
		if len(s.Polygon) < 3 {
			t.Fatalf("site %d has degenerate polygon", s.ID)
		}
		if !s.Contains(s.Center) {
			t.Errorf("site %d does not contain its centre", s.ID)
		}
		totalArea += NewPolygon(s.Polygon).Area()
		for _, n := range s.Neighbours {
			found := false
			for _, back := range v.SiteByID(n).Neighbours {
				if back == s.ID {
					found = true
				}
			}
			if !found {
				t.Errorf("site %d lists %d but not vice versa", s.ID, n)
			}
		}
	}

	if math.Abs(totalArea-100*100) > 1e-3 {
		t.Errorf("cells should tile the bounds, got area %f", totalArea)
	}
}

func TestCoincidentSitesAreTwinned(t *testing.T) {
	b := NewBuilder(testBounds(), nil)
	b.AddSite(model2d.XY(25, 50))
	b.AddSite(model2d.XY(75, 50))
	b.AddSite(model2d.XY(75, 50))

	v, err := b.Voronoi()
	if err != nil {
		t.Fatal(err)
	}

	twin := v.SiteByID(2)
	if twin.Twin != 1 {
		t.Fatalf("expected twin 1 got %d", twin.Twin)
	}
	if len(twin.Polygon) != 1 {
		t.Errorf("expected single point polygon, got %d points", len(twin.Polygon))
	}
	found := false
	for _, n := range v.SiteByID(1).Neighbours {
		if n == 2 {
			found = true
		}
	}
	if !found {
		t.Error("twin link should be symmetric")
	}
}

func TestNoSites(t *testing.T) {
	_, err := NewBuilder(testBounds(), nil).Voronoi()
	if err != ErrNoSites {
		t.Errorf("expected ErrNoSites got %v", err)
	}
}

func TestFilters(t *testing.T) {
	b := NewBuilder(testBounds(), nil)
	b.SetSiteFilters(MinDistance(10))
	b.SetCandidateFilters(InsideMargin(testBounds(), 5))

	if _, ok := b.AddSite(model2d.XY(50, 50)); !ok {
		t.Fatal("first site should be accepted")
	}
	if _, ok := b.AddSite(model2d.XY(55, 50)); ok {
		t.Error("site too close should be rejected")
	}
	if _, ok := b.AddSite(model2d.XY(2, 50)); ok {
		t.Error("site in margin should be rejected")
	}
	if _, ok := b.AddSite(model2d.XY(150, 50)); ok {
		t.Error("site out of bounds should be rejected")
	}
}
