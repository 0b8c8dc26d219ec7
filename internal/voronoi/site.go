package voronoi

import (
	"github.com/golang/geo/r2"
	"github.com/unixpickle/model3d/model2d"
)

// Site is one cell of the diagram.
type Site struct {
	ID     int
	Center model2d.Coord

	// Polygon is ordered counter clockwise. A site that coincides with an
	// earlier site gets a single point polygon (its centre).
	Polygon []model2d.Coord

	// Neighbours share an edge with this site, sorted ascending.
	Neighbours []int

	// Twin is the id of the earlier site this one coincides with, or -1.
	Twin int

	// Border is set if the polygon touches the diagram bounds.
	Border bool
}

// Centroid returns the area centroid of the site polygon.
func (s *Site) Centroid() model2d.Coord {
	return polygonCentroid(s.Polygon)
}

// Bounds returns a rect containing the whole polygon.
func (s *Site) Bounds() r2.Rect {
	return (&Polygon{Points: s.Polygon}).Bounds()
}

// Contains returns if the polygon contains p.
func (s *Site) Contains(p model2d.Coord) bool {
	return (&Polygon{Points: s.Polygon}).Contains(p)
}

// Edges returns consecutive vertex pairs around the polygon.
func (s *Site) Edges() [][2]model2d.Coord {
	if len(s.Polygon) < 2 {
		return nil
	}
	out := make([][2]model2d.Coord, len(s.Polygon))
	for i, p := range s.Polygon {
		out[i] = [2]model2d.Coord{p, s.Polygon[(i+1)%len(s.Polygon)]}
	}
	return out
}
