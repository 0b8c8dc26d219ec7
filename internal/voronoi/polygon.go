package voronoi

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/unixpickle/model3d/model2d"
)

// Polygon is an ordered ring of points, the last point forms an edge
// with the first.
type Polygon struct {
	Points []model2d.Coord
}

// NewPolygon creates and returns a new pointer to a Polygon
func NewPolygon(points []model2d.Coord) *Polygon {
	return &Polygon{Points: points}
}

// Bounds returns the smallest rect containing every point.
func (p *Polygon) Bounds() r2.Rect {
	if len(p.Points) == 0 {
		return r2.EmptyRect()
	}
	rect := r2.RectFromPoints(r2.Point{X: p.Points[0].X, Y: p.Points[0].Y})
	for _, c := range p.Points[1:] {
		rect = rect.AddPoint(r2.Point{X: c.X, Y: c.Y})
	}
	return rect
}

// IsClosed returns whether or not the polygon has an area at all.
func (p *Polygon) IsClosed() bool {
	return len(p.Points) >= 3
}

// Area returns the (unsigned) area of the polygon.
func (p *Polygon) Area() float64 {
	return math.Abs(signedArea(p.Points))
}

// Contains returns whether or not the polygon contains the given point,
// via the even-odd raycast rule.
func (p *Polygon) Contains(point model2d.Coord) bool {
	if !p.IsClosed() {
		return false
	}

	contains := false
	j := len(p.Points) - 1
	for i := 0; i < len(p.Points); i++ {
		a, b := p.Points[i], p.Points[j]
		if (a.Y > point.Y) != (b.Y > point.Y) {
			x := (b.X-a.X)*(point.Y-a.Y)/(b.Y-a.Y) + a.X
			if point.X < x {
				contains = !contains
			}
		}
		j = i
	}

	return contains
}

// signedArea is positive for counter clockwise rings.
func signedArea(pts []model2d.Coord) float64 {
	area := 0.0
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		area += a.X*b.Y - b.X*a.Y
	}
	return area / 2
}

// polygonCentroid returns the area centroid, falling back to the vertex
// mean for degenerate rings.
func polygonCentroid(pts []model2d.Coord) model2d.Coord {
	if len(pts) == 0 {
		return model2d.Coord{}
	}
	area := signedArea(pts)
	if len(pts) < 3 || math.Abs(area) < 1e-12 {
		sum := model2d.Coord{}
		for _, p := range pts {
			sum = sum.Add(p)
		}
		return sum.Scale(1 / float64(len(pts)))
	}

	cx, cy := 0.0, 0.0
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		cross := a.X*b.Y - b.X*a.Y
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
	}
	return model2d.XY(cx/(6*area), cy/(6*area))
}
