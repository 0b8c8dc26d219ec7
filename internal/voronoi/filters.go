package voronoi

import (
	"github.com/golang/geo/r2"
	"github.com/unixpickle/model3d/model2d"
)

// CandidateFilter accepts or rejects a candidate point based purely on the
// point itself.
// These filters are run before SiteFilter(s) which naturally require
// us to iterate each site.
type CandidateFilter func(c model2d.Coord) bool

// SiteFilter is a filter for a candidate point that is run against every
// current Site in the builder.
// Ie. we must 'accept' the candidate point when compared with every
// existing Site that we've previously accepted.
type SiteFilter func(candidate, site model2d.Coord) bool

// MinDistance ensures that a candidate point is at least `dist`
// distance away from every other site.
func MinDistance(dist float64) SiteFilter {
	return func(candidate, site model2d.Coord) bool {
		return candidate.Dist(site) >= dist
	}
}

// InsideMargin rejects candidates closer than `margin` to the edge of bounds.
func InsideMargin(bounds r2.Rect, margin float64) CandidateFilter {
	inner := bounds.ExpandedByMargin(-margin)
	return func(c model2d.Coord) bool {
		if inner.IsEmpty() {
			return true
		}
		return inner.ContainsPoint(r2.Point{X: c.X, Y: c.Y})
	}
}
