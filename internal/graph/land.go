package graph

import (
	"math"
)

// LandCosts weights traversal of the land graph. Every multiplier is >= 1
// except the reuse discount, applied per query by whoever tracks road usage.
type LandCosts struct {
	// SlopeWeight scales the average local slope of an edge's ends.
	SlopeWeight float64 `yaml:"slopeWeight" json:"slopeWeight"`

	// RiverPenalty is added per river degree for edges touching a river.
	RiverPenalty float64 `yaml:"riverPenalty" json:"riverPenalty"`

	// CoastAversion surcharges edges touching the shoreline ring.
	CoastAversion float64 `yaml:"coastAversion" json:"coastAversion"`

	// ReuseDiscount in (0,1] multiplies edges between cells already used
	// by a road.
	ReuseDiscount float64 `yaml:"reuseDiscount" json:"reuseDiscount"`
}

// DefaultLandCosts returns the standard road cost model.
func DefaultLandCosts() LandCosts {
	return LandCosts{
		SlopeWeight:   4,
		RiverPenalty:  0.75,
		CoastAversion: 0.2,
		ReuseDiscount: 0.35,
	}
}

// Discount returns a usable reuse discount, 1 if unset or out of range.
func (c LandCosts) Discount() float64 {
	if c.ReuseDiscount <= 0 || c.ReuseDiscount > 1 {
		return 1
	}
	return c.ReuseDiscount
}

// BuildLand returns the graph over non water cells.
func BuildLand(in Inputs, c LandCosts) *Graph {
	g := newGraph(Land, in.Mesh, in.Stamp())
	if !in.Ready() {
		return g
	}
	g.MinFactor = c.Discount()

	s := in.Hydro
	m := in.Mesh
	g.build(s.IsLand, func(u, v int) float64 {
		slope := 1 + c.SlopeWeight*(s.Slope[u]+s.Slope[v])/2

		river := 1.0
		if deg := maxInt(s.RiverDegree[u], s.RiverDegree[v]); deg > 0 {
			river += c.RiverPenalty * float64(deg)
		}

		coast := 1.0
		if s.CoastStep[u] == 0 || s.CoastStep[v] == 0 {
			coast += c.CoastAversion
		}

		return m.Dist(u, v) * math.Max(1, slope) * math.Max(1, river) * math.Max(1, coast)
	})
	return g
}

// ReuseCost discounts a base weight w when both ends already carry a road.
func (c LandCosts) ReuseCost(w float64, usageU, usageV int) float64 {
	if usageU > 0 && usageV > 0 {
		return w * c.Discount()
	}
	return w
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
