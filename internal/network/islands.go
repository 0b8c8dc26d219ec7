package network

import (
	"math"

	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"

	"github.com/voidshard/landgraph/internal/route"
)

// LinkIslands connects landmasses that have settlements but no roads yet.
// The best scoring coastal settlement of each such island becomes a port,
// gets a sea lane to the nearest mainland port or capital & every other
// settlement on the island is joined to it by a secondary road.
// Returns the number of islands linked by sea.
func (b *Builder) LinkIslands(settlements []*Settlement) int {
	byLandmass := map[int][]*Settlement{}
	order := []int{}
	for _, s := range settlements {
		lm := b.landmassOf(s)
		if lm < 0 {
			continue
		}
		if _, ok := byLandmass[lm]; !ok {
			order = append(order, lm)
		}
		byLandmass[lm] = append(byLandmass[lm], s)
	}
	sortInts(order)

	// mainland is anywhere the backbone already reached, or that has a capital
	mainland := mapset.New[int]()
	for _, lm := range order {
		for _, s := range byLandmass[lm] {
			if s.Kind == Capital || b.IsPrimary(s.Cell) {
				mainland.Put(lm)
			}
		}
	}

	linked := 0
	for _, lm := range order {
		if mainland.Has(lm) {
			continue
		}
		island := byLandmass[lm]

		port := b.pickPort(island)
		if port == nil {
			b.log.Warn("island has no coastal settlement to serve as a port", zap.Int("landmass", lm))
			continue
		}
		if port.Kind != Port {
			port.Kind = Port
			b.Ported = append(b.Ported, port.ID)
		}
		b.roaded.Set(port.Cell, true)

		targets := []*Settlement{}
		for _, other := range order {
			if !mainland.Has(other) {
				continue
			}
			for _, s := range byLandmass[other] {
				if s.Kind == Port || s.Kind == Capital {
					targets = append(targets, s)
				}
			}
		}
		if b.seaLane(port, targets) {
			linked++
		} else {
			b.log.Warn("no sea lane found for island", zap.Int("landmass", lm), zap.Int("port", port.ID))
		}

		for _, s := range island {
			if s == port || s.Cell == port.Cell {
				continue
			}
			path, ok := b.find(s.Cell, port.Cell)
			if !ok {
				continue // left to backfill
			}
			b.addRoad(Secondary, path, s.ID, port.ID)
		}
	}
	return linked
}

// pickPort returns the best scoring coastal settlement, existing ports
// first. Ties go to the earliest settlement.
func (b *Builder) pickPort(island []*Settlement) *Settlement {
	var best *Settlement
	for _, s := range island {
		if !b.terrain.IsCoastal(s.Cell) {
			continue
		}
		switch {
		case best == nil:
			best = s
		case s.Kind == Port && best.Kind != Port:
			best = s
		case (s.Kind == Port) == (best.Kind == Port) && s.Score > best.Score:
			best = s
		}
	}
	return best
}

// waterSide returns the water neighbours of a coastal cell.
func (b *Builder) waterSide(cell int) []int {
	out := []int{}
	for _, n := range b.terrain.Adjacent(cell) {
		if b.terrain.IsWater(n) {
			out = append(out, n)
		}
	}
	return out
}

// seaLane routes from the port's waters to the nearest target's waters.
func (b *Builder) seaLane(port *Settlement, targets []*Settlement) bool {
	if b.sea == nil || len(targets) == 0 {
		return false
	}
	origins := b.waterSide(port.Cell)
	if len(origins) == 0 {
		return false
	}

	goalOwner := map[int]*Settlement{}
	goals := []int{}
	for _, t := range targets {
		for _, w := range b.waterSide(t.Cell) {
			if _, ok := goalOwner[w]; !ok {
				goalOwner[w] = t
				goals = append(goals, w)
			}
		}
	}
	if len(goals) == 0 {
		return false
	}

	bestCost := math.Inf(1)
	var bestPath []int
	var bestTarget *Settlement
	for _, o := range origins {
		tree := b.sea.EnsureForTargets(o, goals)
		for _, g := range goals {
			cells, cost, ok := tree.PathTo(g)
			if ok && cost < bestCost {
				bestCost, bestPath, bestTarget = cost, cells, goalOwner[g]
			}
		}
	}
	if bestTarget == nil {
		return false
	}

	cells := append([]int{port.Cell}, bestPath...)
	cells = append(cells, bestTarget.Cell)
	b.addRoad(SeaLane, route.Path{Cells: cells, Cost: bestCost}, port.ID, bestTarget.ID)
	return true
}
