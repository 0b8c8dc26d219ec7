package network

import (
	"math"

	"go.uber.org/zap"

	"github.com/voidshard/landgraph/internal/route"
	"github.com/voidshard/landgraph/internal/sched"
)

// nearestRoaded returns the closest road cell to cell on the given landmass
// & its straight line distance, or -1 if the landmass has no roads.
func (b *Builder) nearestRoaded(cell, landmass int) (int, float64) {
	p := b.land.Pos(cell)
	best, bestDist := -1, math.Inf(1)
	for i := 0; i < len(b.usage); i++ {
		if !b.roaded.Get(i) || !b.land.HasNode(i) || b.terrain.Landmass(i) != landmass {
			continue
		}
		if d := p.Dist(b.land.Pos(i)); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// connect lays a secondary road from a settlement to the network. Returns
// false if the settlement is orphaned.
func (b *Builder) connect(s *Settlement) bool {
	lm := b.landmassOf(s)
	if lm < 0 {
		b.log.Warn("settlement is not on land", zap.Int("settlement", s.ID), zap.Int("cell", s.Cell))
		return false
	}
	if b.OnNetwork(s.Cell) {
		return true
	}

	target, dist := b.nearestRoaded(s.Cell, lm)
	if target < 0 {
		b.log.Warn("no roads on settlement's landmass", zap.Int("settlement", s.ID), zap.Int("landmass", lm))
		return false
	}
	if dist <= b.p.SnapThreshold {
		return true
	}

	limit := maxInt(1, b.p.BackfillIterations)
	path, out := route.AStar(b.land, b.cost, s.Cell, target, b.options(limit, 1))
	if out == route.Exhausted {
		path, out = route.AStar(b.land, b.cost, s.Cell, target, b.options(4*limit, 1.5))
	}
	if out != route.Found {
		onNetwork := func(i int) bool {
			return b.roaded.Get(i) && b.terrain.Landmass(i) == lm
		}
		path, out = route.BFS(b.land, b.cost, s.Cell, onNetwork, 4*limit)
	}
	if out != route.Found {
		b.log.Warn("settlement could not be connected",
			zap.Int("settlement", s.ID),
			zap.Int("cell", s.Cell),
			zap.Int("target", target),
		)
		return false
	}

	b.addRoad(Secondary, path, s.ID, -1)
	return true
}

// Backfill joins every settlement that is not a terminal to the road
// network with secondary roads. Settlements that can't be joined are added
// to Orphans. Returns the number of settlements now connected.
func (b *Builder) Backfill(settlements []*Settlement) int {
	bf := b.Backfiller(settlements)
	for bf.RunChunk(sched.DefaultBudget) == sched.Continue {
	}
	return bf.Connected
}

// Backfiller is Backfill split into chunks, one settlement per unit of
// budget.
type Backfiller struct {
	Connected int

	b           *Builder
	settlements []*Settlement
	loop        sched.Loop
}

// Backfiller returns a task that backfills the given settlements.
func (b *Builder) Backfiller(settlements []*Settlement) *Backfiller {
	return &Backfiller{b: b, settlements: settlements}
}

// RunChunk implements sched.Task
func (f *Backfiller) RunChunk(budget int) sched.Status {
	done := f.loop.Step(len(f.settlements), &budget, func(i int) {
		s := f.settlements[i]
		if s.IsTerminal() {
			return
		}
		if f.b.connect(s) {
			f.Connected++
		} else {
			f.b.Orphans = append(f.b.Orphans, s.ID)
		}
	})
	if done {
		f.b.log.Debug("backfill complete", zap.Int("connected", f.Connected), zap.Int("orphans", len(f.b.Orphans)))
		return sched.Done
	}
	return sched.Continue
}
