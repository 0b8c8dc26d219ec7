// Package network lays roads & sea lanes between settlements.
package network

import (
	"github.com/boljen/go-bitmap"
	"github.com/unixpickle/model3d/model2d"
	"go.uber.org/zap"

	"github.com/voidshard/landgraph/internal/graph"
	"github.com/voidshard/landgraph/internal/hydro"
	"github.com/voidshard/landgraph/internal/mesh"
	"github.com/voidshard/landgraph/internal/route"
)

// SettlementKind is what sort of place a settlement is
type SettlementKind string

const (
	Capital SettlementKind = "capital"
	Port    SettlementKind = "port"
	Town    SettlementKind = "town"
)

// RoadKind is what sort of connection a road is
type RoadKind string

const (
	Primary   RoadKind = "primary"
	Secondary RoadKind = "secondary"
	SeaLane   RoadKind = "sea"
)

// Settlement is a place to be connected.
type Settlement struct {
	ID    int            `json:"id"`
	Cell  int            `json:"cell"`
	Kind  SettlementKind `json:"kind"`
	Score float64        `json:"score"`
}

// IsTerminal returns if the settlement anchors the primary network
func (s *Settlement) IsTerminal() bool {
	return s.Kind == Capital || s.Kind == Port
}

// Road is one realized connection. From & To are settlement ids, To is
// -1 for roads joining the existing network.
type Road struct {
	Kind  RoadKind `json:"kind"`
	Cells []int    `json:"cells"`
	From  int      `json:"from"`
	To    int      `json:"to"`
	Cost  float64  `json:"cost"`
}

// Land is the graph roads are routed over.
type Land interface {
	route.Graph
	Len() int
	Weight(u, v int) (float64, bool)
}

// Terrain labels cells.
type Terrain interface {
	Landmass(cell int) int
	IsCoastal(cell int) bool
	IsWater(cell int) bool

	// Adjacent returns every neighbouring cell, land or water.
	Adjacent(cell int) []int
}

// SeaRouter finds sea lanes.
type SeaRouter interface {
	EnsureForTargets(origin int, goals []int) *graph.Tree
}

// Cells adapts a mesh & its hydrology to Terrain.
type Cells struct {
	*hydro.State
	Mesh *mesh.Mesh
}

// Adjacent returns mesh neighbours
func (c Cells) Adjacent(cell int) []int {
	return c.Mesh.Neighbors(cell)
}

// Params tune network building.
type Params struct {
	// MaxIterations caps A* expansions for backbone & repair paths.
	MaxIterations int `yaml:"maxIterations" json:"maxIterations"`

	// RepairCandidates is how many of the closest cross component cell pairs
	// are tried per repair round.
	RepairCandidates int `yaml:"repairCandidates" json:"repairCandidates"`

	// RepairRounds caps repair rounds per landmass.
	RepairRounds int `yaml:"repairRounds" json:"repairRounds"`

	// SnapThreshold is how close to a road a settlement must be to count
	// as connected. Distance is between cell centroids.
	SnapThreshold float64 `yaml:"snapThreshold" json:"snapThreshold"`

	// BackfillIterations caps A* expansions for the first backfill attempt.
	BackfillIterations int `yaml:"backfillIterations" json:"backfillIterations"`
}

// DefaultParams returns reasonable network settings. SnapThreshold is
// left 0, meaning "on a road cell".
func DefaultParams() Params {
	return Params{
		MaxIterations:      50000,
		RepairCandidates:   6,
		RepairRounds:       32,
		BackfillIterations: 4000,
	}
}

// Builder accumulates roads. Each road it lays makes later roads along the
// same cells cheaper.
type Builder struct {
	land    Land
	terrain Terrain
	sea     SeaRouter
	costs   graph.LandCosts
	p       Params
	log     *zap.Logger

	usage   []int
	primary bitmap.Bitmap
	roaded  bitmap.Bitmap

	Roads   []*Road
	Orphans []int // settlement ids
	Bridges int
	Ported  []int // settlement ids promoted to port
}

// NewBuilder returns a builder with no roads. sea may be nil, in which case
// islands are never linked by sea.
func NewBuilder(land Land, terrain Terrain, sea SeaRouter, costs graph.LandCosts, p Params, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	n := land.Len()
	b := &Builder{
		land:    land,
		terrain: terrain,
		sea:     sea,
		costs:   costs,
		p:       p,
		log:     log,
		usage:   make([]int, n),
	}
	if n > 0 {
		b.primary = bitmap.New(n)
		b.roaded = bitmap.New(n)
	}
	return b
}

// Usage returns how many paths have crossed each cell.
func (b *Builder) Usage() []int {
	return b.usage
}

// IsPrimary returns if a primary road crosses cell
func (b *Builder) IsPrimary(cell int) bool {
	return cell >= 0 && cell < len(b.usage) && b.primary.Get(cell)
}

// OnNetwork returns if any land road crosses cell
func (b *Builder) OnNetwork(cell int) bool {
	return cell >= 0 && cell < len(b.usage) && b.roaded.Get(cell)
}

// cost is the land cost with the reuse discount applied.
func (b *Builder) cost(u, v int) float64 {
	w, ok := b.land.Weight(u, v)
	if !ok {
		return w
	}
	return b.costs.ReuseCost(w, b.usage[u], b.usage[v])
}

// options for a search with the given cap
func (b *Builder) options(maxIterations int, scale float64) route.Options {
	return route.Options{
		MaxIterations:  maxIterations,
		MinFactor:      b.costs.Discount(),
		HeuristicScale: scale,
	}
}

// find routes a land path between two cells.
func (b *Builder) find(from, to int) (route.Path, bool) {
	return route.Find(b.land, b.cost, from, to, b.options(b.p.MaxIterations, 1))
}

// MarkPrimary records cells as crossed by a primary road.
func (b *Builder) MarkPrimary(cells []int) {
	for _, c := range cells {
		b.usage[c]++
		b.primary.Set(c, true)
		b.roaded.Set(c, true)
	}
}

// markSecondary records cells as crossed by a secondary road.
func (b *Builder) markSecondary(cells []int) {
	for _, c := range cells {
		b.usage[c]++
		b.roaded.Set(c, true)
	}
}

// addRoad records a road & marks its cells.
func (b *Builder) addRoad(kind RoadKind, p route.Path, from, to int) *Road {
	r := &Road{Kind: kind, Cells: p.Cells, From: from, To: to, Cost: p.Cost}
	switch kind {
	case Primary:
		b.MarkPrimary(p.Cells)
	case Secondary:
		b.markSecondary(p.Cells)
	}
	b.Roads = append(b.Roads, r)
	return r
}

// RoadsOf returns roads of the given kind.
func (b *Builder) RoadsOf(kind RoadKind) []*Road {
	out := []*Road{}
	for _, r := range b.Roads {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Polyline returns the centroids along a road.
func (b *Builder) Polyline(r *Road) []model2d.Coord {
	out := make([]model2d.Coord, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = b.land.Pos(c)
	}
	return out
}

// Build runs every stage in order: backbone, repair, island linkage &
// finally backfill.
func (b *Builder) Build(settlements []*Settlement) {
	b.Backbone(settlements)
	b.Repair(settlements)
	b.LinkIslands(settlements)
	b.Backfill(settlements)
}

// terminalsByLandmass groups terminal settlements, dropping any in water.
// Groups are ordered by landmass id, members keep input order.
func (b *Builder) terminalsByLandmass(settlements []*Settlement) ([]int, map[int][]*Settlement) {
	groups := map[int][]*Settlement{}
	order := []int{}
	for _, s := range settlements {
		if !s.IsTerminal() {
			continue
		}
		lm := b.landmassOf(s)
		if lm < 0 {
			continue
		}
		if _, ok := groups[lm]; !ok {
			order = append(order, lm)
		}
		groups[lm] = append(groups[lm], s)
	}
	sortInts(order)
	return order, groups
}

// landmassOf returns the landmass of a settlement's cell, or -1.
func (b *Builder) landmassOf(s *Settlement) int {
	if s.Cell < 0 || s.Cell >= b.land.Len() || !b.land.HasNode(s.Cell) {
		return -1
	}
	return b.terrain.Landmass(s.Cell)
}
