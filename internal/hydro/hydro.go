// Package hydro classifies cells into sea, lake & land & derives the
// hydrology that follows from it: coast distance, landmasses & rivers.
package hydro

import (
	"hash/fnv"
	"math"

	"github.com/boljen/go-bitmap"
	"go.uber.org/zap"

	"github.com/voidshard/landgraph/internal/heightfield"
	"github.com/voidshard/landgraph/internal/mesh"
	"github.com/voidshard/landgraph/internal/sched"
)

const (
	// Unreached marks land cells no BFS reached (eg. coast step on a map
	// with no water).
	Unreached = math.MaxInt32

	// UnreachedWater marks water cells with no land anywhere.
	UnreachedWater = math.MinInt32

	// sinkMargin is how far below sea level suppressed islands are sunk.
	sinkMargin = 1e-3
)

// Params for classification.
type Params struct {
	SeaLevel float64 `yaml:"seaLevel" json:"seaLevel"`

	// KeepLandmasses keeps the K largest land components. Others smaller
	// than MinLandmassSize are sunk. Both 0 disables suppression.
	KeepLandmasses  int `yaml:"keepLandmasses" json:"keepLandmasses"`
	MinLandmassSize int `yaml:"minLandmassSize" json:"minLandmassSize"`

	LakeMinSize  int     `yaml:"lakeMinSize" json:"lakeMinSize"`
	LakeMinDepth float64 `yaml:"lakeMinDepth" json:"lakeMinDepth"`

	// RiverThreshold is the accumulated flux (in cells) at which a cell
	// carries a river. 0 picks one from the mesh size.
	RiverThreshold float64 `yaml:"riverThreshold" json:"riverThreshold"`
}

// DefaultParams returns reasonable classification settings.
func DefaultParams() Params {
	return Params{
		SeaLevel:        0.35,
		KeepLandmasses:  3,
		MinLandmassSize: 6,
		LakeMinSize:     2,
		LakeMinDepth:    0.01,
	}
}

// Lake is a basin holding water below its spill height.
type Lake struct {
	ID       int
	Spill    float64
	Outlet   int // cell water leaves by, or -1
	Members  []int
	MaxDepth float64
}

// Size is the number of member cells
func (l *Lake) Size() int {
	return len(l.Members)
}

// State is the result of classification. Slices are indexed by cell id.
type State struct {
	SeaLevel float64

	Sea   bitmap.Bitmap
	Water bitmap.Bitmap
	Lake  bitmap.Bitmap

	LakeID []int // -1 if not a lake cell
	Lakes  []*Lake

	// CoastStep is 0 for land touching water, counting up inland. Water
	// touching land is -1, counting down offshore.
	CoastStep []int

	Downhill    []int // steepest descent neighbour, -1 for sinks & water
	Flux        []float64
	RiverDegree []int
	RiverStep   []int
	Slope       []float64

	Region     []int   // landmass id per land cell, -1 for water
	Landmasses [][]int // members per landmass id

	// Suppressed is the number of cells sunk as small islands
	Suppressed int

	// Version identifies the water mask content.
	Version uint32

	n int
}

// Len is the number of cells classified
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return s.n
}

// IsWater returns if cell i is sea or lake
func (s *State) IsWater(i int) bool {
	return s.Water.Get(i)
}

// IsSea returns if cell i is below sea level
func (s *State) IsSea(i int) bool {
	return s.Sea.Get(i)
}

// IsLake returns if cell i is part of a lake
func (s *State) IsLake(i int) bool {
	return s.Lake.Get(i)
}

// IsLand returns if cell i is not water
func (s *State) IsLand(i int) bool {
	return !s.Water.Get(i)
}

// IsCoastal returns if cell i is land touching water
func (s *State) IsCoastal(i int) bool {
	return s.CoastStep[i] == 0
}

// Landmass returns the landmass id of cell i, or -1
func (s *State) Landmass(i int) int {
	return s.Region[i]
}

// newState allocates an empty state for n cells.
func newState(n int, seaLevel float64) *State {
	s := &State{
		SeaLevel:    seaLevel,
		LakeID:      fill(n, -1),
		CoastStep:   fill(n, Unreached),
		Downhill:    fill(n, -1),
		Flux:        make([]float64, n),
		RiverDegree: make([]int, n),
		RiverStep:   fill(n, Unreached),
		Slope:       make([]float64, n),
		Region:      fill(n, -1),
		n:           n,
	}
	if n > 0 {
		s.Sea = bitmap.New(n)
		s.Water = bitmap.New(n)
		s.Lake = bitmap.New(n)
	}
	return s
}

// stamp hashes the water mask so identical masks share a version.
func (s *State) stamp() {
	if s.n == 0 {
		s.Version = 0
		return
	}
	h := fnv.New32a()
	h.Write(s.Water.Data(false))
	s.Version = h.Sum32()
}

func fill(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// step is one resumable pass, returning true once complete.
type step func(budget *int) bool

// each visits every cell once, one unit per cell.
func each(n int, fn func(i int)) step {
	loop := sched.Loop{}
	return func(budget *int) bool {
		return loop.Step(n, budget, fn)
	}
}

// once runs fn as a single unit.
func once(fn func()) step {
	return func(budget *int) bool {
		fn()
		*budget--
		return true
	}
}

// queue is a breadth first frontier that can be drained across chunks.
type queue struct {
	items []int
	next  int
}

func (q *queue) push(i int) {
	q.items = append(q.items, i)
}

// drain pops cells until the queue is empty or budget runs out, one unit
// per cell. visit may push more cells.
func (q *queue) drain(budget *int, visit func(c int)) bool {
	for ; q.next < len(q.items); q.next++ {
		if *budget <= 0 {
			return false
		}
		visit(q.items[q.next])
		*budget--
	}
	return true
}

// Classifier computes a State in resumable passes. Every pass, including
// the basin scan & the graph walks, can stop between any two cells.
type Classifier struct {
	mesh  *mesh.Mesh
	field *heightfield.Field
	p     Params
	log   *zap.Logger

	state *State
	steps []step
	phase int
}

// NewClassifier prepares classification of f over m.
func NewClassifier(m *mesh.Mesh, f *heightfield.Field, p Params, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{mesh: m, field: f, p: p, log: log}
}

// Classify runs every phase at once.
func Classify(m *mesh.Mesh, f *heightfield.Field, p Params, log *zap.Logger) *State {
	c := NewClassifier(m, f, p, log)
	for c.RunChunk(math.MaxInt32) == sched.Continue {
	}
	return c.State()
}

// State returns the result, complete once RunChunk has returned Done.
func (c *Classifier) State() *State {
	return c.state
}

// plan lists the passes in order. Passes share state through the walkers
// declared here, each created once the passes before it are complete.
func (c *Classifier) plan() []step {
	m, f, p, s := c.mesh, c.field, c.p, c.state
	n := m.Len()

	islands := newLabeller(n, func(i int) bool { return !s.Sea.Get(i) })
	regions := newLabeller(n, func(i int) bool { return !s.IsWater(i) })
	coast := &coastWalk{}
	var (
		lakes *lakeScan
		flow  *riverWalk
	)

	return []step{
		// sea mask
		each(n, func(i int) { s.Sea.Set(i, f.Height(i) < p.SeaLevel) }),

		// small islands
		func(budget *int) bool {
			return !suppressing(p) || islands.step(m, budget)
		},
		once(func() { suppressIslands(f, s, islands.out, p, c.log) }),

		// drainage & lakes
		each(n, func(i int) { s.Downhill[i] = downhill(m, f.Heights(), s, i) }),
		once(func() { lakes = newLakeScan(s) }),
		each(n, func(i int) { lakes.visit(m, f.Heights(), s, p, i) }),

		// water mask
		each(n, func(i int) { s.Water.Set(i, s.Sea.Get(i) || s.Lake.Get(i)) }),
		once(s.stamp),

		// coast distance
		each(n, func(i int) { coast.seed(m, s, i) }),
		func(budget *int) bool { return coast.inland(m, s, budget) },
		func(budget *int) bool { return coast.offshore(m, s, budget) },

		// landmasses
		func(budget *int) bool { return regions.step(m, budget) },
		once(func() { s.Landmasses = regions.out }),
		each(n, func(i int) { s.Region[i] = regions.label[i] }),

		// rivers
		once(func() { flow = newRiverWalk(n, p) }),
		each(n, func(i int) { flow.route(s, i) }),
		each(n, func(i int) { flow.count(s, i) }),
		each(n, func(i int) { flow.head(i) }),
		func(budget *int) bool { return flow.accumulate(s, budget) },
		each(n, func(i int) { flow.mark(s, i) }),
		func(budget *int) bool { return flow.spread(m, s, budget) },

		// slope
		each(n, func(i int) { s.Slope[i] = localSlope(m, f.Heights(), i) }),
	}
}

// RunChunk advances classification by about budget cells of work.
func (c *Classifier) RunChunk(budget int) sched.Status {
	if c.state == nil {
		if c.mesh.Len() == 0 || c.field == nil || len(c.field.Heights()) != c.mesh.Len() {
			c.log.Warn("hydrology input not ready, returning empty state")
			c.state = newState(0, c.p.SeaLevel)
			c.state.stamp()
			return sched.Done
		}
		c.state = newState(c.mesh.Len(), c.p.SeaLevel)
		c.steps = c.plan()
	}

	for budget > 0 {
		if c.phase >= len(c.steps) {
			s := c.state
			c.log.Debug("hydrology classified",
				zap.Int("cells", s.n),
				zap.Int("lakes", len(s.Lakes)),
				zap.Int("landmasses", len(s.Landmasses)),
				zap.Int("suppressed", s.Suppressed),
			)
			return sched.Done
		}
		if !c.steps[c.phase](&budget) {
			return sched.Continue
		}
		c.phase++
	}
	return sched.Continue
}

// downhill returns the lowest neighbour of land cell i strictly below it.
func downhill(m *mesh.Mesh, h []float64, s *State, i int) int {
	if s.Sea.Get(i) {
		return -1
	}
	best := -1
	for _, n := range m.Neighbors(i) {
		if h[n] < h[i] && (best < 0 || h[n] < h[best]) {
			best = n
		}
	}
	return best
}

// localSlope is the steepest height change to a neighbour, per mean spacing.
func localSlope(m *mesh.Mesh, h []float64, i int) float64 {
	spacing := m.MeanSpacing()
	slope := 0.0
	for _, n := range m.Neighbors(i) {
		d := m.Dist(i, n)
		if d <= 0 {
			continue
		}
		slope = math.Max(slope, math.Abs(h[i]-h[n])*spacing/d)
	}
	return slope
}
