// Package landgraph generates a fictional landmass over a Voronoi cell
// mesh: heights, the water those heights imply & a road network joining
// caller supplied settlements.
package landgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voidshard/landgraph/internal/encoding"
	"github.com/voidshard/landgraph/internal/graph"
	"github.com/voidshard/landgraph/internal/heightfield"
	"github.com/voidshard/landgraph/internal/hydro"
	"github.com/voidshard/landgraph/internal/mesh"
	"github.com/voidshard/landgraph/internal/network"
	"github.com/voidshard/landgraph/internal/outline"
	"github.com/voidshard/landgraph/internal/route"
	"github.com/voidshard/landgraph/internal/sched"
)

var (
	// ErrInputNotReady implies a stage was asked to run before what it
	// depends on exists (eg. roads before land).
	ErrInputNotReady = mesh.ErrInputNotReady

	// ErrNoPath is returned when two cells can't be joined.
	ErrNoPath = fmt.Errorf("no path between cells")

	// ErrStaleRun is returned by a run superseded by a newer one. Callers
	// should ignore it, the newer run carries on.
	ErrStaleRun = sched.ErrStaleRun

	// ErrInvalidConfig is wrapped by every Config.Validate error.
	ErrInvalidConfig = fmt.Errorf("invalid config")

	// ErrUnknownTemplate is returned when the configured template isn't
	// registered.
	ErrUnknownTemplate = heightfield.ErrUnknownTemplate
)

// Session holds one generated landmass & the caches used to route over it.
//
// Every Generate, ApplyTemplate, Reclassify or BuildNetwork call starts a
// new run. Runs proceed in chunks; a run notices at its next chunk boundary
// that a newer run has begun & stops with ErrStaleRun, leaving the previous
// results in place. Results are published only when a run completes, so
// reads never see a half built landmass.
type Session struct {
	// Yield is called between chunks of work. It may read results but must
	// not call Path or start another run from the same goroutine. Optional.
	Yield func()

	cfg       Config
	log       *zap.Logger
	templates *heightfield.Registry
	cache     *graph.Cache

	guard sched.Guard
	mu    sync.Mutex   // held by the running run, and by Path
	view  sync.RWMutex // guards published results below

	runID       string
	mesh        *mesh.Mesh
	field       *heightfield.Field
	hydro       *hydro.State
	fallback    bool
	net         *network.Builder
	settlements []*Settlement
}

// New creates a session. No land exists until Generate is called.
func New(cfg Config, log *zap.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Session{
		cfg:       cfg,
		log:       log,
		templates: cfg.registry(),
		cache:     graph.NewCache(cfg.Roads.Costs, cfg.Sea, log),
	}
	if _, err := s.templates.Get(cfg.Terrain.Template); err != nil {
		return nil, err
	}
	return s, nil
}

// Config the session was made with, with any later template or sea level
// changes applied.
func (s *Session) Config() Config {
	s.view.RLock()
	defer s.view.RUnlock()
	return s.cfg
}

// Templates returns the names of every usable template.
func (s *Session) Templates() []string {
	return s.templates.Names()
}

// RunID identifies the land from the last completed run that changed it,
// empty before the first.
func (s *Session) RunID() string {
	s.view.RLock()
	defer s.view.RUnlock()
	return s.runID
}

// begin supersedes any in flight run & waits for it to stop. The caller
// must unlock s.mu.
func (s *Session) begin(op string) (uint64, string, *sched.Runner, *zap.Logger) {
	token := s.guard.Begin()
	s.mu.Lock()

	runID := uuid.NewString()
	log := s.log.With(
		zap.String("op", op),
		zap.String("run_id", runID),
		zap.Uint64("token", token),
	)
	return token, runID, &sched.Runner{
		Budget: s.cfg.Schedule.Budget,
		Yield:  s.Yield,
		Guard:  &s.guard,
		Log:    log,
	}, log
}

// finish logs how a run ended.
func finish(log *zap.Logger, err error) error {
	switch {
	case err == nil:
		log.Debug("run complete")
	case errors.Is(err, ErrStaleRun):
		log.Debug("run superseded")
	default:
		log.Warn("run failed", zap.Error(err))
	}
	return err
}

// once runs fn as a single chunk, returning the error it sets.
func once(ctx context.Context, runner *sched.Runner, token uint64, fn func() error) error {
	var stageErr error
	err := runner.Run(ctx, token, sched.Once(func() { stageErr = fn() }))
	if err != nil {
		return err
	}
	return stageErr
}

// paint applies tmpl to f, then makes sure some land clears sea level.
func (s *Session) paint(f *heightfield.Field, tmpl *heightfield.Template, rng *rand.Rand, seaLevel float64) (bool, error) {
	if err := f.Apply(tmpl, rng); err != nil {
		return false, err
	}
	floor := math.Min(1, seaLevel+s.cfg.Terrain.LandMargin)
	return f.EnsureLand(floor), nil
}

// classify runs hydrology over f in chunks.
func classify(ctx context.Context, runner *sched.Runner, token uint64, m *mesh.Mesh, f *heightfield.Field, p hydro.Params, log *zap.Logger) (*hydro.State, error) {
	classifier := hydro.NewClassifier(m, f, p, log)
	if err := runner.Run(ctx, token, classifier); err != nil {
		return nil, err
	}
	return classifier.State(), nil
}

// publish swaps in new land, dropping any road network built on the old.
// The caller holds s.mu.
func (s *Session) publish(log *zap.Logger, runID string, m *mesh.Mesh, f *heightfield.Field, st *hydro.State, fallback bool, cfg Config) {
	s.view.Lock()
	s.mesh, s.field, s.hydro, s.fallback = m, f, st, fallback
	s.net, s.settlements = nil, nil
	s.runID = runID
	s.cfg = cfg
	stats := s.stats()
	s.view.Unlock()

	s.cache.Invalidate()

	log.Info("land published",
		zap.String("seed", cfg.Seed),
		zap.String("template", cfg.Terrain.Template),
		zap.Float64("sea_level", cfg.Hydro.SeaLevel),
		zap.Int("cells", stats.Cells),
		zap.Int("land", stats.Land),
		zap.Int("lakes", stats.Lakes),
		zap.Int("landmasses", stats.Landmasses),
	)
}

// Generate builds the mesh, height field & hydrology from the configured
// seed. Identical configs produce identical land. Any existing road
// network is dropped.
func (s *Session) Generate(ctx context.Context) error {
	token, runID, runner, log := s.begin("generate")
	defer s.mu.Unlock()

	cfg := s.cfg
	tmpl, err := s.templates.Get(cfg.Terrain.Template)
	if err != nil {
		return finish(log, err)
	}

	seed := SeedFrom(cfg.Seed)
	rng := rand.New(rand.NewSource(seed))

	var (
		m        *mesh.Mesh
		f        *heightfield.Field
		fallback bool
	)
	err = once(ctx, runner, token, func() (err error) {
		m, err = mesh.Build(cfg.Mesh, rng)
		return err
	})
	if err != nil {
		return finish(log, err)
	}

	err = once(ctx, runner, token, func() (err error) {
		f = heightfield.New(m, seed, cfg.Terrain.Blobs, log)
		fallback, err = s.paint(f, tmpl, rng, cfg.Hydro.SeaLevel)
		return err
	})
	if err != nil {
		return finish(log, err)
	}

	st, err := classify(ctx, runner, token, m, f, cfg.Hydro, log)
	if err != nil {
		return finish(log, err)
	}

	s.publish(log, runID, m, f, st, fallback, cfg)
	return finish(log, nil)
}

// ApplyTemplate clears the heights & paints the named template over the
// existing mesh, then reclassifies water. The result is deterministic for
// a given seed & template. Any existing road network is dropped.
func (s *Session) ApplyTemplate(ctx context.Context, name string) error {
	token, runID, runner, log := s.begin("template")
	defer s.mu.Unlock()

	if s.field == nil {
		return finish(log, fmt.Errorf("%w: generate land before applying a template", ErrInputNotReady))
	}
	tmpl, err := s.templates.Get(name)
	if err != nil {
		return finish(log, err)
	}

	cfg := s.cfg
	cfg.Terrain.Template = tmpl.Name

	f := s.field.Clone()
	var fallback bool
	err = once(ctx, runner, token, func() (err error) {
		f.Clear()
		rng := rand.New(rand.NewSource(SeedFrom(cfg.Seed)))
		fallback, err = s.paint(f, tmpl, rng, cfg.Hydro.SeaLevel)
		return err
	})
	if err != nil {
		return finish(log, err)
	}

	st, err := classify(ctx, runner, token, s.mesh, f, cfg.Hydro, log)
	if err != nil {
		return finish(log, err)
	}

	s.publish(log, runID, s.mesh, f, st, fallback, cfg)
	return finish(log, nil)
}

// Reclassify reruns water classification at a new sea level over the
// current heights, without synthesizing them again. Any existing road
// network is dropped.
func (s *Session) Reclassify(ctx context.Context, seaLevel float64) error {
	token, runID, runner, log := s.begin("reclassify")
	defer s.mu.Unlock()

	if seaLevel < 0 || seaLevel > 1 || math.IsNaN(seaLevel) {
		return finish(log, fmt.Errorf("%w: sea level must be in [0,1], got %f", ErrInvalidConfig, seaLevel))
	}
	if s.field == nil {
		return finish(log, fmt.Errorf("%w: generate land before reclassifying", ErrInputNotReady))
	}

	cfg := s.cfg
	cfg.Hydro.SeaLevel = seaLevel

	// island suppression lowers heights, so work on a copy until published
	f := s.field.Clone()
	st, err := classify(ctx, runner, token, s.mesh, f, cfg.Hydro, log)
	if err != nil {
		return finish(log, err)
	}

	s.publish(log, runID, s.mesh, f, st, s.fallback, cfg)
	return finish(log, nil)
}

// inputs for the graph cache
func (s *Session) inputs() graph.Inputs {
	in := graph.Inputs{Mesh: s.mesh, Hydro: s.hydro}
	if s.field != nil {
		in.HeightVersion = s.field.Version()
	}
	return in
}

// BuildNetwork lays roads joining settlements: a primary network between
// capitals & ports, bridges where that network came out split, sea lanes
// to islands & finally secondary roads from towns. Settlements are copied,
// the originals aren't modified.
func (s *Session) BuildNetwork(ctx context.Context, settlements []*Settlement) (*Network, error) {
	token, _, runner, log := s.begin("network")
	defer s.mu.Unlock()

	if s.hydro.Len() == 0 {
		return nil, finish(log, fmt.Errorf("%w: generate land before building roads", ErrInputNotReady))
	}

	own := make([]*Settlement, len(settlements))
	for i, st := range settlements {
		cp := *st
		own[i] = &cp
	}

	in := s.inputs()
	var sea network.SeaRouter
	if router := s.cache.Router(in); router.Graph().NodeCount() > 0 {
		sea = router
	}
	b := network.NewBuilder(
		s.cache.Land(in),
		network.Cells{State: s.hydro, Mesh: s.mesh},
		sea,
		s.cfg.Roads.Costs,
		s.cfg.Roads.Network,
		log,
	)

	err := runner.Run(ctx, token, sched.Chain(
		sched.Once(func() { b.Backbone(own) }),
		sched.Once(func() { b.Repair(own) }),
		sched.Once(func() { b.LinkIslands(own) }),
		b.Backfiller(own),
	))
	if err != nil {
		return nil, finish(log, err)
	}

	s.view.Lock()
	s.net, s.settlements = b, own
	out := s.network()
	s.view.Unlock()

	log.Info("network built",
		zap.Int("settlements", len(own)),
		zap.Int("roads", len(b.Roads)),
		zap.Int("bridges", b.Bridges),
		zap.Int("orphans", len(b.Orphans)),
	)
	return out, finish(log, nil)
}

// network summarizes the last built network
func (s *Session) network() *Network {
	if s.net == nil {
		return nil
	}
	return &Network{
		Roads:   s.net.Roads,
		Orphans: s.net.Orphans,
		Bridges: s.net.Bridges,
		Ported:  s.net.Ported,
	}
}

// Path returns the cheapest land route between two cells under the
// current road network (roads already laid are discounted). Waits for
// any run in flight.
func (s *Session) Path(from, to int) ([]int, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydro.Len() == 0 {
		return nil, 0, ErrInputNotReady
	}
	land := s.cache.Land(s.inputs())

	cost := land.Cost
	if s.net != nil {
		usage := s.net.Usage()
		costs := s.cfg.Roads.Costs
		cost = func(u, v int) float64 {
			w, _ := land.Weight(u, v)
			return costs.ReuseCost(w, usage[u], usage[v])
		}
	}

	p, ok := route.Find(land, cost, from, to, route.Options{
		MaxIterations: s.cfg.Roads.Network.MaxIterations,
		MinFactor:     land.MinFactor,
	})
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d -> %d", ErrNoPath, from, to)
	}
	return p.Cells, p.Cost, nil
}

// Size of the domain
func (s *Session) Size() (float64, float64) {
	s.view.RLock()
	defer s.view.RUnlock()
	return s.cfg.Mesh.Width, s.cfg.Mesh.Height
}

// Len is the number of cells, 0 before Generate.
func (s *Session) Len() int {
	s.view.RLock()
	defer s.view.RUnlock()
	return s.hydro.Len()
}

// Nearest returns the cell closest to (x,y), or -1 before Generate.
func (s *Session) Nearest(x, y float64) int {
	s.view.RLock()
	defer s.view.RUnlock()
	if s.hydro.Len() == 0 {
		return -1
	}
	return s.mesh.Nearest(toCoord(Point{X: x, Y: y}))
}

// Cell returns everything known about cell i. Before Generate, or for an
// unknown id, the result has ID -1 & no flags set.
func (s *Session) Cell(i int) CellInfo {
	s.view.RLock()
	defer s.view.RUnlock()
	return s.cell(i)
}

// cell builds the view of cell i; the caller holds s.view.
func (s *Session) cell(i int) CellInfo {
	if i < 0 || i >= s.hydro.Len() {
		return CellInfo{ID: -1, Landmass: -1, Lake: -1}
	}
	c := s.mesh.Cells[i]
	h := s.hydro

	usage, road, primary := 0, false, false
	if s.net != nil {
		usage = s.net.Usage()[i]
		road = s.net.OnNetwork(i)
		primary = s.net.IsPrimary(i)
	}

	return CellInfo{
		ID:        i,
		Centroid:  fromCoord(c.Centroid),
		Polygon:   fromCoords(c.Polygon),
		Neighbors: c.Neighbors,
		Height:    s.field.Height(i),
		Flags: encoding.PackFlags(
			h.IsWater(i),
			h.IsSea(i),
			h.IsLake(i),
			h.IsCoastal(i),
			c.Border,
			h.RiverDegree[i] > 0,
			road,
			primary,
		),
		CoastStep:   h.CoastStep[i],
		RiverStep:   h.RiverStep[i],
		RiverDegree: h.RiverDegree[i],
		Flux:        h.Flux[i],
		Slope:       h.Slope[i],
		Landmass:    h.Region[i],
		Lake:        h.LakeID[i],
		Usage:       usage,
	}
}

// Cells returns every CellInfo in id order.
func (s *Session) Cells() []CellInfo {
	s.view.RLock()
	defer s.view.RUnlock()
	return s.cells()
}

func (s *Session) cells() []CellInfo {
	out := make([]CellInfo, s.hydro.Len())
	for i := range out {
		out[i] = s.cell(i)
	}
	return out
}

// Lakes returns every lake, nil before Generate.
func (s *Session) Lakes() []*Lake {
	s.view.RLock()
	defer s.view.RUnlock()
	if s.hydro == nil {
		return nil
	}
	return s.hydro.Lakes
}

// Landmasses returns the cells of each landmass, by landmass id.
func (s *Session) Landmasses() [][]int {
	s.view.RLock()
	defer s.view.RUnlock()
	if s.hydro == nil {
		return nil
	}
	return s.hydro.Landmasses
}

// Coastline returns the land / water boundary as polylines. Closed loops
// repeat their first point at the end.
func (s *Session) Coastline() [][]Point {
	s.view.RLock()
	defer s.view.RUnlock()
	return s.coastline()
}

func (s *Session) coastline() [][]Point {
	if s.hydro.Len() == 0 {
		return nil
	}
	segs := outline.Circuit(s.mesh, s.hydro.IsLand, false)
	chains := outline.Chains(segs)

	out := make([][]Point, len(chains))
	for i, c := range chains {
		out[i] = fromCoords(c)
	}
	return out
}

// Settlements as last given to BuildNetwork, with promotions applied.
func (s *Session) Settlements() []*Settlement {
	s.view.RLock()
	defer s.view.RUnlock()
	return s.settlements
}

// Roads laid by the last BuildNetwork
func (s *Session) Roads() []*Road {
	s.view.RLock()
	defer s.view.RUnlock()
	if s.net == nil {
		return nil
	}
	return s.net.Roads
}

// Orphans are ids of settlements the last BuildNetwork couldn't connect.
func (s *Session) Orphans() []int {
	s.view.RLock()
	defer s.view.RUnlock()
	if s.net == nil {
		return nil
	}
	return s.net.Orphans
}

// Polyline returns the cell centroids along a road.
func (s *Session) Polyline(r *Road) []Point {
	s.view.RLock()
	defer s.view.RUnlock()
	out := make([]Point, 0, len(r.Cells))
	for _, c := range r.Cells {
		if c < 0 || c >= s.mesh.Len() {
			continue
		}
		out = append(out, fromCoord(s.mesh.Pos(c)))
	}
	return out
}

// RenderMesh writes a debug png of the raw cell diagram to fpath.
func (s *Session) RenderMesh(fpath string) error {
	s.view.RLock()
	defer s.view.RUnlock()
	if s.hydro.Len() == 0 {
		return ErrInputNotReady
	}
	return s.mesh.Render(fpath)
}

// Stats returns counts about the current land.
func (s *Session) Stats() Stats {
	s.view.RLock()
	defer s.view.RUnlock()
	return s.stats()
}

func (s *Session) stats() Stats {
	st := Stats{Cells: s.hydro.Len(), FallbackLand: s.fallback}
	if st.Cells == 0 {
		return st
	}
	for i := 0; i < st.Cells; i++ {
		if s.hydro.IsWater(i) {
			st.Water++
		} else {
			st.Land++
		}
		if s.hydro.RiverDegree[i] > 0 {
			st.Rivers++
		}
	}
	st.Lakes = len(s.hydro.Lakes)
	st.Landmasses = len(s.hydro.Landmasses)
	st.Suppressed = s.hydro.Suppressed
	return st
}

// Snapshot returns the session state as json.
func (s *Session) Snapshot() ([]byte, error) {
	s.view.RLock()
	defer s.view.RUnlock()

	if s.hydro.Len() == 0 {
		return nil, ErrInputNotReady
	}
	return json.Marshal(&Snapshot{
		RunID:       s.runID,
		Seed:        s.cfg.Seed,
		Width:       s.cfg.Mesh.Width,
		Height:      s.cfg.Mesh.Height,
		SeaLevel:    s.hydro.SeaLevel,
		Stats:       s.stats(),
		Cells:       s.cells(),
		Lakes:       s.hydro.Lakes,
		Coastline:   s.coastline(),
		Settlements: s.settlements,
		Network:     s.network(),
	})
}
