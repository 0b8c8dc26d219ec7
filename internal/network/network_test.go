package network

import (
	"math"
	"testing"

	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/landgraph/internal/graph"
	"github.com/voidshard/landgraph/internal/sched"
)

// mockWorld is a 4-connected unit grid. Each cell carries a landmass label,
// -1 is water & -2 is impassable land of landmass 0.
type mockWorld struct {
	width, height int
	labels        []int
}

func newMockWorld(rows ...string) *mockWorld {
	w := &mockWorld{width: len(rows[0]), height: len(rows)}
	for _, row := range rows {
		for _, c := range row {
			switch {
			case c == '~':
				w.labels = append(w.labels, -1)
			case c == '#':
				w.labels = append(w.labels, -2)
			default:
				w.labels = append(w.labels, int(c-'0'))
			}
		}
	}
	return w
}

func (w *mockWorld) id(x, y int) int {
	return y*w.width + x
}

func (w *mockWorld) Len() int {
	return len(w.labels)
}

func (w *mockWorld) HasNode(i int) bool {
	return i >= 0 && i < len(w.labels) && w.labels[i] >= 0
}

func (w *mockWorld) Pos(i int) model2d.Coord {
	return model2d.XY(float64(i%w.width), float64(i/w.width))
}

func (w *mockWorld) Adjacent(i int) []int {
	x, y := i%w.width, i/w.width
	out := []int{}
	for _, d := range [][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}} {
		nx, ny := x+d[0], y+d[1]
		if nx >= 0 && ny >= 0 && nx < w.width && ny < w.height {
			out = append(out, w.id(nx, ny))
		}
	}
	return out
}

func (w *mockWorld) Neighbors(i int) []int {
	out := []int{}
	for _, n := range w.Adjacent(i) {
		if w.HasNode(n) {
			out = append(out, n)
		}
	}
	return out
}

func (w *mockWorld) Weight(u, v int) (float64, bool) {
	if !w.HasNode(u) || !w.HasNode(v) {
		return math.Inf(1), false
	}
	return w.Pos(u).Dist(w.Pos(v)), true
}

func (w *mockWorld) Landmass(i int) int {
	if w.labels[i] == -2 {
		return 0
	}
	return w.labels[i]
}

func (w *mockWorld) IsWater(i int) bool {
	return w.labels[i] == -1
}

func (w *mockWorld) IsCoastal(i int) bool {
	if w.IsWater(i) {
		return false
	}
	for _, n := range w.Adjacent(i) {
		if w.IsWater(n) {
			return true
		}
	}
	return false
}

// EnsureForTargets is a unit cost BFS over water.
func (w *mockWorld) EnsureForTargets(origin int, goals []int) *graph.Tree {
	t := &graph.Tree{Origin: origin, Dist: make([]float64, w.Len()), Prev: make([]int, w.Len()), Complete: true}
	for i := range t.Dist {
		t.Dist[i] = math.Inf(1)
		t.Prev[i] = -1
	}
	t.Dist[origin] = 0
	queue := []int{origin}
	for q := 0; q < len(queue); q++ {
		cur := queue[q]
		for _, n := range w.Adjacent(cur) {
			if !w.IsWater(n) || !math.IsInf(t.Dist[n], 1) {
				continue
			}
			t.Dist[n] = t.Dist[cur] + 1
			t.Prev[n] = cur
			queue = append(queue, n)
		}
	}
	return t
}

func newTestBuilder(w *mockWorld, p Params) *Builder {
	return NewBuilder(w, w, w, graph.DefaultLandCosts(), p, nil)
}

func grid(width, height int) *mockWorld {
	rows := []string{}
	for y := 0; y < height; y++ {
		row := ""
		for x := 0; x < width; x++ {
			row += "0"
		}
		rows = append(rows, row)
	}
	return newMockWorld(rows...)
}

func checkContiguous(t *testing.T, w *mockWorld, r *Road) {
	t.Helper()
	for i := 1; i < len(r.Cells); i++ {
		if d := w.Pos(r.Cells[i-1]).Dist(w.Pos(r.Cells[i])); d != 1 {
			t.Errorf("road %v steps %d -> %d which are not adjacent", r.Cells, r.Cells[i-1], r.Cells[i])
		}
	}
}

func TestBackbone(t *testing.T) {
	cases := []struct {
		Name      string
		Terminals [][2]int
		Expect    int
	}{
		{"one", [][2]int{{3, 3}}, 0},
		{"two", [][2]int{{0, 0}, {9, 0}}, 1},
		{"corners", [][2]int{{0, 0}, {9, 0}, {0, 9}, {9, 9}}, 3},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			w := grid(10, 10)
			b := newTestBuilder(w, DefaultParams())

			settlements := []*Settlement{}
			for i, xy := range tt.Terminals {
				settlements = append(settlements, &Settlement{ID: i, Cell: w.id(xy[0], xy[1]), Kind: Capital})
			}

			laid := b.Backbone(settlements)

			if laid != tt.Expect {
				t.Errorf("expected %d roads got %d", tt.Expect, laid)
			}
			if len(b.RoadsOf(Primary)) != tt.Expect {
				t.Errorf("expected %d primary roads got %d", tt.Expect, len(b.RoadsOf(Primary)))
			}
			if comps := b.Components(settlements); len(comps) != 1 {
				t.Errorf("expected terminals in one component, got %d", len(comps))
			}
			for _, r := range b.Roads {
				checkContiguous(t, w, r)
			}
			for _, s := range settlements {
				if !b.OnNetwork(s.Cell) {
					t.Errorf("terminal %d not on network", s.ID)
				}
			}
		})
	}
}

func TestBackbone_MinimalSpanning(t *testing.T) {
	w := grid(20, 3)
	b := newTestBuilder(w, DefaultParams())

	// a chain; the MST never joins the two ends directly
	settlements := []*Settlement{
		{ID: 0, Cell: w.id(0, 1), Kind: Capital},
		{ID: 1, Cell: w.id(10, 1), Kind: Port},
		{ID: 2, Cell: w.id(19, 1), Kind: Port},
	}

	b.Backbone(settlements)

	for _, r := range b.Roads {
		if (r.From == 0 && r.To == 2) || (r.From == 2 && r.To == 0) {
			t.Errorf("unexpected road between the chain ends")
		}
	}
	if len(b.Roads) != 2 {
		t.Errorf("expected 2 roads got %d", len(b.Roads))
	}
}

func TestRepair(t *testing.T) {
	w := grid(10, 10)
	b := newTestBuilder(w, DefaultParams())

	settlements := []*Settlement{
		{ID: 0, Cell: w.id(1, 1), Kind: Capital},
		{ID: 1, Cell: w.id(8, 8), Kind: Port},
	}

	// no backbone, so the two are apart
	if comps := b.Components(settlements); len(comps) != 2 {
		t.Fatalf("expected 2 components got %d", len(comps))
	}

	added := b.Repair(settlements)

	if added != 1 || b.Bridges != 1 {
		t.Errorf("expected 1 bridge got %d (%d)", added, b.Bridges)
	}
	if comps := b.Components(settlements); len(comps) != 1 {
		t.Errorf("expected 1 component after repair got %d", len(comps))
	}
	for _, r := range b.Roads {
		checkContiguous(t, w, r)
		if r.From != -1 || r.To != -1 {
			t.Errorf("bridges should not name settlements, got %d -> %d", r.From, r.To)
		}
	}
}

func TestRepair_PrimaryComponents(t *testing.T) {
	w := grid(10, 10)
	b := newTestBuilder(w, DefaultParams())

	settlements := []*Settlement{
		{ID: 0, Cell: w.id(1, 1), Kind: Capital},
		{ID: 1, Cell: w.id(8, 8), Kind: Port},
	}

	// each terminal already sits on its own stretch of primary road
	b.MarkPrimary([]int{w.id(0, 1), w.id(1, 1), w.id(2, 1), w.id(3, 1)})
	b.MarkPrimary([]int{w.id(6, 8), w.id(7, 8), w.id(8, 8), w.id(9, 8)})

	if comps := b.Components(settlements); len(comps) != 2 {
		t.Fatalf("expected 2 components got %d", len(comps))
	}

	if added := b.Repair(settlements); added != 1 {
		t.Fatalf("expected 1 bridge got %d", added)
	}
	if comps := b.Components(settlements); len(comps) != 1 {
		t.Errorf("expected 1 component after repair got %d", len(comps))
	}

	r := b.Roads[0]
	checkContiguous(t, w, r)
	if r.Cells[0] != w.id(3, 1) || r.Cells[len(r.Cells)-1] != w.id(6, 8) {
		t.Errorf("expected the bridge to join the nearest road ends, got %d -> %d", r.Cells[0], r.Cells[len(r.Cells)-1])
	}
	if len(r.Cells) > 11 {
		t.Errorf("expected a bridge of at most 11 cells got %d", len(r.Cells))
	}
}

func TestRepair_NoViableBridge(t *testing.T) {
	// same landmass label, but a wall no path crosses
	w := newMockWorld(
		"000#000",
		"000#000",
		"000#000",
	)
	b := newTestBuilder(w, DefaultParams())

	settlements := []*Settlement{
		{ID: 0, Cell: w.id(0, 1), Kind: Capital},
		{ID: 1, Cell: w.id(6, 1), Kind: Port},
	}

	laid := b.Backbone(settlements)
	added := b.Repair(settlements)

	if laid != 0 {
		t.Errorf("expected no backbone roads got %d", laid)
	}
	if added != 0 || b.Bridges != 0 {
		t.Errorf("expected no bridges got %d", added)
	}
	if comps := b.Components(settlements); len(comps) != 2 {
		t.Errorf("expected 2 components got %d", len(comps))
	}
}

func TestRepair_RespectsRoundCap(t *testing.T) {
	w := grid(12, 12)
	p := DefaultParams()
	p.RepairRounds = 1
	b := newTestBuilder(w, p)

	settlements := []*Settlement{
		{ID: 0, Cell: w.id(0, 0), Kind: Capital},
		{ID: 1, Cell: w.id(11, 0), Kind: Port},
		{ID: 2, Cell: w.id(0, 11), Kind: Port},
		{ID: 3, Cell: w.id(11, 11), Kind: Port},
	}

	added := b.Repair(settlements)

	if added != 1 {
		t.Errorf("expected 1 bridge with a single round got %d", added)
	}
	if comps := b.Components(settlements); len(comps) != 3 {
		t.Errorf("expected 3 components got %d", len(comps))
	}
}

func TestBackfill(t *testing.T) {
	w := newMockWorld(
		"0000000000",
		"0000000000",
		"0000000000",
		"0000000000",
		"~~~~~~~~~~",
		"1111111111",
	)
	b := newTestBuilder(w, DefaultParams())

	settlements := []*Settlement{
		{ID: 0, Cell: w.id(0, 0), Kind: Capital},
		{ID: 1, Cell: w.id(9, 0), Kind: Port},
		{ID: 2, Cell: w.id(5, 3), Kind: Town},
		{ID: 3, Cell: w.id(4, 0), Kind: Town}, // on the backbone
		{ID: 4, Cell: w.id(5, 5), Kind: Town}, // island with no roads
		{ID: 5, Cell: w.id(5, 4), Kind: Town}, // in the sea
	}

	b.Backbone(settlements)
	connected := b.Backfill(settlements)

	if connected != 2 {
		t.Errorf("expected 2 connected got %d", connected)
	}
	if len(b.Orphans) != 2 {
		t.Fatalf("expected 2 orphans got %v", b.Orphans)
	}
	if b.Orphans[0] != 4 || b.Orphans[1] != 5 {
		t.Errorf("expected orphans [4 5] got %v", b.Orphans)
	}

	secondary := b.RoadsOf(Secondary)
	if len(secondary) != 1 {
		t.Fatalf("expected 1 secondary road got %d", len(secondary))
	}
	r := secondary[0]
	checkContiguous(t, w, r)
	if r.From != 2 || r.Cells[0] != w.id(5, 3) {
		t.Errorf("expected road from settlement 2, got %d starting %d", r.From, r.Cells[0])
	}
	if !b.IsPrimary(r.Cells[len(r.Cells)-1]) {
		t.Errorf("expected secondary road to end on the backbone")
	}
	if len(r.Cells) != 4 {
		t.Errorf("expected 4 cells to reach the backbone got %v", r.Cells)
	}
}

func TestBackfill_SearchCap(t *testing.T) {
	cases := []struct {
		Name       string
		Iterations int
		Connected  bool
	}{
		{"too few", 1, false},
		{"enough", 3, true},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			w := grid(10, 1)
			p := DefaultParams()
			p.BackfillIterations = tt.Iterations
			b := newTestBuilder(w, p)

			settlements := []*Settlement{
				{ID: 0, Cell: w.id(0, 0), Kind: Capital},
				{ID: 1, Cell: w.id(1, 0), Kind: Port},
				{ID: 2, Cell: w.id(9, 0), Kind: Town}, // eight hops from the network
			}
			b.Backbone(settlements)
			connected := b.Backfill(settlements)

			if tt.Connected && (connected != 1 || len(b.Orphans) != 0) {
				t.Errorf("expected the town to connect, got %d orphans %v", connected, b.Orphans)
			}
			if !tt.Connected && (connected != 0 || len(b.Orphans) != 1) {
				t.Errorf("expected the town to be orphaned, got %d orphans %v", connected, b.Orphans)
			}
		})
	}
}

func TestBackfill_SnapThreshold(t *testing.T) {
	w := grid(10, 5)
	p := DefaultParams()
	p.SnapThreshold = 2.5
	b := newTestBuilder(w, p)

	settlements := []*Settlement{
		{ID: 0, Cell: w.id(0, 0), Kind: Capital},
		{ID: 1, Cell: w.id(9, 0), Kind: Port},
		{ID: 2, Cell: w.id(3, 2), Kind: Town}, // within snap range
		{ID: 3, Cell: w.id(3, 4), Kind: Town},
	}

	b.Backbone(settlements)
	connected := b.Backfill(settlements)

	if connected != 2 {
		t.Errorf("expected 2 connected got %d", connected)
	}
	if len(b.RoadsOf(Secondary)) != 1 {
		t.Errorf("expected only the far town to get a road, got %d", len(b.RoadsOf(Secondary)))
	}
}

func TestBackfiller_Chunked(t *testing.T) {
	w := grid(10, 10)
	b := newTestBuilder(w, DefaultParams())

	settlements := []*Settlement{{ID: 0, Cell: w.id(0, 0), Kind: Capital}}
	for i := 1; i < 8; i++ {
		settlements = append(settlements, &Settlement{ID: i, Cell: w.id(i, 9), Kind: Town})
	}
	b.Backbone(settlements)

	bf := b.Backfiller(settlements)
	chunks := 0
	for bf.RunChunk(2) != sched.Done {
		chunks++
		if chunks > 100 {
			t.Fatal("backfill never finished")
		}
	}

	if chunks < 3 {
		t.Errorf("expected several chunks got %d", chunks)
	}
	if bf.Connected != 7 {
		t.Errorf("expected 7 connected got %d", bf.Connected)
	}
	if len(b.Orphans) != 0 {
		t.Errorf("expected no orphans got %v", b.Orphans)
	}
}

func TestLinkIslands(t *testing.T) {
	w := newMockWorld(
		"000~~~111",
		"000~~~111",
		"000~~~111",
	)
	b := newTestBuilder(w, DefaultParams())

	settlements := []*Settlement{
		{ID: 0, Cell: w.id(2, 1), Kind: Capital},
		{ID: 1, Cell: w.id(8, 1), Kind: Town, Score: 9}, // inland
		{ID: 2, Cell: w.id(6, 0), Kind: Town, Score: 1},
		{ID: 3, Cell: w.id(6, 2), Kind: Town, Score: 2},
	}

	b.Build(settlements)

	if len(b.Ported) != 1 || b.Ported[0] != 3 {
		t.Fatalf("expected settlement 3 promoted to port, got %v", b.Ported)
	}
	if settlements[3].Kind != Port {
		t.Errorf("expected kind port got %s", settlements[3].Kind)
	}

	lanes := b.RoadsOf(SeaLane)
	if len(lanes) != 1 {
		t.Fatalf("expected 1 sea lane got %d", len(lanes))
	}
	lane := lanes[0]
	if lane.From != 3 || lane.To != 0 {
		t.Errorf("expected lane 3 -> 0 got %d -> %d", lane.From, lane.To)
	}
	if lane.Cells[0] != w.id(6, 2) || lane.Cells[len(lane.Cells)-1] != w.id(2, 1) {
		t.Errorf("lane should run port to capital, got %v", lane.Cells)
	}
	for _, c := range lane.Cells[1 : len(lane.Cells)-1] {
		if !w.IsWater(c) {
			t.Errorf("lane crosses land at %d", c)
		}
	}
	if len(b.Orphans) != 0 {
		t.Errorf("expected no orphans got %v", b.Orphans)
	}
	for _, s := range settlements[1:] {
		if !b.OnNetwork(s.Cell) {
			t.Errorf("settlement %d not on network", s.ID)
		}
	}
}

func TestLinkIslands_NoSea(t *testing.T) {
	w := newMockWorld(
		"000~~~111",
		"000~~~111",
	)
	b := NewBuilder(w, w, nil, graph.DefaultLandCosts(), DefaultParams(), nil)

	settlements := []*Settlement{
		{ID: 0, Cell: w.id(2, 1), Kind: Capital},
		{ID: 1, Cell: w.id(6, 0), Kind: Town},
		{ID: 2, Cell: w.id(8, 1), Kind: Town},
	}

	linked := b.LinkIslands(settlements)

	if linked != 0 {
		t.Errorf("expected no links without a sea router, got %d", linked)
	}
	if len(b.RoadsOf(SeaLane)) != 0 {
		t.Errorf("expected no sea lanes")
	}
	// still given a port & local roads
	if len(b.Ported) != 1 || len(b.RoadsOf(Secondary)) != 1 {
		t.Errorf("expected a port & one local road, got %v %d", b.Ported, len(b.RoadsOf(Secondary)))
	}
}
