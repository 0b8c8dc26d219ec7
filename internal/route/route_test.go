package route

import (
	"math"
	"testing"

	"github.com/unixpickle/model3d/model2d"
)

// mockGrid is a 4-connected unit grid graph.
type mockGrid struct {
	width, height int
	blocked       map[int]bool
}

func newMockGrid(width, height int, blocked [][2]int) *mockGrid {
	g := &mockGrid{width: width, height: height, blocked: map[int]bool{}}
	for _, b := range blocked {
		g.blocked[b[1]*width+b[0]] = true
	}
	return g
}

func (g *mockGrid) id(x, y int) int {
	return y*g.width + x
}

func (g *mockGrid) HasNode(i int) bool {
	return i >= 0 && i < g.width*g.height && !g.blocked[i]
}

func (g *mockGrid) Pos(i int) model2d.Coord {
	return model2d.XY(float64(i%g.width), float64(i/g.width))
}

func (g *mockGrid) Neighbors(i int) []int {
	x, y := i%g.width, i/g.width
	out := []int{}
	for _, d := range [][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}} {
		nx, ny := x+d[0], y+d[1]
		if nx >= 0 && ny >= 0 && nx < g.width && ny < g.height {
			out = append(out, g.id(nx, ny))
		}
	}
	return out
}

func unitCost(u, v int) float64 {
	return 1
}

func TestAStar_Grid3x3(t *testing.T) {
	g := newMockGrid(3, 3, nil)

	path, out := AStar(g, unitCost, g.id(0, 0), g.id(2, 2), Options{})
	if out != Found {
		t.Fatalf("expected path, got outcome %d", out)
	}
	if len(path.Cells) != 5 {
		t.Errorf("expected 5 cells got %d: %v", len(path.Cells), path.Cells)
	}
	if path.Cost != 4 {
		t.Errorf("expected cost 4 got %f", path.Cost)
	}
	if path.Start() != 0 || path.End() != 8 {
		t.Errorf("path should run 0 -> 8, got %v", path.Cells)
	}
	for i := 1; i < len(path.Cells); i++ {
		d := g.Pos(path.Cells[i-1]).Dist(g.Pos(path.Cells[i]))
		if d != 1 {
			t.Errorf("step %d is not between neighbours", i)
		}
	}
}

func TestAStar_WithObstacle(t *testing.T) {
	g := newMockGrid(5, 5, [][2]int{{2, 0}, {2, 1}, {2, 2}, {2, 3}})

	path, out := AStar(g, unitCost, g.id(0, 2), g.id(4, 2), Options{})
	if out != Found {
		t.Fatal("expected path around obstacle")
	}
	for _, c := range path.Cells {
		if !g.HasNode(c) {
			t.Errorf("path went through blocked cell %d", c)
		}
	}
	if path.Cost != 8 {
		t.Errorf("expected cost 8 around the wall, got %f", path.Cost)
	}
}

func TestAStar_NoPath(t *testing.T) {
	g := newMockGrid(5, 5, [][2]int{{2, 0}, {2, 1}, {2, 2}, {2, 3}, {2, 4}})

	path, out := AStar(g, unitCost, g.id(0, 0), g.id(4, 4), Options{})
	if out != Unreachable || !path.Empty() {
		t.Errorf("expected unreachable & empty path, got %d %v", out, path.Cells)
	}
	if _, ok := Find(g, unitCost, g.id(0, 0), g.id(4, 4), Options{MaxIterations: 3}); ok {
		t.Error("find should fail too")
	}
}

func TestAStar_SameStartGoal(t *testing.T) {
	g := newMockGrid(3, 3, nil)
	path, out := AStar(g, unitCost, 4, 4, Options{})
	if out != Found || len(path.Cells) != 1 || path.Cost != 0 {
		t.Errorf("expected single cell path, got %v", path)
	}
}

func TestAStar_BlockedGoal(t *testing.T) {
	g := newMockGrid(3, 3, [][2]int{{2, 2}})
	if _, out := AStar(g, unitCost, 0, 8, Options{}); out != Unreachable {
		t.Errorf("expected unreachable got %d", out)
	}
}

func TestAStar_InfiniteCostIsImpassable(t *testing.T) {
	g := newMockGrid(3, 1, nil)
	cost := func(u, v int) float64 {
		if v == 1 {
			return math.Inf(1)
		}
		return 1
	}
	if _, out := AStar(g, cost, 0, 2, Options{}); out != Unreachable {
		t.Errorf("expected unreachable got %d", out)
	}
}

func TestFind_FallsBackToBFS(t *testing.T) {
	g := newMockGrid(20, 20, nil)

	_, out := AStar(g, unitCost, 0, g.id(19, 19), Options{MaxIterations: 5})
	if out != Exhausted {
		t.Fatalf("expected exhausted got %d", out)
	}

	path, ok := Find(g, unitCost, 0, g.id(19, 19), Options{MaxIterations: 200})
	if !ok {
		t.Fatal("expected bfs fallback to find a path")
	}
	if len(path.Cells) != 39 || path.Cost != 38 {
		t.Errorf("expected 39 cells cost 38, got %d cells cost %f", len(path.Cells), path.Cost)
	}
}

func TestBFS_GoalPredicate(t *testing.T) {
	g := newMockGrid(5, 5, nil)
	goals := map[int]bool{g.id(4, 0): true, g.id(0, 3): true}

	path, out := BFS(g, unitCost, 0, func(i int) bool { return goals[i] }, 0)
	if out != Found {
		t.Fatal("expected a goal to be found")
	}
	if path.End() != g.id(0, 3) || len(path.Cells) != 4 {
		t.Errorf("expected nearest goal (0,3) in 4 cells, got %v", path.Cells)
	}
}
