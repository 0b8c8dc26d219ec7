package outline

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/landgraph/internal/mesh"
)

func gridMesh(t *testing.T) *mesh.Mesh {
	sites := []model2d.Coord{}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			sites = append(sites, model2d.XY(float64(x)*10+5, float64(y)*10+5))
		}
	}
	m, err := mesh.FromSites(r2.RectFromPoints(r2.Point{}, r2.Point{X: 30, Y: 30}), sites)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestCircuitAroundCentre(t *testing.T) {
	m := gridMesh(t)

	segs := Circuit(m, func(i int) bool { return i == 4 }, false)
	if len(segs) != 4 {
		t.Fatalf("expected 4 edges around the centre cell got %d", len(segs))
	}

	chains := Chains(segs)
	if len(chains) != 1 {
		t.Fatalf("expected 1 chain got %d", len(chains))
	}
	loop := chains[0]
	if len(loop) != 5 || loop[0] != loop[len(loop)-1] {
		t.Errorf("expected a closed loop of 4 edges, got %v", loop)
	}
}

func TestCircuitWithBorder(t *testing.T) {
	m := gridMesh(t)

	inside := func(i int) bool { return i == 0 }
	if got := len(Circuit(m, inside, false)); got != 2 {
		t.Errorf("corner cell should share 2 edges with others, got %d", got)
	}
	if got := len(Circuit(m, inside, true)); got != 4 {
		t.Errorf("corner cell with border should have 4 edges, got %d", got)
	}
}

func TestChainsOpen(t *testing.T) {
	a, b, c := model2d.XY(0, 0), model2d.XY(1, 0), model2d.XY(2, 0)
	chains := Chains([]Segment{{b, c}, {a, b}})
	if len(chains) != 1 || len(chains[0]) != 3 {
		t.Fatalf("expected one chain of 3 points, got %v", chains)
	}
	first, last := chains[0][0], chains[0][2]
	if !((first == a && last == c) || (first == c && last == a)) {
		t.Errorf("chain should run end to end, got %v", chains[0])
	}
}
