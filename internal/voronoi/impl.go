package voronoi

import (
	"image/color"
	"math"
	"sort"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model2d"
)

// originally from
// https://github.com/unixpickle/voronoi-glass/blob/main/voronoi.go
//
// + only the nearest k sites cut each cell, with a security radius check
// + repair orders vertices by angle rather than chasing edges

type VoronoiCell struct {
	Center model2d.Coord
	Edges  []*model2d.Segment
}

type VoronoiDiagram []*VoronoiCell

// VoronoiCells computes the voronoi cells for a list of
// coordinates, assuming they are all contained within a
// bounding box.
//
// Each cell is cut by the bisectors of its k nearest sites. If the cell
// reaches further than half the distance to the furthest considered site
// some other site could still cut it, so k is doubled & the cell redone.
//
// Coincident coordinates all get the same cell; callers are expected to
// spot duplicates. The result may be slightly misaligned, see Repair().
func VoronoiCells(min, max model2d.Coord, coords []model2d.Coord, k int) VoronoiDiagram {
	tree := model2d.NewCoordTree(coords)

	cells := make([]*VoronoiCell, len(coords))
	for i, c := range coords {
		for kk := k; ; kk *= 2 {
			near := tree.KNN(kk+1, c)
			edges := cutCell(min, max, c, near)
			cells[i] = &VoronoiCell{Center: c, Edges: edges}

			if len(near) < kk+1 || len(near) >= len(coords) {
				break // every site was used
			}
			reach := 0.0
			for _, e := range edges {
				reach = math.Max(reach, math.Max(e[0].Dist(c), e[1].Dist(c)))
			}
			if 2*reach < near[len(near)-1].Dist(c) {
				break
			}
		}
	}
	return cells
}

// cutCell intersects the bounding rect with the half planes closer to c
// than to each of the others.
func cutCell(min, max, c model2d.Coord, others []model2d.Coord) []*model2d.Segment {
	constraints := model2d.NewConvexPolytopeRect(min, max)
	for _, c1 := range others {
		if c == c1 {
			continue
		}
		mp := c.Mid(c1)
		normal := c1.Sub(c).Normalize()
		constraints = append(constraints, &model2d.LinearConstraint{
			Normal: normal,
			Max:    normal.Dot(mp),
		})
	}
	return constraints.Mesh().SegmentSlice()
}

// Repair merges nearly identical coordinates to make a
// well-connected graph. Degenerate edges are removed & each cell's
// edges are ordered counter clockwise around its centre.
func (v VoronoiDiagram) Repair(epsilon float64) {
	coordSet := map[model2d.Coord]bool{}
	coordSlice := []model2d.Coord{}
	for _, cell := range v {
		for _, s := range cell.Edges {
			for _, p := range s {
				if !coordSet[p] {
					coordSet[p] = true
					coordSlice = append(coordSlice, p)
				}
			}
		}
	}
	if len(coordSlice) == 0 {
		return
	}
	tree := model2d.NewCoordTree(coordSlice)

	mapping := map[model2d.Coord]model2d.Coord{}
	for _, c := range coordSlice {
		if !coordSet[c] {
			continue
		}
		for _, n := range neighborsInDistance(tree, c, epsilon) {
			if coordSet[n] {
				coordSet[n] = false
				mapping[n] = c
			}
		}
	}

	for _, cell := range v {
		for i := 0; i < len(cell.Edges); i++ {
			edge := cell.Edges[i]
			for j, c := range edge {
				if m, ok := mapping[c]; ok {
					edge[j] = m
				}
			}
			if edge[0] == edge[1] {
				// This was almost a singular edge.
				essentials.UnorderedDelete(&cell.Edges, i)
				i--
			}
		}
		cell.orderEdges()
	}
}

// orderEdges sorts edges by the angle of their midpoint around the centre
// & orients each one counter clockwise.
func (c *VoronoiCell) orderEdges() {
	angle := func(p model2d.Coord) float64 {
		d := p.Sub(c.Center)
		return math.Atan2(d.Y, d.X)
	}
	for _, e := range c.Edges {
		a0, a1 := angle(e[0]), angle(e[1])
		delta := a1 - a0
		for delta > math.Pi {
			delta -= 2 * math.Pi
		}
		for delta < -math.Pi {
			delta += 2 * math.Pi
		}
		if delta < 0 {
			e[0], e[1] = e[1], e[0]
		}
	}
	sort.SliceStable(c.Edges, func(i, j int) bool {
		return angle(c.Edges[i][0].Mid(c.Edges[i][1])) < angle(c.Edges[j][0].Mid(c.Edges[j][1]))
	})
}

// Polygon returns the ordered vertices of the cell.
func (c *VoronoiCell) Polygon() []model2d.Coord {
	pts := make([]model2d.Coord, 0, len(c.Edges))
	for _, e := range c.Edges {
		pts = append(pts, e[0])
	}
	return pts
}

// Render draws cell edges in red & sites in blue to a png at path.
func (v VoronoiDiagram) Render(path string) error {
	mesh2d := model2d.NewMesh()
	for _, cell := range v {
		mesh2d.AddMesh(model2d.NewMeshSegments(cell.Edges))
	}
	size := mesh2d.Max().Sub(mesh2d.Min())
	maxSize := math.Max(size.X, size.Y)

	pointsSolid := model2d.JoinedSolid{}
	for _, cell := range v {
		pointsSolid = append(pointsSolid, &model2d.Circle{
			Center: cell.Center,
			Radius: math.Max(2, maxSize/200),
		})
	}

	bg := model2d.NewRect(mesh2d.Min(), mesh2d.Max())
	return model2d.RasterizeColor(path, []interface{}{
		bg,
		model2d.IntersectedSolid{pointsSolid.Optimize(), bg},
		mesh2d,
	}, []color.Color{
		color.Gray{Y: 0xff},
		color.RGBA{B: 0xff, A: 0xff},
		color.RGBA{R: 0xff, A: 0xff},
	}, 1.0)
}

func neighborsInDistance(tree *model2d.CoordTree, c model2d.Coord, epsilon float64) []model2d.Coord {
	for k := 2; true; k++ {
		neighbors := tree.KNN(k, c)
		if len(neighbors) < k {
			return neighbors
		}
		if neighbors[len(neighbors)-1].Dist(c) > epsilon {
			return neighbors[:len(neighbors)-1]
		}
	}
	panic("unreachable")
}
