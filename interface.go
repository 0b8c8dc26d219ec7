package landgraph

// Landscape is a read only view of generated land & roads. Session
// satisfies it; renderers & exporters only need this much.
type Landscape interface {
	// Size of the domain
	Size() (width, height float64)

	// Len is the number of cells, Cell(i) is valid for 0 <= i < Len()
	Len() int
	Cell(i int) CellInfo

	// Coastline as polylines between land & water
	Coastline() [][]Point

	// Settlements as last given to BuildNetwork, with any promotions applied.
	Settlements() []*Settlement

	// Roads laid by the last BuildNetwork, nil if none.
	Roads() []*Road
	Polyline(r *Road) []Point
}
