package landgraph

import (
	"github.com/voidshard/landgraph/internal/encoding"
)

// bit numbers for CellInfo.Flags
const (
	bitWater   = 0
	bitSea     = 1
	bitLake    = 2
	bitCoastal = 3
	bitBorder  = 4
	bitRiver   = 5
	bitRoad    = 6
	bitPrimary = 7
)

// Point is an (x,y) position within the domain.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CellInfo is everything known about one cell, gathered in one place.
type CellInfo struct {
	ID        int     `json:"id"`
	Centroid  Point   `json:"centroid"`
	Polygon   []Point `json:"polygon,omitempty"`
	Neighbors []int   `json:"neighbors"`

	Height float64 `json:"height"`

	// Flags packs the Is* booleans, one bit each
	Flags uint8 `json:"flags"`

	// CoastStep is 0 for land on the shore, counting up inland. Water
	// touching land is -1, counting down offshore.
	CoastStep   int     `json:"coastStep"`
	RiverStep   int     `json:"riverStep"`
	RiverDegree int     `json:"riverDegree"`
	Flux        float64 `json:"flux"`
	Slope       float64 `json:"slope"`

	Landmass int `json:"landmass"` // -1 for water
	Lake     int `json:"lake"`     // -1 if not part of a lake
	Usage    int `json:"usage"`    // roads crossing the cell
}

// IsWater returns if the cell is sea or lake
func (c CellInfo) IsWater() bool { return encoding.FlagSet(c.Flags, bitWater) }

// IsSea returns if the cell is below sea level
func (c CellInfo) IsSea() bool { return encoding.FlagSet(c.Flags, bitSea) }

// IsLake returns if the cell is part of a lake
func (c CellInfo) IsLake() bool { return encoding.FlagSet(c.Flags, bitLake) }

// IsCoastal returns if the cell is land touching water
func (c CellInfo) IsCoastal() bool { return encoding.FlagSet(c.Flags, bitCoastal) }

// IsBorder returns if the cell touches the domain edge
func (c CellInfo) IsBorder() bool { return encoding.FlagSet(c.Flags, bitBorder) }

// IsRiver returns if a river runs through the cell
func (c CellInfo) IsRiver() bool { return encoding.FlagSet(c.Flags, bitRiver) }

// IsRoad returns if any land road crosses the cell
func (c CellInfo) IsRoad() bool { return encoding.FlagSet(c.Flags, bitRoad) }

// IsPrimary returns if a primary road crosses the cell
func (c CellInfo) IsPrimary() bool { return encoding.FlagSet(c.Flags, bitPrimary) }

// Stats holds counts about the generated land
type Stats struct {
	Cells      int `json:"cells"`
	Land       int `json:"land"`
	Water      int `json:"water"`
	Lakes      int `json:"lakes"`
	Landmasses int `json:"landmasses"`
	Rivers     int `json:"rivers"` // cells carrying a river
	Suppressed int `json:"suppressed"`

	// FallbackLand is true if the template produced no land & a bump was
	// painted instead.
	FallbackLand bool `json:"fallbackLand"`
}

// Network is the result of building roads.
type Network struct {
	Roads   []*Road `json:"roads"`
	Orphans []int   `json:"orphans,omitempty"` // settlement ids that couldn't be connected
	Bridges int     `json:"bridges"`           // primary roads added by repair
	Ported  []int   `json:"ported,omitempty"`  // settlement ids promoted to port
}

// Snapshot is the full serializable state of a session.
type Snapshot struct {
	RunID       string        `json:"runId"`
	Seed        string        `json:"seed"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	SeaLevel    float64       `json:"seaLevel"`
	Stats       Stats         `json:"stats"`
	Cells       []CellInfo    `json:"cells"`
	Lakes       []*Lake       `json:"lakes"`
	Coastline   [][]Point     `json:"coastline"`
	Settlements []*Settlement `json:"settlements,omitempty"`
	Network     *Network      `json:"network,omitempty"`
}
