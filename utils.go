package landgraph

import (
	"hash/fnv"
	"strconv"

	"github.com/unixpickle/model3d/model2d"
)

// SeedFrom turns a seed string into an rng seed. Integers are used as is,
// anything else is hashed.
func SeedFrom(seed string) int64 {
	if seed == "" {
		return 0
	}
	if n, err := strconv.ParseInt(seed, 10, 64); err == nil {
		return n
	}
	h := fnv.New64a()
	h.Write([]byte(seed))
	return int64(h.Sum64())
}

func toCoord(p Point) model2d.Coord {
	return model2d.XY(p.X, p.Y)
}

func fromCoord(c model2d.Coord) Point {
	return Point{X: c.X, Y: c.Y}
}

func fromCoords(in []model2d.Coord) []Point {
	if len(in) == 0 {
		return nil
	}
	out := make([]Point, len(in))
	for i, c := range in {
		out[i] = fromCoord(c)
	}
	return out
}
