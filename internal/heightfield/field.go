// Package heightfield synthesizes cell heights in [0,1] from composable
// template operations.
package heightfield

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
	"go.uber.org/zap"

	"github.com/voidshard/landgraph/internal/mesh"
)

// Params tunes blob growth.
type Params struct {
	// WarpAmplitude perturbs the per hop decay of blobs so their outlines
	// aren't perfectly round. 0 disables it.
	WarpAmplitude float64 `yaml:"warpAmplitude" json:"warpAmplitude"`

	// WarpFrequency of the noise sampled at each cell centroid.
	WarpFrequency float64 `yaml:"warpFrequency" json:"warpFrequency"`
}

// DefaultParams returns sensible blob settings
func DefaultParams() Params {
	return Params{WarpAmplitude: 0.05, WarpFrequency: 0.02}
}

// maxDecay caps the per hop multiplier so growth always terminates.
const maxDecay = 0.995

// Field holds one height per mesh cell.
type Field struct {
	mesh    *mesh.Mesh
	h       []float64
	version uint32
	noise   opensimplex.Noise
	params  Params
	log     *zap.Logger
}

// New returns a flat (all zero) field over m.
func New(m *mesh.Mesh, seed int64, p Params, log *zap.Logger) *Field {
	if log == nil {
		log = zap.NewNop()
	}
	return &Field{
		mesh:   m,
		h:      make([]float64, m.Len()),
		noise:  opensimplex.New(seed),
		params: p,
		log:    log,
	}
}

// Mesh the field is defined over
func (f *Field) Mesh() *mesh.Mesh {
	return f.mesh
}

// Heights returns the live height slice; callers must not modify it.
func (f *Field) Heights() []float64 {
	return f.h
}

// Height of cell i
func (f *Field) Height(i int) float64 {
	return f.h[i]
}

// Version increments every time heights change.
func (f *Field) Version() uint32 {
	return f.version
}

// Clear resets every height to zero.
func (f *Field) Clear() {
	for i := range f.h {
		f.h[i] = 0
	}
	f.version++
}

// Clone returns an independent copy of the field at the same version.
func (f *Field) Clone() *Field {
	cp := *f
	cp.h = append([]float64(nil), f.h...)
	return &cp
}

// Set replaces all heights (clamped to [0,1]).
func (f *Field) Set(h []float64) {
	for i := range f.h {
		if i < len(h) {
			f.h[i] = clamp01(h[i])
		} else {
			f.h[i] = 0
		}
	}
	f.version++
}

// Lower sets the given cells to `to` (if they're currently higher).
func (f *Field) Lower(cells []int, to float64) {
	changed := false
	for _, c := range cells {
		if f.h[c] > to {
			f.h[c] = clamp01(to)
			changed = true
		}
	}
	if changed {
		f.version++
	}
}

// Max returns the highest height in the field.
func (f *Field) Max() float64 {
	mx := 0.0
	for _, v := range f.h {
		mx = math.Max(mx, v)
	}
	return mx
}

// Blob grows a roughly circular lump (or dent, for negative peak) outward
// from start. Each hop multiplies the parent's value by the radius factor
// (warped by noise) & a random jitter in [-sharpness, sharpness]. Growth stops
// when the value drops below stop. Within a blob each cell keeps the largest
// value proposed for it, the blob is then added to the field.
func (f *Field) Blob(start int, peak, radius, sharpness, stop float64, rng *rand.Rand) {
	if start < 0 || start >= len(f.h) || peak == 0 {
		return
	}
	sign := 1.0
	if peak < 0 {
		sign = -1
	}

	prop := f.grow([]int{start}, math.Abs(peak), radius, sharpness, stop, rng)
	for i, v := range prop {
		if v > 0 {
			f.h[i] = clamp01(f.h[i] + sign*v)
		}
	}
	f.version++
}

// grow runs the blob bfs from seeds, returning proposed values per cell.
func (f *Field) grow(seeds []int, value, radius, sharpness, stop float64, rng *rand.Rand) []float64 {
	prop := make([]float64, len(f.h))
	queue := make([]int, 0, len(seeds))
	for _, s := range seeds {
		prop[s] = value
		queue = append(queue, s)
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, v := range f.mesh.Neighbors(u) {
			decay := radius + f.warp(v)
			if sharpness > 0 {
				decay *= 1 + (rng.Float64()*2-1)*sharpness
			}
			decay = math.Max(0, math.Min(maxDecay, decay))

			val := prop[u] * decay
			if val < stop || val <= prop[v] {
				continue
			}
			prop[v] = val
			queue = append(queue, v)
		}
	}
	return prop
}

// warp samples noise at the centroid of cell i.
func (f *Field) warp(i int) float64 {
	if f.params.WarpAmplitude == 0 {
		return 0
	}
	p := f.mesh.Pos(i)
	return f.params.WarpAmplitude * f.noise.Eval2(p.X*f.params.WarpFrequency, p.Y*f.params.WarpFrequency)
}

// Ridge raises (or for negative peak, cuts) a line of cells between a & b,
// falling away to either side like a blob.
func (f *Field) Ridge(a, b int, peak, radius, sharpness, stop float64, rng *rand.Rand) {
	if a < 0 || b < 0 || a >= len(f.h) || b >= len(f.h) || peak == 0 {
		return
	}
	sign := 1.0
	if peak < 0 {
		sign = -1
	}

	line := f.walk(a, b, rng)
	prop := f.grow(line, math.Abs(peak), radius, sharpness, stop, rng)
	for i, v := range prop {
		if v > 0 {
			f.h[i] = clamp01(f.h[i] + sign*v)
		}
	}
	f.version++
}

// walk returns a greedy chain of cells from a toward b. Ties & detours are
// broken randomly so ridges wander a little.
func (f *Field) walk(a, b int, rng *rand.Rand) []int {
	target := f.mesh.Pos(b)
	line := []int{a}
	seen := map[int]bool{a: true}

	for cur := a; cur != b && len(line) < len(f.h); {
		best := -1
		bestDist := math.Inf(1)
		for _, n := range f.mesh.Neighbors(cur) {
			if seen[n] {
				continue
			}
			d := f.mesh.Pos(n).Dist(target)
			if rng.Float64() < 0.15 {
				d *= 0.85 // occasional wander
			}
			if d < bestDist {
				best, bestDist = n, d
			}
		}
		if best < 0 {
			break
		}
		seen[best] = true
		line = append(line, best)
		cur = best
	}
	return line
}

// Add adds delta to every cell with height in [lo, hi].
func (f *Field) Add(delta, lo, hi float64) {
	for i, v := range f.h {
		if v >= lo && v <= hi {
			f.h[i] = clamp01(v + delta)
		}
	}
	f.version++
}

// Multiply scales every cell with height in [lo, hi] by factor.
func (f *Field) Multiply(factor, lo, hi float64) {
	for i, v := range f.h {
		if v >= lo && v <= hi {
			f.h[i] = clamp01(v * factor)
		}
	}
	f.version++
}

// Smooth blends each cell toward its neighbour mean.
func (f *Field) Smooth(weight float64) {
	f.h = Smooth(f.mesh, f.h, weight)
	f.version++
}

// Erode applies thermal erosion.
func (f *Field) Erode(talus, rate float64, iterations int) {
	f.h = ThermalErode(f.mesh, f.h, talus, rate, iterations)
	f.version++
}

// Mask fades heights toward the domain edge.
func (f *Field) Mask(p MaskParams) {
	f.h = EdgeMask(f.mesh, f.h, p)
	f.version++
}

// Normalize rescales heights to span [lo, hi].
func (f *Field) Normalize(lo, hi float64) {
	f.h = Normalize(f.h, lo, hi)
	f.version++
}

// Cap limits heights to max.
func (f *Field) Cap(max float64) {
	f.h = Cap(f.h, max)
	f.version++
}

// EnsureLand paints a radial bump at the domain centre if no cell reaches
// floor. The bump is deterministic so identical seeds still agree.
// Returns true if the fallback was applied.
func (f *Field) EnsureLand(floor float64) bool {
	if len(f.h) == 0 || f.Max() >= floor {
		return false
	}

	centre := f.mesh.Center()
	radius := 0.25 * math.Min(f.mesh.Bounds.X.Length(), f.mesh.Bounds.Y.Length())
	top := math.Min(1, floor+0.2)

	for i := range f.h {
		d := f.mesh.Pos(i).Dist(centre) / radius
		if d >= 1 {
			continue
		}
		f.h[i] = math.Max(f.h[i], top*(1-d*d))
	}

	// the cell nearest the centre always clears floor
	if c := f.mesh.Nearest(centre); c >= 0 {
		f.h[c] = math.Max(f.h[c], top)
	}
	f.version++

	f.log.Warn("degenerate height field, applied fallback bump",
		zap.Float64("floor", floor),
		zap.Float64("max", f.Max()),
	)
	return true
}

// clamp01 clamps v to [0,1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
