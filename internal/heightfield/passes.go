package heightfield

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/voidshard/landgraph/internal/mesh"
)

// MaskParams shapes the edge mask: a superellipse centred on the domain,
// optionally rotated. Cells outside it fall toward zero.
type MaskParams struct {
	// Exponent of the superellipse, 2 is an ellipse, larger is squarer.
	Exponent float64 `yaml:"exponent"`

	// Rotation in radians
	Rotation float64 `yaml:"rotation"`

	// Scale of the shape relative to the half extent of the domain.
	Scale float64 `yaml:"scale"`

	// Falloff is the width of the fade (in normalized units) inside the edge.
	Falloff float64 `yaml:"falloff"`

	// Strength in [0,1], 1 drives cells outside the shape fully to zero.
	Strength float64 `yaml:"strength"`
}

// DefaultMask returns a soft rounded-square mask.
func DefaultMask() MaskParams {
	return MaskParams{Exponent: 4, Scale: 1, Falloff: 0.3, Strength: 1}
}

// Normalize returns heights rescaled so min..max spans lo..hi.
// A flat field maps entirely to lo.
func Normalize(h []float64, lo, hi float64) []float64 {
	out := make([]float64, len(h))
	if len(h) == 0 {
		return out
	}

	mn, mx := math.Inf(1), math.Inf(-1)
	for _, v := range h {
		mn = math.Min(mn, v)
		mx = math.Max(mx, v)
	}

	span := mx - mn
	for i, v := range h {
		if span <= 0 {
			out[i] = lo
			continue
		}
		out[i] = lo + (v-mn)/span*(hi-lo)
	}
	return out
}

// ThermalErode moves material downhill wherever the drop to a neighbour
// exceeds talus. Changes are accumulated per iteration & applied together,
// so total height is conserved.
func ThermalErode(m *mesh.Mesh, h []float64, talus, rate float64, iterations int) []float64 {
	out := make([]float64, len(h))
	copy(out, h)
	if rate <= 0 {
		return out
	}
	rate = math.Min(rate, 1)

	delta := make([]float64, len(h))
	for it := 0; it < iterations; it++ {
		for i := range delta {
			delta[i] = 0
		}

		for i := range out {
			for _, j := range m.Neighbors(i) {
				if j <= i {
					continue // each pair once
				}
				diff := out[i] - out[j]
				if math.Abs(diff) <= talus {
					continue
				}

				deg := math.Max(float64(len(m.Neighbors(i))), float64(len(m.Neighbors(j))))
				move := rate * (math.Abs(diff) - talus) / (2 * deg)

				hi, lo := i, j
				if diff < 0 {
					hi, lo = j, i
				}
				delta[hi] -= move
				delta[lo] += move
			}
		}

		for i := range out {
			out[i] += delta[i]
		}
	}
	return out
}

// Smooth blends each cell toward the mean of its neighbours by weight.
func Smooth(m *mesh.Mesh, h []float64, weight float64) []float64 {
	out := make([]float64, len(h))
	weight = math.Max(0, math.Min(1, weight))

	for i, v := range h {
		ns := m.Neighbors(i)
		if len(ns) == 0 {
			out[i] = v
			continue
		}
		sum := 0.0
		for _, n := range ns {
			sum += h[n]
		}
		out[i] = (1-weight)*v + weight*sum/float64(len(ns))
	}
	return out
}

// EdgeMask fades heights outside a rotated superellipse toward zero.
// Cells touching the domain border always become zero.
func EdgeMask(m *mesh.Mesh, h []float64, p MaskParams) []float64 {
	out := make([]float64, len(h))

	exp := p.Exponent
	if exp <= 0 {
		exp = 2
	}
	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}
	half := m.Bounds.Size().Mul(0.5 * scale)
	centre := m.Bounds.Center()
	cos, sin := math.Cos(-p.Rotation), math.Sin(-p.Rotation)

	for i, v := range h {
		if m.Cells[i].Border {
			out[i] = 0
			continue
		}

		c := m.Pos(i)
		d := r2.Point{X: c.X, Y: c.Y}.Sub(centre)
		d = r2.Point{X: d.X*cos - d.Y*sin, Y: d.X*sin + d.Y*cos}

		u := math.Abs(d.X) / half.X
		w := math.Abs(d.Y) / half.Y
		dist := math.Pow(math.Pow(u, exp)+math.Pow(w, exp), 1/exp)

		factor := 1.0
		if p.Falloff > 0 {
			factor = clamp01((1 - dist) / p.Falloff)
		} else if dist > 1 {
			factor = 0
		}
		out[i] = clamp01(v * (1 - p.Strength + p.Strength*factor))
	}
	return out
}

// Cap returns heights limited to max.
func Cap(h []float64, max float64) []float64 {
	out := make([]float64, len(h))
	for i, v := range h {
		out[i] = math.Min(v, max)
	}
	return out
}
