package heightfield

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/unixpickle/model3d/model2d"
)

var (
	// ErrUnknownOp is returned when a template step names no known operation.
	ErrUnknownOp = fmt.Errorf("unknown template operation")

	// ErrUnknownTemplate is returned when a template name isn't registered.
	ErrUnknownTemplate = fmt.Errorf("unknown template")
)

// Op names one template operation.
type Op string

const (
	OpHill      Op = "hill"
	OpPit       Op = "pit"
	OpRange     Op = "range"
	OpTrough    Op = "trough"
	OpAdd       Op = "add"
	OpMultiply  Op = "multiply"
	OpSmooth    Op = "smooth"
	OpMask      Op = "mask"
	OpErode     Op = "erode"
	OpNormalize Op = "normalize"
	OpCap       Op = "cap"
)

// Valid returns if o is a known operation
func (o Op) Valid() bool {
	switch o {
	case OpHill, OpPit, OpRange, OpTrough, OpAdd, OpMultiply, OpSmooth, OpMask, OpErode, OpNormalize, OpCap:
		return true
	}
	return false
}

// Span is an inclusive [Min, Max] range, values are picked uniformly.
type Span struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// pick returns a value uniformly in the span.
func (s Span) pick(rng *rand.Rand) float64 {
	if s.Max <= s.Min {
		return s.Min
	}
	return s.Min + rng.Float64()*(s.Max-s.Min)
}

// Step is one operation of a template. Which fields matter depends on Op.
type Step struct {
	Op Op `yaml:"op" json:"op"`

	// Count of blobs / ridges (hill, pit, range, trough).
	Count Span `yaml:"count" json:"count"`

	// Height of each blob / ridge.
	Height Span `yaml:"height" json:"height"`

	// X & Y windows, as fractions of the domain, to place blobs / ridge ends in.
	X Span `yaml:"x" json:"x"`
	Y Span `yaml:"y" json:"y"`

	// Radius is the per hop decay of a blob in (0,1), larger spreads further.
	Radius    float64 `yaml:"radius" json:"radius"`
	Sharpness float64 `yaml:"sharpness" json:"sharpness"`
	Stop      float64 `yaml:"stop" json:"stop"`

	// Value is the delta (add), factor (multiply), weight (smooth) or max (cap).
	Value float64 `yaml:"value" json:"value"`

	// Range limits add / multiply to cells whose height falls inside it.
	// Zero means all cells. Also lo..hi for normalize.
	Range Span `yaml:"range" json:"range"`

	// Erosion settings
	Talus      float64 `yaml:"talus" json:"talus"`
	Iterations int     `yaml:"iterations" json:"iterations"`

	Mask *MaskParams `yaml:"mask,omitempty" json:"mask,omitempty"`
}

// Template is a named recipe of steps.
type Template struct {
	Name  string `yaml:"name" json:"name"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Apply runs every step of t against the field in order.
func (f *Field) Apply(t *Template, rng *rand.Rand) error {
	for i, s := range t.Steps {
		if err := f.step(s, rng); err != nil {
			return fmt.Errorf("template %s step %d: %w", t.Name, i, err)
		}
	}
	return nil
}

// step applies a single template step
func (f *Field) step(s Step, rng *rand.Rand) error {
	lo, hi := s.Range.Min, s.Range.Max
	if hi <= lo {
		lo, hi = 0, 1
	}

	switch s.Op {
	case OpHill, OpPit:
		sign := 1.0
		if s.Op == OpPit {
			sign = -1
		}
		for n := count(s.Count, rng); n > 0; n-- {
			start := f.mesh.Nearest(f.place(s.X, s.Y, rng))
			f.Blob(start, sign*s.Height.pick(rng), s.Radius, s.Sharpness, stopOf(s), rng)
		}
	case OpRange, OpTrough:
		sign := 1.0
		if s.Op == OpTrough {
			sign = -1
		}
		for n := count(s.Count, rng); n > 0; n-- {
			a := f.mesh.Nearest(f.place(s.X, s.Y, rng))
			b := f.mesh.Nearest(f.place(s.X, s.Y, rng))
			f.Ridge(a, b, sign*s.Height.pick(rng), s.Radius, s.Sharpness, stopOf(s), rng)
		}
	case OpAdd:
		f.Add(s.Value, lo, hi)
	case OpMultiply:
		f.Multiply(s.Value, lo, hi)
	case OpSmooth:
		for n := maxInt(1, s.Iterations); n > 0; n-- {
			f.Smooth(s.Value)
		}
	case OpMask:
		p := DefaultMask()
		if s.Mask != nil {
			p = *s.Mask
		}
		f.Mask(p)
	case OpErode:
		f.Erode(s.Talus, s.Value, maxInt(1, s.Iterations))
	case OpNormalize:
		f.Normalize(lo, hi)
	case OpCap:
		f.Cap(s.Value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, s.Op)
	}
	return nil
}

// place returns a random point within the fractional x & y windows.
func (f *Field) place(x, y Span, rng *rand.Rand) model2d.Coord {
	if x.Max <= 0 {
		x = Span{0, 1}
	}
	if y.Max <= 0 {
		y = Span{0, 1}
	}
	b := f.mesh.Bounds
	return model2d.XY(
		b.X.Lo+x.pick(rng)*b.X.Length(),
		b.Y.Lo+y.pick(rng)*b.Y.Length(),
	)
}

func count(s Span, rng *rand.Rand) int {
	n := int(s.pick(rng) + 0.5)
	if n < 1 && s.Max <= 0 {
		return 1
	}
	return n
}

func stopOf(s Step) float64 {
	if s.Stop <= 0 {
		return 0.01
	}
	return s.Stop
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Registry maps template names to templates.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry returns a registry holding the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{templates: map[string]*Template{}}
	for _, t := range builtins() {
		r.Register(t)
	}
	return r
}

// Register adds (or replaces) a template.
func (r *Registry) Register(t *Template) {
	r.templates[t.Name] = t
}

// Get returns the named template.
func (r *Registry) Get(name string) (*Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return t, nil
}

// Names returns registered template names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for n := range r.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
