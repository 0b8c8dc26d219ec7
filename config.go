package landgraph

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/voidshard/landgraph/internal/graph"
	"github.com/voidshard/landgraph/internal/heightfield"
	"github.com/voidshard/landgraph/internal/hydro"
	"github.com/voidshard/landgraph/internal/logger"
	"github.com/voidshard/landgraph/internal/mesh"
	"github.com/voidshard/landgraph/internal/network"
)

// Config outlines everything needed to generate a landmass & its roads.
// Zero sections are not filled in with defaults by the library, start
// from DefaultConfig() (LoadConfig does).
type Config struct {
	// Seed is any string, hashed to the rng seed. Empty means "0".
	Seed string `yaml:"seed" json:"seed"`

	Mesh     mesh.Params    `yaml:"mesh" json:"mesh"`
	Terrain  TerrainConfig  `yaml:"terrain" json:"terrain"`
	Hydro    hydro.Params   `yaml:"hydro" json:"hydro"`
	Roads    RoadsConfig    `yaml:"roads" json:"roads"`
	Sea      graph.SeaCosts `yaml:"sea" json:"sea"`
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule"`
	Logging  logger.Config  `yaml:"logging" json:"logging"`

	// Templates are registered alongside the built in ones, replacing any
	// built in template of the same name.
	Templates []*heightfield.Template `yaml:"templates,omitempty" json:"templates,omitempty"`
}

// TerrainConfig picks & tunes the height field template.
type TerrainConfig struct {
	Template string             `yaml:"template" json:"template"`
	Blobs    heightfield.Params `yaml:"blobs" json:"blobs"`

	// LandMargin is how far above sea level the highest cell must reach,
	// or a fallback bump is painted.
	LandMargin float64 `yaml:"landMargin" json:"landMargin"`
}

// RoadsConfig holds the road cost model & network settings.
type RoadsConfig struct {
	Costs   graph.LandCosts `yaml:"costs" json:"costs"`
	Network network.Params  `yaml:"network" json:"network"`
}

// ScheduleConfig controls how work is chunked.
type ScheduleConfig struct {
	// Budget is the work units per chunk, <= 0 uses the scheduler default.
	Budget int `yaml:"budget" json:"budget"`
}

// DefaultConfig returns settings that produce a reasonable island.
func DefaultConfig() Config {
	return Config{
		Seed: "0",
		Mesh: mesh.Params{
			Cells:  2000,
			Width:  1000,
			Height: 1000,
			Relax:  1,
		},
		Terrain: TerrainConfig{
			Template:   "highIsland",
			Blobs:      heightfield.DefaultParams(),
			LandMargin: 0.05,
		},
		Hydro: hydro.DefaultParams(),
		Roads: RoadsConfig{
			Costs:   graph.DefaultLandCosts(),
			Network: network.DefaultParams(),
		},
		Sea:     graph.DefaultSeaCosts(),
		Logging: logger.DefaultConfig(),
	}
}

// LoadConfig reads yaml from fpath over the defaults.
func LoadConfig(fpath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(fpath)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", fpath)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", fpath)
	}
	return cfg, errors.Wrap(cfg.Validate(), "validating config")
}

// Validate returns an error describing the first bad setting found.
func (c Config) Validate() error {
	switch {
	case c.Mesh.Cells <= 0:
		return fmt.Errorf("%w: mesh.cells must be > 0, got %d", ErrInvalidConfig, c.Mesh.Cells)
	case c.Mesh.Width <= 0 || c.Mesh.Height <= 0:
		return fmt.Errorf("%w: mesh size must be > 0, got %.1fx%.1f", ErrInvalidConfig, c.Mesh.Width, c.Mesh.Height)
	case c.Hydro.SeaLevel < 0 || c.Hydro.SeaLevel > 1:
		return fmt.Errorf("%w: hydro.seaLevel must be in [0,1], got %f", ErrInvalidConfig, c.Hydro.SeaLevel)
	case c.Terrain.LandMargin < 0:
		return fmt.Errorf("%w: terrain.landMargin must be >= 0", ErrInvalidConfig)
	case c.Roads.Costs.ReuseDiscount < 0 || c.Roads.Costs.ReuseDiscount > 1:
		return fmt.Errorf("%w: roads.costs.reuseDiscount must be in [0,1], got %f", ErrInvalidConfig, c.Roads.Costs.ReuseDiscount)
	case c.Roads.Network.SnapThreshold < 0:
		return fmt.Errorf("%w: roads.network.snapThreshold must be >= 0", ErrInvalidConfig)
	case c.Sea.NearshorePenalty < 0:
		return fmt.Errorf("%w: sea.nearshorePenalty must be >= 0", ErrInvalidConfig)
	case !logger.ValidLevel(c.Logging.Level):
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}

	for i, t := range c.Templates {
		if t == nil || t.Name == "" {
			return fmt.Errorf("%w: template %d has no name", ErrInvalidConfig, i)
		}
		for j, s := range t.Steps {
			if !s.Op.Valid() {
				return fmt.Errorf("%w: template %s step %d: %w", ErrInvalidConfig, t.Name, j, heightfield.ErrUnknownOp)
			}
		}
	}
	return nil
}

// registry returns the built in templates plus any configured ones.
func (c Config) registry() *heightfield.Registry {
	reg := heightfield.NewRegistry()
	for _, t := range c.Templates {
		reg.Register(t)
	}
	return reg
}
