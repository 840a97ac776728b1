package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mdsim/internal/boundary"
	"github.com/san-kum/mdsim/internal/cells"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

const (
	DefaultDimensions  = 2
	DefaultCutoff      = 3.0
	DefaultDt          = 0.0005
	DefaultEndTime     = 5.0
	DefaultOutputEvery = 100
)

type Config struct {
	Name        string     `yaml:"name,omitempty"`
	Dimensions  int        `yaml:"dimensions"`
	Origin      [3]float64 `yaml:"origin,flow"`
	Domain      [3]float64 `yaml:"domain,flow"`
	Cutoff      float64    `yaml:"cutoff"`
	Dt          float64    `yaml:"dt"`
	EndTime     float64    `yaml:"end_time"`
	OutputEvery int        `yaml:"output_every"`
	Workers     int        `yaml:"workers"`
	Backend     string     `yaml:"backend,omitempty"`
	Seed        int64      `yaml:"seed"`

	Force    ForceConfig    `yaml:"force"`
	Boundary BoundaryConfig `yaml:"boundary"`

	Cuboids []CuboidConfig `yaml:"cuboids,omitempty"`
	Discs   []DiscConfig   `yaml:"discs,omitempty"`

	// Checkpoint seeds the run from a saved snapshot instead of the bodies.
	Checkpoint string `yaml:"checkpoint,omitempty"`
}

type ForceConfig struct {
	Law           string  `yaml:"law"`
	CutoffFactor  float64 `yaml:"cutoff_factor,omitempty"`
	G             float64 `yaml:"g,omitempty"`
	MinSeparation float64 `yaml:"min_separation,omitempty"`
}

type BoundaryConfig struct {
	Left   boundary.Condition `yaml:"left"`
	Right  boundary.Condition `yaml:"right"`
	Bottom boundary.Condition `yaml:"bottom"`
	Top    boundary.Condition `yaml:"top"`
	Front  boundary.Condition `yaml:"front"`
	Back   boundary.Condition `yaml:"back"`
}

// Body holds the material parameters shared by cuboids and discs.
type Body struct {
	Mass      float64    `yaml:"mass"`
	Epsilon   float64    `yaml:"epsilon"`
	Sigma     float64    `yaml:"sigma"`
	Velocity  [3]float64 `yaml:"velocity,flow"`
	Brownian  float64    `yaml:"brownian,omitempty"`
	Immovable bool       `yaml:"immovable,omitempty"`
}

type CuboidConfig struct {
	Corner  [3]float64 `yaml:"corner,flow"`
	N       [3]int     `yaml:"n,flow"`
	Spacing float64    `yaml:"spacing"`
	Body    `yaml:",inline"`
}

type DiscConfig struct {
	Center  [3]float64 `yaml:"center,flow"`
	Radius  int        `yaml:"radius"`
	Spacing float64    `yaml:"spacing"`
	Body    `yaml:",inline"`
}

func DefaultConfig() *Config {
	return &Config{
		Dimensions:  DefaultDimensions,
		Domain:      [3]float64{60, 60, 1},
		Cutoff:      DefaultCutoff,
		Dt:          DefaultDt,
		EndTime:     DefaultEndTime,
		OutputEvery: DefaultOutputEvery,
		Force: ForceConfig{
			Law:           physics.LennardJones.String(),
			CutoffFactor:  physics.DefaultCutoffFactor,
			G:             physics.DefaultG,
			MinSeparation: physics.DefaultMinSeparation,
		},
		Boundary: BoundaryConfig{
			Left: boundary.Outflow, Right: boundary.Outflow,
			Bottom: boundary.Outflow, Top: boundary.Outflow,
			Front: boundary.Outflow, Back: boundary.Outflow,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Conditions returns the face conditions in face order.
func (c *Config) Conditions() boundary.Conditions {
	var cs boundary.Conditions
	cs[cells.Left] = c.Boundary.Left
	cs[cells.Right] = c.Boundary.Right
	cs[cells.Bottom] = c.Boundary.Bottom
	cs[cells.Top] = c.Boundary.Top
	cs[cells.Front] = c.Boundary.Front
	cs[cells.Back] = c.Boundary.Back
	return cs
}

// Law builds the configured force law.
func (c *Config) Law() (physics.Law, error) {
	kind, err := physics.ParseLawKind(c.Force.Law)
	if err != nil {
		return physics.Law{}, err
	}

	var law physics.Law
	switch kind {
	case physics.Gravity:
		law = physics.NewGravity(c.Force.G)
	default:
		law = physics.NewLennardJones(c.Force.CutoffFactor)
	}
	if c.Force.MinSeparation > 0 {
		law.MinSeparation = c.Force.MinSeparation
	}
	return law, nil
}

// Validate checks everything that can be checked without building the
// system. Geometry errors wrap ErrInvalidDomain, boundary errors
// ErrInvalidBoundary and the rest ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Dimensions != 2 && c.Dimensions != 3 {
		return fmt.Errorf("%w: dimensions must be 2 or 3, got %d", dynamo.ErrInvalidDomain, c.Dimensions)
	}
	for d := 0; d < c.Dimensions; d++ {
		if !(c.Domain[d] > 0) {
			return fmt.Errorf("%w: domain extent %d must be positive, got %g", dynamo.ErrInvalidDomain, d, c.Domain[d])
		}
	}
	if !(c.Cutoff > 0) {
		return fmt.Errorf("%w: cutoff must be positive, got %g", dynamo.ErrInvalidDomain, c.Cutoff)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfig, c.Dt)
	}
	if !(c.EndTime > 0) {
		return fmt.Errorf("%w: end_time must be positive, got %g", dynamo.ErrInvalidConfig, c.EndTime)
	}
	if c.OutputEvery < 0 || c.Workers < 0 {
		return fmt.Errorf("%w: output_every and workers must not be negative", dynamo.ErrInvalidConfig)
	}
	if c.Force.MinSeparation < 0 || c.Force.CutoffFactor < 0 {
		return fmt.Errorf("%w: force parameters must not be negative", dynamo.ErrInvalidConfig)
	}

	law, err := c.Law()
	if err != nil {
		return err
	}
	conds := c.Conditions()
	if err := conds.Validate(c.Dimensions); err != nil {
		return err
	}
	if conds.Has(boundary.Reflecting, c.Dimensions) && law.RepulsiveRange(dynamo.Params{Sigma: 1}) == 0 {
		return fmt.Errorf("%w: %s", dynamo.ErrReflectingLaw, law)
	}

	if len(c.Discs) > 0 && c.Dimensions != 2 {
		return fmt.Errorf("%w: discs are only available in two dimensions", dynamo.ErrInvalidConfig)
	}
	return nil
}
