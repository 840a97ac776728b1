// Package experiment assembles a runnable simulator from a configuration
// document.
package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/san-kum/mdsim/internal/boundary"
	"github.com/san-kum/mdsim/internal/cells"
	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/generator"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/physics"
	"github.com/san-kum/mdsim/internal/sim"
	"github.com/san-kum/mdsim/internal/storage"
)

type Experiment struct {
	cfg       *config.Config
	law       physics.Law
	backend   string
	simulator *sim.Simulator
}

// New validates cfg and builds its system with the configured seed.
func New(cfg *config.Config, logger log.Logger) (*Experiment, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s, law, backend, err := build(cfg, cfg.Seed, NewRegistry(), logger)
	if err != nil {
		return nil, err
	}
	return &Experiment{cfg: cfg, law: law, backend: backend, simulator: s}, nil
}

func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }
func (e *Experiment) Law() physics.Law          { return e.law }
func (e *Experiment) Backend() string           { return e.backend }

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{Dt: e.cfg.Dt, EndTime: e.cfg.EndTime, OutputEvery: e.cfg.OutputEvery}
}

// Metadata describes the run for the store.
func (e *Experiment) Metadata() storage.RunMetadata {
	name := e.cfg.Name
	if name == "" {
		name = "run"
	}
	return storage.RunMetadata{
		Name:       name,
		Seed:       e.cfg.Seed,
		Dimensions: e.cfg.Dimensions,
		Origin:     e.cfg.Origin,
		Domain:     e.cfg.Domain,
		Cutoff:     e.cfg.Cutoff,
		Dt:         e.cfg.Dt,
		EndTime:    e.cfg.EndTime,
		Law:        e.law.Kind.String(),
		Boundary:   e.cfg.Conditions().String(),
		Backend:    e.backend,
		Particles:  e.simulator.Index().Size(),
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.SimConfig())
}

// Checkpoint snapshots the current state of the system.
func (e *Experiment) Checkpoint() *storage.Checkpoint {
	lc := e.simulator.Index()
	return storage.Snapshot(e.simulator.Steps(), e.simulator.Time(), lc.NextID(), lc)
}

// Ensemble builds replicas of cfg that differ only in their seed.
func Ensemble(cfg *config.Config, runs int, logger log.Logger) (*sim.Ensemble, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Checkpoint != "" {
		return nil, fmt.Errorf("%w: replicas cannot start from a checkpoint", dynamo.ErrInvalidConfig)
	}

	registry := NewRegistry()
	builder := func(seed int64) (*sim.Simulator, error) {
		s, _, _, err := build(cfg, seed, registry, log.With(logger, "seed", seed))
		return s, err
	}
	return sim.NewEnsemble(builder, runs, cfg.Seed), nil
}

func build(cfg *config.Config, seed int64, registry *Registry, logger log.Logger) (*sim.Simulator, physics.Law, string, error) {
	law, err := cfg.Law()
	if err != nil {
		return nil, law, "", err
	}

	lc, err := cells.New(dynamo.Vec3(cfg.Origin), dynamo.Vec3(cfg.Domain), cfg.Cutoff, cfg.Dimensions)
	if err != nil {
		return nil, law, "", err
	}

	h, err := boundary.New(lc, cfg.Conditions(), law, logger)
	if err != nil {
		return nil, law, "", err
	}

	backend, err := registry.GetBackend(cfg.Backend, cfg.Workers)
	if err != nil {
		return nil, law, "", fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	integrator, err := registry.GetIntegrator("verlet", cfg.Workers)
	if err != nil {
		return nil, law, "", err
	}

	s := sim.New(lc, h, physics.NewKernel(law, cfg.Cutoff), backend, integrator, logger)
	for _, m := range metrics.Standard(cfg.Dimensions) {
		s.AddMetric(m)
	}

	if cfg.Checkpoint != "" {
		cp, err := storage.LoadCheckpoint(cfg.Checkpoint)
		if err != nil {
			return nil, law, "", err
		}
		if err := lc.Restore(cp.Particles); err != nil {
			return nil, law, "", err
		}
		lc.Reserve(cp.NextID)
		s.Resume(cp.Step, cp.Time)
		level.Info(logger).Log("msg", "restored checkpoint", "path", cfg.Checkpoint,
			"particles", lc.Size(), "step", cp.Step, "t", cp.Time)
	} else if err := populate(lc, cfg, seed); err != nil {
		return nil, law, "", err
	}

	level.Info(logger).Log("msg", "system built", "dims", cfg.Dimensions,
		"cells", fmt.Sprint(lc.CellCount()), "particles", lc.Size(),
		"law", law, "boundary", cfg.Conditions().String(), "backend", backend.Name())
	return s, law, backend.Name(), nil
}

func populate(lc *cells.LinkedCells, cfg *config.Config, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	for i, c := range cfg.Cuboids {
		ps, err := generator.Cuboid{
			Corner:   dynamo.Vec3(c.Corner),
			N:        c.N,
			H:        c.Spacing,
			Material: material(c.Body),
		}.Generate(cfg.Dimensions, rng)
		if err != nil {
			return fmt.Errorf("cuboid %d: %w", i, err)
		}
		lc.AddAll(ps)
	}
	for i, d := range cfg.Discs {
		ps, err := generator.Disc{
			Center:   dynamo.Vec3(d.Center),
			Radius:   d.Radius,
			H:        d.Spacing,
			Material: material(d.Body),
		}.Generate(cfg.Dimensions, rng)
		if err != nil {
			return fmt.Errorf("disc %d: %w", i, err)
		}
		lc.AddAll(ps)
	}
	return nil
}

func material(b config.Body) generator.Material {
	return generator.Material{
		Mass:      b.Mass,
		Epsilon:   b.Epsilon,
		Sigma:     b.Sigma,
		Velocity:  dynamo.Vec3(b.Velocity),
		Immovable: b.Immovable,
		Brownian:  b.Brownian,
	}
}
