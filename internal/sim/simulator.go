package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/san-kum/mdsim/internal/boundary"
	"github.com/san-kum/mdsim/internal/cells"
	"github.com/san-kum/mdsim/internal/compute"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

// Simulator owns one linked-cell system and advances it with a fixed phase
// order: move, re-bucket, reset forces, boundary rules, pair forces, drop
// clones, finish velocities.
type Simulator struct {
	lc         *cells.LinkedCells
	boundary   *boundary.Handler
	kernel     physics.Kernel
	backend    compute.Backend
	integrator Integrator
	logger     log.Logger

	metrics   []dynamo.Metric
	observers []dynamo.Observer

	step        int
	t           float64
	initialized bool
}

func New(lc *cells.LinkedCells, h *boundary.Handler, k physics.Kernel, backend compute.Backend, integrator Integrator, logger log.Logger) *Simulator {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Simulator{
		lc:         lc,
		boundary:   h,
		kernel:     k,
		backend:    backend,
		integrator: integrator,
		logger:     log.With(logger, "subsys", "sim"),
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Index() *cells.LinkedCells { return s.lc }
func (s *Simulator) Time() float64             { return s.t }
func (s *Simulator) Steps() int                { return s.step }

// Resume sets the clock, for systems restored from a checkpoint.
func (s *Simulator) Resume(step int, t float64) {
	s.step = step
	s.t = t
}

// Init evaluates the forces of the current configuration so that the first
// position update has F(t). Run calls it when needed; call it again after
// inserting particles between steps.
func (s *Simulator) Init() StepStats {
	st := s.forces()
	s.initialized = true
	return st
}

func (s *Simulator) forces() StepStats {
	var st StepStats
	s.lc.ResetForces()
	st.Boundary = s.boundary.Apply()
	st.Pairs = s.backend.Forces(s.lc, s.kernel)
	s.boundary.Release()
	st.Particles = s.lc.Size()
	return st
}

// Step advances the system by dt.
func (s *Simulator) Step(dt float64) StepStats {
	if !s.initialized {
		s.Init()
	}

	s.integrator.UpdatePositions(s.lc.Particles(), dt)
	s.lc.Rebuild()

	st := s.forces()

	// Removal during the boundary phase may have shrunk the slice.
	s.integrator.UpdateVelocities(s.lc.Particles(), dt)

	s.step++
	s.t += dt
	return st
}

// Run steps until cfg.EndTime, notifying observers and metrics every
// cfg.OutputEvery steps. Cancellation is honoured between steps.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	started := time.Now()
	result := &Result{Metrics: make(map[string]float64)}
	for _, m := range s.metrics {
		m.Reset()
	}

	if !s.initialized {
		result.Totals.Merge(s.Init())
	}

	steps := int(math.Ceil((cfg.EndTime-s.t)/cfg.Dt - 1e-9))
	level.Info(s.logger).Log(
		"msg", "run started", "particles", s.lc.Size(), "steps", steps,
		"dt", cfg.Dt, "end_time", cfg.EndTime, "backend", s.backend.Name(), "law", s.kernel.Law)

	if err := s.output(); err != nil {
		return result, err
	}

	var window StepStats
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, started)
			return result, ctx.Err()
		default:
		}

		st := s.Step(cfg.Dt)
		result.Totals.Merge(st)
		window.Merge(st)

		if cfg.OutputEvery > 0 && s.step%cfg.OutputEvery == 0 {
			s.logWindow(window)
			window = StepStats{}
			if err := s.output(); err != nil {
				s.finish(result, started)
				return result, err
			}
		}
	}

	if cfg.OutputEvery <= 0 || s.step%cfg.OutputEvery != 0 {
		s.logWindow(window)
		if err := s.output(); err != nil {
			s.finish(result, started)
			return result, err
		}
	}

	s.finish(result, started)
	level.Info(s.logger).Log(
		"msg", "run finished", "steps", result.Steps, "t", result.Time,
		"particles", result.Particles, "removed", result.Totals.Boundary.Removed,
		"elapsed", result.Elapsed)
	return result, nil
}

func (s *Simulator) output() error {
	for _, m := range s.metrics {
		m.Observe(s.lc, s.t)
	}
	for _, obs := range s.observers {
		if err := obs.OnStep(s.step, s.t, s.lc); err != nil {
			return &dynamo.SimulationError{Step: s.step, Time: s.t, Wrapped: err}
		}
	}
	return nil
}

func (s *Simulator) logWindow(w StepStats) {
	if w.Pairs.Skipped > 0 {
		level.Warn(s.logger).Log("msg", "skipped pairs below minimum separation",
			"step", s.step, "count", w.Pairs.Skipped)
	}
	level.Debug(s.logger).Log(
		"step", s.step, "t", s.t, "particles", s.lc.Size(),
		"pairs", w.Pairs.Evaluated, "removed", w.Boundary.Removed,
		"wrapped", w.Boundary.Wrapped, "mirrored", w.Boundary.Mirrored)
}

func (s *Simulator) finish(result *Result, started time.Time) {
	result.Steps = s.step
	result.Time = s.t
	result.Particles = s.lc.Size()
	result.Elapsed = time.Since(started)
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.EndTime > 0) {
		return fmt.Errorf("%w: end time must be positive, got %f", dynamo.ErrInvalidConfig, cfg.EndTime)
	}
	if cfg.OutputEvery < 0 {
		return fmt.Errorf("%w: output cadence must not be negative, got %d", dynamo.ErrInvalidConfig, cfg.OutputEvery)
	}
	return nil
}
