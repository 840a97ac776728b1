package experiment

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/sim"
	"github.com/san-kum/mdsim/internal/storage"
)

func smallBox(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.GetPreset("lennard-jones", "outflow-box")
	if cfg == nil {
		t.Fatal("missing outflow-box preset")
	}
	cfg.EndTime = 0.05
	cfg.OutputEvery = 10
	return cfg
}

func TestNew_BuildsPreset(t *testing.T) {
	e, err := New(smallBox(t), nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if n := e.Simulator().Index().Size(); n != 16 {
		t.Errorf("expected 16 particles, got %d", n)
	}
	if e.Backend() != "serial" && e.Backend() != "cpu" {
		t.Errorf("unexpected backend %q", e.Backend())
	}

	meta := e.Metadata()
	if meta.Name != "outflow-box" || meta.Law != "lennard-jones" || meta.Particles != 16 {
		t.Errorf("unexpected metadata %+v", meta)
	}

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Steps != 50 {
		t.Errorf("expected 50 steps, got %d", result.Steps)
	}
	for _, name := range []string{"kinetic_energy", "temperature", "particles"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("missing metric %q", name)
		}
	}
}

func TestNew_SameSeedSameState(t *testing.T) {
	a, err := New(smallBox(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(smallBox(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	pa, pb := a.Simulator().Index().Particles(), b.Simulator().Index().Particles()
	for i := range pa {
		if pa[i].V != pb[i].V {
			t.Fatalf("particle %d: velocities differ for the same seed", i)
		}
	}
}

func TestNew_Errors(t *testing.T) {
	cfg := smallBox(t)
	cfg.Backend = "quantum"
	if _, err := New(cfg, nil); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown backend, got %v", err)
	}

	cfg = smallBox(t)
	cfg.Dt = 0
	if _, err := New(cfg, nil); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero dt, got %v", err)
	}
}

func TestCheckpointResume(t *testing.T) {
	cfg := smallBox(t)
	cfg.EndTime = 0.02
	first, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := first.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "state.ckpt")
	cp := first.Checkpoint()
	if err := storage.SaveCheckpoint(path, cp); err != nil {
		t.Fatal(err)
	}

	resumed := smallBox(t)
	resumed.Checkpoint = path
	second, err := New(resumed, nil)
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}

	s := second.Simulator()
	if s.Steps() != cp.Step || s.Time() != cp.Time {
		t.Errorf("clock not restored: step %d t %g", s.Steps(), s.Time())
	}
	if s.Index().Size() != len(cp.Particles) || s.Index().NextID() != cp.NextID {
		t.Errorf("particles not restored: size %d next id %d", s.Index().Size(), s.Index().NextID())
	}

	result, err := second.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Steps != 50 {
		t.Errorf("expected the resumed run to end at step 50, got %d", result.Steps)
	}
}

func TestEnsemble(t *testing.T) {
	cfg := smallBox(t)
	ens, err := Ensemble(cfg, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	results, err := ens.Run(context.Background(), sim.Config{Dt: cfg.Dt, EndTime: cfg.EndTime, OutputEvery: cfg.OutputEvery})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	cfg.Checkpoint = "state.ckpt"
	if _, err := Ensemble(cfg, 2, nil); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for checkpoint replicas, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if got := r.ListBackends(); len(got) != 3 || got[0] != "auto" {
		t.Errorf("unexpected backends %v", got)
	}
	b, err := r.GetBackend("serial", 4)
	if err != nil || b.Name() != "serial" {
		t.Errorf("expected serial backend, got %v, %v", b, err)
	}
	if _, err := r.GetIntegrator("rk4", 1); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
