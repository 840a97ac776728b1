package storage

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/sim"
)

type particleSlice []*dynamo.Particle

func (s particleSlice) Size() int { return len(s) }
func (s particleSlice) Each(fn func(p *dynamo.Particle)) {
	for _, p := range s {
		fn(p)
	}
}

func testParticles() particleSlice {
	return particleSlice{
		{ID: 3, X: dynamo.Vec3{1, 2, 0}, V: dynamo.Vec3{0.5, 0, 0}, Mass: 1, Epsilon: 5, Sigma: 1},
		{ID: 7, X: dynamo.Vec3{4, 2, 0}, V: dynamo.Vec3{-0.5, 0, 0}, F: dynamo.Vec3{0.1, 0.2, 0.3}, Mass: 2, Epsilon: 1, Sigma: 1.2, Immovable: true},
	}
}

func TestStoreRecordLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	rec, err := st.Create(RunMetadata{Name: "test", Seed: 42, Dt: 0.01, EndTime: 1, Law: "lennard-jones"}, 2)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rec.ID() == "" {
		t.Error("expected non-empty run id")
	}

	ps := testParticles()
	if err := rec.OnStep(0, 0, ps); err != nil {
		t.Fatal(err)
	}
	if err := rec.OnStep(10, 0.1, ps[:1]); err != nil {
		t.Fatal(err)
	}

	result := &sim.Result{Steps: 10, Time: 0.1, Particles: 1, Metrics: map[string]float64{"kinetic_energy": 0.125}, Elapsed: time.Second}
	result.Totals.Boundary.Removed = 1
	if err := rec.Finish(result, Snapshot(10, 0.1, 8, ps[:1])); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	meta, err := st.Load(rec.ID())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "test" || meta.Seed != 42 || meta.Steps != 10 || meta.Removed != 1 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["kinetic_energy"] != 0.125 {
		t.Errorf("expected kinetic energy 0.125, got %f", meta.Metrics["kinetic_energy"])
	}

	history, err := st.LoadHistory(rec.ID())
	if err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history))
	}
	if history[0].Count != 2 || history[1].Count != 1 || history[1].Time != 0.1 {
		t.Errorf("unexpected history %+v", history)
	}
	// 0.5*1*0.25 + 0.5*2*0.25
	if math.Abs(history[0].Kinetic-0.375) > 1e-9 {
		t.Errorf("kinetic = %g, expected 0.375", history[0].Kinetic)
	}

	frames, err := os.ReadFile(filepath.Join(st.Dir(rec.ID()), framesFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(frames)), "\n")
	if len(lines) != 2+2+2+1 || lines[0] != "2" || !strings.HasPrefix(lines[2], "3 1.000000 2.000000") {
		t.Errorf("unexpected frames:\n%s", frames)
	}

	final, err := st.LoadFinal(rec.ID())
	if err != nil {
		t.Fatal(err)
	}
	if len(final.Particles) != 1 || final.NextID != 8 {
		t.Errorf("unexpected final checkpoint %+v", final)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != rec.ID() {
		t.Errorf("expected one listed run, got %+v", runs)
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	cp := Snapshot(150, 1.5, 12, testParticles())

	var buf bytes.Buffer
	if err := WriteCheckpoint(&buf, cp); err != nil {
		t.Fatal(err)
	}
	got, err := ReadCheckpoint(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.Step != 150 || got.Time != 1.5 || got.NextID != 12 {
		t.Errorf("header mismatch: %+v", got)
	}
	if len(got.Particles) != 2 {
		t.Fatalf("expected 2 particles, got %d", len(got.Particles))
	}
	for i := range cp.Particles {
		if got.Particles[i] != cp.Particles[i] {
			t.Errorf("particle %d: got %+v, expected %+v", i, got.Particles[i], cp.Particles[i])
		}
	}
}

func TestCheckpointRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", bytes.Repeat([]byte{0xff}, 64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCheckpoint(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrBadCheckpoint) {
				t.Errorf("expected ErrBadCheckpoint, got %v", err)
			}
		})
	}

	var buf bytes.Buffer
	if err := WriteCheckpoint(&buf, Snapshot(1, 0.1, 2, testParticles())); err != nil {
		t.Fatal(err)
	}
	truncated := buf.Bytes()[:buf.Len()-4]
	if _, err := ReadCheckpoint(bytes.NewReader(truncated)); !errors.Is(err, ErrBadCheckpoint) {
		t.Errorf("expected ErrBadCheckpoint for truncated data, got %v", err)
	}
}
