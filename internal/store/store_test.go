package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/sim"
	"github.com/san-kum/mdsim/internal/storage"
)

type particleSlice []*dynamo.Particle

func (s particleSlice) Size() int { return len(s) }
func (s particleSlice) Each(fn func(p *dynamo.Particle)) {
	for _, p := range s {
		fn(p)
	}
}

func TestExportRun(t *testing.T) {
	tmpDir := t.TempDir()
	st := storage.New(filepath.Join(tmpDir, "runs"))
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	rec, err := st.Create(storage.RunMetadata{Name: "export", Law: "gravity", Dt: 0.01, EndTime: 0.02}, 3)
	if err != nil {
		t.Fatal(err)
	}
	ps := particleSlice{
		{ID: 0, X: dynamo.Vec3{1, 1, 1}, V: dynamo.Vec3{1, 0, 0}, Mass: 1},
		{ID: 1, X: dynamo.Vec3{2, 2, 2}, Mass: 1},
	}
	for step := 0; step < 3; step++ {
		if err := rec.OnStep(step, float64(step)*0.01, ps); err != nil {
			t.Fatal(err)
		}
	}
	result := &sim.Result{Steps: 2, Particles: 2, Metrics: map[string]float64{"particles": 2}}
	if err := rec.Finish(result, storage.Snapshot(2, 0.02, 2, ps)); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(tmpDir, "run.json")
	if err := ExportRun(st, rec.ID(), out); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if data.Name != "export" || data.Law != "gravity" || data.Steps != 2 {
		t.Errorf("unexpected header %+v", data)
	}
	if len(data.Times) != 3 || data.Counts[2] != 2 {
		t.Errorf("unexpected series: times=%v counts=%v", data.Times, data.Counts)
	}
	if len(data.Particles) != 2 || data.Particles[1].X != [3]float64{2, 2, 2} {
		t.Errorf("unexpected particles %+v", data.Particles)
	}
	if data.Kinetic[0] != 0.5 {
		t.Errorf("expected kinetic 0.5, got %g", data.Kinetic[0])
	}
}

func TestExportRunMissing(t *testing.T) {
	st := storage.New(t.TempDir())
	if err := ExportRun(st, "missing", filepath.Join(t.TempDir(), "x.json")); err == nil {
		t.Error("expected error for missing run")
	}
}
