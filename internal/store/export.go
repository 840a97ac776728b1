package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/storage"
)

type ParticleData struct {
	ID int        `json:"id"`
	X  [3]float64 `json:"x"`
	V  [3]float64 `json:"v"`
	F  [3]float64 `json:"f"`
}

type ExportData struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Law         string             `json:"law"`
	Boundary    string             `json:"boundary"`
	Dt          float64            `json:"dt"`
	EndTime     float64            `json:"end_time"`
	Steps       int                `json:"steps"`
	Times       []float64          `json:"times"`
	Counts      []int              `json:"counts"`
	Kinetic     []float64          `json:"kinetic"`
	Temperature []float64          `json:"temperature"`
	Particles   []ParticleData     `json:"particles,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Build gathers a stored run into one document. final may be nil.
func Build(meta *storage.RunMetadata, history []metrics.Sample, final *storage.Checkpoint) ExportData {
	data := ExportData{
		ID:          meta.ID,
		Name:        meta.Name,
		Law:         meta.Law,
		Boundary:    meta.Boundary,
		Dt:          meta.Dt,
		EndTime:     meta.EndTime,
		Steps:       meta.Steps,
		Times:       make([]float64, len(history)),
		Counts:      make([]int, len(history)),
		Kinetic:     make([]float64, len(history)),
		Temperature: make([]float64, len(history)),
		Metrics:     meta.Metrics,
	}

	for i, s := range history {
		data.Times[i] = s.Time
		data.Counts[i] = s.Count
		data.Kinetic[i] = s.Kinetic
		data.Temperature[i] = s.Temperature
	}

	if final != nil {
		data.Particles = make([]ParticleData, len(final.Particles))
		for i, p := range final.Particles {
			data.Particles[i] = ParticleData{ID: p.ID, X: p.X, V: p.V, F: p.F}
		}
	}
	return data
}

func Encode(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportRun writes a stored run as JSON to path, or to stdout when path is
// empty or "-".
func ExportRun(st *storage.Store, runID, path string) error {
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}
	final, err := st.LoadFinal(runID)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	data := Build(meta, history, final)
	if path == "" || path == "-" {
		return Encode(os.Stdout, data)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return Encode(file, data)
}
