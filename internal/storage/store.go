package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/san-kum/mdsim/internal/metrics"
)

const (
	metadataFile = "metadata.json"
	historyFile  = "history.csv"
	framesFile   = "frames.xyz"
	finalFile    = "final.ckpt"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dimensions int                `json:"dimensions"`
	Origin     [3]float64         `json:"origin"`
	Domain     [3]float64         `json:"domain"`
	Cutoff     float64            `json:"cutoff"`
	Dt         float64            `json:"dt"`
	EndTime    float64            `json:"end_time"`
	Law        string             `json:"law"`
	Boundary   string             `json:"boundary"`
	Backend    string             `json:"backend"`
	Particles  int                `json:"particles"`
	Steps      int                `json:"steps"`
	Removed    int                `json:"removed"`
	Skipped    int                `json:"skipped_pairs"`
	Elapsed    float64            `json:"elapsed_seconds"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Create makes the directory of a new run and returns a recorder writing
// into it.
func (s *Store) Create(meta RunMetadata, dims int) (*Recorder, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Name, meta.Timestamp.UnixNano())
	}

	dir := s.Dir(meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if err := writeMetadata(dir, &meta); err != nil {
		return nil, err
	}
	return newRecorder(dir, meta, dims)
}

func writeMetadata(dir string, meta *RunMetadata) error {
	f, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int { return a.Timestamp.Compare(b.Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

var historyHeader = []string{"time", "particles", "kinetic", "temperature", "momentum", "mean_speed", "speed_std"}

func sampleRow(s metrics.Sample) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }
	return []string{
		f(s.Time), strconv.Itoa(s.Count), f(s.Kinetic), f(s.Temperature),
		f(s.Momentum), f(s.MeanSpeed), f(s.SpeedStdDev),
	}
}

// LoadHistory reads the per-output summary rows of a run.
func (s *Store) LoadHistory(runID string) ([]metrics.Sample, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), historyFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(historyHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []metrics.Sample{}, nil
	}

	samples := make([]metrics.Sample, 0, len(records)-1)
	for _, rec := range records[1:] {
		var vals [7]float64
		for j := range vals {
			vals[j], err = strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", historyFile, err)
			}
		}
		samples = append(samples, metrics.Sample{
			Time: vals[0], Count: int(vals[1]), Kinetic: vals[2], Temperature: vals[3],
			Momentum: vals[4], MeanSpeed: vals[5], SpeedStdDev: vals[6],
		})
	}
	return samples, nil
}

// LoadFinal returns the checkpoint written when the run finished.
func (s *Store) LoadFinal(runID string) (*Checkpoint, error) {
	return LoadCheckpoint(filepath.Join(s.Dir(runID), finalFile))
}
