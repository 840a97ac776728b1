package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/sim"
)

// Recorder is an observer that appends a history row and an XYZ frame at
// every output step of a run.
type Recorder struct {
	dir  string
	meta RunMetadata
	dims int

	history *os.File
	csv     *csv.Writer
	frames  *os.File
	xyz     *bufio.Writer
}

func newRecorder(dir string, meta RunMetadata, dims int) (*Recorder, error) {
	history, err := os.Create(filepath.Join(dir, historyFile))
	if err != nil {
		return nil, err
	}
	frames, err := os.Create(filepath.Join(dir, framesFile))
	if err != nil {
		history.Close()
		return nil, err
	}

	r := &Recorder{
		dir:     dir,
		meta:    meta,
		dims:    dims,
		history: history,
		csv:     csv.NewWriter(history),
		frames:  frames,
		xyz:     bufio.NewWriter(frames),
	}
	if err := r.csv.Write(historyHeader); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Recorder) ID() string  { return r.meta.ID }
func (r *Recorder) Dir() string { return r.dir }

func (r *Recorder) OnStep(step int, t float64, ps dynamo.ParticleSet) error {
	if err := r.csv.Write(sampleRow(metrics.Measure(ps, t, r.dims))); err != nil {
		return err
	}
	r.csv.Flush()
	if err := r.csv.Error(); err != nil {
		return err
	}
	return r.writeFrame(step, t, ps)
}

// writeFrame appends one extended-XYZ frame: count line, comment line, then
// one "id x y z vx vy vz" line per particle.
func (r *Recorder) writeFrame(step int, t float64, ps dynamo.ParticleSet) error {
	fmt.Fprintf(r.xyz, "%d\n", ps.Size())
	fmt.Fprintf(r.xyz, "step=%d time=%.6f\n", step, t)
	ps.Each(func(p *dynamo.Particle) {
		fmt.Fprintf(r.xyz, "%d %.6f %.6f %.6f %.6f %.6f %.6f\n",
			p.ID, p.X[0], p.X[1], p.X[2], p.V[0], p.V[1], p.V[2])
	})
	return r.xyz.Flush()
}

// Finish writes the final checkpoint and metadata and closes the files.
func (r *Recorder) Finish(result *sim.Result, final *Checkpoint) error {
	defer r.Close()

	if final != nil {
		if err := SaveCheckpoint(filepath.Join(r.dir, finalFile), final); err != nil {
			return err
		}
	}

	r.meta.Particles = result.Particles
	r.meta.Steps = result.Steps
	r.meta.Removed = result.Totals.Boundary.Removed
	r.meta.Skipped = result.Totals.Pairs.Skipped
	r.meta.Elapsed = result.Elapsed.Seconds()
	r.meta.Metrics = result.Metrics
	return writeMetadata(r.dir, &r.meta)
}

// Close flushes and closes the output files without writing metadata.
func (r *Recorder) Close() {
	r.csv.Flush()
	r.history.Close()
	r.xyz.Flush()
	r.frames.Close()
}
