package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/DataDog/zstd"

	"github.com/san-kum/mdsim/internal/dynamo"
)

const (
	checkpointMagic   = 0x4d44434b // "MDCK"
	checkpointVersion = 1
)

var ErrBadCheckpoint = errors.New("storage: malformed checkpoint")

// Checkpoint is a complete snapshot of a running system.
type Checkpoint struct {
	Step      int
	Time      float64
	NextID    int
	Particles []dynamo.Particle
}

type checkpointHeader struct {
	Magic   uint32
	Version uint32
	Step    int64
	Time    float64
	NextID  int64
	Count   int64
	Packed  int64
}

type particleRecord struct {
	ID      int64
	X, V    [3]float64
	F, OldF [3]float64
	Mass    float64
	Epsilon float64
	Sigma   float64
	Flags   uint8
}

const flagImmovable = 1

// Snapshot copies the live particles of ps into a checkpoint.
func Snapshot(step int, t float64, nextID int, ps dynamo.ParticleSet) *Checkpoint {
	cp := &Checkpoint{Step: step, Time: t, NextID: nextID, Particles: make([]dynamo.Particle, 0, ps.Size())}
	ps.Each(func(p *dynamo.Particle) {
		cp.Particles = append(cp.Particles, *p)
	})
	return cp
}

// WriteCheckpoint encodes cp as a fixed header followed by one
// zstd-compressed block of little-endian particle records.
func WriteCheckpoint(w io.Writer, cp *Checkpoint) error {
	records := make([]particleRecord, len(cp.Particles))
	for i, p := range cp.Particles {
		r := particleRecord{
			ID: int64(p.ID), X: p.X, V: p.V, F: p.F, OldF: p.OldF,
			Mass: p.Mass, Epsilon: p.Epsilon, Sigma: p.Sigma,
		}
		if p.Immovable {
			r.Flags |= flagImmovable
		}
		records[i] = r
	}

	raw := make([]byte, 0, binary.Size(particleRecord{})*len(records))
	raw, err := binary.Append(raw, binary.LittleEndian, records)
	if err != nil {
		return err
	}
	packed, err := zstd.CompressLevel(nil, raw, zstd.DefaultCompression)
	if err != nil {
		return fmt.Errorf("compress checkpoint: %w", err)
	}

	hdr := checkpointHeader{
		Magic: checkpointMagic, Version: checkpointVersion,
		Step: int64(cp.Step), Time: cp.Time, NextID: int64(cp.NextID),
		Count: int64(len(records)), Packed: int64(len(packed)),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	_, err = w.Write(packed)
	return err
}

func ReadCheckpoint(r io.Reader) (*Checkpoint, error) {
	var hdr checkpointHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCheckpoint, err)
	}
	if hdr.Magic != checkpointMagic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrBadCheckpoint, hdr.Magic)
	}
	if hdr.Version != checkpointVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadCheckpoint, hdr.Version)
	}
	if hdr.Count < 0 || hdr.Packed < 0 {
		return nil, fmt.Errorf("%w: negative sizes", ErrBadCheckpoint)
	}

	packed := make([]byte, hdr.Packed)
	if _, err := io.ReadFull(r, packed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCheckpoint, err)
	}
	raw, err := zstd.Decompress(nil, packed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCheckpoint, err)
	}

	records := make([]particleRecord, hdr.Count)
	if want := binary.Size(records); len(raw) != want {
		return nil, fmt.Errorf("%w: payload is %d bytes, expected %d", ErrBadCheckpoint, len(raw), want)
	}
	if _, err := binary.Decode(raw, binary.LittleEndian, records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCheckpoint, err)
	}

	cp := &Checkpoint{
		Step:      int(hdr.Step),
		Time:      hdr.Time,
		NextID:    int(hdr.NextID),
		Particles: make([]dynamo.Particle, len(records)),
	}
	for i, r := range records {
		cp.Particles[i] = dynamo.Particle{
			ID: int(r.ID), X: r.X, V: r.V, F: r.F, OldF: r.OldF,
			Mass: r.Mass, Epsilon: r.Epsilon, Sigma: r.Sigma,
			Immovable: r.Flags&flagImmovable != 0,
		}
	}
	return cp, nil
}

func SaveCheckpoint(path string, cp *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := WriteCheckpoint(w, cp); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCheckpoint(bufio.NewReader(f))
}
