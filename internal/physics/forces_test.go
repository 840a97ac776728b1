package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/mdsim/internal/dynamo"
)

func TestLennardJonesMagnitude(t *testing.T) {
	law := NewLennardJones(0)
	p := dynamo.Params{Mass: 1, Epsilon: 5, Sigma: 1}

	f, ok := law.Force(dynamo.Vec3{0, 0, 0}, dynamo.Vec3{2, 0, 0}, p, p)
	if !ok {
		t.Fatal("pair at r=2 was skipped")
	}

	// 24*5/4 * (2/4096 - 1/64) * 2
	want := 0.908203125
	if math.Abs(f.Norm()-want) > 1e-12 {
		t.Errorf("|F| = %.12f, expected %.12f", f.Norm(), want)
	}
	if f[0] <= 0 {
		t.Errorf("attractive force should point towards the partner, got %v", f)
	}
}

func TestLennardJonesEquilibrium(t *testing.T) {
	law := NewLennardJones(2.5)
	p := dynamo.Params{Mass: 1, Epsilon: 1, Sigma: 1.2}
	r0 := law.RepulsiveRange(p)

	f, _ := law.Force(dynamo.Vec3{}, dynamo.Vec3{r0, 0, 0}, p, p)
	if math.Abs(f[0]) > 1e-9 {
		t.Errorf("force at 2^(1/6)σ should vanish, got %g", f[0])
	}

	f, _ = law.Force(dynamo.Vec3{}, dynamo.Vec3{0.9 * r0, 0, 0}, p, p)
	if f[0] >= 0 {
		t.Errorf("force inside the repulsive range should push away, got %g", f[0])
	}
}

func TestLennardJonesCutoff(t *testing.T) {
	law := NewLennardJones(2.5)
	p := dynamo.Params{Mass: 1, Epsilon: 1, Sigma: 1}

	f, ok := law.Force(dynamo.Vec3{}, dynamo.Vec3{0, 2.6, 0}, p, p)
	if !ok || f != (dynamo.Vec3{}) {
		t.Errorf("expected zero force beyond cutoff, got %v (ok=%v)", f, ok)
	}
}

func TestMixingRules(t *testing.T) {
	eps, sigma := Mix(dynamo.Params{Epsilon: 1, Sigma: 1}, dynamo.Params{Epsilon: 4, Sigma: 2})
	if eps != 2 {
		t.Errorf("epsilon = %g, expected geometric mean 2", eps)
	}
	if sigma != 1.5 {
		t.Errorf("sigma = %g, expected arithmetic mean 1.5", sigma)
	}
}

func TestGravity(t *testing.T) {
	law := NewGravity(2)
	a := dynamo.Params{Mass: 3}
	b := dynamo.Params{Mass: 5}

	f, ok := law.Force(dynamo.Vec3{0, 0, 0}, dynamo.Vec3{0, 0, 2}, a, b)
	if !ok {
		t.Fatal("pair was skipped")
	}
	want := 2.0 * 3 * 5 / 4
	if math.Abs(f[2]-want) > 1e-12 || f[0] != 0 || f[1] != 0 {
		t.Errorf("F = %v, expected (0, 0, %g)", f, want)
	}
	if law.RepulsiveRange(a) != 0 {
		t.Error("gravity has no repulsive core")
	}
}

func TestMinSeparationSkips(t *testing.T) {
	for _, law := range []Law{NewLennardJones(2.5), NewGravity(1)} {
		p := dynamo.Params{Mass: 1, Epsilon: 1, Sigma: 1}
		_, ok := law.Force(dynamo.Vec3{1, 1, 1}, dynamo.Vec3{1, 1, 1}, p, p)
		if ok {
			t.Errorf("%s: coincident particles should be skipped", law)
		}
	}
}

func TestParseLawKind(t *testing.T) {
	tests := []struct {
		name string
		want LawKind
	}{
		{"lennard-jones", LennardJones},
		{"LJ", LennardJones},
		{" gravity ", Gravity},
	}
	for _, tt := range tests {
		got, err := ParseLawKind(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("ParseLawKind(%q) = %v, %v", tt.name, got, err)
		}
	}

	if _, err := ParseLawKind("coulomb"); !errors.Is(err, dynamo.ErrUnknownLaw) {
		t.Errorf("expected ErrUnknownLaw, got %v", err)
	}
}
