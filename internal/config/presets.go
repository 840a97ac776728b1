package config

import (
	"slices"

	"github.com/san-kum/mdsim/internal/boundary"
)

var argon = Body{Mass: 1, Epsilon: 5, Sigma: 1}

func faces(c boundary.Condition) BoundaryConfig {
	return BoundaryConfig{Left: c, Right: c, Bottom: c, Top: c, Front: c, Back: c}
}

// Presets groups ready-made scenarios by force law.
var Presets = map[string]map[string]*Config{
	"lennard-jones": {
		"collision": {
			Name: "collision", Dimensions: 2, Domain: [3]float64{180, 90, 1}, Cutoff: 3,
			Dt: 0.0002, EndTime: 5, OutputEvery: 250, Seed: 1,
			Force:    ForceConfig{Law: "lennard-jones", CutoffFactor: 3, MinSeparation: 1e-6},
			Boundary: faces(boundary.Outflow),
			Cuboids: []CuboidConfig{
				{Corner: [3]float64{20, 20, 0}, N: [3]int{100, 20, 1}, Spacing: 1.1225, Body: withBrownian(argon, 0.1)},
				{Corner: [3]float64{70, 60, 0}, N: [3]int{20, 20, 1}, Spacing: 1.1225,
					Body: withVelocity(withBrownian(argon, 0.1), [3]float64{0, -10, 0})},
			},
		},
		"outflow-box": {
			Name: "outflow-box", Dimensions: 2, Domain: [3]float64{4, 4, 1}, Cutoff: 1,
			Dt: 0.001, EndTime: 20, OutputEvery: 100, Seed: 1,
			Force:    ForceConfig{Law: "lennard-jones", CutoffFactor: 2.5, MinSeparation: 1e-6},
			Boundary: faces(boundary.Outflow),
			Cuboids: []CuboidConfig{
				{Corner: [3]float64{0.5, 0.5, 0}, N: [3]int{4, 4, 1}, Spacing: 1, Body: withBrownian(Body{Mass: 1, Epsilon: 1, Sigma: 0.3}, 0.5)},
			},
		},
		"reflecting-drop": {
			Name: "reflecting-drop", Dimensions: 2, Domain: [3]float64{120, 50, 1}, Cutoff: 3,
			Dt: 0.0005, EndTime: 10, OutputEvery: 100, Seed: 1,
			Force:    ForceConfig{Law: "lennard-jones", CutoffFactor: 2.5, MinSeparation: 1e-6},
			Boundary: faces(boundary.Reflecting),
			Discs: []DiscConfig{
				{Center: [3]float64{60, 25, 0}, Radius: 15, Spacing: 1.1225,
					Body: withVelocity(argon, [3]float64{0, -10, 0})},
			},
		},
		"periodic-gas": {
			Name: "periodic-gas", Dimensions: 3, Domain: [3]float64{30, 30, 30}, Cutoff: 3,
			Dt: 0.0005, EndTime: 2, OutputEvery: 100, Seed: 1, Workers: 0,
			Force:    ForceConfig{Law: "lennard-jones", CutoffFactor: 2.5, MinSeparation: 1e-6},
			Boundary: faces(boundary.Periodic),
			Cuboids: []CuboidConfig{
				{Corner: [3]float64{2, 2, 2}, N: [3]int{10, 10, 10}, Spacing: 2.5, Body: withBrownian(Body{Mass: 1, Epsilon: 1, Sigma: 1}, 1)},
			},
		},
		"mixed-walls": {
			Name: "mixed-walls", Dimensions: 2, Domain: [3]float64{40, 40, 1}, Cutoff: 3,
			Dt: 0.0005, EndTime: 5, OutputEvery: 100, Seed: 1,
			Force: ForceConfig{Law: "lennard-jones", CutoffFactor: 2.5, MinSeparation: 1e-6},
			Boundary: BoundaryConfig{
				Left: boundary.Reflecting, Right: boundary.Outflow,
				Bottom: boundary.Periodic, Top: boundary.Periodic,
				Front: boundary.Outflow, Back: boundary.Outflow,
			},
			Cuboids: []CuboidConfig{
				{Corner: [3]float64{10, 10, 0}, N: [3]int{10, 10, 1}, Spacing: 1.1225,
					Body: withVelocity(withBrownian(argon, 0.2), [3]float64{-4, 3, 0})},
			},
		},
	},
	"gravity": {
		"cluster": {
			Name: "cluster", Dimensions: 2, Domain: [3]float64{100, 100, 1}, Cutoff: 25,
			Dt: 0.001, EndTime: 10, OutputEvery: 100, Seed: 1,
			Force:    ForceConfig{Law: "gravity", G: 1, MinSeparation: 0.05},
			Boundary: faces(boundary.Outflow),
			Discs: []DiscConfig{
				{Center: [3]float64{50, 50, 0}, Radius: 6, Spacing: 2, Body: withBrownian(Body{Mass: 1, Sigma: 1}, 0.3)},
			},
		},
		"periodic-dust": {
			Name: "periodic-dust", Dimensions: 3, Domain: [3]float64{40, 40, 40}, Cutoff: 10,
			Dt: 0.001, EndTime: 5, OutputEvery: 100, Seed: 1,
			Force:    ForceConfig{Law: "gravity", G: 0.5, MinSeparation: 0.05},
			Boundary: faces(boundary.Periodic),
			Cuboids: []CuboidConfig{
				{Corner: [3]float64{5, 5, 5}, N: [3]int{6, 6, 6}, Spacing: 5, Body: withBrownian(Body{Mass: 1, Sigma: 1}, 0.2)},
			},
		},
	},
}

func withBrownian(b Body, speed float64) Body {
	b.Brownian = speed
	return b
}

func withVelocity(b Body, v [3]float64) Body {
	b.Velocity = v
	return b
}

// GetPreset returns a copy of a preset so callers may override fields.
func GetPreset(law, preset string) *Config {
	lawPresets, ok := Presets[law]
	if !ok {
		return nil
	}
	cfg, ok := lawPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	c.Cuboids = slices.Clone(cfg.Cuboids)
	c.Discs = slices.Clone(cfg.Discs)
	return &c
}

// FindPreset looks a preset up by name across all laws.
func FindPreset(name string) *Config {
	for _, law := range ListLaws() {
		if cfg := GetPreset(law, name); cfg != nil {
			return cfg
		}
	}
	return nil
}

func ListLaws() []string {
	laws := make([]string, 0, len(Presets))
	for law := range Presets {
		laws = append(laws, law)
	}
	slices.Sort(laws)
	return laws
}

func ListPresets(law string) []string {
	lawPresets, ok := Presets[law]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(lawPresets))
	for name := range lawPresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
