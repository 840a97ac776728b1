// Package optim sweeps configuration parameters over a grid and ranks the
// resulting runs by a metric.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/experiment"
)

// Setters are the parameters a sweep may vary.
var Setters = map[string]func(cfg *config.Config, v float64){
	"dt":       func(cfg *config.Config, v float64) { cfg.Dt = v },
	"end_time": func(cfg *config.Config, v float64) { cfg.EndTime = v },
	"cutoff":   func(cfg *config.Config, v float64) { cfg.Cutoff = v },
	"cutoff_factor": func(cfg *config.Config, v float64) {
		cfg.Force.CutoffFactor = v
	},
	"g": func(cfg *config.Config, v float64) { cfg.Force.G = v },
	"brownian": func(cfg *config.Config, v float64) {
		for i := range cfg.Cuboids {
			cfg.Cuboids[i].Brownian = v
		}
		for i := range cfg.Discs {
			cfg.Discs[i].Brownian = v
		}
	},
	"seed": func(cfg *config.Config, v float64) { cfg.Seed = int64(v) },
}

func ParamNames() []string {
	names := make([]string, 0, len(Setters))
	for name := range Setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Point is one evaluated grid node.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d parameters but %d ranges", dynamo.ErrInvalidConfig, len(params), len(ranges))
	}
	for i, name := range params {
		if _, ok := Setters[name]; !ok {
			return nil, fmt.Errorf("%w: cannot sweep %q (have %v)", dynamo.ErrInvalidConfig, name, ParamNames())
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("%w: no values for %q", dynamo.ErrInvalidConfig, name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid nodes.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs one experiment per grid node on a copy of base and returns all
// nodes plus the index of the one minimising metricName, or -1 when every
// node failed. Failed nodes keep their error and are never best.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) ([]Point, int, error) {
	points := make([]Point, 0, g.Size())
	best, bestIdx := math.Inf(1), -1

	var walk func(depth int, current map[string]float64) error
	walk = func(depth int, current map[string]float64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if depth == len(g.paramNames) {
			p := g.evaluate(ctx, base, current, metricName)
			if p.Err == nil && p.Value < best {
				best, bestIdx = p.Value, len(points)
			}
			points = append(points, p)
			return nil
		}

		name := g.paramNames[depth]
		for _, val := range g.ranges[depth] {
			next := make(map[string]float64, len(current)+1)
			for k, v := range current {
				next[k] = v
			}
			next[name] = val
			if err := walk(depth+1, next); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(0, map[string]float64{}); err != nil {
		return points, bestIdx, err
	}
	return points, bestIdx, nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, params map[string]float64, metricName string) Point {
	p := Point{Params: params}

	cfg := clone(base)
	for name, v := range params {
		Setters[name](cfg, v)
	}

	exp, err := experiment.New(cfg, nil)
	if err != nil {
		p.Err = err
		return p
	}
	result, err := exp.Run(ctx)
	if err != nil {
		p.Err = err
		return p
	}

	val, ok := result.Metrics[metricName]
	if !ok {
		p.Err = fmt.Errorf("unknown metric: %s", metricName)
		return p
	}
	p.Value = val
	return p
}

func clone(cfg *config.Config) *config.Config {
	c := *cfg
	c.Cuboids = append([]config.CuboidConfig(nil), cfg.Cuboids...)
	c.Discs = append([]config.DiscConfig(nil), cfg.Discs...)
	return &c
}
