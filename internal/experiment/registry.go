package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/mdsim/internal/compute"
	"github.com/san-kum/mdsim/internal/integrators"
	"github.com/san-kum/mdsim/internal/sim"
)

// Registry maps the names accepted in configs and flags to force backends
// and integrators.
type Registry struct {
	backends    map[string]func(workers int) compute.Backend
	integrators map[string]func(workers int) sim.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		backends:    make(map[string]func(int) compute.Backend),
		integrators: make(map[string]func(int) sim.Integrator),
	}

	r.backends["auto"] = func(workers int) compute.Backend { return compute.Select(workers) }
	r.backends["serial"] = func(int) compute.Backend { return compute.NewSerialBackend() }
	r.backends["cpu"] = func(workers int) compute.Backend { return compute.NewCPUBackend(workers) }

	r.integrators["verlet"] = func(workers int) sim.Integrator { return integrators.NewVerlet(workers) }

	return r
}

// GetBackend resolves a backend name. The empty name selects by worker
// count.
func (r *Registry) GetBackend(name string, workers int) (compute.Backend, error) {
	if name == "" {
		name = "auto"
	}
	fn, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
	return fn(workers), nil
}

func (r *Registry) GetIntegrator(name string, workers int) (sim.Integrator, error) {
	if name == "" {
		name = "verlet"
	}
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(workers), nil
}

func (r *Registry) ListBackends() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
