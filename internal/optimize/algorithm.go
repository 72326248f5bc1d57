package optimize

import (
	"context"
	"fmt"
	"sort"

	"gaspipe/internal/network"
	"gaspipe/internal/result"
	"gaspipe/pkg/apperror"
)

// Algorithm is the contract every optimization objective implements.
// Implementations must be stateless: all per-run state lives on the stack
// so concurrent runs over different networks never interfere.
type Algorithm interface {
	// Name is the stable registry key.
	Name() string

	// Description is a one-line human-readable summary.
	Description() string

	// Parameters documents the AlgorithmParameters keys the algorithm
	// reads, keyed by parameter name.
	Parameters() map[string]string

	// CanHandle reports whether the algorithm applies to the network.
	CanHandle(net *network.Network, settings *Settings) bool

	// Optimize runs the algorithm. It never panics across the boundary
	// and never returns nil; failures surface as a result with
	// StatusError or StatusInfeasible.
	Optimize(ctx context.Context, net *network.Network, settings *Settings) *result.OptimizationResult
}

// Canonical algorithm names.
const (
	NameMaximizeThroughput = "maximize-throughput"
	NameMinimizeCost       = "minimize-cost"
	NameBalanceDemand      = "balance-demand"
)

// Registry maps algorithm names to implementations.
type Registry struct {
	algorithms map[string]Algorithm
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{algorithms: make(map[string]Algorithm)}
}

// NewDefaultRegistry creates a registry with the three built-in objectives.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ThroughputAlgorithm{})
	r.Register(&CostAlgorithm{})
	r.Register(&BalanceAlgorithm{})
	return r
}

// Register adds or replaces an algorithm.
func (r *Registry) Register(a Algorithm) {
	r.algorithms[a.Name()] = a
}

// Get looks up an algorithm by name.
func (r *Registry) Get(name string) (Algorithm, error) {
	a, ok := r.algorithms[name]
	if !ok {
		return nil, apperror.New(apperror.CodeAlgorithmNotFound,
			"algorithm %q is not registered (known: %v)", name, r.Names())
	}
	return a, nil
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.algorithms))
	for name := range r.algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// strategy constants for the ParamStrategy parameter.
const (
	strategySolver = "solver"
	strategyGraph  = "graph"
	strategyAuto   = ""
)

// resolveStrategy picks the formulation for a run: an explicit parameter
// wins, otherwise the solver formulation is preferred and the graph
// formulation serves as the fallback.
func resolveStrategy(settings *Settings) (string, error) {
	switch s := settings.ParamString(ParamStrategy, strategyAuto); s {
	case strategySolver, strategyGraph, strategyAuto:
		return s, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want %q or %q)", s, strategySolver, strategyGraph)
	}
}
