package optimize

import (
	"context"
	"errors"
	"sort"
	"time"

	"gaspipe/internal/network"
	"gaspipe/internal/result"
	"gaspipe/internal/solver"
)

// =============================================================================
// Maximize Throughput
// =============================================================================
//
// Solver formulation: flow variables bounded by [MinFlow, Capacity],
// conservation per point with delivery inflow capped at demand, objective
// maximizing receipt outflow plus weighted delivery inflow.
//
// Graph formulation: greedy Ford-Fulkerson-style augmentation with soft
// priorities. Receipts are visited in descending supply order and
// deliveries in descending demand order; augmenting paths are found by
// depth-first search over the residual network and pushed at the bottleneck
// until no pair admits a path. Reverse arcs let later pushes reroute
// earlier ones, so the terminal flow is a maximum flow subject to supply
// and demand bounds.
// =============================================================================

// ThroughputAlgorithm maximizes total network throughput.
type ThroughputAlgorithm struct{}

// Name implements Algorithm.
func (a *ThroughputAlgorithm) Name() string { return NameMaximizeThroughput }

// Description implements Algorithm.
func (a *ThroughputAlgorithm) Description() string {
	return "Maximizes total gas throughput from receipts to deliveries"
}

// Parameters implements Algorithm.
func (a *ThroughputAlgorithm) Parameters() map[string]string {
	return map[string]string{
		ParamStrategy:         "formulation: solver or graph (default: solver with graph fallback)",
		ParamThroughputWeight: "objective weight on receipt outflow (default 1)",
		ParamDemandPriority:   "objective weight on delivery inflow (default 0.1)",
	}
}

// CanHandle implements Algorithm: at least one active segment and one
// active receipt.
func (a *ThroughputAlgorithm) CanHandle(net *network.Network, _ *Settings) bool {
	return len(net.ActiveSegments()) > 0 && len(net.Receipts()) > 0
}

// Optimize implements Algorithm.
func (a *ThroughputAlgorithm) Optimize(ctx context.Context, net *network.Network, settings *Settings) *result.OptimizationResult {
	strategy, err := resolveStrategy(settings)
	if err != nil {
		return errorResult(a.Name(), err)
	}
	switch strategy {
	case strategyGraph:
		return a.optimizeGraph(net, settings)
	case strategySolver:
		return a.optimizeSolver(ctx, net, settings)
	default:
		backend, err := solver.New(settings.PreferredSolver)
		if err != nil {
			res := a.optimizeGraph(net, settings)
			res.AddMessage("solver back-end unavailable (%v); used graph formulation", err)
			return res
		}
		return a.solveWith(ctx, backend, net, settings)
	}
}

func (a *ThroughputAlgorithm) optimizeSolver(ctx context.Context, net *network.Network, settings *Settings) *result.OptimizationResult {
	backend, err := solver.New(settings.PreferredSolver)
	if err != nil {
		return errorResult(a.Name(), err)
	}
	return a.solveWith(ctx, backend, net, settings)
}

func (a *ThroughputAlgorithm) solveWith(ctx context.Context, backend solver.Backend, net *network.Network, settings *Settings) *result.OptimizationResult {
	model, err := buildLPModel(backend, net, settings, demandCapped)
	if err != nil {
		return errorResult(a.Name(), err)
	}

	weightThroughput := settings.ParamFloat(ParamThroughputWeight, 1)
	weightDemand := settings.ParamFloat(ParamDemandPriority, 0.1)

	// Objective coefficients accumulate per flow variable: a segment can
	// leave a receipt and enter a delivery at the same time.
	coeffs := make(map[solver.VarID]float64)
	for _, p := range net.Receipts() {
		for _, seg := range net.Outgoing(p.ID) {
			coeffs[model.flowVars[seg.ID]] += weightThroughput
		}
	}
	for _, p := range net.Deliveries() {
		for _, seg := range net.Incoming(p.ID) {
			coeffs[model.flowVars[seg.ID]] += weightDemand
		}
	}
	for v, c := range coeffs {
		backend.ObjectiveSetCoefficient(v, c)
	}
	backend.ObjectiveMaximize()
	backend.SetTimeLimit(timeLimit(ctx, settings))

	status := backend.Solve()
	sol := solution{
		status:     statusFromSolver(status),
		solverName: backend.Name(),
	}
	if status.Succeeded() {
		sol.flows = model.extractFlows()
		sol.pressures = model.extractPressures()
		sol.boosts = model.extractBoosts()
		sol.fuels = model.extractFuels()
		sol.objective = backend.ObjectiveValue()
	}
	return buildResult(net, settings, a.Name(), sol)
}

func (a *ThroughputAlgorithm) optimizeGraph(net *network.Network, settings *Settings) *result.OptimizationResult {
	rn := newResidualNet(net)

	receipts := append([]*network.Point(nil), net.Receipts()...)
	sort.SliceStable(receipts, func(i, j int) bool {
		if receipts[i].SupplyCapacity != receipts[j].SupplyCapacity {
			return receipts[i].SupplyCapacity > receipts[j].SupplyCapacity
		}
		return receipts[i].ID < receipts[j].ID
	})
	deliveries := append([]*network.Point(nil), net.Deliveries()...)
	sort.SliceStable(deliveries, func(i, j int) bool {
		if deliveries[i].DemandRequirement != deliveries[j].DemandRequirement {
			return deliveries[i].DemandRequirement > deliveries[j].DemandRequirement
		}
		return deliveries[i].ID < deliveries[j].ID
	})

	supply := make(map[string]float64, len(receipts))
	for _, r := range receipts {
		supply[r.ID] = r.SupplyCapacity
	}
	demand := make(map[string]float64, len(deliveries))
	for _, d := range deliveries {
		demand[d.ID] = d.DemandRequirement
	}

	// Passes repeat until no pair augments: pushes for a later pair can
	// open reroutes for an earlier one through reverse arcs.
	for {
		progressed := false
		for _, r := range receipts {
			for _, d := range deliveries {
				for supply[r.ID] > flowEps && demand[d.ID] > flowEps {
					path := rn.findPath(r.ID, d.ID)
					if path == nil {
						break
					}
					amount := min3(supply[r.ID], demand[d.ID], bottleneck(path))
					if amount <= flowEps {
						break
					}
					augment(path, amount)
					supply[r.ID] -= amount
					demand[d.ID] -= amount
					progressed = true
				}
			}
		}
		if !progressed {
			break
		}
	}

	flows := rn.flows()
	throughput := 0.0
	for _, r := range receipts {
		throughput += r.SupplyCapacity - supply[r.ID]
	}

	sol := solution{
		flows:      flows,
		objective:  throughput,
		status:     result.StatusOptimal,
		solverName: "graph/ford-fulkerson",
	}
	res := buildResult(net, settings, a.Name(), sol)
	res.AddMessage("greedy augmenting-path max-flow moved %.2f MMscfd", throughput)
	return res
}

// =============================================================================
// Shared helpers
// =============================================================================

// statusFromSolver maps the back-end status onto the result status.
func statusFromSolver(s solver.Status) result.Status {
	switch s {
	case solver.StatusOptimal:
		return result.StatusOptimal
	case solver.StatusFeasible:
		return result.StatusFeasible
	case solver.StatusInfeasible:
		return result.StatusInfeasible
	case solver.StatusUnbounded:
		return result.StatusUnbounded
	case solver.StatusNotSolved:
		return result.StatusNotSolved
	default:
		return result.StatusError
	}
}

// timeLimit folds the settings cap and any context deadline into the
// back-end time limit.
func timeLimit(ctx context.Context, settings *Settings) time.Duration {
	limit := settings.MaxSolutionTime
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < limit {
			limit = remaining
		}
	}
	return limit
}

// errorResult wraps an error into a StatusError result.
func errorResult(algorithm string, err error) *result.OptimizationResult {
	res := result.New(algorithm)
	res.Status = result.StatusError
	if errors.Is(err, solver.ErrUnavailable) {
		res.AddMessage("solver back-end unavailable: %v", err)
	} else {
		res.AddMessage("error: %v", err)
	}
	return res
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
