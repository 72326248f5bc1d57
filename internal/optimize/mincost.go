package optimize

import (
	"context"
	"sort"

	"gaspipe/internal/network"
	"gaspipe/internal/result"
	"gaspipe/internal/solver"
)

// =============================================================================
// Minimize Cost
// =============================================================================
//
// Solver formulation: the shared flow skeleton with exact demand
// satisfaction, plus explicit cost variables: a transportation cost per
// segment (tc >= cost*|f| via a symmetric pair of constraints), fuel and
// boost costs per compressor, and a total-cost variable tying them
// together. The objective minimizes the total.
//
// Graph formulation: deliveries in descending demand order; each one is
// filled by repeatedly pushing flow along the cheapest (Dijkstra) path from
// any receipt with remaining supply. No augmentation through reverse arcs:
// the formulation is the greedy reference heuristic, not an exact min-cost
// flow, and reports Feasible accordingly.
// =============================================================================

// CostAlgorithm minimizes total operating cost while meeting all demand.
type CostAlgorithm struct{}

// Name implements Algorithm.
func (a *CostAlgorithm) Name() string { return NameMinimizeCost }

// Description implements Algorithm.
func (a *CostAlgorithm) Description() string {
	return "Minimizes transportation, fuel and compressor cost while satisfying all demand"
}

// Parameters implements Algorithm.
func (a *CostAlgorithm) Parameters() map[string]string {
	return map[string]string{
		ParamStrategy:             "formulation: solver or graph (default: solver with graph fallback)",
		ParamFuelCostPerMMscf:     "fuel price in $/MMscf (default 3.0)",
		ParamCompressorCostPerPsi: "boost price in $/psi (default 0.001)",
	}
}

// CanHandle implements Algorithm: active segments, active deliveries, and
// no negative transportation costs.
func (a *CostAlgorithm) CanHandle(net *network.Network, _ *Settings) bool {
	if len(net.ActiveSegments()) == 0 || len(net.Deliveries()) == 0 {
		return false
	}
	for _, seg := range net.ActiveSegments() {
		if seg.TransportationCost < 0 {
			return false
		}
	}
	return true
}

// Optimize implements Algorithm.
func (a *CostAlgorithm) Optimize(ctx context.Context, net *network.Network, settings *Settings) *result.OptimizationResult {
	strategy, err := resolveStrategy(settings)
	if err != nil {
		return errorResult(a.Name(), err)
	}
	switch strategy {
	case strategyGraph:
		return a.optimizeGraph(net, settings)
	case strategySolver:
		backend, err := solver.New(settings.PreferredSolver)
		if err != nil {
			return errorResult(a.Name(), err)
		}
		return a.solveWith(ctx, backend, net, settings)
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

func (a *CostAlgorithm) solveWith(ctx context.Context, backend solver.Backend, net *network.Network, settings *Settings) *result.OptimizationResult {
	model, err := buildLPModel(backend, net, settings, demandExact)
	if err != nil {
		return errorResult(a.Name(), err)
	}

	total := backend.MakeNumVar(0, solver.Infinity, "total_cost")
	// total - sum(component costs) == 0
	totalLink := backend.MakeConstraint(0, 0, "total_cost_link")
	backend.SetCoefficient(totalLink, total, 1)

	for _, seg := range net.ActiveSegments() {
		tc := backend.MakeNumVar(0, solver.Infinity, "tc_"+seg.ID)
		fv := model.flowVars[seg.ID]
		// tc >= cost*f and tc >= -cost*f; minimization drives tc to cost*|f|.
		cPos := backend.MakeConstraint(0, solver.Infinity, "tc_pos_"+seg.ID)
		backend.SetCoefficient(cPos, tc, 1)
		backend.SetCoefficient(cPos, fv, -seg.TransportationCost)
		cNeg := backend.MakeConstraint(0, solver.Infinity, "tc_neg_"+seg.ID)
		backend.SetCoefficient(cNeg, tc, 1)
		backend.SetCoefficient(cNeg, fv, seg.TransportationCost)

		backend.SetCoefficient(totalLink, tc, -1)
	}

	if model.compVars != nil {
		fuelPrice := settings.ParamFloat(ParamFuelCostPerMMscf, 3.0)
		boostPrice := settings.ParamFloat(ParamCompressorCostPerPsi, 0.001)
		for _, c := range net.Compressors() {
			fc := backend.MakeNumVar(0, solver.Infinity, "fc_"+c.ID)
			link := backend.MakeConstraint(0, 0, "fc_link_"+c.ID)
			backend.SetCoefficient(link, fc, 1)
			backend.SetCoefficient(link, model.compVars.Fuel[c.ID], -fuelPrice)

			cc := backend.MakeNumVar(0, solver.Infinity, "cc_"+c.ID)
			linkCC := backend.MakeConstraint(0, 0, "cc_link_"+c.ID)
			backend.SetCoefficient(linkCC, cc, 1)
			backend.SetCoefficient(linkCC, model.compVars.Boost[c.ID], -boostPrice)

			backend.SetCoefficient(totalLink, fc, -1)
			backend.SetCoefficient(totalLink, cc, -1)
		}
	}

	backend.ObjectiveSetCoefficient(total, 1)
	backend.ObjectiveMinimize()
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

func (a *CostAlgorithm) optimizeGraph(net *network.Network, settings *Settings) *result.OptimizationResult {
	rn := newResidualNet(net)

	deliveries := append([]*network.Point(nil), net.Deliveries()...)
	sort.SliceStable(deliveries, func(i, j int) bool {
		if deliveries[i].DemandRequirement != deliveries[j].DemandRequirement {
			return deliveries[i].DemandRequirement > deliveries[j].DemandRequirement
		}
		return deliveries[i].ID < deliveries[j].ID
	})

	supply := make(map[string]float64)
	for _, r := range net.Receipts() {
		supply[r.ID] = r.SupplyCapacity
	}

	totalCost := 0.0
	for _, d := range deliveries {
		remaining := d.DemandRequirement
		for remaining > flowEps {
			sources := make([]string, 0, len(supply))
			for _, r := range net.Receipts() {
				if supply[r.ID] > flowEps {
					sources = append(sources, r.ID)
				}
			}
			path := rn.cheapestPath(sources, d.ID)
			if path == nil {
				res := result.New(a.Name())
				res.Status = result.StatusInfeasible
				res.Solver = "graph/dijkstra"
				res.AddMessage("delivery %s: %.2f MMscfd of demand unreachable from remaining supply", d.ID, remaining)
				return res
			}
			source := path[0].from
			amount := min3(remaining, supply[source], bottleneck(path))
			if amount <= flowEps {
				// The cheapest source is dry; exclude it and retry.
				supply[source] = 0
				continue
			}
			augment(path, amount)
			totalCost += pathCost(path) * amount
			supply[source] -= amount
			remaining -= amount
		}
	}

	sol := solution{
		flows:      rn.flows(),
		objective:  totalCost,
		status:     result.StatusFeasible,
		solverName: "graph/dijkstra",
	}
	res := buildResult(net, settings, a.Name(), sol)
	res.AddMessage("cheapest-path filling satisfied all demand at transportation cost %.2f", totalCost)
	return res
}
