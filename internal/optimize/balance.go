package optimize

import (
	"context"
	"sort"

	"gaspipe/internal/network"
	"gaspipe/internal/result"
	"gaspipe/internal/solver"
)

// =============================================================================
// Balance Demand
// =============================================================================
//
// Solver formulation: exact demand satisfaction plus per-segment
// utilization variables u_e = 100*f_e/C_e, their mean, and absolute
// deviations d_e modeled by the usual pair of inequalities. The objective
// trades deviation against throughput and transportation cost.
//
// Graph formulation: enumerate simple receipt-to-delivery paths per
// delivery (depth- and count-capped), then round-robin an equal share of
// the remaining demand across every path whose peak segment utilization is
// still below the eligibility threshold.
// =============================================================================

// BalanceAlgorithm spreads flow to even out segment utilization.
type BalanceAlgorithm struct{}

// Name implements Algorithm.
func (a *BalanceAlgorithm) Name() string { return NameBalanceDemand }

// Description implements Algorithm.
func (a *BalanceAlgorithm) Description() string {
	return "Balances segment utilization while satisfying all demand"
}

// Parameters implements Algorithm.
func (a *BalanceAlgorithm) Parameters() map[string]string {
	return map[string]string{
		ParamStrategy:          "formulation: solver or graph (default: solver with graph fallback)",
		ParamBalanceWeight:     "objective weight on utilization deviation (default 10)",
		ParamCostWeight:        "objective weight on transportation cost (default 0.01)",
		ParamThroughputWeight:  "objective weight on throughput (default 1)",
		ParamTargetUtilization: "eligibility cap for the graph formulation in percent (default 95)",
		ParamMaxPathsPerPair:   "path enumeration cap per receipt-delivery pair (default 200)",
		ParamMaxPathDepth:      "path length cap for enumeration (default 25)",
	}
}

// CanHandle implements Algorithm: at least one receipt and one delivery.
func (a *BalanceAlgorithm) CanHandle(net *network.Network, _ *Settings) bool {
	return len(net.Receipts()) > 0 && len(net.Deliveries()) > 0
}

// Optimize implements Algorithm.
func (a *BalanceAlgorithm) Optimize(ctx context.Context, net *network.Network, settings *Settings) *result.OptimizationResult {
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

func (a *BalanceAlgorithm) solveWith(ctx context.Context, backend solver.Backend, net *network.Network, settings *Settings) *result.OptimizationResult {
	model, err := buildLPModel(backend, net, settings, demandExact)
	if err != nil {
		return errorResult(a.Name(), err)
	}

	segments := net.ActiveSegments()
	n := len(segments)
	if n == 0 {
		res := result.New(a.Name())
		res.Status = result.StatusInfeasible
		res.AddMessage("no active segments to balance")
		return res
	}

	// u_e = 100 * f_e / C_e (linearized for directed flows).
	utilVars := make([]solver.VarID, n)
	for i, seg := range segments {
		u := backend.MakeNumVar(-100, 100, "util_"+seg.ID)
		link := backend.MakeConstraint(0, 0, "util_link_"+seg.ID)
		backend.SetCoefficient(link, u, 1)
		backend.SetCoefficient(link, model.flowVars[seg.ID], -100/seg.Capacity)
		utilVars[i] = u
	}

	// mean utilization: sum(u_e) - n*mean == 0
	mean := backend.MakeNumVar(-100, 100, "util_mean")
	meanLink := backend.MakeConstraint(0, 0, "util_mean_link")
	for _, u := range utilVars {
		backend.SetCoefficient(meanLink, u, 1)
	}
	backend.SetCoefficient(meanLink, mean, -float64(n))

	// deviations: d_e >= u_e - mean, d_e >= mean - u_e
	devVars := make([]solver.VarID, n)
	for i, seg := range segments {
		d := backend.MakeNumVar(0, solver.Infinity, "dev_"+seg.ID)
		devVars[i] = d
		up := backend.MakeConstraint(0, solver.Infinity, "dev_up_"+seg.ID)
		backend.SetCoefficient(up, d, 1)
		backend.SetCoefficient(up, utilVars[i], -1)
		backend.SetCoefficient(up, mean, 1)
		down := backend.MakeConstraint(0, solver.Infinity, "dev_dn_"+seg.ID)
		backend.SetCoefficient(down, d, 1)
		backend.SetCoefficient(down, utilVars[i], 1)
		backend.SetCoefficient(down, mean, -1)
	}

	weightBalance := settings.ParamFloat(ParamBalanceWeight, 10)
	weightThroughput := settings.ParamFloat(ParamThroughputWeight, 1)
	weightCost := settings.ParamFloat(ParamCostWeight, 0.01)

	coeffs := make(map[solver.VarID]float64)
	for _, d := range devVars {
		coeffs[d] -= weightBalance
	}
	for _, p := range net.Receipts() {
		for _, seg := range net.Outgoing(p.ID) {
			coeffs[model.flowVars[seg.ID]] += weightThroughput
		}
	}
	for _, seg := range segments {
		coeffs[model.flowVars[seg.ID]] -= weightCost * seg.TransportationCost
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

func (a *BalanceAlgorithm) optimizeGraph(net *network.Network, settings *Settings) *result.OptimizationResult {
	rn := newResidualNet(net)

	maxDepth := settings.ParamInt(ParamMaxPathDepth, 25)
	maxPaths := settings.ParamInt(ParamMaxPathsPerPair, 200)
	eligibility := settings.ParamFloat(ParamTargetUtilization, 95) / 100

	supply := make(map[string]float64)
	for _, r := range net.Receipts() {
		supply[r.ID] = r.SupplyCapacity
	}

	deliveries := append([]*network.Point(nil), net.Deliveries()...)
	sort.SliceStable(deliveries, func(i, j int) bool {
		if deliveries[i].DemandRequirement != deliveries[j].DemandRequirement {
			return deliveries[i].DemandRequirement > deliveries[j].DemandRequirement
		}
		return deliveries[i].ID < deliveries[j].ID
	})

	unmet := make(map[string]float64)
	for _, d := range deliveries {
		var paths [][]*arc
		for _, r := range net.Receipts() {
			paths = append(paths, rn.enumeratePaths(r.ID, d.ID, maxDepth, maxPaths)...)
		}

		remaining := d.DemandRequirement
		for remaining > flowEps {
			eligible := paths[:0:0]
			for _, p := range paths {
				if maxUtilization(p) >= eligibility {
					continue
				}
				if bottleneck(p) <= flowEps {
					continue
				}
				if supply[p[0].from] <= flowEps {
					continue
				}
				eligible = append(eligible, p)
			}
			if len(eligible) == 0 {
				break
			}

			share := remaining / float64(len(eligible))
			progressed := false
			for _, p := range eligible {
				if remaining <= flowEps {
					break
				}
				amount := min3(share, remaining, bottleneck(p))
				if amount > supply[p[0].from] {
					amount = supply[p[0].from]
				}
				if amount <= flowEps {
					continue
				}
				augment(p, amount)
				supply[p[0].from] -= amount
				remaining -= amount
				progressed = true
			}
			if !progressed {
				break
			}
		}
		if remaining > flowEps {
			unmet[d.ID] = remaining
		}
	}

	sol := solution{
		flows:      rn.flows(),
		status:     result.StatusFeasible,
		solverName: "graph/balanced-paths",
	}
	res := buildResult(net, settings, a.Name(), sol)
	res.ObjectiveValue = -res.Metrics.UtilizationVar
	if len(unmet) > 0 {
		ids := make([]string, 0, len(unmet))
		for id := range unmet {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			res.AddMessage("delivery %s: %.2f MMscfd unmet under utilization cap", id, unmet[id])
		}
	}
	res.AddMessage("utilization variance %.4f across %d populated segments",
		res.Metrics.UtilizationVar, res.Metrics.ActiveSegments)
	return res
}
