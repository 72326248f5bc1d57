package engine

import (
	"context"

	"gaspipe/internal/network"
	"gaspipe/internal/optimize"
	"gaspipe/internal/result"
)

// Comparison is the outcome of running several algorithms on one network.
type Comparison struct {
	NetworkName string
	Results     []*result.OptimizationResult
}

// CompareAlgorithms runs the named algorithms (all registered ones when the
// list is empty) on the same network. Per-algorithm failures are isolated:
// one failure never aborts the batch, it just yields an Error result in its
// slot.
func (e *Engine) CompareAlgorithms(ctx context.Context, net *network.Network, settings *optimize.Settings, names []string) *Comparison {
	if len(names) == 0 {
		names = e.registry.Names()
	}
	cmp := &Comparison{NetworkName: netName(net)}
	for _, name := range names {
		res, err := e.Optimize(ctx, net, cloneSettings(settings), name)
		if err != nil && res == nil {
			res = errResult(name, err.Error())
		}
		cmp.Results = append(cmp.Results, res)
	}
	return cmp
}

// ScenarioOutcome pairs one scenario with its result.
type ScenarioOutcome struct {
	Scenario network.Scenario
	Result   *result.OptimizationResult
}

// RunScenarios applies each scenario to a deep copy of the base network
// and optimizes it with the given algorithm. Failures are isolated per
// scenario.
func (e *Engine) RunScenarios(ctx context.Context, base *network.Network, settings *optimize.Settings, algorithmName string, scenarios []network.Scenario) []ScenarioOutcome {
	outcomes := make([]ScenarioOutcome, 0, len(scenarios))
	for _, sc := range scenarios {
		variant := sc.Apply(base)
		variant.ComputeDerived()
		res, err := e.Optimize(ctx, variant, cloneSettings(settings), algorithmName)
		if err != nil && res == nil {
			res = errResult(algorithmName, err.Error())
		}
		outcomes = append(outcomes, ScenarioOutcome{Scenario: sc, Result: res})
	}
	return outcomes
}

func cloneSettings(s *optimize.Settings) *optimize.Settings {
	if s == nil {
		return nil
	}
	return s.Clone()
}

func netName(net *network.Network) string {
	if net == nil {
		return ""
	}
	return net.Name
}
