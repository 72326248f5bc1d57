package pressure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaspipe/internal/network"
	"gaspipe/internal/solver"
)

func chainNetwork(t *testing.T) *network.Network {
	t.Helper()
	net, err := network.NewBuilder("chain", "").
		Receipt("R1", "", 1000, 800, 1000).
		Delivery("D1", "", 600, 300, 800).
		Pipe("S1", "R1", "D1", 800, 50, 36).
		Build()
	require.NoError(t, err)
	return net
}

func TestApply_CreatesVariablesAndSolves(t *testing.T) {
	net := chainNetwork(t)
	backend := solver.NewSimplexBackend()

	flowVars := map[string]solver.VarID{
		"S1": backend.MakeNumVar(0, 800, "flow_S1"),
	}
	vars, err := Apply(backend, net, flowVars, nil, Options{Segments: 10})
	require.NoError(t, err)
	require.Len(t, vars.PressureSq, 2)
	require.Len(t, vars.FlowSq, 1)

	// Force 600 MMscfd and check the model stays feasible: the drop on a
	// 36-inch line is tiny relative to the pressure windows.
	fix := backend.MakeConstraint(600, 600, "fix")
	backend.SetCoefficient(fix, flowVars["S1"], 1)
	backend.ObjectiveSetCoefficient(vars.PressureSq["D1"], 1)
	backend.ObjectiveMaximize()

	require.Equal(t, solver.StatusOptimal, backend.Solve())

	p2u := backend.Value(vars.PressureSq["R1"])
	p2v := backend.Value(vars.PressureSq["D1"])
	f2 := backend.Value(vars.FlowSq["S1"])
	k := net.Segment("S1").PressureDropConstant

	assert.GreaterOrEqual(t, f2+1e-6, 600.0*600.0, "f2 is bounded below by the secants")
	assert.GreaterOrEqual(t, p2u-p2v+1e-6, k*f2, "drop constraint holds")
}

func TestApply_RejectsBadSegmentCount(t *testing.T) {
	net := chainNetwork(t)
	backend := solver.NewSimplexBackend()
	flowVars := map[string]solver.VarID{"S1": backend.MakeNumVar(0, 800, "f")}

	_, err := Apply(backend, net, flowVars, nil, Options{Segments: 101})
	require.Error(t, err)
}

func TestApply_MissingFlowVariable(t *testing.T) {
	net := chainNetwork(t)
	backend := solver.NewSimplexBackend()

	_, err := Apply(backend, net, map[string]solver.VarID{}, nil, Options{})
	require.Error(t, err)
}

func TestApply_DisjointWindowsInfeasible(t *testing.T) {
	// Delivery requires more pressure than the receipt can ever provide;
	// without boost the drop constraint makes this infeasible.
	net, err := network.NewBuilder("uphill", "").
		Receipt("R1", "", 100, 700, 810).
		Delivery("D1", "", 50, 900, 950).
		Pipe("S1", "R1", "D1", 100, 10, 20).
		Build()
	require.NoError(t, err)

	backend := solver.NewSimplexBackend()
	flowVars := map[string]solver.VarID{"S1": backend.MakeNumVar(0, 100, "f")}
	_, err = Apply(backend, net, flowVars, nil, Options{Segments: 5})
	require.NoError(t, err)

	backend.ObjectiveSetCoefficient(flowVars["S1"], 1)
	backend.ObjectiveMaximize()
	assert.Equal(t, solver.StatusInfeasible, backend.Solve())
}

func TestValidate(t *testing.T) {
	net := chainNetwork(t)
	k := net.Segment("S1").PressureDropConstant

	flows := map[string]float64{"S1": 600}
	good := map[string]float64{"R1": 900, "D1": 700}
	assert.Empty(t, Validate(net, good, flows, nil, 1e-6))

	// Window breach.
	low := map[string]float64{"R1": 900, "D1": 100}
	violations := Validate(net, low, flows, nil, 1e-6)
	require.Len(t, violations, 1)
	assert.Equal(t, "window", violations[0].Kind)

	// Drop breach: downstream higher than upstream with positive flow.
	inverted := map[string]float64{"R1": 800, "D1": 800.0001}
	violations = Validate(net, inverted, map[string]float64{"S1": 600}, nil, 1e-9)
	found := false
	for _, v := range violations {
		if v.Kind == "drop" {
			found = true
		}
	}
	assert.True(t, found, "expected drop violation, got %v, k=%g", violations, k)
}

func TestEstimate_FlowWeightedUpstream(t *testing.T) {
	net := chainNetwork(t)
	net.Point("R1").CurrentPressure = 950

	est := Estimate(net, map[string]float64{"S1": 600})
	assert.InDelta(t, 950.0, est["R1"], 1e-9)
	// Downstream slightly below the source due to the quadratic drop.
	assert.Less(t, est["D1"], 950.0)
	assert.Greater(t, est["D1"], 900.0, "36-inch line drop is small")
}

func TestEstimate_NoFlowFallsBack(t *testing.T) {
	net := chainNetwork(t)
	net.Point("D1").CurrentPressure = 450

	est := Estimate(net, map[string]float64{"S1": 0})
	assert.InDelta(t, 450.0, est["D1"], 1e-9, "no inflow keeps the observed pressure")
}
