package compressor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaspipe/internal/network"
	"gaspipe/internal/solver"
)

func stationNetwork(t *testing.T) *network.Network {
	t.Helper()
	net, err := network.NewBuilder("station", "").
		Receipt("R1", "", 500, 800, 1000).
		Compressor("C1", "", 400, 300, 1200).
		Delivery("D1", "", 200, 300, 800).
		Pipe("S1", "R1", "C1", 500, 20, 24).
		Pipe("S2", "C1", "D1", 500, 20, 24).
		Build()
	require.NoError(t, err)
	net.Point("C1").FuelConsumptionRate = 0.02
	return net
}

func TestApply_LinkingConstraints(t *testing.T) {
	net := stationNetwork(t)
	backend := solver.NewSimplexBackend()
	flowVars := map[string]solver.VarID{
		"S1": backend.MakeNumVar(0, 500, "f1"),
		"S2": backend.MakeNumVar(0, 500, "f2"),
	}

	vars, err := Apply(backend, net, flowVars, DefaultOptions())
	require.NoError(t, err)
	require.Contains(t, vars.Active, "C1")
	require.Contains(t, vars.Boost, "C1")
	require.Contains(t, vars.Fuel, "C1")

	// Force throughput 200 and boost 50; minimize fuel. The fuel relation
	// then binds at base + rate*200 + boostRate*50.
	fix := backend.MakeConstraint(200, 200, "fix_flow")
	backend.SetCoefficient(fix, flowVars["S1"], 1)
	fixBoost := backend.MakeConstraint(50, 50, "fix_boost")
	backend.SetCoefficient(fixBoost, vars.Boost["C1"], 1)

	backend.ObjectiveSetCoefficient(vars.Fuel["C1"], 1)
	backend.ObjectiveMinimize()

	require.Equal(t, solver.StatusOptimal, backend.Solve())
	assert.InDelta(t, 1.0, backend.Value(vars.Active["C1"]), 1e-6, "boost forces activation")

	opts := DefaultOptions()
	wantFuel := opts.BaseFuelRate + 0.02*200 + opts.BoostFuelRate*50
	assert.InDelta(t, wantFuel, backend.Value(vars.Fuel["C1"]), 1e-6)
}

func TestApply_InactiveStationAllowsNoBoost(t *testing.T) {
	net := stationNetwork(t)
	backend := solver.NewSimplexBackend()
	flowVars := map[string]solver.VarID{
		"S1": backend.MakeNumVar(0, 500, "f1"),
		"S2": backend.MakeNumVar(0, 500, "f2"),
	}
	vars, err := Apply(backend, net, flowVars, DefaultOptions())
	require.NoError(t, err)

	// Zero flow: minimizing boost+fuel keeps the station off; boost is
	// then capped at zero by the coupling constraint.
	fix := backend.MakeConstraint(0, 0, "no_flow")
	backend.SetCoefficient(fix, flowVars["S1"], 1)

	backend.ObjectiveSetCoefficient(vars.Boost["C1"], 1)
	backend.ObjectiveSetCoefficient(vars.Fuel["C1"], 1)
	backend.ObjectiveSetCoefficient(vars.Active["C1"], 1)
	backend.ObjectiveMinimize()

	require.Equal(t, solver.StatusOptimal, backend.Solve())
	assert.InDelta(t, 0.0, backend.Value(vars.Active["C1"]), 1e-6)
	assert.InDelta(t, 0.0, backend.Value(vars.Boost["C1"]), 1e-6)
}

func TestApply_NoIncoming(t *testing.T) {
	net, err := network.NewBuilder("headless", "").
		Receipt("R1", "", 500, 800, 1000).
		Compressor("C1", "", 400, 300, 1200).
		Delivery("D1", "", 200, 300, 800).
		Pipe("S2", "C1", "D1", 500, 20, 24).
		Pipe("S3", "R1", "D1", 500, 20, 24).
		Build()
	require.NoError(t, err)

	backend := solver.NewSimplexBackend()
	flowVars := map[string]solver.VarID{
		"S2": backend.MakeNumVar(0, 500, "f2"),
		"S3": backend.MakeNumVar(0, 500, "f3"),
	}
	_, err = Apply(backend, net, flowVars, DefaultOptions())
	require.Error(t, err, "a compressor with no feed cannot be modeled")
}

func TestFuelEstimate(t *testing.T) {
	c := &network.Point{Type: network.PointCompressor, FuelConsumptionRate: 0.02}
	opts := DefaultOptions()

	assert.Zero(t, FuelEstimate(c, 0, 100, opts), "no throughput burns no fuel")

	fuel := FuelEstimate(c, 300, 100, opts)
	assert.InDelta(t, opts.BaseFuelRate+0.02*300+opts.BoostFuelRate*100, fuel, 1e-9)
}

func TestStaging(t *testing.T) {
	assert.Nil(t, Staging(1.0, 1.5), "no compression needed")
	assert.Nil(t, Staging(0.8, 1.5))

	// R=2, rmax=1.5 -> n = ceil(ln2/ln1.5) = 2 stages at sqrt(2).
	stages := Staging(2.0, 1.5)
	require.Len(t, stages, 2)
	assert.InDelta(t, math.Sqrt2, stages[0].Ratio, 1e-9)
	assert.True(t, stages[0].Intercooled)
	assert.False(t, stages[1].Intercooled, "final stage is not intercooled")

	// Product of stage ratios recovers the total.
	product := 1.0
	for _, s := range stages {
		product *= s.Ratio
	}
	assert.InDelta(t, 2.0, product, 1e-9)

	// Single stage when the ratio fits.
	assert.Len(t, Staging(1.3, 1.5), 1)

	// A per-stage ratio at or below 1 falls back to 1.5.
	assert.NotEmpty(t, Staging(3.0, 0.5))
}
