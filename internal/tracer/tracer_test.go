package tracer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaspipe/internal/network"
)

// referenceNetwork mirrors the standard three-delivery test system: one
// receipt feeding a compressor that fans out to two deliveries.
func referenceNetwork(t *testing.T) *network.Network {
	t.Helper()
	net, err := network.NewBuilder("reference", "").
		Receipt("R1", "Field", 1000, 800, 1000).
		Compressor("C1", "Station", 400, 300, 1200).
		Delivery("D1", "City", 600, 300, 800).
		Delivery("D2", "Plant", 400, 300, 800).
		Segment(&network.Segment{
			ID: "S1", Name: "S1", FromPointID: "R1", ToPointID: "C1",
			Capacity: 1200, Length: 50, Diameter: 36, FrictionFactor: 0.015,
			TransportationCost: 0.10, IsActive: true,
		}).
		Segment(&network.Segment{
			ID: "S2", Name: "S2", FromPointID: "C1", ToPointID: "D1",
			Capacity: 600, Length: 30, Diameter: 24, FrictionFactor: 0.018,
			TransportationCost: 0.12, IsActive: true,
		}).
		Segment(&network.Segment{
			ID: "S3", Name: "S3", FromPointID: "C1", ToPointID: "D2",
			Capacity: 500, Length: 40, Diameter: 20, FrictionFactor: 0.020,
			TransportationCost: 0.15, IsActive: true,
		}).
		Build()
	require.NoError(t, err)
	return net
}

func TestTrace_ReferenceNetwork(t *testing.T) {
	report := Trace(referenceNetwork(t))

	assert.True(t, report.IsNetworkFeasible)
	assert.Empty(t, report.Violations)
	assert.InDelta(t, 1000.0, report.RequiredFlows["S1"], 1e-9)
	assert.InDelta(t, 600.0, report.RequiredFlows["S2"], 1e-9)
	assert.InDelta(t, 400.0, report.RequiredFlows["S3"], 1e-9)
}

func TestTrace_CapacityViolation(t *testing.T) {
	net := referenceNetwork(t)
	// High-demand variant: D1 needs more than S2 can carry. D2 is eased so
	// the trunk S1 (1150 required against 1200) stays within capacity.
	net.Point("D1").DemandRequirement = 900
	net.Point("D2").DemandRequirement = 250

	report := Trace(net)
	assert.False(t, report.IsNetworkFeasible)
	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, "S2", v.SegmentID)
	assert.InDelta(t, 900.0, v.RequiredFlow, 1e-9)
	assert.InDelta(t, 300.0, v.Excess, 1e-9)
	assert.Contains(t, v.String(), "S2")
}

func TestTrace_CapacityProportionalSplit(t *testing.T) {
	// Two parallel feeds into a junction: the requirement splits 3:1 by
	// capacity.
	net, err := network.NewBuilder("split", "").
		Receipt("R1", "", 1000, 800, 1000).
		Receipt("R2", "", 1000, 800, 1000).
		Compressor("J1", "", 100, 300, 1200).
		Delivery("D1", "", 400, 300, 800).
		Pipe("A", "R1", "J1", 300, 10, 20).
		Pipe("B", "R2", "J1", 100, 10, 20).
		Pipe("C", "J1", "D1", 500, 10, 20).
		Build()
	require.NoError(t, err)

	report := Trace(net)
	assert.True(t, report.IsNetworkFeasible)
	assert.InDelta(t, 400.0, report.RequiredFlows["C"], 1e-9)
	assert.InDelta(t, 300.0, report.RequiredFlows["A"], 1e-9)
	assert.InDelta(t, 100.0, report.RequiredFlows["B"], 1e-9)
}

func TestTrace_NoUpstreamPath(t *testing.T) {
	net, err := network.NewBuilder("orphan", "").
		Receipt("R1", "", 1000, 800, 1000).
		Delivery("D1", "", 100, 300, 800).
		Delivery("D2", "", 200, 300, 800).
		Pipe("S1", "R1", "D1", 500, 10, 20).
		Build()
	require.NoError(t, err)

	report := Trace(net)
	assert.False(t, report.IsNetworkFeasible)
	assert.InDelta(t, 200.0, report.UntracedDemand["D2"], 1e-9)
}

func TestTrace_CycleSafe(t *testing.T) {
	// A loop between two junctions must not recurse forever.
	net, err := network.NewBuilder("cycle", "").
		Receipt("R1", "", 1000, 800, 1000).
		Compressor("A", "", 100, 300, 1200).
		Compressor("B", "", 100, 300, 1200).
		Delivery("D1", "", 100, 300, 800).
		Pipe("S1", "R1", "A", 500, 10, 20).
		Pipe("S2", "A", "B", 500, 10, 20).
		Pipe("S3", "B", "A", 500, 10, 20).
		Pipe("S4", "B", "D1", 500, 10, 20).
		Build()
	require.NoError(t, err)

	report := Trace(net)
	assert.InDelta(t, 100.0, report.RequiredFlows["S4"], 1e-9)
	// The walk reaches the receipt through S2/S1 without looping on S3.
	assert.Greater(t, report.RequiredFlows["S1"], 0.0)
}
