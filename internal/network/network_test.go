package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaspipe/pkg/apperror"
)

func buildValid(t *testing.T) *Network {
	t.Helper()
	net, err := NewBuilder("test", "three point chain").
		Receipt("R1", "Field", 1000, 800, 1000).
		Compressor("C1", "Station", 400, 300, 1200).
		Delivery("D1", "City", 600, 300, 800).
		Pipe("S1", "R1", "C1", 800, 50, 36).
		Pipe("S2", "C1", "D1", 600, 30, 24).
		Build()
	require.NoError(t, err)
	return net
}

func TestBuilder_Build(t *testing.T) {
	net := buildValid(t)
	assert.Len(t, net.Points, 3)
	assert.Len(t, net.Segments, 2)

	// Derived pressure-drop constants are computed.
	s1 := net.Segment("S1")
	require.NotNil(t, s1)
	assert.Greater(t, s1.PressureDropConstant, 0.0)
}

func TestNetwork_AdjacencyAndOrdering(t *testing.T) {
	net := buildValid(t)

	assert.Equal(t, []string{"C1", "D1", "R1"}, net.PointIDs())
	assert.Equal(t, []string{"S1", "S2"}, net.SegmentIDs())

	in := net.Incoming("C1")
	require.Len(t, in, 1)
	assert.Equal(t, "S1", in[0].ID)

	out := net.Outgoing("C1")
	require.Len(t, out, 1)
	assert.Equal(t, "S2", out[0].ID)

	assert.Empty(t, net.Incoming("R1"))
	assert.Empty(t, net.Outgoing("D1"))
}

func TestNetwork_TypedAccessors(t *testing.T) {
	net := buildValid(t)
	require.Len(t, net.Receipts(), 1)
	require.Len(t, net.Deliveries(), 1)
	require.Len(t, net.Compressors(), 1)

	assert.Equal(t, 1000.0, net.TotalSupplyCapacity())
	assert.Equal(t, 600.0, net.TotalDemandRequirement())
}

func TestNetwork_InactivePointsHideSegments(t *testing.T) {
	net := buildValid(t)
	net.Point("C1").IsActive = false

	// Both segments touch C1, so the active subnetwork is empty.
	assert.Empty(t, net.ActiveSegments())
	assert.Len(t, net.ActivePoints(), 2)
}

func TestNetwork_TrunkSegments(t *testing.T) {
	net := buildValid(t)
	trunks := net.TrunkSegments(0.9)
	// S1 leaves a receipt and has the max capacity; S2 is below the
	// fraction and not supply-adjacent.
	require.Len(t, trunks, 1)
	assert.Equal(t, "S1", trunks[0].ID)
}

func TestValidate_AggregatesAllProblems(t *testing.T) {
	net := New("broken", "")
	net.AddPoint(&Point{
		ID: "R1", Type: PointReceipt, IsActive: true,
		SupplyCapacity: -5,          // invalid supply
		MinPressure:    500, MaxPressure: 400, // empty window
	})
	net.AddPoint(&Point{
		ID: "D1", Type: PointDelivery, IsActive: true,
		DemandRequirement: 100, MinPressure: 100, MaxPressure: 200,
	})
	net.AddSegment(&Segment{
		ID: "S1", FromPointID: "R1", ToPointID: "GHOST", // dangling
		Capacity: -1, Length: 0, Diameter: 10, FrictionFactor: 0.01, // bad physicals
		IsActive: true,
	})
	net.ComputeDerived()

	err := net.Validate()
	require.Error(t, err)

	var verrs *apperror.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	// One pass reports all of: empty window, bad supply, dangling endpoint,
	// bad capacity, bad length, supply shortfall.
	assert.GreaterOrEqual(t, len(verrs.Errors), 5)
}

func TestValidate_SupplyShortfall(t *testing.T) {
	_, err := NewBuilder("short", "").
		Receipt("R1", "", 100, 800, 1000).
		Delivery("D1", "", 500, 300, 800).
		Pipe("S1", "R1", "D1", 600, 10, 20).
		Build()
	require.Error(t, err)
	var verrs *apperror.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	found := false
	for _, e := range verrs.Errors {
		if e.Code == apperror.CodeSupplyShortfall {
			found = true
		}
	}
	assert.True(t, found, "expected SUPPLY_SHORTFALL in %v", verrs.Messages())
}

func TestValidate_SelfLoopAndMinFlow(t *testing.T) {
	net := New("loops", "")
	net.AddPoint(&Point{ID: "R1", Type: PointReceipt, IsActive: true, SupplyCapacity: 10, MinPressure: 1, MaxPressure: 2})
	net.AddPoint(&Point{ID: "D1", Type: PointDelivery, IsActive: true, DemandRequirement: 5, MinPressure: 1, MaxPressure: 2})
	net.AddSegment(&Segment{
		ID: "S1", FromPointID: "R1", ToPointID: "R1",
		Capacity: 10, Length: 1, Diameter: 10, FrictionFactor: 0.01,
		MinFlow: 20, IsActive: true,
	})

	err := net.Validate()
	require.Error(t, err)
	var verrs *apperror.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	codes := map[apperror.ErrorCode]bool{}
	for _, e := range verrs.Errors {
		codes[e.Code] = true
	}
	assert.True(t, codes[apperror.CodeSelfLoop])
	assert.True(t, codes[apperror.CodeInvalidCapacity], "min flow above capacity")
}

func TestSegment_EffectiveMinFlow(t *testing.T) {
	s := &Segment{Capacity: 100, MinFlow: 0, IsBidirectional: true}
	assert.Equal(t, -100.0, s.EffectiveMinFlow())

	s.IsBidirectional = false
	s.MinFlow = 10
	assert.Equal(t, 10.0, s.EffectiveMinFlow())
}

func TestNetwork_Clone(t *testing.T) {
	net := buildValid(t)
	cp := net.Clone()

	cp.Point("R1").SupplyCapacity = 1
	cp.Segment("S1").Capacity = 1

	assert.Equal(t, 1000.0, net.Point("R1").SupplyCapacity, "clone must not alias points")
	assert.Equal(t, 800.0, net.Segment("S1").Capacity, "clone must not alias segments")
}

func TestReachabilityReport(t *testing.T) {
	net, err := NewBuilder("island", "").
		Receipt("R1", "", 1000, 800, 1000).
		Delivery("D1", "", 100, 300, 800).
		Delivery("D2", "", 100, 300, 800).
		Pipe("S1", "R1", "D1", 500, 10, 20).
		Build()
	require.NoError(t, err)

	unreachable := net.ReachabilityReport()
	require.Len(t, unreachable, 1)
	assert.Equal(t, "D2", unreachable[0])
}

func TestScenarios(t *testing.T) {
	base := buildValid(t)

	demand := ScaleDemand(1.5).Apply(base)
	assert.Equal(t, 900.0, demand.Point("D1").DemandRequirement)
	assert.Equal(t, 600.0, base.Point("D1").DemandRequirement, "base untouched")

	capacity := ScaleCapacity(0.5).Apply(base)
	assert.Equal(t, 400.0, capacity.Segment("S1").Capacity)

	off := DeactivateSegment("S2").Apply(base)
	assert.False(t, off.Segment("S2").IsActive)

	pointOff := DeactivatePoint("C1").Apply(base)
	assert.False(t, pointOff.Point("C1").IsActive)

	scenarios := StandardSensitivity(base)
	assert.GreaterOrEqual(t, len(scenarios), 5, "baseline + 3 scalings + trunk outages")
}
