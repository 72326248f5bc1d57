package result

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Succeeded(t *testing.T) {
	assert.True(t, StatusOptimal.Succeeded())
	assert.True(t, StatusFeasible.Succeeded())
	assert.False(t, StatusInfeasible.Succeeded())
	assert.False(t, StatusUnbounded.Succeeded())
	assert.False(t, StatusError.Succeeded())
	assert.False(t, StatusNotSolved.Succeeded())
}

func TestCostBreakdown_Total(t *testing.T) {
	c := CostBreakdown{Transportation: 232, Fuel: 60, Compressor: 0.5, Other: 1}
	assert.InDelta(t, 293.5, c.Total(), 1e-9)
}

func TestResult_FlowAndMessages(t *testing.T) {
	res := New("maximize-throughput")
	assert.Equal(t, StatusNotSolved, res.Status)

	res.SegmentFlows["S1"] = &SegmentFlow{SegmentID: "S1", Flow: 42}
	assert.Equal(t, 42.0, res.Flow("S1"))
	assert.Zero(t, res.Flow("missing"))

	res.AddMessage("pushed %.1f along %s", 42.0, "S1")
	require.Len(t, res.Messages, 1)
	assert.Contains(t, res.Messages[0], "42.0")

	res.Costs = CostBreakdown{Transportation: 10}
	res.FinalizeTotalCost()
	assert.Equal(t, 10.0, res.TotalCost)
}

func TestResult_JSONRoundTrip(t *testing.T) {
	res := New("minimize-cost")
	res.Status = StatusOptimal
	res.ObjectiveValue = 232
	res.SegmentFlows["S1"] = &SegmentFlow{SegmentID: "S1", Flow: 1000, Capacity: 1200, Utilization: 83.3}
	res.PointPressures["R1"] = &PointPressure{PointID: "R1", Pressure: 950, PressureSquared: 902500, WithinConstraints: true}
	res.ValidationErrors = []string{"segment S9: over capacity"}

	data, err := res.MarshalIndent()
	require.NoError(t, err)

	var back OptimizationResult
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, res.Status, back.Status)
	assert.Equal(t, res.SegmentFlows["S1"].Flow, back.SegmentFlows["S1"].Flow)
	assert.Equal(t, res.PointPressures["R1"].Pressure, back.PointPressures["R1"].Pressure)
	assert.Equal(t, res.ValidationErrors, back.ValidationErrors)
}
