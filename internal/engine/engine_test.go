package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaspipe/internal/network"
	"gaspipe/internal/optimize"
	"gaspipe/internal/result"
	"gaspipe/pkg/apperror"
	"gaspipe/pkg/cache"
)

func referenceNetwork(t *testing.T) *network.Network {
	t.Helper()
	net, err := network.NewBuilder("reference", "").
		Receipt("R1", "North Field", 1000, 800, 1000).
		Compressor("C1", "Mid Station", 400, 300, 1200).
		Delivery("D1", "City Gate", 600, 300, 800).
		Delivery("D2", "Power Plant", 400, 300, 800).
		Segment(&network.Segment{
			ID: "S1", Name: "Trunk", FromPointID: "R1", ToPointID: "C1",
			Capacity: 1200, Length: 50, Diameter: 36, FrictionFactor: 0.015,
			TransportationCost: 0.10, IsActive: true,
		}).
		Segment(&network.Segment{
			ID: "S2", Name: "City Lateral", FromPointID: "C1", ToPointID: "D1",
			Capacity: 600, Length: 30, Diameter: 24, FrictionFactor: 0.018,
			TransportationCost: 0.12, IsActive: true,
		}).
		Segment(&network.Segment{
			ID: "S3", Name: "Plant Lateral", FromPointID: "C1", ToPointID: "D2",
			Capacity: 500, Length: 40, Diameter: 20, FrictionFactor: 0.020,
			TransportationCost: 0.15, IsActive: true,
		}).
		Build()
	require.NoError(t, err)
	return net
}

func TestEngine_Optimize(t *testing.T) {
	eng := New(Options{})
	res, err := eng.Optimize(context.Background(), referenceNetwork(t), nil, optimize.NameMinimizeCost)
	require.NoError(t, err)

	require.True(t, res.Status.Succeeded())
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.ValidationErrors, "reference solution is physically consistent")
	assert.InDelta(t, 232.0, res.Costs.Transportation, 1e-3)
	assert.GreaterOrEqual(t, res.ElapsedMs, int64(0))
}

func TestEngine_NilNetwork(t *testing.T) {
	eng := New(Options{})
	res, err := eng.Optimize(context.Background(), nil, nil, optimize.NameMinimizeCost)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeNilInput))
	assert.Equal(t, result.StatusError, res.Status)
}

func TestEngine_UnknownAlgorithm(t *testing.T) {
	eng := New(Options{})
	res, err := eng.Optimize(context.Background(), referenceNetwork(t), nil, "simulated-annealing")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeAlgorithmNotFound))
	assert.Equal(t, result.StatusError, res.Status)
}

func TestEngine_InvalidNetworkAggregates(t *testing.T) {
	net := network.New("broken", "")
	net.AddPoint(&network.Point{ID: "X", Type: "Mystery", IsActive: true, MinPressure: 1, MaxPressure: 2})

	eng := New(Options{})
	_, err := eng.Optimize(context.Background(), net, nil, optimize.NameMinimizeCost)
	require.Error(t, err)

	var verrs *apperror.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.NotEmpty(t, verrs.Errors)
}

func TestEngine_SkipValidationFlag(t *testing.T) {
	// Supply below demand fails validation; with the flag off the engine
	// passes it through to the algorithm, which reports Infeasible.
	net := network.New("short", "")
	net.AddPoint(&network.Point{ID: "R1", Type: network.PointReceipt, IsActive: true,
		SupplyCapacity: 10, MinPressure: 1, MaxPressure: 2})
	net.AddPoint(&network.Point{ID: "D1", Type: network.PointDelivery, IsActive: true,
		DemandRequirement: 100, MinPressure: 1, MaxPressure: 2})
	net.AddSegment(&network.Segment{ID: "S1", FromPointID: "R1", ToPointID: "D1",
		Capacity: 200, Length: 1, Diameter: 10, FrictionFactor: 0.01, IsActive: true})
	net.ComputeDerived()

	settings := optimize.DefaultSettings()
	settings.ValidateNetworkBeforeOptimization = false

	eng := New(Options{})
	res, err := eng.Optimize(context.Background(), net, settings, optimize.NameMinimizeCost)
	require.NoError(t, err)
	assert.Equal(t, result.StatusInfeasible, res.Status)
}

func TestEngine_CanHandleRejection(t *testing.T) {
	net := referenceNetwork(t)
	for _, d := range net.Deliveries() {
		d.IsActive = false
	}
	settings := optimize.DefaultSettings()
	settings.ValidateNetworkBeforeOptimization = false

	eng := New(Options{})
	res, err := eng.Optimize(context.Background(), net, settings, optimize.NameMinimizeCost)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeAlgorithmMismatch))
	assert.Equal(t, result.StatusError, res.Status)
}

type panicAlgorithm struct{}

func (p *panicAlgorithm) Name() string                  { return "panicky" }
func (p *panicAlgorithm) Description() string           { return "always panics" }
func (p *panicAlgorithm) Parameters() map[string]string { return nil }
func (p *panicAlgorithm) CanHandle(*network.Network, *optimize.Settings) bool {
	return true
}
func (p *panicAlgorithm) Optimize(context.Context, *network.Network, *optimize.Settings) *result.OptimizationResult {
	panic("boom")
}

func TestEngine_PanicConversion(t *testing.T) {
	registry := optimize.NewRegistry()
	registry.Register(&panicAlgorithm{})
	eng := New(Options{Registry: registry})

	res, err := eng.Optimize(context.Background(), referenceNetwork(t), nil, "panicky")
	require.NoError(t, err, "panics convert to an Error result, not an error return")
	assert.Equal(t, result.StatusError, res.Status)
	require.NotEmpty(t, res.Messages)
	assert.Contains(t, res.Messages[0], "boom")
}

func TestEngine_CompareIsolatesFailures(t *testing.T) {
	registry := optimize.NewDefaultRegistry()
	registry.Register(&panicAlgorithm{})
	eng := New(Options{Registry: registry})

	cmp := eng.CompareAlgorithms(context.Background(), referenceNetwork(t), nil,
		[]string{optimize.NameMinimizeCost, "panicky", optimize.NameMaximizeThroughput})
	require.Len(t, cmp.Results, 3)

	assert.True(t, cmp.Results[0].Status.Succeeded())
	assert.Equal(t, result.StatusError, cmp.Results[1].Status)
	assert.True(t, cmp.Results[2].Status.Succeeded(), "failure in one slot does not abort the batch")
}

func TestEngine_RunScenarios(t *testing.T) {
	eng := New(Options{})
	base := referenceNetwork(t)

	outcomes := eng.RunScenarios(context.Background(), base, nil, optimize.NameMinimizeCost,
		[]network.Scenario{
			network.Baseline(),
			network.ScaleDemand(1.5), // S2 would need 900 > 600
		})
	require.Len(t, outcomes, 2)

	assert.True(t, outcomes[0].Result.Status.Succeeded())
	assert.Equal(t, result.StatusInfeasible, outcomes[1].Result.Status,
		"high-demand scenario is infeasible")
	// The base network is untouched by scenario application.
	assert.Equal(t, 600.0, base.Point("D1").DemandRequirement)
}

func TestEngine_ResultCache(t *testing.T) {
	mem := cache.NewMemoryCache(16)
	t.Cleanup(func() { _ = mem.Close() })
	eng := New(Options{Cache: cache.NewResultCache(mem, time.Minute)})

	net := referenceNetwork(t)
	first, err := eng.Optimize(context.Background(), net, nil, optimize.NameMinimizeCost)
	require.NoError(t, err)

	second, err := eng.Optimize(context.Background(), net, nil, optimize.NameMinimizeCost)
	require.NoError(t, err)

	assert.Equal(t, first.ObjectiveValue, second.ObjectiveValue)
	assert.NotEqual(t, first.RunID, second.RunID, "cached replay still gets a fresh run id")

	stats, err := mem.Stats(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.Hits, int64(1))
}

func TestValidateSolution_CatchesViolations(t *testing.T) {
	net := referenceNetwork(t)
	settings := optimize.DefaultSettings()

	res := result.New("fake")
	res.Status = result.StatusOptimal
	// Overfull segment and broken conservation at C1.
	res.SegmentFlows["S1"] = &result.SegmentFlow{SegmentID: "S1", Flow: 2000, Capacity: 1200}
	res.SegmentFlows["S2"] = &result.SegmentFlow{SegmentID: "S2", Flow: 100, Capacity: 600}
	res.SegmentFlows["S3"] = &result.SegmentFlow{SegmentID: "S3", Flow: 100, Capacity: 500}

	violations := ValidateSolution(net, settings, res)
	assert.NotEmpty(t, violations)
}

func TestValidateSolution_AcceptsConsistent(t *testing.T) {
	net := referenceNetwork(t)
	settings := optimize.DefaultSettings()

	res := result.New("ok")
	res.Status = result.StatusOptimal
	res.SegmentFlows["S1"] = &result.SegmentFlow{SegmentID: "S1", Flow: 1000, Capacity: 1200}
	res.SegmentFlows["S2"] = &result.SegmentFlow{SegmentID: "S2", Flow: 600, Capacity: 600}
	res.SegmentFlows["S3"] = &result.SegmentFlow{SegmentID: "S3", Flow: 400, Capacity: 500}

	assert.Empty(t, ValidateSolution(net, settings, res))
}
