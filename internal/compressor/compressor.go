// Package compressor builds the compressor-station sub-model: activation,
// boost and fuel variables with their linking constraints, plus the
// multi-stage compression staging heuristic.
package compressor

import (
	"fmt"
	"math"

	"gaspipe/internal/network"
	"gaspipe/internal/solver"
)

// Options configures the compressor sub-model. The rates are surfaced
// through AlgorithmParameters; defaults follow the cited conventions.
type Options struct {
	// MinActiveFlow is the minimum total incoming flow (MMscfd) a station
	// must carry while active. Default 10.
	MinActiveFlow float64

	// BaseFuelRate is the fixed fuel burn (MMscfd) of an active station.
	BaseFuelRate float64

	// BoostFuelRate is the incremental fuel burn per psi of boost.
	BoostFuelRate float64
}

// DefaultOptions returns the cited default rates.
func DefaultOptions() Options {
	return Options{
		MinActiveFlow: 10,
		BaseFuelRate:  0.1,
		BoostFuelRate: 0.001,
	}
}

// Vars holds the variable ids created by Apply, keyed by compressor id.
type Vars struct {
	Active map[string]solver.VarID // binary activation flag
	Boost  map[string]solver.VarID // psi, [0, MaxPressureBoost]
	Fuel   map[string]solver.VarID // MMscfd
}

// Apply introduces activation/boost/fuel variables for every active
// compressor station and emits their linking constraints:
//
//	boost(c) <= MaxBoost(c) * active(c)
//	sum(incoming f) >= MinActiveFlow * active(c)
//	fuel(c) >= BaseFuelRate*active(c) + FuelRate(c)*sum(incoming f) + BoostFuelRate*boost(c)
//
// The station's pressure window is enforced by the pressure sub-model,
// which owns the P^2 variables.
func Apply(backend solver.Backend, net *network.Network, flowVars map[string]solver.VarID, opts Options) (*Vars, error) {
	if opts.MinActiveFlow <= 0 {
		opts.MinActiveFlow = DefaultOptions().MinActiveFlow
	}

	vars := &Vars{
		Active: make(map[string]solver.VarID),
		Boost:  make(map[string]solver.VarID),
		Fuel:   make(map[string]solver.VarID),
	}

	for _, c := range net.Compressors() {
		active := backend.MakeBoolVar("comp_active_" + c.ID)
		boost := backend.MakeNumVar(0, c.MaxPressureBoost, "comp_boost_"+c.ID)
		fuel := backend.MakeNumVar(0, solver.Infinity, "comp_fuel_"+c.ID)
		vars.Active[c.ID] = active
		vars.Boost[c.ID] = boost
		vars.Fuel[c.ID] = fuel

		incoming := net.Incoming(c.ID)
		if len(incoming) == 0 {
			return nil, fmt.Errorf("compressor %s has no incoming segments", c.ID)
		}

		// boost - MaxBoost*active <= 0
		couple := backend.MakeConstraint(-solver.Infinity, 0, "comp_couple_"+c.ID)
		backend.SetCoefficient(couple, boost, 1)
		backend.SetCoefficient(couple, active, -c.MaxPressureBoost)

		// sum(incoming f) - MinActiveFlow*active >= 0
		minFlow := backend.MakeConstraint(0, solver.Infinity, "comp_minflow_"+c.ID)
		for _, seg := range incoming {
			backend.SetCoefficient(minFlow, flowVars[seg.ID], 1)
		}
		backend.SetCoefficient(minFlow, active, -opts.MinActiveFlow)

		// fuel - BaseFuelRate*active - FuelRate*sum(incoming f) - BoostFuelRate*boost >= 0
		fuelRel := backend.MakeConstraint(0, solver.Infinity, "comp_fuel_"+c.ID)
		backend.SetCoefficient(fuelRel, fuel, 1)
		backend.SetCoefficient(fuelRel, active, -opts.BaseFuelRate)
		for _, seg := range incoming {
			backend.SetCoefficient(fuelRel, flowVars[seg.ID], -c.FuelConsumptionRate)
		}
		backend.SetCoefficient(fuelRel, boost, -opts.BoostFuelRate)
	}

	return vars, nil
}

// FuelEstimate computes a station's fuel burn for a known throughput and
// boost, mirroring the constraint relation at equality. Used by the graph
// formulations, which carry no fuel variables.
func FuelEstimate(c *network.Point, throughput, boost float64, opts Options) float64 {
	if throughput <= 0 {
		return 0
	}
	return opts.BaseFuelRate + c.FuelConsumptionRate*throughput + opts.BoostFuelRate*boost
}

// Stage is one stage of a multi-stage compression plan.
type Stage struct {
	Ratio       float64 // outlet/inlet pressure ratio of this stage
	Intercooled bool    // true for every stage except the last
}

// Staging splits a required total pressure ratio R into stages no stage of
// which exceeds maxStageRatio. The stage count is ceil(log R / log r_max)
// and every stage runs at the equalized ratio R^(1/n); intermediate stages
// are intercooled.
func Staging(totalRatio, maxStageRatio float64) []Stage {
	if totalRatio <= 1 {
		return nil
	}
	if maxStageRatio <= 1 {
		maxStageRatio = 1.5
	}
	n := int(math.Ceil(math.Log(totalRatio) / math.Log(maxStageRatio)))
	if n < 1 {
		n = 1
	}
	perStage := math.Pow(totalRatio, 1/float64(n))
	stages := make([]Stage, n)
	for i := range stages {
		stages[i] = Stage{
			Ratio:       perStage,
			Intercooled: i < n-1,
		}
	}
	return stages
}
