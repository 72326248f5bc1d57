// Package optimize contains the optimization algorithms: three objectives
// (maximize throughput, minimize cost, balance demand), each with a
// mathematical-programming formulation over the solver abstraction and a
// pure graph-algorithmic formulation, plus the registry the engine
// dispatches through.
package optimize

import (
	"fmt"
	"time"

	"gaspipe/pkg/apperror"
	"gaspipe/pkg/config"
)

// Well-known AlgorithmParameters keys. All values are numeric except
// ParamStrategy, which selects the formulation.
const (
	// ParamStrategy selects "solver" or "graph"; unset auto-selects.
	ParamStrategy = "strategy"

	// ParamThroughputWeight weights receipt outflow in the throughput
	// objective. Default 1.
	ParamThroughputWeight = "throughput_weight"
	// ParamDemandPriority weights delivery inflow in the throughput
	// objective. Default 0.1.
	ParamDemandPriority = "demand_priority"

	// ParamBalanceWeight weights utilization deviation in the balance
	// objective. Default 10.
	ParamBalanceWeight = "balance_weight"
	// ParamCostWeight weights transportation cost in the balance
	// objective. Default 0.01.
	ParamCostWeight = "cost_weight"
	// ParamTargetUtilization is the eligibility cap, in percent, of the graph
	// balance formulation: a path whose peak segment utilization has
	// reached it gets no further share. Default 95.
	ParamTargetUtilization = "target_utilization"
	// ParamMaxPathsPerPair caps path enumeration per receipt-delivery pair
	// in the graph balance formulation. Default 200.
	ParamMaxPathsPerPair = "max_paths_per_pair"
	// ParamMaxPathDepth caps path length in the graph balance formulation.
	// Default 25.
	ParamMaxPathDepth = "max_path_depth"

	// ParamFuelCostPerMMscf prices compressor fuel. Default 3.0 $/MMscf.
	ParamFuelCostPerMMscf = "fuel_cost_per_mmscf"
	// ParamCompressorCostPerPsi prices boost. Default 0.001 $/psi per
	// MMscfd-scale run, per the source convention.
	ParamCompressorCostPerPsi = "compressor_cost_per_psi"
	// ParamBaseFuelRate is the fixed fuel burn of an active station
	// (MMscfd). Default 0.1.
	ParamBaseFuelRate = "base_fuel_rate"
	// ParamBoostFuelRate is fuel burn per psi of boost. Default 0.001.
	ParamBoostFuelRate = "boost_fuel_rate"
	// ParamMinActiveFlow is the minimum throughput of an active station
	// (MMscfd). Default 10.
	ParamMinActiveFlow = "min_active_flow"
)

// Settings carries the per-run optimization options. The zero value is not
// usable; start from DefaultSettings or FromConfig.
type Settings struct {
	EnablePressureConstraints bool
	EnableCompressorStations  bool

	MaxSolutionTime      time.Duration
	OptimalityTolerance  float64
	FeasibilityTolerance float64

	UseLinearPressureApproximation bool
	LinearApproximationSegments    int

	PreferredSolver      string
	MinimumFlowThreshold float64

	ValidateNetworkBeforeOptimization bool

	// AlgorithmParameters is a free-form map forwarded to algorithms.
	AlgorithmParameters map[string]any
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() *Settings {
	return FromConfig(config.Default().Optimization)
}

// FromConfig builds settings from the configuration section.
func FromConfig(c config.OptimizationConfig) *Settings {
	return &Settings{
		EnablePressureConstraints:         c.EnablePressureConstraints,
		EnableCompressorStations:          c.EnableCompressorStations,
		MaxSolutionTime:                   c.MaxSolutionTime,
		OptimalityTolerance:               c.OptimalityTolerance,
		FeasibilityTolerance:              c.FeasibilityTolerance,
		UseLinearPressureApproximation:    c.UseLinearPressureApproximation,
		LinearApproximationSegments:       c.LinearApproximationSegments,
		PreferredSolver:                   c.PreferredSolver,
		MinimumFlowThreshold:              c.MinimumFlowThreshold,
		ValidateNetworkBeforeOptimization: c.ValidateNetworkBeforeOptimization,
		AlgorithmParameters:               make(map[string]any),
	}
}

// Validate checks option ranges.
func (s *Settings) Validate() error {
	v := &apperror.ValidationErrors{}
	if s.MaxSolutionTime <= 0 {
		v.Addf(apperror.CodeInvalidSettings, "max solution time must be positive, got %v", s.MaxSolutionTime)
	}
	if s.FeasibilityTolerance <= 0 {
		v.Addf(apperror.CodeInvalidSettings, "feasibility tolerance must be positive, got %g", s.FeasibilityTolerance)
	}
	if s.LinearApproximationSegments < 1 || s.LinearApproximationSegments > 100 {
		v.Addf(apperror.CodeInvalidSettings, "linear approximation segments %d outside [1,100]", s.LinearApproximationSegments)
	}
	if s.MinimumFlowThreshold < 0 {
		v.Addf(apperror.CodeInvalidSettings, "minimum flow threshold must be non-negative, got %g", s.MinimumFlowThreshold)
	}
	return v.ErrOrNil()
}

// Clone deep-copies the settings, including the parameter map.
func (s *Settings) Clone() *Settings {
	cp := *s
	cp.AlgorithmParameters = make(map[string]any, len(s.AlgorithmParameters))
	for k, val := range s.AlgorithmParameters {
		cp.AlgorithmParameters[k] = val
	}
	return &cp
}

// SetParam sets an algorithm parameter and returns the settings for chaining.
func (s *Settings) SetParam(key string, value any) *Settings {
	if s.AlgorithmParameters == nil {
		s.AlgorithmParameters = make(map[string]any)
	}
	s.AlgorithmParameters[key] = value
	return s
}

// ParamFloat reads a numeric algorithm parameter with a default.
func (s *Settings) ParamFloat(key string, def float64) float64 {
	raw, ok := s.AlgorithmParameters[key]
	if !ok {
		return def
	}
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// ParamInt reads an integer algorithm parameter with a default.
func (s *Settings) ParamInt(key string, def int) int {
	return int(s.ParamFloat(key, float64(def)))
}

// ParamString reads a string algorithm parameter with a default.
func (s *Settings) ParamString(key, def string) string {
	if v, ok := s.AlgorithmParameters[key].(string); ok {
		return v
	}
	return def
}

// Fingerprint summarizes the settings for cache keys. Parameters are not
// ordered in the map, so the fingerprint folds them through a sorted join
// done by the cache hasher; here we only provide the stable scalar part.
func (s *Settings) Fingerprint() string {
	return fmt.Sprintf("p=%t;c=%t;lin=%t;S=%d;solver=%s;thr=%g;tol=%g",
		s.EnablePressureConstraints, s.EnableCompressorStations,
		s.UseLinearPressureApproximation, s.LinearApproximationSegments,
		s.PreferredSolver, s.MinimumFlowThreshold, s.FeasibilityTolerance)
}
