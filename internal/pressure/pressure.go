// Package pressure builds the pressure-squared sub-model: decision
// variables P^2 per point, piecewise-linear (secant) approximation of the
// quadratic pressure drop per segment, post-solve physical validation, and
// an optimizer-independent estimate of delivery pressures.
package pressure

import (
	"fmt"
	"math"

	"gaspipe/internal/mathutil"
	"gaspipe/internal/network"
	"gaspipe/internal/solver"
)

// Options configures the pressure sub-model.
type Options struct {
	// Segments is the number of secant intervals S used to approximate
	// k*f^2 over [0, Capacity]. Valid range 1..100.
	Segments int

	// BoostReference maps compressor id to the reference pressure used to
	// linearize the boost term on outgoing segments. Zero entries default
	// to the midpoint of the compressor's pressure window.
	BoostReference map[string]float64
}

// DefaultSegments is the default secant interval count.
const DefaultSegments = 10

// Vars holds the variable ids created by Apply.
type Vars struct {
	// PressureSq maps point id to its P^2 variable.
	PressureSq map[string]solver.VarID

	// FlowSq maps segment id to its auxiliary f^2 variable.
	FlowSq map[string]solver.VarID
}

// Apply introduces P^2 variables for every active point and emits the
// piecewise-linear pressure-drop constraints for every active segment.
//
// For a segment u->v with constant k and flow variable f:
//
//	f2 >= slope_i*f + intercept_i    for each secant i of x^2 over [0, C]
//	P2(u) - P2(v) >= k*f2            (directional drop)
//
// Since x^2 is convex every secant lies above the curve, so f2 is bounded
// below by an outer approximation of f^2 and the drop constraint is valid
// over the whole flow range.
//
// When the upstream point is a compressor with a boost variable in
// boostVars, the drop constraint is relaxed by the linearized boost head
// 2*Pref*boost, which approximates (P+boost)^2 - P^2 around the reference
// pressure.
//
// Bidirectional segments get the symmetric f2 bound (using |f|) but no
// directional drop constraint; the drop direction would need a binary per
// segment, and bidirectional lines are short interconnects in practice.
func Apply(backend solver.Backend, net *network.Network, flowVars map[string]solver.VarID, boostVars map[string]solver.VarID, opts Options) (*Vars, error) {
	s := opts.Segments
	if s == 0 {
		s = DefaultSegments
	}
	if s < 1 || s > 100 {
		return nil, fmt.Errorf("linear approximation segments %d outside [1,100]", s)
	}

	vars := &Vars{
		PressureSq: make(map[string]solver.VarID),
		FlowSq:     make(map[string]solver.VarID),
	}

	for _, p := range net.ActivePoints() {
		lo := p.MinPressure * p.MinPressure
		hi := p.MaxPressure * p.MaxPressure
		vars.PressureSq[p.ID] = backend.MakeNumVar(lo, hi, "psq_"+p.ID)
	}

	for _, seg := range net.ActiveSegments() {
		fv, ok := flowVars[seg.ID]
		if !ok {
			return nil, fmt.Errorf("no flow variable for segment %s", seg.ID)
		}
		k := seg.PressureDropConstant

		f2 := backend.MakeNumVar(0, seg.Capacity*seg.Capacity, "fsq_"+seg.ID)
		vars.FlowSq[seg.ID] = f2

		for i, sec := range mathutil.QuadraticSecants(1, seg.Capacity, s) {
			// f2 - slope*f >= intercept
			c := backend.MakeConstraint(sec.Intercept, solver.Infinity,
				fmt.Sprintf("fsq_%s_%d", seg.ID, i))
			backend.SetCoefficient(c, f2, 1)
			backend.SetCoefficient(c, fv, -sec.Slope)
			if seg.IsBidirectional {
				// Mirror secant for reverse flow: f2 >= -slope*f + intercept.
				cm := backend.MakeConstraint(sec.Intercept, solver.Infinity,
					fmt.Sprintf("fsq_%s_%dm", seg.ID, i))
				backend.SetCoefficient(cm, f2, 1)
				backend.SetCoefficient(cm, fv, sec.Slope)
			}
		}

		if seg.IsBidirectional {
			continue
		}

		// P2(u) - P2(v) - k*f2 [+ 2*Pref*boost(u)] >= 0
		drop := backend.MakeConstraint(0, solver.Infinity, "pdrop_"+seg.ID)
		backend.SetCoefficient(drop, vars.PressureSq[seg.FromPointID], 1)
		backend.SetCoefficient(drop, vars.PressureSq[seg.ToPointID], -1)
		backend.SetCoefficient(drop, f2, -k)

		from := net.Point(seg.FromPointID)
		if from.IsCompressor() {
			if bv, ok := boostVars[from.ID]; ok {
				backend.SetCoefficient(drop, bv, 2*boostReference(from, opts))
			}
		}
	}

	return vars, nil
}

func boostReference(p *network.Point, opts Options) float64 {
	if ref, ok := opts.BoostReference[p.ID]; ok && ref > 0 {
		return ref
	}
	return (p.MinPressure + p.MaxPressure) / 2
}

// Violation is one physical-constraint breach found by Validate.
type Violation struct {
	Kind    string // "window" or "drop"
	ID      string // point or segment id
	Message string
}

func (v Violation) String() string { return v.Message }

// Validate cross-checks a claimed solution against the physical pressure
// model: every point pressure inside its window and every segment
// satisfying P2(u) - P2(v) >= k*f*|f|, both within eps. For a segment
// leaving a compressor the upstream pressure is taken after the station's
// boost from the boosts map (nil when no compression was solved).
func Validate(net *network.Network, pressures map[string]float64, flows map[string]float64, boosts map[string]float64, eps float64) []Violation {
	var violations []Violation

	for _, p := range net.ActivePoints() {
		pr, ok := pressures[p.ID]
		if !ok {
			continue
		}
		if pr < p.MinPressure-eps || pr > p.MaxPressure+eps {
			violations = append(violations, Violation{
				Kind: "window",
				ID:   p.ID,
				Message: fmt.Sprintf("point %s: pressure %.2f psia outside [%.2f, %.2f]",
					p.ID, pr, p.MinPressure, p.MaxPressure),
			})
		}
	}

	for _, seg := range net.ActiveSegments() {
		if seg.IsBidirectional {
			continue
		}
		pu, okU := pressures[seg.FromPointID]
		pv, okV := pressures[seg.ToPointID]
		if !okU || !okV {
			continue
		}
		if from := net.Point(seg.FromPointID); from != nil && from.IsCompressor() {
			pu += boosts[seg.FromPointID]
		}
		f := flows[seg.ID]
		drop := mathutil.PressureDropSquared(seg.PressureDropConstant, f)
		if pu*pu-pv*pv < drop-eps {
			violations = append(violations, Violation{
				Kind: "drop",
				ID:   seg.ID,
				Message: fmt.Sprintf("segment %s: P2 drop %.2f below required %.2f for flow %.2f",
					seg.ID, pu*pu-pv*pv, drop, f),
			})
		}
	}

	return violations
}

// Estimate computes point pressures from source pressures and segment flows
// without any optimizer: the pressure at a point is the flow-weighted mean
// over its incoming flow-carrying segments of sqrt(max(0, P(u)^2 - k*f^2)),
// recursed upstream to receipts. Receipts anchor the recursion at their
// current (observed) pressure, falling back to the window maximum.
func Estimate(net *network.Network, flows map[string]float64) map[string]float64 {
	est := make(map[string]float64)
	inProgress := make(map[string]bool)

	var eval func(id string) float64
	eval = func(id string) float64 {
		if p, ok := est[id]; ok {
			return p
		}
		point := net.Point(id)
		if point == nil {
			return 0
		}
		if point.IsReceipt() {
			p := point.CurrentPressure
			if p <= 0 {
				p = point.MaxPressure
			}
			est[id] = p
			return p
		}
		if inProgress[id] {
			// Cycle: fall back to the observed pressure.
			return point.CurrentPressure
		}
		inProgress[id] = true
		defer delete(inProgress, id)

		weighted, totalFlow := 0.0, 0.0
		for _, seg := range net.Incoming(id) {
			f := flows[seg.ID]
			if f <= 0 {
				continue
			}
			up := eval(seg.FromPointID)
			boosted := up
			if from := net.Point(seg.FromPointID); from != nil && from.IsCompressor() {
				// The independent estimate has no boost solution; the
				// station is assumed to hold its outlet at window pressure
				// when it carries flow.
				if boosted < from.MinPressure {
					boosted = from.MinPressure
				}
			}
			p2 := boosted*boosted - mathutil.PressureDropSquared(seg.PressureDropConstant, f)
			p := 0.0
			if p2 > 0 {
				p = math.Sqrt(p2)
			}
			weighted += p * f
			totalFlow += f
		}
		var p float64
		if totalFlow > 0 {
			p = weighted / totalFlow
		} else {
			p = point.CurrentPressure
		}
		est[id] = p
		return p
	}

	for _, id := range net.PointIDs() {
		if net.Points[id].IsActive {
			eval(id)
		}
	}
	return est
}
