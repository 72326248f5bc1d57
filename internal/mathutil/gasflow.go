// Package mathutil provides the numerical building blocks for pipeline
// hydraulics: gas flow equations, compressibility and friction estimates,
// piecewise-linear interpolation and a small quadratic solver.
//
// Units follow the rest of the system: flow in MMscfd, pressure in psia,
// length in miles, diameter in inches, temperature in degrees Rankine.
package mathutil

import "math"

// Standard conditions and gas property defaults used by the flow equations.
const (
	// BaseTemperature is the standard temperature in degrees Rankine (60 F).
	BaseTemperature = 519.67

	// BasePressure is the standard pressure in psia.
	BasePressure = 14.7

	// DefaultGasGravity is the specific gravity of a typical pipeline-quality
	// natural gas relative to air.
	DefaultGasGravity = 0.6

	// DefaultFlowingTemperature is the assumed average flowing temperature
	// in degrees Rankine.
	DefaultFlowingTemperature = 530.0

	// WeymouthConstant is the leading coefficient of the Weymouth equation
	// for flow in scfd with pressures in psia, length in miles, diameter in
	// inches.
	WeymouthConstant = 433.5

	// PanhandleAConstant is the leading coefficient of the Panhandle A equation.
	PanhandleAConstant = 435.87
)

// WeymouthFlow returns the Weymouth estimate of gas flow in MMscfd through a
// segment with upstream pressure p1 and downstream pressure p2 (psia),
// length in miles and inside diameter in inches.
//
// Q = 433.5 * (Tb/Pb) * sqrt((p1^2 - p2^2) / (G * T * L * Z)) * d^(8/3) * E
//
// The efficiency factor E is taken as 1. A non-positive pressure-squared
// difference yields zero flow.
func WeymouthFlow(p1, p2, length, diameter float64) float64 {
	if length <= 0 || diameter <= 0 {
		return 0
	}
	dp2 := p1*p1 - p2*p2
	if dp2 <= 0 {
		return 0
	}
	z := ZFactor((p1+p2)/2, DefaultFlowingTemperature)
	scfd := WeymouthConstant * (BaseTemperature / BasePressure) *
		math.Sqrt(dp2/(DefaultGasGravity*DefaultFlowingTemperature*length*z)) *
		math.Pow(diameter, 8.0/3.0)
	return scfd / 1e6
}

// PanhandleAFlow returns the Panhandle A estimate of gas flow in MMscfd.
// Compared to Weymouth it is less conservative for large-diameter,
// high-Reynolds-number trunk lines.
func PanhandleAFlow(p1, p2, length, diameter float64) float64 {
	if length <= 0 || diameter <= 0 {
		return 0
	}
	dp2 := p1*p1 - p2*p2
	if dp2 <= 0 {
		return 0
	}
	z := ZFactor((p1+p2)/2, DefaultFlowingTemperature)
	scfd := PanhandleAConstant * math.Pow(BaseTemperature/BasePressure, 1.0788) *
		math.Pow(dp2/(math.Pow(DefaultGasGravity, 0.8539)*DefaultFlowingTemperature*length*z), 0.5394) *
		math.Pow(diameter, 2.6182)
	return scfd / 1e6
}

// PressureDropSquared returns the drop in pressure-squared across a segment
// carrying flow f (MMscfd) with pressure-drop constant k:
//
//	P1^2 - P2^2 = k * f * |f|
//
// The signed form keeps the drop direction consistent for reverse flow on
// bidirectional segments.
func PressureDropSquared(k, flow float64) float64 {
	return k * flow * math.Abs(flow)
}

// DownstreamPressure returns the pressure at the downstream end of a segment
// given the upstream pressure, the pressure-drop constant and the flow.
// The result is clamped at zero when the drop exceeds the available head.
func DownstreamPressure(upstream, k, flow float64) float64 {
	p2sq := upstream*upstream - PressureDropSquared(k, flow)
	if p2sq <= 0 {
		return 0
	}
	return math.Sqrt(p2sq)
}

// ZFactor approximates the gas compressibility factor at the given average
// pressure (psia) and temperature (Rankine) using the simplified
// Papay correlation over pseudo-reduced properties for a 0.6-gravity gas.
// Output is clamped to [0.2, 1.2].
func ZFactor(pressure, temperature float64) float64 {
	if pressure <= 0 || temperature <= 0 {
		return 1
	}
	// Pseudo-critical properties per Sutton for G = 0.6.
	ppc := 756.8 - 131.0*DefaultGasGravity - 3.6*DefaultGasGravity*DefaultGasGravity
	tpc := 169.2 + 349.5*DefaultGasGravity - 74.0*DefaultGasGravity*DefaultGasGravity

	ppr := pressure / ppc
	tpr := temperature / tpc

	z := 1 - 3.53*ppr/math.Pow(10, 0.9813*tpr) + 0.274*ppr*ppr/math.Pow(10, 0.8157*tpr)
	return Clamp(z, 0.2, 1.2)
}

// FrictionFactor estimates the Darcy friction factor for fully turbulent
// flow in a pipe of the given inside diameter (inches) using the AGA
// rough-pipe form with a standard absolute roughness of 0.0007 in.
func FrictionFactor(diameter float64) float64 {
	if diameter <= 0 {
		return 0.02
	}
	const roughness = 0.0007 // inches
	f := 1.0 / math.Pow(2*math.Log10(3.7*diameter/roughness), 2)
	return Clamp(f, 0.005, 0.05)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
