package optimize

import (
	"math"

	"gaspipe/internal/compressor"
	"gaspipe/internal/network"
	"gaspipe/internal/pressure"
	"gaspipe/internal/solver"
)

// demandMode selects how delivery demand enters the model. The throughput
// objective caps inflow at demand; cost and balance require it exactly.
type demandMode int

const (
	demandCapped demandMode = iota
	demandExact
)

// lpModel is the shared mathematical-programming skeleton: flow variables,
// conservation constraints, and the optional pressure and compressor
// sub-models. The per-objective formulations add their own variables and
// the objective on top.
type lpModel struct {
	backend  solver.Backend
	net      *network.Network
	settings *Settings

	flowVars map[string]solver.VarID
	compVars *compressor.Vars
	pressVars *pressure.Vars
}

// compressorOptions folds the AlgorithmParameters rates into the
// compressor sub-model options.
func compressorOptions(settings *Settings) compressor.Options {
	def := compressor.DefaultOptions()
	return compressor.Options{
		MinActiveFlow: settings.ParamFloat(ParamMinActiveFlow, def.MinActiveFlow),
		BaseFuelRate:  settings.ParamFloat(ParamBaseFuelRate, def.BaseFuelRate),
		BoostFuelRate: settings.ParamFloat(ParamBoostFuelRate, def.BoostFuelRate),
	}
}

// buildLPModel creates the flow variables and conservation constraints for
// every active segment and point, then attaches the compressor and
// pressure sub-models when enabled.
//
// Conservation per point kind:
//
//	receipt:    0 <= outflow - inflow <= SupplyCapacity
//	delivery:   inflow - outflow == Demand  (demandExact)
//	            0 <= inflow - outflow <= Demand  (demandCapped)
//	compressor: inflow - outflow == 0
func buildLPModel(backend solver.Backend, net *network.Network, settings *Settings, mode demandMode) (*lpModel, error) {
	m := &lpModel{
		backend:  backend,
		net:      net,
		settings: settings,
		flowVars: make(map[string]solver.VarID),
	}

	for _, seg := range net.ActiveSegments() {
		m.flowVars[seg.ID] = backend.MakeNumVar(seg.EffectiveMinFlow(), seg.Capacity, "flow_"+seg.ID)
	}

	for _, p := range net.ActivePoints() {
		var lo, hi float64
		switch {
		case p.IsReceipt():
			// outflow - inflow within [0, supply]
			lo, hi = 0, p.SupplyCapacity
		case p.IsDelivery():
			if mode == demandExact {
				lo, hi = p.DemandRequirement, p.DemandRequirement
			} else {
				lo, hi = 0, p.DemandRequirement
			}
		default:
			lo, hi = 0, 0
		}

		c := backend.MakeConstraint(lo, hi, "conserve_"+p.ID)
		outSign, inSign := 1.0, -1.0
		if p.IsDelivery() {
			// Deliveries balance on net inflow.
			outSign, inSign = -1.0, 1.0
		}
		for _, seg := range net.Outgoing(p.ID) {
			m.addCoefficient(c, m.flowVars[seg.ID], outSign)
		}
		for _, seg := range net.Incoming(p.ID) {
			m.addCoefficient(c, m.flowVars[seg.ID], inSign)
		}
	}

	if settings.EnableCompressorStations {
		vars, err := compressor.Apply(backend, net, m.flowVars, compressorOptions(settings))
		if err != nil {
			return nil, err
		}
		m.compVars = vars
	}

	if settings.EnablePressureConstraints {
		boostVars := map[string]solver.VarID{}
		if m.compVars != nil {
			boostVars = m.compVars.Boost
		}
		vars, err := pressure.Apply(backend, net, m.flowVars, boostVars, pressure.Options{
			Segments: settings.LinearApproximationSegments,
		})
		if err != nil {
			return nil, err
		}
		m.pressVars = vars
	}

	return m, nil
}

// addCoefficient accumulates a coefficient, handling a segment that both
// enters and leaves the same point set (self-loops are rejected by
// validation, so accumulation only matters for sign bookkeeping).
func (m *lpModel) addCoefficient(c solver.ConstraintID, v solver.VarID, coeff float64) {
	m.backend.SetCoefficient(c, v, coeff)
}

// extractFlows reads the solved flow values.
func (m *lpModel) extractFlows() map[string]float64 {
	flows := make(map[string]float64, len(m.flowVars))
	for id, v := range m.flowVars {
		flows[id] = m.backend.Value(v)
	}
	return flows
}

// extractPressures reads the solved point pressures (sqrt of the P^2
// variables, clamped at zero). Nil when the pressure sub-model is absent.
func (m *lpModel) extractPressures() map[string]float64 {
	if m.pressVars == nil {
		return nil
	}
	pressures := make(map[string]float64, len(m.pressVars.PressureSq))
	for id, v := range m.pressVars.PressureSq {
		p2 := m.backend.Value(v)
		if p2 < 0 {
			p2 = 0
		}
		pressures[id] = math.Sqrt(p2)
	}
	return pressures
}

// extractBoosts reads the solved compressor boosts. Nil when the
// compressor sub-model is absent.
func (m *lpModel) extractBoosts() map[string]float64 {
	if m.compVars == nil {
		return nil
	}
	boosts := make(map[string]float64, len(m.compVars.Boost))
	for id, v := range m.compVars.Boost {
		boosts[id] = m.backend.Value(v)
	}
	return boosts
}

// extractFuels reads the solved compressor fuel burns. Nil when the
// compressor sub-model is absent.
func (m *lpModel) extractFuels() map[string]float64 {
	if m.compVars == nil {
		return nil
	}
	fuels := make(map[string]float64, len(m.compVars.Fuel))
	for id, v := range m.compVars.Fuel {
		fuels[id] = m.backend.Value(v)
	}
	return fuels
}
