package network

import "fmt"

// Scenario is a named variant of a base network. Apply produces a deep
// copy with the variation applied; the base is never mutated.
type Scenario struct {
	Name        string
	Description string
	Apply       func(*Network) *Network
}

// ScaleDemand returns a scenario multiplying every delivery's demand
// requirement by factor, active or not.
func ScaleDemand(factor float64) Scenario {
	return Scenario{
		Name:        fmt.Sprintf("demand x%.2f", factor),
		Description: fmt.Sprintf("all delivery demand requirements scaled by %.2f", factor),
		Apply: func(base *Network) *Network {
			cp := base.Clone()
			for _, id := range cp.PointIDs() {
				p := cp.Points[id]
				if p.IsDelivery() {
					p.DemandRequirement *= factor
				}
			}
			return cp
		},
	}
}

// ScaleCapacity returns a scenario multiplying every segment's capacity by
// factor. Pressure-drop constants are unchanged since the physical pipe is.
func ScaleCapacity(factor float64) Scenario {
	return Scenario{
		Name:        fmt.Sprintf("capacity x%.2f", factor),
		Description: fmt.Sprintf("all segment capacities scaled by %.2f", factor),
		Apply: func(base *Network) *Network {
			cp := base.Clone()
			for _, id := range cp.SegmentIDs() {
				s := cp.Segments[id]
				s.Capacity *= factor
				if s.IsBidirectional {
					s.MinFlow = -s.Capacity
				}
			}
			return cp
		},
	}
}

// DeactivatePoint returns a scenario marking one point inactive.
func DeactivatePoint(pointID string) Scenario {
	return Scenario{
		Name:        fmt.Sprintf("without point %s", pointID),
		Description: fmt.Sprintf("point %s deactivated", pointID),
		Apply: func(base *Network) *Network {
			cp := base.Clone()
			if p := cp.Points[pointID]; p != nil {
				p.IsActive = false
			}
			return cp
		},
	}
}

// DeactivateSegment returns a scenario marking one segment inactive.
func DeactivateSegment(segmentID string) Scenario {
	return Scenario{
		Name:        fmt.Sprintf("without segment %s", segmentID),
		Description: fmt.Sprintf("segment %s deactivated", segmentID),
		Apply: func(base *Network) *Network {
			cp := base.Clone()
			if s := cp.Segments[segmentID]; s != nil {
				s.IsActive = false
			}
			return cp
		},
	}
}

// Baseline returns the identity scenario (a plain deep copy).
func Baseline() Scenario {
	return Scenario{
		Name:        "baseline",
		Description: "unmodified network",
		Apply:       func(base *Network) *Network { return base.Clone() },
	}
}

// StandardSensitivity is the built-in scenario batch used by the CLI:
// baseline, high/low demand, reduced capacity, and single-segment outages
// for every trunk segment.
func StandardSensitivity(base *Network) []Scenario {
	scenarios := []Scenario{
		Baseline(),
		ScaleDemand(1.5),
		ScaleDemand(0.5),
		ScaleCapacity(0.8),
	}
	for _, trunk := range base.TrunkSegments(0.9) {
		scenarios = append(scenarios, DeactivateSegment(trunk.ID))
	}
	return scenarios
}
