// Package network defines the pipeline network data model: points
// (receipts, deliveries, compressor stations), directed segments, the
// network container with deterministic iteration order, validation,
// JSON serialization and scenario derivation.
package network

import "fmt"

// PointType tags the role a point plays in the network. Node kind is a
// tagged discriminator, not a subclass hierarchy; branches on the tag
// select the relevant attribute subset.
type PointType string

const (
	// PointReceipt is a supply source injecting gas into the network.
	PointReceipt PointType = "Receipt"
	// PointDelivery is a demand sink absorbing gas from the network.
	PointDelivery PointType = "Delivery"
	// PointCompressor is a station that may boost downstream pressure.
	PointCompressor PointType = "Compressor"
)

// Valid reports whether the tag is one of the three known point types.
func (t PointType) Valid() bool {
	switch t {
	case PointReceipt, PointDelivery, PointCompressor:
		return true
	}
	return false
}

// Point is a node of the pipeline network.
//
// Common attributes apply to every type; the supply, demand and compressor
// attribute groups are meaningful only for the matching PointType and are
// zero otherwise.
type Point struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     PointType `json:"type"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	IsActive bool      `json:"isActive"`

	// Pressure window in psia. MinPressure >= 0, MaxPressure > MinPressure.
	MinPressure     float64 `json:"minPressure"`
	MaxPressure     float64 `json:"maxPressure"`
	CurrentPressure float64 `json:"currentPressure"`

	// Receipt only.
	SupplyCapacity float64 `json:"supplyCapacity,omitempty"` // MMscfd
	UnitCost       float64 `json:"unitCost,omitempty"`       // $/MMscf

	// Delivery only.
	DemandRequirement float64 `json:"demandRequirement,omitempty"` // MMscfd

	// Compressor only.
	MaxPressureBoost    float64 `json:"maxPressureBoost,omitempty"`    // psi
	FuelConsumptionRate float64 `json:"fuelConsumptionRate,omitempty"` // MMscf per MMscfd throughput
}

// IsReceipt reports whether the point is a supply source.
func (p *Point) IsReceipt() bool { return p.Type == PointReceipt }

// IsDelivery reports whether the point is a demand sink.
func (p *Point) IsDelivery() bool { return p.Type == PointDelivery }

// IsCompressor reports whether the point is a compressor station.
func (p *Point) IsCompressor() bool { return p.Type == PointCompressor }

// PressureWindowValid reports whether the pressure window is non-empty.
func (p *Point) PressureWindowValid() bool {
	return p.MinPressure >= 0 && p.MaxPressure > p.MinPressure
}

// Clone returns a deep copy of the point.
func (p *Point) Clone() *Point {
	cp := *p
	return &cp
}

// String returns a compact identification for logs.
func (p *Point) String() string {
	return fmt.Sprintf("%s[%s:%s]", p.ID, p.Type, p.Name)
}
