package optimize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gaspipe/internal/network"
)

// referenceNetwork is the standard test system: one receipt feeding a
// compressor station that fans out to two deliveries.
//
//	R1 --S1--> C1 --S2--> D1 (600)
//	              --S3--> D2 (400)
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
	net.Point("C1").FuelConsumptionRate = 0.02
	return net
}

// chainNetwork is a single receipt-segment-delivery chain. It is built
// without validation so supply-short variants can exercise the algorithms
// directly.
func chainNetwork(t *testing.T, supply, capacity, demand float64) *network.Network {
	t.Helper()
	net := network.New("chain", "")
	net.AddPoint(&network.Point{
		ID: "R1", Type: network.PointReceipt, IsActive: true,
		SupplyCapacity: supply, MinPressure: 800, MaxPressure: 1000, CurrentPressure: 950,
	})
	net.AddPoint(&network.Point{
		ID: "D1", Type: network.PointDelivery, IsActive: true,
		DemandRequirement: demand, MinPressure: 300, MaxPressure: 800,
	})
	net.AddSegment(&network.Segment{
		ID: "S1", Name: "S1", FromPointID: "R1", ToPointID: "D1",
		Capacity: capacity, Length: 50, Diameter: 36, FrictionFactor: 0.015,
		TransportationCost: 0.10, IsActive: true,
	})
	net.ComputeDerived()
	return net
}

// diamondNetwork has a cheap narrow path and an expensive wide path.
//
//	R1 --RA(100, $0.1)--> A --AD(100, $0.1)--> D1 (demand 150)
//	R1 --RB(300, $1.0)--> B --BD(300, $1.0)--> D1
func diamondNetwork(t *testing.T) *network.Network {
	t.Helper()
	net, err := network.NewBuilder("diamond", "").
		Receipt("R1", "", 200, 800, 1000).
		Compressor("A", "", 100, 300, 1200).
		Compressor("B", "", 100, 300, 1200).
		Delivery("D1", "", 150, 300, 800).
		Segment(&network.Segment{
			ID: "RA", Name: "RA", FromPointID: "R1", ToPointID: "A",
			Capacity: 100, Length: 10, Diameter: 24, FrictionFactor: 0.015,
			TransportationCost: 0.1, IsActive: true,
		}).
		Segment(&network.Segment{
			ID: "AD", Name: "AD", FromPointID: "A", ToPointID: "D1",
			Capacity: 100, Length: 10, Diameter: 24, FrictionFactor: 0.015,
			TransportationCost: 0.1, IsActive: true,
		}).
		Segment(&network.Segment{
			ID: "RB", Name: "RB", FromPointID: "R1", ToPointID: "B",
			Capacity: 300, Length: 10, Diameter: 24, FrictionFactor: 0.015,
			TransportationCost: 1.0, IsActive: true,
		}).
		Segment(&network.Segment{
			ID: "BD", Name: "BD", FromPointID: "B", ToPointID: "D1",
			Capacity: 300, Length: 10, Diameter: 24, FrictionFactor: 0.015,
			TransportationCost: 1.0, IsActive: true,
		}).
		Build()
	require.NoError(t, err)
	return net
}

func settingsWithStrategy(strategy string) *Settings {
	s := DefaultSettings()
	if strategy != "" {
		s.SetParam(ParamStrategy, strategy)
	}
	return s
}
