package network

// Builder assembles a network programmatically. It exists mainly for tests
// and embedded scenarios; configuration files go through Load.
//
//	net, err := network.NewBuilder("demo", "").
//	    Receipt("R1", "North Field", 1000, 800, 1000).
//	    Compressor("C1", "Mid Station", 400, 300, 1200).
//	    Delivery("D1", "City Gate", 600, 300, 800).
//	    Pipe("S1", "R1", "C1", 800, 50, 36).
//	    Pipe("S2", "C1", "D1", 600, 30, 24).
//	    Build()
type Builder struct {
	net *Network
}

// NewBuilder starts a new network definition.
func NewBuilder(name, description string) *Builder {
	return &Builder{net: New(name, description)}
}

// Receipt adds an active receipt point with the given supply capacity
// (MMscfd) and pressure window (psia).
func (b *Builder) Receipt(id, name string, supply, pMin, pMax float64) *Builder {
	b.net.AddPoint(&Point{
		ID:              id,
		Name:            name,
		Type:            PointReceipt,
		IsActive:        true,
		SupplyCapacity:  supply,
		MinPressure:     pMin,
		MaxPressure:     pMax,
		CurrentPressure: pMax,
	})
	return b
}

// Delivery adds an active delivery point with the given demand requirement
// (MMscfd) and pressure window (psia).
func (b *Builder) Delivery(id, name string, demand, pMin, pMax float64) *Builder {
	b.net.AddPoint(&Point{
		ID:                id,
		Name:              name,
		Type:              PointDelivery,
		IsActive:          true,
		DemandRequirement: demand,
		MinPressure:       pMin,
		MaxPressure:       pMax,
		CurrentPressure:   pMin,
	})
	return b
}

// Compressor adds an active compressor station with the given maximum boost
// (psi) and pressure window (psia).
func (b *Builder) Compressor(id, name string, maxBoost, pMin, pMax float64) *Builder {
	b.net.AddPoint(&Point{
		ID:               id,
		Name:             name,
		Type:             PointCompressor,
		IsActive:         true,
		MaxPressureBoost: maxBoost,
		MinPressure:      pMin,
		MaxPressure:      pMax,
		CurrentPressure:  (pMin + pMax) / 2,
	})
	return b
}

// Point adds a fully specified point.
func (b *Builder) Point(p *Point) *Builder {
	b.net.AddPoint(p)
	return b
}

// Pipe adds an active unidirectional segment with default friction (0.015)
// and zero transportation cost. Use Segment for full control.
func (b *Builder) Pipe(id, from, to string, capacity, length, diameter float64) *Builder {
	b.net.AddSegment(&Segment{
		ID:             id,
		Name:           id,
		FromPointID:    from,
		ToPointID:      to,
		Capacity:       capacity,
		Length:         length,
		Diameter:       diameter,
		FrictionFactor: 0.015,
		IsActive:       true,
	})
	return b
}

// Segment adds a fully specified segment.
func (b *Builder) Segment(s *Segment) *Builder {
	b.net.AddSegment(s)
	return b
}

// Build derives segment constants and returns the network together with
// its validation result.
func (b *Builder) Build() (*Network, error) {
	b.net.ComputeDerived()
	if err := b.net.Validate(); err != nil {
		return nil, err
	}
	return b.net, nil
}

// MustBuild is Build for tests and embedded fixtures; it panics on
// validation failure.
func (b *Builder) MustBuild() *Network {
	net, err := b.Build()
	if err != nil {
		panic(err)
	}
	return net
}
