package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResidualNet_Build(t *testing.T) {
	rn := newResidualNet(referenceNetwork(t))
	assert.Equal(t, []string{"C1", "D1", "D2", "R1"}, rn.nodes)

	// Forward plus reverse arcs at the junction: S1 reverse in, S2/S3 out.
	arcs := rn.adj["C1"]
	require.Len(t, arcs, 3)
}

func TestResidualNet_AugmentAndFlows(t *testing.T) {
	rn := newResidualNet(referenceNetwork(t))

	path := rn.findPath("R1", "D1")
	require.NotNil(t, path)
	require.Len(t, path, 2)
	assert.Equal(t, "S1", path[0].segmentID)
	assert.Equal(t, "S2", path[1].segmentID)

	assert.InDelta(t, 600.0, bottleneck(path), 1e-9, "S2 caps the path")
	augment(path, 600)

	flows := rn.flows()
	assert.InDelta(t, 600.0, flows["S1"], 1e-9)
	assert.InDelta(t, 600.0, flows["S2"], 1e-9)

	// S2 is saturated; the next path must go to D2.
	assert.Nil(t, rn.findPath("R1", "D1"))
	next := rn.findPath("R1", "D2")
	require.NotNil(t, next)
	assert.Equal(t, "S3", next[1].segmentID)
}

func TestResidualNet_PathCost(t *testing.T) {
	rn := newResidualNet(referenceNetwork(t))
	path := rn.findPath("R1", "D1")
	require.NotNil(t, path)
	assert.InDelta(t, 0.22, pathCost(path), 1e-9)
}

func TestResidualNet_BidirectionalSignedFlow(t *testing.T) {
	net := chainNetwork(t, 100, 100, 50)
	net.Segment("S1").IsBidirectional = true
	net.Segment("S1").MinFlow = -100

	rn := newResidualNet(net)
	// Push along the reverse-direction arc D1 -> R1.
	var reverseArc *arc
	for _, a := range rn.adj["D1"] {
		if !a.isReverse && a.to == "R1" {
			reverseArc = a
		}
	}
	require.NotNil(t, reverseArc, "bidirectional segments add an opposite forward arc")

	augment([]*arc{reverseArc}, 30)
	flows := rn.flows()
	assert.InDelta(t, -30.0, flows["S1"], 1e-9, "reverse use counts negatively")
}

func TestCheapestPath_MultiSource(t *testing.T) {
	net := diamondNetwork(t)
	rn := newResidualNet(net)

	path := rn.cheapestPath([]string{"R1"}, "D1")
	require.NotNil(t, path)
	assert.Equal(t, "RA", path[0].segmentID, "cheap branch wins")
	assert.InDelta(t, 0.2, pathCost(path), 1e-9)

	// Saturate the cheap branch; Dijkstra reroutes.
	augment(path, 100)
	path = rn.cheapestPath([]string{"R1"}, "D1")
	require.NotNil(t, path)
	assert.Equal(t, "RB", path[0].segmentID)
}

func TestCheapestPath_Unreachable(t *testing.T) {
	net := chainNetwork(t, 100, 100, 50)
	rn := newResidualNet(net)
	assert.Nil(t, rn.cheapestPath([]string{"D1"}, "R1"), "no forward arcs from the sink side")
}
