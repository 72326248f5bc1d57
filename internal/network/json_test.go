package network

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	original := buildValid(t)
	original.Segments["S1"].IsBidirectional = true
	original.Segments["S1"].MinFlow = -800
	original.ComputeDerived()

	data, err := json.Marshal(original)
	require.NoError(t, err)

	reloaded := &Network{}
	require.NoError(t, json.Unmarshal(data, reloaded))

	// PressureDropConstant is not serialized; UnmarshalJSON recomputes it,
	// so the round trip is lossless.
	if diff := cmp.Diff(original.Points, reloaded.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(original.Segments, reloaded.Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, original.Name, reloaded.Name)
	assert.Equal(t, original.Segment("S1").PressureDropConstant, reloaded.Segment("S1").PressureDropConstant)
}

func TestLoad_SchemaFields(t *testing.T) {
	raw := `{
		"name": "mini",
		"description": "schema check",
		"points": {
			"R1": {"id":"R1","name":"Field","type":"Receipt","x":1,"y":2,"isActive":true,
			        "minPressure":800,"maxPressure":1000,"currentPressure":950,
			        "supplyCapacity":1000,"unitCost":2.5},
			"D1": {"id":"D1","name":"Gate","type":"Delivery","isActive":true,
			        "minPressure":300,"maxPressure":800,"demandRequirement":600}
		},
		"segments": {
			"S1": {"id":"S1","name":"Main","fromPointId":"R1","toPointId":"D1",
			        "capacity":800,"length":50,"diameter":36,"frictionFactor":0.015,
			        "transportationCost":0.1,"isActive":true,"minFlow":0}
		}
	}`

	net, err := Load(bytes.NewReader([]byte(raw)))
	require.NoError(t, err)
	require.NoError(t, net.Validate())

	r1 := net.Point("R1")
	require.NotNil(t, r1)
	assert.Equal(t, PointReceipt, r1.Type)
	assert.Equal(t, 2.5, r1.UnitCost)

	s1 := net.Segment("S1")
	require.NotNil(t, s1)
	// k = 0.015*50/(36^5*1000)
	assert.InDelta(t, 0.015*50/(60466176.0*1000), s1.PressureDropConstant, 1e-18)
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("{not json")))
	require.Error(t, err)
}

func TestSaveLoadFile(t *testing.T) {
	net := buildValid(t)
	path := filepath.Join(t.TempDir(), "net.json")
	require.NoError(t, net.SaveFile(path))

	reloaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, net.Name, reloaded.Name)
	assert.Len(t, reloaded.Points, len(net.Points))
}
