package network

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// networkJSON is the wire form of a network per the configuration schema.
// It matches the in-memory structure field for field; the indirection
// exists so derived values stay out of the serialized form and get
// recomputed on load.
type networkJSON struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Points      map[string]*Point   `json:"points"`
	Segments    map[string]*Segment `json:"segments"`
}

// MarshalJSON serializes the network in the configuration schema.
func (n *Network) MarshalJSON() ([]byte, error) {
	return json.Marshal(networkJSON{
		Name:        n.Name,
		Description: n.Description,
		Points:      n.Points,
		Segments:    n.Segments,
	})
}

// UnmarshalJSON deserializes a network and recomputes derived values.
func (n *Network) UnmarshalJSON(data []byte) error {
	var raw networkJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.Name = raw.Name
	n.Description = raw.Description
	n.Points = raw.Points
	n.Segments = raw.Segments
	if n.Points == nil {
		n.Points = make(map[string]*Point)
	}
	if n.Segments == nil {
		n.Segments = make(map[string]*Segment)
	}
	n.pointIDs = nil
	n.segmentIDs = nil
	n.ComputeDerived()
	return nil
}

// Load reads a network from a JSON stream.
func Load(r io.Reader) (*Network, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read network: %w", err)
	}
	n := &Network{}
	if err := json.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("decode network: %w", err)
	}
	return n, nil
}

// LoadFile reads a network from a JSON file.
func LoadFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open network file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Save writes the network as indented JSON.
func (n *Network) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(n)
}

// SaveFile writes the network to a JSON file.
func (n *Network) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create network file: %w", err)
	}
	defer f.Close()
	return n.Save(f)
}
