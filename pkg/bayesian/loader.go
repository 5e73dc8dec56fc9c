package bayesian

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

var zipMagic = []byte("PK\x03\x04")

// nodeDocument is the persisted shape of one node.
type nodeDocument struct {
	Name                     string          `json:"name"`
	ParentNames              []string        `json:"parentNames"`
	PossibleValues           []string        `json:"possibleValues"`
	ConditionalProbabilities json.RawMessage `json:"conditionalProbabilities"`
}

// Load reads a network model from path. The file is either a UTF-8 JSON
// document or a ZIP archive whose single member is that document.
func Load(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network model: %w", err)
	}
	network, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("network model %s: %w", path, err)
	}
	return network, nil
}

// LoadBytes parses a network model from raw bytes, unwrapping a ZIP envelope
// when present.
func LoadBytes(data []byte) (*Network, error) {
	if bytes.HasPrefix(data, zipMagic) {
		unpacked, err := unzipSingle(data)
		if err != nil {
			return nil, err
		}
		data = unpacked
	}

	var doc struct {
		Nodes []nodeDocument `json:"nodes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModel, err)
	}

	nodes := make([]*Node, 0, len(doc.Nodes))
	for _, nd := range doc.Nodes {
		tree, err := parseTree(nd.ConditionalProbabilities)
		if err != nil {
			return nil, fmt.Errorf("%w: node %q: %v", ErrMalformedModel, nd.Name, err)
		}
		nodes = append(nodes, &Node{
			Name:           nd.Name,
			ParentNames:    nd.ParentNames,
			PossibleValues: nd.PossibleValues,
			tree:           tree,
		})
	}
	return New(nodes)
}

// unzipSingle extracts the one JSON member a model archive must contain.
func unzipSingle(data []byte) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModel, err)
	}
	if len(r.File) != 1 {
		return nil, fmt.Errorf("%w: model archive must contain exactly one member, found %d", ErrMalformedModel, len(r.File))
	}
	f, err := r.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModel, err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModel, err)
	}
	return content, nil
}
