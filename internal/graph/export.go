// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

// WriteJSON writes g in the force-graph shape ({"nodes": ..., "links": ...}).
func WriteJSON(w io.Writer, g *types.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encoding graph JSON: %w", err)
	}
	return nil
}

// WriteYAML writes g as YAML.
func WriteYAML(w io.Writer, g *types.Graph) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encoding graph YAML: %w", err)
	}
	return enc.Close()
}

// ReadJSON decodes a graph written by WriteJSON or by a renderer that
// replaced link endpoints with node objects.
func ReadJSON(r io.Reader) (*types.Graph, error) {
	var g types.Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decoding graph JSON: %w", err)
	}
	return &g, nil
}
