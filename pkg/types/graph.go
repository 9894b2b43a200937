// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
)

// NodeKind classifies a graph node.
type NodeKind string

const (
	NodePublication NodeKind = "publication"
	NodeKeyword     NodeKind = "keyword"
	NodeAuthor      NodeKind = "author"
)

// GraphNode is a publication, keyword, or author in the exploration graph.
// Field names follow the force-graph JSON shape consumed by the renderer.
type GraphNode struct {
	// ID is derived from kind and canonical label: "pub-<index>",
	// "keyword-<canonical>", or "author-<canonical>".
	ID string `json:"id" yaml:"id"`

	Kind NodeKind `json:"type" yaml:"type"`

	// Label is the display name: the publication title, the canonical
	// keyword, or the first-seen spelling of an author name.
	Label string `json:"name" yaml:"name"`

	// Weight is the display size of the node.
	Weight float64 `json:"val" yaml:"val"`

	// RecordID links a publication node to its PublicationRecord.
	RecordID string `json:"record_id,omitempty" yaml:"record_id,omitempty"`

	// Publications lists the publication node IDs that reference a keyword
	// or author node. Lookup only.
	Publications []string `json:"related_publications,omitempty" yaml:"related_publications,omitempty"`
}

// ReferenceCount is the number of publications referencing the node.
func (n GraphNode) ReferenceCount() int {
	return len(n.Publications)
}

// GraphEdge is an unordered pair of node IDs.
type GraphEdge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Key returns the canonical unordered key of the edge.
func (e GraphEdge) Key() string {
	return EdgeKey(e.Source, e.Target)
}

// Touches reports whether id is one of the edge endpoints.
func (e GraphEdge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}

// Other returns the endpoint opposite to id. The second value is false
// when id is not an endpoint of the edge.
func (e GraphEdge) Other(id string) (string, bool) {
	switch id {
	case e.Source:
		return e.Target, true
	case e.Target:
		return e.Source, true
	}
	return "", false
}

// UnmarshalJSON accepts endpoints given either as raw node IDs or as node
// objects carrying an "id" field, as a renderer writes them back after
// resolving links. Both forms decode to the node ID.
func (e *GraphEdge) UnmarshalJSON(data []byte) error {
	var raw struct {
		Source json.RawMessage `json:"source"`
		Target json.RawMessage `json:"target"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	src, err := endpointID(raw.Source)
	if err != nil {
		return fmt.Errorf("edge source: %w", err)
	}
	dst, err := endpointID(raw.Target)
	if err != nil {
		return fmt.Errorf("edge target: %w", err)
	}
	e.Source, e.Target = src, dst
	return nil
}

// EndpointID canonicalizes an edge endpoint to a node ID. It accepts a
// node ID string, a GraphNode or *GraphNode, or a decoded JSON object with
// an "id" field. The second value is false when v carries no usable ID.
func EndpointID(v any) (string, bool) {
	var id string
	switch e := v.(type) {
	case string:
		id = e
	case GraphNode:
		id = e.ID
	case *GraphNode:
		if e != nil {
			id = e.ID
		}
	case map[string]any:
		id, _ = e["id"].(string)
	}
	return id, id != ""
}

func endpointID(raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}
	var node struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return "", fmt.Errorf("endpoint is neither an id nor a node: %w", err)
	}
	if node.ID == "" {
		return "", fmt.Errorf("endpoint node has no id")
	}
	return node.ID, nil
}

// EdgeKey returns the canonical key of the unordered pair {a, b}.
func EdgeKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

// Graph is the node and edge set produced by the graph builder.
type Graph struct {
	Nodes []GraphNode `json:"nodes" yaml:"nodes"`
	Edges []GraphEdge `json:"links" yaml:"links"`
}

// CountKind returns the number of nodes of the given kind.
func (g *Graph) CountKind(kind NodeKind) int {
	n := 0
	for _, node := range g.Nodes {
		if node.Kind == kind {
			n++
		}
	}
	return n
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (GraphNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return GraphNode{}, false
}
