// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

func starGraph(n int) *types.Graph {
	g := &types.Graph{Nodes: []types.GraphNode{{ID: "hub", Kind: types.NodeKeyword}}}
	for i := 0; i < n; i++ {
		id := PublicationID(i)
		g.Nodes = append(g.Nodes, types.GraphNode{ID: id, Kind: types.NodePublication})
		g.Edges = append(g.Edges, types.GraphEdge{Source: id, Target: "hub"})
	}
	return g
}

func TestDegree(t *testing.T) {
	g := starGraph(4)
	g.Edges = append(g.Edges, types.GraphEdge{Source: "pub-0", Target: "pub-1"})
	s := NewService(g)

	assert.Equal(t, 4, s.Degree("hub"))
	assert.Equal(t, 2, s.Degree("pub-0"))
	assert.Equal(t, 2, s.Degree("pub-1"))
	assert.Equal(t, 1, s.Degree("pub-3"))
	assert.Equal(t, 0, s.Degree("missing"))
}

func TestDegreeMatchesEdgeCount(t *testing.T) {
	corpus := []types.PublicationRecord{
		pub("a", "A", []string{"x", "y"}, []string{"P"}),
		pub("b", "B", []string{"x", "y"}, []string{"P"}),
		pub("c", "C", []string{"x", "y"}, nil),
	}
	g := Build(corpus, types.DefaultGraphConfig())
	s := NewService(g)
	for _, n := range g.Nodes {
		want := 0
		for _, e := range g.Edges {
			if e.Touches(n.ID) {
				want++
			}
		}
		assert.Equal(t, want, s.Degree(n.ID), n.ID)
	}
}

func TestNeighborsExcess(t *testing.T) {
	s := NewService(starGraph(7))

	got, excess := s.Neighbors("hub", 3)
	require.Len(t, got, 3)
	assert.Equal(t, 4, excess)
	assert.Equal(t, "pub-0", got[0].ID)

	got, excess = s.Neighbors("hub", 0)
	assert.Len(t, got, 7)
	assert.Zero(t, excess)

	got, excess = s.Neighbors("pub-2", 5)
	require.Len(t, got, 1)
	assert.Equal(t, "hub", got[0].ID)
	assert.Zero(t, excess)
}

func TestNeighborsSkipsUnknownEndpoints(t *testing.T) {
	g := starGraph(1)
	g.Edges = append(g.Edges, types.GraphEdge{Source: "hub", Target: "ghost"})
	got, excess := NewService(g).Neighbors("hub", 10)
	require.Len(t, got, 1)
	assert.Equal(t, "pub-0", got[0].ID)
	assert.Zero(t, excess)
}

func TestMixedEndpointRepresentations(t *testing.T) {
	data := `{
	  "nodes": [
	    {"id": "pub-0", "type": "publication", "name": "A", "val": 6},
	    {"id": "pub-1", "type": "publication", "name": "B", "val": 6},
	    {"id": "keyword-Space", "type": "keyword", "name": "Space", "val": 5}
	  ],
	  "links": [
	    {"source": "pub-0", "target": "keyword-Space"},
	    {"source": {"id": "pub-1", "x": 1.5}, "target": {"id": "keyword-Space"}}
	  ]
	}`
	g, err := ReadJSON(strings.NewReader(data))
	require.NoError(t, err)

	s := NewService(g)
	assert.Equal(t, 2, s.Degree("keyword-Space"))
	nodes, _ := s.Neighbors("keyword-Space", 0)
	require.Len(t, nodes, 2)
	assert.Equal(t, "pub-0", nodes[0].ID)
	assert.Equal(t, "pub-1", nodes[1].ID)
}

func TestReadJSONRejectsEndpointWithoutID(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"nodes":[],"links":[{"source":{"x":1},"target":"a"}]}`))
	assert.Error(t, err)
}

func TestRelatedPublications(t *testing.T) {
	g := &types.Graph{Nodes: []types.GraphNode{
		{ID: "pub-0", Kind: types.NodePublication, Label: "A"},
		{ID: "pub-1", Kind: types.NodePublication, Label: "B"},
		{ID: "pub-2", Kind: types.NodePublication, Label: "C"},
		{ID: "author-Ann", Kind: types.NodeAuthor, Publications: []string{"pub-0", "pub-1", "pub-2"}},
	}}
	s := NewService(g)

	got, excess := s.RelatedPublications("author-Ann", 2)
	require.Len(t, got, 2)
	assert.Equal(t, 1, excess)
	assert.Equal(t, "A", got[0].Label)

	got, excess = s.RelatedPublications("missing", 2)
	assert.Empty(t, got)
	assert.Zero(t, excess)
}

func TestEndpointID(t *testing.T) {
	node := types.GraphNode{ID: "author-X"}
	tests := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{"string", "pub-1", "pub-1", true},
		{"node", node, "author-X", true},
		{"node pointer", &node, "author-X", true},
		{"decoded object", map[string]any{"id": "keyword-Bone"}, "keyword-Bone", true},
		{"nil pointer", (*types.GraphNode)(nil), "", false},
		{"number", 42, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := types.EndpointID(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestWriteJSONRoundTripShape(t *testing.T) {
	g := Build([]types.PublicationRecord{
		pub("a", "A", []string{"x"}, nil),
		pub("b", "B", []string{"x"}, nil),
	}, types.DefaultGraphConfig())

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, g))
	assert.Contains(t, buf.String(), `"links"`)
	assert.Contains(t, buf.String(), `"val": 5`)

	back, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, g.Edges, back.Edges)
}

func TestWriteYAML(t *testing.T) {
	g := starGraph(1)
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, g))
	assert.Contains(t, buf.String(), "links:")
	assert.Contains(t, buf.String(), "source: pub-0")
}
