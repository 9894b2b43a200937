// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import "github.com/pdiddy/research-dashboard/pkg/types"

// Service answers structural queries over a built graph. It indexes the
// graph once and is safe for concurrent use; the graph must not be
// modified afterwards.
type Service struct {
	nodes    map[string]types.GraphNode
	incident map[string][]int
	edges    []types.GraphEdge
}

// NewService indexes g by node ID. Edge endpoints are compared by ID, so
// edges decoded from either raw IDs or node objects resolve the same way.
func NewService(g *types.Graph) *Service {
	s := &Service{
		nodes:    make(map[string]types.GraphNode, len(g.Nodes)),
		incident: make(map[string][]int),
		edges:    g.Edges,
	}
	for _, n := range g.Nodes {
		s.nodes[n.ID] = n
	}
	for i, e := range g.Edges {
		s.incident[e.Source] = append(s.incident[e.Source], i)
		if e.Target != e.Source {
			s.incident[e.Target] = append(s.incident[e.Target], i)
		}
	}
	return s
}

// Node returns the node with the given ID.
func (s *Service) Node(id string) (types.GraphNode, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Degree returns the number of edges touching id. Each edge counts once
// regardless of which endpoint matches.
func (s *Service) Degree(id string) int {
	return len(s.incident[id])
}

// Neighbors returns the distinct nodes adjacent to id in edge order, at
// most limit of them (all when limit <= 0). The second value is the number
// of neighbors left out by the limit. Endpoints missing from the node set
// are skipped.
func (s *Service) Neighbors(id string, limit int) ([]types.GraphNode, int) {
	var all []types.GraphNode
	seen := make(map[string]bool)
	for _, i := range s.incident[id] {
		other, _ := s.edges[i].Other(id)
		if seen[other] {
			continue
		}
		seen[other] = true
		if n, ok := s.nodes[other]; ok {
			all = append(all, n)
		}
	}
	return truncate(all, limit)
}

// RelatedPublications returns the publication nodes referencing a keyword
// or author node, with the same limit and excess semantics as Neighbors.
func (s *Service) RelatedPublications(id string, limit int) ([]types.GraphNode, int) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, 0
	}
	var pubs []types.GraphNode
	for _, pid := range n.Publications {
		if p, ok := s.nodes[pid]; ok {
			pubs = append(pubs, p)
		}
	}
	return truncate(pubs, limit)
}

func truncate(nodes []types.GraphNode, limit int) ([]types.GraphNode, int) {
	if limit <= 0 || len(nodes) <= limit {
		return nodes, 0
	}
	return nodes[:limit], len(nodes) - limit
}
