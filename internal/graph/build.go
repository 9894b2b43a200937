// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph builds the publication/keyword/author exploration graph
// from corpus metadata and answers degree and neighbor queries over it.
//
// Build is pure: it reads the corpus, never mutates it, and performs no
// I/O, so independent builds may run concurrently.
package graph

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

// tally accumulates the publications that reference one keyword or author.
type tally struct {
	key   string
	label string
	pubs  []string
}

// tallies keeps tallies in first-appearance order.
type tallies struct {
	order []*tally
	byKey map[string]*tally
}

func newTallies() *tallies {
	return &tallies{byKey: make(map[string]*tally)}
}

func (ts *tallies) add(key, label, pubID string) {
	t, ok := ts.byKey[key]
	if !ok {
		t = &tally{key: key, label: label}
		ts.byKey[key] = t
		ts.order = append(ts.order, t)
	}
	t.pubs = append(t.pubs, pubID)
}

// top keeps tallies referenced by at least minDegree publications, ranks
// them by reference count (ties by first appearance), and returns the first
// maxNodes keyed by canonical label.
func (ts *tallies) top(minDegree, maxNodes int) []*tally {
	var kept []*tally
	for _, t := range ts.order {
		if len(t.pubs) >= minDegree {
			kept = append(kept, t)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return len(kept[i].pubs) > len(kept[j].pubs)
	})
	if len(kept) > maxNodes {
		kept = kept[:maxNodes]
	}
	return kept
}

type edgeSet struct {
	edges []types.GraphEdge
	seen  map[string]struct{}
}

func (s *edgeSet) add(a, b string) {
	if a == b {
		return
	}
	k := types.EdgeKey(a, b)
	if _, ok := s.seen[k]; ok {
		return
	}
	s.seen[k] = struct{}{}
	s.edges = append(s.edges, types.GraphEdge{Source: a, Target: b})
}

// PublicationID returns the node ID of the publication at corpus index i.
func PublicationID(i int) string { return fmt.Sprintf("pub-%d", i) }

// Build derives the graph from the first cfg.MaxPublications corpus
// entries. Keyword and author nodes exist only when enough publications
// reference them; keyword pairs that co-occur often enough are linked.
// Empty or malformed keyword and author tokens are dropped.
func Build(corpus []types.PublicationRecord, cfg types.GraphConfig) *types.Graph {
	cfg = cfg.WithDefaults()

	if len(corpus) > cfg.MaxPublications {
		corpus = corpus[:cfg.MaxPublications]
	}

	g := &types.Graph{}
	pubKeywords := make([][]string, len(corpus))
	pubAuthors := make([][]string, len(corpus))
	keywords := newTallies()
	authors := newTallies()

	for i, rec := range corpus {
		pid := PublicationID(i)
		g.Nodes = append(g.Nodes, types.GraphNode{
			ID:       pid,
			Kind:     types.NodePublication,
			Label:    rec.Title,
			Weight:   cfg.PublicationWeight,
			RecordID: rec.ID,
		})

		for _, kw := range PublicationKeywords(rec, cfg) {
			keywords.add(kw, kw, pid)
			pubKeywords[i] = append(pubKeywords[i], kw)
		}
		for _, name := range publicationAuthors(rec, cfg.MaxAuthorsPerPublication) {
			key := Canonical(name)
			authors.add(key, name, pid)
			pubAuthors[i] = append(pubAuthors[i], key)
		}
	}

	keptKeywords := keywords.top(cfg.MinKeywordDegree, cfg.MaxKeywordNodes)
	keptAuthors := authors.top(cfg.MinAuthorDegree, cfg.MaxAuthorNodes)

	surviving := make(map[string]bool, len(keptKeywords))
	for _, t := range keptKeywords {
		surviving[t.key] = true
		g.Nodes = append(g.Nodes, labelNode(KeywordID(t.key), types.NodeKeyword, t, cfg))
	}
	survivingAuthors := make(map[string]bool, len(keptAuthors))
	for _, t := range keptAuthors {
		survivingAuthors[t.key] = true
		g.Nodes = append(g.Nodes, labelNode(AuthorID(t.key), types.NodeAuthor, t, cfg))
	}

	edges := &edgeSet{seen: make(map[string]struct{})}
	pairCounts := make(map[string]int)
	var pairOrder [][2]string

	for i := range corpus {
		pid := PublicationID(i)

		var kws []string
		for _, kw := range pubKeywords[i] {
			if surviving[kw] {
				edges.add(pid, KeywordID(kw))
				kws = append(kws, kw)
			}
		}
		for _, a := range pubAuthors[i] {
			if survivingAuthors[a] {
				edges.add(pid, AuthorID(a))
			}
		}

		// Each unordered pair counts once per publication.
		for x := 0; x < len(kws); x++ {
			for y := x + 1; y < len(kws); y++ {
				k := types.EdgeKey(kws[x], kws[y])
				if pairCounts[k] == 0 {
					pairOrder = append(pairOrder, [2]string{kws[x], kws[y]})
				}
				pairCounts[k]++
			}
		}
	}

	for _, p := range pairOrder {
		if pairCounts[types.EdgeKey(p[0], p[1])] >= cfg.MinKeywordCooccurrence {
			edges.add(KeywordID(p[0]), KeywordID(p[1]))
		}
	}

	g.Edges = edges.edges
	return g
}

func labelNode(id string, kind types.NodeKind, t *tally, cfg types.GraphConfig) types.GraphNode {
	return types.GraphNode{
		ID:           id,
		Kind:         kind,
		Label:        t.label,
		Weight:       math.Min(float64(len(t.pubs))*cfg.WeightScale, cfg.WeightCap),
		Publications: t.pubs,
	}
}

// PublicationKeywords returns the canonical keywords of rec: its explicit
// keywords when it has any, otherwise the fallback vocabulary terms found
// in its title (in vocabulary order). At most MaxKeywordsPerPublication
// tokens are taken and duplicates after normalization are dropped.
func PublicationKeywords(rec types.PublicationRecord, cfg types.GraphConfig) []string {
	cfg = cfg.WithDefaults()

	var raw []string
	for _, k := range rec.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			raw = append(raw, k)
		}
	}
	if len(raw) == 0 {
		title := strings.ToLower(rec.Title)
		for _, term := range cfg.FallbackVocabulary {
			t := strings.TrimSpace(term)
			if t != "" && strings.Contains(title, strings.ToLower(t)) {
				raw = append(raw, t)
			}
		}
	}
	if len(raw) > cfg.MaxKeywordsPerPublication {
		raw = raw[:cfg.MaxKeywordsPerPublication]
	}
	return dedupe(raw)
}

func publicationAuthors(rec types.PublicationRecord, limit int) []string {
	var names []string
	for _, a := range rec.Authors {
		if a = strings.TrimSpace(a); a != "" {
			names = append(names, a)
		}
	}
	if len(names) > limit {
		names = names[:limit]
	}
	var out []string
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		key := Canonical(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

func dedupe(tokens []string) []string {
	var out []string
	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		c := Canonical(t)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
