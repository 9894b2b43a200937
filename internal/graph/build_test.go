// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

// --- test helpers ---

func pub(id, title string, keywords, authors []string) types.PublicationRecord {
	return types.PublicationRecord{ID: id, Title: title, Keywords: keywords, Authors: authors}
}

func edgeSetOf(g *types.Graph) map[string]bool {
	m := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		m[e.Key()] = true
	}
	return m
}

func hasEdge(g *types.Graph, a, b string) bool {
	return edgeSetOf(g)[types.EdgeKey(a, b)]
}

// checkInvariants verifies that edges are unique, never self-loops, and
// only reference existing nodes.
func checkInvariants(t *testing.T, g *types.Graph) {
	t.Helper()
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if ids[n.ID] {
			t.Errorf("duplicate node %q", n.ID)
		}
		ids[n.ID] = true
	}
	seen := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		if e.Source == e.Target {
			t.Errorf("self-loop on %q", e.Source)
		}
		if seen[e.Key()] {
			t.Errorf("duplicate edge %s-%s", e.Source, e.Target)
		}
		seen[e.Key()] = true
		if !ids[e.Source] || !ids[e.Target] {
			t.Errorf("edge %s-%s references a missing node", e.Source, e.Target)
		}
	}
}

// --- Canonical ---

func TestCanonical(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"microgravity", "Microgravity"},
		{"  MICROGRAVITY ", "Microgravity"},
		{"ISS", "Iss"},
		{"bone Loss", "Bone loss"},
		{"éclair", "Éclair"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- Build ---

func TestBuildKeywordDegreeAndNoAuthors(t *testing.T) {
	corpus := []types.PublicationRecord{
		pub("a", "Bone study", []string{"microgravity"}, []string{"Alice Smith"}),
		pub("b", "Plant study", []string{"MICROGRAVITY", "plants"}, []string{"Bob Jones"}),
		pub("c", "Cell study", []string{"cells"}, []string{"Carol White"}),
	}
	g := Build(corpus, types.DefaultGraphConfig())
	checkInvariants(t, g)

	kw, ok := g.Node("keyword-Microgravity")
	if !ok {
		t.Fatal("keyword-Microgravity missing")
	}
	if kw.Label != "Microgravity" {
		t.Errorf("label = %q, want Microgravity", kw.Label)
	}
	if n := NewService(g).Degree(kw.ID); n != 2 {
		t.Errorf("degree = %d, want 2", n)
	}
	if kw.Weight != 5 {
		t.Errorf("weight = %v, want 5", kw.Weight)
	}
	if g.CountKind(types.NodeAuthor) != 0 {
		t.Errorf("author nodes = %d, want 0", g.CountKind(types.NodeAuthor))
	}
	if g.CountKind(types.NodeKeyword) != 1 {
		t.Errorf("keyword nodes = %d, want 1", g.CountKind(types.NodeKeyword))
	}
	if g.CountKind(types.NodePublication) != 3 {
		t.Errorf("publication nodes = %d, want 3", g.CountKind(types.NodePublication))
	}
}

func TestBuildCooccurrenceThreshold(t *testing.T) {
	shared := []string{"radiation", "bone"}

	two := []types.PublicationRecord{
		pub("a", "A", shared, nil),
		pub("b", "B", shared, nil),
		pub("c", "C", []string{"radiation"}, nil),
	}
	g := Build(two, types.DefaultGraphConfig())
	checkInvariants(t, g)
	if hasEdge(g, "keyword-Radiation", "keyword-Bone") {
		t.Error("keyword edge created for 2 co-occurrences, want none")
	}

	three := append(two, pub("d", "D", []string{"bone", "radiation"}, nil))
	g = Build(three, types.DefaultGraphConfig())
	checkInvariants(t, g)
	if !hasEdge(g, "keyword-Radiation", "keyword-Bone") {
		t.Error("keyword edge missing for 3 co-occurrences")
	}
}

func TestBuildCooccurrenceCountedOncePerPublication(t *testing.T) {
	// Duplicate keywords within one publication must not inflate the count.
	corpus := []types.PublicationRecord{
		pub("a", "A", []string{"x", "y", "X", "Y"}, nil),
		pub("b", "B", []string{"x", "y"}, nil),
	}
	g := Build(corpus, types.DefaultGraphConfig())
	if hasEdge(g, "keyword-X", "keyword-Y") {
		t.Error("pair counted more than once per publication")
	}
}

func TestBuildAuthors(t *testing.T) {
	corpus := []types.PublicationRecord{
		pub("a", "A", nil, []string{"Jane Doe", "Ann Lee", "Max Roe", "Fourth Author"}),
		pub("b", "B", nil, []string{"jane doe", "Fourth Author"}),
	}
	g := Build(corpus, types.DefaultGraphConfig())
	checkInvariants(t, g)

	n, ok := g.Node("author-Jane doe")
	if !ok {
		t.Fatal("author-Jane doe missing")
	}
	if n.Label != "Jane Doe" {
		t.Errorf("label = %q, want first-seen spelling", n.Label)
	}
	if !reflect.DeepEqual(n.Publications, []string{"pub-0", "pub-1"}) {
		t.Errorf("publications = %v", n.Publications)
	}
	// Only the first three authors of pub-0 are taken.
	if _, ok := g.Node("author-Fourth author"); ok {
		t.Error("author beyond per-publication cap became a node")
	}
}

func TestBuildMinDegreeAndTopK(t *testing.T) {
	var corpus []types.PublicationRecord
	// k0 referenced 5 times, k1 4 times, k2 3 times, k3 2 times, k4 once.
	for i := 0; i < 5; i++ {
		var kws []string
		for k := 0; k < 5-i; k++ {
			kws = append(kws, fmt.Sprintf("k%d", k))
		}
		corpus = append(corpus, pub(fmt.Sprint(i), "T", kws, nil))
	}
	cfg := types.DefaultGraphConfig()
	cfg.MaxKeywordNodes = 2
	cfg.MinKeywordCooccurrence = 100
	g := Build(corpus, cfg)
	checkInvariants(t, g)

	var got []string
	for _, n := range g.Nodes {
		if n.Kind == types.NodeKeyword {
			got = append(got, n.ID)
		}
	}
	want := []string{"keyword-K0", "keyword-K1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("keyword nodes = %v, want %v", got, want)
	}

	cfg.MaxKeywordNodes = 40
	g = Build(corpus, cfg)
	if _, ok := g.Node("keyword-K4"); ok {
		t.Error("keyword below min degree became a node")
	}
	if _, ok := g.Node("keyword-K3"); !ok {
		t.Error("keyword at min degree missing")
	}
}

func TestBuildWeightCap(t *testing.T) {
	var corpus []types.PublicationRecord
	for i := 0; i < 12; i++ {
		corpus = append(corpus, pub(fmt.Sprint(i), "T", []string{"space"}, nil))
	}
	g := Build(corpus, types.DefaultGraphConfig())
	n, _ := g.Node("keyword-Space")
	if n.Weight != 20 {
		t.Errorf("weight = %v, want 20", n.Weight)
	}
	p, _ := g.Node("pub-0")
	if p.Weight != 6 {
		t.Errorf("publication weight = %v, want 6", p.Weight)
	}
}

func TestBuildMaxPublications(t *testing.T) {
	var corpus []types.PublicationRecord
	for i := 0; i < 8; i++ {
		corpus = append(corpus, pub(fmt.Sprintf("r%d", i), "T", nil, nil))
	}
	cfg := types.DefaultGraphConfig()
	cfg.MaxPublications = 3
	g := Build(corpus, cfg)
	if g.CountKind(types.NodePublication) != 3 {
		t.Fatalf("publication nodes = %d, want 3", g.CountKind(types.NodePublication))
	}
	for i, n := range g.Nodes {
		if n.RecordID != fmt.Sprintf("r%d", i) {
			t.Errorf("node %d record = %q, corpus order not preserved", i, n.RecordID)
		}
	}
}

func TestBuildFallbackVocabulary(t *testing.T) {
	corpus := []types.PublicationRecord{
		pub("a", "Radiation effects on Mars habitats", nil, nil),
		pub("b", "Mars radiation shielding", nil, nil),
		pub("c", "No topic here", nil, nil),
	}
	g := Build(corpus, types.DefaultGraphConfig())
	checkInvariants(t, g)
	for _, id := range []string{"keyword-Radiation", "keyword-Mars"} {
		if _, ok := g.Node(id); !ok {
			t.Errorf("%s missing", id)
		}
	}
	if s := NewService(g); s.Degree("pub-2") != 0 {
		t.Errorf("pub-2 degree = %d, want 0", s.Degree("pub-2"))
	}
}

func TestPublicationKeywords(t *testing.T) {
	cfg := types.GraphConfig{
		MaxKeywordsPerPublication: 2,
		FallbackVocabulary:        []string{"moon", "plant", "bone"},
	}
	tests := []struct {
		name string
		rec  types.PublicationRecord
		want []string
	}{
		{"explicit", types.PublicationRecord{Keywords: []string{" alpha ", "", "BETA", "gamma"}}, []string{"Alpha", "Beta"}},
		{"fallback in vocabulary order", types.PublicationRecord{Title: "Bone and plant growth on the Moon"}, []string{"Moon", "Plant"}},
		{"explicit wins over title", types.PublicationRecord{Title: "Moon", Keywords: []string{"x"}}, []string{"X"}},
		{"blank keywords fall back", types.PublicationRecord{Title: "Plant", Keywords: []string{" "}}, []string{"Plant"}},
		{"nothing", types.PublicationRecord{Title: "Unrelated"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PublicationKeywords(tt.rec, cfg)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PublicationKeywords() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	g := Build(nil, types.GraphConfig{})
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Errorf("got %d nodes, %d edges, want empty graph", len(g.Nodes), len(g.Edges))
	}
}

func TestBuildDeterministic(t *testing.T) {
	corpus := []types.PublicationRecord{
		pub("a", "A", []string{"x", "y", "z"}, []string{"P", "Q"}),
		pub("b", "B", []string{"z", "y", "x"}, []string{"Q", "P"}),
		pub("c", "C", []string{"y", "x", "z"}, []string{"P"}),
	}
	first := Build(corpus, types.DefaultGraphConfig())
	for i := 0; i < 10; i++ {
		if !reflect.DeepEqual(first, Build(corpus, types.DefaultGraphConfig())) {
			t.Fatal("Build is not deterministic")
		}
	}
	checkInvariants(t, first)
}
