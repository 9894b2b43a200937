// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.CorpusConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecords() []types.PublicationRecord {
	return []types.PublicationRecord{
		{
			ID:        "PMC100",
			Title:     "Microgravity induces bone loss in mice",
			Authors:   []string{"Ann Lee", "Bo Chen"},
			Abstract:  "Spaceflight causes rapid bone loss.",
			Keywords:  []string{"microgravity", "bone"},
			Embedding: []float64{0.1, 0.2, 0.3},
			Year:      2019,
			PMCID:     "PMC100",
		},
		{
			ID:       "PMC200",
			Title:    "Plant root growth aboard the ISS",
			Authors:  []string{"Cy Diaz"},
			Abstract: types.AbstractUnavailable,
			Year:     2021,
			PMCID:    "PMC200",
		},
		{
			ID:    "PMC300",
			Title: "Radiation and the immune system",
			Year:  2021,
		},
	}
}

// --- Upsert / Load ---

func TestUpsertAndLoad(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	summary, err := s.Upsert(ctx, sampleRecords())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Inserted != 3 || summary.Updated != 0 {
		t.Errorf("summary = %+v, want 3 inserted", summary)
	}

	recs, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}

	// Newest first; equal years keep insertion order.
	wantOrder := []string{"PMC200", "PMC300", "PMC100"}
	for i, id := range wantOrder {
		if recs[i].ID != id {
			t.Errorf("recs[%d] = %s, want %s", i, recs[i].ID, id)
		}
	}

	bone := recs[2]
	if len(bone.Embedding) != 3 || bone.Embedding[2] != 0.3 {
		t.Errorf("embedding = %v", bone.Embedding)
	}
	if len(bone.Authors) != 2 || bone.Authors[1] != "Bo Chen" {
		t.Errorf("authors = %v", bone.Authors)
	}
	if len(bone.Keywords) != 2 {
		t.Errorf("keywords = %v", bone.Keywords)
	}
	if recs[1].Keywords == nil || len(recs[1].Keywords) != 0 {
		t.Errorf("keywords of record without keywords = %#v, want empty", recs[1].Keywords)
	}
}

func TestUpsertKeepsEmbedding(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, sampleRecords()[:1]); err != nil {
		t.Fatal(err)
	}

	updated := sampleRecords()[0]
	updated.Embedding = nil
	updated.Abstract = "Revised abstract."
	summary, err := s.Upsert(ctx, []types.PublicationRecord{updated})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 {
		t.Errorf("updated = %d, want 1", summary.Updated)
	}

	got, err := s.Get(ctx, "PMC100")
	if err != nil {
		t.Fatal(err)
	}
	if got.Abstract != "Revised abstract." {
		t.Errorf("abstract = %q", got.Abstract)
	}
	if len(got.Embedding) != 3 {
		t.Errorf("embedding lost on update: %v", got.Embedding)
	}
}

func TestUpsertRejectsMissingID(t *testing.T) {
	s := testStore(t)
	if _, err := s.Upsert(context.Background(), []types.PublicationRecord{{Title: "x"}}); err == nil {
		t.Error("expected error for record without id")
	}
}

func TestSetEmbedding(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if _, err := s.Upsert(ctx, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	if err := s.SetEmbedding(ctx, "PMC300", []float64{1, 2}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "PMC300")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Embedding) != 2 {
		t.Errorf("embedding = %v", got.Embedding)
	}

	if err := s.SetEmbedding(ctx, "nope", []float64{1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v, want ErrNotFound", err)
	}
}

// --- Search ---

func TestSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if _, err := s.Upsert(ctx, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"bone", []string{"PMC100"}},
		{"root growth", []string{"PMC200"}},
		{`immune "system`, []string{"PMC300"}},
		{"mars", nil},
		{"   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Search(ctx, tt.query, 10)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d results, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("result %d = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

// --- Stats ---

func TestStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	recs := sampleRecords()
	recs[2].Embedding = []float64{1, 2, 3, 4}
	if _, err := s.Upsert(ctx, recs); err != nil {
		t.Fatal(err)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 3 || st.WithAbstract != 1 || st.WithEmbedding != 2 || st.WithKeywords != 1 {
		t.Errorf("stats = %+v", st)
	}
	if len(st.Dimensions) != 2 {
		t.Errorf("dimensions = %v, want two lengths", st.Dimensions)
	}
	if d := st.DominantDimension(); d != 3 {
		t.Errorf("dominant dimension = %d, want 3 (tie resolves to smaller)", d)
	}
	if d := (Stats{}).DominantDimension(); d != 0 {
		t.Errorf("empty dominant dimension = %d", d)
	}
}

// --- Export ---

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if _, err := s.Upsert(ctx, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	yamlPath, err := s.ExportYAML(ctx)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	var exp Export
	if err := yaml.Unmarshal(data, &exp); err != nil {
		t.Fatal(err)
	}
	if len(exp.Publications) != 3 || exp.RunID == "" {
		t.Errorf("export = %d publications, run id %q", len(exp.Publications), exp.RunID)
	}

	jsonPath, err := s.ExportJSON(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(jsonPath) != "export.json" {
		t.Errorf("json path = %s", jsonPath)
	}
	data, err = os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var jexp Export
	if err := json.Unmarshal(data, &jexp); err != nil {
		t.Fatal(err)
	}

	// Exports read back through the import path.
	back, err := ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 3 || back[2].ID != "PMC100" || len(back[2].Embedding) != 3 {
		t.Errorf("re-imported %d records: %+v", len(back), back)
	}
}
