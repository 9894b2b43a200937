// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

// ErrNotFound reports an unknown record ID.
var ErrNotFound = errors.New("publication not found")

const selectColumns = `p.id, p.title, p.authors, p.abstract, p.keywords, p.embedding,
	p.year, p.doi, p.journal, p.link, p.pmcid`

// Load returns every record, newest first. Records of the same year keep
// insertion order.
func (s *Store) Load(ctx context.Context) ([]types.PublicationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM publications p ORDER BY p.year DESC, p.rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying corpus: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Get returns the record with the given ID.
func (s *Store) Get(ctx context.Context, id string) (types.PublicationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM publications p WHERE p.id = ?`, id)
	if err != nil {
		return types.PublicationRecord{}, fmt.Errorf("querying %s: %w", id, err)
	}
	defer rows.Close()
	recs, err := scanRecords(rows)
	if err != nil {
		return types.PublicationRecord{}, err
	}
	if len(recs) == 0 {
		return types.PublicationRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return recs[0], nil
}

// Search runs a full-text query over titles, abstracts, and keywords and
// returns matches by relevance. Every whitespace-separated term must match.
func (s *Store) Search(ctx context.Context, text string, limit int) ([]types.PublicationRecord, error) {
	q := ftsQuery(text)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if !s.fts {
		return s.searchLike(ctx, text, limit)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+`
		FROM publications_fts
		JOIN publications p ON p.rowid = publications_fts.rowid
		WHERE publications_fts MATCH ?
		ORDER BY publications_fts.rank
		LIMIT ?`, q, limit)
	if err != nil {
		return nil, fmt.Errorf("searching corpus: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) searchLike(ctx context.Context, text string, limit int) ([]types.PublicationRecord, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT ` + selectColumns + ` FROM publications p WHERE 1=1`)
	for _, term := range strings.Fields(strings.ReplaceAll(text, `"`, "")) {
		qb.WriteString(` AND (p.title LIKE ? OR p.abstract LIKE ? OR p.keywords LIKE ?)`)
		pattern := "%" + term + "%"
		args = append(args, pattern, pattern, pattern)
	}
	qb.WriteString(` ORDER BY p.rowid LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching corpus: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ftsQuery quotes each term so user input cannot inject FTS5 syntax.
func ftsQuery(text string) string {
	var terms []string
	for _, f := range strings.Fields(text) {
		f = strings.ReplaceAll(f, `"`, "")
		if f != "" {
			terms = append(terms, `"`+f+`"`)
		}
	}
	return strings.Join(terms, " ")
}

func scanRecords(rows *sql.Rows) ([]types.PublicationRecord, error) {
	var out []types.PublicationRecord
	for rows.Next() {
		var (
			r                                types.PublicationRecord
			authors, abstract, keywords, emb sql.NullString
			doi, journal, link, pmcid        sql.NullString
			year                             sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Title, &authors, &abstract, &keywords, &emb,
			&year, &doi, &journal, &link, &pmcid); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if authors.Valid {
			json.Unmarshal([]byte(authors.String), &r.Authors)
		}
		if keywords.Valid {
			json.Unmarshal([]byte(keywords.String), &r.Keywords)
		}
		if emb.Valid {
			if err := json.Unmarshal([]byte(emb.String), &r.Embedding); err != nil {
				return nil, fmt.Errorf("decoding embedding of %s: %w", r.ID, err)
			}
		}
		r.Abstract = abstract.String
		r.Year = int(year.Int64)
		r.DOI, r.Journal, r.Link, r.PMCID = doi.String, journal.String, link.String, pmcid.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats describes the stored corpus.
type Stats struct {
	Total         int `json:"total" yaml:"total"`
	WithAbstract  int `json:"with_abstract" yaml:"with_abstract"`
	WithEmbedding int `json:"with_embedding" yaml:"with_embedding"`
	WithKeywords  int `json:"with_keywords" yaml:"with_keywords"`

	// Dimensions counts embeddings by length. More than one entry means
	// the corpus mixes embedding models.
	Dimensions map[int]int `json:"dimensions" yaml:"dimensions"`
}

// DominantDimension returns the most common embedding length, or 0.
func (st Stats) DominantDimension() int {
	dims := make([]int, 0, len(st.Dimensions))
	for d := range st.Dimensions {
		dims = append(dims, d)
	}
	sort.Ints(dims)
	best := 0
	for _, d := range dims {
		if st.Dimensions[d] > st.Dimensions[best] {
			best = d
		}
	}
	return best
}

// Stats computes corpus statistics.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	recs, err := s.Load(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(recs), nil
}

// ComputeStats computes statistics over records from any source.
func ComputeStats(recs []types.PublicationRecord) Stats {
	st := Stats{Total: len(recs), Dimensions: make(map[int]int)}
	for _, r := range recs {
		if r.HasAbstract() {
			st.WithAbstract++
		}
		if r.HasEmbedding() {
			st.WithEmbedding++
			st.Dimensions[len(r.Embedding)]++
		}
		if len(r.Keywords) > 0 {
			st.WithKeywords++
		}
	}
	return st
}
