// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

// Open connects to a Postgres database and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return db, nil
}

// PostgresSource reads records from a managed "publications" table. The
// caller owns the handle.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource returns a source reading through db.
func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// Load returns all publications ordered by publication date, newest first.
// Authors and keywords may be stored as text arrays or delimited text.
func (p *PostgresSource) Load(ctx context.Context) ([]types.PublicationRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id::text, title, authors::text, abstract, publication_date,
			journal, doi, keywords::text, embedding
		FROM publications
		ORDER BY publication_date DESC NULLS LAST`)
	if err != nil {
		return nil, fmt.Errorf("querying publications: %w", err)
	}
	defer rows.Close()

	var out []types.PublicationRecord
	for rows.Next() {
		var (
			r                 types.PublicationRecord
			title, abstract   sql.NullString
			authors, keywords sql.NullString
			journal, doi      sql.NullString
			published         sql.NullTime
			embedding         pq.Float64Array
		)
		if err := rows.Scan(&r.ID, &title, &authors, &abstract, &published,
			&journal, &doi, &keywords, &embedding); err != nil {
			return nil, fmt.Errorf("scanning publication: %w", err)
		}
		r.Title = title.String
		r.Abstract = abstract.String
		r.Journal = journal.String
		r.DOI = doi.String
		r.Authors = types.ParseAuthors(textList(authors))
		r.Keywords = types.ParseKeywords(textList(keywords))
		if len(embedding) > 0 {
			r.Embedding = []float64(embedding)
		}
		if published.Valid {
			r.Year = published.Time.Year()
		}
		r.PMCID = ExtractPMCID(r.ID)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SetEmbedding stores the embedding of one publication.
func (p *PostgresSource) SetEmbedding(ctx context.Context, id string, vec []float64) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE publications SET embedding = $1, updated_at = now() WHERE id::text = $2`,
		pq.Array(vec), id)
	if err != nil {
		return fmt.Errorf("updating embedding of %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// textList converts a column cast to text into the value ParseKeywords
// expects: a []string for Postgres array literals, the raw string otherwise.
func textList(v sql.NullString) any {
	if !v.Valid {
		return nil
	}
	b := bytes.TrimSpace([]byte(v.String))
	if len(b) >= 2 && b[0] == '{' && b[len(b)-1] == '}' {
		var arr pq.StringArray
		if err := arr.Scan(b); err == nil {
			return []string(arr)
		}
	}
	return v.String
}
