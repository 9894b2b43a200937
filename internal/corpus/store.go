// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus stores publication records and supplies them to the
// ranking and graph components. The local store is a SQLite database with
// a full-text index; a managed Postgres table can serve as an alternative
// source.
package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "corpus.db"
)

// Source supplies a finite, already-fetched collection of records.
type Source interface {
	Load(ctx context.Context) ([]types.PublicationRecord, error)
}

// Store manages the local corpus database.
type Store struct {
	db  *sql.DB
	dir string

	// fts is false when the SQLite build lacks FTS5; Search then falls
	// back to substring matching.
	fts bool
}

// NewStore opens or creates the corpus database at dir/index/corpus.db and
// creates the schema if needed.
func NewStore(cfg types.CorpusConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "corpus"
	}
	dbDir := filepath.Join(dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dbDir, dbFile)+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS publications (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			authors TEXT,
			abstract TEXT,
			keywords TEXT,
			embedding TEXT,
			year INTEGER,
			doi TEXT,
			journal TEXT,
			link TEXT,
			pmcid TEXT,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_publications_pmcid ON publications(pmcid)`,
		`CREATE INDEX IF NOT EXISTS idx_publications_year ON publications(year)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='publications_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	fts := []string{
		`CREATE VIRTUAL TABLE publications_fts USING fts5(title, abstract, keywords, content=publications, content_rowid=rowid)`,
		`CREATE TRIGGER publications_ai AFTER INSERT ON publications BEGIN
			INSERT INTO publications_fts(rowid, title, abstract, keywords) VALUES (new.rowid, new.title, new.abstract, new.keywords);
		END`,
		`CREATE TRIGGER publications_ad AFTER DELETE ON publications BEGIN
			INSERT INTO publications_fts(publications_fts, rowid, title, abstract, keywords) VALUES('delete', old.rowid, old.title, old.abstract, old.keywords);
		END`,
		`CREATE TRIGGER publications_au AFTER UPDATE ON publications BEGIN
			INSERT INTO publications_fts(publications_fts, rowid, title, abstract, keywords) VALUES('delete', old.rowid, old.title, old.abstract, old.keywords);
			INSERT INTO publications_fts(rowid, title, abstract, keywords) VALUES (new.rowid, new.title, new.abstract, new.keywords);
		END`,
	}
	if _, err := s.db.Exec(fts[0]); err != nil {
		if strings.Contains(err.Error(), "no such module") {
			return nil
		}
		return fmt.Errorf("creating FTS table: %w", err)
	}
	for _, stmt := range fts[1:] {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS triggers: %w", err)
		}
	}
	if _, err := s.db.Exec(`INSERT INTO publications_fts(publications_fts) VALUES('rebuild')`); err != nil {
		return fmt.Errorf("building FTS index: %w", err)
	}
	s.fts = true
	return nil
}

// UpsertSummary holds counts from an upsert.
type UpsertSummary struct {
	Inserted int
	Updated  int
}

// Upsert inserts or replaces records by ID in one transaction. A record
// without an embedding keeps the vector already stored for its ID.
func (s *Store) Upsert(ctx context.Context, records []types.PublicationRecord) (UpsertSummary, error) {
	var summary UpsertSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := tx.PrepareContext(ctx, `SELECT count(*) FROM publications WHERE id = ?`)
	if err != nil {
		return summary, fmt.Errorf("preparing lookup: %w", err)
	}
	defer exists.Close()

	upsert, err := tx.PrepareContext(ctx,
		`INSERT INTO publications (id, title, authors, abstract, keywords, embedding, year, doi, journal, link, pmcid, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, abstract=excluded.abstract,
			keywords=excluded.keywords, embedding=COALESCE(excluded.embedding, publications.embedding),
			year=excluded.year, doi=excluded.doi, journal=excluded.journal, link=excluded.link,
			pmcid=excluded.pmcid, updated_at=excluded.updated_at`)
	if err != nil {
		return summary, fmt.Errorf("preparing upsert: %w", err)
	}
	defer upsert.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range records {
		if r.ID == "" {
			return summary, fmt.Errorf("record %q has no id", r.Title)
		}
		var n int
		if err := exists.QueryRowContext(ctx, r.ID).Scan(&n); err != nil {
			return summary, fmt.Errorf("checking %s: %w", r.ID, err)
		}

		authorsJSON, _ := json.Marshal(nonNil(r.Authors))
		keywordsJSON, _ := json.Marshal(nonNil(r.Keywords))
		var embedding sql.NullString
		if r.HasEmbedding() {
			b, err := json.Marshal(r.Embedding)
			if err != nil {
				return summary, fmt.Errorf("encoding embedding of %s: %w", r.ID, err)
			}
			embedding = sql.NullString{String: string(b), Valid: true}
		}

		if _, err := upsert.ExecContext(ctx,
			r.ID, r.Title, string(authorsJSON), r.Abstract, string(keywordsJSON), embedding,
			r.Year, r.DOI, r.Journal, r.Link, r.PMCID, now,
		); err != nil {
			return summary, fmt.Errorf("upserting %s: %w", r.ID, err)
		}
		if n > 0 {
			summary.Updated++
		} else {
			summary.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing: %w", err)
	}
	return summary, nil
}

// SetEmbedding stores the embedding of one record.
func (s *Store) SetEmbedding(ctx context.Context, id string, vec []float64) error {
	b, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("encoding embedding: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE publications SET embedding = ?, updated_at = ? WHERE id = ?`,
		string(b), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating embedding of %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
