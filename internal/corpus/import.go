// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

// recordNamespace seeds deterministic IDs for records that arrive without one.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("research-dashboard/publication"))

var pmcidPattern = regexp.MustCompile(`PMC(\d+)`)

// ExtractPMCID returns the first "PMC<digits>" identifier in s, or "".
func ExtractPMCID(s string) string {
	m := pmcidPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return "PMC" + m[1]
}

// DeriveID returns a stable ID for a record: its PMCID when known,
// otherwise a name-based UUID of its link or normalized title.
func DeriveID(r types.PublicationRecord) string {
	if r.PMCID != "" {
		return r.PMCID
	}
	key := r.Link
	if key == "" {
		key = normalizeTitle(r.Title)
	}
	return uuid.NewSHA1(recordNamespace, []byte(key)).String()
}

// normalizeTitle lower-cases the title, drops punctuation, and collapses
// whitespace so near-identical titles compare equal.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// CatalogSummary holds counts from a catalog import.
type CatalogSummary struct {
	Parsed     int
	Duplicates int
	Skipped    int
}

// ReadCatalogCSV parses a publication catalog with a header row and at
// least "Title" and "Link" columns. When the header names neither column,
// the first two columns are used. The PMCID is taken from the link. Rows
// without a title are skipped; rows repeating an earlier PMCID or
// normalized title are dropped as duplicates.
func ReadCatalogCSV(r io.Reader) ([]types.PublicationRecord, CatalogSummary, error) {
	var summary CatalogSummary

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, summary, nil
	}
	if err != nil {
		return nil, summary, fmt.Errorf("reading header: %w", err)
	}
	titleCol, linkCol := 0, 1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "title":
			titleCol = i
		case "link", "url":
			linkCol = i
		}
	}

	seen := make(map[string]bool)
	var out []types.PublicationRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, summary, fmt.Errorf("reading row: %w", err)
		}

		rec := types.PublicationRecord{Title: strings.TrimSpace(field(row, titleCol))}
		if rec.Title == "" {
			summary.Skipped++
			continue
		}
		rec.Link = strings.TrimSpace(field(row, linkCol))
		rec.PMCID = ExtractPMCID(rec.Link)

		titleKey := "title:" + normalizeTitle(rec.Title)
		idKey := "pmcid:" + rec.PMCID
		if seen[titleKey] || (rec.PMCID != "" && seen[idKey]) {
			summary.Duplicates++
			continue
		}
		seen[titleKey] = true
		if rec.PMCID != "" {
			seen[idKey] = true
		}

		rec.ID = DeriveID(rec)
		out = append(out, rec)
		summary.Parsed++
	}
	return out, summary, nil
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// rawRecord mirrors PublicationRecord with loosely typed list fields as
// they appear in hand-written or exported files.
type rawRecord struct {
	ID              string    `yaml:"id"`
	Title           string    `yaml:"title"`
	Authors         any       `yaml:"authors"`
	Abstract        string    `yaml:"abstract"`
	Keywords        any       `yaml:"keywords"`
	Embedding       []float64 `yaml:"embedding"`
	Year            int       `yaml:"year"`
	PublicationDate string    `yaml:"publication_date"`
	DOI             string    `yaml:"doi"`
	Journal         string    `yaml:"journal"`
	Link            string    `yaml:"link"`
	PMCID           string    `yaml:"pmcid"`
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

func (r rawRecord) record() types.PublicationRecord {
	rec := types.PublicationRecord{
		ID:        strings.TrimSpace(r.ID),
		Title:     strings.TrimSpace(r.Title),
		Authors:   types.ParseAuthors(r.Authors),
		Abstract:  strings.TrimSpace(r.Abstract),
		Keywords:  types.ParseKeywords(r.Keywords),
		Embedding: r.Embedding,
		Year:      r.Year,
		DOI:       r.DOI,
		Journal:   r.Journal,
		Link:      r.Link,
		PMCID:     r.PMCID,
	}
	if rec.Year == 0 {
		if m := yearPattern.FindStringSubmatch(r.PublicationDate); m != nil {
			fmt.Sscan(m[1], &rec.Year)
		}
	}
	if rec.PMCID == "" {
		rec.PMCID = ExtractPMCID(rec.Link)
	}
	if rec.ID == "" {
		rec.ID = DeriveID(rec)
	}
	return rec
}

// DecodeRecords reads records from YAML or JSON. The input is either a
// list of records or an export document with a "publications" list.
// Keywords and authors may be delimited strings or lists. Records without
// a title are dropped.
func DecodeRecords(r io.Reader) ([]types.PublicationRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	var raws []rawRecord
	if err := yaml.Unmarshal(data, &raws); err != nil {
		var doc struct {
			Publications []rawRecord `yaml:"publications"`
		}
		if err2 := yaml.Unmarshal(data, &doc); err2 != nil {
			return nil, fmt.Errorf("decoding records: %w", err)
		}
		raws = doc.Publications
	}

	out := make([]types.PublicationRecord, 0, len(raws))
	for _, raw := range raws {
		rec := raw.record()
		if rec.Title == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadFile decodes records from a YAML or JSON file.
func ReadFile(path string) ([]types.PublicationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeRecords(f)
}

// Merge returns incoming with empty fields filled from the stored record
// of the same ID, so re-importing a catalog keeps fetched metadata.
func Merge(stored, incoming []types.PublicationRecord) []types.PublicationRecord {
	byID := make(map[string]types.PublicationRecord, len(stored))
	for _, r := range stored {
		byID[r.ID] = r
	}

	out := make([]types.PublicationRecord, len(incoming))
	for i, r := range incoming {
		old, ok := byID[r.ID]
		if !ok {
			out[i] = r
			continue
		}
		if len(r.Authors) == 0 {
			r.Authors = old.Authors
		}
		if !r.HasAbstract() && old.HasAbstract() {
			r.Abstract = old.Abstract
		}
		if r.Abstract == "" {
			r.Abstract = old.Abstract
		}
		if len(r.Keywords) == 0 {
			r.Keywords = old.Keywords
		}
		if r.Year == 0 {
			r.Year = old.Year
		}
		if r.DOI == "" {
			r.DOI = old.DOI
		}
		if r.Journal == "" {
			r.Journal = old.Journal
		}
		if r.Link == "" {
			r.Link = old.Link
		}
		if r.PMCID == "" {
			r.PMCID = old.PMCID
		}
		out[i] = r
	}
	return out
}
