// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research dashboard:
// publication records as supplied by a corpus source, ranked search results,
// and the publication/keyword/author graph.
package types

import (
	"fmt"
	"strings"
)

// Placeholder abstracts written by the metadata fetcher when the upstream
// service has no abstract or could not be reached.
const (
	AbstractUnavailable = "Abstract not available for this publication."
	AbstractNotFound    = "Abstract not available."
	AbstractTemporary   = "Abstract temporarily unavailable."
)

// AuthorsUnavailable is the placeholder author string for failed lookups.
const AuthorsUnavailable = "Authors unavailable"

// PublicationRecord holds the metadata of one publication in the corpus.
// Records are owned by the corpus source; ranking and graph building only
// read them.
type PublicationRecord struct {
	// ID is the stable identifier of the record (PMCID, database id, or a
	// derived UUID for catalog rows without one).
	ID string `json:"id" yaml:"id"`

	// Title is the publication title.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in source order. May be empty.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the publication abstract, possibly a placeholder.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Keywords is the canonical ordered keyword sequence. Loaders convert
	// delimited strings and lists into this form with ParseKeywords.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Embedding is the precomputed vector for title and abstract, or nil.
	Embedding []float64 `json:"embedding,omitempty" yaml:"embedding,omitempty,flow"`

	// Year is the publication year, zero when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	DOI     string `json:"doi,omitempty" yaml:"doi,omitempty"`
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`
	Link    string `json:"link,omitempty" yaml:"link,omitempty"`
	PMCID   string `json:"pmcid,omitempty" yaml:"pmcid,omitempty"`
}

// HasEmbedding reports whether the record carries an embedding vector.
func (r PublicationRecord) HasEmbedding() bool {
	return len(r.Embedding) > 0
}

// HasAbstract reports whether the record has a real abstract rather than
// an empty string or one of the placeholder values.
func (r PublicationRecord) HasAbstract() bool {
	a := strings.TrimSpace(r.Abstract)
	return a != "" && !IsPlaceholderAbstract(a)
}

// EmbeddingText returns the text embedded for this record: the title and
// abstract separated by a blank line, skipping empty parts.
func (r PublicationRecord) EmbeddingText() string {
	var parts []string
	if t := strings.TrimSpace(r.Title); t != "" {
		parts = append(parts, t)
	}
	if r.HasAbstract() {
		parts = append(parts, strings.TrimSpace(r.Abstract))
	}
	return strings.Join(parts, "\n\n")
}

// IsPlaceholderAbstract reports whether s is one of the placeholder abstracts.
func IsPlaceholderAbstract(s string) bool {
	switch strings.TrimSpace(s) {
	case AbstractUnavailable, AbstractNotFound, AbstractTemporary:
		return true
	}
	return false
}

// SplitList splits a comma- or semicolon-delimited string into trimmed,
// non-empty tokens in source order.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})
	var out []string
	for _, f := range fields {
		if t := strings.TrimSpace(f); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ParseKeywords converts a keyword field as found in source data into the
// canonical ordered sequence. It accepts a delimited string, a string
// slice, a generic slice (as produced by JSON or YAML decoding into any),
// or nil. Empty tokens are dropped.
func ParseKeywords(v any) []string {
	switch kw := v.(type) {
	case nil:
		return nil
	case string:
		return SplitList(kw)
	case []string:
		var out []string
		for _, k := range kw {
			if t := strings.TrimSpace(k); t != "" {
				out = append(out, t)
			}
		}
		return out
	case []any:
		var out []string
		for _, k := range kw {
			if k == nil {
				continue
			}
			if t := strings.TrimSpace(fmt.Sprint(k)); t != "" {
				out = append(out, t)
			}
		}
		return out
	default:
		return SplitList(fmt.Sprint(kw))
	}
}

// ParseAuthors converts an author field into an ordered name list using the
// same rules as ParseKeywords. The placeholder AuthorsUnavailable and the
// trailing "et al." marker are dropped.
func ParseAuthors(v any) []string {
	var out []string
	for _, a := range ParseKeywords(v) {
		if a == AuthorsUnavailable || strings.EqualFold(a, "et al.") {
			continue
		}
		out = append(out, a)
	}
	return out
}
