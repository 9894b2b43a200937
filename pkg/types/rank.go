// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// RankedResult is one publication returned by a similarity query. Results
// live for a single query and are never persisted.
type RankedResult struct {
	// PublicationID is the ID of the matching PublicationRecord.
	PublicationID string `json:"publication_id" yaml:"publication_id"`

	// Title is copied from the record for display.
	Title string `json:"title" yaml:"title"`

	// Score is the cosine similarity to the query, in [-1, 1].
	Score float64 `json:"similarity_score" yaml:"similarity_score"`

	// Explanation is the human-readable relevance justification.
	Explanation string `json:"relevance_explanation" yaml:"relevance_explanation"`

	// Quality is a deterministic data-quality score in [0, 1] derived from
	// abstract, embedding, and keyword presence.
	Quality float64 `json:"quality" yaml:"quality"`
}

// RankOutput holds ranked results and diagnostics for one query.
type RankOutput struct {
	Results []RankedResult `json:"results" yaml:"results"`

	// NoEmbeddings is set when no corpus entry carried an embedding, so an
	// empty result means "nothing to compare against" rather than "no match".
	NoEmbeddings bool `json:"no_embeddings" yaml:"no_embeddings"`

	// Considered counts entries that were scored.
	Considered int `json:"considered" yaml:"considered"`

	// Excluded counts entries skipped because they had no embedding.
	Excluded int `json:"excluded" yaml:"excluded"`

	// Mismatched lists IDs of entries whose embedding length differed from
	// the query vector.
	Mismatched []string `json:"mismatched,omitempty" yaml:"mismatched,omitempty"`
}

// Message returns a short status line that distinguishes an empty corpus
// from a query with no qualifying results.
func (o RankOutput) Message() string {
	switch {
	case o.NoEmbeddings:
		return "No publications with embeddings found"
	case o.Considered == 0 && len(o.Mismatched) > 0:
		return "No publications with embeddings matching the query dimension"
	case len(o.Results) == 0:
		return "No publications matched the similarity threshold"
	case len(o.Results) == 1:
		return "Found 1 semantically similar publication"
	default:
		return fmt.Sprintf("Found %d semantically similar publications", len(o.Results))
	}
}
