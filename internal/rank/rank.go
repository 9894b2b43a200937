// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores corpus publications against a query embedding,
// orders them by cosine similarity, and explains each match.
//
// Ranking is a pure function of its inputs: it performs no I/O, holds no
// locks, and never mutates the corpus, so concurrent calls over a shared
// corpus snapshot are safe.
package rank

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

const (
	// DefaultThreshold is the minimum similarity kept by DefaultOptions.
	DefaultThreshold = 0.3

	// DefaultLimit is the result count used when Options.Limit is not positive.
	DefaultLimit = 10
)

var (
	// ErrDimensionMismatch reports an embedding whose length differs from
	// the query vector.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyQuery reports a missing query vector.
	ErrEmptyQuery = errors.New("query vector is empty")
)

// DimensionMismatchError identifies the corpus entry whose embedding could
// not be compared with the query.
type DimensionMismatchError struct {
	RecordID string
	Want     int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("record %s: embedding has %d dimensions, query has %d", e.RecordID, e.Got, e.Want)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// Options controls filtering, truncation, and explanation of results.
type Options struct {
	// Threshold is the minimum score kept.
	Threshold float64

	// Limit caps the number of results. Non-positive means DefaultLimit.
	Limit int

	// Query is the free-text query passed to the explainer.
	Query string

	// Explainer fills RankedResult.Explanation when set.
	Explainer *Explainer
}

// DefaultOptions returns options with the dashboard defaults.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, Limit: DefaultLimit}
}

// OptionsFromConfig converts a RankConfig into Options.
func OptionsFromConfig(cfg types.RankConfig) Options {
	return Options{Threshold: cfg.Threshold, Limit: cfg.Limit}
}

// CosineSimilarity returns dot(a,b) / (|a|·|b|). If either vector has zero
// norm, or the score is not finite because a component is NaN or Inf, the
// score is 0. Vectors of different length yield ErrDimensionMismatch.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	// Each vector is scaled by its largest component so the squared norms
	// cannot overflow or underflow.
	sa, sb := maxAbs(a), maxAbs(b)
	if sa == 0 || sb == 0 {
		return 0, nil
	}
	var dot, na, nb float64
	for i := range a {
		x, y := a[i]/sa, b[i]/sb
		dot += x * y
		na += x * x
		nb += y * y
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, nil
	}
	// Rounding can push parallel vectors slightly past ±1.
	return math.Max(-1, math.Min(1, s)), nil
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if ax := math.Abs(x); ax > m {
			m = ax
		}
	}
	return m
}

// Rank scores every corpus entry that carries an embedding, keeps scores at
// or above the threshold, and returns them in descending score order.
// Equal scores keep corpus order. Entries without an embedding are
// excluded and counted. An entry whose embedding has a different
// dimensionality is skipped with a DimensionMismatchError; the remaining
// entries are still ranked and the joined mismatch errors are returned
// alongside the output.
func Rank(query []float64, corpus []types.PublicationRecord, opts Options) (types.RankOutput, error) {
	if len(query) == 0 {
		return types.RankOutput{}, ErrEmptyQuery
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	type candidate struct {
		idx   int
		score float64
	}

	var (
		out        types.RankOutput
		candidates []candidate
		errs       []error
	)

	for i, rec := range corpus {
		if !rec.HasEmbedding() {
			out.Excluded++
			continue
		}
		if len(rec.Embedding) != len(query) {
			errs = append(errs, &DimensionMismatchError{RecordID: rec.ID, Want: len(query), Got: len(rec.Embedding)})
			out.Mismatched = append(out.Mismatched, rec.ID)
			continue
		}
		score, err := CosineSimilarity(query, rec.Embedding)
		if err != nil {
			return types.RankOutput{}, fmt.Errorf("scoring %s: %w", rec.ID, err)
		}
		out.Considered++
		if score >= opts.Threshold {
			candidates = append(candidates, candidate{idx: i, score: score})
		}
	}

	out.NoEmbeddings = out.Considered == 0 && len(out.Mismatched) == 0

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out.Results = make([]types.RankedResult, 0, len(candidates))
	for _, c := range candidates {
		rec := corpus[c.idx]
		r := types.RankedResult{
			PublicationID: rec.ID,
			Title:         rec.Title,
			Score:         c.score,
			Quality:       Quality(rec),
		}
		if opts.Explainer != nil {
			r.Explanation = opts.Explainer.Explain(rec, c.score, opts.Query)
		}
		out.Results = append(out.Results, r)
	}

	return out, errors.Join(errs...)
}
