// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"strings"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

const defaultSeparator = " • "

// Score bucket phrases, highest band first.
const (
	PhraseHighly      = "Highly relevant - strong semantic match"
	PhraseVery        = "Very relevant - good semantic match"
	PhraseModerately  = "Moderately relevant - some semantic overlap"
	PhrasePotentially = "Potentially relevant - limited semantic match"
)

// Lexical overlap fragments.
const (
	FragmentTitle    = "Query appears in title"
	FragmentAbstract = "Query appears in abstract"
	FragmentKeywords = "Query matches keywords"
	relatedPrefix    = "Contains related term: "
)

// Explainer builds relevance explanations from score bands, lexical
// overlap between query and record, and a domain-term vocabulary.
type Explainer struct {
	terms []types.DomainTerm
	sep   string
}

// NewExplainer returns an Explainer for the given vocabulary. Terms are
// matched case-insensitively.
func NewExplainer(cfg types.ExplainConfig) *Explainer {
	e := &Explainer{sep: cfg.Separator}
	if e.sep == "" {
		e.sep = defaultSeparator
	}
	for _, dt := range cfg.DomainTerms {
		term := strings.ToLower(strings.TrimSpace(dt.Term))
		if term == "" {
			continue
		}
		related := make([]string, 0, len(dt.Related))
		for _, r := range dt.Related {
			if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
				related = append(related, r)
			}
		}
		e.terms = append(e.terms, types.DomainTerm{Term: term, Related: related})
	}
	return e
}

// Bucket returns the score band phrase: above 0.8 highly, above 0.6 very,
// above 0.4 moderately, otherwise potentially relevant.
func Bucket(score float64) string {
	switch {
	case score > 0.8:
		return PhraseHighly
	case score > 0.6:
		return PhraseVery
	case score > 0.4:
		return PhraseModerately
	default:
		return PhrasePotentially
	}
}

// Explain returns the explanation for rec scored against query. Fragments
// appear in a fixed order: score band, title, abstract, and keyword
// overlap, then one related-term fragment per umbrella term found in the
// query.
func (e *Explainer) Explain(rec types.PublicationRecord, score float64, query string) string {
	fragments := []string{Bucket(score)}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return fragments[0]
	}

	title := strings.ToLower(rec.Title)
	abstract := strings.ToLower(rec.Abstract)
	keywords := strings.ToLower(strings.Join(rec.Keywords, " "))

	if strings.Contains(title, q) {
		fragments = append(fragments, FragmentTitle)
	}
	if strings.Contains(abstract, q) {
		fragments = append(fragments, FragmentAbstract)
	}
	if strings.Contains(keywords, q) {
		fragments = append(fragments, FragmentKeywords)
	}

	for _, dt := range e.terms {
		if !strings.Contains(q, dt.Term) {
			continue
		}
		for _, rel := range dt.Related {
			if strings.Contains(title, rel) || strings.Contains(abstract, rel) || strings.Contains(keywords, rel) {
				fragments = append(fragments, relatedPrefix+rel)
				break
			}
		}
	}

	return strings.Join(fragments, e.sep)
}
