// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"math"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

const (
	qualityAbstract  = 0.4
	qualityEmbedding = 0.3
	qualityKeywords  = 0.3
	keywordsForFull  = 5
)

// Quality scores how complete a record's metadata is, in [0, 1]: a real
// abstract contributes 0.4, an embedding 0.3, and keywords up to 0.3
// (full credit at five keywords).
func Quality(rec types.PublicationRecord) float64 {
	var q float64
	if rec.HasAbstract() {
		q += qualityAbstract
	}
	if rec.HasEmbedding() {
		q += qualityEmbedding
	}
	n := min(len(rec.Keywords), keywordsForFull)
	q += qualityKeywords * float64(n) / keywordsForFull
	return math.Min(q, 1)
}
