// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"errors"
	"fmt"

	"github.com/pdiddy/research-dashboard/pkg/types"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrNoEmbedding    = errors.New("record has no embedding")
)

// Similar ranks the corpus against the embedding of the record with the
// given ID, leaving that record out of the results.
func Similar(corpus []types.PublicationRecord, id string, opts Options) (types.RankOutput, error) {
	idx := -1
	for i := range corpus {
		if corpus[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return types.RankOutput{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if !corpus[idx].HasEmbedding() {
		return types.RankOutput{}, fmt.Errorf("%w: %s", ErrNoEmbedding, id)
	}

	others := make([]types.PublicationRecord, 0, len(corpus)-1)
	others = append(others, corpus[:idx]...)
	others = append(others, corpus[idx+1:]...)

	return Rank(corpus[idx].Embedding, others, opts)
}
