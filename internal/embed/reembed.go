// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-dashboard/internal/logger"
	"github.com/pdiddy/research-dashboard/pkg/types"
)

const defaultConcurrency = 4

// Store is the corpus storage the re-embedder reads from and writes to.
type Store interface {
	Load(ctx context.Context) ([]types.PublicationRecord, error)
	SetEmbedding(ctx context.Context, id string, vec []float64) error
}

// ReembedOptions controls which records are embedded.
type ReembedOptions struct {
	// Force re-embeds records that already carry a vector.
	Force bool

	// Limit caps the number of records embedded. Zero means no cap.
	Limit int

	// Concurrency bounds parallel provider calls (default 4).
	Concurrency int

	Logger *zap.SugaredLogger
}

// ReembedSummary reports the outcome of a re-embedding run.
type ReembedSummary struct {
	Embedded int
	Skipped  int
	Failed   int
}

// Reembed computes embeddings from each record's title and abstract and
// stores them. A record that fails to embed is reported and left as is;
// the run continues with the remaining records. Progress lines go to w.
func Reembed(ctx context.Context, store Store, p Provider, opts ReembedOptions, w io.Writer) (ReembedSummary, error) {
	log := logger.OrNop(opts.Logger)
	if w == nil {
		w = io.Discard
	}

	records, err := store.Load(ctx)
	if err != nil {
		return ReembedSummary{}, fmt.Errorf("loading corpus: %w", err)
	}

	var (
		summary ReembedSummary
		todo    []types.PublicationRecord
	)
	for _, rec := range records {
		text := rec.EmbeddingText()
		if text == "" || (rec.HasEmbedding() && !opts.Force) {
			summary.Skipped++
			continue
		}
		if opts.Limit > 0 && len(todo) >= opts.Limit {
			summary.Skipped++
			continue
		}
		todo = append(todo, rec)
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, rec := range todo {
		i, rec := i, rec
		g.Go(func() error {
			vec, err := p.Embed(gctx, rec.EmbeddingText())
			if err == nil {
				err = store.SetEmbedding(gctx, rec.ID, vec)
			}

			mu.Lock()
			defer mu.Unlock()
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if err != nil {
				summary.Failed++
				log.Warnw("embedding failed", "id", rec.ID, "error", err)
				fmt.Fprintf(w, "failed   %s: %v\n", rec.ID, err)
				return nil
			}
			summary.Embedded++
			fmt.Fprintf(w, "embedded %s (%d dims) [%d/%d]\n", rec.ID, len(vec), i+1, len(todo))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, nil
}
