// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-dashboard/internal/corpus"
	"github.com/pdiddy/research-dashboard/internal/embed"
	"github.com/pdiddy/research-dashboard/pkg/types"
)

// corpusSource is what the read and embed commands need from a corpus.
type corpusSource interface {
	corpus.Source
	embed.Store
}

// addSourceFlags registers the flag selecting the managed Postgres corpus.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("postgres", false, "read the managed Postgres corpus (database-url secret or corpus.database_url)")
}

// openSource opens the corpus selected by the --postgres flag. The
// returned function releases it.
func openSource(ctx context.Context, cmd *cobra.Command) (corpusSource, func() error, error) {
	usePostgres, _ := cmd.Flags().GetBool("postgres")
	if !usePostgres {
		store, err := corpus.NewStore(cfg.Corpus)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}

	if cfg.Corpus.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("--postgres requires a database URL: set the database-url secret or DATABASE_URL")
	}
	db, err := corpus.Open(ctx, cfg.Corpus.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	log.Debugw("using postgres corpus")
	return corpus.NewPostgresSource(db), db.Close, nil
}

// loadCorpus opens the selected corpus and loads every record.
func loadCorpus(ctx context.Context, cmd *cobra.Command) ([]types.PublicationRecord, error) {
	src, closeFn, err := openSource(ctx, cmd)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	recs, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	log.Debugw("loaded corpus", "records", len(recs))
	return recs, nil
}

// embedder returns the provider chain, or an error when no provider has
// credentials.
func embedder() (*embed.Chain, error) {
	chain := embed.NewChain(cfg.Embedding, log)
	if len(chain.Providers) == 0 {
		return nil, fmt.Errorf("%w: set the huggingface-api-key or cohere-api-key secret", embed.ErrEmbeddingUnavailable)
	}
	return chain, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRanking prints ranked results as a table followed by the status
// message.
func printRanking(out types.RankOutput) {
	if len(out.Results) > 0 {
		fmt.Fprintf(os.Stdout, "%-4s  %-6s  %-50s  %s\n", "Rank", "Score", "Title", "Why")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
		for i, r := range out.Results {
			fmt.Fprintf(os.Stdout, "%-4d  %-6.3f  %-50s  %s\n", i+1, r.Score, clip(r.Title, 50), r.Explanation)
		}
		fmt.Println()
	}
	fmt.Println(out.Message())
	if out.Excluded > 0 {
		fmt.Printf("%d publication(s) without embeddings were skipped\n", out.Excluded)
	}
	if len(out.Mismatched) > 0 {
		fmt.Printf("%d publication(s) have embeddings of a different dimension: %s\n",
			len(out.Mismatched), strings.Join(out.Mismatched, ", "))
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
