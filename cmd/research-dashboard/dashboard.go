// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-dashboard/internal/corpus"
	"github.com/pdiddy/research-dashboard/internal/dashboard"
	"github.com/pdiddy/research-dashboard/internal/graph"
	"github.com/pdiddy/research-dashboard/internal/rank"
	"github.com/pdiddy/research-dashboard/pkg/types"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [query]",
	Short: "Rank the corpus and build the graph in one pass",
	Long: `Dashboard loads one corpus snapshot, then ranks it against the query and
builds the knowledge graph concurrently. Without a query only the corpus
overview and the graph are produced.`,
	RunE: runDashboard,
}

func init() {
	addRankFlags(dashboardCmd)
	dashboardCmd.Flags().String("graph-out", "", "also write the graph JSON to this file")
	dashboardCmd.Flags().Bool("json", false, "output ranking and graph as one JSON document")
	addSourceFlags(dashboardCmd)

	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.TrimSpace(strings.Join(args, " "))

	var vec []float64
	if query != "" {
		chain, err := embedder()
		if err != nil {
			return err
		}
		if vec, err = chain.Embed(ctx, query); err != nil {
			return err
		}
	}

	recs, err := loadCorpus(ctx, cmd)
	if err != nil {
		return err
	}

	out, err := dashboard.Run(ctx, dashboard.Input{
		Corpus:        recs,
		QueryVector:   vec,
		Query:         query,
		RankOptions:   rankOptions(cmd),
		ExplainConfig: cfg.Explain,
		GraphConfig:   cfg.Graph,
		Logger:        log,
	})
	if err != nil && !errors.Is(err, rank.ErrDimensionMismatch) {
		return err
	}
	if err != nil {
		log.Warnw("some embeddings were skipped", "error", err)
	}

	if path, _ := cmd.Flags().GetString("graph-out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		werr := graph.WriteJSON(f, out.Graph)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return werr
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		doc := struct {
			Query string            `json:"query,omitempty"`
			Rank  *types.RankOutput `json:"rank,omitempty"`
			Graph *types.Graph      `json:"graph"`
		}{Query: query, Graph: out.Graph}
		if out.Ranked {
			doc.Rank = &out.Rank
		}
		return writeJSON(os.Stdout, doc)
	}

	st := corpus.ComputeStats(recs)
	fmt.Printf("Publications: %d  (abstracts %d, embeddings %d, keywords %d)\n",
		st.Total, st.WithAbstract, st.WithEmbedding, st.WithKeywords)
	fmt.Printf("Graph: %d publications, %d keywords, %d authors, %d links\n\n",
		out.Graph.CountKind(types.NodePublication),
		out.Graph.CountKind(types.NodeKeyword),
		out.Graph.CountKind(types.NodeAuthor),
		len(out.Graph.Edges))

	if out.Ranked {
		printRanking(out.Rank)
	}
	return nil
}
