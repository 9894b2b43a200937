// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-dashboard/internal/dashboard"
	"github.com/pdiddy/research-dashboard/internal/rank"
)

var rankCmd = &cobra.Command{
	Use:   "rank <query>",
	Short: "Rank publications by semantic similarity to a query",
	Long: `Rank embeds the query with the configured provider (HuggingFace, then
Cohere) and orders the corpus by cosine similarity. Results below the
threshold are dropped and each result carries a relevance explanation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRank,
}

var similarCmd = &cobra.Command{
	Use:   "similar <publication-id>",
	Short: "List publications similar to one in the corpus",
	Long: `Similar ranks the rest of the corpus against the stored embedding of the
given publication. No embedding provider is needed.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	for _, c := range []*cobra.Command{rankCmd, similarCmd} {
		addRankFlags(c)
		c.Flags().Bool("json", false, "output results as JSON")
		addSourceFlags(c)
		rootCmd.AddCommand(c)
	}
}

// addRankFlags registers the threshold and limit overrides.
func addRankFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("threshold", rank.DefaultThreshold, "minimum similarity in [-1, 1] (default from config)")
	cmd.Flags().Int("limit", rank.DefaultLimit, "maximum number of results (default from config)")
}

// rankOptions merges explicitly set command flags over the configured
// ranking settings.
func rankOptions(cmd *cobra.Command) rank.Options {
	opts := rank.OptionsFromConfig(cfg.Rank)
	if cmd.Flags().Changed("threshold") {
		opts.Threshold, _ = cmd.Flags().GetFloat64("threshold")
	}
	if cmd.Flags().Changed("limit") {
		opts.Limit, _ = cmd.Flags().GetInt("limit")
	}
	return opts
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	chain, err := embedder()
	if err != nil {
		return err
	}
	vec, err := chain.Embed(ctx, query)
	if err != nil {
		return err
	}

	recs, err := loadCorpus(ctx, cmd)
	if err != nil {
		return err
	}

	opts := rankOptions(cmd)
	opts.Query = query
	opts.Explainer = rank.NewExplainer(cfg.Explain)

	out, err := rank.Rank(vec, recs, opts)
	if err != nil && !errors.Is(err, rank.ErrDimensionMismatch) {
		return err
	}
	if err != nil {
		log.Warnw("some embeddings were skipped", "error", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(os.Stdout, out)
	}
	printRanking(out)
	return nil
}

func runSimilar(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	recs, err := loadCorpus(ctx, cmd)
	if err != nil {
		return err
	}

	out, err := dashboard.Similar(recs, args[0], rankOptions(cmd))
	if err != nil && !errors.Is(err, rank.ErrDimensionMismatch) {
		return fmt.Errorf("similar to %s: %w", args[0], err)
	}
	if err != nil {
		log.Warnw("some embeddings were skipped", "error", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(os.Stdout, out)
	}
	printRanking(out)
	return nil
}
