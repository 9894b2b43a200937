// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dashboard composes ranking and graph building over one corpus
// snapshot. The two branches share no mutable state and run concurrently.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-dashboard/internal/graph"
	"github.com/pdiddy/research-dashboard/internal/logger"
	"github.com/pdiddy/research-dashboard/internal/rank"
	"github.com/pdiddy/research-dashboard/pkg/types"
)

// ErrCorpusEmpty is returned when the snapshot holds no records at all.
var ErrCorpusEmpty = errors.New("corpus is empty")

// Input is one dashboard request.
type Input struct {
	// Corpus is the snapshot both branches read. It is not modified.
	Corpus []types.PublicationRecord

	// QueryVector is the embedded query. When empty only the graph is built.
	QueryVector []float64

	// Query is the free-text query used for explanations.
	Query string

	RankOptions   rank.Options
	ExplainConfig types.ExplainConfig
	GraphConfig   types.GraphConfig

	Logger *zap.SugaredLogger
}

// Output holds the results of both branches.
type Output struct {
	// Ranked is false when no query vector was given.
	Ranked bool
	Rank   types.RankOutput

	Graph   *types.Graph
	Service *graph.Service
}

// Run ranks the corpus against the query and builds the knowledge graph
// concurrently. A dimension mismatch does not fail the run: the ranking
// of the remaining records is returned together with the joined mismatch
// errors.
func Run(ctx context.Context, in Input) (Output, error) {
	if len(in.Corpus) == 0 {
		return Output{}, ErrCorpusEmpty
	}
	log := logger.OrNop(in.Logger)

	var (
		out     Output
		rankErr error
	)
	g, gctx := errgroup.WithContext(ctx)

	if len(in.QueryVector) > 0 {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			opts := in.RankOptions
			if opts.Query == "" {
				opts.Query = in.Query
			}
			if opts.Explainer == nil {
				opts.Explainer = rank.NewExplainer(in.ExplainConfig)
			}
			res, err := rank.Rank(in.QueryVector, in.Corpus, opts)
			if err != nil && !errors.Is(err, rank.ErrDimensionMismatch) {
				return fmt.Errorf("ranking: %w", err)
			}
			out.Ranked = true
			out.Rank = res
			rankErr = err
			log.Infow("ranked corpus",
				"considered", res.Considered,
				"excluded", res.Excluded,
				"results", len(res.Results),
				"mismatched", len(res.Mismatched),
			)
			return nil
		})
	}

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		gr := graph.Build(in.Corpus, in.GraphConfig)
		out.Graph = gr
		out.Service = graph.NewService(gr)
		log.Infow("built graph",
			"publications", gr.CountKind(types.NodePublication),
			"keywords", gr.CountKind(types.NodeKeyword),
			"authors", gr.CountKind(types.NodeAuthor),
			"edges", len(gr.Edges),
		)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Output{}, err
	}
	return out, rankErr
}

// Similar ranks the corpus against the embedding of one publication.
func Similar(corpus []types.PublicationRecord, id string, opts rank.Options) (types.RankOutput, error) {
	if len(corpus) == 0 {
		return types.RankOutput{}, ErrCorpusEmpty
	}
	return rank.Similar(corpus, id, opts)
}
