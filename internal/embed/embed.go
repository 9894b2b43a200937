// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed turns text into embedding vectors through hosted
// inference APIs. Providers are tried in order by a Chain; when every
// provider fails the caller receives ErrEmbeddingUnavailable and decides how
// to degrade.
package embed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-dashboard/internal/logger"
	"github.com/pdiddy/research-dashboard/pkg/types"
)

// ErrEmbeddingUnavailable reports that no provider produced a vector.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// errNoKey is returned by providers configured without credentials.
var errNoKey = errors.New("no API key configured")

// Provider embeds one text.
type Provider interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Chain tries each provider in order and returns the first vector.
type Chain struct {
	Providers []Provider
	Logger    *zap.SugaredLogger
}

// Name lists the chained providers.
func (c *Chain) Name() string {
	names := make([]string, len(c.Providers))
	for i, p := range c.Providers {
		names[i] = p.Name()
	}
	return strings.Join(names, "+")
}

// Embed returns the first non-empty vector produced by the providers. When
// all fail the returned error wraps ErrEmbeddingUnavailable and each
// provider's failure.
func (c *Chain) Embed(ctx context.Context, text string) ([]float64, error) {
	log := logger.OrNop(c.Logger)
	errs := []error{ErrEmbeddingUnavailable}
	for _, p := range c.Providers {
		vec, err := p.Embed(ctx, text)
		if err == nil && len(vec) == 0 {
			err = errors.New("empty vector")
		}
		if err == nil {
			return vec, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warnw("embedding provider failed", "provider", p.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return nil, errors.Join(errs...)
}

// NewChain builds the default provider order from cfg: HuggingFace, then
// Cohere. Providers without an API key are left out.
func NewChain(cfg types.EmbeddingConfig, log *zap.SugaredLogger) *Chain {
	client := &http.Client{Timeout: cfg.Timeout}
	c := &Chain{Logger: log}
	if cfg.HuggingFaceAPIKey != "" {
		c.Providers = append(c.Providers, &HuggingFace{
			Client:     client,
			APIKey:     cfg.HuggingFaceAPIKey,
			Model:      cfg.HuggingFaceModel,
			MaxRetries: cfg.MaxRetries,
			UserAgent:  cfg.UserAgent,
		})
	}
	if cfg.CohereAPIKey != "" {
		c.Providers = append(c.Providers, &Cohere{
			Client:     client,
			APIKey:     cfg.CohereAPIKey,
			Model:      cfg.CohereModel,
			MaxRetries: cfg.MaxRetries,
			UserAgent:  cfg.UserAgent,
		})
	}
	return c
}
