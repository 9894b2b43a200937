// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/research-dashboard/internal/httputil"
)

var cohereURL = "https://api.cohere.ai/v1/embed"

const (
	DefaultCohereModel = "embed-english-v3.0"

	// InputSearchQuery and InputSearchDocument select Cohere's query or
	// document embedding space.
	InputSearchQuery    = "search_query"
	InputSearchDocument = "search_document"
)

// Cohere calls the Cohere embed endpoint.
type Cohere struct {
	Client     *http.Client
	APIKey     string
	Model      string
	InputType  string
	MaxRetries int
	UserAgent  string
}

func (c *Cohere) Name() string { return "cohere" }

type cohereRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type cohereResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Embed returns the embedding of text.
func (c *Cohere) Embed(ctx context.Context, text string) ([]float64, error) {
	if c.APIKey == "" {
		return nil, errNoKey
	}
	in := cohereRequest{Texts: []string{text}, Model: c.Model, InputType: c.InputType}
	if in.Model == "" {
		in.Model = DefaultCohereModel
	}
	if in.InputType == "" {
		in.InputType = InputSearchQuery
	}

	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cohereURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client(c.Client), req, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("calling embed API: %w", err)
	}
	defer resp.Body.Close()
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}

	var out cohereResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(out.Embeddings) == 0 {
		return nil, nil
	}
	return out.Embeddings[0], nil
}
