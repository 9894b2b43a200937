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

// huggingFaceURL is the inference endpoint prefix. Tests override it.
var huggingFaceURL = "https://api-inference.huggingface.co/models/"

// DefaultHuggingFaceModel produces 384-dimensional sentence embeddings.
const DefaultHuggingFaceModel = "sentence-transformers/all-MiniLM-L6-v2"

// HuggingFace calls the hosted feature-extraction pipeline.
type HuggingFace struct {
	Client     *http.Client
	APIKey     string
	Model      string
	MaxRetries int
	UserAgent  string
}

func (h *HuggingFace) Name() string { return "huggingface" }

type hfRequest struct {
	Inputs  string    `json:"inputs"`
	Options hfOptions `json:"options"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// Embed returns the sentence embedding of text.
func (h *HuggingFace) Embed(ctx context.Context, text string) ([]float64, error) {
	if h.APIKey == "" {
		return nil, errNoKey
	}
	model := h.Model
	if model == "" {
		model = DefaultHuggingFaceModel
	}

	body, err := json.Marshal(hfRequest{Inputs: text, Options: hfOptions{WaitForModel: true}})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, huggingFaceURL+model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client(h.Client), req, h.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("calling inference API: %w", err)
	}
	defer resp.Body.Close()
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return decodeFeatures(raw)
}

// decodeFeatures accepts a flat vector or a batch of one vector.
func decodeFeatures(raw json.RawMessage) ([]float64, error) {
	var flat []float64
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}
	var batch [][]float64
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("unexpected response shape: %w", err)
	}
	if len(batch) == 0 {
		return nil, nil
	}
	return batch[0], nil
}

func client(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}
