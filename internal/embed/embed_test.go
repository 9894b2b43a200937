// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/research-dashboard/internal/httputil"
	"github.com/pdiddy/research-dashboard/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

// --- mock provider ---

type mockProvider struct {
	name  string
	vec   []float64
	err   error
	calls int32
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Embed(_ context.Context, _ string) ([]float64, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.vec, m.err
}

// --- HuggingFace ---

func TestHuggingFaceEmbed(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []float64
	}{
		{"flat vector", `[0.1, 0.2, 0.3]`, []float64{0.1, 0.2, 0.3}},
		{"batch of one", `[[0.4, 0.5]]`, []float64{0.4, 0.5}},
		{"empty batch", `[]`, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got hfRequest
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/models/"+DefaultHuggingFaceModel, r.URL.Path)
				assert.Equal(t, "Bearer hf_key", r.Header.Get("Authorization"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			old := huggingFaceURL
			huggingFaceURL = ts.URL + "/models/"
			defer func() { huggingFaceURL = old }()

			h := &HuggingFace{Client: ts.Client(), APIKey: "hf_key"}
			vec, err := h.Embed(context.Background(), "bone loss")
			require.NoError(t, err)
			assert.Equal(t, tt.want, vec)
			assert.Equal(t, "bone loss", got.Inputs)
			assert.True(t, got.Options.WaitForModel)
		})
	}
}

func TestHuggingFaceErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading"}`))
	}))
	defer ts.Close()

	old := huggingFaceURL
	huggingFaceURL = ts.URL + "/"
	defer func() { huggingFaceURL = old }()

	_, err := (&HuggingFace{Client: ts.Client(), APIKey: "k"}).Embed(context.Background(), "x")
	var se *httputil.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)

	_, err = (&HuggingFace{}).Embed(context.Background(), "x")
	assert.ErrorIs(t, err, errNoKey)
}

// --- Cohere ---

func TestCohereEmbed(t *testing.T) {
	var got cohereRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer co_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(cohereResponse{Embeddings: [][]float64{{1, 2, 3}}})
	}))
	defer ts.Close()

	old := cohereURL
	cohereURL = ts.URL
	defer func() { cohereURL = old }()

	c := &Cohere{Client: ts.Client(), APIKey: "co_key"}
	vec, err := c.Embed(context.Background(), "radiation")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, vec)
	assert.Equal(t, []string{"radiation"}, got.Texts)
	assert.Equal(t, DefaultCohereModel, got.Model)
	assert.Equal(t, InputSearchQuery, got.InputType)
}

func TestCohereRetriesOnRateLimit(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"embeddings":[[0.5]]}`))
	}))
	defer ts.Close()

	old := cohereURL
	cohereURL = ts.URL
	defer func() { cohereURL = old }()

	vec, err := (&Cohere{Client: ts.Client(), APIKey: "k", MaxRetries: 2}).Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, vec)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// --- Chain ---

func TestChainFallsBack(t *testing.T) {
	first := &mockProvider{name: "a", err: errors.New("down")}
	second := &mockProvider{name: "b", vec: []float64{1, 0}}
	third := &mockProvider{name: "c", vec: []float64{0, 1}}
	c := &Chain{Providers: []Provider{first, second, third}, Logger: zaptest.NewLogger(t).Sugar()}

	vec, err := c.Embed(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, vec)
	assert.Equal(t, int32(0), atomic.LoadInt32(&third.calls))
	assert.Equal(t, "a+b+c", c.Name())
}

func TestChainAllFail(t *testing.T) {
	c := &Chain{Providers: []Provider{
		&mockProvider{name: "a", err: errors.New("down")},
		&mockProvider{name: "b"},
	}}
	_, err := c.Embed(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "a: down")
	assert.Contains(t, err.Error(), "b: empty vector")

	_, err = (&Chain{}).Embed(context.Background(), "q")
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func TestNewChainSkipsMissingKeys(t *testing.T) {
	cfg := types.EmbeddingConfig{CohereAPIKey: "co"}
	c := NewChain(cfg, nil)
	require.Len(t, c.Providers, 1)
	assert.Equal(t, "cohere", c.Providers[0].Name())

	cfg.HuggingFaceAPIKey = "hf"
	assert.Equal(t, "huggingface+cohere", NewChain(cfg, nil).Name())
}
