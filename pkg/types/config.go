// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that call
// external services.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RankConfig holds settings for similarity ranking.
type RankConfig struct {
	// Threshold is the minimum cosine similarity kept (default 0.3).
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// Limit is the maximum number of results (default 10).
	Limit int `json:"limit" yaml:"limit"`
}

// DomainTerm maps an umbrella query term to related vocabulary used when
// explaining a match.
type DomainTerm struct {
	Term    string   `json:"term" yaml:"term"`
	Related []string `json:"related" yaml:"related"`
}

// ExplainConfig holds the vocabulary and formatting for relevance
// explanations.
type ExplainConfig struct {
	// DomainTerms is evaluated in order.
	DomainTerms []DomainTerm `json:"domain_terms" yaml:"domain_terms"`

	// Separator joins explanation fragments.
	Separator string `json:"separator" yaml:"separator"`
}

// DefaultExplainConfig returns the space-biology vocabulary used by the
// dashboard.
func DefaultExplainConfig() ExplainConfig {
	return ExplainConfig{
		DomainTerms: []DomainTerm{
			{Term: "space", Related: []string{"microgravity", "astronaut", "mission", "orbit", "spacecraft"}},
			{Term: "biology", Related: []string{"biological", "organism", "cell", "tissue", "physiology"}},
			{Term: "research", Related: []string{"study", "experiment", "investigation", "analysis"}},
			{Term: "health", Related: []string{"medical", "health", "disease", "treatment", "therapy"}},
		},
		Separator: " • ",
	}
}

// GraphConfig holds the limits and vocabulary for graph building.
type GraphConfig struct {
	// MaxPublications caps the corpus prefix turned into nodes (default 100).
	MaxPublications int `json:"max_publications" yaml:"max_publications"`

	// MaxKeywordsPerPublication caps keywords taken per publication (default 5).
	MaxKeywordsPerPublication int `json:"max_keywords_per_publication" yaml:"max_keywords_per_publication"`

	// MaxAuthorsPerPublication caps authors taken per publication (default 3).
	MaxAuthorsPerPublication int `json:"max_authors_per_publication" yaml:"max_authors_per_publication"`

	// MinKeywordDegree is the minimum number of referencing publications
	// for a keyword node (default 2).
	MinKeywordDegree int `json:"min_keyword_degree" yaml:"min_keyword_degree"`

	// MinAuthorDegree is the minimum number of publications for an author
	// node (default 2).
	MinAuthorDegree int `json:"min_author_degree" yaml:"min_author_degree"`

	// MaxKeywordNodes keeps the top keywords by reference count (default 40).
	MaxKeywordNodes int `json:"max_keyword_nodes" yaml:"max_keyword_nodes"`

	// MaxAuthorNodes keeps the top authors by reference count (default 30).
	MaxAuthorNodes int `json:"max_author_nodes" yaml:"max_author_nodes"`

	// MinKeywordCooccurrence is the number of shared publications needed
	// for a keyword-keyword edge (default 3).
	MinKeywordCooccurrence int `json:"min_keyword_cooccurrence" yaml:"min_keyword_cooccurrence"`

	// WeightScale multiplies the reference count of keyword and author
	// nodes (default 2.5).
	WeightScale float64 `json:"weight_scale" yaml:"weight_scale"`

	// WeightCap bounds keyword and author node weight (default 20).
	WeightCap float64 `json:"weight_cap" yaml:"weight_cap"`

	// PublicationWeight is the fixed weight of publication nodes (default 6).
	PublicationWeight float64 `json:"publication_weight" yaml:"publication_weight"`

	// FallbackVocabulary lists topic terms searched in titles of
	// publications without explicit keywords.
	FallbackVocabulary []string `json:"fallback_vocabulary" yaml:"fallback_vocabulary"`
}

// DefaultGraphConfig returns the graph settings used by the dashboard.
func DefaultGraphConfig() GraphConfig {
	return GraphConfig{
		MaxPublications:           100,
		MaxKeywordsPerPublication: 5,
		MaxAuthorsPerPublication:  3,
		MinKeywordDegree:          2,
		MinAuthorDegree:           2,
		MaxKeywordNodes:           40,
		MaxAuthorNodes:            30,
		MinKeywordCooccurrence:    3,
		WeightScale:               2.5,
		WeightCap:                 20,
		PublicationWeight:         6,
		FallbackVocabulary: []string{
			"microgravity", "radiation", "plant", "cell", "bone", "muscle", "immune",
			"space", "mars", "moon", "ISS", "astronaut", "growth", "development",
		},
	}
}

// WithDefaults returns a copy of c where unset or non-positive values are
// replaced by the defaults. A nil FallbackVocabulary is replaced; an
// explicitly empty one is kept.
func (c GraphConfig) WithDefaults() GraphConfig {
	d := DefaultGraphConfig()
	setInt := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	setInt(&c.MaxPublications, d.MaxPublications)
	setInt(&c.MaxKeywordsPerPublication, d.MaxKeywordsPerPublication)
	setInt(&c.MaxAuthorsPerPublication, d.MaxAuthorsPerPublication)
	setInt(&c.MinKeywordDegree, d.MinKeywordDegree)
	setInt(&c.MinAuthorDegree, d.MinAuthorDegree)
	setInt(&c.MaxKeywordNodes, d.MaxKeywordNodes)
	setInt(&c.MaxAuthorNodes, d.MaxAuthorNodes)
	setInt(&c.MinKeywordCooccurrence, d.MinKeywordCooccurrence)
	if c.WeightScale <= 0 {
		c.WeightScale = d.WeightScale
	}
	if c.WeightCap <= 0 {
		c.WeightCap = d.WeightCap
	}
	if c.PublicationWeight <= 0 {
		c.PublicationWeight = d.PublicationWeight
	}
	if c.FallbackVocabulary == nil {
		c.FallbackVocabulary = d.FallbackVocabulary
	}
	return c
}

// EmbeddingConfig holds settings for the embedding providers.
type EmbeddingConfig struct {
	HTTPConfig `yaml:",inline"`

	// HuggingFaceModel is the sentence-transformers model path.
	HuggingFaceModel string `json:"huggingface_model" yaml:"huggingface_model"`

	// HuggingFaceAPIKey authenticates against the inference API.
	HuggingFaceAPIKey string `json:"huggingface_api_key,omitempty" yaml:"huggingface_api_key,omitempty"`

	// CohereModel is the Cohere embed model name.
	CohereModel string `json:"cohere_model" yaml:"cohere_model"`

	// CohereAPIKey authenticates against the Cohere API.
	CohereAPIKey string `json:"cohere_api_key,omitempty" yaml:"cohere_api_key,omitempty"`

	// MaxRetries is the number of retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Concurrency bounds parallel requests when re-embedding (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// FetchConfig holds settings for batch metadata retrieval.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// ChunkSize is the number of identifiers per request (default 10).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// ChunkTimeout is the wall-clock limit for one chunk including
	// retries (default 8s).
	ChunkTimeout time.Duration `json:"chunk_timeout" yaml:"chunk_timeout"`

	// MaxRetries is the number of retries on HTTP 429 (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// BackoffBase is the first retry delay, doubled per attempt (default 1.5s).
	BackoffBase time.Duration `json:"backoff_base" yaml:"backoff_base"`

	// ChunkDelay is the pause between chunks (default 400ms).
	ChunkDelay time.Duration `json:"chunk_delay" yaml:"chunk_delay"`

	// SlowChunkDelay replaces ChunkDelay after SlowAfter chunks (default 600ms).
	SlowChunkDelay time.Duration `json:"slow_chunk_delay" yaml:"slow_chunk_delay"`

	// SlowAfter is the number of chunks sent at ChunkDelay (default 10).
	SlowAfter int `json:"slow_after" yaml:"slow_after"`
}

// DefaultFetchConfig returns the batch retrieval settings.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		HTTPConfig: HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "research-dashboard/0.1 (research tool)",
		},
		ChunkSize:      10,
		ChunkTimeout:   8 * time.Second,
		MaxRetries:     2,
		BackoffBase:    1500 * time.Millisecond,
		ChunkDelay:     400 * time.Millisecond,
		SlowChunkDelay: 600 * time.Millisecond,
		SlowAfter:      10,
	}
}

// CorpusConfig holds settings for the corpus store.
type CorpusConfig struct {
	// Dir is the base directory of the local corpus (contains index/).
	Dir string `json:"dir" yaml:"dir"`

	// DatabaseURL points at the managed Postgres corpus. Empty means the
	// local SQLite store is used.
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
}

// DashboardConfig groups all component configurations.
type DashboardConfig struct {
	Corpus    CorpusConfig    `json:"corpus" yaml:"corpus"`
	Rank      RankConfig      `json:"rank" yaml:"rank"`
	Explain   ExplainConfig   `json:"explain" yaml:"explain"`
	Graph     GraphConfig     `json:"graph" yaml:"graph"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	Fetch     FetchConfig     `json:"fetch" yaml:"fetch"`
}

// WithDefaults returns a copy of c with non-positive chunk size, timeout,
// retry, and backoff settings replaced by the defaults. Zero delays are
// kept and mean no pause between chunks.
func (c FetchConfig) WithDefaults() FetchConfig {
	d := DefaultFetchConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.ChunkTimeout <= 0 {
		c.ChunkTimeout = d.ChunkTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = d.BackoffBase
	}
	if c.SlowAfter <= 0 {
		c.SlowAfter = d.SlowAfter
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	return c
}
