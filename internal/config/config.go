// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles the dashboard configuration from viper keys
// and an optional vocabulary file.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-dashboard/internal/pmc"
	"github.com/pdiddy/research-dashboard/pkg/types"
)

// Config is the resolved configuration for one CLI invocation.
type Config struct {
	types.DashboardConfig

	// Topics derives keywords from fetched titles.
	Topics []pmc.Topic
}

// Vocabulary overrides the term lists used by the explainer, the graph
// builder, and the metadata fetcher. Omitted lists keep their defaults.
type Vocabulary struct {
	DomainTerms        []types.DomainTerm `yaml:"domain_terms"`
	FallbackVocabulary []string           `yaml:"fallback_vocabulary"`
	Topics             []pmc.Topic        `yaml:"topics"`
}

// SetDefaults registers the default value of every key read by Load.
func SetDefaults(v *viper.Viper) {
	rk := types.RankConfig{Threshold: 0.3, Limit: 10}
	gr := types.DefaultGraphConfig()
	fe := types.DefaultFetchConfig()
	ex := types.DefaultExplainConfig()

	v.SetDefault("corpus.dir", "corpus")

	v.SetDefault("rank.threshold", rk.Threshold)
	v.SetDefault("rank.limit", rk.Limit)

	v.SetDefault("graph.max_publications", gr.MaxPublications)
	v.SetDefault("graph.max_keywords_per_publication", gr.MaxKeywordsPerPublication)
	v.SetDefault("graph.max_authors_per_publication", gr.MaxAuthorsPerPublication)
	v.SetDefault("graph.min_keyword_degree", gr.MinKeywordDegree)
	v.SetDefault("graph.min_author_degree", gr.MinAuthorDegree)
	v.SetDefault("graph.max_keyword_nodes", gr.MaxKeywordNodes)
	v.SetDefault("graph.max_author_nodes", gr.MaxAuthorNodes)
	v.SetDefault("graph.min_keyword_cooccurrence", gr.MinKeywordCooccurrence)
	v.SetDefault("graph.weight_scale", gr.WeightScale)
	v.SetDefault("graph.weight_cap", gr.WeightCap)
	v.SetDefault("graph.publication_weight", gr.PublicationWeight)

	v.SetDefault("explain.separator", ex.Separator)

	v.SetDefault("embedding.timeout", "30s")
	v.SetDefault("embedding.user_agent", fe.UserAgent)
	v.SetDefault("embedding.max_retries", 3)
	v.SetDefault("embedding.concurrency", 4)

	v.SetDefault("fetch.timeout", fe.Timeout)
	v.SetDefault("fetch.user_agent", fe.UserAgent)
	v.SetDefault("fetch.chunk_size", fe.ChunkSize)
	v.SetDefault("fetch.chunk_timeout", fe.ChunkTimeout)
	v.SetDefault("fetch.max_retries", fe.MaxRetries)
	v.SetDefault("fetch.backoff_base", fe.BackoffBase)
	v.SetDefault("fetch.chunk_delay", fe.ChunkDelay)
	v.SetDefault("fetch.slow_chunk_delay", fe.SlowChunkDelay)
	v.SetDefault("fetch.slow_after", fe.SlowAfter)
}

// Load reads the dashboard configuration from v. When the "vocabulary"
// key names a file, its lists replace the built-in vocabularies.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{Topics: pmc.DefaultTopics()}
	cfg.Corpus = types.CorpusConfig{
		Dir:         v.GetString("corpus.dir"),
		DatabaseURL: v.GetString("corpus.database_url"),
	}
	cfg.Rank = types.RankConfig{
		Threshold: v.GetFloat64("rank.threshold"),
		Limit:     v.GetInt("rank.limit"),
	}
	cfg.Explain = types.DefaultExplainConfig()
	cfg.Explain.Separator = v.GetString("explain.separator")

	cfg.Graph = types.DefaultGraphConfig()
	cfg.Graph.MaxPublications = v.GetInt("graph.max_publications")
	cfg.Graph.MaxKeywordsPerPublication = v.GetInt("graph.max_keywords_per_publication")
	cfg.Graph.MaxAuthorsPerPublication = v.GetInt("graph.max_authors_per_publication")
	cfg.Graph.MinKeywordDegree = v.GetInt("graph.min_keyword_degree")
	cfg.Graph.MinAuthorDegree = v.GetInt("graph.min_author_degree")
	cfg.Graph.MaxKeywordNodes = v.GetInt("graph.max_keyword_nodes")
	cfg.Graph.MaxAuthorNodes = v.GetInt("graph.max_author_nodes")
	cfg.Graph.MinKeywordCooccurrence = v.GetInt("graph.min_keyword_cooccurrence")
	cfg.Graph.WeightScale = v.GetFloat64("graph.weight_scale")
	cfg.Graph.WeightCap = v.GetFloat64("graph.weight_cap")
	cfg.Graph.PublicationWeight = v.GetFloat64("graph.publication_weight")

	cfg.Embedding = types.EmbeddingConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   v.GetDuration("embedding.timeout"),
			UserAgent: v.GetString("embedding.user_agent"),
		},
		HuggingFaceModel: v.GetString("embedding.huggingface_model"),
		CohereModel:      v.GetString("embedding.cohere_model"),
		MaxRetries:       v.GetInt("embedding.max_retries"),
		Concurrency:      v.GetInt("embedding.concurrency"),
	}

	cfg.Fetch = types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   v.GetDuration("fetch.timeout"),
			UserAgent: v.GetString("fetch.user_agent"),
		},
		ChunkSize:      v.GetInt("fetch.chunk_size"),
		ChunkTimeout:   v.GetDuration("fetch.chunk_timeout"),
		MaxRetries:     v.GetInt("fetch.max_retries"),
		BackoffBase:    v.GetDuration("fetch.backoff_base"),
		ChunkDelay:     v.GetDuration("fetch.chunk_delay"),
		SlowChunkDelay: v.GetDuration("fetch.slow_chunk_delay"),
		SlowAfter:      v.GetInt("fetch.slow_after"),
	}

	if path := v.GetString("vocabulary"); path != "" {
		voc, err := LoadVocabulary(path)
		if err != nil {
			return Config{}, err
		}
		voc.apply(&cfg)
	}
	return cfg, nil
}

// LoadVocabulary reads a YAML vocabulary file.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}
	var voc Vocabulary
	if err := yaml.Unmarshal(data, &voc); err != nil {
		return Vocabulary{}, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}
	return voc, nil
}

func (voc Vocabulary) apply(cfg *Config) {
	if voc.DomainTerms != nil {
		cfg.Explain.DomainTerms = voc.DomainTerms
	}
	if voc.FallbackVocabulary != nil {
		cfg.Graph.FallbackVocabulary = voc.FallbackVocabulary
	}
	if voc.Topics != nil {
		cfg.Topics = voc.Topics
	}
}
