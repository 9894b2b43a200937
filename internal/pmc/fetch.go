// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pmc retrieves publication metadata from the NCBI E-utilities
// esummary service for PubMed Central identifiers.
//
// Identifiers are fetched in fixed-size chunks. Each chunk has its own
// deadline and retry budget; a chunk that cannot be fetched is filled with
// placeholder metadata and the remaining chunks still run.
package pmc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-dashboard/internal/httputil"
	"github.com/pdiddy/research-dashboard/internal/logger"
	"github.com/pdiddy/research-dashboard/pkg/types"
)

// esummaryURL is the E-utilities summary endpoint. Tests override it.
var esummaryURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"

const maxAuthors = 3

// Metadata is the summary of one publication.
type Metadata struct {
	Title    string
	Authors  []string
	EtAl     bool
	Year     int
	Keywords []string
	Abstract string

	// Placeholder is set when the record could not be fetched and the
	// fields hold fallback values.
	Placeholder bool
}

// AuthorsDisplay joins the authors for display, with "et al." when the
// list was truncated.
func (m Metadata) AuthorsDisplay() string {
	if len(m.Authors) == 0 {
		return types.AuthorsUnavailable
	}
	s := strings.Join(m.Authors, ", ")
	if m.EtAl {
		s += ", et al."
	}
	return s
}

func placeholder(abstract string) Metadata {
	return Metadata{Abstract: abstract, Placeholder: true}
}

// FetchSummary holds counts from a batch fetch.
type FetchSummary struct {
	Chunks  int
	Fetched int
	Missing int
	Failed  int
}

// Fetcher retrieves metadata in chunks.
type Fetcher struct {
	Client *http.Client
	Config types.FetchConfig

	// Topics derives keywords from titles. Nil means DefaultTopics.
	Topics []Topic

	// APIKey raises the NCBI rate limit when set.
	APIKey string

	Logger *zap.SugaredLogger
}

// FetchBatch fetches metadata for pmcids (with or without the "PMC"
// prefix), keyed by the "PMC"-prefixed identifier. Every requested
// identifier appears in the result; failures yield placeholders. Progress
// lines go to w. The error is non-nil only when ctx ends, in which case
// the map holds the chunks completed so far.
func (f *Fetcher) FetchBatch(ctx context.Context, pmcids []string, w io.Writer) (map[string]Metadata, FetchSummary, error) {
	cfg := f.Config.WithDefaults()
	log := logger.OrNop(f.Logger)
	if w == nil {
		w = io.Discard
	}

	ids := normalizeIDs(pmcids)
	out := make(map[string]Metadata, len(ids))
	var summary FetchSummary

	chunks := chunk(ids, cfg.ChunkSize)
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return out, summary, err
		}
		summary.Chunks++

		got, err := f.fetchChunk(ctx, c, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return out, summary, ctx.Err()
			}
			abstract := types.AbstractTemporary
			var se *httputil.StatusError
			if errors.As(err, &se) && se.StatusCode != http.StatusTooManyRequests {
				abstract = types.AbstractNotFound
			}
			log.Warnw("chunk failed", "chunk", i+1, "ids", len(c), "error", err)
			fmt.Fprintf(w, "failed  chunk %d/%d: %v\n", i+1, len(chunks), err)
			for _, id := range c {
				out[id] = placeholder(abstract)
			}
			summary.Failed += len(c)
		} else {
			for _, id := range c {
				m, ok := got[id]
				if !ok {
					m = placeholder(types.AbstractUnavailable)
					summary.Missing++
				} else {
					summary.Fetched++
				}
				out[id] = m
			}
			fmt.Fprintf(w, "fetched chunk %d/%d (%d records)\n", i+1, len(chunks), len(got))
		}

		if i < len(chunks)-1 {
			delay := cfg.ChunkDelay
			if i >= cfg.SlowAfter {
				delay = cfg.SlowChunkDelay
			}
			if err := sleep(ctx, delay); err != nil {
				return out, summary, err
			}
		}
	}
	return out, summary, nil
}

type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type article struct {
	Title   string `json:"title"`
	PubDate string `json:"pubdate"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Abstract string `json:"abstract"`
	Snippet  string `json:"snippet"`
	Error    string `json:"error"`
}

var yearPattern = regexp.MustCompile(`\d{4}`)

// fetchChunk requests one chunk within its own deadline, including
// retries on HTTP 429.
func (f *Fetcher) fetchChunk(ctx context.Context, ids []string, cfg types.FetchConfig) (map[string]Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ChunkTimeout)
	defer cancel()

	numeric := make([]string, len(ids))
	for i, id := range ids {
		numeric[i] = strings.TrimPrefix(id, "PMC")
	}
	q := url.Values{}
	q.Set("db", "pmc")
	q.Set("id", strings.Join(numeric, ","))
	q.Set("retmode", "json")
	if f.APIKey != "" {
		q.Set("api_key", f.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, esummaryURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	resp, err := httputil.DoWithPolicy(ctx, client, req, httputil.Policy{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.BackoffBase,
		Logger:     f.Logger,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}

	var body esummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding esummary: %w", err)
	}

	topics := f.Topics
	if topics == nil {
		topics = DefaultTopics()
	}

	out := make(map[string]Metadata, len(ids))
	for i, id := range ids {
		raw, ok := body.Result[numeric[i]]
		if !ok {
			continue
		}
		var a article
		if err := json.Unmarshal(raw, &a); err != nil || a.Error != "" {
			continue
		}
		out[id] = a.metadata(topics)
	}
	return out, nil
}

func (a article) metadata(topics []Topic) Metadata {
	m := Metadata{
		Title:    strings.TrimSpace(a.Title),
		Keywords: ExtractKeywords(a.Title, topics),
		Abstract: types.AbstractUnavailable,
		EtAl:     len(a.Authors) > maxAuthors,
	}
	for i, au := range a.Authors {
		if i == maxAuthors {
			break
		}
		if name := strings.TrimSpace(au.Name); name != "" {
			m.Authors = append(m.Authors, name)
		}
	}
	if y := yearPattern.FindString(a.PubDate); y != "" {
		m.Year, _ = strconv.Atoi(y)
	}
	switch {
	case strings.TrimSpace(a.Abstract) != "":
		m.Abstract = strings.TrimSpace(a.Abstract)
	case strings.TrimSpace(a.Snippet) != "":
		m.Abstract = strings.TrimSpace(a.Snippet)
	}
	return m
}

// normalizeIDs adds the "PMC" prefix, drops blanks, and removes repeats.
func normalizeIDs(pmcids []string) []string {
	seen := make(map[string]bool, len(pmcids))
	var out []string
	for _, id := range pmcids {
		id = strings.ToUpper(strings.TrimSpace(id))
		if id == "" || id == "PMC" {
			continue
		}
		if !strings.HasPrefix(id, "PMC") {
			id = "PMC" + id
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
