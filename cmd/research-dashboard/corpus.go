// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-dashboard/internal/corpus"
	"github.com/pdiddy/research-dashboard/internal/embed"
	"github.com/pdiddy/research-dashboard/internal/pmc"
	"github.com/pdiddy/research-dashboard/internal/secrets"
	"github.com/pdiddy/research-dashboard/pkg/types"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the local publication corpus (import, fetch, embed, export)",
	Long: `Corpus manages the local SQLite corpus of publication records. Import a
catalog, fetch metadata from PubMed Central, compute embeddings, and
export or inspect the result.`,
}

// --- import subcommand ---

var corpusImportCmd = &cobra.Command{
	Use:   "import <file...>",
	Short: "Import publications from a catalog CSV or a YAML/JSON record file",
	Long: `Import reads a publication catalog CSV (Title and Link columns) or a YAML
or JSON list of records and upserts them into the corpus. Catalog rows are
deduplicated by PMCID and normalized title. Metadata already stored for a
record is kept when the imported row leaves it empty.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCorpusImport,
}

func runCorpusImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var recs []types.PublicationRecord
	for _, path := range args {
		got, err := readRecords(path)
		if err != nil {
			return err
		}
		recs = append(recs, got...)
	}

	store, err := corpus.NewStore(cfg.Corpus)
	if err != nil {
		return err
	}
	defer store.Close()

	stored, err := store.Load(ctx)
	if err != nil {
		return err
	}
	summary, err := store.Upsert(ctx, corpus.Merge(stored, recs))
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d record(s): %d new, %d updated\n", len(recs), summary.Inserted, summary.Updated)
	return nil
}

func readRecords(path string) ([]types.PublicationRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		recs, summary, err := corpus.ReadCatalogCSV(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("%s: %d row(s) parsed, %d duplicate(s), %d skipped\n",
			path, summary.Parsed, summary.Duplicates, summary.Skipped)
		return recs, nil
	case ".yaml", ".yml", ".json":
		recs, err := corpus.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for i := range recs {
			if recs[i].ID == "" {
				recs[i].ID = corpus.DeriveID(recs[i])
			}
		}
		return recs, nil
	default:
		return nil, fmt.Errorf("%s: unsupported file type: use .csv, .yaml, or .json", path)
	}
}

// --- fetch subcommand ---

var corpusFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch authors, year, and abstracts from PubMed Central",
	Long: `Fetch looks up records that have a PMCID in the NCBI esummary service, in
chunks of 10 with a per-chunk deadline and retries on rate limiting.
Chunks that fail are filled with placeholder metadata and the run
continues. Use --all to refetch records that already have an abstract.`,
	RunE: runCorpusFetch,
}

func runCorpusFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	all, _ := cmd.Flags().GetBool("all")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := corpus.NewStore(cfg.Corpus)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.Load(ctx)
	if err != nil {
		return err
	}

	var todo []types.PublicationRecord
	var ids []string
	for _, r := range recs {
		if r.PMCID == "" || (!all && r.HasAbstract() && len(r.Authors) > 0) {
			continue
		}
		if limit > 0 && len(todo) == limit {
			break
		}
		todo = append(todo, r)
		ids = append(ids, r.PMCID)
	}
	if len(todo) == 0 {
		fmt.Println("Nothing to fetch.")
		return nil
	}

	f := &pmc.Fetcher{
		Client: &http.Client{Timeout: cfg.Fetch.Timeout},
		Config: cfg.Fetch,
		Topics: cfg.Topics,
		APIKey: loadedSecrets.Get(secrets.NCBIAPIKey),
		Logger: log,
	}
	meta, summary, fetchErr := f.FetchBatch(ctx, ids, os.Stdout)

	// Store whatever was fetched, even when the run was interrupted.
	updated := pmc.Apply(todo, meta)
	if _, err := store.Upsert(context.WithoutCancel(ctx), updated); err != nil {
		return err
	}
	if fetchErr != nil {
		return fetchErr
	}

	fmt.Printf("\nFetched %d, missing %d, failed %d (%d chunk(s))\n",
		summary.Fetched, summary.Missing, summary.Failed, summary.Chunks)
	return nil
}

// --- embed subcommand ---

var corpusEmbedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Compute embeddings for records that lack them",
	Long: `Embed computes an embedding of each record's title and abstract with the
configured provider chain and stores it. Records that already have an
embedding are skipped unless --force is given.`,
	RunE: runCorpusEmbed,
}

func runCorpusEmbed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	force, _ := cmd.Flags().GetBool("force")
	limit, _ := cmd.Flags().GetInt("limit")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = cfg.Embedding.Concurrency
	}

	chain, err := embedder()
	if err != nil {
		return err
	}
	src, closeFn, err := openSource(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	summary, err := embed.Reembed(ctx, src, chain, embed.ReembedOptions{
		Force:       force,
		Limit:       limit,
		Concurrency: concurrency,
		Logger:      log,
	}, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("\nEmbedded %d, skipped %d, failed %d\n", summary.Embedded, summary.Skipped, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed embedding", summary.Failed)
	}
	return nil
}

// --- export subcommand ---

var corpusExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the corpus to YAML or JSON",
	Long: `Export writes every stored record to corpus/index/export.yaml or
export.json.`,
	RunE: runCorpusExport,
}

func runCorpusExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := corpus.NewStore(cfg.Corpus)
	if err != nil {
		return err
	}
	defer store.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context())
	case "json":
		path, err = store.ExportJSON(cmd.Context())
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

// --- stats subcommand ---

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize abstract, embedding, and keyword coverage",
	RunE:  runCorpusStats,
}

func runCorpusStats(cmd *cobra.Command, args []string) error {
	recs, err := loadCorpus(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	st := corpus.ComputeStats(recs)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(os.Stdout, st)
	}

	fmt.Printf("Publications:    %d\n", st.Total)
	fmt.Printf("With abstract:   %d\n", st.WithAbstract)
	fmt.Printf("With keywords:   %d\n", st.WithKeywords)
	fmt.Printf("With embedding:  %d\n", st.WithEmbedding)

	dims := make([]int, 0, len(st.Dimensions))
	for d := range st.Dimensions {
		dims = append(dims, d)
	}
	sort.Ints(dims)
	for _, d := range dims {
		fmt.Printf("  %4d dims:      %d\n", d, st.Dimensions[d])
	}
	if len(dims) > 1 {
		fmt.Printf("Embeddings mix dimensions; queries use %d-dim vectors only.\n", st.DominantDimension())
	}
	return nil
}

// --- search subcommand ---

var corpusSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Full-text search over titles, abstracts, and keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCorpusSearch,
}

func runCorpusSearch(cmd *cobra.Command, args []string) error {
	maxResults, _ := cmd.Flags().GetInt("max-results")

	store, err := corpus.NewStore(cfg.Corpus)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.Search(cmd.Context(), strings.Join(args, " "), maxResults)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(os.Stdout, recs)
	}
	if len(recs) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-12s  %-60s  %s\n", "Rank", "ID", "Title", "Year")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for i, r := range recs {
		year := ""
		if r.Year != 0 {
			year = fmt.Sprint(r.Year)
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-12s  %-60s  %s\n", i+1, clip(r.ID, 12), clip(r.Title, 60), year)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(recs))
	return nil
}

func init() {
	corpusFetchCmd.Flags().Bool("all", false, "refetch records that already have metadata")
	corpusFetchCmd.Flags().Int("limit", 0, "maximum number of records to fetch (0 for all)")

	corpusEmbedCmd.Flags().Bool("force", false, "re-embed records that already have an embedding")
	corpusEmbedCmd.Flags().Int("limit", 0, "maximum number of records to embed (0 for all)")
	corpusEmbedCmd.Flags().Int("concurrency", 0, "parallel provider requests (default from config, 4)")
	addSourceFlags(corpusEmbedCmd)

	corpusExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	corpusStatsCmd.Flags().Bool("json", false, "output statistics as JSON")
	addSourceFlags(corpusStatsCmd)

	corpusSearchCmd.Flags().Int("max-results", 20, "maximum number of results")
	corpusSearchCmd.Flags().Bool("json", false, "output results as JSON")

	corpusCmd.AddCommand(corpusImportCmd)
	corpusCmd.AddCommand(corpusFetchCmd)
	corpusCmd.AddCommand(corpusEmbedCmd)
	corpusCmd.AddCommand(corpusExportCmd)
	corpusCmd.AddCommand(corpusStatsCmd)
	corpusCmd.AddCommand(corpusSearchCmd)

	rootCmd.AddCommand(corpusCmd)
}
