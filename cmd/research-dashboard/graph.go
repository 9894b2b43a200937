// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-dashboard/internal/graph"
	"github.com/pdiddy/research-dashboard/pkg/types"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build the publication, keyword, and author graph",
	Long: `Graph builds the knowledge graph from the corpus and writes it as JSON
(the force-graph node/link shape) or YAML. With --node it prints one node,
its neighbors, and the publications it links to instead.

Use --input to query a graph written by an earlier run instead of
rebuilding it.`,
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().String("format", "json", "output format: json or yaml")
	graphCmd.Flags().StringP("output", "o", "", "write the graph to this file instead of stdout")
	graphCmd.Flags().String("input", "", "read a graph JSON file instead of building one")
	graphCmd.Flags().String("node", "", "show the node with this ID and its neighbors")
	graphCmd.Flags().Int("neighbors", 10, "maximum neighbors shown with --node (0 for all)")
	addSourceFlags(graphCmd)

	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	g, err := graphFromFlags(cmd)
	if err != nil {
		return err
	}

	if id, _ := cmd.Flags().GetString("node"); id != "" {
		limit, _ := cmd.Flags().GetInt("neighbors")
		return printNode(os.Stdout, graph.NewService(g), id, limit)
	}

	w := io.Writer(os.Stdout)
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json", "":
		err = graph.WriteJSON(w, g)
	case "yaml":
		err = graph.WriteYAML(w, g)
	default:
		return fmt.Errorf("unsupported format %q: use json or yaml", format)
	}
	if err != nil {
		return err
	}
	log.Infow("wrote graph",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"keywords", g.CountKind(types.NodeKeyword),
		"authors", g.CountKind(types.NodeAuthor),
	)
	return nil
}

func graphFromFlags(cmd *cobra.Command) (*types.Graph, error) {
	if path, _ := cmd.Flags().GetString("input"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening graph: %w", err)
		}
		defer f.Close()
		return graph.ReadJSON(f)
	}

	recs, err := loadCorpus(cmd.Context(), cmd)
	if err != nil {
		return nil, err
	}
	return graph.Build(recs, cfg.Graph), nil
}

// printNode prints one node, its neighbors, and, for keyword and author
// nodes, the publications that reference it.
func printNode(w io.Writer, svc *graph.Service, id string, limit int) error {
	node, ok := svc.Node(id)
	if !ok {
		return fmt.Errorf("node %q not found", id)
	}

	fmt.Fprintf(w, "%s  (%s, weight %.1f, degree %d)\n", node.Label, node.Kind, node.Weight, svc.Degree(id))
	if node.RecordID != "" {
		fmt.Fprintf(w, "record: %s\n", node.RecordID)
	}

	neighbors, more := svc.Neighbors(id, limit)
	fmt.Fprintf(w, "\nConnected to:\n")
	if len(neighbors) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, n := range neighbors {
		fmt.Fprintf(w, "  %-10s  %-28s  %s\n", n.Kind, clip(n.ID, 28), clip(n.Label, 60))
	}
	if more > 0 {
		fmt.Fprintf(w, "  ... and %d more\n", more)
	}

	if node.Kind == types.NodePublication {
		return nil
	}
	pubs, more := svc.RelatedPublications(id, 3)
	fmt.Fprintf(w, "\nRelated publications:\n")
	for _, p := range pubs {
		fmt.Fprintf(w, "  %s\n", clip(p.Label, 80))
	}
	if more > 0 {
		fmt.Fprintf(w, "  + %d more\n", more)
	}
	return nil
}
