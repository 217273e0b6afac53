package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clauselens/clauselens/internal/clause"
	"github.com/clauselens/clauselens/internal/retriever"
	"github.com/clauselens/clauselens/internal/vectordb"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Search the indexed document directly",
	Long: `Searches the persisted index with a natural language query and prints
the matching sections. Queries naming a clause topic (termination,
payment, liability, ...) are expanded into topic variants.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().Int("limit", 5, "maximum number of results")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\nFalling back to lexical retrieval.\n", err)
		embedder = nil
	}
	index, err := vectordb.New(embedder, cfg.MinSimilarity, true)
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	dir := indexDir(cfg)
	if err := index.Load(ctx, dir); err != nil {
		return fmt.Errorf("loading index from %s: %w\nRun `clauselens ingest` first to build the index", dir, err)
	}

	ret := retriever.New(index)
	var results []vectordb.Result
	if topic := clause.DetectTopic(queryText); topic != "" {
		results, err = ret.SearchByTopic(ctx, topic, limit)
	} else {
		results, err = ret.Search(ctx, queryText, limit)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		return printQueryResultsJSON(results)
	}

	if len(results) == 0 {
		fmt.Println("No matching sections found.")
		return nil
	}
	printQueryResultsTable(results)
	return nil
}

type queryResultJSON struct {
	Rank       int      `json:"rank"`
	Similarity float64  `json:"similarity"`
	Source     string   `json:"source"`
	ChunkIndex int      `json:"chunk_index"`
	Clauses    []string `json:"clauses,omitempty"`
	Excerpt    string   `json:"excerpt"`
}

func printQueryResultsJSON(results []vectordb.Result) error {
	out := make([]queryResultJSON, 0, len(results))
	for i, r := range results {
		out = append(out, queryResultJSON{
			Rank:       i + 1,
			Similarity: r.Similarity,
			Source:     r.Chunk.Source,
			ChunkIndex: r.Chunk.Index,
			Clauses:    r.Chunk.PotentialClauses,
			Excerpt:    truncate(r.Chunk.Content, 200),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printQueryResultsTable(results []vectordb.Result) {
	fmt.Printf("Found %d result(s):\n\n", len(results))
	for i, r := range results {
		clauses := ""
		if len(r.Chunk.PotentialClauses) > 0 {
			clauses = fmt.Sprintf(" [%v]", r.Chunk.PotentialClauses)
		}
		fmt.Printf("  %d. [%.1f%%] %s#%d%s\n", i+1, r.Similarity*100, r.Chunk.Source, r.Chunk.Index, clauses)
		fmt.Printf("     %s\n\n", truncate(r.Chunk.Content, 160))
	}
}
