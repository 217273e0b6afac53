package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/clauselens/clauselens/internal/chunker"
	"github.com/clauselens/clauselens/internal/clause"
	"github.com/clauselens/clauselens/internal/extract"
	"github.com/clauselens/clauselens/internal/progress"
	"github.com/clauselens/clauselens/internal/vectordb"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files or globs...]",
	Short: "Chunk, tag and index legal documents",
	Long: `Reads the given documents (PDF or plain text; glob patterns with **
are supported), splits them into overlapping chunks, tags likely clause
types and builds the search index. The index is persisted under the
configured data directory for query, ask, chat, serve and mcp.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

// expandInputs resolves glob patterns into an ordered, de-duplicated
// file list.
func expandInputs(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})

	add := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			// Not a pattern: treat as a literal path so missing files
			// fail loudly below.
			matches = []string{pattern}
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", m, err)
			}
			if info.IsDir() {
				continue
			}
			add(m)
		}
	}
	return files, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matched")
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

	splitter := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	tagger := clause.NewTagger()

	reporter := progress.NewReporter()
	reporter.Start(len(files))

	var all []chunker.Chunk
	for _, path := range files {
		text, err := extract.FromFile(path)
		if err != nil {
			reporter.Finish(len(all))
			return err
		}
		chunks, err := splitter.Split(text, path)
		if err != nil {
			reporter.Finish(len(all))
			return fmt.Errorf("chunking %s: %w", path, err)
		}
		all = append(all, tagger.Tag(chunks)...)
		reporter.FileDone(filepath.Base(path), len(chunks))
	}
	reporter.Finish(len(all))

	if err := index.Build(ctx, all); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	dir := indexDir(cfg)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := index.Persist(ctx, dir); err != nil {
		return fmt.Errorf("persisting index: %w", err)
	}

	fmt.Printf("Indexed %d chunk(s) from %d file(s) using the %s strategy.\n", len(all), len(files), index.Name())
	fmt.Printf("Index saved to %s\n", dir)
	return nil
}
