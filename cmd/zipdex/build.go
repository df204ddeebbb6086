package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"zipdex/internal/chunker"
	"zipdex/internal/contextutil"
	"zipdex/internal/embedder"
	"zipdex/internal/pipeline"
	"zipdex/internal/storage"
	"zipdex/internal/vectorstore"
)

var buildFlags struct {
	name         string
	chunkSize    int
	chunkOverlap int
	model        string
	outputDir    string
	remoteURL    string
	apiKey       string
	onConflict   string
	reset        bool
	resetAll     bool
}

var buildCmd = &cobra.Command{
	Use:   "build <archive.zip>",
	Short: "Chunk, embed, and index a ZIP archive",
	Long: `Extract the text and code files from a ZIP archive, chunk them
with per-format strategies, embed the chunks, store everything in
the local catalog, and sync the result to the remote collection.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildFlags.name, "name", "n", "", "collection name (default: archive file stem)")
	buildCmd.Flags().IntVarP(&buildFlags.chunkSize, "chunk-size", "s", chunker.DefaultSize, "chunk size in characters")
	buildCmd.Flags().IntVarP(&buildFlags.chunkOverlap, "chunk-overlap", "o", chunker.DefaultOverlap, "overlap between chunks in characters")
	buildCmd.Flags().StringVarP(&buildFlags.model, "model", "m", "", "embedding model name (default: from config)")
	buildCmd.Flags().StringVar(&buildFlags.outputDir, "output-dir", "", "directory for the local catalog database (default: from config)")
	buildCmd.Flags().StringVar(&buildFlags.remoteURL, "remote-url", "", "remote vector server URL (default: from config)")
	buildCmd.Flags().StringVar(&buildFlags.apiKey, "api-key", "", "remote vector server API key (default: from config)")
	buildCmd.Flags().StringVar(&buildFlags.onConflict, "on-conflict", "skip", "existing remote collection handling: skip, overwrite, or merge")
	buildCmd.Flags().BoolVarP(&buildFlags.reset, "reset-remote", "r", false, "delete the remote collection before syncing")
	buildCmd.Flags().BoolVarP(&buildFlags.resetAll, "reset-all", "R", false, "delete every remote collection before syncing")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	zipPath := args[0]
	if _, err := os.Stat(zipPath); err != nil {
		return fmt.Errorf("archive not found: %s", zipPath)
	}

	policy, err := vectorstore.ParseConflictPolicy(buildFlags.onConflict)
	if err != nil {
		return err
	}

	collection := buildFlags.name
	if collection == "" {
		collection = archiveStem(zipPath)
	}
	model := buildFlags.model
	if model == "" {
		model = cfg.EmbeddingModelName
	}
	remoteURL := buildFlags.remoteURL
	if remoteURL == "" {
		remoteURL = cfg.RemoteURL
	}
	apiKey := buildFlags.apiKey
	if apiKey == "" {
		apiKey = cfg.RemoteAPIKey
	}

	dbPath := cfg.DBPath
	if buildFlags.outputDir != "" {
		if err := os.MkdirAll(buildFlags.outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		dbPath = filepath.Join(buildFlags.outputDir, filepath.Base(cfg.DBPath))
	}

	db, err := storage.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := storage.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}

	store, err := vectorstore.NewQdrantStore(remoteURL, apiKey)
	if err != nil {
		return err
	}

	emb := embedder.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, model, cfg.EmbeddingSize)

	p := pipeline.New(
		storage.NewCollectionRepo(db),
		storage.NewChunkRepo(db),
		emb,
		vectorstore.NewSyncer(store),
	)

	ctx := contextutil.WithLogger(cmd.Context(), slog.Default())
	result, err := p.Run(ctx, pipeline.Options{
		ZipPath:    zipPath,
		Collection: collection,
		Model:      model,
		Chunking:   chunker.Config{Size: buildFlags.chunkSize, Overlap: buildFlags.chunkOverlap},
		Policy:     policy,
		Reset:      buildFlags.reset,
		ResetAll:   buildFlags.resetAll,
	})
	if err != nil {
		return err
	}

	printBuildSummary(cmd, collection, result)
	return nil
}

// archiveStem derives the default collection name from the archive
// filename.
func archiveStem(zipPath string) string {
	base := filepath.Base(zipPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func printBuildSummary(cmd *cobra.Command, collection string, result *pipeline.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Collection %q built.\n", collection)
	fmt.Fprintf(out, "  files:   %d\n", result.Files)
	fmt.Fprintf(out, "  chunks:  %d\n", result.Chunks)
	fmt.Fprintf(out, "  synced:  %d\n", result.Synced)

	types := make([]string, 0, len(result.Stats.ByType))
	for typ := range result.Stats.ByType {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		fmt.Fprintf(out, "  %-8s %d\n", typ+":", result.Stats.ByType[typ])
	}
}
