package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"zipdex/internal/embedder"
	"zipdex/internal/server"
	"zipdex/internal/vectorstore"
)

var serveFlags struct {
	addr       string
	collection string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API over a built collection",
	Long: `Start an HTTP server exposing a health probe at /healthz and a
semantic search endpoint at POST /api/search backed by the remote
vector collection.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (default: from config)")
	serveCmd.Flags().StringVarP(&serveFlags.collection, "name", "n", "", "collection to search (default: from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr := serveFlags.addr
	if addr == "" {
		addr = cfg.APIAddr
	}
	collection := serveFlags.collection
	if collection == "" {
		collection = cfg.Collection
	}

	store, err := vectorstore.NewQdrantStore(cfg.RemoteURL, cfg.RemoteAPIKey)
	if err != nil {
		return err
	}

	emb := embedder.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingSize)

	router := server.NewRouter(&server.Deps{
		Embedder:   emb,
		Store:      store,
		Collection: collection,
	})

	slog.Info("starting search API", "addr", addr, "collection", collection)
	if err := http.ListenAndServe(addr, router); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
