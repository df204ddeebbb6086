// Package vectorstore persists chunk embeddings in a Qdrant server and
// keeps a remote collection in step with the local catalog.
package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks zipdex/internal/vectorstore VectorStore

import "context"

// Point is one vector plus its payload. The payload carries the chunk's
// document text under "document" and the chunk metadata merged with
// "source_file", matching the alignment the local catalog stores.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// SearchResult is one similarity-search hit.
type SearchResult struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// VectorStore is the remote collection surface the syncer and the search
// API operate on.
type VectorStore interface {
	// EnsureCollection creates the collection if missing and validates its
	// vector size otherwise.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// DeleteCollection removes a collection and all its points.
	DeleteCollection(ctx context.Context, collection string) error

	// Count returns the number of points in the collection.
	Count(ctx context.Context, collection string) (uint64, error)

	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search returning the top hits.
	Search(ctx context.Context, collection string, query []float32, limit int) ([]SearchResult, error)
}
