package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"zipdex/internal/contextutil"
	"zipdex/internal/embedder"
	"zipdex/internal/vectorstore"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 20
)

// SearchHandler embeds a query and runs a similarity search against the
// remote collection.
type SearchHandler struct {
	embedder   embedder.Embedder
	store      vectorstore.VectorStore
	collection string
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(emb embedder.Embedder, store vectorstore.VectorStore, collection string) *SearchHandler {
	return &SearchHandler{
		embedder:   emb,
		store:      store,
		collection: collection,
	}
}

// SearchRequest is the search request payload.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SearchHit is one search result.
type SearchHit struct {
	ID         string         `json:"id"`
	Score      float32        `json:"score"`
	Document   string         `json:"document"`
	SourceFile string         `json:"source_file"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// SearchResponse is the search response payload.
type SearchResponse struct {
	Results []SearchHit `json:"results"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		logger.WarnContext(ctx, "empty query in request")
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}
	if req.Limit > maxSearchLimit {
		req.Limit = maxSearchLimit
	}

	vectors, err := h.embedder.EmbedBatch(ctx, []string{req.Query})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		writeError(w, http.StatusBadGateway, "Embedding service error")
		return
	}

	hits, err := h.store.Search(ctx, h.collection, vectors[0], req.Limit)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search collection", "collection", h.collection, "error", err)
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
		return
	}

	results := make([]SearchHit, 0, len(hits))
	for _, hit := range hits {
		results = append(results, toSearchHit(hit))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(SearchResponse{Results: results}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// toSearchHit lifts the document and source file out of the payload and
// keeps the rest as metadata.
func toSearchHit(hit vectorstore.SearchResult) SearchHit {
	out := SearchHit{
		ID:       hit.ID,
		Score:    hit.Score,
		Metadata: make(map[string]any),
	}
	for k, v := range hit.Payload {
		switch k {
		case "document":
			if s, ok := v.(string); ok {
				out.Document = s
			}
		case "source_file":
			if s, ok := v.(string); ok {
				out.SourceFile = s
			}
		default:
			out.Metadata[k] = v
		}
	}
	if len(out.Metadata) == 0 {
		out.Metadata = nil
	}
	return out
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
