package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"zipdex/internal/contextutil"
	"zipdex/internal/vectorstore"
)

// HealthHandler reports whether the remote vector collection is
// reachable and present.
type HealthHandler struct {
	store      vectorstore.VectorStore
	collection string
	timeout    time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store vectorstore.VectorStore, collection string) *HealthHandler {
	return &HealthHandler{
		store:      store,
		collection: collection,
		timeout:    5 * time.Second,
	}
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	// Status is "healthy" or "unhealthy".
	Status string `json:"status"`

	Timestamp string `json:"timestamp"`

	Checks map[string]string `json:"checks"`

	Issues []string `json:"issues,omitempty"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if h.checkVectorStore(checkCtx) {
		checks["vector_store"] = "ok"
	} else {
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}

func (h *HealthHandler) checkVectorStore(ctx context.Context) bool {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := h.store.CollectionExists(ctx, h.collection)
	if err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		return false
	}
	if !exists {
		logger.WarnContext(ctx, "collection does not exist", "collection", h.collection)
		return false
	}
	return true
}
