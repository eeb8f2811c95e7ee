package http

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"

	"github.com/tmr232/cfgbot/pkg/domain/model"
	"github.com/tmr232/cfgbot/pkg/domain/types"
)

// HealthHandler reports liveness plus whether the index corpus the
// post pipeline reads from is usable.
type HealthHandler struct {
	indexDir string
}

// NewHealthHandler creates a HealthHandler. indexDir may be empty when
// the corpus location is not configured; the corpus check is then
// skipped.
func NewHealthHandler(indexDir string) *HealthHandler {
	return &HealthHandler{indexDir: indexDir}
}

// Handle handles health check requests
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	status := &model.HealthStatus{
		Status:  "healthy",
		Service: "cfgbot",
		Version: types.Version,
	}

	if h.indexDir != "" {
		paths, err := filepath.Glob(filepath.Join(h.indexDir, "*.json"))
		if err != nil || len(paths) == 0 {
			// Alive, but every triggered run would fail.
			status.Status = "degraded"
		}
		status.Indices = len(paths)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode health response", "error", err)
	}
}
