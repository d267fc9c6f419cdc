package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status      string    `json:"status"`
	RunID       string    `json:"run_id,omitempty"`
	LoadedYears []int     `json:"loaded_years,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	results ResultProvider
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(results ResultProvider, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		results: results,
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck handles GET /healthz. It reports "starting" until a run is available.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "starting", Timestamp: time.Now().UTC()}
	if res := h.results.Result(); res != nil {
		resp.Status = "ok"
		resp.RunID = res.RunID
		resp.LoadedYears = res.LoadedYears
	}
	render.JSON(w, r, resp)
}
