package handler

import (
	"net/http"

	"github.com/leasehub/exposure-rotation/internal/queue"
)

// MetricsHandler serves a human-readable JSON snapshot of the rotation task
// buffer. Raw Prometheus metrics (counters, histograms) are available at
// /metrics via promhttp and are separate from this endpoint.
type MetricsHandler struct {
	q *queue.TaskQueue
}

func NewMetricsHandler(q *queue.TaskQueue) *MetricsHandler {
	return &MetricsHandler{q: q}
}

// GetMetrics handles GET /api/v1/metrics
//
// @Summary  Rotation task buffer snapshot
// @Tags     metrics
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/metrics [get]
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"rotation_buffer": map[string]int{
			"depth":    h.q.Depth(),
			"capacity": h.q.Capacity(),
		},
	})
}
