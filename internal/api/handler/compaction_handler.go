package handler

import (
	"net/http"

	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/service"
)

// CompactionHandler lets the external scheduler trigger compaction.
type CompactionHandler struct {
	svc *service.CompactionService
}

func NewCompactionHandler(svc *service.CompactionService) *CompactionHandler {
	return &CompactionHandler{svc: svc}
}

// Compact handles POST /api/v1/internal/compaction
//
// @Summary   Renumber one queue, or all of them
// @Tags      internal
// @Produce   json
// @Security  BearerAuth
// @Param     queue  query     string  false  "Queue type; all queues when omitted"
// @Success   200    {object}  map[string]any
// @Failure   422    {object}  map[string]string
// @Router    /api/v1/internal/compaction [post]
func (h *CompactionHandler) Compact(w http.ResponseWriter, r *http.Request) {
	q := domain.QueueType(r.URL.Query().Get("queue"))

	results, err := h.svc.Compact(r.Context(), q)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"results": results})
}
