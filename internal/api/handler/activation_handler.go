package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/leasehub/exposure-rotation/internal/api/middleware"
	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/service"
)

// ActivationHandler is called by the payment workflow when a paid placement
// starts.
type ActivationHandler struct {
	svc    *service.ActivationService
	logger *zap.Logger
}

func NewActivationHandler(svc *service.ActivationService, logger *zap.Logger) *ActivationHandler {
	return &ActivationHandler{svc: svc, logger: logger}
}

// Activate handles POST /api/v1/internal/placements/{id}/activate
//
// @Summary   Place a listing at the tail of an exposure queue
// @Tags      internal
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      int                     true  "Listing ID"
// @Param     body  body      domain.ActivateRequest  true  "Target queue"
// @Success   200   {object}  domain.Activation
// @Failure   404   {object}  map[string]string
// @Failure   409   {object}  map[string]string
// @Failure   422   {object}  map[string]string
// @Router    /api/v1/internal/placements/{id}/activate [post]
func (h *ActivationHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		mapError(w, domain.ErrInvalidID)
		return
	}

	var req domain.ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	activation, err := h.svc.Activate(r.Context(), id, req)
	if err != nil {
		h.logger.Warn("activation failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Int64("item_id", id),
			zap.Error(err))
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, activation)
}
