package handler

import (
	"net/http"

	"github.com/leasehub/exposure-rotation/internal/service"
)

// HomepageHandler serves the rotated homepage panels.
type HomepageHandler struct {
	svc *service.HomepageService
}

func NewHomepageHandler(svc *service.HomepageService) *HomepageHandler {
	return &HomepageHandler{svc: svc}
}

// Get handles GET /api/v1/homepage
//
// @Summary  Premium and recommended panels for this request
// @Tags     exposure
// @Produce  json
// @Success  200  {object}  domain.HomepagePanels
// @Router   /api/v1/homepage [get]
func (h *HomepageHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Panels(r.Context()))
}
