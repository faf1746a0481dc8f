package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	apimw "github.com/leasehub/exposure-rotation/internal/api/middleware"
	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/service"
)

// FeedHandler serves the head of the general and boost queues.
type FeedHandler struct {
	svc    *service.FeedService
	logger *zap.Logger
}

func NewFeedHandler(svc *service.FeedService, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{svc: svc, logger: logger}
}

// Get handles GET /api/v1/feed
//
// @Summary  Next exposure batch for the visitor session
// @Tags     exposure
// @Produce  json
// @Param    queue         query     string  false  "general (default) or boost"
// @Param    count         query     int     false  "Batch size (default from config)"
// @Param    X-Session-ID  header    string  false  "Visitor session; issued when absent"
// @Success  200           {object}  domain.FeedBatch
// @Failure  422           {object}  map[string]string
// @Router   /api/v1/feed [get]
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q := domain.QueueGeneral
	if s := query.Get("queue"); s != "" {
		q = domain.QueueType(s)
	}

	count := 0
	if s := query.Get("count"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			mapError(w, domain.ErrInvalidCount)
			return
		}
		count = n
	}

	batch, err := h.svc.Feed(r.Context(), q, count, apimw.GetSessionID(r.Context()))
	if err != nil {
		h.logger.Debug("feed request rejected",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err))
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, batch)
}
