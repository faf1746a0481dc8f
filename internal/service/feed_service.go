package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/rotation"
)

// FeedService serves the head of the large exposure queues (general feed and
// boosted strip) through the rotation cursor.
type FeedService struct {
	cursor       *rotation.Cursor
	defaultCount int
	maxCount     int
	logger       *zap.Logger
}

func NewFeedService(cursor *rotation.Cursor, defaultCount, maxCount int, logger *zap.Logger) *FeedService {
	return &FeedService{cursor: cursor, defaultCount: defaultCount, maxCount: maxCount, logger: logger}
}

// Feed returns count listings of q for the visitor identified by sessionID.
// count == 0 selects the configured default.
//
// Only caller mistakes are returned as errors. A failed database read is
// logged and served as an empty, unrotated batch.
func (s *FeedService) Feed(ctx context.Context, q domain.QueueType, count int, sessionID string) (*domain.FeedBatch, error) {
	if q != domain.QueueGeneral && q != domain.QueueBoost {
		return nil, domain.ErrInvalidQueue
	}
	if count == 0 {
		count = s.defaultCount
	}
	if count < 0 || count > s.maxCount {
		return nil, domain.ErrInvalidCount
	}

	items, rotated, err := s.cursor.GetExposureBatch(ctx, q, count, sessionID)
	if err != nil {
		s.logger.Error("feed read failed, serving empty batch",
			zap.String("queue", string(q)),
			zap.String("session_id", sessionID),
			zap.Error(err))
		return &domain.FeedBatch{Queue: q, Items: []*domain.Item{}}, nil
	}
	if items == nil {
		items = []*domain.Item{}
	}
	return &domain.FeedBatch{Queue: q, Items: items, Rotated: rotated}, nil
}
