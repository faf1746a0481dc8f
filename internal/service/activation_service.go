package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/repository"
	"github.com/leasehub/exposure-rotation/internal/rotation"
)

// ActivationService places a listing at the tail of a queue when a paid
// placement starts.
type ActivationService struct {
	repo   repository.ItemRepository
	slots  *rotation.SlotAssigner
	logger *zap.Logger
}

func NewActivationService(repo repository.ItemRepository, slots *rotation.SlotAssigner, logger *zap.Logger) *ActivationService {
	return &ActivationService{repo: repo, slots: slots, logger: logger}
}

// Activate assigns the tail order of req.Queue to listing id and marks it
// eligible for that queue in the same write.
func (s *ActivationService) Activate(ctx context.Context, id int64, req domain.ActivateRequest) (*domain.Activation, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	order, err := s.slots.AssignTailOrder(ctx, req.Queue)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Activate(ctx, id, req.Queue, order); err != nil {
		return nil, fmt.Errorf("activate listing %d in %s: %w", id, req.Queue, err)
	}

	s.logger.Info("listing activated",
		zap.Int64("item_id", id),
		zap.String("queue", string(req.Queue)),
		zap.Int64("order", order))
	return &domain.Activation{ItemID: id, Queue: req.Queue, Order: order}, nil
}
