package service

import (
	"context"

	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/rotation"
)

// CompactionService runs compaction on demand for the scheduler endpoint and
// the CLI.
type CompactionService struct {
	compactor *rotation.Compactor
}

func NewCompactionService(compactor *rotation.Compactor) *CompactionService {
	return &CompactionService{compactor: compactor}
}

// Compact renumbers q, or every queue when q is empty. A per-queue failure
// is reported in the result rather than as an error; only an unknown queue
// name fails the call.
func (s *CompactionService) Compact(ctx context.Context, q domain.QueueType) ([]domain.CompactionResult, error) {
	if q == "" {
		return s.compactor.RenumberAll(ctx), nil
	}
	if !q.IsValid() {
		return nil, domain.ErrInvalidQueue
	}

	res := domain.CompactionResult{Queue: q}
	n, err := s.compactor.RenumberQueue(ctx, q)
	if err != nil {
		res.Error = err.Error()
	}
	res.Renumbered = n
	return []domain.CompactionResult{res}, nil
}
