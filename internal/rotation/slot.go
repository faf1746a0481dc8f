package rotation

import (
	"context"
	"fmt"

	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/repository"
)

// SlotAssigner hands out tail positions to new queue entrants.
//
// The max is read and the caller writes max+1 later, without a lock. Two
// activations racing on the same queue can receive the same order; that only
// ties the two newcomers, which the (order, id) tiebreak and the next
// compaction resolve. A database sequence per queue would remove the tie if
// it ever matters.
type SlotAssigner struct {
	repo repository.ItemRepository
}

func NewSlotAssigner(repo repository.ItemRepository) *SlotAssigner {
	return &SlotAssigner{repo: repo}
}

// AssignTailOrder returns an order value strictly greater than every eligible
// item's order in q at call time.
func (s *SlotAssigner) AssignTailOrder(ctx context.Context, q domain.QueueType) (int64, error) {
	if !q.IsValid() {
		return 0, domain.ErrInvalidQueue
	}
	maxOrder, err := s.repo.MaxOrder(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("assign %s tail order: %w", q, err)
	}
	return maxOrder + 1, nil
}
