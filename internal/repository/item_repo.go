package repository

import (
	"context"

	"github.com/leasehub/exposure-rotation/internal/domain"
)

// ItemRepository defines the persistence operations the exposure scheduler
// needs from the listings table. The pgx implementation is in pg_item_repo.go.
// Tests use a hand-written mock (mock_item_repo.go).
//
// Every queue-scoped read applies the queue's eligibility predicate; rows that
// left the queue keep their stale order value until the next Renumber.
type ItemRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Item, error)

	// TopByOrder returns up to limit eligible items ordered by (order, id).
	TopByOrder(ctx context.Context, q domain.QueueType, limit int) ([]*domain.Item, error)

	// Freshest returns non-boosted members of the general queue, most recently
	// activated first.
	Freshest(ctx context.Context, limit int) ([]*domain.Item, error)

	// MaxOrder returns the largest order value among eligible items, 0 if none.
	MaxOrder(ctx context.Context, q domain.QueueType) (int64, error)

	// MoveToTail reassigns max+1..max+len(ids) to ids, in the given order, in
	// one transaction. Ids no longer eligible are skipped.
	MoveToTail(ctx context.Context, q domain.QueueType, ids []int64) (int, error)

	// Renumber assigns 1..N to every eligible item by (order, id) in one
	// transaction and returns N.
	Renumber(ctx context.Context, q domain.QueueType) (int, error)

	// Activate stores order on the item and marks it eligible for q in a
	// single write. For the general queue that write also makes a pending,
	// draft or expired listing active. Returns domain.ErrNotActivatable when
	// the item's state does not allow joining q (see domain.Item.Activatable).
	Activate(ctx context.Context, id int64, q domain.QueueType, order int64) error
}
