package rotation_test

import (
	"context"
	"testing"
	"time"

	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/repository"
)

const premiumMaxRank = 10

func items(ids ...int64) []*domain.Item {
	out := make([]*domain.Item, len(ids))
	for i, id := range ids {
		out[i] = &domain.Item{ID: id, Status: domain.StatusActive}
	}
	return out
}

func ids(items []*domain.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// seedGeneral stores active listings whose general-queue order is given by
// orders[id].
func seedGeneral(repo *repository.MockItemRepository, orders map[int64]int64) {
	for id, order := range orders {
		repo.Put(&domain.Item{ID: id, Status: domain.StatusActive, ListingOrder: order})
	}
}

func orderOf(t *testing.T, repo *repository.MockItemRepository, id int64, q domain.QueueType) int64 {
	t.Helper()
	it, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get %d: %v", id, err)
	}
	return it.Order(q)
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
