package rotation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/repository"
	"github.com/leasehub/exposure-rotation/internal/rotation"
)

func TestRenumberQueue_DenseAndOrderPreserving(t *testing.T) {
	repo := repository.NewMockItemRepository(premiumMaxRank)
	seedGeneral(repo, map[int64]int64{1: 40, 2: 7, 3: 7, 4: 1000, 5: 12})
	repo.Put(&domain.Item{ID: 6, Status: domain.StatusExpired, ListingOrder: 3})
	c := rotation.NewCompactor(repo, zap.NewNop(), rotation.Hooks{})

	n, err := c.RenumberQueue(context.Background(), domain.QueueGeneral)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 renumbered, got %d", n)
	}

	// Ties at 7 keep id order: 2 before 3.
	want := map[int64]int64{2: 1, 3: 2, 5: 3, 1: 4, 4: 5}
	for id, order := range want {
		if got := orderOf(t, repo, id, domain.QueueGeneral); got != order {
			t.Fatalf("item %d: expected order %d, got %d", id, order, got)
		}
	}
	if got := orderOf(t, repo, 6, domain.QueueGeneral); got != 3 {
		t.Fatalf("ineligible item must keep its order, got %d", got)
	}
}

func TestRenumberQueue_Idempotent(t *testing.T) {
	repo := repository.NewMockItemRepository(premiumMaxRank)
	seedGeneral(repo, map[int64]int64{1: 9, 2: 4, 3: 30})
	c := rotation.NewCompactor(repo, zap.NewNop(), rotation.Hooks{})
	ctx := context.Background()

	if _, err := c.RenumberQueue(ctx, domain.QueueGeneral); err != nil {
		t.Fatal(err)
	}
	first := map[int64]int64{}
	for _, id := range []int64{1, 2, 3} {
		first[id] = orderOf(t, repo, id, domain.QueueGeneral)
	}

	if _, err := c.RenumberQueue(ctx, domain.QueueGeneral); err != nil {
		t.Fatal(err)
	}
	for id, order := range first {
		if got := orderOf(t, repo, id, domain.QueueGeneral); got != order {
			t.Fatalf("item %d moved from %d to %d on the second pass", id, order, got)
		}
	}
}

func TestRenumberQueue_ReportsThroughHooks(t *testing.T) {
	repo := repository.NewMockItemRepository(premiumMaxRank)
	seedGeneral(repo, map[int64]int64{1: 5, 2: 6})

	var renumbered int
	failed := 0
	c := rotation.NewCompactor(repo, zap.NewNop(), rotation.Hooks{
		OnRenumbered:       func(_ domain.QueueType, n int, _ time.Duration) { renumbered = n },
		OnCompactionFailed: func(domain.QueueType) { failed++ },
	})

	if _, err := c.RenumberQueue(context.Background(), domain.QueueGeneral); err != nil {
		t.Fatal(err)
	}
	if renumbered != 2 {
		t.Fatalf("expected hook to see 2, got %d", renumbered)
	}

	repo.RenumberErr = errors.New("lock timeout")
	if _, err := c.RenumberQueue(context.Background(), domain.QueueGeneral); err == nil {
		t.Fatal("expected an error")
	}
	if failed != 1 {
		t.Fatalf("expected 1 failure, got %d", failed)
	}
}

func TestRenumberQueue_InvalidQueue(t *testing.T) {
	c := rotation.NewCompactor(repository.NewMockItemRepository(premiumMaxRank), zap.NewNop(), rotation.Hooks{})
	if _, err := c.RenumberQueue(context.Background(), "spotlight"); !errors.Is(err, domain.ErrInvalidQueue) {
		t.Fatalf("expected ErrInvalidQueue, got %v", err)
	}
}

func TestRenumberAll_VisitsEveryQueue(t *testing.T) {
	repo := repository.NewMockItemRepository(premiumMaxRank)
	repo.Put(&domain.Item{ID: 1, Status: domain.StatusActive, IsPremiumTier: true, PremiumRank: 1, PremiumOrder: 50, ListingOrder: 30})
	repo.Put(&domain.Item{ID: 2, Status: domain.StatusActive, IsRecommended: true, RecommendOrder: 9, IsBoosted: true, BoostOrder: 70})
	c := rotation.NewCompactor(repo, zap.NewNop(), rotation.Hooks{})

	results := c.RenumberAll(context.Background())
	if len(results) != len(domain.AllQueues) {
		t.Fatalf("expected %d results, got %d", len(domain.AllQueues), len(results))
	}
	want := map[domain.QueueType]int{
		domain.QueuePremium:     1,
		domain.QueueRecommended: 1,
		domain.QueueGeneral:     1,
		domain.QueueBoost:       1,
	}
	for _, r := range results {
		if r.Error != "" {
			t.Fatalf("%s: unexpected error %s", r.Queue, r.Error)
		}
		if r.Renumbered != want[r.Queue] {
			t.Fatalf("%s: expected %d, got %d", r.Queue, want[r.Queue], r.Renumbered)
		}
	}
	if got := orderOf(t, repo, 2, domain.QueueBoost); got != 1 {
		t.Fatalf("expected boost order 1, got %d", got)
	}
}

func TestRenumberAll_ReportsFailures(t *testing.T) {
	repo := repository.NewMockItemRepository(premiumMaxRank)
	repo.RenumberErr = errors.New("db down")
	failed := 0
	c := rotation.NewCompactor(repo, zap.NewNop(), rotation.Hooks{
		OnCompactionFailed: func(domain.QueueType) { failed++ },
	})

	results := c.RenumberAll(context.Background())
	for _, r := range results {
		if r.Error == "" {
			t.Fatalf("%s: expected an error to be reported", r.Queue)
		}
	}
	if failed != len(domain.AllQueues) {
		t.Fatalf("expected every queue to be attempted, got %d failures", failed)
	}
}
