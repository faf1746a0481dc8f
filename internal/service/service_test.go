package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/cache"
	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/queue"
	"github.com/leasehub/exposure-rotation/internal/repository"
	"github.com/leasehub/exposure-rotation/internal/rotation"
	"github.com/leasehub/exposure-rotation/internal/service"
)

const premiumMaxRank = 10

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

func newHomepage(repo repository.ItemRepository, store cache.Store, premium, recommend int) *service.HomepageService {
	p := rotation.NewPartitioner(store, 24*time.Hour, 2*time.Second, zap.NewNop(), rotation.Hooks{})
	return service.NewHomepageService(repo, p, service.PanelConfig{
		PremiumSlots:   premium,
		RecommendSlots: recommend,
		CandidateLimit: 100,
	}, zap.NewNop())
}

func premiumItem(id, order int64) *domain.Item {
	return &domain.Item{ID: id, Status: domain.StatusActive, IsPremiumTier: true, PremiumRank: 1, PremiumOrder: order}
}

func TestHomepageService_RotatesPremiumAndPadsRecommended(t *testing.T) {
	repo := repository.NewMockItemRepository(premiumMaxRank)
	for i := int64(1); i <= 3; i++ {
		repo.Put(premiumItem(i, i))
	}
	repo.Put(&domain.Item{ID: 20, Status: domain.StatusActive, IsRecommended: true, RecommendOrder: 1})

	fresh := time.Now()
	older := fresh.Add(-time.Hour)
	repo.Put(&domain.Item{ID: 30, Status: domain.StatusActive, ListingOrder: 1, ActivatedAt: &fresh})
	repo.Put(&domain.Item{ID: 31, Status: domain.StatusActive, ListingOrder: 2, ActivatedAt: &older})
	repo.Put(&domain.Item{ID: 32, Status: domain.StatusActive, ListingOrder: 3, IsBoosted: true, BoostOrder: 1, ActivatedAt: &fresh})
	// Not placed in the general queue yet, so never used as padding.
	repo.Put(&domain.Item{ID: 33, Status: domain.StatusActive, ActivatedAt: &fresh})

	svc := newHomepage(repo, cache.NewMockStore(), 2, 3)
	ctx := context.Background()

	first := svc.Panels(ctx)
	if want := []int64{1, 2}; !equalIDs(ids(first.Premium), want) {
		t.Fatalf("expected premium %v, got %v", want, ids(first.Premium))
	}
	// Recommended pool of one, padded with the freshest non-boosted listings.
	if want := []int64{20, 30, 31}; !equalIDs(ids(first.Recommended), want) {
		t.Fatalf("expected recommended %v, got %v", want, ids(first.Recommended))
	}

	second := svc.Panels(ctx)
	if want := []int64{3, 30}; !equalIDs(ids(second.Premium), want) {
		t.Fatalf("expected premium %v on the second read, got %v", want, ids(second.Premium))
	}
}

func TestHomepageService_CounterDownServesFirstGroup(t *testing.T) {
	repo := repository.NewMockItemRepository(premiumMaxRank)
	for i := int64(1); i <= 6; i++ {
		repo.Put(premiumItem(i, i))
	}
	store := cache.NewMockStore()
	store.Err = errors.New("connection refused")
	svc := newHomepage(repo, store, 2, 2)

	for i := 0; i < 3; i++ {
		got := svc.Panels(context.Background())
		if want := []int64{1, 2}; !equalIDs(ids(got.Premium), want) {
			t.Fatalf("call %d: expected %v, got %v", i+1, want, ids(got.Premium))
		}
	}
}

func TestHomepageService_ReadFailuresDegrade(t *testing.T) {
	repo := repository.NewMockItemRepository(premiumMaxRank)
	repo.TopByOrderErr = errors.New("db down")
	repo.FreshestErr = errors.New("db down")
	svc := newHomepage(repo, cache.NewMockStore(), 2, 2)

	got := svc.Panels(context.Background())
	if got.Premium == nil || got.Recommended == nil {
		t.Fatal("expected empty, non-nil panels")
	}
	if len(got.Premium) != 0 || len(got.Recommended) != 0 {
		t.Fatalf("expected empty panels, got %v / %v", ids(got.Premium), ids(got.Recommended))
	}
}

func newFeed(repo repository.ItemRepository, store cache.Store, tasks *queue.TaskQueue) *service.FeedService {
	gate := rotation.NewCooldownGate(store, 300*time.Second, 2*time.Second, zap.NewNop(), rotation.Hooks{})
	cursor := rotation.NewCursor(repo, gate, tasks, zap.NewNop(), rotation.Hooks{})
	return service.NewFeedService(cursor, 2, 10, zap.NewNop())
}

func TestFeedService_Feed(t *testing.T) {
	repo := repository.NewMockItemRepository(premiumMaxRank)
	for i := int64(1); i <= 4; i++ {
		repo.Put(&domain.Item{ID: i, Status: domain.StatusActive, ListingOrder: i})
	}
	tasks := queue.New(8)
	svc := newFeed(repo, cache.NewMockStore(), tasks)

	batch, err := svc.Feed(context.Background(), domain.QueueGeneral, 0, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int64{1, 2}; !equalIDs(ids(batch.Items), want) {
		t.Fatalf("expected the default count %v, got %v", want, ids(batch.Items))
	}
	if !batch.Rotated || batch.Queue != domain.QueueGeneral {
		t.Fatalf("unexpected batch: %+v", batch)
	}
	if tasks.Depth() != 1 {
		t.Fatalf("expected one queued tail-move, got %d", tasks.Depth())
	}
}

func TestFeedService_Validation(t *testing.T) {
	svc := newFeed(repository.NewMockItemRepository(premiumMaxRank), cache.NewMockStore(), queue.New(1))
	ctx := context.Background()

	tests := []struct {
		name  string
		queue domain.QueueType
		count int
		want  error
	}{
		{"panel queue", domain.QueuePremium, 2, domain.ErrInvalidQueue},
		{"unknown queue", "spotlight", 2, domain.ErrInvalidQueue},
		{"negative count", domain.QueueGeneral, -1, domain.ErrInvalidCount},
		{"over max", domain.QueueBoost, 11, domain.ErrInvalidCount},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Feed(ctx, tc.queue, tc.count, "s1"); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestFeedService_ReadErrorServesEmptyBatch(t *testing.T) {
	repo := repository.NewMockItemRepository(premiumMaxRank)
	repo.TopByOrderErr = errors.New("db down")
	svc := newFeed(repo, cache.NewMockStore(), queue.New(1))

	batch, err := svc.Feed(context.Background(), domain.QueueGeneral, 3, "s1")
	if err != nil {
		t.Fatalf("expected the error to be swallowed, got %v", err)
	}
	if batch.Items == nil || len(batch.Items) != 0 || batch.Rotated {
		t.Fatalf("expected an empty unrotated batch, got %+v", batch)
	}
}

func newActivation(repo repository.ItemRepository) *service.ActivationService {
	return service.NewActivationService(repo, rotation.NewSlotAssigner(repo), zap.NewNop())
}

func TestActivationService_PlacesAtTail(t *testing.T) {
	repo := repository.NewMockItemRepository(premiumMaxRank)
	repo.Put(&domain.Item{ID: 1, Status: domain.StatusActive, IsBoosted: true, BoostOrder: 4})
	repo.Put(&domain.Item{ID: 2, Status: domain.StatusActive})
	svc := newActivation(repo)

	got, err := svc.Activate(context.Background(), 2, domain.ActivateRequest{Queue: domain.QueueBoost})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Order != 5 || got.ItemID != 2 || got.Queue != domain.QueueBoost {
		t.Fatalf("unexpected activation: %+v", got)
	}

	it, _ := repo.GetByID(context.Background(), 2)
	if !it.IsBoosted || it.BoostOrder != 5 {
		t.Fatalf("expected item 2 boosted at order 5, got %+v", it)
	}
}

func TestActivationService_Errors(t *testing.T) {
	repo := repository.NewMockItemRepository(premiumMaxRank)
	repo.Put(&domain.Item{ID: 3, Status: domain.StatusSold})
	repo.Put(&domain.Item{ID: 4, Status: domain.StatusPending})
	repo.Put(&domain.Item{ID: 5, Status: domain.StatusActive, PremiumRank: premiumMaxRank + 1})
	svc := newActivation(repo)
	ctx := context.Background()
	general := domain.ActivateRequest{Queue: domain.QueueGeneral}

	if _, err := svc.Activate(ctx, 0, general); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := svc.Activate(ctx, 1, domain.ActivateRequest{Queue: "spotlight"}); !errors.Is(err, domain.ErrInvalidQueue) {
		t.Fatalf("expected ErrInvalidQueue, got %v", err)
	}
	if _, err := svc.Activate(ctx, 99, general); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Activate(ctx, 3, general); !errors.Is(err, domain.ErrNotActivatable) {
		t.Fatalf("expected ErrNotActivatable for a sold listing, got %v", err)
	}
	if _, err := svc.Activate(ctx, 4, domain.ActivateRequest{Queue: domain.QueueBoost}); !errors.Is(err, domain.ErrNotActivatable) {
		t.Fatalf("expected ErrNotActivatable for boosting a pending listing, got %v", err)
	}
	if _, err := svc.Activate(ctx, 5, domain.ActivateRequest{Queue: domain.QueuePremium}); !errors.Is(err, domain.ErrNotActivatable) {
		t.Fatalf("expected ErrNotActivatable for a premium rank outside the panel, got %v", err)
	}
	it, _ := repo.GetByID(ctx, 5)
	if it.IsPremiumTier {
		t.Fatal("a rejected premium activation must not raise the premium flag")
	}
}

func TestActivationService_PendingListingJoinsGeneralAtTail(t *testing.T) {
	repo := repository.NewMockItemRepository(premiumMaxRank)
	for i := int64(1); i <= 4; i++ {
		repo.Put(&domain.Item{ID: i, Status: domain.StatusActive, ListingOrder: i})
	}
	repo.Put(&domain.Item{ID: 9, Status: domain.StatusPending})
	// Active but never placed: must not be served ahead of placed listings.
	repo.Put(&domain.Item{ID: 10, Status: domain.StatusActive})
	svc := newActivation(repo)
	ctx := context.Background()

	head, _ := repo.TopByOrder(ctx, domain.QueueGeneral, 2)
	if want := []int64{1, 2}; !equalIDs(ids(head), want) {
		t.Fatalf("expected head %v before activation, got %v", want, ids(head))
	}

	got, err := svc.Activate(ctx, 9, domain.ActivateRequest{Queue: domain.QueueGeneral})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Order != 5 {
		t.Fatalf("expected order 5 after the current max of 4, got %d", got.Order)
	}

	it, _ := repo.GetByID(ctx, 9)
	if it.Status != domain.StatusActive || it.ListingOrder != 5 {
		t.Fatalf("expected listing 9 active at order 5, got status=%s order=%d", it.Status, it.ListingOrder)
	}

	queue, _ := repo.TopByOrder(ctx, domain.QueueGeneral, 10)
	if want := []int64{1, 2, 3, 4, 9}; !equalIDs(ids(queue), want) {
		t.Fatalf("expected general queue %v, got %v", want, ids(queue))
	}
}

func TestCompactionService_Compact(t *testing.T) {
	repo := repository.NewMockItemRepository(premiumMaxRank)
	repo.Put(&domain.Item{ID: 1, Status: domain.StatusActive, ListingOrder: 40})
	repo.Put(&domain.Item{ID: 2, Status: domain.StatusActive, ListingOrder: 10})
	svc := service.NewCompactionService(rotation.NewCompactor(repo, zap.NewNop(), rotation.Hooks{}))
	ctx := context.Background()

	results, err := svc.Compact(ctx, domain.QueueGeneral)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Renumbered != 2 {
		t.Fatalf("unexpected results: %+v", results)
	}

	all, err := svc.Compact(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != len(domain.AllQueues) {
		t.Fatalf("expected one result per queue, got %d", len(all))
	}

	if _, err := svc.Compact(ctx, "spotlight"); !errors.Is(err, domain.ErrInvalidQueue) {
		t.Fatalf("expected ErrInvalidQueue, got %v", err)
	}

	repo.RenumberErr = errors.New("db down")
	results, err = svc.Compact(ctx, domain.QueueBoost)
	if err != nil {
		t.Fatalf("per-queue failures must not fail the call, got %v", err)
	}
	if results[0].Error == "" {
		t.Fatal("expected the failure in the result")
	}
}
