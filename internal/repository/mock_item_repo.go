package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/leasehub/exposure-rotation/internal/domain"
)

// MockItemRepository is a hand-written, in-memory implementation of
// ItemRepository used in unit tests. No mock-generation library needed.
//
// Its queue semantics mirror the SQL in pg_item_repo.go: reads sort by
// (order, id), MoveToTail assigns max+1.. in the order ids were given and
// skips ineligible ids, Renumber assigns 1..N over the (order, id) sequence.
type MockItemRepository struct {
	mu             sync.RWMutex
	items          map[int64]*domain.Item
	premiumMaxRank int

	// Optional error overrides, set in tests to simulate failure paths.
	TopByOrderErr error
	FreshestErr   error
	MaxOrderErr   error
	MoveToTailErr error
	RenumberErr   error
	ActivateErr   error

	moves int
}

func NewMockItemRepository(premiumMaxRank int) *MockItemRepository {
	return &MockItemRepository{
		items:          make(map[int64]*domain.Item),
		premiumMaxRank: premiumMaxRank,
	}
}

// Put inserts or replaces an item.
func (m *MockItemRepository) Put(it *domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *it
	m.items[it.ID] = &clone
}

// Moves reports how many MoveToTail calls succeeded.
func (m *MockItemRepository) Moves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.moves
}

func (m *MockItemRepository) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *it
	return &clone, nil
}

func (m *MockItemRepository) TopByOrder(_ context.Context, q domain.QueueType, limit int) ([]*domain.Item, error) {
	if m.TopByOrderErr != nil {
		return nil, m.TopByOrderErr
	}
	if !q.IsValid() {
		return nil, domain.ErrInvalidQueue
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	queue := m.queueLocked(q)
	if limit < 0 {
		limit = 0
	}
	if len(queue) > limit {
		queue = queue[:limit]
	}
	return cloneAll(queue), nil
}

func (m *MockItemRepository) Freshest(_ context.Context, limit int) ([]*domain.Item, error) {
	if m.FreshestErr != nil {
		return nil, m.FreshestErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Item
	for _, it := range m.items {
		if it.Eligible(domain.QueueGeneral, m.premiumMaxRank) && !it.IsBoosted {
			result = append(result, it)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].ActivatedAt, result[j].ActivatedAt
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return result[i].ID > result[j].ID
	})
	if limit < 0 {
		limit = 0
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return cloneAll(result), nil
}

func (m *MockItemRepository) MaxOrder(_ context.Context, q domain.QueueType) (int64, error) {
	if m.MaxOrderErr != nil {
		return 0, m.MaxOrderErr
	}
	if !q.IsValid() {
		return 0, domain.ErrInvalidQueue
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxLocked(q), nil
}

func (m *MockItemRepository) MoveToTail(_ context.Context, q domain.QueueType, ids []int64) (int, error) {
	if m.MoveToTailErr != nil {
		return 0, m.MoveToTailErr
	}
	if !q.IsValid() {
		return 0, domain.ErrInvalidQueue
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	maxOrder := m.maxLocked(q)
	moved := 0
	for i, id := range ids {
		it, ok := m.items[id]
		if !ok || !it.Eligible(q, m.premiumMaxRank) {
			continue
		}
		it.SetOrder(q, maxOrder+int64(i)+1)
		moved++
	}
	m.moves++
	return moved, nil
}

func (m *MockItemRepository) Renumber(_ context.Context, q domain.QueueType) (int, error) {
	if m.RenumberErr != nil {
		return 0, m.RenumberErr
	}
	if !q.IsValid() {
		return 0, domain.ErrInvalidQueue
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	queue := m.queueLocked(q)
	for i, it := range queue {
		it.SetOrder(q, int64(i)+1)
	}
	return len(queue), nil
}

func (m *MockItemRepository) Activate(_ context.Context, id int64, q domain.QueueType, order int64) error {
	if m.ActivateErr != nil {
		return m.ActivateErr
	}
	if !q.IsValid() {
		return domain.ErrInvalidQueue
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !it.Activatable(q, m.premiumMaxRank) {
		return domain.ErrNotActivatable
	}
	it.SetOrder(q, order)
	switch q {
	case domain.QueueGeneral:
		it.Status = domain.StatusActive
	case domain.QueuePremium:
		it.IsPremiumTier = true
	case domain.QueueRecommended:
		it.IsRecommended = true
	case domain.QueueBoost:
		it.IsBoosted = true
	}
	return nil
}

// queueLocked returns the live eligible items of q sorted by (order, id).
// Callers must hold m.mu.
func (m *MockItemRepository) queueLocked(q domain.QueueType) []*domain.Item {
	var queue []*domain.Item
	for _, it := range m.items {
		if it.Eligible(q, m.premiumMaxRank) {
			queue = append(queue, it)
		}
	}
	sort.Slice(queue, func(i, j int) bool {
		oi, oj := queue[i].Order(q), queue[j].Order(q)
		if oi != oj {
			return oi < oj
		}
		return queue[i].ID < queue[j].ID
	})
	return queue
}

func (m *MockItemRepository) maxLocked(q domain.QueueType) int64 {
	var maxOrder int64
	for _, it := range m.items {
		if it.Eligible(q, m.premiumMaxRank) && it.Order(q) > maxOrder {
			maxOrder = it.Order(q)
		}
	}
	return maxOrder
}

func cloneAll(items []*domain.Item) []*domain.Item {
	result := make([]*domain.Item, len(items))
	for i, it := range items {
		clone := *it
		result[i] = &clone
	}
	return result
}

var _ ItemRepository = (*MockItemRepository)(nil)
