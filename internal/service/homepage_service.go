package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/repository"
	"github.com/leasehub/exposure-rotation/internal/rotation"
)

// PanelConfig sizes the homepage panels.
type PanelConfig struct {
	PremiumSlots   int
	RecommendSlots int
	// CandidateLimit caps how many queue members are read per panel before
	// partitioning.
	CandidateLimit int
}

// HomepageService assembles the rotated premium and recommended panels.
// Both panels are padded with the freshest non-boosted listings when their
// pool is smaller than the slot count.
type HomepageService struct {
	repo        repository.ItemRepository
	partitioner *rotation.Partitioner
	cfg         PanelConfig
	logger      *zap.Logger
}

func NewHomepageService(
	repo repository.ItemRepository,
	partitioner *rotation.Partitioner,
	cfg PanelConfig,
	logger *zap.Logger,
) *HomepageService {
	return &HomepageService{repo: repo, partitioner: partitioner, cfg: cfg, logger: logger}
}

// Panels returns this request's premium and recommended groups.
//
// A failed fill read only shortens the panels. A failed pool read leaves that
// panel empty; the homepage is never an error page because of a panel.
func (s *HomepageService) Panels(ctx context.Context) *domain.HomepagePanels {
	fill, err := s.repo.Freshest(ctx, max(s.cfg.PremiumSlots, s.cfg.RecommendSlots))
	if err != nil {
		s.logger.Warn("fill read failed, panels may be short", zap.Error(err))
		fill = nil
	}

	return &domain.HomepagePanels{
		Premium:     s.panel(ctx, domain.QueuePremium, s.cfg.PremiumSlots, fill),
		Recommended: s.panel(ctx, domain.QueueRecommended, s.cfg.RecommendSlots, fill),
	}
}

func (s *HomepageService) panel(ctx context.Context, q domain.QueueType, slots int, fill []*domain.Item) []*domain.Item {
	pool, err := s.repo.TopByOrder(ctx, q, s.cfg.CandidateLimit)
	if err != nil {
		s.logger.Error("panel read failed", zap.String("queue", string(q)), zap.Error(fmt.Errorf("read %s pool: %w", q, err)))
		pool = nil
	}

	group := rotation.SelectRotatedGroup(ctx, s.partitioner, pool, slots, q, fill)
	if group == nil {
		return []*domain.Item{}
	}
	return group
}
