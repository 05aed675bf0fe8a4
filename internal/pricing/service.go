// AngelaMos | 2026
// service.go

package pricing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/talentmarket/internal/core"
)

type Service struct {
	repo   Repository
	cache  CatalogCache
	logger *slog.Logger
}

func NewService(repo Repository, cache CatalogCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// ListForRole returns the active catalog a role may buy from. Admins and
// anonymous callers without a role see every category.
func (s *Service) ListForRole(
	ctx context.Context,
	role string,
) ([]TierResponse, error) {
	category := role
	if !IsCategory(category) {
		if role != "" && role != "admin" {
			return nil, fmt.Errorf("list tiers for %q: %w", role, core.ErrInvalidInput)
		}
		category = ""
	}

	cached, ok, err := s.cache.Get(ctx, category)
	if err != nil {
		s.logger.WarnContext(ctx, "tier catalog cache read failed",
			"category", category,
			"error", err,
		)
	}
	if ok {
		return cached, nil
	}

	tiers, err := s.repo.ListActive(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}

	responses := ToTierResponseList(tiers)
	if err := s.cache.Set(ctx, category, responses); err != nil {
		s.logger.WarnContext(ctx, "tier catalog cache write failed",
			"category", category,
			"error", err,
		)
	}

	return responses, nil
}

func (s *Service) GetTier(ctx context.Context, id string) (*Tier, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]Tier, error) {
	return s.repo.List(ctx)
}

func (s *Service) CreateTier(
	ctx context.Context,
	req CreateTierRequest,
) (*Tier, error) {
	if err := checkPrices(req.MonthlyPrice, req.AnnualPrice); err != nil {
		return nil, fmt.Errorf("create tier: %w", err)
	}

	tier := &Tier{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Category:     req.Category,
		MonthlyPrice: req.MonthlyPrice.Round(2),
		AnnualPrice:  req.AnnualPrice.Round(2),
		Features:     req.Features,
		IsActive:     true,
		SortOrder:    req.SortOrder,
	}
	req.Limits.apply(tier)
	req.Capabilities.apply(tier)

	if err := s.repo.Create(ctx, tier); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return tier, nil
}

func (s *Service) UpdateTier(
	ctx context.Context,
	id string,
	req UpdateTierRequest,
) (*Tier, error) {
	tier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tier.Name = *req.Name
	}
	if req.MonthlyPrice != nil {
		tier.MonthlyPrice = req.MonthlyPrice.Round(2)
	}
	if req.AnnualPrice != nil {
		tier.AnnualPrice = req.AnnualPrice.Round(2)
	}
	if req.Features != nil {
		tier.Features = req.Features
	}
	if req.Limits != nil {
		req.Limits.apply(tier)
	}
	if req.Capabilities != nil {
		req.Capabilities.apply(tier)
	}
	if req.SortOrder != nil {
		tier.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		tier.IsActive = *req.IsActive
	}

	if err := checkPrices(tier.MonthlyPrice, tier.AnnualPrice); err != nil {
		return nil, fmt.Errorf("update tier: %w", err)
	}

	if err := s.repo.Update(ctx, tier); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return tier, nil
}

func (s *Service) DeactivateTier(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// FlushCatalog drops every cached tier list.
func (s *Service) FlushCatalog(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.ErrorContext(ctx, "tier catalog cache invalidation failed",
			"error", err,
		)
	}
}

func checkPrices(monthly, annual decimal.Decimal) error {
	if monthly.IsNegative() || annual.IsNegative() {
		return fmt.Errorf("prices must not be negative: %w", core.ErrInvalidInput)
	}
	return nil
}
