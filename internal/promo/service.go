// AngelaMos | 2026
// service.go

package promo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/talentmarket/internal/core"
	"github.com/carterperez-dev/talentmarket/internal/pricing"
)

type TierLookup interface {
	GetTier(ctx context.Context, id string) (*pricing.Tier, error)
}

type Service struct {
	repo  Repository
	tiers TierLookup
	now   func() time.Time
}

func NewService(repo Repository, tiers TierLookup) *Service {
	return &Service{
		repo:  repo,
		tiers: tiers,
		now:   time.Now,
	}
}

// Quote is the price of one tier for one period after an optional promo.
type Quote struct {
	Promo    *PromoCode
	Original decimal.Decimal
	Discount decimal.Decimal
	Final    decimal.Decimal
}

func (q *Quote) PromoCodeID() string {
	if q.Promo == nil {
		return ""
	}
	return q.Promo.ID
}

func (q *Quote) Code() string {
	if q.Promo == nil {
		return ""
	}
	return q.Promo.Code
}

// Quote prices tier for userID. An empty code yields the undiscounted price.
func (s *Service) Quote(
	ctx context.Context,
	repo Repository,
	userID, code string,
	tier *pricing.Tier,
	period pricing.BillingPeriod,
) (*Quote, error) {
	base := tier.PriceFor(period)
	quote := &Quote{Original: base, Discount: decimal.Zero, Final: base}

	code = NormalizeCode(code)
	if code == "" {
		return quote, nil
	}
	if repo == nil {
		repo = s.repo
	}

	p, err := repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("quote: %w", err)
	}

	if err := p.Check(s.now(), tier.ID, period); err != nil {
		return nil, err
	}

	used, err := repo.HasRedeemed(ctx, p.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}
	if used {
		return nil, ErrAlreadyUsed
	}

	quote.Promo = p
	quote.Discount = p.Discount(base)
	quote.Final = pricing.ApplyDiscount(base, quote.Discount)
	return quote, nil
}

func (s *Service) Validate(
	ctx context.Context,
	userID string,
	req ValidateRequest,
) (*ValidateResponse, error) {
	period, err := pricing.ParseBillingPeriod(req.PlanType)
	if err != nil {
		return nil, fmt.Errorf("validate promo: %w", core.ErrInvalidInput)
	}

	if NormalizeCode(req.Code) == "" {
		return nil, ErrInvalidCode
	}

	tier, err := s.tiers.GetTier(ctx, req.TierID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrNotApplicable
		}
		return nil, fmt.Errorf("validate promo: %w", err)
	}
	if !tier.IsActive {
		return nil, ErrNotApplicable
	}

	quote, err := s.Quote(ctx, nil, userID, req.Code, tier, period)
	if err != nil {
		return nil, err
	}

	return &ValidateResponse{
		PromoCode:      ToSummary(quote.Promo),
		DiscountAmount: quote.Discount.StringFixed(2),
		Savings:        pricing.FormatUSD(quote.Discount),
		OriginalPrice:  quote.Original.StringFixed(2),
		FinalPrice:     quote.Final.StringFixed(2),
	}, nil
}

// Redeem records the use of a quoted promo through repo, which should be
// bound to the transaction that grants the tier.
func Redeem(
	ctx context.Context,
	repo Repository,
	quote *Quote,
	userID, tierID string,
	paymentID *string,
) error {
	if quote == nil || quote.Promo == nil {
		return nil
	}

	return repo.Redeem(ctx, &Redemption{
		ID:          uuid.NewString(),
		PromoCodeID: quote.Promo.ID,
		UserID:      userID,
		TierID:      tierID,
		PaymentID:   paymentID,
	})
}

// RedeemByID is used when only the stored promo id survives, as in webhooks.
func RedeemByID(
	ctx context.Context,
	repo Repository,
	promoID, userID, tierID string,
	paymentID *string,
) error {
	if promoID == "" {
		return nil
	}

	return Redeem(ctx, repo, &Quote{Promo: &PromoCode{ID: promoID}}, userID, tierID, paymentID)
}

func (s *Service) List(ctx context.Context, params ListParams) ([]PromoCode, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Get(ctx context.Context, id string) (*PromoCode, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreatePromoRequest) (*PromoCode, error) {
	planType := req.PlanType
	if planType == "" {
		planType = PlanAny
	}

	p := &PromoCode{
		ID:             uuid.NewString(),
		Code:           NormalizeCode(req.Code),
		Description:    req.Description,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		TierIDs:        req.TierIDs,
		PlanType:       planType,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
		MaxRedemptions: req.MaxRedemptions,
		IsActive:       true,
	}

	if err := checkRules(p); err != nil {
		return nil, fmt.Errorf("create promo code: %w", err)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdatePromoRequest,
) (*PromoCode, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.DiscountValue != nil {
		p.DiscountValue = *req.DiscountValue
	}
	if req.TierIDs != nil {
		p.TierIDs = req.TierIDs
	}
	if req.PlanType != nil {
		p.PlanType = *req.PlanType
	}
	if req.ValidFrom != nil {
		p.ValidFrom = req.ValidFrom
	}
	if req.ValidUntil != nil {
		p.ValidUntil = req.ValidUntil
	}
	if req.MaxRedemptions != nil {
		p.MaxRedemptions = *req.MaxRedemptions
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := checkRules(p); err != nil {
		return nil, fmt.Errorf("update promo code: %w", err)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.repo.Deactivate(ctx, id)
}

func checkRules(p *PromoCode) error {
	if !p.DiscountValue.IsPositive() {
		return fmt.Errorf("discount value must be positive: %w", core.ErrInvalidInput)
	}
	if p.DiscountType == DiscountPercentage && p.DiscountValue.GreaterThan(hundred) {
		return fmt.Errorf("percentage discount above 100: %w", core.ErrInvalidInput)
	}
	if p.ValidFrom != nil && p.ValidUntil != nil && !p.ValidUntil.After(*p.ValidFrom) {
		return fmt.Errorf("validUntil must be after validFrom: %w", core.ErrInvalidInput)
	}
	return nil
}
