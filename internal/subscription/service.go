// AngelaMos | 2026
// service.go

package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/talentmarket/internal/core"
	"github.com/carterperez-dev/talentmarket/internal/payment"
	"github.com/carterperez-dev/talentmarket/internal/pricing"
	"github.com/carterperez-dev/talentmarket/internal/promo"
	"github.com/carterperez-dev/talentmarket/internal/user"
)

const tracerName = "talentmarket/subscription"

type TierLookup interface {
	GetTier(ctx context.Context, id string) (*pricing.Tier, error)
}

type UserLookup interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type Quoter interface {
	Quote(
		ctx context.Context,
		repo promo.Repository,
		userID, code string,
		tier *pricing.Tier,
		period pricing.BillingPeriod,
	) (*promo.Quote, error)
}

type Payments interface {
	Replay(ctx context.Context, userID, key string) (*payment.Payment, error)
	CreateIntent(ctx context.Context, draft *payment.Payment, key string) (*payment.Payment, error)
}

type Service struct {
	uow      UnitOfWork
	tiers    TierLookup
	users    UserLookup
	quoter   Quoter
	payments Payments
	logger   *slog.Logger
}

func NewService(
	uow UnitOfWork,
	tiers TierLookup,
	users UserLookup,
	quoter Quoter,
	payments Payments,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:      uow,
		tiers:    tiers,
		users:    users,
		quoter:   quoter,
		payments: payments,
		logger:   logger,
	}
}

// SelectTier activates a tier whose effective price is zero and otherwise
// opens a payment intent for the discounted amount.
func (s *Service) SelectTier(
	ctx context.Context,
	caller Caller,
	req SelectTierRequest,
	idempotencyKey string,
) (*SelectTierResponse, error) {
	period := pricing.PeriodFromAnnual(req.IsAnnual)

	ctx, span := core.StartSpan(ctx, tracerName, "subscription.select_tier",
		attribute.String("tier.id", req.TierID),
		attribute.String("tier.period", string(period)),
		attribute.Bool("promo.present", req.PromoCode != ""),
	)
	defer span.End()

	prior, err := s.replay(ctx, caller.UserID, req.TierID, req.IsAnnual, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		return &SelectTierResponse{
			RequiresPayment: true,
			FinalPrice:      prior.Amount.StringFixed(2),
			ClientSecret:    deref(prior.ClientSecret),
			TierID:          prior.TierID,
			IsAnnual:        prior.IsAnnual,
		}, nil
	}

	tier, quote, err := s.prepare(ctx, caller, req.TierID, period, req.PromoCode)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	if quote.Final.IsZero() {
		if err := s.activateFree(ctx, caller.UserID, tier, period, quote); err != nil {
			core.SetSpanError(ctx, err)
			return nil, err
		}

		return &SelectTierResponse{
			RequiresPayment: false,
			FinalPrice:      quote.Final.StringFixed(2),
			TierID:          tier.ID,
			IsAnnual:        req.IsAnnual,
		}, nil
	}

	p, err := s.openIntent(ctx, caller.UserID, tier, period, quote, "", idempotencyKey)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	return &SelectTierResponse{
		RequiresPayment: true,
		FinalPrice:      quote.Final.StringFixed(2),
		ClientSecret:    deref(p.ClientSecret),
		TierID:          tier.ID,
		IsAnnual:        req.IsAnnual,
	}, nil
}

// CreatePaymentIntent charges exactly the server computed price. A repeated
// idempotency key returns the intent created the first time.
func (s *Service) CreatePaymentIntent(
	ctx context.Context,
	caller Caller,
	req CreateIntentRequest,
	idempotencyKey string,
) (*IntentResponse, error) {
	period := pricing.PeriodFromAnnual(req.IsAnnual)

	ctx, span := core.StartSpan(ctx, tracerName, "subscription.create_payment_intent",
		attribute.String("tier.id", req.TierID),
		attribute.String("tier.period", string(period)),
	)
	defer span.End()

	prior, err := s.replay(ctx, caller.UserID, req.TierID, req.IsAnnual, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		return &IntentResponse{
			ClientSecret: deref(prior.ClientSecret),
			TierID:       prior.TierID,
			IsAnnual:     prior.IsAnnual,
		}, nil
	}

	tier, quote, err := s.prepare(ctx, caller, req.TierID, period, req.PromoCode)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	if quote.Final.IsZero() {
		return nil, core.BusinessRuleError(
			"NO_PAYMENT_REQUIRED",
			"This plan does not require payment",
		)
	}

	if !req.Amount.Round(2).Equal(quote.Final) {
		return nil, core.BusinessRuleError(
			"AMOUNT_MISMATCH",
			"The price of this plan has changed. Please refresh and try again.",
		)
	}

	p, err := s.openIntent(ctx, caller.UserID, tier, period, quote, req.Description, idempotencyKey)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	return &IntentResponse{
		ClientSecret: deref(p.ClientSecret),
		TierID:       p.TierID,
		IsAnnual:     p.IsAnnual,
	}, nil
}

// ActivatePaid satisfies payment.Activator.
func (s *Service) ActivatePaid(ctx context.Context, p *payment.Payment) error {
	period := pricing.PeriodFromAnnual(p.IsAnnual)

	return s.uow.Do(ctx, func(r Repos) error {
		if err := r.Payments.UpdateStatus(ctx, p.ID, payment.StatusSucceeded, nil); err != nil {
			return err
		}

		if err := r.Users.ActivateTier(ctx, p.UserID, p.TierID, string(period)); err != nil {
			return err
		}

		promoID := deref(p.PromoCodeID)
		if promoID == "" {
			return nil
		}

		used, err := r.Promos.HasRedeemed(ctx, promoID, p.UserID)
		if err != nil || used {
			return err
		}

		err = promo.RedeemByID(ctx, r.Promos, promoID, p.UserID, p.TierID, &p.ID)
		if errors.Is(err, promo.ErrExhausted) {
			s.logger.WarnContext(ctx, "promo exhausted after payment",
				"payment_id", p.ID,
				"promo_code_id", promoID,
			)
			return nil
		}
		return err
	})
}

// replay returns the pending payment created under key, or nil when the key
// is new. Reusing a key for another plan is a conflict.
func (s *Service) replay(
	ctx context.Context,
	userID, tierID string,
	annual bool,
	key string,
) (*payment.Payment, error) {
	prior, err := s.payments.Replay(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("replay payment intent: %w", err)
	}
	if prior == nil {
		return nil, nil
	}
	if prior.TierID != tierID || prior.IsAnnual != annual {
		return nil, core.ConflictError(
			"IDEMPOTENCY_KEY_REUSED",
			"this request key was already used for a different plan",
		)
	}
	return prior, nil
}

func (s *Service) prepare(
	ctx context.Context,
	caller Caller,
	tierID string,
	period pricing.BillingPeriod,
	code string,
) (*pricing.Tier, *promo.Quote, error) {
	tier, err := s.tiers.GetTier(ctx, tierID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil, core.NotFoundError("pricing tier")
		}
		return nil, nil, fmt.Errorf("load tier: %w", err)
	}

	u, err := s.users.GetUser(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil, core.UnauthorizedError("")
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}

	if err := checkEligibility(tier, u, period); err != nil {
		return nil, nil, err
	}

	quote, err := s.quoter.Quote(ctx, nil, u.ID, code, tier, period)
	if err != nil {
		return nil, nil, asBusinessError(err)
	}

	return tier, quote, nil
}

func checkEligibility(tier *pricing.Tier, u *user.User, period pricing.BillingPeriod) error {
	if !tier.IsActive {
		return core.BusinessRuleError("TIER_INACTIVE", "This plan is no longer available")
	}

	if !u.IsAdmin() && tier.Category != u.Role {
		return core.BusinessRuleError(
			"TIER_NOT_AVAILABLE",
			"This plan is not available for your account type",
		)
	}

	if u.HasTier(tier.ID, string(period)) {
		return core.ConflictError("ALREADY_SUBSCRIBED", "You are already subscribed to this plan")
	}

	return nil
}

func (s *Service) activateFree(
	ctx context.Context,
	userID string,
	tier *pricing.Tier,
	period pricing.BillingPeriod,
	quote *promo.Quote,
) error {
	err := s.uow.Do(ctx, func(r Repos) error {
		if err := r.Users.ActivateTier(ctx, userID, tier.ID, string(period)); err != nil {
			return err
		}
		return promo.Redeem(ctx, r.Promos, quote, userID, tier.ID, nil)
	})
	if err != nil {
		return asBusinessError(fmt.Errorf("activate free tier: %w", err))
	}

	core.AddSpanEvent(ctx, "tier.activated",
		attribute.String("tier.id", tier.ID),
		attribute.Bool("promo.redeemed", quote.Code() != ""),
	)
	s.logger.InfoContext(ctx, "tier activated",
		"user_id", userID,
		"tier_id", tier.ID,
		"period", period,
		"promo", quote.Code(),
	)
	return nil
}

func (s *Service) openIntent(
	ctx context.Context,
	userID string,
	tier *pricing.Tier,
	period pricing.BillingPeriod,
	quote *promo.Quote,
	description, idempotencyKey string,
) (*payment.Payment, error) {
	if description == "" {
		description = fmt.Sprintf("%s plan (%s)", tier.Name, period)
	}

	draft := &payment.Payment{
		UserID:      userID,
		TierID:      tier.ID,
		IsAnnual:    period.IsAnnual(),
		Amount:      quote.Final,
		Description: description,
	}
	if quote.Promo != nil {
		id, code := quote.Promo.ID, quote.Promo.Code
		draft.PromoCodeID = &id
		draft.PromoCode = &code
	}

	return s.payments.CreateIntent(ctx, draft, idempotencyKey)
}

// asBusinessError turns promo rejections into user facing 422s.
func asBusinessError(err error) error {
	var rejection *promo.Rejection
	if errors.As(err, &rejection) {
		return core.BusinessRuleError(rejection.Code, rejection.Message)
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
