// AngelaMos | 2026
// service.go

package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/talentmarket/internal/core"
)

const tracerName = "talentmarket/payment"

// Activator grants the purchased tier once the provider confirms payment.
type Activator interface {
	ActivatePaid(ctx context.Context, p *Payment) error
}

type Service struct {
	repo     Repository
	provider Provider
	currency string
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	provider Provider,
	currency string,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		provider: provider,
		currency: currency,
		logger:   logger,
	}
}

// Replay returns a payment created earlier with the same idempotency key.
func (s *Service) Replay(ctx context.Context, userID, key string) (*Payment, error) {
	if key == "" {
		return nil, nil
	}

	p, err := s.repo.GetByIdempotencyKey(ctx, userID, key)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

// CreateIntent opens a provider intent for draft and records it as pending.
func (s *Service) CreateIntent(
	ctx context.Context,
	draft *Payment,
	idempotencyKey string,
) (*Payment, error) {
	ctx, span := core.StartSpan(ctx, tracerName, "payment.create_intent",
		attribute.String("tier.id", draft.TierID),
		attribute.Bool("tier.annual", draft.IsAnnual),
	)
	defer span.End()

	draft.ID = uuid.NewString()
	draft.Status = StatusPending
	draft.Currency = s.currency
	if idempotencyKey != "" {
		draft.IdempotencyKey = &idempotencyKey
	}

	providerKey := idempotencyKey
	if providerKey == "" {
		providerKey = draft.ID
	}

	metadata := map[string]string{
		"payment_id": draft.ID,
		"user_id":    draft.UserID,
		"tier_id":    draft.TierID,
		"is_annual":  strconv.FormatBool(draft.IsAnnual),
	}
	if draft.PromoCode != nil {
		metadata["promo_code"] = *draft.PromoCode
	}

	intent, err := s.provider.CreateIntent(ctx, IntentParams{
		AmountCents:    ToMinorUnits(draft.Amount),
		Currency:       s.currency,
		Description:    draft.Description,
		IdempotencyKey: "intent-" + draft.UserID + "-" + providerKey,
		Metadata:       metadata,
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		s.logger.ErrorContext(ctx, "payment intent creation failed",
			"user_id", draft.UserID,
			"tier_id", draft.TierID,
			"error", err,
		)
		return nil, core.UpstreamError("PAYMENT_PROVIDER_ERROR", ProviderMessage(err), err)
	}

	draft.ProviderIntentID = &intent.ID
	draft.ClientSecret = &intent.ClientSecret

	if err := s.repo.Create(ctx, draft); err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "payment intent created",
		"payment_id", draft.ID,
		"intent_id", intent.ID,
		"amount", draft.Amount.StringFixed(2),
	)
	return draft, nil
}

func (s *Service) ParseWebhook(payload []byte, signature string) (*Event, error) {
	return s.provider.ParseWebhook(payload, signature)
}

// ProcessEvent applies one provider event. Replays of an event already
// applied are no-ops so provider retries are safe.
func (s *Service) ProcessEvent(ctx context.Context, ev *Event, activator Activator) error {
	ctx, span := core.StartSpan(ctx, tracerName, "payment.webhook",
		attribute.String("event.type", ev.Type),
		attribute.String("event.id", ev.ID),
	)
	defer span.End()

	if ev.IntentID == "" {
		s.logger.DebugContext(ctx, "ignoring webhook event", "type", ev.Type, "event_id", ev.ID)
		return nil
	}

	p, err := s.repo.GetByIntentID(ctx, ev.IntentID)
	if errors.Is(err, core.ErrNotFound) {
		s.logger.WarnContext(ctx, "webhook for unknown payment intent",
			"type", ev.Type,
			"intent_id", ev.IntentID,
		)
		return nil
	}
	if err != nil {
		core.SetSpanError(ctx, err)
		return err
	}

	switch ev.Type {
	case EventIntentSucceeded:
		if p.Status != StatusPending && p.Status != StatusFailed {
			return nil
		}
		if err := activator.ActivatePaid(ctx, p); err != nil {
			core.SetSpanError(ctx, err)
			return fmt.Errorf("activate paid tier: %w", err)
		}
		s.logger.InfoContext(ctx, "payment succeeded", "payment_id", p.ID, "user_id", p.UserID)

	case EventIntentFailed:
		if p.Status != StatusPending {
			return nil
		}
		reason := ev.FailureMessage
		if err := s.repo.UpdateStatus(ctx, p.ID, StatusFailed, &reason); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "payment failed", "payment_id", p.ID, "reason", reason)

	case EventChargeRefunded:
		refunded := FromMinorUnits(ev.AmountRefundedCents)
		if refunded.LessThanOrEqual(p.RefundedAmount) {
			return nil
		}
		if err := s.repo.RecordRefund(ctx, p.ID, refunded, refundStatus(p.Amount, refunded)); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "refund recorded", "payment_id", p.ID, "refunded", refunded.StringFixed(2))

	default:
		s.logger.DebugContext(ctx, "ignoring webhook event", "type", ev.Type)
	}

	return nil
}

// Refund returns amount, or everything still refundable when amount is nil.
func (s *Service) Refund(
	ctx context.Context,
	paymentID string,
	amount *decimal.Decimal,
) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !p.Status.Refundable() || p.ProviderIntentID == nil {
		return nil, core.ConflictError("PAYMENT_NOT_REFUNDABLE", "this payment cannot be refunded")
	}

	remaining := p.Refundable()
	refund := remaining
	if amount != nil {
		refund = amount.Round(2)
	}
	if !refund.IsPositive() || refund.GreaterThan(remaining) {
		return nil, core.ValidationError(
			"refund amount must be between 0.01 and " + remaining.StringFixed(2),
		)
	}

	key := fmt.Sprintf("refund-%s-%d", p.ID, ToMinorUnits(p.RefundedAmount))
	if _, err := s.provider.Refund(ctx, *p.ProviderIntentID, ToMinorUnits(refund), key); err != nil {
		s.logger.ErrorContext(ctx, "refund failed", "payment_id", p.ID, "error", err)
		return nil, core.UpstreamError("PAYMENT_PROVIDER_ERROR", ProviderMessage(err), err)
	}

	p.RefundedAmount = p.RefundedAmount.Add(refund)
	p.Status = refundStatus(p.Amount, p.RefundedAmount)
	if err := s.repo.RecordRefund(ctx, p.ID, p.RefundedAmount, p.Status); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "refund issued",
		"payment_id", p.ID,
		"amount", refund.StringFixed(2),
	)
	return p, nil
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Payment, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Totals(ctx context.Context) (*Totals, error) {
	return s.repo.Totals(ctx)
}

func refundStatus(amount, refunded decimal.Decimal) Status {
	if refunded.GreaterThanOrEqual(amount) {
		return StatusRefunded
	}
	return StatusPartiallyRefunded
}
