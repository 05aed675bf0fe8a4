// AngelaMos | 2026
// entity.go

package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending           Status = "pending"
	StatusSucceeded         Status = "succeeded"
	StatusFailed            Status = "failed"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
)

func (s Status) Refundable() bool {
	return s == StatusSucceeded || s == StatusPartiallyRefunded
}

type Payment struct {
	ID               string          `db:"id"`
	UserID           string          `db:"user_id"`
	TierID           string          `db:"tier_id"`
	IsAnnual         bool            `db:"is_annual"`
	Amount           decimal.Decimal `db:"amount"`
	Currency         string          `db:"currency"`
	PromoCodeID      *string         `db:"promo_code_id"`
	PromoCode        *string         `db:"promo_code"`
	Description      string          `db:"description"`
	ProviderIntentID *string         `db:"provider_intent_id"`
	ClientSecret     *string         `db:"client_secret"`
	IdempotencyKey   *string         `db:"idempotency_key"`
	Status           Status          `db:"status"`
	RefundedAmount   decimal.Decimal `db:"refunded_amount"`
	FailureReason    *string         `db:"failure_reason"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (p *Payment) Refundable() decimal.Decimal {
	return decimal.Max(decimal.Zero, p.Amount.Sub(p.RefundedAmount))
}

var minorUnitsPerMajor = decimal.NewFromInt(100)

// ToMinorUnits converts a two decimal currency amount to cents.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnitsPerMajor).Round(0).IntPart()
}

func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
