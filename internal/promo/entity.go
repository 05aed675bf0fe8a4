// AngelaMos | 2026
// entity.go

package promo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/talentmarket/internal/pricing"
)

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

type PlanType string

const (
	PlanMonthly PlanType = "monthly"
	PlanAnnual  PlanType = "annual"
	PlanAny     PlanType = "any"
)

func (p PlanType) Allows(period pricing.BillingPeriod) bool {
	return p == PlanAny || p == "" || string(p) == string(period)
}

type PromoCode struct {
	ID              string          `db:"id"`
	Code            string          `db:"code"`
	Description     string          `db:"description"`
	DiscountType    DiscountType    `db:"discount_type"`
	DiscountValue   decimal.Decimal `db:"discount_value"`
	TierIDs         TierIDs         `db:"tier_ids"`
	PlanType        PlanType        `db:"plan_type"`
	ValidFrom       *time.Time      `db:"valid_from"`
	ValidUntil      *time.Time      `db:"valid_until"`
	MaxRedemptions  int             `db:"max_redemptions"`
	RedemptionCount int             `db:"redemption_count"`
	IsActive        bool            `db:"is_active"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// Check applies every rule that does not depend on who is redeeming.
func (p *PromoCode) Check(now time.Time, tierID string, period pricing.BillingPeriod) error {
	switch {
	case !p.IsActive:
		return ErrInvalidCode
	case p.ValidFrom != nil && now.Before(*p.ValidFrom):
		return ErrNotYetValid
	case p.ValidUntil != nil && !now.Before(*p.ValidUntil):
		return ErrExpired
	case p.MaxRedemptions > 0 && p.RedemptionCount >= p.MaxRedemptions:
		return ErrExhausted
	case !p.TierIDs.Contains(tierID), !p.PlanType.Allows(period):
		return ErrNotApplicable
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

// Discount is never more than price. Percentages round to cents.
func (p *PromoCode) Discount(price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() || !p.DiscountValue.IsPositive() {
		return decimal.Zero
	}

	var off decimal.Decimal
	switch p.DiscountType {
	case DiscountFixed:
		off = p.DiscountValue
	case DiscountPercentage:
		off = price.Mul(p.DiscountValue).Div(hundred).Round(2)
	default:
		return decimal.Zero
	}

	return decimal.Min(off, price)
}

type Redemption struct {
	ID          string    `db:"id"`
	PromoCodeID string    `db:"promo_code_id"`
	UserID      string    `db:"user_id"`
	TierID      string    `db:"tier_id"`
	PaymentID   *string   `db:"payment_id"`
	RedeemedAt  time.Time `db:"redeemed_at"`
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// TierIDs restricts a code to specific tiers. Empty means every tier.
type TierIDs []string

func (t TierIDs) Contains(id string) bool {
	if len(t) == 0 {
		return true
	}
	for _, v := range t {
		if v == id {
			return true
		}
	}
	return false
}

func (t TierIDs) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

func (t *TierIDs) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = TierIDs{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan tier ids: unsupported type %T", src)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan tier ids: %w", err)
	}
	*t = out
	return nil
}
