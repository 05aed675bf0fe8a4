// AngelaMos | 2026
// price.go

package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type BillingPeriod string

const (
	Monthly BillingPeriod = "monthly"
	Annual  BillingPeriod = "annual"
)

func (p BillingPeriod) IsAnnual() bool {
	return p == Annual
}

func (p BillingPeriod) Valid() bool {
	return p == Monthly || p == Annual
}

func PeriodFromAnnual(annual bool) BillingPeriod {
	if annual {
		return Annual
	}
	return Monthly
}

func ParseBillingPeriod(s string) (BillingPeriod, error) {
	switch BillingPeriod(strings.ToLower(strings.TrimSpace(s))) {
	case Monthly:
		return Monthly, nil
	case Annual, "yearly":
		return Annual, nil
	default:
		return "", fmt.Errorf("unknown billing period %q", s)
	}
}

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// ParseAmount reads a wire price. Empty or malformed input counts as zero.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func FormatUSD(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// ApplyDiscount subtracts discount from price and never goes below zero.
func ApplyDiscount(price, discount decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, price.Sub(discount))
}

// PercentSavings compares twelve monthly payments with one annual payment,
// clamped to [0, 100] and rounded to the nearest whole percent.
func PercentSavings(monthly, annual decimal.Decimal) int {
	if !monthly.IsPositive() {
		return 0
	}

	yearly := monthly.Mul(monthsInYear)
	ratio := yearly.Sub(annual).Div(yearly)

	switch {
	case ratio.IsNegative():
		ratio = decimal.Zero
	case ratio.GreaterThan(decimal.NewFromInt(1)):
		ratio = decimal.NewFromInt(1)
	}

	return int(ratio.Mul(hundred).Round(0).IntPart())
}

// PromoApplication is a validated discount bound to one tier and one period.
type PromoApplication struct {
	Code           string
	TierID         string
	Period         BillingPeriod
	DiscountAmount decimal.Decimal
	Savings        string
	Valid          bool
}

func (p *PromoApplication) AppliesTo(tierID string, period BillingPeriod) bool {
	return p != nil && p.Valid && p.TierID == tierID && p.Period == period
}

const FreeLabel = "Free"

// PriceDisplay is what a pricing card shows for one tier.
type PriceDisplay struct {
	Free           bool
	Period         BillingPeriod
	Price          decimal.Decimal
	OriginalPrice  *decimal.Decimal
	PercentSavings *int
}

func (d PriceDisplay) Label() string {
	if d.Free {
		return FreeLabel
	}
	return FormatUSD(d.Price)
}

func (d PriceDisplay) OriginalLabel() string {
	if d.OriginalPrice == nil {
		return ""
	}
	return FormatUSD(*d.OriginalPrice)
}

func (d PriceDisplay) String() string {
	if d.Free {
		return FreeLabel
	}

	suffix := "/month"
	if d.Period.IsAnnual() {
		suffix = "/year"
	}

	var b strings.Builder
	if d.OriginalPrice != nil {
		fmt.Fprintf(&b, "~~%s~~ ", d.OriginalLabel())
	}
	b.WriteString(d.Label())
	b.WriteString(suffix)
	if d.PercentSavings != nil && *d.PercentSavings > 0 {
		fmt.Fprintf(&b, " (save %d%%)", *d.PercentSavings)
	}
	return b.String()
}

// BasePrice returns the undiscounted wire price for period.
func BasePrice(tier TierResponse, period BillingPeriod) decimal.Decimal {
	if period.IsAnnual() {
		return ParseAmount(tier.AnnualPrice)
	}
	return ParseAmount(tier.Price)
}

// EffectivePrice is the amount a user pays for tier in period with promo.
func EffectivePrice(
	tier TierResponse,
	period BillingPeriod,
	promo *PromoApplication,
) decimal.Decimal {
	base := BasePrice(tier, period)
	if promo.AppliesTo(tier.ID, period) {
		return ApplyDiscount(base, promo.DiscountAmount)
	}
	return base
}

// FormatPrice has no side effects; a zero base price is always "Free".
func FormatPrice(
	tier TierResponse,
	period BillingPeriod,
	promo *PromoApplication,
) PriceDisplay {
	base := BasePrice(tier, period)
	if base.IsZero() {
		return PriceDisplay{Free: true, Period: period}
	}

	display := PriceDisplay{Period: period, Price: base}

	if promo.AppliesTo(tier.ID, period) {
		original := base
		display.Price = ApplyDiscount(base, promo.DiscountAmount)
		display.OriginalPrice = &original
	}

	if period.IsAnnual() {
		savings := PercentSavings(ParseAmount(tier.Price), base)
		display.PercentSavings = &savings
	}

	return display
}
