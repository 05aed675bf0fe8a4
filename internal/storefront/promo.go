// AngelaMos | 2026
// promo.go

package storefront

import (
	"context"
	"strings"

	"github.com/carterperez-dev/talentmarket/internal/pricing"
	"github.com/carterperez-dev/talentmarket/internal/promo"
)

const promoTitle = "Promo code"

type PromoValidator struct {
	api API
}

func NewPromoValidator(api API) *PromoValidator {
	return &PromoValidator{api: api}
}

// Validate asks the server whether code applies to tierID for period. Input
// errors fail without a request. Rejections are never retried. Failures are
// classified but not announced; the caller notifies once it knows the result
// still matches the selection.
func (v *PromoValidator) Validate(
	ctx context.Context,
	code, tierID string,
	period pricing.BillingPeriod,
) (*pricing.PromoApplication, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	switch {
	case tierID == "":
		return nil, classify(ErrNoTierSelected, promoTitle)
	case code == "":
		return nil, classify(ErrEmptyPromoCode, promoTitle)
	}

	resp, err := v.api.ValidatePromoCode(ctx, promo.ValidateRequest{
		Code:     code,
		TierID:   tierID,
		PlanType: string(period),
	})
	if err != nil {
		if canceled(err) {
			return nil, err
		}
		return nil, classify(err, promoTitle)
	}

	discount := pricing.ParseAmount(resp.DiscountAmount)
	savings := resp.Savings
	if savings == "" {
		savings = pricing.FormatUSD(discount)
	}

	if resp.PromoCode.Code != "" {
		code = resp.PromoCode.Code
	}

	return &pricing.PromoApplication{
		Code:           code,
		TierID:         tierID,
		Period:         period,
		DiscountAmount: discount,
		Savings:        savings,
		Valid:          true,
	}, nil
}
