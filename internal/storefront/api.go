// AngelaMos | 2026
// api.go

package storefront

import (
	"context"

	"github.com/carterperez-dev/talentmarket/internal/pricing"
	"github.com/carterperez-dev/talentmarket/internal/promo"
	"github.com/carterperez-dev/talentmarket/internal/subscription"
	"github.com/carterperez-dev/talentmarket/internal/user"
)

// API is the subset of *apiclient.Client the storefront calls.
type API interface {
	ListPricingTiers(ctx context.Context, role string) ([]pricing.TierResponse, error)
	ValidatePromoCode(ctx context.Context, req promo.ValidateRequest) (*promo.ValidateResponse, error)
	SelectTier(
		ctx context.Context,
		req subscription.SelectTierRequest,
		idempotencyKey string,
	) (*subscription.SelectTierResponse, error)
	CreatePaymentIntent(
		ctx context.Context,
		req subscription.CreateIntentRequest,
		idempotencyKey string,
	) (*subscription.IntentResponse, error)
	CurrentUser(ctx context.Context) (*user.UserResponse, error)
}
