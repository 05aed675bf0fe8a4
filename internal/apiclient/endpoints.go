// AngelaMos | 2026
// endpoints.go

package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/carterperez-dev/talentmarket/internal/pricing"
	"github.com/carterperez-dev/talentmarket/internal/promo"
	"github.com/carterperez-dev/talentmarket/internal/subscription"
	"github.com/carterperez-dev/talentmarket/internal/user"
)

const (
	PathPricingTiers        = "/api/pricing-tiers"
	PathValidatePromoCode   = "/api/validate-promo-code"
	PathSelectTier          = "/api/user/select-tier"
	PathCreatePaymentIntent = "/api/create-payment-intent"
	PathCurrentUser         = "/api/user"
)

func (c *Client) ListPricingTiers(ctx context.Context, role string) ([]pricing.TierResponse, error) {
	var tiers []pricing.TierResponse
	err := c.Do(ctx, http.MethodGet, PathPricingTiers, TierQuery(role), nil, &tiers)
	return tiers, err
}

// TierQuery is the query of a catalog read, shared with its cache key.
func TierQuery(role string) url.Values {
	if role == "" {
		return nil
	}
	return url.Values{"role": {role}}
}

func (c *Client) ValidatePromoCode(
	ctx context.Context,
	req promo.ValidateRequest,
) (*promo.ValidateResponse, error) {
	var resp promo.ValidateResponse
	if err := c.Do(ctx, http.MethodPost, PathValidatePromoCode, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SelectTier(
	ctx context.Context,
	req subscription.SelectTierRequest,
	idempotencyKey string,
) (*subscription.SelectTierResponse, error) {
	var resp subscription.SelectTierResponse
	err := c.Do(ctx, http.MethodPost, PathSelectTier, nil, req, &resp,
		WithIdempotencyKey(idempotencyKey))
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreatePaymentIntent(
	ctx context.Context,
	req subscription.CreateIntentRequest,
	idempotencyKey string,
) (*subscription.IntentResponse, error) {
	var resp subscription.IntentResponse
	err := c.Do(ctx, http.MethodPost, PathCreatePaymentIntent, nil, req, &resp,
		WithIdempotencyKey(idempotencyKey))
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*user.UserResponse, error) {
	var resp user.UserResponse
	if err := c.Do(ctx, http.MethodGet, PathCurrentUser, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
