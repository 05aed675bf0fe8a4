// AngelaMos | 2026
// catalog.go

package storefront

import (
	"context"

	"github.com/carterperez-dev/talentmarket/internal/apiclient"
	"github.com/carterperez-dev/talentmarket/internal/pricing"
	"github.com/carterperez-dev/talentmarket/internal/user"
)

// Catalog reads tiers and the current user through the query cache.
type Catalog struct {
	api   API
	cache *apiclient.QueryCache
}

func NewCatalog(api API, cache *apiclient.QueryCache) *Catalog {
	return &Catalog{api: api, cache: cache}
}

// Tiers returns the active tiers for role in the order the server sent them.
func (c *Catalog) Tiers(ctx context.Context, role string) ([]pricing.TierResponse, error) {
	key := apiclient.NewKey(apiclient.PathPricingTiers, apiclient.TierQuery(role))

	tiers, err := apiclient.Query(ctx, c.cache, key,
		func(ctx context.Context) ([]pricing.TierResponse, error) {
			return c.api.ListPricingTiers(ctx, role)
		})

	return activeOnly(tiers), err
}

func (c *Catalog) CurrentUser(ctx context.Context) (*user.UserResponse, error) {
	key := apiclient.NewKey(apiclient.PathCurrentUser, nil)

	return apiclient.Query(ctx, c.cache, key, c.api.CurrentUser)
}

func activeOnly(tiers []pricing.TierResponse) []pricing.TierResponse {
	out := make([]pricing.TierResponse, 0, len(tiers))
	for _, t := range tiers {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out
}
