// AngelaMos | 2026
// fakes_test.go

package storefront

import (
	"context"
	"sync"

	"github.com/carterperez-dev/talentmarket/internal/apiclient"
	"github.com/carterperez-dev/talentmarket/internal/pricing"
	"github.com/carterperez-dev/talentmarket/internal/promo"
	"github.com/carterperez-dev/talentmarket/internal/subscription"
	"github.com/carterperez-dev/talentmarket/internal/user"
)

type fakeAPI struct {
	mu sync.Mutex

	tiers    []pricing.TierResponse
	tierErr  error
	tierHits int

	promoResp  *promo.ValidateResponse
	promoErr   error
	promoHits  int
	promoGate  chan struct{}
	promoCalls chan struct{}
	// promoHook runs after the request is answered, before the reply returns.
	promoHook func()

	selectResp *subscription.SelectTierResponse
	selectErr  error
	selects    []subscription.SelectTierRequest

	intentErr    error
	intentSecret *string
	intents      []subscription.CreateIntentRequest
	intentKeys   []string
	intentGate   chan struct{}
	intentSeen   chan struct{}
}

func (f *fakeAPI) ListPricingTiers(context.Context, string) ([]pricing.TierResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tierHits++
	return f.tiers, f.tierErr
}

func (f *fakeAPI) ValidatePromoCode(
	ctx context.Context,
	_ promo.ValidateRequest,
) (*promo.ValidateResponse, error) {
	f.mu.Lock()
	f.promoHits++
	gate, seen := f.promoGate, f.promoCalls
	resp, err, hook := f.promoResp, f.promoErr, f.promoHook
	f.mu.Unlock()

	if seen != nil {
		seen <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if hook != nil {
		hook()
	}
	return resp, err
}

func (f *fakeAPI) SelectTier(
	_ context.Context,
	req subscription.SelectTierRequest,
	_ string,
) (*subscription.SelectTierResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects = append(f.selects, req)
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	if f.selectResp != nil {
		return f.selectResp, nil
	}
	return &subscription.SelectTierResponse{TierID: req.TierID, IsAnnual: req.IsAnnual}, nil
}

func (f *fakeAPI) CreatePaymentIntent(
	_ context.Context,
	req subscription.CreateIntentRequest,
	key string,
) (*subscription.IntentResponse, error) {
	f.mu.Lock()
	f.intents = append(f.intents, req)
	f.intentKeys = append(f.intentKeys, key)
	gate, seen, err := f.intentGate, f.intentSeen, f.intentErr
	secret := "pi_1_secret_x"
	if f.intentSecret != nil {
		secret = *f.intentSecret
	}
	f.mu.Unlock()

	if seen != nil {
		seen <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &subscription.IntentResponse{
		ClientSecret: secret,
		TierID:       req.TierID,
		IsAnnual:     req.IsAnnual,
	}, nil
}

func (f *fakeAPI) CurrentUser(context.Context) (*user.UserResponse, error) {
	return &user.UserResponse{ID: "u1", Role: "talent"}, nil
}

func (f *fakeAPI) intentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.intents)
}

type recorder struct {
	mu            sync.Mutex
	notifications []Notification
	targets       []string
	invalidated   []string
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *recorder) Navigate(target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, target)
}

func (r *recorder) Invalidate(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated = append(r.invalidated, prefix)
}

func (r *recorder) last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return Notification{}
	}
	return r.notifications[len(r.notifications)-1]
}

var (
	freeTier = pricing.TierResponse{
		ID: "talent-free", Name: "Free", Category: "talent",
		Price: "0", AnnualPrice: "0", IsActive: true,
	}
	proTier = pricing.TierResponse{
		ID: "talent-pro", Name: "Pro", Category: "talent",
		Price: "50.00", AnnualPrice: "500.00", IsActive: true,
	}
	rejectInvalid = &apiclient.APIError{
		StatusCode: 422,
		Code:       "PROMO_INVALID",
		Message:    "Invalid promo code",
	}
)

func newOrchestrator(api *fakeAPI, rec *recorder) *Orchestrator {
	o := NewOrchestrator(OrchestratorConfig{
		API:         api,
		Invalidator: rec,
		Navigator:   rec,
		Notifier:    rec,
		Paths:       Paths{Checkout: "/checkout", Onboarding: "/onboarding/profile"},
	})
	n := 0
	o.newKey = func() string {
		n++
		return "key-" + string(rune('0'+n))
	}
	return o
}
