// AngelaMos | 2026
// orchestrator_test.go

package storefront

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/talentmarket/internal/apiclient"
	"github.com/carterperez-dev/talentmarket/internal/pricing"
	"github.com/carterperez-dev/talentmarket/internal/subscription"
)

func TestFreeTierNeverCreatesPaymentIntent(t *testing.T) {
	api := &fakeAPI{}
	rec := &recorder{}

	for _, period := range []pricing.BillingPeriod{pricing.Monthly, pricing.Annual} {
		o := newOrchestrator(api, rec)
		out, err := o.Select(context.Background(), freeTier, period, nil)
		require.NoError(t, err)
		assert.Equal(t, DirectActivation{TierID: "talent-free"}, out)
		assert.Equal(t, StateActivated, o.State())
	}

	assert.Zero(t, api.intentCount())
	assert.Len(t, api.selects, 2)
	assert.Equal(t, []string{apiclient.PathCurrentUser, apiclient.PathCurrentUser}, rec.invalidated)
	assert.Equal(t, "/onboarding/profile", rec.targets[0])
}

func TestFullPromoActivatesDirectlyAndForwardsCode(t *testing.T) {
	api := &fakeAPI{}
	rec := &recorder{}
	o := newOrchestrator(api, rec)

	full := &pricing.PromoApplication{
		Code: "FREEPRO", TierID: proTier.ID, Period: pricing.Monthly,
		DiscountAmount: decimal.RequireFromString("50"), Valid: true,
	}

	out, err := o.Select(context.Background(), proTier, pricing.Monthly, full)
	require.NoError(t, err)
	assert.IsType(t, DirectActivation{}, out)
	require.Len(t, api.selects, 1)
	assert.Equal(t, "FREEPRO", api.selects[0].PromoCode)
	assert.Zero(t, api.intentCount())
}

func TestPaidTierCreatesExactlyOneIntent(t *testing.T) {
	api := &fakeAPI{}
	rec := &recorder{}
	o := newOrchestrator(api, rec)

	promo := &pricing.PromoApplication{
		Code: "SAVE10", TierID: proTier.ID, Period: pricing.Monthly,
		DiscountAmount: decimal.RequireFromString("10"), Valid: true,
	}

	out, err := o.Select(context.Background(), proTier, pricing.Monthly, promo)
	require.NoError(t, err)

	pr, ok := out.(PaymentRequired)
	require.True(t, ok)
	assert.Equal(t, "pi_1_secret_x", pr.ClientSecret)
	assert.True(t, pr.FinalPrice.Equal(decimal.RequireFromString("40")))

	require.Equal(t, 1, api.intentCount())
	req := api.intents[0]
	assert.True(t, req.Amount.Equal(decimal.RequireFromString("40")))
	assert.Equal(t, "SAVE10", req.PromoCode)
	assert.Equal(t, "Pro plan (monthly)", req.Description)
	assert.Empty(t, api.selects)

	assert.Equal(t, StateAwaitingCheckout, o.State())
	assert.Equal(t,
		[]string{"/checkout?client_secret=pi_1_secret_x&tier_id=talent-pro&annual=false"},
		rec.targets)
	assert.Empty(t, rec.invalidated)
}

func TestPromoForOtherTierIsNotForwarded(t *testing.T) {
	api := &fakeAPI{}
	o := newOrchestrator(api, &recorder{})

	other := &pricing.PromoApplication{
		Code: "SAVE10", TierID: "other", Period: pricing.Annual,
		DiscountAmount: decimal.RequireFromString("10"), Valid: true,
	}

	_, err := o.Select(context.Background(), proTier, pricing.Annual, other)
	require.NoError(t, err)
	require.Equal(t, 1, api.intentCount())
	assert.Empty(t, api.intents[0].PromoCode)
	assert.True(t, api.intents[0].Amount.Equal(decimal.RequireFromString("500")))
	assert.True(t, api.intents[0].IsAnnual)
}

func TestDoubleSubmitSendsOneIntent(t *testing.T) {
	api := &fakeAPI{
		intentGate: make(chan struct{}),
		intentSeen: make(chan struct{}, 1),
	}
	rec := &recorder{}
	o := newOrchestrator(api, rec)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := o.Select(context.Background(), proTier, pricing.Monthly, nil)
		assert.NoError(t, err)
	}()

	<-api.intentSeen
	assert.True(t, o.Pending())

	_, err := o.Select(context.Background(), proTier, pricing.Monthly, nil)
	assert.ErrorIs(t, err, ErrSelectionInFlight)

	close(api.intentGate)
	wg.Wait()

	assert.Equal(t, 1, api.intentCount())
	assert.False(t, o.Pending())
}

func TestFailureThenRetry(t *testing.T) {
	api := &fakeAPI{intentErr: &apiclient.APIError{
		StatusCode: 502,
		Code:       "PAYMENT_PROVIDER_ERROR",
		Message:    "Your card was declined.",
	}}
	rec := &recorder{}
	o := newOrchestrator(api, rec)

	_, err := o.Select(context.Background(), proTier, pricing.Monthly, nil)
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindPaymentProvider, f.Kind)
	assert.Equal(t, StateFailed, o.State())
	assert.Equal(t, Notification{
		Level: LevelError, Title: "Payment error", Message: "Your card was declined.",
	}, rec.last())
	assert.Empty(t, rec.targets)

	api.intentErr = nil
	out, err := o.Select(context.Background(), proTier, pricing.Monthly, nil)
	require.NoError(t, err)
	assert.IsType(t, PaymentRequired{}, out)
	assert.Equal(t, 2, api.intentCount())
	assert.Equal(t, []string{"key-1", "key-2"}, api.intentKeys)

	_, err = o.Select(context.Background(), proTier, pricing.Monthly, nil)
	assert.ErrorIs(t, err, ErrSelectionComplete)
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    FailureKind
		message string
	}{
		{
			name:    "business rule",
			err:     &apiclient.APIError{StatusCode: 409, Code: "ALREADY_SUBSCRIBED", Message: "You are already subscribed to this plan"},
			kind:    KindBusinessRule,
			message: "You are already subscribed to this plan",
		},
		{
			name:    "transport",
			err:     errors.Join(apiclient.ErrTransport, errors.New("dial tcp: refused")),
			kind:    KindTransport,
			message: genericRetryMessage,
		},
		{
			name:    "server fault",
			err:     &apiclient.APIError{StatusCode: 500, Code: "INTERNAL_ERROR", Message: "an unexpected error occurred"},
			kind:    KindTransport,
			message: genericRetryMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{selectErr: tt.err}
			rec := &recorder{}
			o := newOrchestrator(api, rec)

			_, err := o.Select(context.Background(), freeTier, pricing.Monthly, nil)
			var f *Failure
			require.ErrorAs(t, err, &f)
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.message, rec.last().Message)
			assert.Equal(t, selectTitle, rec.last().Title)
			assert.Empty(t, rec.invalidated)
		})
	}
}

func TestFreeSelectionRedirectsToCheckoutWhenServerAsksForPayment(t *testing.T) {
	api := &fakeAPI{selectResp: &subscription.SelectTierResponse{
		RequiresPayment: true,
		ClientSecret:    "pi_9_secret",
		FinalPrice:      "5.00",
	}}
	rec := &recorder{}
	o := newOrchestrator(api, rec)

	out, err := o.Select(context.Background(), freeTier, pricing.Annual, nil)
	require.NoError(t, err)

	pr, ok := out.(PaymentRequired)
	require.True(t, ok)
	assert.True(t, pr.FinalPrice.Equal(decimal.RequireFromString("5")))
	assert.Equal(t,
		[]string{"/checkout?client_secret=pi_9_secret&tier_id=talent-free&annual=true"},
		rec.targets)
	assert.Zero(t, api.intentCount())
}

func TestSelectWithoutTier(t *testing.T) {
	api := &fakeAPI{}
	rec := &recorder{}
	o := newOrchestrator(api, rec)

	_, err := o.Select(context.Background(), pricing.TierResponse{}, pricing.Monthly, nil)
	assert.ErrorIs(t, err, ErrNoTierSelected)
	assert.Empty(t, api.selects)
	assert.Zero(t, api.intentCount())
	assert.Equal(t, LevelError, rec.last().Level)
}

func TestPaymentWithoutClientSecretFails(t *testing.T) {
	empty := ""
	tests := []struct {
		name string
		api  *fakeAPI
		tier pricing.TierResponse
	}{
		{
			name: "select tier asks for payment without secret",
			api: &fakeAPI{selectResp: &subscription.SelectTierResponse{
				RequiresPayment: true,
				FinalPrice:      "9.99",
			}},
			tier: freeTier,
		},
		{
			name: "payment intent without secret",
			api:  &fakeAPI{intentSecret: &empty},
			tier: proTier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			o := newOrchestrator(tt.api, rec)

			out, err := o.Select(context.Background(), tt.tier, pricing.Monthly, nil)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, ErrMissingClientSecret)

			var f *Failure
			require.ErrorAs(t, err, &f)
			assert.Equal(t, KindPaymentProvider, f.Kind)
			assert.Equal(t, StateFailed, o.State())

			assert.Empty(t, rec.targets)
			assert.Empty(t, rec.invalidated)
			assert.Equal(t, LevelError, rec.last().Level)
			assert.Equal(t, paymentErrorTitle, rec.last().Title)
		})
	}
}
