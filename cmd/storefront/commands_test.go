// AngelaMos | 2026
// commands_test.go

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/talentmarket/internal/apiclient"
	"github.com/carterperez-dev/talentmarket/internal/core"
	"github.com/carterperez-dev/talentmarket/internal/pricing"
	"github.com/carterperez-dev/talentmarket/internal/subscription"
)

func runCLI(t *testing.T, handler http.HandlerFunc, args ...string) (string, string, error) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("TALENTMARKET_API_URL", srv.URL)

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

var cliTiers = []pricing.TierResponse{
	{ID: "talent-free", Name: "Free", Price: "0", AnnualPrice: "0", IsActive: true},
	{ID: "talent-pro", Name: "Pro", Price: "29.99", AnnualPrice: "299.88", IsActive: true},
}

func TestTiersCommand(t *testing.T) {
	out, _, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "talent", r.URL.Query().Get("role"))
		core.OK(w, cliTiers)
	}, "tiers", "--role", "talent", "--annual")
	require.NoError(t, err)

	assert.Contains(t, out, "Free")
	assert.Contains(t, out, "$299.88/year (save 17%)")
}

func TestSelectPaidTierRedirectsToCheckout(t *testing.T) {
	out, _, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case apiclient.PathPricingTiers:
			core.OK(w, cliTiers)
		case apiclient.PathCreatePaymentIntent:
			assert.NotEmpty(t, r.Header.Get(apiclient.IdempotencyKeyHeader))
			core.Created(w, subscription.IntentResponse{
				ClientSecret: "pi_7_secret",
				TierID:       "talent-pro",
			})
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}, "select", "talent-pro", "--role", "talent")
	require.NoError(t, err)

	assert.Contains(t, out, "redirect: /checkout?client_secret=pi_7_secret&tier_id=talent-pro&annual=false")
	assert.Contains(t, out, "payment of $29.99 required")
}

func TestPromoRejectionGoesToStderr(t *testing.T) {
	_, errOut, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		core.JSONError(w, core.BusinessRuleError("PROMO_EXPIRED", "This promo code has expired"))
	}, "promo", "OLD", "--tier", "talent-pro")
	require.Error(t, err)

	assert.Contains(t, errOut, "This promo code has expired")
}
