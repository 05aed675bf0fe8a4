// AngelaMos | 2026
// client_test.go

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/talentmarket/internal/config"
	"github.com/carterperez-dev/talentmarket/internal/core"
	"github.com/carterperez-dev/talentmarket/internal/pricing"
	"github.com/carterperez-dev/talentmarket/internal/promo"
	"github.com/carterperez-dev/talentmarket/internal/subscription"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(&config.ClientConfig{
		BaseURL: srv.URL,
		Token:   "tok",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestListPricingTiers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, PathPricingTiers, r.URL.Path)
		assert.Equal(t, "talent", r.URL.Query().Get("role"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		core.OK(w, []pricing.TierResponse{
			{ID: "t1", Name: "Free", Price: "0", AnnualPrice: "0", IsActive: true},
			{ID: "t2", Name: "Pro", Price: "29.99", AnnualPrice: "299.88", IsActive: true},
		})
	})

	tiers, err := c.ListPricingTiers(context.Background(), "talent")
	require.NoError(t, err)
	require.Len(t, tiers, 2)
	assert.Equal(t, "t2", tiers[1].ID)
	assert.Equal(t, "299.88", tiers[1].AnnualPrice)
}

func TestServerMessageIsVerbatim(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		core.JSONError(w, core.BusinessRuleError("PROMO_EXPIRED", "This promo code has expired"))
	})

	_, err := c.ValidatePromoCode(context.Background(), promo.ValidateRequest{
		Code: "OLD", TierID: "t2", PlanType: "monthly",
	})
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "PROMO_EXPIRED", apiErr.Code)
	assert.Equal(t, "This promo code has expired", apiErr.Error())
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestNonEnvelopeErrorFallsBackToStatusText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	err := c.Do(context.Background(), http.MethodGet, "/api/anything", nil, nil, nil)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "HTTP_502", apiErr.Code)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(&config.ClientConfig{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrTransport)

	_, ok := AsAPIError(err)
	assert.False(t, ok)
}

func TestCreatePaymentIntentSendsIdempotencyKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathCreatePaymentIntent, r.URL.Path)
		assert.Equal(t, "attempt-1", r.Header.Get(IdempotencyKeyHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req subscription.CreateIntentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Amount.Equal(decimal.RequireFromString("40")))
		assert.Equal(t, "SAVE10", req.PromoCode)

		core.Created(w, subscription.IntentResponse{
			ClientSecret: "pi_123_secret",
			TierID:       req.TierID,
			IsAnnual:     req.IsAnnual,
		})
	})

	resp, err := c.CreatePaymentIntent(context.Background(), subscription.CreateIntentRequest{
		Amount:    decimal.RequireFromString("40"),
		TierID:    "t2",
		PromoCode: "SAVE10",
	}, "attempt-1")
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret", resp.ClientSecret)
	assert.Equal(t, "t2", resp.TierID)
}

func TestCookiesAreKept(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "abc", Path: "/"})
			core.NoContent(w)
			return
		}
		cookie, err := r.Cookie("access_token")
		require.NoError(t, err)
		assert.Equal(t, "abc", cookie.Value)
		core.NoContent(w)
	})

	require.NoError(t, c.Do(context.Background(), http.MethodPost, "/api/auth/login", nil, nil, nil))
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/api/user", nil, nil, nil))
}
