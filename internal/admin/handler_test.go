// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/talentmarket/internal/payment"
)

type stubBilling struct {
	totals *payment.Totals
	err    error
}

func (s stubBilling) Totals(context.Context) (*payment.Totals, error) {
	return s.totals, s.err
}

type countingFlusher struct{ calls int }

func (c *countingFlusher) FlushCatalog(context.Context) error {
	c.calls++
	return nil
}

func passthrough(next http.Handler) http.Handler { return next }

func newRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	h.RegisterRoutes(r, passthrough, passthrough)
	return r
}

func TestSystemStatsIncludesBilling(t *testing.T) {
	h := NewHandler(HandlerConfig{
		DBPing:    func(context.Context) error { return errors.New("down") },
		RedisPing: func(context.Context) error { return nil },
		Billing: stubBilling{totals: &payment.Totals{
			Count:        3,
			Succeeded:    2,
			GrossRevenue: decimal.RequireFromString("90"),
		}},
	})

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Database DatabaseStatus  `json:"database"`
			Redis    RedisStatus     `json:"redis"`
			Billing  *payment.Totals `json:"billing"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	assert.False(t, body.Data.Database.Healthy)
	assert.True(t, body.Data.Redis.Healthy)
	require.NotNil(t, body.Data.Billing)
	assert.Equal(t, 2, body.Data.Billing.Succeeded)
	assert.True(t, body.Data.Billing.GrossRevenue.Equal(decimal.RequireFromString("90")))
}

func TestBillingStatsError(t *testing.T) {
	h := NewHandler(HandlerConfig{Billing: stubBilling{err: errors.New("boom")}})

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats/billing", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFlushCatalog(t *testing.T) {
	flusher := &countingFlusher{}
	h := NewHandler(HandlerConfig{Catalog: flusher})

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/admin/cache/pricing-tiers/flush", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, flusher.calls)
}
