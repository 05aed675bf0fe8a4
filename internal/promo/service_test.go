// AngelaMos | 2026
// service_test.go

package promo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/talentmarket/internal/core"
	"github.com/carterperez-dev/talentmarket/internal/pricing"
)

type fakeRepo struct {
	codes    map[string]*PromoCode
	redeemed map[string]bool
}

func newFakeRepo(codes ...*PromoCode) *fakeRepo {
	r := &fakeRepo{codes: map[string]*PromoCode{}, redeemed: map[string]bool{}}
	for _, c := range codes {
		r.codes[c.Code] = c
	}
	return r
}

func (r *fakeRepo) GetByCode(_ context.Context, code string) (*PromoCode, error) {
	if c, ok := r.codes[code]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, core.ErrNotFound
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*PromoCode, error) {
	for _, c := range r.codes {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *fakeRepo) List(context.Context, ListParams) ([]PromoCode, int, error) {
	return nil, 0, nil
}

func (r *fakeRepo) Create(_ context.Context, p *PromoCode) error {
	if _, ok := r.codes[p.Code]; ok {
		return core.ErrDuplicateKey
	}
	r.codes[p.Code] = p
	return nil
}

func (r *fakeRepo) Update(_ context.Context, p *PromoCode) error {
	r.codes[p.Code] = p
	return nil
}

func (r *fakeRepo) Deactivate(context.Context, string) error { return nil }

func (r *fakeRepo) HasRedeemed(_ context.Context, promoID, userID string) (bool, error) {
	return r.redeemed[promoID+"/"+userID], nil
}

func (r *fakeRepo) Redeem(_ context.Context, red *Redemption) error {
	key := red.PromoCodeID + "/" + red.UserID
	if r.redeemed[key] {
		return ErrAlreadyUsed
	}
	r.redeemed[key] = true
	return nil
}

type fakeTiers map[string]*pricing.Tier

func (f fakeTiers) GetTier(_ context.Context, id string) (*pricing.Tier, error) {
	if t, ok := f[id]; ok {
		return t, nil
	}
	return nil, core.ErrNotFound
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func proTier() *pricing.Tier {
	return &pricing.Tier{
		ID:           "pro",
		Category:     pricing.CategoryTalent,
		MonthlyPrice: decimal.RequireFromString("50.00"),
		AnnualPrice:  decimal.RequireFromString("480.00"),
		IsActive:     true,
	}
}

func code(c string, typ DiscountType, value string) *PromoCode {
	return &PromoCode{
		ID:            "id-" + c,
		Code:          c,
		DiscountType:  typ,
		DiscountValue: decimal.RequireFromString(value),
		PlanType:      PlanAny,
		IsActive:      true,
	}
}

func newService(repo Repository) *Service {
	svc := NewService(repo, fakeTiers{"pro": proTier()})
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name  string
		promo *PromoCode
		price string
		want  string
	}{
		{"fixed", code("TEN", DiscountFixed, "10"), "50", "10"},
		{"fixed capped at price", code("BIG", DiscountFixed, "80"), "50", "50"},
		{"percentage", code("P20", DiscountPercentage, "20"), "29.99", "6"},
		{"percentage rounds to cents", code("P15", DiscountPercentage, "15"), "29.99", "4.5"},
		{"free price", code("TEN", DiscountFixed, "10"), "0", "0"},
		{"unknown type", code("X", "bogus", "10"), "50", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.promo.Discount(decimal.RequireFromString(tt.price))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestValidate_Success(t *testing.T) {
	svc := newService(newFakeRepo(code("SAVE10", DiscountFixed, "10")))

	resp, err := svc.Validate(context.Background(), "u1", ValidateRequest{
		Code:     "  save10 ",
		TierID:   "pro",
		PlanType: "monthly",
	})
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", resp.PromoCode.Code)
	assert.Equal(t, "10.00", resp.DiscountAmount)
	assert.Equal(t, "$10.00", resp.Savings)
	assert.Equal(t, "40.00", resp.FinalPrice)
}

func TestValidate_Rejections(t *testing.T) {
	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)

	expired := code("OLD", DiscountFixed, "5")
	expired.ValidUntil = &past

	early := code("SOON", DiscountFixed, "5")
	early.ValidFrom = &future

	exhausted := code("GONE", DiscountFixed, "5")
	exhausted.MaxRedemptions = 3
	exhausted.RedemptionCount = 3

	otherTier := code("AGENTS", DiscountFixed, "5")
	otherTier.TierIDs = TierIDs{"agent-pro"}

	annualOnly := code("YEARLY", DiscountFixed, "5")
	annualOnly.PlanType = PlanAnnual

	inactive := code("OFF", DiscountFixed, "5")
	inactive.IsActive = false

	used := code("USED", DiscountFixed, "5")

	repo := newFakeRepo(expired, early, exhausted, otherTier, annualOnly, inactive, used)
	repo.redeemed["id-USED/u1"] = true
	svc := newService(repo)

	tests := []struct {
		code   string
		tierID string
		want   *Rejection
	}{
		{"NOPE", "pro", ErrInvalidCode},
		{"OLD", "pro", ErrExpired},
		{"SOON", "pro", ErrNotYetValid},
		{"GONE", "pro", ErrExhausted},
		{"AGENTS", "pro", ErrNotApplicable},
		{"YEARLY", "pro", ErrNotApplicable},
		{"OFF", "pro", ErrInvalidCode},
		{"USED", "pro", ErrAlreadyUsed},
		{"OLD", "missing-tier", ErrNotApplicable},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := svc.Validate(context.Background(), "u1", ValidateRequest{
				Code:     tt.code,
				TierID:   tt.tierID,
				PlanType: "monthly",
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestQuote_NoCodeIsFullPrice(t *testing.T) {
	svc := newService(newFakeRepo())

	q, err := svc.Quote(context.Background(), nil, "u1", "", proTier(), pricing.Annual)
	require.NoError(t, err)
	assert.Nil(t, q.Promo)
	assert.True(t, q.Final.Equal(decimal.RequireFromString("480")))
}

func TestRedeem_OncePerUser(t *testing.T) {
	repo := newFakeRepo(code("ONCE", DiscountPercentage, "100"))
	svc := newService(repo)
	ctx := context.Background()

	q, err := svc.Quote(ctx, nil, "u1", "once", proTier(), pricing.Monthly)
	require.NoError(t, err)
	assert.True(t, q.Final.IsZero())

	require.NoError(t, Redeem(ctx, repo, q, "u1", "pro", nil))
	assert.ErrorIs(t, Redeem(ctx, repo, q, "u1", "pro", nil), ErrAlreadyUsed)

	_, err = svc.Quote(ctx, nil, "u1", "ONCE", proTier(), pricing.Monthly)
	assert.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestCreate_ValidatesRules(t *testing.T) {
	svc := newService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreatePromoRequest{
		Code:          "TOO-MUCH",
		DiscountType:  DiscountPercentage,
		DiscountValue: decimal.NewFromInt(150),
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	p, err := svc.Create(ctx, CreatePromoRequest{
		Code:          " launch ",
		DiscountType:  DiscountFixed,
		DiscountValue: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.Equal(t, "LAUNCH", p.Code)
	assert.Equal(t, PlanAny, p.PlanType)
}
