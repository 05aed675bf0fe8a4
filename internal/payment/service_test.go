// AngelaMos | 2026
// service_test.go

package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/talentmarket/internal/core"
)

type fakeRepo struct {
	byID map[string]*Payment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]*Payment{}}
}

func (r *fakeRepo) Create(_ context.Context, p *Payment) error {
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Payment, error) {
	if p, ok := r.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, core.ErrNotFound
}

func (r *fakeRepo) GetByIntentID(_ context.Context, intentID string) (*Payment, error) {
	for _, p := range r.byID {
		if p.ProviderIntentID != nil && *p.ProviderIntentID == intentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *fakeRepo) GetByIdempotencyKey(_ context.Context, userID, key string) (*Payment, error) {
	for _, p := range r.byID {
		if p.UserID == userID && p.IdempotencyKey != nil && *p.IdempotencyKey == key {
			cp := *p
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id string, status Status, reason *string) error {
	p, ok := r.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	p.Status = status
	p.FailureReason = reason
	return nil
}

func (r *fakeRepo) RecordRefund(_ context.Context, id string, refunded decimal.Decimal, status Status) error {
	p, ok := r.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	p.RefundedAmount = refunded
	p.Status = status
	return nil
}

func (r *fakeRepo) List(context.Context, ListParams) ([]Payment, int, error) { return nil, 0, nil }

func (r *fakeRepo) Totals(context.Context) (*Totals, error) { return &Totals{}, nil }

type fakeProvider struct {
	intents   []IntentParams
	refunds   []int64
	createErr error
}

func (f *fakeProvider) CreateIntent(_ context.Context, params IntentParams) (*Intent, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.intents = append(f.intents, params)
	return &Intent{ID: "pi_123", ClientSecret: "pi_123_secret_abc", Status: "requires_payment_method"}, nil
}

func (f *fakeProvider) Refund(_ context.Context, _ string, cents int64, _ string) (*Refund, error) {
	f.refunds = append(f.refunds, cents)
	return &Refund{ID: "re_1", AmountCents: cents, Status: "succeeded"}, nil
}

func (f *fakeProvider) ParseWebhook([]byte, string) (*Event, error) {
	return nil, ErrInvalidSignature
}

type recordingActivator struct {
	activated []string
}

func (a *recordingActivator) ActivatePaid(_ context.Context, p *Payment) error {
	a.activated = append(a.activated, p.ID)
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeProvider) {
	repo := newFakeRepo()
	provider := &fakeProvider{}
	svc := NewService(repo, provider, "usd", slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, repo, provider
}

func draft() *Payment {
	return &Payment{
		UserID:      "u1",
		TierID:      "pro",
		Amount:      decimal.RequireFromString("29.99"),
		Description: "Pro (monthly)",
	}
}

func TestCreateIntent_RecordsPendingPayment(t *testing.T) {
	svc, repo, provider := newTestService()

	p, err := svc.CreateIntent(context.Background(), draft(), "key-1")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, "pi_123_secret_abc", *p.ClientSecret)
	require.Len(t, provider.intents, 1)
	assert.Equal(t, int64(2999), provider.intents[0].AmountCents)
	assert.Equal(t, "usd", provider.intents[0].Currency)
	assert.Equal(t, p.ID, provider.intents[0].Metadata["payment_id"])
	assert.Contains(t, repo.byID, p.ID)

	replayed, err := svc.Replay(context.Background(), "u1", "key-1")
	require.NoError(t, err)
	require.NotNil(t, replayed)
	assert.Equal(t, p.ID, replayed.ID)

	none, err := svc.Replay(context.Background(), "u2", "key-1")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestCreateIntent_ProviderFailureIsUpstream(t *testing.T) {
	svc, repo, provider := newTestService()
	provider.createErr = errors.New("card network down")

	_, err := svc.CreateIntent(context.Background(), draft(), "")
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, appErr.StatusCode)
	assert.Equal(t, "PAYMENT_PROVIDER_ERROR", appErr.Code)
	assert.ErrorIs(t, err, core.ErrUpstream)
	assert.Empty(t, repo.byID)
}

func TestProcessEvent_SucceededActivatesOnce(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	p, err := svc.CreateIntent(ctx, draft(), "")
	require.NoError(t, err)

	activator := &recordingActivator{}
	ev := &Event{ID: "evt_1", Type: EventIntentSucceeded, IntentID: "pi_123"}

	require.NoError(t, svc.ProcessEvent(ctx, ev, activator))
	assert.Equal(t, []string{p.ID}, activator.activated)

	repo.byID[p.ID].Status = StatusSucceeded
	require.NoError(t, svc.ProcessEvent(ctx, ev, activator))
	assert.Len(t, activator.activated, 1)
}

func TestProcessEvent_FailedAndRefunded(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	p, err := svc.CreateIntent(ctx, draft(), "")
	require.NoError(t, err)

	require.NoError(t, svc.ProcessEvent(ctx, &Event{
		Type:           EventIntentFailed,
		IntentID:       "pi_123",
		FailureMessage: "Your card was declined.",
	}, &recordingActivator{}))
	assert.Equal(t, StatusFailed, repo.byID[p.ID].Status)
	assert.Equal(t, "Your card was declined.", *repo.byID[p.ID].FailureReason)

	repo.byID[p.ID].Status = StatusSucceeded
	require.NoError(t, svc.ProcessEvent(ctx, &Event{
		Type:                EventChargeRefunded,
		IntentID:            "pi_123",
		AmountRefundedCents: 1000,
	}, &recordingActivator{}))
	assert.Equal(t, StatusPartiallyRefunded, repo.byID[p.ID].Status)
	assert.True(t, repo.byID[p.ID].RefundedAmount.Equal(decimal.NewFromInt(10)))
}

func TestProcessEvent_UnknownIntentIgnored(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.ProcessEvent(context.Background(), &Event{
		Type:     EventIntentSucceeded,
		IntentID: "pi_missing",
	}, &recordingActivator{})
	assert.NoError(t, err)
}

func TestRefund(t *testing.T) {
	svc, repo, provider := newTestService()
	ctx := context.Background()

	p, err := svc.CreateIntent(ctx, draft(), "")
	require.NoError(t, err)

	_, err = svc.Refund(ctx, p.ID, nil)
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "PAYMENT_NOT_REFUNDABLE", appErr.Code)

	repo.byID[p.ID].Status = StatusSucceeded

	partial := decimal.RequireFromString("9.99")
	got, err := svc.Refund(ctx, p.ID, &partial)
	require.NoError(t, err)
	assert.Equal(t, StatusPartiallyRefunded, got.Status)

	tooMuch := decimal.RequireFromString("25")
	_, err = svc.Refund(ctx, p.ID, &tooMuch)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	got, err = svc.Refund(ctx, p.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, got.Status)
	assert.Equal(t, []int64{999, 2000}, provider.refunds)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(29988), ToMinorUnits(decimal.RequireFromString("299.88")))
	assert.Equal(t, int64(1), ToMinorUnits(decimal.RequireFromString("0.005")))
	assert.True(t, FromMinorUnits(4050).Equal(decimal.RequireFromString("40.50")))
}
