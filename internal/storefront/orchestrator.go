// AngelaMos | 2026
// orchestrator.go

package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/talentmarket/internal/apiclient"
	"github.com/carterperez-dev/talentmarket/internal/pricing"
	"github.com/carterperez-dev/talentmarket/internal/subscription"
)

type State string

const (
	StateIdle                  State = "idle"
	StateEvaluating            State = "evaluating"
	StateActivatingFree        State = "activating_free"
	StateCreatingPaymentIntent State = "creating_payment_intent"
	StateActivated             State = "activated"
	StateAwaitingCheckout      State = "awaiting_checkout"
	StateFailed                State = "failed"
)

func (s State) Terminal() bool {
	return s == StateActivated || s == StateAwaitingCheckout
}

// Outcome is DirectActivation or PaymentRequired.
type Outcome interface {
	outcome()
}

type DirectActivation struct {
	TierID string
}

type PaymentRequired struct {
	ClientSecret string
	TierID       string
	IsAnnual     bool
	FinalPrice   decimal.Decimal
}

func (DirectActivation) outcome() {}
func (PaymentRequired) outcome()  {}

type Paths struct {
	Checkout   string
	Onboarding string
}

const selectTitle = "Could not select plan"

// Orchestrator drives one plan selection from price evaluation to either
// activation or checkout. At most one attempt runs at a time.
type Orchestrator struct {
	api         API
	invalidator Invalidator
	navigator   Navigator
	notifier    Notifier
	paths       Paths
	logger      *slog.Logger
	newKey      func() string

	pending atomic.Bool

	mu    sync.Mutex
	state State
}

type OrchestratorConfig struct {
	API         API
	Invalidator Invalidator
	Navigator   Navigator
	Notifier    Notifier
	Paths       Paths
	Logger      *slog.Logger
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		api:         cfg.API,
		invalidator: cfg.Invalidator,
		navigator:   cfg.Navigator,
		notifier:    cfg.Notifier,
		paths:       cfg.Paths,
		logger:      logger,
		newKey:      uuid.NewString,
		state:       StateIdle,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Pending reports whether a selection is in flight.
func (o *Orchestrator) Pending() bool {
	return o.pending.Load()
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Select evaluates tier for period with promo and either activates it
// directly or opens checkout. Errors are returned as values after the user
// has been notified.
func (o *Orchestrator) Select(
	ctx context.Context,
	tier pricing.TierResponse,
	period pricing.BillingPeriod,
	promo *pricing.PromoApplication,
) (Outcome, error) {
	if !o.pending.CompareAndSwap(false, true) {
		return nil, ErrSelectionInFlight
	}
	defer o.pending.Store(false)

	if o.State().Terminal() {
		return nil, ErrSelectionComplete
	}

	o.setState(StateEvaluating)

	if tier.ID == "" {
		return nil, o.fail(ErrNoTierSelected)
	}

	price := pricing.EffectivePrice(tier, period, promo)

	var code string
	if promo.AppliesTo(tier.ID, period) {
		code = promo.Code
	}

	o.logger.DebugContext(ctx, "plan selection",
		"tier_id", tier.ID,
		"period", period,
		"price", price.StringFixed(2),
		"promo", code,
	)

	if price.IsZero() {
		return o.activateFree(ctx, tier, period, code)
	}
	return o.createPaymentIntent(ctx, tier, period, code, price)
}

func (o *Orchestrator) activateFree(
	ctx context.Context,
	tier pricing.TierResponse,
	period pricing.BillingPeriod,
	code string,
) (Outcome, error) {
	o.setState(StateActivatingFree)

	resp, err := o.api.SelectTier(ctx, subscription.SelectTierRequest{
		TierID:    tier.ID,
		PromoCode: code,
		IsAnnual:  period.IsAnnual(),
	}, o.newKey())
	if err != nil {
		return nil, o.fail(err)
	}

	if resp.RequiresPayment {
		if resp.ClientSecret == "" {
			return nil, o.fail(ErrMissingClientSecret)
		}
		return o.checkout(PaymentRequired{
			ClientSecret: resp.ClientSecret,
			TierID:       tier.ID,
			IsAnnual:     period.IsAnnual(),
			FinalPrice:   pricing.ParseAmount(resp.FinalPrice),
		}), nil
	}

	o.invalidator.Invalidate(apiclient.PathCurrentUser)
	o.setState(StateActivated)

	o.notifier.Notify(Notification{
		Level:   LevelSuccess,
		Title:   "Plan activated",
		Message: fmt.Sprintf("You are now on the %s plan", tier.Name),
	})
	o.navigator.Navigate(o.paths.Onboarding)

	return DirectActivation{TierID: tier.ID}, nil
}

func (o *Orchestrator) createPaymentIntent(
	ctx context.Context,
	tier pricing.TierResponse,
	period pricing.BillingPeriod,
	code string,
	price decimal.Decimal,
) (Outcome, error) {
	o.setState(StateCreatingPaymentIntent)

	resp, err := o.api.CreatePaymentIntent(ctx, subscription.CreateIntentRequest{
		Amount:      price,
		TierID:      tier.ID,
		IsAnnual:    period.IsAnnual(),
		Description: fmt.Sprintf("%s plan (%s)", tier.Name, period),
		PromoCode:   code,
	}, o.newKey())
	if err != nil {
		return nil, o.fail(err)
	}
	if resp.ClientSecret == "" {
		return nil, o.fail(ErrMissingClientSecret)
	}

	return o.checkout(PaymentRequired{
		ClientSecret: resp.ClientSecret,
		TierID:       tier.ID,
		IsAnnual:     period.IsAnnual(),
		FinalPrice:   price,
	}), nil
}

func (o *Orchestrator) checkout(p PaymentRequired) PaymentRequired {
	o.setState(StateAwaitingCheckout)
	o.navigator.Navigate(CheckoutURL(o.paths.Checkout, p))
	return p
}

func (o *Orchestrator) fail(err error) *Failure {
	o.setState(StateFailed)

	f := classify(err, selectTitle)
	if canceled(err) {
		return f
	}

	notifyFailure(o.notifier, f)
	return f
}

// CheckoutURL builds path?client_secret=..&tier_id=..&annual=.. in that order.
func CheckoutURL(path string, p PaymentRequired) string {
	return path +
		"?client_secret=" + url.QueryEscape(p.ClientSecret) +
		"&tier_id=" + url.QueryEscape(p.TierID) +
		"&annual=" + strconv.FormatBool(p.IsAnnual)
}
