// AngelaMos | 2026
// storefront.go

package storefront

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/carterperez-dev/talentmarket/internal/apiclient"
	"github.com/carterperez-dev/talentmarket/internal/pricing"
)

// Storefront is one user's pricing page: the selected tier, the billing
// period and the promo applied to that pair. Changing the tier or period
// drops the promo.
type Storefront struct {
	notifier     Notifier
	catalog      *Catalog
	validator    *PromoValidator
	orchestrator *Orchestrator

	mu          sync.Mutex
	tier        *pricing.TierResponse
	period      pricing.BillingPeriod
	promo       *pricing.PromoApplication
	version     uint64
	cancelPromo context.CancelFunc
}

type Config struct {
	API       API
	Cache     *apiclient.QueryCache
	Notifier  Notifier
	Navigator Navigator
	Paths     Paths
	Logger    *slog.Logger
}

func New(cfg Config) *Storefront {
	return &Storefront{
		notifier:  cfg.Notifier,
		catalog:   NewCatalog(cfg.API, cfg.Cache),
		validator: NewPromoValidator(cfg.API),
		orchestrator: NewOrchestrator(OrchestratorConfig{
			API:         cfg.API,
			Invalidator: cfg.Cache,
			Navigator:   cfg.Navigator,
			Notifier:    cfg.Notifier,
			Paths:       cfg.Paths,
			Logger:      cfg.Logger,
		}),
		period: pricing.Monthly,
	}
}

func (s *Storefront) Catalog() *Catalog {
	return s.catalog
}

func (s *Storefront) Orchestrator() *Orchestrator {
	return s.orchestrator
}

// SelectTier changes the selected tier and clears any applied promo.
func (s *Storefront) SelectTier(tier pricing.TierResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tier = &tier
	s.resetPromoLocked()
}

// SetPeriod changes the billing period and clears any applied promo.
func (s *Storefront) SetPeriod(period pricing.BillingPeriod) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if period == s.period {
		return
	}
	s.period = period
	s.resetPromoLocked()
}

func (s *Storefront) ClearPromo() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetPromoLocked()
}

func (s *Storefront) resetPromoLocked() {
	s.version++
	s.promo = nil
	if s.cancelPromo != nil {
		s.cancelPromo()
		s.cancelPromo = nil
	}
}

func (s *Storefront) Selection() (*pricing.TierResponse, pricing.BillingPeriod, *pricing.PromoApplication) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tier, s.period, s.promo
}

// ApplyPromo validates code against the current selection. A result that
// arrives after the selection changed is discarded with ErrStaleResponse.
func (s *Storefront) ApplyPromo(ctx context.Context, code string) (*pricing.PromoApplication, error) {
	s.mu.Lock()
	var tierID string
	if s.tier != nil {
		tierID = s.tier.ID
	}
	period := s.period

	if s.cancelPromo != nil {
		s.cancelPromo()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancelPromo = cancel
	s.version++
	version := s.version
	s.mu.Unlock()

	defer cancel()

	app, err := s.validator.Validate(ctx, code, tierID, period)

	s.mu.Lock()
	defer s.mu.Unlock()

	if version != s.version {
		return nil, ErrStaleResponse
	}
	s.cancelPromo = nil

	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			notifyFailure(s.notifier, f)
		}
		return nil, err
	}

	s.promo = app
	s.notifier.Notify(Notification{
		Level:   LevelSuccess,
		Title:   "Promo code applied",
		Message: "You save " + app.Savings,
	})
	return app, nil
}

// Display formats tier for the current period with the applied promo.
func (s *Storefront) Display(tier pricing.TierResponse) pricing.PriceDisplay {
	s.mu.Lock()
	period, promo := s.period, s.promo
	s.mu.Unlock()

	return pricing.FormatPrice(tier, period, promo)
}

// Checkout runs the orchestrator for the current selection.
func (s *Storefront) Checkout(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	tier, period, promo := s.tier, s.period, s.promo
	s.mu.Unlock()

	if tier == nil {
		return s.orchestrator.Select(ctx, pricing.TierResponse{}, period, nil)
	}
	return s.orchestrator.Select(ctx, *tier, period, promo)
}
