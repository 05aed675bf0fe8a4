// AngelaMos | 2026
// provider.go

package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
	EventChargeRefunded  = "charge.refunded"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

type IntentParams struct {
	AmountCents    int64
	Currency       string
	Description    string
	IdempotencyKey string
	Metadata       map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

type Refund struct {
	ID          string
	AmountCents int64
	Status      string
}

// Event is the subset of a provider webhook the service acts on.
type Event struct {
	ID                  string
	Type                string
	IntentID            string
	FailureMessage      string
	AmountRefundedCents int64
}

type Provider interface {
	CreateIntent(ctx context.Context, params IntentParams) (*Intent, error)
	Refund(ctx context.Context, intentID string, amountCents int64, idempotencyKey string) (*Refund, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

type stripeProvider struct {
	sc            *client.API
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) Provider {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &stripeProvider{
		sc:            sc,
		webhookSecret: webhookSecret,
	}
}

func (p *stripeProvider) CreateIntent(
	ctx context.Context,
	params IntentParams,
) (*Intent, error) {
	sp := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(params.AmountCents),
		Currency:    stripe.String(params.Currency),
		Description: stripe.String(params.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	sp.Context = ctx
	if params.IdempotencyKey != "" {
		sp.SetIdempotencyKey(params.IdempotencyKey)
	}
	for k, v := range params.Metadata {
		sp.AddMetadata(k, v)
	}

	pi, err := p.sc.PaymentIntents.New(sp)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

func (p *stripeProvider) Refund(
	ctx context.Context,
	intentID string,
	amountCents int64,
	idempotencyKey string,
) (*Refund, error) {
	rp := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	if amountCents > 0 {
		rp.Amount = stripe.Int64(amountCents)
	}
	rp.Context = ctx
	if idempotencyKey != "" {
		rp.SetIdempotencyKey(idempotencyKey)
	}

	r, err := p.sc.Refunds.New(rp)
	if err != nil {
		return nil, fmt.Errorf("create refund: %w", err)
	}

	return &Refund{
		ID:          r.ID,
		AmountCents: r.Amount,
		Status:      string(r.Status),
	}, nil
}

func (p *stripeProvider) ParseWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	out := &Event{ID: event.ID, Type: string(event.Type)}

	switch out.Type {
	case EventIntentSucceeded, EventIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.IntentID = pi.ID
		if pi.LastPaymentError != nil {
			out.FailureMessage = pi.LastPaymentError.Msg
		}
	case EventChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("decode charge: %w", err)
		}
		if ch.PaymentIntent != nil {
			out.IntentID = ch.PaymentIntent.ID
		}
		out.AmountRefundedCents = ch.AmountRefunded
	}

	return out, nil
}

// ProviderMessage extracts the user facing text of a provider error.
func ProviderMessage(err error) string {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return se.Msg
	}
	return "The payment provider could not process this request"
}
