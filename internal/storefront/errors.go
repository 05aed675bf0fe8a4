// AngelaMos | 2026
// errors.go

package storefront

import (
	"context"
	"errors"
	"fmt"

	"github.com/carterperez-dev/talentmarket/internal/apiclient"
)

var (
	ErrNoTierSelected    = errors.New("select a plan first")
	ErrEmptyPromoCode    = errors.New("enter a promo code")
	ErrSelectionInFlight = errors.New("a plan selection is already in progress")
	ErrSelectionComplete = errors.New("plan selection already completed")
	ErrStaleResponse     = errors.New("response superseded by a newer selection")

	// ErrMissingClientSecret is a payment response the checkout page cannot use.
	ErrMissingClientSecret = errors.New("payment response carried no client secret")
)

const (
	genericRetryMessage = "Something went wrong. Please try again."
	paymentErrorTitle   = "Payment error"
	paymentStartMessage = "We could not start your payment. Please try again."
)

type FailureKind string

const (
	KindValidation      FailureKind = "validation"
	KindTransport       FailureKind = "transport"
	KindBusinessRule    FailureKind = "business_rule"
	KindPaymentProvider FailureKind = "payment_provider"
)

// Failure is a user action that did not succeed. Failures returned by the
// Orchestrator and the Storefront have already been notified.
type Failure struct {
	Kind    FailureKind
	Title   string
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// classify maps a client error onto the message a user should see.
func classify(err error, title string) *Failure {
	if errors.Is(err, ErrNoTierSelected) || errors.Is(err, ErrEmptyPromoCode) {
		return &Failure{Kind: KindValidation, Title: title, Message: err.Error(), Err: err}
	}

	if errors.Is(err, ErrMissingClientSecret) {
		return &Failure{
			Kind:    KindPaymentProvider,
			Title:   paymentErrorTitle,
			Message: paymentStartMessage,
			Err:     err,
		}
	}

	if apiErr, ok := apiclient.AsAPIError(err); ok {
		if apiErr.IsPaymentProvider() {
			return &Failure{
				Kind:    KindPaymentProvider,
				Title:   paymentErrorTitle,
				Message: apiErr.Message,
				Err:     err,
			}
		}
		if apiErr.StatusCode >= 500 {
			return &Failure{Kind: KindTransport, Title: title, Message: genericRetryMessage, Err: err}
		}
		return &Failure{Kind: KindBusinessRule, Title: title, Message: apiErr.Message, Err: err}
	}

	return &Failure{Kind: KindTransport, Title: title, Message: genericRetryMessage, Err: err}
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

func notifyFailure(n Notifier, f *Failure) {
	n.Notify(Notification{Level: LevelError, Title: f.Title, Message: f.Message})
}
