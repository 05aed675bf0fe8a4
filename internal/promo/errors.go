// AngelaMos | 2026
// errors.go

package promo

// Rejection is a promo refusal whose message is shown to the user as is.
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

var (
	ErrInvalidCode = &Rejection{
		Code:    "PROMO_INVALID",
		Message: "Invalid promo code",
	}
	ErrNotYetValid = &Rejection{
		Code:    "PROMO_NOT_YET_VALID",
		Message: "This promo code is not active yet",
	}
	ErrExpired = &Rejection{
		Code:    "PROMO_EXPIRED",
		Message: "This promo code has expired",
	}
	ErrExhausted = &Rejection{
		Code:    "PROMO_EXHAUSTED",
		Message: "This promo code has reached its redemption limit",
	}
	ErrNotApplicable = &Rejection{
		Code:    "PROMO_NOT_APPLICABLE",
		Message: "This promo code does not apply to the selected plan",
	}
	ErrAlreadyUsed = &Rejection{
		Code:    "PROMO_ALREADY_USED",
		Message: "You have already used this promo code",
	}
)
