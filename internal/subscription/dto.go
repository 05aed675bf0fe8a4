// AngelaMos | 2026
// dto.go

package subscription

import (
	"github.com/shopspring/decimal"
)

type SelectTierRequest struct {
	TierID    string `json:"tierId"    validate:"required"`
	PromoCode string `json:"promoCode" validate:"max=50"`
	IsAnnual  bool   `json:"isAnnual"`
}

type SelectTierResponse struct {
	RequiresPayment bool   `json:"requiresPayment"`
	FinalPrice      string `json:"finalPrice,omitempty"`
	ClientSecret    string `json:"clientSecret,omitempty"`
	TierID          string `json:"tierId,omitempty"`
	IsAnnual        bool   `json:"isAnnual"`
}

type CreateIntentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	TierID      string          `json:"tierId"      validate:"required"`
	IsAnnual    bool            `json:"isAnnual"`
	Description string          `json:"description" validate:"max=255"`
	PromoCode   string          `json:"promoCode"   validate:"max=50"`
}

type IntentResponse struct {
	ClientSecret string `json:"clientSecret"`
	TierID       string `json:"tierId"`
	IsAnnual     bool   `json:"isAnnual"`
}

// Caller is the authenticated user a request acts for.
type Caller struct {
	UserID string
	Role   string
}
