// AngelaMos | 2026
// dto.go

package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

type RefundRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Reason string           `json:"reason"           validate:"max=500"`
}

type PaymentResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	TierID           string    `json:"tierId"`
	IsAnnual         bool      `json:"isAnnual"`
	Amount           string    `json:"amount"`
	Currency         string    `json:"currency"`
	PromoCode        *string   `json:"promoCode"`
	Description      string    `json:"description"`
	ProviderIntentID *string   `json:"providerIntentId"`
	Status           Status    `json:"status"`
	RefundedAmount   string    `json:"refundedAmount"`
	FailureReason    *string   `json:"failureReason"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type ListParams struct {
	Page     int
	PageSize int
	Status   string
	UserID   string
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Totals summarizes revenue for the admin dashboard.
type Totals struct {
	Count          int             `db:"count"           json:"count"`
	Succeeded      int             `db:"succeeded"       json:"succeeded"`
	Failed         int             `db:"failed"          json:"failed"`
	Pending        int             `db:"pending"         json:"pending"`
	GrossRevenue   decimal.Decimal `db:"gross_revenue"   json:"grossRevenue"`
	RefundedAmount decimal.Decimal `db:"refunded_amount" json:"refundedAmount"`
}

func ToPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		TierID:           p.TierID,
		IsAnnual:         p.IsAnnual,
		Amount:           p.Amount.StringFixed(2),
		Currency:         p.Currency,
		PromoCode:        p.PromoCode,
		Description:      p.Description,
		ProviderIntentID: p.ProviderIntentID,
		Status:           p.Status,
		RefundedAmount:   p.RefundedAmount.StringFixed(2),
		FailureReason:    p.FailureReason,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func ToPaymentResponseList(payments []Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, ToPaymentResponse(&payments[i]))
	}
	return out
}
