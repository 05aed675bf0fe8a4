// AngelaMos | 2026
// dto.go

package promo

import (
	"time"

	"github.com/shopspring/decimal"
)

type ValidateRequest struct {
	Code     string `json:"code"     validate:"required,max=50"`
	TierID   string `json:"tierId"   validate:"required"`
	PlanType string `json:"planType" validate:"required,oneof=monthly annual"`
}

type Summary struct {
	Code          string       `json:"code"`
	Description   string       `json:"description"`
	DiscountType  DiscountType `json:"discountType"`
	DiscountValue string       `json:"discountValue"`
}

type ValidateResponse struct {
	PromoCode      Summary `json:"promoCode"`
	DiscountAmount string  `json:"discountAmount"`
	Savings        string  `json:"savings"`
	OriginalPrice  string  `json:"originalPrice"`
	FinalPrice     string  `json:"finalPrice"`
}

type CreatePromoRequest struct {
	Code           string          `json:"code"           validate:"required,min=3,max=50"`
	Description    string          `json:"description"    validate:"max=500"`
	DiscountType   DiscountType    `json:"discountType"   validate:"required,oneof=fixed percentage"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	TierIDs        []string        `json:"tierIds"        validate:"max=50,dive,required"`
	PlanType       PlanType        `json:"planType"       validate:"omitempty,oneof=monthly annual any"`
	ValidFrom      *time.Time      `json:"validFrom"`
	ValidUntil     *time.Time      `json:"validUntil"`
	MaxRedemptions int             `json:"maxRedemptions" validate:"min=0"`
}

type UpdatePromoRequest struct {
	Description    *string          `json:"description,omitempty"    validate:"omitempty,max=500"`
	DiscountValue  *decimal.Decimal `json:"discountValue,omitempty"`
	TierIDs        []string         `json:"tierIds,omitempty"        validate:"omitempty,max=50,dive,required"`
	PlanType       *PlanType        `json:"planType,omitempty"       validate:"omitempty,oneof=monthly annual any"`
	ValidFrom      *time.Time       `json:"validFrom,omitempty"`
	ValidUntil     *time.Time       `json:"validUntil,omitempty"`
	MaxRedemptions *int             `json:"maxRedemptions,omitempty" validate:"omitempty,min=0"`
	IsActive       *bool            `json:"isActive,omitempty"`
}

type PromoResponse struct {
	ID              string       `json:"id"`
	Code            string       `json:"code"`
	Description     string       `json:"description"`
	DiscountType    DiscountType `json:"discountType"`
	DiscountValue   string       `json:"discountValue"`
	TierIDs         []string     `json:"tierIds"`
	PlanType        PlanType     `json:"planType"`
	ValidFrom       *time.Time   `json:"validFrom"`
	ValidUntil      *time.Time   `json:"validUntil"`
	MaxRedemptions  int          `json:"maxRedemptions"`
	RedemptionCount int          `json:"redemptionCount"`
	IsActive        bool         `json:"isActive"`
	CreatedAt       time.Time    `json:"createdAt"`
}

type ListParams struct {
	Page       int
	PageSize   int
	ActiveOnly bool
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

func ToSummary(p *PromoCode) Summary {
	return Summary{
		Code:          p.Code,
		Description:   p.Description,
		DiscountType:  p.DiscountType,
		DiscountValue: p.DiscountValue.String(),
	}
}

func ToPromoResponse(p *PromoCode) PromoResponse {
	tierIDs := []string(p.TierIDs)
	if tierIDs == nil {
		tierIDs = []string{}
	}

	return PromoResponse{
		ID:              p.ID,
		Code:            p.Code,
		Description:     p.Description,
		DiscountType:    p.DiscountType,
		DiscountValue:   p.DiscountValue.String(),
		TierIDs:         tierIDs,
		PlanType:        p.PlanType,
		ValidFrom:       p.ValidFrom,
		ValidUntil:      p.ValidUntil,
		MaxRedemptions:  p.MaxRedemptions,
		RedemptionCount: p.RedemptionCount,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
	}
}

func ToPromoResponseList(codes []PromoCode) []PromoResponse {
	out := make([]PromoResponse, 0, len(codes))
	for i := range codes {
		out = append(out, ToPromoResponse(&codes[i]))
	}
	return out
}
