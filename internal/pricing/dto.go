// AngelaMos | 2026
// dto.go

package pricing

import (
	"github.com/shopspring/decimal"
)

// TierResponse is the wire shape of a pricing tier. Prices travel as strings.
type TierResponse struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Category           string   `json:"category"`
	Price              string   `json:"price"`
	AnnualPrice        string   `json:"annualPrice"`
	Features           []string `json:"features"`
	MaxPhotos          int      `json:"maxPhotos"`
	MaxVideos          int      `json:"maxVideos"`
	MaxAudio           int      `json:"maxAudio"`
	MaxStorageMB       int      `json:"maxStorageMb"`
	MaxProjects        int      `json:"maxProjects"`
	MaxApplications    int      `json:"maxApplications"`
	HasAnalytics       bool     `json:"hasAnalytics"`
	HasMessaging       bool     `json:"hasMessaging"`
	HasAIFeatures      bool     `json:"hasAiFeatures"`
	HasPrioritySupport bool     `json:"hasPrioritySupport"`
	CanCreateJobs      bool     `json:"canCreateJobs"`
	CanViewProfiles    bool     `json:"canViewProfiles"`
	CanExportData      bool     `json:"canExportData"`
	HasSocialFeatures  bool     `json:"hasSocialFeatures"`
	IsActive           bool     `json:"isActive"`
	SortOrder          int      `json:"sortOrder"`
}

type Limits struct {
	MaxPhotos       int `json:"maxPhotos"       validate:"min=0"`
	MaxVideos       int `json:"maxVideos"       validate:"min=0"`
	MaxAudio        int `json:"maxAudio"        validate:"min=0"`
	MaxStorageMB    int `json:"maxStorageMb"    validate:"min=0"`
	MaxProjects     int `json:"maxProjects"     validate:"min=0"`
	MaxApplications int `json:"maxApplications" validate:"min=0"`
}

type Capabilities struct {
	HasAnalytics       bool `json:"hasAnalytics"`
	HasMessaging       bool `json:"hasMessaging"`
	HasAIFeatures      bool `json:"hasAiFeatures"`
	HasPrioritySupport bool `json:"hasPrioritySupport"`
	CanCreateJobs      bool `json:"canCreateJobs"`
	CanViewProfiles    bool `json:"canViewProfiles"`
	CanExportData      bool `json:"canExportData"`
	HasSocialFeatures  bool `json:"hasSocialFeatures"`
}

type CreateTierRequest struct {
	Name         string          `json:"name"         validate:"required,min=1,max=100"`
	Category     string          `json:"category"     validate:"required,oneof=talent manager producer agent"`
	MonthlyPrice decimal.Decimal `json:"price"`
	AnnualPrice  decimal.Decimal `json:"annualPrice"`
	Features     []string        `json:"features"     validate:"max=50,dive,min=1,max=200"`
	Limits       Limits          `json:"limits"`
	Capabilities Capabilities    `json:"capabilities"`
	SortOrder    int             `json:"sortOrder"    validate:"min=0"`
}

type UpdateTierRequest struct {
	Name         *string          `json:"name,omitempty"         validate:"omitempty,min=1,max=100"`
	MonthlyPrice *decimal.Decimal `json:"price,omitempty"`
	AnnualPrice  *decimal.Decimal `json:"annualPrice,omitempty"`
	Features     []string         `json:"features,omitempty"     validate:"omitempty,max=50,dive,min=1,max=200"`
	Limits       *Limits          `json:"limits,omitempty"`
	Capabilities *Capabilities    `json:"capabilities,omitempty"`
	SortOrder    *int             `json:"sortOrder,omitempty"    validate:"omitempty,min=0"`
	IsActive     *bool            `json:"isActive,omitempty"`
}

func ToTierResponse(t *Tier) TierResponse {
	features := []string(t.Features)
	if features == nil {
		features = []string{}
	}

	return TierResponse{
		ID:                 t.ID,
		Name:               t.Name,
		Category:           t.Category,
		Price:              t.MonthlyPrice.StringFixed(2),
		AnnualPrice:        t.AnnualPrice.StringFixed(2),
		Features:           features,
		MaxPhotos:          t.MaxPhotos,
		MaxVideos:          t.MaxVideos,
		MaxAudio:           t.MaxAudio,
		MaxStorageMB:       t.MaxStorageMB,
		MaxProjects:        t.MaxProjects,
		MaxApplications:    t.MaxApplications,
		HasAnalytics:       t.HasAnalytics,
		HasMessaging:       t.HasMessaging,
		HasAIFeatures:      t.HasAIFeatures,
		HasPrioritySupport: t.HasPrioritySupport,
		CanCreateJobs:      t.CanCreateJobs,
		CanViewProfiles:    t.CanViewProfiles,
		CanExportData:      t.CanExportData,
		HasSocialFeatures:  t.HasSocialFeatures,
		IsActive:           t.IsActive,
		SortOrder:          t.SortOrder,
	}
}

func ToTierResponseList(tiers []Tier) []TierResponse {
	responses := make([]TierResponse, 0, len(tiers))
	for i := range tiers {
		responses = append(responses, ToTierResponse(&tiers[i]))
	}
	return responses
}

func (l Limits) apply(t *Tier) {
	t.MaxPhotos = l.MaxPhotos
	t.MaxVideos = l.MaxVideos
	t.MaxAudio = l.MaxAudio
	t.MaxStorageMB = l.MaxStorageMB
	t.MaxProjects = l.MaxProjects
	t.MaxApplications = l.MaxApplications
}

func (c Capabilities) apply(t *Tier) {
	t.HasAnalytics = c.HasAnalytics
	t.HasMessaging = c.HasMessaging
	t.HasAIFeatures = c.HasAIFeatures
	t.HasPrioritySupport = c.HasPrioritySupport
	t.CanCreateJobs = c.CanCreateJobs
	t.CanViewProfiles = c.CanViewProfiles
	t.CanExportData = c.CanExportData
	t.HasSocialFeatures = c.HasSocialFeatures
}
