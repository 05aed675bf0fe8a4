// AngelaMos | 2026
// entity.go

package pricing

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryTalent   = "talent"
	CategoryManager  = "manager"
	CategoryProducer = "producer"
	CategoryAgent    = "agent"
)

var Categories = []string{
	CategoryTalent,
	CategoryManager,
	CategoryProducer,
	CategoryAgent,
}

func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

type Tier struct {
	ID                 string          `db:"id"`
	Name               string          `db:"name"`
	Category           string          `db:"category"`
	MonthlyPrice       decimal.Decimal `db:"monthly_price"`
	AnnualPrice        decimal.Decimal `db:"annual_price"`
	Features           Features        `db:"features"`
	MaxPhotos          int             `db:"max_photos"`
	MaxVideos          int             `db:"max_videos"`
	MaxAudio           int             `db:"max_audio"`
	MaxStorageMB       int             `db:"max_storage_mb"`
	MaxProjects        int             `db:"max_projects"`
	MaxApplications    int             `db:"max_applications"`
	HasAnalytics       bool            `db:"has_analytics"`
	HasMessaging       bool            `db:"has_messaging"`
	HasAIFeatures      bool            `db:"has_ai_features"`
	HasPrioritySupport bool            `db:"has_priority_support"`
	CanCreateJobs      bool            `db:"can_create_jobs"`
	CanViewProfiles    bool            `db:"can_view_profiles"`
	CanExportData      bool            `db:"can_export_data"`
	HasSocialFeatures  bool            `db:"has_social_features"`
	IsActive           bool            `db:"is_active"`
	SortOrder          int             `db:"sort_order"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

func (t *Tier) PriceFor(period BillingPeriod) decimal.Decimal {
	if period.IsAnnual() {
		return t.AnnualPrice
	}
	return t.MonthlyPrice
}

// Features is an ordered list persisted as a JSONB array.
type Features []string

func (f Features) Value() (driver.Value, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(f))
}

func (f *Features) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = Features{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan features: unsupported type %T", src)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan features: %w", err)
	}
	*f = out
	return nil
}
