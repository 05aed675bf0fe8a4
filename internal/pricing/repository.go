// AngelaMos | 2026
// repository.go

package pricing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/talentmarket/internal/core"
)

type Repository interface {
	ListActive(ctx context.Context, category string) ([]Tier, error)
	List(ctx context.Context) ([]Tier, error)
	GetByID(ctx context.Context, id string) (*Tier, error)
	Create(ctx context.Context, tier *Tier) error
	Update(ctx context.Context, tier *Tier) error
	Deactivate(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const tierColumns = `
	id, name, category, monthly_price, annual_price, features,
	max_photos, max_videos, max_audio, max_storage_mb, max_projects,
	max_applications, has_analytics, has_messaging, has_ai_features,
	has_priority_support, can_create_jobs, can_view_profiles,
	can_export_data, has_social_features, is_active, sort_order,
	created_at, updated_at`

func (r *repository) ListActive(
	ctx context.Context,
	category string,
) ([]Tier, error) {
	query := `SELECT ` + tierColumns + `
		FROM pricing_tiers
		WHERE is_active = TRUE AND ($1 = '' OR category = $1)
		ORDER BY sort_order, monthly_price, name`

	var tiers []Tier
	if err := r.db.SelectContext(ctx, &tiers, query, category); err != nil {
		return nil, fmt.Errorf("list active tiers: %w", err)
	}

	return tiers, nil
}

func (r *repository) List(ctx context.Context) ([]Tier, error) {
	query := `SELECT ` + tierColumns + `
		FROM pricing_tiers
		ORDER BY category, sort_order, monthly_price`

	var tiers []Tier
	if err := r.db.SelectContext(ctx, &tiers, query); err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}

	return tiers, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Tier, error) {
	query := `SELECT ` + tierColumns + ` FROM pricing_tiers WHERE id = $1`

	var tier Tier
	err := r.db.GetContext(ctx, &tier, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tier: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tier: %w", err)
	}

	return &tier, nil
}

func (r *repository) Create(ctx context.Context, tier *Tier) error {
	query := `
		INSERT INTO pricing_tiers (
			id, name, category, monthly_price, annual_price, features,
			max_photos, max_videos, max_audio, max_storage_mb, max_projects,
			max_applications, has_analytics, has_messaging, has_ai_features,
			has_priority_support, can_create_jobs, can_view_profiles,
			can_export_data, has_social_features, is_active, sort_order
		) VALUES (
			:id, :name, :category, :monthly_price, :annual_price, :features,
			:max_photos, :max_videos, :max_audio, :max_storage_mb, :max_projects,
			:max_applications, :has_analytics, :has_messaging, :has_ai_features,
			:has_priority_support, :can_create_jobs, :can_view_profiles,
			:can_export_data, :has_social_features, :is_active, :sort_order
		)
		RETURNING created_at, updated_at`

	err := r.namedGet(ctx, tier, query)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create tier: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create tier: %w", err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, tier *Tier) error {
	query := `
		UPDATE pricing_tiers SET
			name = :name,
			monthly_price = :monthly_price,
			annual_price = :annual_price,
			features = :features,
			max_photos = :max_photos,
			max_videos = :max_videos,
			max_audio = :max_audio,
			max_storage_mb = :max_storage_mb,
			max_projects = :max_projects,
			max_applications = :max_applications,
			has_analytics = :has_analytics,
			has_messaging = :has_messaging,
			has_ai_features = :has_ai_features,
			has_priority_support = :has_priority_support,
			can_create_jobs = :can_create_jobs,
			can_view_profiles = :can_view_profiles,
			can_export_data = :can_export_data,
			has_social_features = :has_social_features,
			is_active = :is_active,
			sort_order = :sort_order,
			updated_at = NOW()
		WHERE id = :id
		RETURNING created_at, updated_at`

	err := r.namedGet(ctx, tier, query)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update tier: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update tier: %w", err)
	}

	return nil
}

func (r *repository) Deactivate(ctx context.Context, id string) error {
	query := `
		UPDATE pricing_tiers
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate tier: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate tier: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("deactivate tier: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) namedGet(ctx context.Context, tier *Tier, query string) error {
	bound, args, err := r.db.BindNamed(query, tier)
	if err != nil {
		return err
	}
	return r.db.QueryRowxContext(ctx, bound, args...).StructScan(tier)
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
