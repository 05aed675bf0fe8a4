// AngelaMos | 2026
// repository.go

package promo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/talentmarket/internal/core"
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (*PromoCode, error)
	GetByID(ctx context.Context, id string) (*PromoCode, error)
	List(ctx context.Context, params ListParams) ([]PromoCode, int, error)
	Create(ctx context.Context, p *PromoCode) error
	Update(ctx context.Context, p *PromoCode) error
	Deactivate(ctx context.Context, id string) error
	HasRedeemed(ctx context.Context, promoID, userID string) (bool, error)
	Redeem(ctx context.Context, r *Redemption) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const promoColumns = `
	id, code, description, discount_type, discount_value, tier_ids,
	plan_type, valid_from, valid_until, max_redemptions, redemption_count,
	is_active, created_at, updated_at`

func (r *repository) GetByCode(ctx context.Context, code string) (*PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes WHERE code = $1`

	var p PromoCode
	err := r.db.GetContext(ctx, &p, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get promo code: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get promo code: %w", err)
	}

	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes WHERE id = $1`

	var p PromoCode
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get promo code: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get promo code: %w", err)
	}

	return &p, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]PromoCode, int, error) {
	params.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM promo_codes WHERE (NOT $1 OR is_active)`
	if err := r.db.GetContext(ctx, &total, countQuery, params.ActiveOnly); err != nil {
		return nil, 0, fmt.Errorf("count promo codes: %w", err)
	}

	query := `SELECT ` + promoColumns + `
		FROM promo_codes
		WHERE (NOT $1 OR is_active)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var codes []PromoCode
	err := r.db.SelectContext(ctx, &codes, query,
		params.ActiveOnly, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list promo codes: %w", err)
	}

	return codes, total, nil
}

func (r *repository) Create(ctx context.Context, p *PromoCode) error {
	query := `
		INSERT INTO promo_codes (
			id, code, description, discount_type, discount_value, tier_ids,
			plan_type, valid_from, valid_until, max_redemptions, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING redemption_count, created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		p.ID, p.Code, p.Description, p.DiscountType, p.DiscountValue, p.TierIDs,
		p.PlanType, p.ValidFrom, p.ValidUntil, p.MaxRedemptions, p.IsActive,
	)
	if err := row.Scan(&p.RedemptionCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create promo code: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create promo code: %w", err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, p *PromoCode) error {
	query := `
		UPDATE promo_codes SET
			description = $2, discount_value = $3, tier_ids = $4, plan_type = $5,
			valid_from = $6, valid_until = $7, max_redemptions = $8,
			is_active = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &p.UpdatedAt, query,
		p.ID, p.Description, p.DiscountValue, p.TierIDs, p.PlanType,
		p.ValidFrom, p.ValidUntil, p.MaxRedemptions, p.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update promo code: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update promo code: %w", err)
	}

	return nil
}

func (r *repository) Deactivate(ctx context.Context, id string) error {
	query := `
		UPDATE promo_codes
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate promo code: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate promo code: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("deactivate promo code: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) HasRedeemed(
	ctx context.Context,
	promoID, userID string,
) (bool, error) {
	query := `SELECT EXISTS(
		SELECT 1 FROM promo_redemptions
		WHERE promo_code_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, promoID, userID); err != nil {
		return false, fmt.Errorf("check redemption: %w", err)
	}

	return exists, nil
}

// Redeem claims one use of the code. Run it inside the transaction that
// grants the tier so a failed grant does not burn a redemption.
func (r *repository) Redeem(ctx context.Context, red *Redemption) error {
	claim := `
		UPDATE promo_codes
		SET redemption_count = redemption_count + 1, updated_at = NOW()
		WHERE id = $1
		  AND (max_redemptions = 0 OR redemption_count < max_redemptions)`

	result, err := r.db.ExecContext(ctx, claim, red.PromoCodeID)
	if err != nil {
		return fmt.Errorf("claim redemption: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim redemption: %w", err)
	}
	if rows == 0 {
		return ErrExhausted
	}

	insert := `
		INSERT INTO promo_redemptions (id, promo_code_id, user_id, tier_id, payment_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING redeemed_at`

	err = r.db.GetContext(ctx, &red.RedeemedAt, insert,
		red.ID, red.PromoCodeID, red.UserID, red.TierID, red.PaymentID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrAlreadyUsed
		}
		return fmt.Errorf("record redemption: %w", err)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
