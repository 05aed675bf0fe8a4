// AngelaMos | 2026
// repository.go

package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/talentmarket/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id string) (*Payment, error)
	GetByIntentID(ctx context.Context, intentID string) (*Payment, error)
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*Payment, error)
	UpdateStatus(ctx context.Context, id string, status Status, reason *string) error
	RecordRefund(ctx context.Context, id string, refunded decimal.Decimal, status Status) error
	List(ctx context.Context, params ListParams) ([]Payment, int, error)
	Totals(ctx context.Context) (*Totals, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const paymentColumns = `
	id, user_id, tier_id, is_annual, amount, currency, promo_code_id,
	promo_code, description, provider_intent_id, client_secret,
	idempotency_key, status, refunded_amount, failure_reason,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (
			id, user_id, tier_id, is_annual, amount, currency, promo_code_id,
			promo_code, description, provider_intent_id, client_secret,
			idempotency_key, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING refunded_amount, created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		p.ID, p.UserID, p.TierID, p.IsAnnual, p.Amount, p.Currency, p.PromoCodeID,
		p.PromoCode, p.Description, p.ProviderIntentID, p.ClientSecret,
		p.IdempotencyKey, p.Status,
	)
	if err := row.Scan(&p.RefundedAmount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	return nil
}

func (r *repository) get(ctx context.Context, op, where string, args ...any) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE ` + where

	var p Payment
	err := r.db.GetContext(ctx, &p, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Payment, error) {
	return r.get(ctx, "get payment", "id = $1", id)
}

func (r *repository) GetByIntentID(ctx context.Context, intentID string) (*Payment, error) {
	return r.get(ctx, "get payment by intent", "provider_intent_id = $1", intentID)
}

func (r *repository) GetByIdempotencyKey(
	ctx context.Context,
	userID, key string,
) (*Payment, error) {
	return r.get(ctx, "get payment by idempotency key",
		"user_id = $1 AND idempotency_key = $2", userID, key)
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	id string,
	status Status,
	reason *string,
) error {
	query := `
		UPDATE payments
		SET status = $2, failure_reason = $3, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update payment status", query, id, status, reason)
}

func (r *repository) RecordRefund(
	ctx context.Context,
	id string,
	refunded decimal.Decimal,
	status Status,
) error {
	query := `
		UPDATE payments
		SET refunded_amount = $2, status = $3, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "record refund", query, id, refunded, status)
}

func (r *repository) execOne(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Payment, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	if params.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, params.UserID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM payments WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM payments
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		paymentColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var payments []Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	return payments, total, nil
}

func (r *repository) Totals(ctx context.Context) (*Totals, error) {
	query := `
		SELECT
			COUNT(*) AS count,
			COUNT(*) FILTER (WHERE status IN ('succeeded', 'partially_refunded', 'refunded')) AS succeeded,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COALESCE(SUM(amount) FILTER (
				WHERE status IN ('succeeded', 'partially_refunded', 'refunded')), 0) AS gross_revenue,
			COALESCE(SUM(refunded_amount), 0) AS refunded_amount
		FROM payments`

	var t Totals
	if err := r.db.GetContext(ctx, &t, query); err != nil {
		return nil, fmt.Errorf("payment totals: %w", err)
	}

	return &t, nil
}
