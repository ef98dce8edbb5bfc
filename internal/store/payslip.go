package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/staffdesk/apiserver/types"
)

// PayslipRepository handles persistence for payslip documents.
type PayslipRepository struct {
	db *sql.DB
}

func NewPayslipRepository(db *sql.DB) *PayslipRepository {
	return &PayslipRepository{db: db}
}

func (r *PayslipRepository) Get(ctx context.Context, id int) (types.Payslip, error) {
	const query = `
		SELECT id, user_id, object_key, created_at, updated_at
		FROM payslips
		WHERE id = $1`
	var slip types.Payslip
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&slip.ID,
		&slip.UserID,
		&slip.ObjectKey,
		&slip.CreatedAt,
		&slip.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Payslip{}, ErrNotFound
		}
		return types.Payslip{}, err
	}
	return slip, nil
}

// GetByKey looks a payslip up by its object key, used to keep repeated
// uploads of the same file idempotent.
func (r *PayslipRepository) GetByKey(ctx context.Context, objectKey string) (types.Payslip, error) {
	const query = `
		SELECT id, user_id, object_key, created_at, updated_at
		FROM payslips
		WHERE object_key = $1`
	var slip types.Payslip
	err := r.db.QueryRowContext(ctx, query, objectKey).Scan(
		&slip.ID,
		&slip.UserID,
		&slip.ObjectKey,
		&slip.CreatedAt,
		&slip.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Payslip{}, ErrNotFound
		}
		return types.Payslip{}, err
	}
	return slip, nil
}

func (r *PayslipRepository) ListByUser(ctx context.Context, userID int) ([]types.Payslip, error) {
	const query = `
		SELECT id, user_id, object_key, created_at, updated_at
		FROM payslips
		WHERE user_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slips := make([]types.Payslip, 0)
	for rows.Next() {
		var slip types.Payslip
		if err := rows.Scan(
			&slip.ID,
			&slip.UserID,
			&slip.ObjectKey,
			&slip.CreatedAt,
			&slip.UpdatedAt,
		); err != nil {
			return nil, err
		}
		slips = append(slips, slip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slips, nil
}

func (r *PayslipRepository) Create(ctx context.Context, slip types.Payslip) (types.Payslip, error) {
	now := time.Now()
	slip.CreatedAt = now
	slip.UpdatedAt = now

	const query = `
		INSERT INTO payslips (user_id, object_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		slip.UserID,
		slip.ObjectKey,
		slip.CreatedAt,
		slip.UpdatedAt,
	).Scan(&slip.ID); err != nil {
		return types.Payslip{}, mapError(err)
	}
	return slip, nil
}

func (r *PayslipRepository) Update(ctx context.Context, slip types.Payslip) (types.Payslip, error) {
	slip.UpdatedAt = time.Now()

	const query = `
		UPDATE payslips
		SET user_id = $1,
			object_key = $2,
			updated_at = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(
		ctx,
		query,
		slip.UserID,
		slip.ObjectKey,
		slip.UpdatedAt,
		slip.ID,
	)
	if err != nil {
		return types.Payslip{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Payslip{}, err
	}
	if affected == 0 {
		return types.Payslip{}, ErrNotFound
	}
	return slip, nil
}
