package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/staffdesk/apiserver/types"
)

// PayslipRequestRepository handles persistence for payslip petitions.
type PayslipRequestRepository struct {
	db *sql.DB
}

func NewPayslipRequestRepository(db *sql.DB) *PayslipRequestRepository {
	return &PayslipRequestRepository{db: db}
}

func (r *PayslipRequestRepository) List(ctx context.Context) ([]types.PayslipRequest, error) {
	const query = `
		SELECT id, user_id, message, completed, created_at, updated_at
		FROM payslip_requests
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]types.PayslipRequest, 0)
	for rows.Next() {
		var request types.PayslipRequest
		if err := rows.Scan(
			&request.ID,
			&request.UserID,
			&request.Message,
			&request.Completed,
			&request.CreatedAt,
			&request.UpdatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *PayslipRequestRepository) Get(ctx context.Context, id int) (types.PayslipRequest, error) {
	const query = `
		SELECT id, user_id, message, completed, created_at, updated_at
		FROM payslip_requests
		WHERE id = $1`
	var request types.PayslipRequest
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.UserID,
		&request.Message,
		&request.Completed,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.PayslipRequest{}, ErrNotFound
		}
		return types.PayslipRequest{}, err
	}
	return request, nil
}

func (r *PayslipRequestRepository) Create(ctx context.Context, request types.PayslipRequest) (types.PayslipRequest, error) {
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now

	const query = `
		INSERT INTO payslip_requests (user_id, message, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		request.UserID,
		request.Message,
		request.Completed,
		request.CreatedAt,
		request.UpdatedAt,
	).Scan(&request.ID); err != nil {
		return types.PayslipRequest{}, mapError(err)
	}
	return request, nil
}

func (r *PayslipRequestRepository) Update(ctx context.Context, request types.PayslipRequest) (types.PayslipRequest, error) {
	request.UpdatedAt = time.Now()

	const query = `
		UPDATE payslip_requests
		SET user_id = $1,
			message = $2,
			completed = $3,
			updated_at = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		request.UserID,
		request.Message,
		request.Completed,
		request.UpdatedAt,
		request.ID,
	)
	if err != nil {
		return types.PayslipRequest{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.PayslipRequest{}, err
	}
	if affected == 0 {
		return types.PayslipRequest{}, ErrNotFound
	}
	return request, nil
}
