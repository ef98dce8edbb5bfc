package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/staffdesk/apiserver/types"
)

// RequestRepository handles persistence for account requests.
type RequestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) List(ctx context.Context) ([]types.AccountRequest, error) {
	const query = `
		SELECT id, email, rut, ignored, completed, created_at, updated_at
		FROM account_requests
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]types.AccountRequest, 0)
	for rows.Next() {
		var request types.AccountRequest
		if err := rows.Scan(
			&request.ID,
			&request.Email,
			&request.Rut,
			&request.Ignored,
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

func (r *RequestRepository) Get(ctx context.Context, id int) (types.AccountRequest, error) {
	const query = `
		SELECT id, email, rut, ignored, completed, created_at, updated_at
		FROM account_requests
		WHERE id = $1`
	var request types.AccountRequest
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.Email,
		&request.Rut,
		&request.Ignored,
		&request.Completed,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.AccountRequest{}, ErrNotFound
		}
		return types.AccountRequest{}, err
	}
	return request, nil
}

func (r *RequestRepository) Create(ctx context.Context, request types.AccountRequest) (types.AccountRequest, error) {
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now

	const query = `
		INSERT INTO account_requests (email, rut, ignored, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		request.Email,
		request.Rut,
		request.Ignored,
		request.Completed,
		request.CreatedAt,
		request.UpdatedAt,
	).Scan(&request.ID); err != nil {
		return types.AccountRequest{}, mapError(err)
	}
	return request, nil
}

func (r *RequestRepository) Update(ctx context.Context, request types.AccountRequest) (types.AccountRequest, error) {
	request.UpdatedAt = time.Now()

	const query = `
		UPDATE account_requests
		SET email = $1,
			rut = $2,
			ignored = $3,
			completed = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		request.Email,
		request.Rut,
		request.Ignored,
		request.Completed,
		request.UpdatedAt,
		request.ID,
	)
	if err != nil {
		return types.AccountRequest{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.AccountRequest{}, err
	}
	if affected == 0 {
		return types.AccountRequest{}, ErrNotFound
	}
	return request, nil
}
