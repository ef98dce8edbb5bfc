package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/staffdesk/apiserver/types"
)

// TeamRepository handles persistence for guard teams.
type TeamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]types.Team, error) {
	const query = `
		SELECT id, name, supervisor_id, created_at, updated_at
		FROM teams
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]types.Team, 0)
	for rows.Next() {
		var team types.Team
		if err := rows.Scan(
			&team.ID,
			&team.Name,
			&team.SupervisorID,
			&team.CreatedAt,
			&team.UpdatedAt,
		); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *TeamRepository) Get(ctx context.Context, id int) (types.Team, error) {
	const query = `
		SELECT id, name, supervisor_id, created_at, updated_at
		FROM teams
		WHERE id = $1`
	var team types.Team
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.SupervisorID,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Team{}, ErrNotFound
		}
		return types.Team{}, err
	}
	return team, nil
}

func (r *TeamRepository) GetBySupervisor(ctx context.Context, supervisorID int) (types.Team, error) {
	const query = `
		SELECT id, name, supervisor_id, created_at, updated_at
		FROM teams
		WHERE supervisor_id = $1`
	var team types.Team
	err := r.db.QueryRowContext(ctx, query, supervisorID).Scan(
		&team.ID,
		&team.Name,
		&team.SupervisorID,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Team{}, ErrNotFound
		}
		return types.Team{}, err
	}
	return team, nil
}

func (r *TeamRepository) Create(ctx context.Context, team types.Team) (types.Team, error) {
	now := time.Now()
	team.CreatedAt = now
	team.UpdatedAt = now

	const query = `
		INSERT INTO teams (name, supervisor_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		team.Name,
		team.SupervisorID,
		team.CreatedAt,
		team.UpdatedAt,
	).Scan(&team.ID); err != nil {
		return types.Team{}, mapError(err)
	}
	return team, nil
}
