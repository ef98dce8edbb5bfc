package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/staffdesk/apiserver/types"
)

const userColumns = `id, full_name, email, rut, role, is_admin, password_hash,
		contract_key, picture_key, birth_date, team_id, created_at, updated_at`

// UserRepository handles persistence for staff accounts.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (types.User, error) {
	var user types.User
	var contractKey, pictureKey sql.NullString
	var teamID sql.NullInt64
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Rut,
		&user.Role,
		&user.IsAdmin,
		&user.PasswordHash,
		&contractKey,
		&pictureKey,
		&user.BirthDate,
		&teamID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return types.User{}, err
	}
	if contractKey.Valid {
		user.ContractKey = &contractKey.String
	}
	if pictureKey.Valid {
		user.PictureKey = &pictureKey.String
	}
	if teamID.Valid {
		id := int(teamID.Int64)
		user.TeamID = &id
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByRut(ctx context.Context, rut string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE rut = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, rut))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY id`
	return r.queryUsers(ctx, query)
}

// ListByTeam returns the guards currently rostered into the given team.
// Team.Guards is always derived through this query, never stored.
func (r *UserRepository) ListByTeam(ctx context.Context, teamID int) ([]types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE team_id = $1
		ORDER BY id`
	return r.queryUsers(ctx, query, teamID)
}

// ListUnassignedGuards returns guard accounts with no team.
func (r *UserRepository) ListUnassignedGuards(ctx context.Context) ([]types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = $1 AND team_id IS NULL
		ORDER BY id`
	return r.queryUsers(ctx, query, types.RoleGuard)
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]types.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (full_name, email, rut, role, is_admin, password_hash, birth_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.FullName,
		user.Email,
		user.Rut,
		user.Role,
		user.IsAdmin,
		user.PasswordHash,
		user.BirthDate,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		return types.User{}, mapError(err)
	}
	return user, nil
}

// Update writes the profile fields of the row. Roster membership and the
// password hash have dedicated writes and are not touched here.
func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now()

	const query = `
		UPDATE users
		SET full_name = $1,
			email = $2,
			rut = $3,
			role = $4,
			is_admin = $5,
			birth_date = $6,
			updated_at = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.FullName,
		user.Email,
		user.Rut,
		user.Role,
		user.IsAdmin,
		user.BirthDate,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return types.User{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

// UpdatePassword atomically replaces the credential hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $1, updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetContractKey attaches or replaces the user's contract document key.
func (r *UserRepository) SetContractKey(ctx context.Context, id int, key string) error {
	const query = `UPDATE users SET contract_key = $1, updated_at = $2 WHERE id = $3`
	return r.execOnRow(ctx, query, key, time.Now(), id)
}

// SetPictureKey attaches or replaces the user's profile picture key.
func (r *UserRepository) SetPictureKey(ctx context.Context, id int, key string) error {
	const query = `UPDATE users SET picture_key = $1, updated_at = $2 WHERE id = $3`
	return r.execOnRow(ctx, query, key, time.Now(), id)
}

func (r *UserRepository) execOnRow(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignTeam sets the user's team only if the user currently has none.
// The precondition rides on the UPDATE itself, so two concurrent
// assignments of the same user cannot both succeed. It reports whether
// the row was written; false means the user is missing or already
// assigned, which the caller disambiguates with a follow-up read.
func (r *UserRepository) AssignTeam(ctx context.Context, userID, teamID int) (bool, error) {
	const query = `
		UPDATE users
		SET team_id = $1, updated_at = $2
		WHERE id = $3 AND team_id IS NULL`
	result, err := r.db.ExecContext(ctx, query, teamID, time.Now(), userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ClearTeam removes the user from their team only if they have one.
// Same conditional-write contract as AssignTeam.
func (r *UserRepository) ClearTeam(ctx context.Context, userID int) (bool, error) {
	const query = `
		UPDATE users
		SET team_id = NULL, updated_at = $1
		WHERE id = $2 AND team_id IS NOT NULL`
	result, err := r.db.ExecContext(ctx, query, time.Now(), userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
