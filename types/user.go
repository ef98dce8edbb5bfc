package types

import "time"

// Role classifies a staff account.
type Role string

const (
	// RoleGuard marks accounts that can be rostered into a team.
	RoleGuard Role = "GUARDIA"

	// RoleSupervisor marks accounts that can lead a team.
	RoleSupervisor Role = "SUPERVISOR"

	// RoleOffice marks administrative staff that never appear on a roster.
	RoleOffice Role = "OFICINA"
)

// User represents a staff account.
// It contains identity, role, document references and roster state.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// FullName is the user's full legal name. Unique across the system.
	FullName string `json:"fullName" db:"full_name"`

	// Email is the user's email address. Unique across the system.
	Email string `json:"email" db:"email"`

	// Rut is the national identity number used as the login username.
	// Unique across the system.
	Rut string `json:"rut" db:"rut"`

	// Role indicates the staff category of the account.
	Role Role `json:"role" db:"role"`

	// IsAdmin grants access to administrative endpoints.
	IsAdmin bool `json:"isAdmin" db:"is_admin"`

	// PasswordHash stores the peppered bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// ContractKey is the object-storage key of the user's contract PDF,
	// nil when no contract has been attached.
	ContractKey *string `json:"contractKey,omitempty" db:"contract_key"`

	// PictureKey is the object-storage key of the user's profile picture,
	// nil when none has been uploaded.
	PictureKey *string `json:"pictureKey,omitempty" db:"picture_key"`

	// BirthDate is the user's date of birth.
	BirthDate time.Time `json:"birthDate" db:"birth_date"`

	// TeamID references the team the user is rostered into as a guard.
	// nil means unassigned. A user belongs to at most one team.
	TeamID *int `json:"teamId,omitempty" db:"team_id"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
