package types

import "time"

// Team is a guard roster led by a single supervisor.
type Team struct {
	// ID is the unique identifier of the team.
	ID int `json:"id" db:"id"`

	// Name is the team's display name.
	Name string `json:"name" db:"name"`

	// SupervisorID references the account that leads the team.
	SupervisorID int `json:"supervisorId" db:"supervisor_id"`

	// Guards are the accounts currently rostered into the team. The set is
	// derived from users.team_id on read; it is never written directly.
	Guards []User `json:"guards,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
