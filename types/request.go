package types

import "time"

// AccountRequest is an intake record asking for a staff account to be
// created. Email and rut are unique so the same person cannot queue twice.
type AccountRequest struct {
	ID    int    `json:"id" db:"id"`
	Email string `json:"email" db:"email"`
	Rut   string `json:"rut" db:"rut"`

	// Ignored is set when an operator dismisses the request.
	Ignored bool `json:"ignored" db:"ignored"`

	// Completed is set once an account has been created for the requester.
	Completed bool `json:"completed" db:"completed"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
