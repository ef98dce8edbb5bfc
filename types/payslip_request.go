package types

import "time"

// PayslipRequest is a staff member's petition to have payslip documents
// uploaded. Operators mark it completed once the files are attached.
type PayslipRequest struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"userId" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	Completed bool      `json:"completed" db:"completed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
