package types

import "time"

// Payslip records a salary-settlement PDF attached to a user.
// The file bytes live in object storage under ObjectKey.
type Payslip struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"userId" db:"user_id"`
	ObjectKey string    `json:"objectKey" db:"object_key"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
