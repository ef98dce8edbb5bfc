package services

import "errors"

// Precondition and credential errors surfaced by the services. They are
// caller errors, safe to retry once the precondition is corrected, and are
// mapped to structured responses at the handler boundary.
var (
	// ErrInvalidCredentials covers both an unknown rut and a wrong
	// password. The two cases are deliberately indistinguishable so the
	// login endpoint cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPasswordMismatch is returned when the old password supplied to a
	// password change does not verify.
	ErrPasswordMismatch = errors.New("old password does not match")

	// ErrAlreadyAssigned is returned when assigning a guard that already
	// belongs to a team. There is no transfer: remove first, then assign.
	ErrAlreadyAssigned = errors.New("user already belongs to a team")

	// ErrNotAssigned is returned when removing a guard that has no team.
	ErrNotAssigned = errors.New("user does not belong to any team")
)
