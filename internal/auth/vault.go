package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Vault derives and verifies password hashes. Every plaintext is extended
// with a process-wide secret pepper before bcrypt is applied, so a leaked
// database alone is not enough to mount an offline attack.
//
// The pepper and cost are fixed at construction and the Vault holds no
// mutable state, so a single instance is safe for concurrent use.
type Vault struct {
	pepper string
	cost   int
}

// NewVault validates the hashing configuration and returns a Vault.
// A missing pepper or an out-of-range cost is a startup error: the caller
// must abort rather than fall back to hashing without a pepper.
func NewVault(pepper string, cost int) (*Vault, error) {
	if pepper == "" {
		return nil, errors.New("password pepper is required")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Vault{pepper: pepper, cost: cost}, nil
}

// Hash returns a bcrypt hash of the peppered plaintext. bcrypt salts every
// call, so two hashes of the same plaintext differ while both verify.
func (v *Vault) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext+v.pepper), v.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hashed. The comparison is
// constant-time inside bcrypt. A malformed or corrupt hash is treated as a
// mismatch, never as an error.
func (v *Vault) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext+v.pepper)) == nil
}
