package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/staffdesk/apiserver/internal/auth"
	"github.com/staffdesk/apiserver/internal/store"
)

// AuthService composes the credential vault, the user repository and the
// token service into the login, token-check and password-change flows.
type AuthService struct {
	repo   UserRepository
	vault  *auth.Vault
	tokens *auth.TokenService
}

func NewAuthService(repo UserRepository, vault *auth.Vault, tokens *auth.TokenService) *AuthService {
	return &AuthService{repo: repo, vault: vault, tokens: tokens}
}

// Login verifies the rut/password pair and returns a signed session token.
// An unknown rut and a wrong password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, rut, password string) (string, error) {
	user, err := s.repo.GetByRut(ctx, rut)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up user: %w", err)
	}

	if !s.vault.Verify(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user)
}

// ChangePassword verifies the old password and persists a hash of the new
// one. The hash is replaced in a single-column write.
func (s *AuthService) ChangePassword(ctx context.Context, id int, oldPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !s.vault.Verify(oldPassword, user.PasswordHash) {
		return ErrPasswordMismatch
	}

	hashed, err := s.vault.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, hashed)
}

// CheckToken reports whether the token is currently valid. Verification
// failures collapse to false; this never errors.
func (s *AuthService) CheckToken(token string) bool {
	return s.tokens.CheckValidity(token)
}

// IsAdmin reports whether the account has the administrator flag.
func (s *AuthService) IsAdmin(ctx context.Context, id int) (bool, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}
