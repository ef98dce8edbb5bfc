package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/staffdesk/apiserver/types"
)

const defaultTokenTTL = 24 * time.Hour

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, wrong signing method, malformed structure or expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity data embedded in a session token. It mirrors the
// public projection of a user and never carries the password hash.
type Claims struct {
	UserID    int        `json:"userId"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	Rut       string     `json:"rut"`
	Role      types.Role `json:"role"`
	IsAdmin   bool       `json:"isAdmin"`
	BirthDate string     `json:"birthDate"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens. Tokens are
// self-contained: validity is decided from the signature and the embedded
// expiry alone, with no server-side state.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService validates the signing secret and returns a TokenService.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token signing secret is required")
	}
	return &TokenService{secret: []byte(secret), ttl: defaultTokenTTL}, nil
}

// Issue signs a token for the given user, valid for 24 hours.
func (ts *TokenService) Issue(user types.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Rut:       user.Rut,
		Role:      user.Role,
		IsAdmin:   user.IsAdmin,
		BirthDate: user.BirthDate.Format("2006-01-02"),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ts.secret)
}

// Verify checks the token's signature and expiry and returns the decoded
// claims. Any failure yields ErrInvalidToken; partial claims are never
// returned.
func (ts *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return ts.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CheckValidity reports whether the token verifies. It exists for
// liveness probes; authorization must re-derive identity via Verify.
func (ts *TokenService) CheckValidity(tokenString string) bool {
	_, err := ts.Verify(tokenString)
	return err == nil
}
