package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/staffdesk/apiserver/types"
	"github.com/stretchr/testify/assert"
)

func testUser() types.User {
	return types.User{
		ID:        7,
		FullName:  "Juan Soto",
		Email:     "juan.soto@example.com",
		Rut:       "11111111-1",
		Role:      types.RoleGuard,
		IsAdmin:   false,
		BirthDate: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewTokenService_MissingSecret(t *testing.T) {
	_, err := NewTokenService("")
	assert.Error(t, err)
}

func TestTokenService_RoundTrip(t *testing.T) {
	ts, err := NewTokenService("secret")
	assert.NoError(t, err)

	token, err := ts.Issue(testUser())
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ts.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "Juan Soto", claims.FullName)
	assert.Equal(t, "11111111-1", claims.Rut)
	assert.Equal(t, types.RoleGuard, claims.Role)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, "1990-04-12", claims.BirthDate)
	assert.Equal(t, "7", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenService_Expired(t *testing.T) {
	ts, err := NewTokenService("secret")
	assert.NoError(t, err)
	ts.ttl = -time.Hour

	token, err := ts.Issue(testUser())
	assert.NoError(t, err)

	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, ts.CheckValidity(token))
}

func TestTokenService_WrongSecret(t *testing.T) {
	ts1, err := NewTokenService("secret-one")
	assert.NoError(t, err)
	ts2, err := NewTokenService("secret-two")
	assert.NoError(t, err)

	token, err := ts1.Issue(testUser())
	assert.NoError(t, err)

	_, err = ts2.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Malformed(t *testing.T) {
	ts, err := NewTokenService("secret")
	assert.NoError(t, err)

	_, err = ts.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, ts.CheckValidity("not.a.token"))
	assert.False(t, ts.CheckValidity(""))
}

func TestTokenService_RejectsForeignSigningMethod(t *testing.T) {
	ts, err := NewTokenService("secret")
	assert.NoError(t, err)

	// A token signed with "none" must not verify even though it parses.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	valid := ts.CheckValidity(token)
	assert.False(t, valid)
}
