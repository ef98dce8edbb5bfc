package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestNewVault_MissingPepper(t *testing.T) {
	_, err := NewVault("", bcrypt.MinCost)
	assert.Error(t, err)
}

func TestNewVault_CostOutOfRange(t *testing.T) {
	_, err := NewVault("pepper", bcrypt.MaxCost+1)
	assert.Error(t, err)

	_, err = NewVault("pepper", bcrypt.MinCost-1)
	assert.Error(t, err)
}

func TestVault_HashRoundTrip(t *testing.T) {
	vault, err := NewVault("pepper", bcrypt.MinCost)
	assert.NoError(t, err)

	hashed, err := vault.Hash("secret")
	assert.NoError(t, err)
	assert.NotEmpty(t, hashed)
	assert.NotEqual(t, "secret", hashed)

	assert.True(t, vault.Verify("secret", hashed))
	assert.False(t, vault.Verify("wrongpassword", hashed))
}

func TestVault_HashIsSalted(t *testing.T) {
	vault, err := NewVault("pepper", bcrypt.MinCost)
	assert.NoError(t, err)

	first, err := vault.Hash("secret")
	assert.NoError(t, err)
	second, err := vault.Hash("secret")
	assert.NoError(t, err)

	// Fresh salt per call: different strings, both verifiable.
	assert.NotEqual(t, first, second)
	assert.True(t, vault.Verify("secret", first))
	assert.True(t, vault.Verify("secret", second))
}

func TestVault_PepperBindsHash(t *testing.T) {
	vault1, err := NewVault("pepper-one", bcrypt.MinCost)
	assert.NoError(t, err)
	vault2, err := NewVault("pepper-two", bcrypt.MinCost)
	assert.NoError(t, err)

	hashed, err := vault1.Hash("secret")
	assert.NoError(t, err)

	assert.True(t, vault1.Verify("secret", hashed))
	assert.False(t, vault2.Verify("secret", hashed))
}

func TestVault_MalformedHash(t *testing.T) {
	vault, err := NewVault("pepper", bcrypt.MinCost)
	assert.NoError(t, err)

	assert.False(t, vault.Verify("secret", "not-a-bcrypt-hash"))
	assert.False(t, vault.Verify("secret", ""))
}
