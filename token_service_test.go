package accounts_test

import (
	"testing"

	"github.com/finboard/go-accounts"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *accounts.TokenService {
	return accounts.NewTokenService([]byte("test-signing-key"), "test-issuer", nil)
}

func TestMintLocalToken(t *testing.T) {
	service := newTestTokenService()

	identity := accounts.Identity{UserID: "bob", Email: "bob@example.com"}

	token, err := service.MintLocalToken(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.UID)
	assert.Equal(t, "bob", claims.RegisteredClaims.Subject)
	assert.Equal(t, "test-issuer", claims.RegisteredClaims.Issuer)
	assert.Equal(t, string(accounts.TokenKindLocal), claims.Kind)
	assert.NotEmpty(t, claims.RegisteredClaims.ID)
}

func TestMintLocalTokenRequiresIdentity(t *testing.T) {
	service := newTestTokenService()

	_, err := service.MintLocalToken(accounts.Identity{})
	assert.Error(t, err)
}

func TestMintLocalTokenIsUniquePerMint(t *testing.T) {
	service := newTestTokenService()
	identity := accounts.Identity{UserID: "bob"}

	first, err := service.MintLocalToken(identity)
	require.NoError(t, err)
	second, err := service.MintLocalToken(identity)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestValidateRejectsForeignKey(t *testing.T) {
	service := newTestTokenService()
	other := accounts.NewTokenService([]byte("different-key"), "test-issuer", nil)

	token, err := other.MintLocalToken(accounts.Identity{UserID: "bob"})
	require.NoError(t, err)

	_, err = service.Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsUnsignedToken(t *testing.T) {
	service := newTestTokenService()

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &accounts.SessionClaims{
		UID: "bob",
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.Validate(raw)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	service := newTestTokenService()

	_, err := service.Validate("not-a-token")
	assert.Error(t, err)
}
