package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/pos-ledger/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestJWT_GenerateAndParse_ConRole(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u-1", pkgjwt.RoleCashier, "pos-ledger-test", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, role, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, pkgjwt.RoleCashier, role)
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u-1", pkgjwt.RoleAdmin, "pos-ledger-test", -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u-1", pkgjwt.RoleAdmin, "pos-ledger-test", 60)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err)
}

func TestJWT_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "u-1", pkgjwt.RoleAdmin, "x", 60)
	assert.Error(t, err)
}

func TestValidRole(t *testing.T) {
	assert.True(t, pkgjwt.ValidRole("admin"))
	assert.True(t, pkgjwt.ValidRole("cajero"))
	assert.False(t, pkgjwt.ValidRole("bodeguero"))
	assert.False(t, pkgjwt.ValidRole(""))
}
