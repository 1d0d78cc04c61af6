package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/donaciones-api/pkg/jwt"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := pkgjwt.Generate("secret", "u-1", pkgjwt.RoleRevisor, "auth", 5)
	require.NoError(t, err)

	userID, role, err := pkgjwt.Parse("secret", "auth", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, pkgjwt.RoleRevisor, role)
}

func TestParse_Rechazos(t *testing.T) {
	tok, err := pkgjwt.Generate("secret", "u-1", pkgjwt.RoleAdmin, "auth", 5)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro", "auth", tok)
	assert.Error(t, err, "firma incorrecta")

	_, _, err = pkgjwt.Parse("secret", "otro-emisor", tok)
	assert.Error(t, err, "emisor distinto")

	expired, err := pkgjwt.Generate("secret", "u-1", pkgjwt.RoleAdmin, "auth", -1)
	require.NoError(t, err)
	_, _, err = pkgjwt.Parse("secret", "auth", expired)
	assert.Error(t, err, "token expirado")

	_, err = pkgjwt.Generate("", "u-1", pkgjwt.RoleAdmin, "auth", 5)
	assert.Error(t, err)
}
