package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvToken, "")
	return home
}

func TestGetToken_NotLoggedIn(t *testing.T) {
	withHome(t)

	ti, err := GetToken()
	require.NoError(t, err)
	assert.Nil(t, ti)
}

func TestSetToken_RoundTrip(t *testing.T) {
	home := withHome(t)

	require.NoError(t, SetToken("Bearer abc123"))

	info, err := os.Stat(filepath.Join(home, ".tada", "credentials.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	ti, err := GetToken()
	require.NoError(t, err)
	require.NotNil(t, ti)
	assert.Equal(t, "abc123", ti.Token)
	assert.Equal(t, "file", ti.Source)
	assert.Nil(t, ti.ExpiresAt)

	require.NoError(t, DeleteToken())
	ti, err = GetToken()
	require.NoError(t, err)
	assert.Nil(t, ti)
}

func TestSetToken_Empty(t *testing.T) {
	withHome(t)
	for _, in := range []string{"", "   ", "  bearer  ", "Bearer", "BEARER \n", "Bearer    "} {
		assert.Error(t, SetToken(in), "%q", in)
	}

	ti, err := GetToken()
	require.NoError(t, err)
	assert.Nil(t, ti)
}

func TestStripBearer(t *testing.T) {
	assert.Equal(t, "abc", stripBearer("  Bearer   abc "))
	assert.Equal(t, "abc", stripBearer("BEARER abc"))
	assert.Equal(t, "bearerabc", stripBearer("bearerabc"))
	assert.Equal(t, "", stripBearer(" bEaReR "))
}

func TestGetToken_EnvWins(t *testing.T) {
	withHome(t)
	require.NoError(t, SetToken("from-file"))
	t.Setenv(EnvToken, "bearer from-env")

	ti, err := GetToken()
	require.NoError(t, err)
	assert.Equal(t, "from-env", ti.Token)
	assert.Equal(t, "env", ti.Source)
}

func TestSetToken_ReadsJWTExpiry(t *testing.T) {
	withHome(t)
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	tok := signed(t, jwt.MapClaims{"sub": "alice", "exp": exp.Unix()})

	require.NoError(t, SetToken(tok))

	ti, err := GetToken()
	require.NoError(t, err)
	require.NotNil(t, ti.ExpiresAt)
	assert.True(t, exp.Equal(*ti.ExpiresAt))
	assert.True(t, ti.Expired(time.Now()))
}

func TestClaims(t *testing.T) {
	claims, ok := Claims(signed(t, jwt.MapClaims{"sub": "alice"}))
	require.True(t, ok)
	assert.Equal(t, "alice", claims["sub"])

	_, ok = Claims("opaque-token")
	assert.False(t, ok)
}
