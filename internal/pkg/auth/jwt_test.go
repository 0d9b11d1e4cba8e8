package auth

import (
	"testing"
	"time"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "parivartan.test",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestJWT()
	user := &models.User{ID: 7, Email: "asha@example.org", Role: models.RoleMember}

	pair, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := svc.ValidateAndExtractClaims(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, models.RoleMember, claims.Role)
	assert.Equal(t, PurposeAccess, claims.Purpose)

	_, err = svc.ValidateChallengeToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestChallengeTokenCannotAuthenticate(t *testing.T) {
	svc := newTestJWT()
	token, err := svc.GenerateChallengeToken(&models.User{ID: 3, Email: "x@example.org", Role: models.RoleViewer})
	require.NoError(t, err)

	claims, err := svc.ValidateChallengeToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.UserID)

	_, err = svc.ValidateAndExtractClaims(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	svc := newTestJWT()
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.GenerateChallengeToken(&models.User{ID: 3, Email: "x@example.org"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateChallengeToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestWrongSecret(t *testing.T) {
	pair, err := newTestJWT().GenerateTokenPair(&models.User{ID: 1, Email: "a@example.org"})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Minute})
	_, err = other.ValidateAndExtractClaims(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	tok, err = ExtractBearerToken("raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", tok)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	for _, header := range []string{"Bearer   ", "Bearer", "bearer", " BEARER \t"} {
		_, err = ExtractBearerToken(header)
		assert.ErrorIs(t, err, ErrInvalidFormat, "header %q", header)
	}

	tok, err = ExtractBearerToken("bearer  abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := HashPassword("passw0rd")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "passw0rd"))
	assert.False(t, CheckPassword(hash, "wrong"))

	tok, err := GenerateSecureToken(16)
	require.NoError(t, err)
	assert.Len(t, tok, 32)
}
