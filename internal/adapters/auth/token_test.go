package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

func TestJWTTokens_Issue(t *testing.T) {
	secret := "test-secret"
	issuer, _ := NewJWTTokens(secret)

	token, err := issuer.Issue("user-123", "u@example.com", domain.RoleOrganiser, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, "organiser", claims.Role)
}

func TestJWTTokens_Verify_roundtrip(t *testing.T) {
	issuer, verifier := NewJWTTokens("round-trip-secret")

	token, err := issuer.Issue("user-9", "a@b.co", domain.RoleAdmin, time.Hour)
	require.NoError(t, err)

	userID, role, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", userID)
	assert.Equal(t, domain.RoleAdmin, role)
}

func TestJWTTokens_Verify_wrong_secret(t *testing.T) {
	issuer, _ := NewJWTTokens("secret-a")
	_, verifier := NewJWTTokens("secret-b")

	token, err := issuer.Issue("user-1", "u@example.com", domain.RoleUser, time.Hour)
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestJWTTokens_Verify_expired(t *testing.T) {
	issuer, verifier := NewJWTTokens("secret")

	token, err := issuer.Issue("user-1", "u@example.com", domain.RoleUser, -time.Minute)
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestJWTTokens_Verify_unknown_role_falls_back_to_user(t *testing.T) {
	issuer, verifier := NewJWTTokens("secret")

	token, err := issuer.Issue("user-1", "u@example.com", domain.Role("superuser"), time.Hour)
	require.NoError(t, err)

	_, role, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, role)
}
