package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")

	tokenString, expiresAt, err := svc.GenerateAccessToken("user-1", user.RoleApprover)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)
	assert.NotZero(t, expiresAt)

	token, err := jwtauth.VerifyToken(svc.JWTAuth(), tokenString)
	require.NoError(t, err)

	ctx := jwtauth.NewContext(context.Background(), token, nil)
	principal, err := PrincipalFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.UserID)
	assert.Equal(t, user.RoleApprover, principal.Role)
}

func TestGenerateAccessToken_InvalidRole(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")

	_, _, err := svc.GenerateAccessToken("user-1", user.Role("owner"))
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestGenerateAccessToken_BadExpiration(t *testing.T) {
	svc := NewJWTService("test-secret", "soon")

	_, _, err := svc.GenerateAccessToken("user-1", user.RoleHR)
	assert.Error(t, err)
}

func TestPrincipalFromContext_NoToken(t *testing.T) {
	_, err := PrincipalFromContext(context.Background())
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}
