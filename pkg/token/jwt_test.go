package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 1, 7)

	tokenString, err := manager.GenerateToken(42, "mama01", "USER", "hospital_admin", 3)
	require.NoError(t, err)

	claims, err := manager.VerifyToken(tokenString)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, "mama01", claims.Username)
	require.Equal(t, "hospital_admin", claims.MemberType)
	require.Equal(t, uint(3), claims.HospitalID)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	manager := NewJWTManager("secret-a", 1, 7)
	other := NewJWTManager("secret-b", 1, 7)

	tokenString, err := manager.GenerateToken(1, "u", "USER", "user", 0)
	require.NoError(t, err)

	_, err = other.VerifyToken(tokenString)
	require.Error(t, err)
}

func TestVerifyTokenGarbage(t *testing.T) {
	manager := NewJWTManager("test-secret", 1, 7)
	_, err := manager.VerifyToken("not-a-jwt")
	require.Error(t, err)
}
