package middleware

import (
	"testing"
	"time"

	"inventory-system/pkg/service"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// signToken выпускает токен так же, как сервис авторизации: HS512 и JwtCustomClaim.
func signToken(t *testing.T, secret string, claims service.JwtCustomClaim) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func accessToken(t *testing.T, secret string, userID uint64, roles []string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	return signToken(t, secret, service.JwtCustomClaim{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
}

func refreshToken(t *testing.T, secret string, userID uint64) string {
	t.Helper()
	now := time.Now()
	return signToken(t, secret, service.JwtCustomClaim{
		UserID:         userID,
		IsRefreshToken: true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	})
}
