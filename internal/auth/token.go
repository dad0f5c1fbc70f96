// Package auth validates bearer tokens issued by the external identity
// service and exposes the decoded identity to request handlers.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in token claims. Ordering matters: a higher role includes the
// permissions of the lower ones.
const (
	RoleStudent = 1
	RoleTeacher = 2
	RoleAdmin   = 3
)

// TokenValidator verifies access tokens. Signing and issuance belong to the
// identity service; only the shared secret is known here.
type TokenValidator struct {
	secret string
}

// NewTokenValidator creates a new token validator
func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: secret}
}

// ValidateAccessToken validates an access token and returns the userID and role
func (tv *TokenValidator) ValidateAccessToken(tokenString string) (int, int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tv.secret), nil
	})

	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return 0, 0, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, 0, fmt.Errorf("invalid token claims")
	}

	// Check token type
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "access" {
		return 0, 0, fmt.Errorf("token is not an access token")
	}

	// Extract userID (JWT claims decode numbers as float64)
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, 0, fmt.Errorf("user_id not found in token")
	}

	// Extract role (JWT claims decode numbers as float64)
	roleFloat, ok := claims["role"].(float64)
	if !ok {
		return 0, 0, fmt.Errorf("role not found in token")
	}

	return int(userIDFloat), int(roleFloat), nil
}
