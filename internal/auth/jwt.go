// Package auth provides JWT issuing/verification, password hashing and
// confirmation code generation.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// JWTManager signs and validates the session tokens used by the API.
type JWTManager struct {
	secretKey string        // Secret key for HMAC signing (from environment)
	duration  time.Duration // How long tokens are valid (7 days for this app)
}

// Claims is the custom JWT payload. IsAdmin is set only by the admin
// login flow and gates the moderation routes.
type Claims struct {
	UserID               string `json:"id"`                // MongoDB ObjectID as hex string
	Email                string `json:"email,omitempty"`   // User email at issue time
	IsAdmin              bool   `json:"isAdmin,omitempty"` // Set for admin sessions only
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt, etc.
}

// NewJWTManager returns a configured JWTManager.
func NewJWTManager(secretKey string, duration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey: secretKey,
		duration:  duration,
	}
}

// GenerateToken issues a signed token for a user session.
func (m *JWTManager) GenerateToken(userID bson.ObjectID, email string, isAdmin bool) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.duration)

	claims := &Claims{
		UserID:  userID.Hex(),
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// VerifyToken parses and validates a token and returns its claims.
func (m *JWTManager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
