package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// UserData is the claims payload of the signed X-User-Data blob the
// gateway attaches to authenticated requests. The user id travels as
// a dedicated claim; issuers that only set the registered sub claim
// are still accepted via the fallback in ParseUserData.
type UserData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Admin  bool   `json:"admin"`
	jwt.RegisteredClaims
}

// ParseUserData verifies and decodes the user-data blob.
func ParseUserData(token, secret string) (*UserData, error) {
	var claims UserData
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid user data token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid user data token")
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return &claims, nil
}
