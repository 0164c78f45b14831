package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by API tokens. Admin is the custom claim granted out of band
// via the grantadmin CLI; it is independent from Role.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Admin  bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// GenerateJWT creates a signed token for a given user, valid for 24 hours.
func GenerateJWT(secret []byte, userID, role string, admin bool) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("JWT secret is not configured")
	}
	claims := &Claims{
		UserID: userID,
		Role:   role,
		Admin:  admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateJWT parses and verifies a token string.
func ValidateJWT(secret []byte, tokenStr string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, errors.New("JWT secret is not configured")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
