package utils

import (
	"fmt"
	"os"

	"github.com/dgrijalva/jwt-go"
)

// JwtCustomClaim is what the hosted auth provider puts in its access tokens.
type JwtCustomClaim struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.StandardClaims
}

const RoleAdmin = "admin"

func jwtSecret() []byte {
	return []byte(os.Getenv("AUTH_JWT_SECRET"))
}

// JwtValidate only verifies tokens; issuing them is the auth provider's job.
func JwtValidate(token string) (*jwt.Token, error) {
	secret := jwtSecret()
	if len(secret) == 0 {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is not configured")
	}
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return secret, nil
	})
}
