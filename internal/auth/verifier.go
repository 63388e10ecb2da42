package auth

import (
	"crypto/subtle"
	"fmt"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// TokenVerifier decides whether a presented bearer token grants admin access.
// The mutation gateway only depends on this interface; the concrete credential
// source (env token, bcrypt hash, JWT secret) is chosen at wiring time.
type TokenVerifier interface {
	Verify(token string) bool
}

// StaticVerifier accepts a single fixed administrator token.
type StaticVerifier struct {
	token string
}

// NewStaticVerifier creates a StaticVerifier for the given admin token.
func NewStaticVerifier(token string) *StaticVerifier {
	return &StaticVerifier{token: token}
}

// Verify compares the presented token against the configured one in constant
// time. An empty configured token never matches.
func (v *StaticVerifier) Verify(token string) bool {
	if v.token == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(v.token), []byte(token)) == 1
}

// BcryptVerifier accepts the token whose bcrypt hash is configured, so the
// plaintext credential never has to appear in configuration.
type BcryptVerifier struct {
	hash []byte
}

// NewBcryptVerifier creates a BcryptVerifier for the given bcrypt hash.
func NewBcryptVerifier(hash string) *BcryptVerifier {
	return &BcryptVerifier{hash: []byte(hash)}
}

// Verify checks the presented token against the stored hash.
func (v *BcryptVerifier) Verify(token string) bool {
	if len(v.hash) == 0 || token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(v.hash, []byte(token)) == nil
}

// JWTVerifier accepts HS256 tokens signed with the configured secret whose
// claims carry "admin": true.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a JWTVerifier for the given signing secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token and checks the admin claim.
func (v *JWTVerifier) Verify(tokenString string) bool {
	if len(v.secret) == 0 || tokenString == "" {
		return false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	isAdmin, _ := claims["admin"].(bool)
	return isAdmin
}
