// Package auth verifies caller credentials for the admin surface. There is
// deliberately no accept-all implementation: every Authenticator must actually
// check the credential it is given.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Principal identifies an authenticated caller.
type Principal struct {
	Subject string
	Email   string
}

// Authenticator validates a bearer credential and resolves its principal.
type Authenticator interface {
	Authenticate(token string) (Principal, error)
}

// Claims carried by boxoffice-issued tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256-signed tokens.
type JWTAuthenticator struct {
	secret []byte
}

func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret)}
}

func (a *JWTAuthenticator) Authenticate(tokenString string) (Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return Principal{}, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Principal{}, ErrInvalidCredentials
	}
	return Principal{Subject: claims.Subject, Email: claims.Email}, nil
}

// IssueToken signs a token for the given subject, mainly for operator tooling
// and tests.
func (a *JWTAuthenticator) IssueToken(subject, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "boxoffice",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
