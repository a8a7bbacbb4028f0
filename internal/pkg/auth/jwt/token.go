package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// IdentityExpiration is the lifetime of an identity token.
	IdentityExpiration = 24 * time.Hour

	// TokenIssuer identifies the issuer of the token.
	TokenIssuer = "BioChat-Server"
)

var (
	// ErrTokenInvalid is returned for tokens that fail signature, expiry or shape checks.
	ErrTokenInvalid = errors.New("invalid or expired token")

	// ErrTokenSubject is returned when the subject claim does not name the user in the payload.
	ErrTokenSubject = errors.New("token subject does not match user id")
)

// GenerateToken signs an identity token for payload.ID with HS256 and the given lifetime.
// The user id is mirrored into the subject claim.
func GenerateToken(payload *Payload, secretKey string, duration time.Duration) (string, error) {
	if payload.ID == "" {
		return "", fmt.Errorf("%w: missing user id", ErrTokenInvalid)
	}

	now := time.Now()

	payload.StandardClaims = jwt.StandardClaims{
		Subject:   payload.ID,
		ExpiresAt: now.Add(duration).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    TokenIssuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	return token.SignedString([]byte(secretKey))
}

// ParseToken validates tokenString against secretKey and returns its identity claims.
// Tokens from another issuer, or whose subject differs from the user id, are rejected.
func ParseToken(tokenString string, secretKey string) (*Payload, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.ID == "" || !claims.VerifyIssuer(TokenIssuer, true) {
		return nil, ErrTokenInvalid
	}

	if claims.Subject != claims.ID {
		return nil, ErrTokenSubject
	}

	return claims, nil
}
