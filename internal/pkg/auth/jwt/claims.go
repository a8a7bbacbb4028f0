package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims issued at login.
type Payload struct {
	// StandardClaims carries expiry, issued-at and issuer.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the user identifier minted at registration (or the seeded admin id).
	ID string `json:"id"`

	// Role is a hint for clients choosing which navigation entries to show.
	// The server always re-reads the role and ban flag from the store.
	Role string `json:"role"`
}
