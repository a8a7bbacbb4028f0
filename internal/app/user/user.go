/*
Package user contains the participant identity model.

A User is known to other members only by the persona name minted at registration.
The real name is private and only appears in the admin view.
*/
package user

import (
	"strings"
	"time"
)

// Role is the immutable role of an account.
type Role string

const (
	// RoleUser is a regular member.
	RoleUser Role = "USER"

	// RoleAdmin is the single moderation account.
	RoleAdmin Role = "ADMIN"
)

// AdminID is the identifier of the seeded admin account.
const AdminID = "u1"

// User represents a registered participant.
type User struct {
	// ID is unique and generated at registration.
	ID string `json:"id"`

	// Username is the oracle-generated persona name shown to everyone.
	Username string `json:"username"`

	// RealName is private and only exposed through the admin view.
	RealName string `json:"realName,omitempty"`

	// College is the participant's affiliation.
	College string `json:"college"`

	Role     Role      `json:"role"`
	IsBanned bool      `json:"isBanned"`
	JoinedAt time.Time `json:"joinedAt"`

	// AvatarSeed is an opaque string used only for deterministic avatar rendering.
	AvatarSeed string `json:"avatarSeed"`
}

// IsAdmin reports whether u has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Public returns a copy of u without private fields.
func (u User) Public() User {
	u.RealName = ""
	return u
}

// IsAdminCredential reports whether the login pair is the literal admin shortcut
// ("admin" / "system", case-insensitive).
func IsAdminCredential(realName, college string) bool {
	return strings.EqualFold(realName, "admin") && strings.EqualFold(college, "system")
}

// Seed returns the accounts present at process start. The first entry is the admin.
func Seed(now time.Time) []User {
	return []User{
		{ID: AdminID, Username: "Admin", RealName: "System Admin", College: "System", Role: RoleAdmin, JoinedAt: now, AvatarSeed: "admin"},
		{ID: "u2", Username: "Sarcastic Spleen", RealName: "John Doe", College: "Harvard Med", Role: RoleUser, JoinedAt: now, AvatarSeed: "seed2"},
		{ID: "u3", Username: "Captain Cortisol", RealName: "Jane Smith", College: "Johns Hopkins", Role: RoleUser, JoinedAt: now, AvatarSeed: "seed3"},
		{ID: "u4", Username: "Lady Lymphocyte", RealName: "Emily Blunt", College: "Stanford Medicine", Role: RoleUser, IsBanned: true, JoinedAt: now, AvatarSeed: "seed4"},
	}
}
