package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsAdminCredential(t *testing.T) {
	assert.True(t, IsAdminCredential("admin", "system"))
	assert.True(t, IsAdminCredential("ADMIN", "System"))
	assert.False(t, IsAdminCredential("admin", "system "))
	assert.False(t, IsAdminCredential("administrator", "system"))
	assert.False(t, IsAdminCredential("system", "admin"))
}

func TestSeed_ExactlyOneAdmin(t *testing.T) {
	users := Seed(time.Now())

	admins := 0
	for _, u := range users {
		if u.IsAdmin() {
			admins++
			assert.Equal(t, AdminID, u.ID)
			assert.False(t, u.IsBanned)
		}
	}
	assert.Equal(t, 1, admins)
}

func TestPublic_HidesRealName(t *testing.T) {
	u := Seed(time.Now())[1]

	assert.Empty(t, u.Public().RealName)
	assert.Equal(t, "John Doe", u.RealName)
}
