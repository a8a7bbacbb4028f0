package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("API_KEY", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Empty(t, cfg.GenAIAPIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.GenAIModel)
	assert.Equal(t, 1500*time.Millisecond, cfg.ReplyDelayMin)
	assert.Equal(t, 2500*time.Millisecond, cfg.ReplyDelayMax)
	assert.True(t, cfg.AdminBypass)
	assert.NotNil(t, cfg.AllowedOrigins)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("REPLY_DELAY_MIN", "10ms")
	t.Setenv("REPLY_DELAY_MAX", "20ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "s3cr3t", cfg.JWTSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 10*time.Millisecond, cfg.ReplyDelayMin)
}

func TestLoadConfig_Rejects(t *testing.T) {
	t.Run("production without secret", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("JWT_SECRET", "")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("privileged port", func(t *testing.T) {
		t.Setenv("PORT", "80")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("inverted delay range", func(t *testing.T) {
		t.Setenv("REPLY_DELAY_MIN", "3s")
		t.Setenv("REPLY_DELAY_MAX", "1s")

		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
