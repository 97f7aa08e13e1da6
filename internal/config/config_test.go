package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.ScheduleBaseURL)
	assert.Equal(t, "1", cfg.PsychologistID)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Nil(t, cfg.CORSAllowedOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SCHEDULE_BASE_URL", "https://clinic.example.com/api")
	t.Setenv("PSYCHOLOGIST_ID", "42")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("SESSION_TTL", "10m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://clinic.example.com/api", cfg.ScheduleBaseURL)
	assert.Equal(t, "42", cfg.PsychologistID)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.True(t, cfg.RedisTLS)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("REDIS_TLS", "definitely")

	cfg := Load()

	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.RedisTLS)
}
