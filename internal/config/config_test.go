package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, 5*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 3, cfg.OTP.MaxAttempts)
	assert.Zero(t, cfg.OTP.SweepInterval)
	assert.Equal(t, 10, cfg.Preview.Capacity)
	assert.Equal(t, 5, cfg.Preview.ListLimit)
	assert.Equal(t, 5*time.Minute, cfg.Preview.Freshness)
	assert.Equal(t, "gmail.com", cfg.EmailAllowedDomain)
	assert.Equal(t, "memory", cfg.StateBackend)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OTP_TTL", "90s")
	t.Setenv("OTP_MAX_ATTEMPTS", "5")
	t.Setenv("PREVIEW_CAPACITY", "3")
	t.Setenv("OWNER_EMAIL", "Boss@Gmail.com")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg := Load()
	assert.Equal(t, 90*time.Second, cfg.OTP.TTL)
	assert.Equal(t, 5, cfg.OTP.MaxAttempts)
	assert.Equal(t, 3, cfg.Preview.Capacity)
	assert.Equal(t, "boss@gmail.com", cfg.OwnerEmail)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.0/8, ,127.0.0.1 ")
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, Load().TrustedProxies)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("OTP_TTL", "five minutes")
	t.Setenv("OTP_MAX_ATTEMPTS", "three")

	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 3, cfg.OTP.MaxAttempts)
}

func TestIsOwner(t *testing.T) {
	cfg := &Config{OwnerEmail: "boss@gmail.com"}
	assert.True(t, cfg.IsOwner("BOSS@gmail.com"))
	assert.False(t, cfg.IsOwner("other@gmail.com"))
	assert.False(t, (&Config{}).IsOwner(""))
}
