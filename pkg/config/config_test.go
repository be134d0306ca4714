package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, 4500*time.Millisecond, cfg.Store.Timeout)
	assert.Equal(t, 3500*time.Millisecond, cfg.Store.LookupTimeout)
	assert.False(t, cfg.Redis.Enabled)
}

func TestNew_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("STORE_TIMEOUT", "2s")
	t.Setenv("STORE_LOOKUP_TIMEOUT", "750")
	t.Setenv("REDIS_ENABLED", "yes")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := New()

	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 2*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 750*time.Millisecond, cfg.Store.LookupTimeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
}

func TestGetDuration_Invalid(t *testing.T) {
	t.Setenv("STORE_TIMEOUT", "-5s")
	assert.Equal(t, time.Second, getDuration("STORE_TIMEOUT", time.Second))
}
