// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/talentmarket")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	c, err := load("")
	require.NoError(t, err)

	assert.Equal(t, "development", c.App.Environment)
	assert.True(t, c.IsDevelopment())
	assert.Equal(t, "0.0.0.0:8080", c.Server.Address())
	assert.Equal(t, 15*time.Minute, c.JWT.AccessTokenExpire)
	assert.Equal(t, 10*time.Minute, c.Pricing.CatalogCacheTTL)
	assert.Equal(t, "usd", c.Stripe.Currency)
	assert.Equal(t, 10, c.Promo.ValidateRequests)
	assert.Contains(t, c.CORS.AllowedHeaders, "Idempotency-Key")
	assert.Equal(t, 30*time.Second, c.Redis.PoolTimeout)
	assert.Equal(t, 5*time.Minute, c.Redis.ConnMaxIdleTime)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
pricing:
  catalog_cache_ttl: 2m
promo:
  validate_requests: 3
`), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("REDIS_POOL_TIMEOUT", "2s")

	c, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, c.Server.Port)
	assert.Equal(t, 2*time.Minute, c.Pricing.CatalogCacheTTL)
	assert.Equal(t, 3, c.Promo.ValidateRequests)
	assert.Equal(t, "sk_test_123", c.Stripe.SecretKey)
	assert.Equal(t, 2*time.Second, c.Redis.PoolTimeout)
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	setRequiredEnv(t)

	_, err := load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.NoError(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "database url",
			env:  map[string]string{"DATABASE_URL": ""},
			want: "DATABASE_URL is required",
		},
		{
			name: "redis url",
			env:  map[string]string{"REDIS_URL": ""},
			want: "REDIS_URL is required",
		},
		{
			name: "publishable stripe key",
			env:  map[string]string{"STRIPE_SECRET_KEY": "pk_test_123"},
			want: "STRIPE_SECRET_KEY must be a secret or restricted key",
		},
		{
			name: "production without stripe",
			env:  map[string]string{"ENVIRONMENT": "production"},
			want: "STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required in production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := LoadDatabase("")
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost:5432/talentmarket")
	db, err := LoadDatabase("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost:5432/talentmarket", db.URL)
	assert.Equal(t, 25, db.MaxOpenConns)
}

func TestLoadClient(t *testing.T) {
	c, err := LoadClient("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.BaseURL)
	assert.Equal(t, "/checkout", c.CheckoutPath)
	assert.Equal(t, "/onboarding/profile", c.OnboardingPath)
	assert.Zero(t, c.StaleTime)

	t.Setenv("TALENTMARKET_API_URL", "https://api.example.test")
	t.Setenv("TALENTMARKET_STALE_TIME", "30s")
	t.Setenv("TALENTMARKET_TOKEN", "tok")

	c, err = LoadClient("")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.test", c.BaseURL)
	assert.Equal(t, 30*time.Second, c.StaleTime)
	assert.Equal(t, "tok", c.Token)

	t.Setenv("TALENTMARKET_API_URL", "not a url")
	_, err = LoadClient("")
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TALENTMARKET_DOTENV_PROBE=loaded\n"), 0o600))
	t.Setenv("TALENTMARKET_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("TALENTMARKET_DOTENV_PROBE"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "loaded", os.Getenv("TALENTMARKET_DOTENV_PROBE"))
}
