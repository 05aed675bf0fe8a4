// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Stripe    StripeConfig    `koanf:"stripe"`
	Pricing   PricingConfig   `koanf:"pricing"`
	Promo     PromoConfig     `koanf:"promo"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL             string        `koanf:"url"`
	PoolSize        int           `koanf:"pool_size"`
	MinIdleConns    int           `koanf:"min_idle_conns"`
	PoolTimeout     time.Duration `koanf:"pool_timeout"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type JWTConfig struct {
	PrivateKeyPath    string        `koanf:"private_key_path"`
	AccessTokenExpire time.Duration `koanf:"access_token_expire"`
	Issuer            string        `koanf:"issuer"`
	Audience          string        `koanf:"audience"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

type StripeConfig struct {
	SecretKey     string `koanf:"secret_key"`
	WebhookSecret string `koanf:"webhook_secret"`
	Currency      string `koanf:"currency"`
}

type PricingConfig struct {
	CatalogCacheTTL time.Duration `koanf:"catalog_cache_ttl"`
}

// PromoConfig bounds how often one user may probe promo codes.
type PromoConfig struct {
	ValidateRequests int `koanf:"validate_requests"`
	ValidateBurst    int `koanf:"validate_burst"`
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads the server configuration once per process.
func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		cfg, loadErr = load(configPath)
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := setDefaults(k, serverDefaults); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if err := loadFile(k, configPath); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer(envKeyMap)), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadDatabase reads only the database section, for tools that never serve
// traffic and so need no Redis or signing key.
func LoadDatabase(configPath string) (*DatabaseConfig, error) {
	k := koanf.New(".")

	if err := setDefaults(k, serverDefaults); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if err := loadFile(k, configPath); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer(envKeyMap)), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &DatabaseConfig{}
	if err := k.Unmarshal("database", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.URL == "" {
		return nil, fmt.Errorf("validate config: DATABASE_URL is required")
	}

	return c, nil
}

// LoadDotEnv exports variables from .env style files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func loadFile(k *koanf.Koanf, configPath string) error {
	if configPath == "" {
		return nil
	}

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load config file: %w", err)
	}

	return nil
}

func setDefaults(k *koanf.Koanf, defaults map[string]any) error {
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}
	return nil
}

var serverDefaults = map[string]any{
	"app.name":        "Talent Market API",
	"app.version":     "1.0.0",
	"app.environment": "development",

	"server.host":             "0.0.0.0",
	"server.port":             8080,
	"server.read_timeout":     "30s",
	"server.write_timeout":    "30s",
	"server.idle_timeout":     "120s",
	"server.shutdown_timeout": "15s",

	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  "1h",
	"database.conn_max_idle_time": "30m",

	"redis.pool_size":          10,
	"redis.min_idle_conns":     5,
	"redis.pool_timeout":       "30s",
	"redis.conn_max_idle_time": "5m",

	"jwt.access_token_expire": "15m",
	"jwt.issuer":              "talentmarket",
	"jwt.audience":            "talentmarket-api",
	"jwt.private_key_path":    "keys/private.pem",

	"rate_limit.requests": 100,
	"rate_limit.window":   "1m",
	"rate_limit.burst":    20,

	"cors.allowed_origins": []string{"http://localhost:5173"},
	"cors.allowed_methods": []string{
		"GET",
		"POST",
		"PUT",
		"PATCH",
		"DELETE",
		"OPTIONS",
	},
	"cors.allowed_headers": []string{
		"Accept",
		"Authorization",
		"Content-Type",
		"Idempotency-Key",
		"X-Request-ID",
	},
	"cors.allow_credentials": true,
	"cors.max_age":           300,

	"log.level":  "info",
	"log.format": "json",

	"otel.enabled":      false,
	"otel.insecure":     true,
	"otel.sample_rate":  0.1,
	"otel.service_name": "talentmarket-api",

	"stripe.currency": "usd",

	"pricing.catalog_cache_ttl": "10m",

	"promo.validate_requests": 10,
	"promo.validate_burst":    5,
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"REDIS_URL":                   "redis.url",
	"REDIS_POOL_SIZE":             "redis.pool_size",
	"REDIS_POOL_TIMEOUT":          "redis.pool_timeout",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_PRIVATE_KEY_PATH":        "jwt.private_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"JWT_AUDIENCE":                "jwt.audience",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"STRIPE_SECRET_KEY":           "stripe.secret_key",
	"STRIPE_WEBHOOK_SECRET":       "stripe.webhook_secret",
	"STRIPE_CURRENCY":             "stripe.currency",
	"PRICING_CATALOG_CACHE_TTL":   "pricing.catalog_cache_ttl",
	"PROMO_VALIDATE_REQUESTS":     "promo.validate_requests",
	"PROMO_VALIDATE_BURST":        "promo.validate_burst",
}

// envKeyReplacer drops every variable that is not explicitly mapped.
func envKeyReplacer(mapping map[string]string) func(string) string {
	return func(s string) string {
		if mapped, ok := mapping[s]; ok {
			return mapped
		}
		return ""
	}
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.JWT.PrivateKeyPath == "" {
		return fmt.Errorf("JWT_PRIVATE_KEY_PATH is required")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
		if c.Stripe.SecretKey == "" || c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required in production")
		}
	}

	if c.Stripe.SecretKey != "" && !strings.HasPrefix(c.Stripe.SecretKey, "sk_") &&
		!strings.HasPrefix(c.Stripe.SecretKey, "rk_") {
		return fmt.Errorf("STRIPE_SECRET_KEY must be a secret or restricted key")
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	if c.Promo.ValidateRequests <= 0 {
		return fmt.Errorf("promo.validate_requests must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
