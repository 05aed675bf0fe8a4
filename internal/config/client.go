// AngelaMos | 2026
// client.go

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// ClientConfig configures the storefront client that talks to the API.
type ClientConfig struct {
	BaseURL        string        `koanf:"base_url"`
	Token          string        `koanf:"token"`
	Timeout        time.Duration `koanf:"timeout"`
	StaleTime      time.Duration `koanf:"stale_time"`
	CheckoutPath   string        `koanf:"checkout_path"`
	OnboardingPath string        `koanf:"onboarding_path"`
}

var clientDefaults = map[string]any{
	"client.base_url":        "http://localhost:8080",
	"client.timeout":         "15s",
	"client.stale_time":      "0s",
	"client.checkout_path":   "/checkout",
	"client.onboarding_path": "/onboarding/profile",
}

var clientEnvKeyMap = map[string]string{
	"TALENTMARKET_API_URL":         "client.base_url",
	"TALENTMARKET_TOKEN":           "client.token",
	"TALENTMARKET_TIMEOUT":         "client.timeout",
	"TALENTMARKET_STALE_TIME":      "client.stale_time",
	"TALENTMARKET_CHECKOUT_PATH":   "client.checkout_path",
	"TALENTMARKET_ONBOARDING_PATH": "client.onboarding_path",
}

func LoadClient(configPath string) (*ClientConfig, error) {
	k := koanf.New(".")

	if err := setDefaults(k, clientDefaults); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if err := loadFile(k, configPath); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer(clientEnvKeyMap)), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &ClientConfig{}
	if err := k.Unmarshal("client", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validateClient(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func validateClient(c *ClientConfig) error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("client.base_url must be an absolute URL")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be positive")
	}

	if c.StaleTime < 0 {
		return fmt.Errorf("client.stale_time must not be negative")
	}

	return nil
}
