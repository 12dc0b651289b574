package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

type WebhookConfig struct {
	Enabled       bool   `koanf:"enabled" mapstructure:"enabled"`
	URL           string `koanf:"webhook_url" mapstructure:"webhook_url"`
	SecretKey     string `koanf:"secret_key" mapstructure:"secret_key"`
	RequireFields bool   `koanf:"require_fields" mapstructure:"require_fields"`
	Locale        string `koanf:"locale" mapstructure:"locale"`
}

type Config struct {
	ServiceName string        `koanf:"service_name" mapstructure:"service_name"`
	Webhook     WebhookConfig `koanf:"webhook" mapstructure:"webhook"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "shipment_webhook",
		Webhook:     WebhookConfig{},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if raw := strings.TrimSpace(c.Webhook.URL); raw != "" {
		if err := validateWebhookURL(raw); err != nil {
			return err
		}
	}
	return nil
}

func (c WebhookConfig) Settings() Settings {
	return Settings{
		Enabled:       c.Enabled,
		WebhookURL:    strings.TrimSpace(c.URL),
		SecretKey:     c.SecretKey,
		RequireFields: c.RequireFields,
		Locale:        strings.TrimSpace(c.Locale),
	}
}

// StaticSettingsReader serves the resolved service config for every scope.
// It is the fallback when no scoped store is wired.
type StaticSettingsReader struct {
	Config WebhookConfig
}

func (r StaticSettingsReader) Settings(context.Context, ScopeRef) (Settings, error) {
	return r.Config.Settings(), nil
}

func validateWebhookURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("core: invalid webhook_url: %w", err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("core: invalid webhook_url scheme %q", parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return fmt.Errorf("core: invalid webhook_url: host is required")
	}
	return nil
}

var _ SettingsReader = StaticSettingsReader{}
