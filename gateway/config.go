// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the gateway.
type Config struct {
	// ListenAddress is the TCP address to serve on.
	// Defaults to "0.0.0.0:3000".
	ListenAddress string `yaml:"listen_address"`

	// LoginURL is where browser callers are redirected when they lack
	// a valid session. The page itself is served externally (or by a
	// frontend mounted at this path). Defaults to "/auth/login".
	LoginURL string `yaml:"login_url"`

	// RequestTimeoutSeconds bounds each outbound request to a backend
	// (HTTP forwarding and the WebSocket handshake). Zero disables
	// the timeout; backends with long-polling endpoints need that.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// Identity configures the upstream identity provider.
	Identity IdentityConfig `yaml:"identity"`

	// Apps is the route table: first path segment to backend base URL.
	Apps []AppConfig `yaml:"apps"`

	// Security configures tokens and cookies.
	Security SecurityConfig `yaml:"security"`
}

// IdentityConfig points at the identity provider (Jellyfin).
type IdentityConfig struct {
	// URL is the provider base URL (e.g., "http://jellyfin:8096").
	URL string `yaml:"url"`

	// APIKey authenticates the gateway's own user lookups during
	// token refresh.
	APIKey string `yaml:"api_key"`
}

// AppConfig names one proxied backend.
type AppConfig struct {
	// Name is the routing key: the first path segment of inbound
	// requests. Matching is exact and case-sensitive.
	Name string `yaml:"name"`

	// URL is the backend base URL (e.g., "http://sonarr:8989").
	URL string `yaml:"url"`
}

// SecurityConfig configures session tokens and their cookies.
type SecurityConfig struct {
	// SigningSecret is an optional base64-encoded 256-bit token
	// signing secret. When empty a random secret is generated at
	// startup, which invalidates all outstanding sessions on every
	// restart.
	SigningSecret string `yaml:"signing_secret"`

	// RefreshTokenDays is the refresh token lifetime.
	// Defaults to 30.
	RefreshTokenDays int `yaml:"refresh_token_days"`

	// AccessCookie is the access token cookie name.
	// Defaults to "gatearr_token".
	AccessCookie string `yaml:"access_cookie"`

	// RefreshCookie is the refresh token cookie name.
	// Defaults to "gatearr_refresh".
	RefreshCookie string `yaml:"refresh_cookie"`

	// SecureCookies sets the Secure flag on session cookies. Leave
	// true unless the gateway is only ever reached over plain HTTP on
	// a trusted network. Defaults to true.
	SecureCookies *bool `yaml:"secure_cookies"`
}

// CookiesSecure resolves the SecureCookies default.
func (s SecurityConfig) CookiesSecure() bool {
	return s.SecureCookies == nil || *s.SecureCookies
}

// LoadConfig loads a configuration from a YAML file and applies
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.ListenAddress == "" {
		config.ListenAddress = "0.0.0.0:3000"
	}
	if config.LoginURL == "" {
		config.LoginURL = "/auth/login"
	}
	if config.Security.RefreshTokenDays == 0 {
		config.Security.RefreshTokenDays = 30
	}
	if config.Security.AccessCookie == "" {
		config.Security.AccessCookie = "gatearr_token"
	}
	if config.Security.RefreshCookie == "" {
		config.Security.RefreshCookie = "gatearr_refresh"
	}

	return &config, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Identity.URL == "" {
		return fmt.Errorf("identity.url is required")
	}
	if c.Identity.APIKey == "" {
		return fmt.Errorf("identity.api_key is required")
	}

	if len(c.Apps) == 0 {
		return fmt.Errorf("at least one app must be configured")
	}
	seen := make(map[string]bool, len(c.Apps))
	for _, app := range c.Apps {
		if app.Name == "" {
			return fmt.Errorf("app name must not be empty")
		}
		if seen[app.Name] {
			return fmt.Errorf("app %q: duplicate name", app.Name)
		}
		seen[app.Name] = true

		parsed, err := url.Parse(app.URL)
		if err != nil {
			return fmt.Errorf("app %q: invalid url: %w", app.Name, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("app %q: url scheme must be http or https, got %q", app.Name, parsed.Scheme)
		}
	}

	if c.Security.RefreshTokenDays < 1 {
		return fmt.Errorf("security.refresh_token_days must be positive, got %d", c.Security.RefreshTokenDays)
	}
	if c.Security.AccessCookie == c.Security.RefreshCookie {
		return fmt.Errorf("security: access and refresh cookies must have distinct names")
	}
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds must not be negative, got %d", c.RequestTimeoutSeconds)
	}

	return nil
}
