// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers a YAML file and FIRMOGRAPH_* environment variables on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log records.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RootPath is the prefix a reverse proxy strips before forwarding; it is
	// only used to advertise the server URL in the OpenAPI document.
	RootPath string `koanf:"root_path"`

	// Title and Version describe the API in the OpenAPI document.
	Title   string `koanf:"title"`
	Version string `koanf:"version"`

	// PublicURL is advertised as the server of the OpenAPI document.
	PublicURL string `koanf:"public_url"`

	// BackendURL is the base URL of the data backend. Empty disables forwarding.
	BackendURL string `koanf:"backend_url"`

	// BackendTimeoutMS bounds one backend attempt.
	BackendTimeoutMS int `koanf:"backend_timeout_ms"`

	// BackendRetryMax is the number of retries after a failed backend attempt.
	BackendRetryMax int `koanf:"backend_retry_max"`

	// CacheTTLMS keeps successful backend answers in memory, per caller and
	// query. Zero disables the cache.
	CacheTTLMS int `koanf:"cache_ttl_ms"`

	// AuthURL and TokenURL describe the OAuth2 authorization-code flow.
	AuthURL  string `koanf:"auth_url"`
	TokenURL string `koanf:"token_url"`

	// OAuthClientID is advertised with the security scheme of the API reference.
	OAuthClientID string `koanf:"oauth_client_id"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":8080",
		Title:            "Firmograph API",
		Version:          "1.0.0",
		PublicURL:        "http://localhost:8080",
		BackendTimeoutMS: 10_000,
		BackendRetryMax:  3,
		AuthURL:          "https://auth.example.com/oauth2/authorize",
		TokenURL:         "https://auth.example.com/oauth2/token",
		OAuthClientID:    "firmograph-api",
	}
}

// BackendTimeout returns BackendTimeoutMS as a duration.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutMS) * time.Millisecond
}

// CacheTTL returns CacheTTLMS as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMS) * time.Millisecond
}

// ServerURL returns PublicURL joined with RootPath.
func (c *Config) ServerURL() string {
	base := strings.TrimRight(c.PublicURL, "/")
	if root := strings.Trim(c.RootPath, "/"); root != "" {
		return base + "/" + root
	}
	return base
}
