// Package config provides environment-backed configuration for the RPA service.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the service reads from the environment.
// Proxy settings are all-or-nothing: credentials are only meaningful
// when a server address is present.
type Config struct {
	Port       int           `mapstructure:"port"`
	NavTimeout time.Duration `mapstructure:"nav_timeout"`
	LogLevel   string        `mapstructure:"log_level"`

	ProxyServer   string `mapstructure:"proxy_server"`
	ProxyUsername string `mapstructure:"proxy_username"`
	ProxyPassword string `mapstructure:"proxy_password"`

	// ChromePath overrides the browser binary location. Empty means
	// chromedp's default lookup.
	ChromePath string `mapstructure:"chrome_path"`
}

// Load reads configuration from environment variables (PORT, NAV_TIMEOUT,
// LOG_LEVEL, PROXY_SERVER, PROXY_USERNAME, PROXY_PASSWORD, CHROME_PATH),
// applying defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("port", 8080)
	v.SetDefault("nav_timeout", "45s")
	v.SetDefault("log_level", "info")
	v.AutomaticEnv()

	for _, key := range []string{"proxy_server", "proxy_username", "proxy_password", "chrome_path"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env key %s: %w", key, err)
		}
	}

	cfg := &Config{
		Port:          v.GetInt("port"),
		NavTimeout:    v.GetDuration("nav_timeout"),
		LogLevel:      v.GetString("log_level"),
		ProxyServer:   v.GetString("proxy_server"),
		ProxyUsername: v.GetString("proxy_username"),
		ProxyPassword: v.GetString("proxy_password"),
		ChromePath:    v.GetString("chrome_path"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	if c.NavTimeout <= 0 {
		return fmt.Errorf("config error: nav_timeout must be positive")
	}
	if c.ProxyServer == "" && (c.ProxyUsername != "" || c.ProxyPassword != "") {
		return fmt.Errorf("config error: proxy credentials require PROXY_SERVER")
	}
	return nil
}

// ProxyEnabled reports whether an upstream proxy is configured.
func (c *Config) ProxyEnabled() bool {
	return c.ProxyServer != ""
}

// ProxyAuthEnabled reports whether the proxy needs credentials.
func (c *Config) ProxyAuthEnabled() bool {
	return c.ProxyServer != "" && c.ProxyUsername != "" && c.ProxyPassword != ""
}
