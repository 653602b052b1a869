package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
)

// Validate checks the settings that come from the config file, environment or flags.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("api_url", c.APIURL, isHTTPURL),
		criterio.Run("timeout", c.Timeout, isPositive),
		criterio.Run("log_level", c.LogLevel, isLogLevel),
	)
}

func isHTTPURL(s string) error {
	if s == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http or https url")
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func isPositive(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func isLogLevel(s string) error {
	if s == "" {
		return fmt.Errorf("is required")
	}
	if _, err := zerolog.ParseLevel(s); err != nil {
		return fmt.Errorf("unknown level %q", s)
	}
	return nil
}
