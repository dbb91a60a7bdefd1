package quantoz

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// =====================================================
// QUANTOZ PAY CONFIGURATION
// =====================================================

const (
	DefaultAPIURL  = "https://api.quantozpay.com/"
	DefaultPayURL  = "https://pay.quantozpay.com/"
	DefaultTimeout = 60 * time.Second

	// d/m/Y H:i:s P
	expiresOnLayout = "02/01/2006 15:04:05 -07:00"

	headerAPIKey = "x-api-key"
)

type Config struct {
	APIURL  string
	PayURL  string
	Timeout time.Duration
}

// NewConfig creates Quantoz configuration, falling back to the public endpoints
func NewConfig(apiURL, payURL string, timeout time.Duration) *Config {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if payURL == "" {
		payURL = DefaultPayURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Config{
		APIURL:  strings.TrimRight(apiURL, "/") + "/",
		PayURL:  strings.TrimRight(payURL, "/") + "/",
		Timeout: timeout,
	}
}

func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.APIURL); err != nil {
		return fmt.Errorf("invalid api url %q: %w", c.APIURL, err)
	}
	if _, err := url.ParseRequestURI(c.PayURL); err != nil {
		return fmt.Errorf("invalid pay url %q: %w", c.PayURL, err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func (c *Config) endpoint(path string) string {
	return c.APIURL + strings.TrimLeft(path, "/")
}
