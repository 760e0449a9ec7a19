package httpclient

import (
	"fmt"
	"net/http"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config configures the streaming HTTP client.
type Config struct {
	// Timeout bounds connection setup and the wait for response headers.
	// It never applies to the body of a live stream. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// UserAgent is sent when set.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Transport overrides the default transport. Mostly useful in tests.
	Transport http.RoundTripper `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	for k := range c.Headers {
		if k == "" {
			return fmt.Errorf("httpclient: header name must not be empty")
		}
	}
	return nil
}
