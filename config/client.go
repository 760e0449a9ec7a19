package config

import (
	"time"

	"github.com/kbukum/ssebridge"
	"github.com/kbukum/ssebridge/logger"
	"github.com/kbukum/ssebridge/observability"
	"github.com/kbukum/ssebridge/resilience"
	"github.com/kbukum/ssebridge/validation"
)

// ClientConfig is the file/env representation of a stream subscription.
//
//	url: https://example.com/events
//	timeout: 10s
//	reconnect:
//	  max_attempts: 5
//	  initial_backoff: 500ms
//	capacity: 1024
//	overflow: drop_oldest
//	log:
//	  level: debug
type ClientConfig struct {
	URL             string            `yaml:"url" mapstructure:"url"`
	WithCredentials bool              `yaml:"with_credentials" mapstructure:"with_credentials"`
	Headers         map[string]string `yaml:"headers" mapstructure:"headers"`
	UserAgent       string            `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout         time.Duration     `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	Reconnect       ReconnectConfig   `yaml:"reconnect" mapstructure:"reconnect"`
	Capacity        int               `yaml:"capacity" mapstructure:"capacity" validate:"gte=0"`
	Overflow        string            `yaml:"overflow" mapstructure:"overflow" validate:"omitempty,oneof=drop_oldest drop_newest"`
	Log             logger.Config     `yaml:"log" mapstructure:"log"`
	Telemetry       TelemetryConfig   `yaml:"telemetry" mapstructure:"telemetry"`
}

// ReconnectConfig controls how the native stream recovers from failures.
type ReconnectConfig struct {
	Disabled       bool          `yaml:"disabled" mapstructure:"disabled"`
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=0"`
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff" validate:"gte=0"`
	MaxBackoff     time.Duration `yaml:"max_backoff" mapstructure:"max_backoff" validate:"gte=0"`
}

// TelemetryConfig enables OTLP export when Endpoint is set.
type TelemetryConfig struct {
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	ServiceName    string        `yaml:"service_name" mapstructure:"service_name"`
	Environment    string        `yaml:"environment" mapstructure:"environment"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	ExportInterval time.Duration `yaml:"export_interval" mapstructure:"export_interval" validate:"gte=0"`
}

// Enabled reports whether telemetry should be exported.
func (t TelemetryConfig) Enabled() bool { return t.Endpoint != "" }

// Observability converts the section into the exporter setup.
func (t TelemetryConfig) Observability() observability.Config {
	return observability.Config{
		Endpoint:       t.Endpoint,
		Insecure:       t.Insecure,
		ServiceName:    t.ServiceName,
		Environment:    t.Environment,
		SampleRate:     t.SampleRate,
		ExportInterval: t.ExportInterval,
	}
}

// ApplyDefaults fills in zero-value fields.
func (c *ClientConfig) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Overflow == "" {
		c.Overflow = ssebridge.DropOldest.String()
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "ssebridge"
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
	c.Log.ApplyDefaults()
}

// Validate checks struct rules, then the rules that span fields.
func (c *ClientConfig) Validate() error {
	v := validation.New()
	v.Merge("config", validation.Validate(c))
	v.HTTPURL("url", c.URL)
	v.Merge("log", c.Log.Validate())
	r := c.Reconnect
	v.Custom(r.MaxBackoff == 0 || r.MaxBackoff >= r.InitialBackoff,
		"reconnect.max_backoff", "must not be lower than reconnect.initial_backoff")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// RetryConfig returns the reconnect policy, or nil when reconnecting is disabled.
func (c *ClientConfig) RetryConfig() *resilience.RetryConfig {
	if c.Reconnect.Disabled {
		return nil
	}
	rc := resilience.DefaultRetryConfig()
	rc.MaxAttempts = c.Reconnect.MaxAttempts
	if c.Reconnect.InitialBackoff > 0 {
		rc.InitialBackoff = c.Reconnect.InitialBackoff
	}
	if c.Reconnect.MaxBackoff > 0 {
		rc.MaxBackoff = c.Reconnect.MaxBackoff
	}
	return &rc
}

// Options converts the configuration into connect options.
func (c *ClientConfig) Options() ([]ssebridge.Option, error) {
	policy, err := ssebridge.ParseOverflowPolicy(c.Overflow)
	if err != nil {
		return nil, err
	}

	opts := []ssebridge.Option{
		ssebridge.WithCredentials(c.WithCredentials),
		ssebridge.WithTimeout(c.Timeout),
		ssebridge.WithReconnect(c.RetryConfig()),
		ssebridge.WithCapacity(c.Capacity, policy),
	}
	if len(c.Headers) > 0 {
		opts = append(opts, ssebridge.WithHeaders(c.Headers))
	}
	if c.UserAgent != "" {
		opts = append(opts, ssebridge.WithUserAgent(c.UserAgent))
	}
	return opts, nil
}
