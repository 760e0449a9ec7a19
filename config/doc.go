// Package config loads stream client settings from a YAML file, a .env file
// and SSEBRIDGE_* environment variables.
//
// # Usage
//
//	var cfg config.ClientConfig
//	if err := config.Load("ssedemo", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	opts, err := cfg.Options()
//	rx, err := ssebridge.Connect(cfg.URL, opts...)
//
// Nested keys are addressed with underscores, so reconnect.max_attempts is
// set by SSEBRIDGE_RECONNECT_MAX_ATTEMPTS.
package config
