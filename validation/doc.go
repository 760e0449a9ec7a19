// Package validation checks configuration values before a receiver is built.
//
// Struct tag validation runs go-playground/validator and reports field paths
// by their mapstructure keys, so errors point at the same names used in
// config files and SSEBRIDGE_* environment variables.
//
//	type Reconnect struct {
//	    MaxAttempts int `mapstructure:"max_attempts" validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
//
// Cross-field rules use the programmatic collector:
//
//	v := validation.New()
//	v.HTTPURL("url", cfg.URL).OneOf("overflow", cfg.Overflow, []string{"drop_oldest", "drop_newest"})
//	if appErr := v.Validate(); appErr != nil { ... }
//
// Both paths return an *errors.AppError with code INVALID_CONFIG and the
// offending fields under Details["fields"].
package validation
