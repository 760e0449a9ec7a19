// Package logger provides structured logging for ssebridge using zerolog.
//
// Connectors log through component-scoped loggers tagged with the
// connection ID, so every line of one subscription can be correlated.
//
// # Configuration
//
//	log:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("native")
//	log.Info("stream opened", logger.Fields(logger.FieldURL, u))
package logger
