// Package errors provides the structured error type used across ssebridge.
// Setup failures carry an ErrorCode and optional details; stream failures use
// the same type before they are rendered into Error events.
package errors
