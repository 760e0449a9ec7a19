// Package version reports the build version of ssebridge binaries.
//
// Values are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/ssebridge/version.Version=1.0.0"
package version
