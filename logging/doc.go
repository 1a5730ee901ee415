// Package logging provides a minimal logging interface and adapters for navmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that slots and the transition engine use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NavLogger with slot/component context and transition helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	nav := engine.NewNavigator("main", func(o *engine.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
