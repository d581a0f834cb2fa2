// Package logging provides structured logging helpers built on log/slog.
//
// It defines the attribute keys used across the server, constructors for
// the injected application logger, and sanitizers that keep secrets and
// principal identifiers out of log output. Bearer tokens are never logged;
// use SanitizeToken for a length-only marker and Subject for a hashed
// principal identifier.
package logging
