// Package common provides shared utilities for MCP tool implementations.
// It contains the instrumented handler wrappers and Box client helpers
// used across all tool packages to ensure consistent behavior.
package common
