// Package server owns the runtime of the Box MCP server: the Box session
// (ServerContext), the composed HTTP transport with its auth gate and
// discovery surface, health probes for Kubernetes and the dedicated
// Prometheus metrics server.
package server
