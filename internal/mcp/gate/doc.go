// Package gate enforces bearer authentication in front of the MCP HTTP
// transports. Discovery and probe paths pass unauthenticated; every other
// request must carry a token the configured validator accepts before any
// MCP handling runs.
package gate
