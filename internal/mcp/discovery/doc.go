// Package discovery serves the OAuth discovery surface for the MCP HTTP
// transports: RFC 9728 protected-resource metadata, proxied RFC 8414
// authorization-server metadata and a stub RFC 7591 registration
// endpoint backed by a pre-provisioned client pair.
package discovery
