// Package cmd implements the command-line interface for mcp-server-box.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio, SSE or streamable HTTP
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
