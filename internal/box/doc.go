// Package box is a minimal client for the Box content API covering the
// operations the MCP tools expose: files, folders, search, shared links,
// users and AI question answering.
package box
