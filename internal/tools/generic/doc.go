// Package generic provides the identity and server information tools.
//
// box_who_am_i reports the Box user the server is authenticated as, and
// mcp_server_info describes the running server: name, version, transport
// and Box auth mode.
package generic
