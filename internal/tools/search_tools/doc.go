// Package search_tools provides the MCP tool for searching Box content.
//
// box_search runs a keyword search across the authorized content and
// supports narrowing by item type, file extension, ancestor folder and
// the content fields the query matches against.
package search_tools
