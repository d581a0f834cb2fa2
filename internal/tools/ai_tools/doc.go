// Package ai_tools provides MCP tools for the Box AI question endpoints.
//
// box_ai_ask_file_single asks a question about one file;
// box_ai_ask_file_multi grounds the question on several files at once.
package ai_tools
