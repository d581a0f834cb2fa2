// Package user_tools provides MCP tools for Box enterprise users.
//
// box_users_current returns the user the configured credentials act as.
// box_users_list and box_users_search enumerate the enterprise directory
// and require admin permissions on the Box enterprise.
package user_tools
