// Package folder_tools provides MCP tools for Box folder operations.
//
// # Available Tools
//
//   - box_folder_info: Get metadata for a folder
//   - box_folder_list_items: List the contents of a folder with pagination
//   - box_folder_create: Create a new folder (write mode only)
//   - box_folder_delete: Delete a folder, optionally recursively (write mode only)
//
// Folder ID "0" addresses the account's root folder.
package folder_tools
