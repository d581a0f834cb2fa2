// Package shared_link_tools provides MCP tools for managing Box shared
// links on files and folders.
//
// # Available Tools
//
//   - box_shared_link_file_get / box_shared_link_folder_get: Read the
//     current shared link, if any
//   - box_shared_link_file_create / box_shared_link_folder_create: Create
//     or update a shared link with access level, password and download
//     permission (write mode only)
//   - box_shared_link_file_remove / box_shared_link_folder_remove: Remove
//     a shared link (write mode only)
package shared_link_tools
