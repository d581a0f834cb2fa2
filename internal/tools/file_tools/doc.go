// Package file_tools provides MCP tools for Box file operations.
//
// # Available Tools
//
// Read:
//   - box_file_info: Get metadata for a file
//   - box_file_text_extract: Extract the text content of a file
//   - box_file_tag_list: List the tags on a file
//
// Write (omitted in read-only mode):
//   - box_file_upload: Upload text content as a new file
//   - box_file_copy: Copy a file into another folder
//   - box_file_move: Move a file into another folder
//   - box_file_rename: Rename a file
//   - box_file_delete: Move a file to the trash
//   - box_file_set_description: Set or clear a file's description
//   - box_file_lock / box_file_unlock: Manage file locks
//   - box_file_tag_add / box_file_tag_remove: Manage file tags
//
// Handlers serialize Box responses as indented JSON. Box API failures are
// returned as tool errors so a failed operation never aborts the MCP
// session.
package file_tools
