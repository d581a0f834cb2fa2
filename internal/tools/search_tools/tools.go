package search_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/box-community/mcp-server-box/internal/box"
	"github.com/box-community/mcp-server-box/internal/instrumentation"
	"github.com/box-community/mcp-server-box/internal/server"
	"github.com/box-community/mcp-server-box/internal/tools/common"
)

// RegisterSearchTools registers the content search tool with the MCP server.
func RegisterSearchTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	searchTool := mcp.NewTool("box_search",
		mcp.WithDescription("Search for files and folders in Box by keyword"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query"),
		),
		mcp.WithString("type",
			mcp.Description("Restrict results to 'file' or 'folder'"),
		),
		mcp.WithString("file_extensions",
			mcp.Description("Comma-separated list of file extensions to match (e.g. 'pdf,docx')"),
		),
		mcp.WithString("ancestor_folder_ids",
			mcp.Description("Comma-separated list of folder IDs to search within"),
		),
		mcp.WithString("content_types",
			mcp.Description("Comma-separated list of content types to search: name, description, file_content, comments, tag"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 30)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Offset into the result set for pagination (default: 0)"),
		),
	)

	s.AddTool(searchTool, common.InstrumentedToolHandlerWithOperation(
		"box_search", instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearch(ctx, request, sc)
		}))

	return nil
}

func handleSearch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	opts := box.SearchOptions{}

	if typeVal, ok := args["type"].(string); ok && typeVal != "" {
		if typeVal != "file" && typeVal != "folder" {
			return mcp.NewToolResultError("type must be 'file' or 'folder'"), nil
		}
		opts.Type = typeVal
	}

	opts.FileExtensions = splitList(args["file_extensions"])
	opts.AncestorFolderIDs = splitList(args["ancestor_folder_ids"])
	opts.ContentTypes = splitList(args["content_types"])

	if limitVal, ok := args["limit"].(float64); ok && limitVal > 0 {
		opts.Limit = int(limitVal)
	}
	if offsetVal, ok := args["offset"].(float64); ok && offsetVal > 0 {
		opts.Offset = int(offsetVal)
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results, err := client.Search(ctx, query, opts)
	if err != nil {
		return common.BoxErrorResult("search", err), nil
	}

	if len(results.Entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No results found for query: %s", query)), nil
	}

	result, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

// splitList parses a comma-separated argument into trimmed entries.
func splitList(arg any) []string {
	raw, ok := arg.(string)
	if !ok || raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	entries := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	return entries
}
