package file_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/box-community/mcp-server-box/internal/instrumentation"
	"github.com/box-community/mcp-server-box/internal/server"
	"github.com/box-community/mcp-server-box/internal/tools/common"
)

// RegisterFileTools registers all file-related tools with the MCP server.
// Write-capable tools are only registered when readOnly is false.
func RegisterFileTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerFileReadTools(s, sc)

	if !readOnly {
		registerFileTransferTools(s, sc)
		registerFileUpdateTools(s, sc)
	}

	return nil
}

func registerFileReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	fileInfoTool := mcp.NewTool("box_file_info",
		mcp.WithDescription("Get metadata for a Box file: name, size, parent, description, tags, lock state and shared link"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
	)

	s.AddTool(fileInfoTool, common.InstrumentedToolHandlerWithOperation(
		"box_file_info", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFileInfo(ctx, request, sc)
		}))

	textExtractTool := mcp.NewTool("box_file_text_extract",
		mcp.WithDescription("Extract the text content of a Box file (documents, spreadsheets, PDFs)"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file to extract text from"),
		),
	)

	s.AddTool(textExtractTool, common.InstrumentedToolHandlerWithOperation(
		"box_file_text_extract", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFileTextExtract(ctx, request, sc)
		}))

	tagListTool := mcp.NewTool("box_file_tag_list",
		mcp.WithDescription("List the tags on a Box file"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
	)

	s.AddTool(tagListTool, common.InstrumentedToolHandlerWithOperation(
		"box_file_tag_list", instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFileTagList(ctx, request, sc)
		}))
}

func handleFileInfo(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	file, err := client.GetFile(ctx, fileID)
	if err != nil {
		return common.BoxErrorResult("get file info", err), nil
	}

	result, _ := json.MarshalIndent(file, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleFileTextExtract(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, err := client.FileTextContent(ctx, fileID)
	if err != nil {
		return common.BoxErrorResult("extract file text", err), nil
	}

	return mcp.NewToolResultText(text), nil
}

func handleFileTagList(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tags, err := client.ListFileTags(ctx, fileID)
	if err != nil {
		return common.BoxErrorResult("list file tags", err), nil
	}

	if len(tags) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("File %s has no tags", fileID)), nil
	}

	result, _ := json.MarshalIndent(tags, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}
