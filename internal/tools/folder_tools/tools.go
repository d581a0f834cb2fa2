package folder_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/box-community/mcp-server-box/internal/box"
	"github.com/box-community/mcp-server-box/internal/instrumentation"
	"github.com/box-community/mcp-server-box/internal/server"
	"github.com/box-community/mcp-server-box/internal/tools/common"
)

// RegisterFolderTools registers all folder-related tools with the MCP
// server. Create and delete are only registered when readOnly is false.
func RegisterFolderTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	folderInfoTool := mcp.NewTool("box_folder_info",
		mcp.WithDescription("Get metadata for a Box folder"),
		mcp.WithString("folder_id",
			mcp.Required(),
			mcp.Description("The ID of the folder. Use '0' for the root folder."),
		),
	)

	s.AddTool(folderInfoTool, common.InstrumentedToolHandlerWithOperation(
		"box_folder_info", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFolderInfo(ctx, request, sc)
		}))

	listItemsTool := mcp.NewTool("box_folder_list_items",
		mcp.WithDescription("List the files and subfolders inside a Box folder"),
		mcp.WithString("folder_id",
			mcp.Description("The ID of the folder to list. Defaults to '0', the root folder."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of items to return (default: 100)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Offset into the item listing for pagination (default: 0)"),
		),
	)

	s.AddTool(listItemsTool, common.InstrumentedToolHandlerWithOperation(
		"box_folder_list_items", instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFolderListItems(ctx, request, sc)
		}))

	if !readOnly {
		registerFolderWriteTools(s, sc)
	}

	return nil
}

func registerFolderWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createTool := mcp.NewTool("box_folder_create",
		mcp.WithDescription("Create a new folder in Box"),
		mcp.WithString("parent_folder_id",
			mcp.Required(),
			mcp.Description("The ID of the parent folder. Use '0' for the root folder."),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name of the new folder"),
		),
	)

	s.AddTool(createTool, common.InstrumentedToolHandlerWithOperation(
		"box_folder_create", instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFolderCreate(ctx, request, sc)
		}))

	deleteTool := mcp.NewTool("box_folder_delete",
		mcp.WithDescription("Delete a Box folder"),
		mcp.WithString("folder_id",
			mcp.Required(),
			mcp.Description("The ID of the folder to delete"),
		),
		mcp.WithBoolean("recursive",
			mcp.Description("Delete the folder even when it is not empty (default: false)"),
		),
	)

	s.AddTool(deleteTool, common.InstrumentedToolHandlerWithOperation(
		"box_folder_delete", instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFolderDelete(ctx, request, sc)
		}))
}

func handleFolderInfo(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	folderID, ok := args["folder_id"].(string)
	if !ok || folderID == "" {
		return mcp.NewToolResultError("folder_id is required"), nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	folder, err := client.GetFolder(ctx, folderID)
	if err != nil {
		return common.BoxErrorResult("get folder info", err), nil
	}

	result, _ := json.MarshalIndent(folder, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleFolderListItems(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	folderID := box.RootFolderID
	if folderVal, ok := args["folder_id"].(string); ok && folderVal != "" {
		folderID = folderVal
	}

	limit := 100
	if limitVal, ok := args["limit"].(float64); ok && limitVal > 0 {
		limit = int(limitVal)
	}

	offset := 0
	if offsetVal, ok := args["offset"].(float64); ok && offsetVal > 0 {
		offset = int(offsetVal)
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	items, err := client.ListFolderItems(ctx, folderID, limit, offset)
	if err != nil {
		return common.BoxErrorResult("list folder items", err), nil
	}

	result, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleFolderCreate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	parentID, ok := args["parent_folder_id"].(string)
	if !ok || parentID == "" {
		return mcp.NewToolResultError("parent_folder_id is required"), nil
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	folder, err := client.CreateFolder(ctx, parentID, name)
	if err != nil {
		return common.BoxErrorResult("create folder", err), nil
	}

	result, _ := json.MarshalIndent(folder, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("Folder created successfully:\n%s", string(result))), nil
}

func handleFolderDelete(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	folderID, ok := args["folder_id"].(string)
	if !ok || folderID == "" {
		return mcp.NewToolResultError("folder_id is required"), nil
	}

	recursive, _ := args["recursive"].(bool)

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteFolder(ctx, folderID, recursive); err != nil {
		return common.BoxErrorResult("delete folder", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Folder %s deleted successfully", folderID)), nil
}
