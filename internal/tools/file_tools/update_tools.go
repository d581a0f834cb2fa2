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

func registerFileUpdateTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	setDescriptionTool := mcp.NewTool("box_file_set_description",
		mcp.WithDescription("Set or replace the description of a Box file"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("The new description. An empty string clears the description."),
		),
	)

	s.AddTool(setDescriptionTool, common.InstrumentedToolHandlerWithOperation(
		"box_file_set_description", instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFileSetDescription(ctx, request, sc)
		}))

	lockTool := mcp.NewTool("box_file_lock",
		mcp.WithDescription("Lock a Box file to prevent edits by other users"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file to lock"),
		),
		mcp.WithBoolean("prevent_download",
			mcp.Description("Also prevent downloads while the file is locked (default: false)"),
		),
	)

	s.AddTool(lockTool, common.InstrumentedToolHandlerWithOperation(
		"box_file_lock", instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFileLock(ctx, request, sc)
		}))

	unlockTool := mcp.NewTool("box_file_unlock",
		mcp.WithDescription("Remove the lock from a Box file"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file to unlock"),
		),
	)

	s.AddTool(unlockTool, common.InstrumentedToolHandlerWithOperation(
		"box_file_unlock", instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFileUnlock(ctx, request, sc)
		}))

	tagAddTool := mcp.NewTool("box_file_tag_add",
		mcp.WithDescription("Add a tag to a Box file. Adding a tag that is already present is a no-op."),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
		mcp.WithString("tag",
			mcp.Required(),
			mcp.Description("The tag to add"),
		),
	)

	s.AddTool(tagAddTool, common.InstrumentedToolHandlerWithOperation(
		"box_file_tag_add", instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFileTagAdd(ctx, request, sc)
		}))

	tagRemoveTool := mcp.NewTool("box_file_tag_remove",
		mcp.WithDescription("Remove a tag from a Box file"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
		mcp.WithString("tag",
			mcp.Required(),
			mcp.Description("The tag to remove"),
		),
	)

	s.AddTool(tagRemoveTool, common.InstrumentedToolHandlerWithOperation(
		"box_file_tag_remove", instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFileTagRemove(ctx, request, sc)
		}))
}

func handleFileSetDescription(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	description, ok := args["description"].(string)
	if !ok {
		return mcp.NewToolResultError("description is required"), nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	file, err := client.SetFileDescription(ctx, fileID, description)
	if err != nil {
		return common.BoxErrorResult("set file description", err), nil
	}

	result, _ := json.MarshalIndent(file, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("Description updated:\n%s", string(result))), nil
}

func handleFileLock(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	preventDownload, _ := args["prevent_download"].(bool)

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	file, err := client.LockFile(ctx, fileID, preventDownload)
	if err != nil {
		return common.BoxErrorResult("lock file", err), nil
	}

	result, _ := json.MarshalIndent(file, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("File locked:\n%s", string(result))), nil
}

func handleFileUnlock(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := client.UnlockFile(ctx, fileID); err != nil {
		return common.BoxErrorResult("unlock file", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("File %s unlocked", fileID)), nil
}

func handleFileTagAdd(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	tag, ok := args["tag"].(string)
	if !ok || tag == "" {
		return mcp.NewToolResultError("tag is required"), nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tags, err := client.AddFileTag(ctx, fileID, tag)
	if err != nil {
		return common.BoxErrorResult("add file tag", err), nil
	}

	result, _ := json.MarshalIndent(tags, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("Tags on file %s:\n%s", fileID, string(result))), nil
}

func handleFileTagRemove(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	tag, ok := args["tag"].(string)
	if !ok || tag == "" {
		return mcp.NewToolResultError("tag is required"), nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tags, err := client.RemoveFileTag(ctx, fileID, tag)
	if err != nil {
		return common.BoxErrorResult("remove file tag", err), nil
	}

	result, _ := json.MarshalIndent(tags, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("Tags on file %s:\n%s", fileID, string(result))), nil
}
