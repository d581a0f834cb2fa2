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

func registerFileTransferTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	uploadTool := mcp.NewTool("box_file_upload",
		mcp.WithDescription("Upload text content as a new file in a Box folder"),
		mcp.WithString("parent_folder_id",
			mcp.Required(),
			mcp.Description("The ID of the folder to upload into. Use '0' for the root folder."),
		),
		mcp.WithString("file_name",
			mcp.Required(),
			mcp.Description("The name of the new file, including its extension"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The content of the new file"),
		),
	)

	s.AddTool(uploadTool, common.InstrumentedToolHandlerWithOperation(
		"box_file_upload", instrumentation.OperationUpload, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFileUpload(ctx, request, sc)
		}))

	copyTool := mcp.NewTool("box_file_copy",
		mcp.WithDescription("Copy a Box file into another folder"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file to copy"),
		),
		mcp.WithString("destination_folder_id",
			mcp.Required(),
			mcp.Description("The ID of the folder to copy the file into"),
		),
		mcp.WithString("new_name",
			mcp.Description("Optional new name for the copy"),
		),
	)

	s.AddTool(copyTool, common.InstrumentedToolHandlerWithOperation(
		"box_file_copy", instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFileCopy(ctx, request, sc)
		}))

	moveTool := mcp.NewTool("box_file_move",
		mcp.WithDescription("Move a Box file into another folder"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file to move"),
		),
		mcp.WithString("destination_folder_id",
			mcp.Required(),
			mcp.Description("The ID of the folder to move the file into"),
		),
	)

	s.AddTool(moveTool, common.InstrumentedToolHandlerWithOperation(
		"box_file_move", instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFileMove(ctx, request, sc)
		}))

	renameTool := mcp.NewTool("box_file_rename",
		mcp.WithDescription("Rename a Box file"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file to rename"),
		),
		mcp.WithString("new_name",
			mcp.Required(),
			mcp.Description("The new name for the file, including its extension"),
		),
	)

	s.AddTool(renameTool, common.InstrumentedToolHandlerWithOperation(
		"box_file_rename", instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFileRename(ctx, request, sc)
		}))

	deleteTool := mcp.NewTool("box_file_delete",
		mcp.WithDescription("Delete a Box file (moves it to the trash)"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file to delete"),
		),
	)

	s.AddTool(deleteTool, common.InstrumentedToolHandlerWithOperation(
		"box_file_delete", instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFileDelete(ctx, request, sc)
		}))
}

func handleFileUpload(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	parentID, ok := args["parent_folder_id"].(string)
	if !ok || parentID == "" {
		return mcp.NewToolResultError("parent_folder_id is required"), nil
	}

	fileName, ok := args["file_name"].(string)
	if !ok || fileName == "" {
		return mcp.NewToolResultError("file_name is required"), nil
	}

	content, ok := args["content"].(string)
	if !ok {
		return mcp.NewToolResultError("content is required"), nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	file, err := client.UploadFile(ctx, parentID, fileName, []byte(content))
	if err != nil {
		return common.BoxErrorResult("upload file", err), nil
	}

	result, _ := json.MarshalIndent(file, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("File uploaded successfully:\n%s", string(result))), nil
}

func handleFileCopy(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	destID, ok := args["destination_folder_id"].(string)
	if !ok || destID == "" {
		return mcp.NewToolResultError("destination_folder_id is required"), nil
	}

	newName, _ := args["new_name"].(string)

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	file, err := client.CopyFile(ctx, fileID, destID, newName)
	if err != nil {
		return common.BoxErrorResult("copy file", err), nil
	}

	result, _ := json.MarshalIndent(file, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("File copied successfully:\n%s", string(result))), nil
}

func handleFileMove(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	destID, ok := args["destination_folder_id"].(string)
	if !ok || destID == "" {
		return mcp.NewToolResultError("destination_folder_id is required"), nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	file, err := client.MoveFile(ctx, fileID, destID)
	if err != nil {
		return common.BoxErrorResult("move file", err), nil
	}

	result, _ := json.MarshalIndent(file, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("File moved successfully:\n%s", string(result))), nil
}

func handleFileRename(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	newName, ok := args["new_name"].(string)
	if !ok || newName == "" {
		return mcp.NewToolResultError("new_name is required"), nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	file, err := client.RenameFile(ctx, fileID, newName)
	if err != nil {
		return common.BoxErrorResult("rename file", err), nil
	}

	result, _ := json.MarshalIndent(file, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("File renamed successfully:\n%s", string(result))), nil
}

func handleFileDelete(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteFile(ctx, fileID); err != nil {
		return common.BoxErrorResult("delete file", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("File %s deleted successfully", fileID)), nil
}
