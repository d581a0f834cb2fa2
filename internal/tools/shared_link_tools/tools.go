package shared_link_tools

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

// RegisterSharedLinkTools registers the shared link tools for files and
// folders. Create and remove are only registered when readOnly is false.
func RegisterSharedLinkTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerSharedLinkGetTools(s, sc)

	if !readOnly {
		registerSharedLinkWriteTools(s, sc)
	}

	return nil
}

func registerSharedLinkGetTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	getFileLinkTool := mcp.NewTool("box_shared_link_file_get",
		mcp.WithDescription("Get the shared link on a Box file, if one exists"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
	)

	s.AddTool(getFileLinkTool, common.InstrumentedToolHandlerWithOperation(
		"box_shared_link_file_get", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSharedLinkGet(ctx, request, sc, "file")
		}))

	getFolderLinkTool := mcp.NewTool("box_shared_link_folder_get",
		mcp.WithDescription("Get the shared link on a Box folder, if one exists"),
		mcp.WithString("folder_id",
			mcp.Required(),
			mcp.Description("The ID of the folder"),
		),
	)

	s.AddTool(getFolderLinkTool, common.InstrumentedToolHandlerWithOperation(
		"box_shared_link_folder_get", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSharedLinkGet(ctx, request, sc, "folder")
		}))
}

func registerSharedLinkWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	linkOptions := func(idParam, idDesc string) []mcp.ToolOption {
		return []mcp.ToolOption{
			mcp.WithString(idParam,
				mcp.Required(),
				mcp.Description(idDesc),
			),
			mcp.WithString("access",
				mcp.Description("The level of access: 'open', 'company' or 'collaborators'. Defaults to the enterprise setting."),
			),
			mcp.WithString("password",
				mcp.Description("Optional password to protect the link"),
			),
			mcp.WithBoolean("can_download",
				mcp.Description("Whether the item can be downloaded through the link (default: true)"),
			),
		}
	}

	createFileLinkTool := mcp.NewTool("box_shared_link_file_create",
		append([]mcp.ToolOption{
			mcp.WithDescription("Create or update the shared link on a Box file"),
		}, linkOptions("file_id", "The ID of the file to share")...)...,
	)

	s.AddTool(createFileLinkTool, common.InstrumentedToolHandlerWithOperation(
		"box_shared_link_file_create", instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSharedLinkCreate(ctx, request, sc, "file")
		}))

	createFolderLinkTool := mcp.NewTool("box_shared_link_folder_create",
		append([]mcp.ToolOption{
			mcp.WithDescription("Create or update the shared link on a Box folder"),
		}, linkOptions("folder_id", "The ID of the folder to share")...)...,
	)

	s.AddTool(createFolderLinkTool, common.InstrumentedToolHandlerWithOperation(
		"box_shared_link_folder_create", instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSharedLinkCreate(ctx, request, sc, "folder")
		}))

	removeFileLinkTool := mcp.NewTool("box_shared_link_file_remove",
		mcp.WithDescription("Remove the shared link from a Box file"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
	)

	s.AddTool(removeFileLinkTool, common.InstrumentedToolHandlerWithOperation(
		"box_shared_link_file_remove", instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSharedLinkRemove(ctx, request, sc, "file")
		}))

	removeFolderLinkTool := mcp.NewTool("box_shared_link_folder_remove",
		mcp.WithDescription("Remove the shared link from a Box folder"),
		mcp.WithString("folder_id",
			mcp.Required(),
			mcp.Description("The ID of the folder"),
		),
	)

	s.AddTool(removeFolderLinkTool, common.InstrumentedToolHandlerWithOperation(
		"box_shared_link_folder_remove", instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSharedLinkRemove(ctx, request, sc, "folder")
		}))
}

func itemIDFromArgs(args map[string]any, itemType string) (string, *mcp.CallToolResult) {
	param := itemType + "_id"
	id, ok := args[param].(string)
	if !ok || id == "" {
		return "", mcp.NewToolResultError(param + " is required")
	}
	return id, nil
}

func handleSharedLinkGet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, itemType string) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	id, errResult := itemIDFromArgs(args, itemType)
	if errResult != nil {
		return errResult, nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var link *box.SharedLink
	if itemType == "file" {
		link, err = client.GetFileSharedLink(ctx, id)
	} else {
		link, err = client.GetFolderSharedLink(ctx, id)
	}
	if err != nil {
		return common.BoxErrorResult("get shared link", err), nil
	}

	if link == nil {
		return mcp.NewToolResultText(fmt.Sprintf("No shared link exists on %s %s", itemType, id)), nil
	}

	result, _ := json.MarshalIndent(link, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleSharedLinkCreate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, itemType string) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	id, errResult := itemIDFromArgs(args, itemType)
	if errResult != nil {
		return errResult, nil
	}

	opts := box.SharedLinkOptions{}

	if access, ok := args["access"].(string); ok && access != "" {
		switch access {
		case "open", "company", "collaborators":
			opts.Access = access
		default:
			return mcp.NewToolResultError("access must be 'open', 'company' or 'collaborators'"), nil
		}
	}
	if password, ok := args["password"].(string); ok && password != "" {
		opts.Password = password
	}
	if canDownload, ok := args["can_download"].(bool); ok {
		opts.CanDownload = &canDownload
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var link *box.SharedLink
	if itemType == "file" {
		link, err = client.CreateFileSharedLink(ctx, id, opts)
	} else {
		link, err = client.CreateFolderSharedLink(ctx, id, opts)
	}
	if err != nil {
		return common.BoxErrorResult("create shared link", err), nil
	}

	result, _ := json.MarshalIndent(link, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("Shared link created:\n%s", string(result))), nil
}

func handleSharedLinkRemove(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, itemType string) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	id, errResult := itemIDFromArgs(args, itemType)
	if errResult != nil {
		return errResult, nil
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if itemType == "file" {
		err = client.RemoveFileSharedLink(ctx, id)
	} else {
		err = client.RemoveFolderSharedLink(ctx, id)
	}
	if err != nil {
		return common.BoxErrorResult("remove shared link", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Shared link removed from %s %s", itemType, id)), nil
}
