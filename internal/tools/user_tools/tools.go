package user_tools

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

// RegisterUserTools registers the enterprise user tools with the MCP
// server. Listing and searching users requires admin permissions on the
// Box enterprise; the tools surface the Box API error otherwise.
func RegisterUserTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	currentUserTool := mcp.NewTool("box_users_current",
		mcp.WithDescription("Get details of the Box user the current credentials act as"),
	)

	s.AddTool(currentUserTool, common.InstrumentedToolHandlerWithOperation(
		"box_users_current", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUsersCurrent(ctx, request, sc)
		}))

	listUsersTool := mcp.NewTool("box_users_list",
		mcp.WithDescription("List the users in the Box enterprise"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of users to return (default: 100)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Offset into the user listing for pagination (default: 0)"),
		),
	)

	s.AddTool(listUsersTool, common.InstrumentedToolHandlerWithOperation(
		"box_users_list", instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUsersList(ctx, request, sc)
		}))

	searchUsersTool := mcp.NewTool("box_users_search",
		mcp.WithDescription("Search the Box enterprise for users by name or login"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The name or login fragment to search for"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of users to return (default: 100)"),
		),
	)

	s.AddTool(searchUsersTool, common.InstrumentedToolHandlerWithOperation(
		"box_users_search", instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUsersSearch(ctx, request, sc)
		}))

	return nil
}

func handleUsersCurrent(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return common.BoxErrorResult("get current user", err), nil
	}

	result, _ := json.MarshalIndent(user, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleUsersList(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

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

	users, err := client.ListUsers(ctx, limit, offset)
	if err != nil {
		return common.BoxErrorResult("list users", err), nil
	}

	result, _ := json.MarshalIndent(users, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleUsersSearch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	limit := 100
	if limitVal, ok := args["limit"].(float64); ok && limitVal > 0 {
		limit = int(limitVal)
	}

	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	users, err := client.SearchUsers(ctx, query, limit)
	if err != nil {
		return common.BoxErrorResult("search users", err), nil
	}

	if len(users.Entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No users found for query: %s", query)), nil
	}

	result, _ := json.MarshalIndent(users, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}
