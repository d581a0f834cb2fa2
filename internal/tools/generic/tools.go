package generic

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

// ServerInfo describes the running server for the mcp_server_info tool.
type ServerInfo struct {
	Name      string `json:"server_name"`
	Version   string `json:"version"`
	Transport string `json:"transport"`
	BoxAuth   string `json:"box_auth"`
	Host      string `json:"host,omitempty"`
	Port      int    `json:"port,omitempty"`
	ReadOnly  bool   `json:"read_only"`
}

// RegisterGenericTools registers the identity and server info tools with
// the MCP server.
func RegisterGenericTools(s *mcpserver.MCPServer, sc *server.ServerContext, info ServerInfo) error {
	whoAmITool := mcp.NewTool("box_who_am_i",
		mcp.WithDescription("Return information about the Box user the server is authenticated as"),
	)

	s.AddTool(whoAmITool, common.InstrumentedToolHandlerWithOperation(
		"box_who_am_i", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWhoAmI(ctx, request, sc)
		}))

	serverInfoTool := mcp.NewTool("mcp_server_info",
		mcp.WithDescription("Return information about this MCP server: name, version, transport and Box auth mode"),
	)

	s.AddTool(serverInfoTool, common.InstrumentedToolHandler(
		"mcp_server_info", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize server info: %v", err)), nil
			}
			return mcp.NewToolResultText(string(result)), nil
		}))

	return nil
}

func handleWhoAmI(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return common.BoxErrorResult("look up current user", err), nil
	}

	result, _ := json.MarshalIndent(user, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}
