package ai_tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/box-community/mcp-server-box/internal/box"
	"github.com/box-community/mcp-server-box/internal/instrumentation"
	"github.com/box-community/mcp-server-box/internal/server"
	"github.com/box-community/mcp-server-box/internal/tools/common"
)

// RegisterAITools registers the Box AI question tools with the MCP server.
func RegisterAITools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	askSingleTool := mcp.NewTool("box_ai_ask_file_single",
		mcp.WithDescription("Ask Box AI a question about a single file"),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The ID of the file to ask about"),
		),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("The question to ask about the file"),
		),
	)

	s.AddTool(askSingleTool, common.InstrumentedToolHandlerWithOperation(
		"box_ai_ask_file_single", instrumentation.OperationAsk, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAIAskSingle(ctx, request, sc)
		}))

	askMultiTool := mcp.NewTool("box_ai_ask_file_multi",
		mcp.WithDescription("Ask Box AI a question grounded on multiple files"),
		mcp.WithString("file_ids",
			mcp.Required(),
			mcp.Description("Comma-separated list of file IDs to ask about"),
		),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("The question to ask about the files"),
		),
	)

	s.AddTool(askMultiTool, common.InstrumentedToolHandlerWithOperation(
		"box_ai_ask_file_multi", instrumentation.OperationAsk, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAIAskMulti(ctx, request, sc)
		}))

	return nil
}

func handleAIAskSingle(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	prompt, ok := args["prompt"].(string)
	if !ok || prompt == "" {
		return mcp.NewToolResultError("prompt is required"), nil
	}

	items := []box.AIItem{{Type: "file", ID: fileID}}
	return askAI(ctx, sc, box.AIModeSingleItem, prompt, items)
}

func handleAIAskMulti(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileIDsRaw, ok := args["file_ids"].(string)
	if !ok || fileIDsRaw == "" {
		return mcp.NewToolResultError("file_ids is required"), nil
	}

	prompt, ok := args["prompt"].(string)
	if !ok || prompt == "" {
		return mcp.NewToolResultError("prompt is required"), nil
	}

	var items []box.AIItem
	for _, id := range strings.Split(fileIDsRaw, ",") {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			items = append(items, box.AIItem{Type: "file", ID: trimmed})
		}
	}
	if len(items) == 0 {
		return mcp.NewToolResultError("file_ids must contain at least one file ID"), nil
	}

	mode := box.AIModeMultipleItem
	if len(items) == 1 {
		mode = box.AIModeSingleItem
	}
	return askAI(ctx, sc, mode, prompt, items)
}

func askAI(ctx context.Context, sc *server.ServerContext, mode, prompt string, items []box.AIItem) (*mcp.CallToolResult, error) {
	client, err := common.GetBoxClient(ctx, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response, err := client.AIAsk(ctx, mode, prompt, items)
	if err != nil {
		return common.BoxErrorResult("ask Box AI", err), nil
	}

	return mcp.NewToolResultText(response.Answer), nil
}
