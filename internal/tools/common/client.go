package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/box-community/mcp-server-box/internal/box"
	"github.com/box-community/mcp-server-box/internal/server"
)

// GetBoxClient returns the Box client for the current request. In the
// shared-credential modes this is the process-wide client; in pass-through
// mode it is the client minted for the request's bearer token.
func GetBoxClient(ctx context.Context, sc *server.ServerContext) (*box.Client, error) {
	client, err := sc.ActiveClient(ctx)
	if err != nil {
		var credErr *server.CredentialError
		if errors.As(err, &credErr) {
			return nil, fmt.Errorf(`no Box credentials available for this request. The server runs in %s mode, which requires each MCP request to carry a Bearer token in the Authorization header. Configure your MCP client to send its Box access token with every request.`, credErr.Mode)
		}
		return nil, err
	}
	return client, nil
}

// BoxErrorResult converts a Box API failure into a tool error result.
// Box API errors keep their status code and error code so the caller can
// distinguish a missing item from a permission problem.
func BoxErrorResult(action string, err error) *mcp.CallToolResult {
	var apiErr *box.APIError
	if errors.As(err, &apiErr) {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: Box API returned %d (%s): %s", action, apiErr.StatusCode, apiErr.Code, apiErr.Message))
	}
	return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
}
