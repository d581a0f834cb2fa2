package generic

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/box-community/mcp-server-box/internal/box"
	"github.com/box-community/mcp-server-box/internal/boxauth"
	"github.com/box-community/mcp-server-box/internal/server"
)

func newToolContext(t *testing.T, handler http.Handler) *server.ServerContext {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sc, err := server.NewServerContext(context.Background(), server.Config{
		Mode: boxauth.ModeCCG,
		Environment: boxauth.Environment{
			ClientID:     "id",
			ClientSecret: "secret",
			SubjectType:  "enterprise",
			SubjectID:    "42",
		},
		Logger:        logger,
		TokenSource:   oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}),
		ClientOptions: []box.Option{box.WithBaseURL(srv.URL)},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleWhoAmI(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		_ = json.NewEncoder(w).Encode(box.User{
			Type: "user", ID: "333", Name: "App User", Login: "app@example.com",
		})
	}))

	result, err := handleWhoAmI(context.Background(), mcp.CallToolRequest{}, sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "App User")
	assert.Contains(t, text, "333")
}

func TestServerInfoTool(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	s := mcpserver.NewMCPServer("mcp-server-box", "1.2.3", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterGenericTools(s, sc, ServerInfo{
		Name:      "mcp-server-box",
		Version:   "1.2.3",
		Transport: "streamable-http",
		BoxAuth:   "ccg",
		Host:      "localhost",
		Port:      8001,
		ReadOnly:  true,
	}))

	resp := s.HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"mcp_server_info"}}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	out := string(raw)
	assert.Contains(t, out, "mcp-server-box")
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "streamable-http")
	assert.Contains(t, out, "ccg")
}

func TestRegisterGenericTools(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterGenericTools(s, sc, ServerInfo{Name: "test", Version: "0.0.0"}))

	resp := s.HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	names := string(raw)
	assert.Contains(t, names, "box_who_am_i")
	assert.Contains(t, names, "mcp_server_info")
}
