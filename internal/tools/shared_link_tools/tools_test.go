package shared_link_tools

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

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleSharedLinkCreateFile(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/files/12", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		link := body["shared_link"].(map[string]any)
		assert.Equal(t, "company", link["access"])

		_ = json.NewEncoder(w).Encode(box.File{
			ID:         "12",
			SharedLink: &box.SharedLink{URL: "https://app.box.com/s/abc", Access: "company"},
		})
	}))

	result, err := handleSharedLinkCreate(context.Background(), toolRequest(map[string]interface{}{
		"file_id": "12",
		"access":  "company",
	}), sc, "file")
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "https://app.box.com/s/abc")
}

func TestHandleSharedLinkCreateRejectsBadAccess(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	result, err := handleSharedLinkCreate(context.Background(), toolRequest(map[string]interface{}{
		"file_id": "12",
		"access":  "everyone",
	}), sc, "file")
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "access must be")
}

func TestHandleSharedLinkGetFolderNone(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/folders/9", r.URL.Path)
		_ = json.NewEncoder(w).Encode(box.Folder{ID: "9"})
	}))

	result, err := handleSharedLinkGet(context.Background(), toolRequest(map[string]interface{}{
		"folder_id": "9",
	}), sc, "folder")
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "No shared link exists on folder 9")
}

func TestHandleSharedLinkRemoveFile(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "null", string(body["shared_link"]))
		_ = json.NewEncoder(w).Encode(box.File{ID: "12"})
	}))

	result, err := handleSharedLinkRemove(context.Background(), toolRequest(map[string]interface{}{
		"file_id": "12",
	}), sc, "file")
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "removed from file 12")
}

func TestHandleSharedLinkMissingID(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	result, err := handleSharedLinkGet(context.Background(), toolRequest(map[string]interface{}{}), sc, "folder")
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "folder_id is required")
}

func TestRegisterSharedLinkToolsReadOnly(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterSharedLinkTools(s, sc, true))

	resp := s.HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	names := string(raw)
	assert.Contains(t, names, "box_shared_link_file_get")
	assert.Contains(t, names, "box_shared_link_folder_get")
	assert.NotContains(t, names, "box_shared_link_file_create")
	assert.NotContains(t, names, "box_shared_link_folder_remove")
}
