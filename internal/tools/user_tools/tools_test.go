package user_tools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
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

func TestHandleUsersCurrent(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		_ = json.NewEncoder(w).Encode(box.User{
			Type: "user", ID: "111", Name: "Service Account", Login: "svc@example.com",
		})
	}))

	result, err := handleUsersCurrent(context.Background(), toolRequest(nil), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Service Account")
	assert.Contains(t, text, "svc@example.com")
}

func TestHandleUsersSearch(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "smith", r.URL.Query().Get("filter_term"))
		_ = json.NewEncoder(w).Encode(box.UserCollection{
			TotalCount: 1,
			Entries:    []box.User{{Type: "user", ID: "8", Name: "Jo Smith"}},
		})
	}))

	result, err := handleUsersSearch(context.Background(), toolRequest(map[string]interface{}{
		"query": "smith",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Jo Smith")
}

func TestHandleUsersSearchNoMatches(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(box.UserCollection{})
	}))

	result, err := handleUsersSearch(context.Background(), toolRequest(map[string]interface{}{
		"query": "nobody",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "No users found")
}

func TestHandleUsersListForbidden(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"type":"error","status":403,"code":"access_denied_insufficient_permissions","message":"Access denied"}`))
	}))

	result, err := handleUsersList(context.Background(), toolRequest(map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "403")
}
