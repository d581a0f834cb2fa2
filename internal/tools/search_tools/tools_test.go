package search_tools

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

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected []string
	}{
		{name: "missing", input: nil, expected: nil},
		{name: "empty string", input: "", expected: nil},
		{name: "single entry", input: "pdf", expected: []string{"pdf"}},
		{name: "multiple entries", input: "pdf,docx,xlsx", expected: []string{"pdf", "docx", "xlsx"}},
		{name: "spaces and empty parts", input: " pdf, ,docx , ", expected: []string{"pdf", "docx"}},
		{name: "non-string", input: float64(3), expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitList(tt.input))
		})
	}
}

func TestHandleSearchForwardsFilters(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "quarterly report", q.Get("query"))
		assert.Equal(t, "file", q.Get("type"))
		assert.Equal(t, "pdf,docx", q.Get("file_extensions"))
		assert.Equal(t, "0", q.Get("ancestor_folder_ids"))
		_ = json.NewEncoder(w).Encode(box.SearchResults{
			TotalCount: 1,
			Entries:    []box.SearchResult{{Type: "file", ID: "1", Name: "q1.pdf"}},
		})
	}))

	result, err := handleSearch(context.Background(), toolRequest(map[string]interface{}{
		"query":               "quarterly report",
		"type":                "file",
		"file_extensions":     "pdf, docx",
		"ancestor_folder_ids": "0",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "q1.pdf")
}

func TestHandleSearchRejectsBadType(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	result, err := handleSearch(context.Background(), toolRequest(map[string]interface{}{
		"query": "x",
		"type":  "webhook",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "type must be")
}

func TestHandleSearchNoResults(t *testing.T) {
	sc := newToolContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(box.SearchResults{})
	}))

	result, err := handleSearch(context.Background(), toolRequest(map[string]interface{}{
		"query": "nothing matches this",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "No results found")
}
