package server

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/box-community/mcp-server-box/internal/mcp/gate"
)

func newTestMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("mcp-server-box-test", "0.0.0")
}

func newTestHTTPServer(t *testing.T, mutate func(*HTTPServerConfig)) *HTTPServer {
	t.Helper()
	cfg := HTTPServerConfig{
		Addr:      "localhost:0",
		BaseURL:   "http://localhost:8001",
		Transport: TransportStreamableHTTP,
		MCPServer: newTestMCPServer(),
		GateMiddleware: gate.Middleware(gate.Config{
			Validator:           gate.NewStaticValidator("sekrit"),
			ResourceMetadataURL: "http://localhost:8001/.well-known/oauth-protected-resource",
		}),
		Health: NewHealthChecker(nil),
		Logger: testLogger(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	srv, err := NewHTTPServer(cfg)
	require.NoError(t, err)
	return srv
}

func TestNewHTTPServerValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*HTTPServerConfig)
		wantErr string
	}{
		{
			name:    "missing mcp server",
			mutate:  func(c *HTTPServerConfig) { c.MCPServer = nil },
			wantErr: "mcp server is required",
		},
		{
			name:    "missing gate",
			mutate:  func(c *HTTPServerConfig) { c.GateMiddleware = nil },
			wantErr: "auth gate middleware is required",
		},
		{
			name:    "non-loopback http base url",
			mutate:  func(c *HTTPServerConfig) { c.BaseURL = "http://mcp.example.com" },
			wantErr: "requires HTTPS",
		},
		{
			name:    "unknown transport",
			mutate:  func(c *HTTPServerConfig) { c.Transport = "websocket" },
			wantErr: "unsupported transport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := HTTPServerConfig{
				Addr:      "localhost:0",
				BaseURL:   "http://localhost:8001",
				Transport: TransportStreamableHTTP,
				MCPServer: newTestMCPServer(),
				GateMiddleware: gate.Middleware(gate.Config{
					Validator: gate.NewStaticValidator("x"),
				}),
				Logger: testLogger(),
			}
			tt.mutate(&cfg)

			_, err := NewHTTPServer(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPServerGateProtectsMCPEndpoint(t *testing.T) {
	srv := newTestHTTPServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
}

func TestHTTPServerHealthBypassesGate(t *testing.T) {
	srv := newTestHTTPServer(t, nil)

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestHTTPServerSSEStreamsThroughMiddleware(t *testing.T) {
	srv := newTestHTTPServer(t, func(c *HTTPServerConfig) {
		c.Transport = TransportSSE
	})

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/sse", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer sekrit")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	// The first frame announces the message endpoint. It only arrives
	// when the SSE handler can flush through the composed middleware.
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "event: endpoint")
}

func TestHTTPServerCORSPreflight(t *testing.T) {
	srv := newTestHTTPServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	req.Header.Set("Origin", "https://client.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	// Preflights carry no Authorization header and must still succeed.
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "WWW-Authenticate")
}

func TestValidateHTTPSRequirement(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{url: "https://mcp.example.com", wantErr: false},
		{url: "http://localhost:8001", wantErr: false},
		{url: "http://127.0.0.1:8001", wantErr: false},
		{url: "http://[::1]:8001", wantErr: false},
		{url: "http://mcp.example.com", wantErr: true},
		{url: "ftp://mcp.example.com", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := validateHTTPSRequirement(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
