package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/box-community/mcp-server-box/internal/instrumentation"
	"github.com/box-community/mcp-server-box/internal/logging"
	"github.com/box-community/mcp-server-box/internal/mcp/discovery"
	"github.com/box-community/mcp-server-box/internal/mcp/gate"
)

// Supported network transports.
const (
	TransportSSE            = "sse"
	TransportStreamableHTTP = "streamable-http"
)

// HTTPServerConfig assembles the network-facing HTTP server.
type HTTPServerConfig struct {
	// Addr is the listen address, e.g. "localhost:8001".
	Addr string
	// BaseURL is the externally visible URL of this server. OAuth 2.1
	// requires https except for loopback hosts.
	BaseURL string
	// Transport selects the MCP wire transport: sse or streamable-http.
	Transport string

	MCPServer *mcpserver.MCPServer
	// GateMiddleware guards the MCP endpoints. Required; pass an
	// all-public gate explicitly when MCP auth is disabled.
	GateMiddleware func(http.Handler) http.Handler
	// Discovery, when set, mounts the OAuth discovery surface.
	Discovery *discovery.Responder
	Health    *HealthChecker

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// HTTPServer is the composed network server: discovery routes, health
// probes and the gated MCP endpoints behind permissive CORS. The mux is
// built once at construction and never mutated afterwards.
type HTTPServer struct {
	httpServer *http.Server
	addr       string
	transport  string
	logger     *slog.Logger
}

// NewHTTPServer validates cfg and builds the full handler chain.
func NewHTTPServer(cfg HTTPServerConfig) (*HTTPServer, error) {
	if cfg.MCPServer == nil {
		return nil, fmt.Errorf("mcp server is required")
	}
	if cfg.GateMiddleware == nil {
		return nil, fmt.Errorf("auth gate middleware is required")
	}
	if err := validateHTTPSRequirement(cfg.BaseURL); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	if cfg.Discovery != nil {
		cfg.Discovery.RegisterRoutes(mux)
	}
	if cfg.Health != nil {
		cfg.Health.RegisterHealthEndpoints(mux)
	}

	switch cfg.Transport {
	case TransportSSE:
		sseServer := mcpserver.NewSSEServer(cfg.MCPServer,
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
			mcpserver.WithSSEContextFunc(bearerContextFunc),
		)
		mux.Handle("/sse", sseServer)
		mux.Handle("/message", sseServer)

	case TransportStreamableHTTP:
		streamServer := mcpserver.NewStreamableHTTPServer(cfg.MCPServer,
			mcpserver.WithEndpointPath("/mcp"),
			mcpserver.WithStateLess(true),
			mcpserver.WithHTTPContextFunc(bearerContextFunc),
		)
		mux.Handle("/mcp", streamServer)

	default:
		return nil, fmt.Errorf("unsupported transport %q (expected sse or streamable-http)", cfg.Transport)
	}

	// Gate first so it completes before any MCP handling, CORS outermost
	// so preflights are answered without a token.
	var handler http.Handler = cfg.GateMiddleware(mux)
	handler = requestMetrics(cfg.Metrics, handler)
	handler = corsMiddleware(handler)

	return &HTTPServer{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		addr:      cfg.Addr,
		transport: cfg.Transport,
		logger:    logger,
	}, nil
}

// Start serves until Shutdown or a listener error. It blocks.
func (s *HTTPServer) Start() error {
	s.logger.Info("starting mcp http server",
		slog.String("addr", s.addr),
		slog.String(logging.KeyTransport, s.transport))

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down mcp http server", slog.String("addr", s.addr))
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the composed handler chain for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// bearerContextFunc carries the gate-validated bearer token into the MCP
// tool context. It re-extracts from the Authorization header for
// transports that rebuild the context per message.
func bearerContextFunc(ctx context.Context, r *http.Request) context.Context {
	if token, ok := gate.BearerFromContext(r.Context()); ok {
		return gate.WithBearerToken(ctx, token)
	}
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if found && strings.EqualFold(scheme, "Bearer") && token != "" {
		return gate.WithBearerToken(ctx, token)
	}
	return ctx
}

// corsMiddleware applies the permissive CORS policy MCP clients expect
// and answers preflights directly.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Mcp-Protocol-Version, Content-Type, Authorization")
		h.Set("Access-Control-Expose-Headers", "WWW-Authenticate")
		h.Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestMetrics(metrics *instrumentation.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps the SSE transport streaming through the recorder; the
// handler type-asserts its writer to http.Flusher on connect.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// validateHTTPSRequirement enforces OAuth 2.1 transport rules: https
// everywhere, with http allowed only on loopback hosts.
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth 2.1 requires HTTPS for non-loopback hosts (got %s)", baseURL)
		}
		return nil
	}
	return fmt.Errorf("invalid URL scheme %q: must be http (loopback only) or https", u.Scheme)
}
