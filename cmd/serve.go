package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/box-community/mcp-server-box/internal/boxauth"
	"github.com/box-community/mcp-server-box/internal/instrumentation"
	"github.com/box-community/mcp-server-box/internal/logging"
	"github.com/box-community/mcp-server-box/internal/mcp/discovery"
	"github.com/box-community/mcp-server-box/internal/mcp/gate"
	"github.com/box-community/mcp-server-box/internal/server"
	"github.com/box-community/mcp-server-box/internal/tools/ai_tools"
	"github.com/box-community/mcp-server-box/internal/tools/file_tools"
	"github.com/box-community/mcp-server-box/internal/tools/folder_tools"
	"github.com/box-community/mcp-server-box/internal/tools/generic"
	"github.com/box-community/mcp-server-box/internal/tools/search_tools"
	"github.com/box-community/mcp-server-box/internal/tools/shared_link_tools"
	"github.com/box-community/mcp-server-box/internal/tools/user_tools"
)

// transportStdio is the local transport; the network transports live in
// the server package.
const transportStdio = "stdio"

// MCP auth modes guarding the network transports.
const (
	mcpAuthNone  = "none"
	mcpAuthToken = "token"
	mcpAuthOAuth = "oauth"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// serveConfig collects every serve setting after flag parsing, environment
// fallback and startup overrides have been applied.
type serveConfig struct {
	Transport string
	Host      string
	Port      int
	BoxAuth   string
	MCPAuth   string
	Yolo      bool
	Debug     bool
	BaseURL   string
	Metrics   MetricsConfig
}

func newServeCmd() *cobra.Command {
	var cfg serveConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Box MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing Box content tools
for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events
  - streamable-http: Streamable HTTP transport (http is accepted as an alias)

Box Authentication (--box-auth):
  - oauth: user-delegated bearer token minted per request (BOX_CLIENT_ID
    and BOX_CLIENT_SECRET)
  - ccg: client credentials grant (BOX_CLIENT_ID, BOX_CLIENT_SECRET,
    BOX_SUBJECT_TYPE and BOX_SUBJECT_ID)
  - jwt: signed JWT assertion (key material from discrete env vars or
    BOX_JWT_CONFIG_FILE)
  - mcp_client: forward the bearer token each MCP request carries

MCP Authentication (--mcp-auth, network transports only):
  - none: no authentication on the MCP endpoints
  - token: static bearer token from BOX_MCP_SERVER_AUTH_TOKEN
  - oauth: validate bearer tokens against the issuer configured via
    BOX_MCP_OAUTH_ISSUER (plus optional audience and introspection
    client credentials)

The stdio transport always runs with MCP auth "none" (there is no network
boundary to protect), and MCP auth "oauth" always runs with Box auth
"mcp_client" (the caller's own token is the Box credential).

Safety Mode:
  By default, the server operates in read-only mode, providing only safe
  operations. Use --yolo to enable write operations (upload, delete,
  locking, shared link management).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.BaseURL == "" {
				cfg.BaseURL = os.Getenv("MCP_BASE_URL")
			}
			// Environment only applies when the flag was not set explicitly.
			if !cmd.Flags().Changed("metrics-enabled") {
				if v := os.Getenv("METRICS_ENABLED"); v != "" {
					if enabled, err := strconv.ParseBool(v); err == nil {
						cfg.Metrics.Enabled = enabled
					}
				}
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					cfg.Metrics.Addr = addr
				}
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&cfg.Transport, "transport", transportStdio, "Transport type: stdio, sse or streamable-http")
	cmd.Flags().StringVar(&cfg.Host, "host", "localhost", "Host for the sse and streamable-http transports")
	cmd.Flags().IntVar(&cfg.Port, "port", 8001, "Port for the sse and streamable-http transports")
	cmd.Flags().StringVar(&cfg.BoxAuth, "box-auth", string(boxauth.ModeOAuth), "Box auth mode: oauth, ccg, jwt or mcp_client")
	cmd.Flags().StringVar(&cfg.MCPAuth, "mcp-auth", mcpAuthToken, "MCP auth mode for network transports: none, token or oauth")
	cmd.Flags().BoolVar(&cfg.Yolo, "yolo", false, "Enable write operations (upload, delete, locking, shared links). Default is read-only mode.")
	cmd.Flags().StringVar(&cfg.BaseURL, "base-url", "", "Public base URL of this server (network transports only). Can also use MCP_BASE_URL env var.")
	cmd.Flags().BoolVar(&cfg.Metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&cfg.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// normalizeTransport maps the accepted transport spellings onto the
// canonical names, accepting "http" as an alias for streamable-http.
func normalizeTransport(s string) (string, error) {
	switch s {
	case transportStdio:
		return transportStdio, nil
	case server.TransportSSE:
		return server.TransportSSE, nil
	case "http", server.TransportStreamableHTTP:
		return server.TransportStreamableHTTP, nil
	}
	return "", fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", s)
}

// applyStartupOverrides enforces the two mode invariants before anything
// is constructed: stdio has no network boundary to protect, and MCP OAuth
// hands the caller's own bearer token to Box, which only the pass-through
// Box auth mode can do.
func applyStartupOverrides(cfg *serveConfig, logger *slog.Logger) {
	if cfg.Transport == transportStdio && cfg.MCPAuth != mcpAuthNone {
		logger.Warn("mcp auth must be 'none' when using stdio transport, overriding",
			slog.String("requested", cfg.MCPAuth))
		cfg.MCPAuth = mcpAuthNone
	}
	if cfg.MCPAuth == mcpAuthOAuth && cfg.BoxAuth != string(boxauth.ModeMCPClient) {
		logger.Warn("box auth must be 'mcp_client' when using MCP OAuth authentication, overriding",
			slog.String("requested", cfg.BoxAuth))
		cfg.BoxAuth = string(boxauth.ModeMCPClient)
	}
}

func runServe(cfg serveConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	transport, err := normalizeTransport(cfg.Transport)
	if err != nil {
		return err
	}
	cfg.Transport = transport

	// Stdio owns stdout for the MCP framing, so logs always go to stderr.
	logger := logging.New(os.Stderr, cfg.Debug)

	applyStartupOverrides(&cfg, logger)

	mode, err := boxauth.ParseAuthMode(cfg.BoxAuth)
	if err != nil {
		return err
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if cfg.Transport != transportStdio && cfg.Metrics.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Metrics.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			logger.Info("metrics server started", slog.String("addr", metricsServer.Addr()))
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}
	defer func() {
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("error during metrics server shutdown", logging.Err(err))
			}
		}
	}()

	env, err := boxauth.LoadEnvironment()
	if err != nil {
		return err
	}

	serverCfg := server.Config{
		Mode:        mode,
		Environment: env,
		Logger:      logger,
	}
	if provider.Enabled() {
		serverCfg.Metrics = provider.Metrics()
		serverCfg.AuditLogger = instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)
	}

	serverContext, err := server.NewServerContext(shutdownCtx, serverCfg)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("mcp-server-box", version,
		mcpserver.WithToolCapabilities(true),
	)

	// readOnly is the inverse of yolo
	readOnly := !cfg.Yolo
	if readOnly {
		logger.Info("starting server in read-only mode (use --yolo to enable write operations)")
	} else {
		logger.Info("starting server with write operations enabled (--yolo flag is set)")
	}

	info := generic.ServerInfo{
		Name:      "mcp-server-box",
		Version:   version,
		Transport: cfg.Transport,
		BoxAuth:   string(mode),
		ReadOnly:  readOnly,
	}
	if cfg.Transport != transportStdio {
		info.Host = cfg.Host
		info.Port = cfg.Port
	}

	if err := registerAllTools(mcpSrv, serverContext, readOnly, info); err != nil {
		return err
	}

	switch cfg.Transport {
	case transportStdio:
		return runStdioServer(mcpSrv)
	default:
		return runNetworkServer(shutdownCtx, mcpSrv, serverContext, cfg, provider, logger)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tool groups
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool, info generic.ServerInfo) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Generic",
			register: func() error {
				return generic.RegisterGenericTools(mcpSrv, sc, info)
			},
		},
		{
			name: "Files",
			register: func() error {
				return file_tools.RegisterFileTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Folders",
			register: func() error {
				return folder_tools.RegisterFolderTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Search",
			register: func() error {
				return search_tools.RegisterSearchTools(mcpSrv, sc)
			},
		},
		{
			name: "Shared Links",
			register: func() error {
				return shared_link_tools.RegisterSharedLinkTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Users",
			register: func() error {
				return user_tools.RegisterUserTools(mcpSrv, sc)
			},
		},
		{
			name: "AI",
			register: func() error {
				return ai_tools.RegisterAITools(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.name, err)
		}
	}

	return nil
}

func runNetworkServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, cfg serveConfig, provider *instrumentation.Provider, logger *slog.Logger) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s", addr)
		logger.Info("no base URL configured, derived from listen address",
			slog.String("base_url", baseURL))
		logger.Info("for deployed instances, set --base-url or the MCP_BASE_URL env var")
	}

	responder := newDiscoveryResponder(logger)

	gateMiddleware, err := newGateMiddleware(ctx, cfg.MCPAuth, responder, provider, logger)
	if err != nil {
		return err
	}

	healthChecker := server.NewHealthChecker(sc)

	httpServer, err := server.NewHTTPServer(server.HTTPServerConfig{
		Addr:           addr,
		BaseURL:        baseURL,
		Transport:      cfg.Transport,
		MCPServer:      mcpSrv,
		GateMiddleware: gateMiddleware,
		Discovery:      responder,
		Health:         healthChecker,
		Logger:         logger,
		Metrics:        provider.Metrics(),
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	logger.Info("mcp endpoints ready",
		slog.String("addr", addr),
		slog.String(logging.KeyTransport, cfg.Transport),
		slog.String("mcp_auth", cfg.MCPAuth))

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping http server")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down http server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("http server stopped with error: %w", err)
		}
	}

	return nil
}

// newGateMiddleware builds the auth gate for the selected MCP auth mode.
// Mode "none" returns a pass-through: requests flow straight to the MCP
// mux without a token check.
func newGateMiddleware(ctx context.Context, mcpAuth string, responder *discovery.Responder, provider *instrumentation.Provider, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	switch mcpAuth {
	case mcpAuthNone:
		return func(next http.Handler) http.Handler { return next }, nil

	case mcpAuthToken:
		var validator gate.TokenValidator
		if token := os.Getenv("BOX_MCP_SERVER_AUTH_TOKEN"); token != "" {
			validator = gate.NewStaticValidator(token)
		} else {
			// Leave the validator nil so the gate answers every protected
			// request with a 500 misconfiguration error.
			logger.Error("BOX_MCP_SERVER_AUTH_TOKEN is not set; all gated requests will be rejected")
		}
		return gate.Middleware(gate.Config{
			Validator:           validator,
			ResourceMetadataURL: responder.ResourceMetadataURL(),
			Logger:              logger,
			Recorder:            provider.Metrics(),
		}), nil

	case mcpAuthOAuth:
		oidcCfg := gate.OIDCConfig{
			IssuerURL:    os.Getenv("BOX_MCP_OAUTH_ISSUER"),
			Audience:     os.Getenv("BOX_MCP_OAUTH_AUDIENCE"),
			ClientID:     os.Getenv("BOX_MCP_OAUTH_CLIENT_ID"),
			ClientSecret: os.Getenv("BOX_MCP_OAUTH_CLIENT_SECRET"),
			Logger:       logger,
		}
		if oidcCfg.IssuerURL == "" {
			return nil, fmt.Errorf("mcp auth 'oauth' requires the BOX_MCP_OAUTH_ISSUER env var")
		}
		validator, err := gate.NewOIDCValidator(ctx, oidcCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure oauth token validation: %w", err)
		}
		return gate.Middleware(gate.Config{
			Validator:           validator,
			ResourceMetadataURL: responder.ResourceMetadataURL(),
			Logger:              logger,
			Recorder:            provider.Metrics(),
		}), nil
	}

	return nil, fmt.Errorf("unknown mcp auth mode %q (expected none, token or oauth)", mcpAuth)
}

// newDiscoveryResponder loads the protected-resource document. A missing
// or invalid document is not fatal: the discovery endpoints answer 500
// until the operator provides one.
func newDiscoveryResponder(logger *slog.Logger) *discovery.Responder {
	path := discovery.ConfigFilePath()
	raw, meta, err := discovery.LoadProtectedResource(path)
	if err != nil {
		logger.Warn("protected resource metadata unavailable, discovery endpoints will answer 500",
			slog.String(logging.KeyPath, path),
			logging.Err(err))
	}
	return discovery.New(discovery.Config{
		Raw:             raw,
		Meta:            meta,
		DCRClientID:     os.Getenv("BOX_DCR_CLIENT_ID"),
		DCRClientSecret: os.Getenv("BOX_DCR_CLIENT_SECRET"),
		Logger:          logger,
	})
}
