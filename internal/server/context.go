package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/box-community/mcp-server-box/internal/box"
	"github.com/box-community/mcp-server-box/internal/boxauth"
	"github.com/box-community/mcp-server-box/internal/instrumentation"
	"github.com/box-community/mcp-server-box/internal/logging"
	"github.com/box-community/mcp-server-box/internal/mcp/gate"
)

// Config assembles a ServerContext.
type Config struct {
	// Mode is the Box auth mode the server runs under.
	Mode boxauth.AuthMode
	// Environment carries the credential variables. Usually from
	// boxauth.LoadEnvironment.
	Environment boxauth.Environment

	Logger      *slog.Logger
	Metrics     *instrumentation.Metrics
	AuditLogger *instrumentation.AuditLogger

	// TokenSource overrides grant-based token acquisition. Tests use
	// this to avoid the Box token endpoint.
	TokenSource oauth2.TokenSource
	// ClientOptions are applied to every Box client built by this
	// context.
	ClientOptions []box.Option
}

// ServerContext owns the server's Box session. Credentials are resolved
// exactly once at construction. The grant-based modes (ccg, jwt) hold one
// shared client, immutable and identity-stable for the lifetime of the
// process. The delegated modes (oauth, mcp_client) hold no client and
// mint one per bearer token.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	mode   boxauth.AuthMode
	bundle boxauth.CredentialBundle

	// shared is set for the ccg and jwt modes.
	shared *box.Client
	// mintClient is set for the oauth and mcp_client modes. Per-request
	// clients are owned by the request that minted them and are never
	// cached; a bearer token must not outlive its holder's request.
	mintClient func(token string) *box.Client

	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.Mutex
	shutdown bool
}

// NewServerContext resolves credentials for cfg.Mode and establishes the
// Box session. For the grant-based modes this performs an initial token
// fetch so a misconfigured deployment fails at startup instead of on the
// first tool call.
func NewServerContext(ctx context.Context, cfg Config) (*ServerContext, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bundle, err := boxauth.Resolve(cfg.Mode, cfg.Environment)
	if err != nil {
		return nil, err
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:         sessionCtx,
		cancel:      cancel,
		mode:        cfg.Mode,
		bundle:      bundle,
		logger:      logger,
		metrics:     cfg.Metrics,
		auditLogger: cfg.AuditLogger,
	}

	switch cfg.Mode {
	case boxauth.ModeCCG, boxauth.ModeJWT:
		src := cfg.TokenSource
		if src == nil {
			src, err = boxauth.NewTokenSource(sessionCtx, bundle)
			if err != nil {
				cancel()
				cfg.Metrics.RecordTokenRefresh(ctx, instrumentation.TokenResultFailure)
				return nil, fmt.Errorf("establishing box session: %w", err)
			}
		}
		// Fetch a token now so bad credentials surface at startup.
		if _, err := src.Token(); err != nil {
			cancel()
			cfg.Metrics.RecordTokenRefresh(ctx, instrumentation.TokenResultFailure)
			return nil, fmt.Errorf("validating box credentials: %w", err)
		}
		cfg.Metrics.RecordTokenRefresh(ctx, instrumentation.TokenResultSuccess)
		sc.shared = box.NewClient(src, logger, cfg.ClientOptions...)

	case boxauth.ModeOAuth, boxauth.ModeMCPClient:
		sc.mintClient = func(token string) *box.Client {
			return box.NewClientWithToken(token, logger, cfg.ClientOptions...)
		}

	default:
		cancel()
		return nil, fmt.Errorf("unknown box auth mode %q", cfg.Mode)
	}

	logger.InfoContext(ctx, "box session established",
		logging.AuthMode(string(cfg.Mode)),
		logging.Subject(bundle.SubjectID))
	cfg.Metrics.IncrementActiveSessions(ctx)
	return sc, nil
}

// Context returns the session context. It is cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Mode returns the session's Box auth mode.
func (sc *ServerContext) Mode() boxauth.AuthMode {
	return sc.mode
}

// Subject returns the configured subject type and id, empty for modes
// without a server-side subject.
func (sc *ServerContext) Subject() (boxauth.SubjectType, string) {
	return sc.bundle.SubjectType, sc.bundle.SubjectID
}

// Metrics returns the metrics recorder, nil when instrumentation is
// disabled. The recorder's methods are nil-safe.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, nil when audit logging is
// disabled.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// ActiveClient returns the Box client for a request. In the shared-client
// modes the same instance is returned for every call. In the delegated
// modes the request context must carry a bearer token validated by the
// auth gate, and a fresh client scoped to that request is minted from it.
func (sc *ServerContext) ActiveClient(ctx context.Context) (*box.Client, error) {
	if sc.shared != nil {
		return sc.shared, nil
	}

	token, ok := gate.BearerFromContext(ctx)
	if !ok {
		return nil, &CredentialError{
			Mode:   string(sc.mode),
			Reason: "request context carries no bearer token",
		}
	}
	return sc.mintClient(token), nil
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.shutdown
}

// Shutdown cancels the session context. It is idempotent.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true

	sc.cancel()
	sc.metrics.DecrementActiveSessions(context.Background())
	sc.logger.Info("box session closed", logging.AuthMode(string(sc.mode)))
	return nil
}
