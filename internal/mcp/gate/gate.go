package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/box-community/mcp-server-box/internal/logging"
)

// publicPaths are served without a bearer token: discovery metadata must
// be reachable before a client has obtained credentials, and liveness
// probes never carry one.
var publicPaths = map[string]bool{
	"/.well-known/oauth-protected-resource":         true,
	"/.well-known/oauth-protected-resource/mcp":     true,
	"/.well-known/oauth-authorization-server":       true,
	"/.well-known/oauth-authorization-server/mcp":   true,
	"/.well-known/openid-configuration":             true,
	"/.well-known/openid-configuration/mcp":         true,
	"/oauth/register":                               true,
	"/healthz":                                      true,
	"/healthz/detailed":                             true,
	"/readyz":                                       true,
}

// IsPublicPath reports whether path bypasses token validation.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}

// TokenValidator checks a bearer token. Implementations must honor ctx
// cancellation on any network call.
type TokenValidator interface {
	Validate(ctx context.Context, token string) error
}

// DecisionRecorder receives the outcome of every gate decision. It is the
// seam the instrumentation layer plugs into.
type DecisionRecorder interface {
	RecordAuthDecision(ctx context.Context, outcome string)
}

// Gate decision outcomes.
const (
	OutcomePublic       = "public_path"
	OutcomeAccepted     = "accepted"
	OutcomeMisconfig    = "misconfigured"
	OutcomeNoHeader     = "missing_header"
	OutcomeBadScheme    = "bad_scheme"
	OutcomeInvalidToken = "invalid_token"
)

// Config assembles a gate middleware.
type Config struct {
	// Validator checks bearer tokens. A nil validator is a deployment
	// error and every protected request answers 500.
	Validator TokenValidator
	// ResourceMetadataURL is advertised in WWW-Authenticate challenges
	// so clients can discover how to obtain a token.
	ResourceMetadataURL string
	Logger              *slog.Logger
	// Recorder is optional.
	Recorder DecisionRecorder
}

// ErrorResponse is the JSON body of every gate rejection.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Middleware returns an HTTP middleware enforcing bearer authentication
// on every non-public path. The gate runs to completion before the
// wrapped handler sees the request.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicPath(r.URL.Path) {
				record(cfg.Recorder, r.Context(), OutcomePublic)
				next.ServeHTTP(w, r)
				return
			}

			if cfg.Validator == nil {
				logger.ErrorContext(r.Context(), "auth gate has no validator configured",
					slog.String(logging.KeyPath, r.URL.Path))
				record(cfg.Recorder, r.Context(), OutcomeMisconfig)
				writeError(w, http.StatusInternalServerError, "", ErrorResponse{
					Error:            "invalid_token",
					ErrorDescription: "Server authentication is not configured",
				})
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				record(cfg.Recorder, r.Context(), OutcomeNoHeader)
				cfg.unauthorized(w, ErrorResponse{
					Error:            "invalid_request",
					ErrorDescription: "Authorization header is required",
				})
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				record(cfg.Recorder, r.Context(), OutcomeBadScheme)
				cfg.unauthorized(w, ErrorResponse{
					Error:            "invalid_request",
					ErrorDescription: "Authorization header must use the Bearer scheme",
				})
				return
			}

			if err := cfg.Validator.Validate(r.Context(), token); err != nil {
				logger.WarnContext(r.Context(), "bearer token rejected",
					slog.String(logging.KeyPath, r.URL.Path),
					logging.Err(err))
				record(cfg.Recorder, r.Context(), OutcomeInvalidToken)
				cfg.unauthorized(w, ErrorResponse{
					Error:            "invalid_token",
					ErrorDescription: "Bearer token is invalid or expired",
				})
				return
			}

			record(cfg.Recorder, r.Context(), OutcomeAccepted)
			next.ServeHTTP(w, r.WithContext(WithBearerToken(r.Context(), token)))
		})
	}
}

func (cfg Config) unauthorized(w http.ResponseWriter, body ErrorResponse) {
	challenge := fmt.Sprintf("Bearer realm=%q, resource_metadata=%q", "OAuth", cfg.ResourceMetadataURL)
	writeError(w, http.StatusUnauthorized, challenge, body)
}

func writeError(w http.ResponseWriter, status int, challenge string, body ErrorResponse) {
	if challenge != "" {
		w.Header().Set("WWW-Authenticate", challenge)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func record(rec DecisionRecorder, ctx context.Context, outcome string) {
	if rec != nil {
		rec.RecordAuthDecision(ctx, outcome)
	}
}
