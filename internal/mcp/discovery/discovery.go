package discovery

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/box-community/mcp-server-box/internal/logging"
)

// Responder serves the OAuth discovery surface: protected-resource
// metadata, proxied authorization-server metadata and the registration
// stub. All routes are public; the auth gate allow-lists them.
type Responder struct {
	raw  []byte
	meta *ProtectedResourceMetadata

	dcrClientID     string
	dcrClientSecret string

	logger     *slog.Logger
	httpClient *http.Client
	now        func() time.Time
}

// Config assembles a Responder.
type Config struct {
	// Raw is the operator's protected-resource document, served
	// verbatim. Nil means the document is missing and the metadata
	// endpoint answers 500.
	Raw  []byte
	Meta *ProtectedResourceMetadata

	// DCRClientID and DCRClientSecret are the pre-provisioned pair the
	// registration stub hands out.
	DCRClientID     string
	DCRClientSecret string

	Logger     *slog.Logger
	HTTPClient *http.Client
}

// New builds a Responder.
func New(cfg Config) *Responder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Responder{
		raw:             cfg.Raw,
		meta:            cfg.Meta,
		dcrClientID:     cfg.DCRClientID,
		dcrClientSecret: cfg.DCRClientSecret,
		logger:          logger,
		httpClient:      client,
		now:             time.Now,
	}
}

// ResourceMetadataURL is the URL advertised in WWW-Authenticate
// challenges. Empty when no document is configured.
func (d *Responder) ResourceMetadataURL() string {
	if d.meta == nil {
		return ""
	}
	return strings.TrimRight(d.meta.Resource, "/") + "/.well-known/oauth-protected-resource"
}

// AuthorizationServer returns the first configured upstream issuer.
func (d *Responder) AuthorizationServer() string {
	if d.meta == nil || len(d.meta.AuthorizationServers) == 0 {
		return ""
	}
	return d.meta.AuthorizationServers[0]
}

// RegisterRoutes mounts the discovery surface on mux.
func (d *Responder) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/.well-known/oauth-protected-resource", d.handleProtectedResource)
	mux.HandleFunc("/.well-known/oauth-protected-resource/mcp", d.handleProtectedResource)
	mux.HandleFunc("/.well-known/oauth-authorization-server", d.handleAuthorizationServer)
	mux.HandleFunc("/.well-known/oauth-authorization-server/mcp", d.handleAuthorizationServer)
	mux.HandleFunc("/.well-known/openid-configuration", d.handleOpenIDConfiguration)
	mux.HandleFunc("/.well-known/openid-configuration/mcp", d.handleOpenIDConfiguration)
	mux.HandleFunc("/oauth/register", d.handleRegister)
}

func (d *Responder) handleProtectedResource(w http.ResponseWriter, r *http.Request) {
	if d.raw == nil {
		d.logger.ErrorContext(r.Context(), "protected resource metadata not configured",
			slog.String(logging.KeyPath, r.URL.Path))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":             "server_error",
			"error_description": "Protected resource metadata is not configured",
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.raw)
}

func (d *Responder) handleAuthorizationServer(w http.ResponseWriter, r *http.Request) {
	upstream := d.AuthorizationServer()
	if upstream == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":             "not_found",
			"error_description": "No authorization server is configured for this resource",
		})
		return
	}

	doc, err := d.fetchUpstreamMetadata(r, upstream)
	if err != nil {
		d.logger.ErrorContext(r.Context(), "fetching authorization server metadata",
			slog.String("issuer", upstream), logging.Err(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":             "server_error",
			"error_description": "Authorization server metadata is unavailable",
		})
		return
	}

	// Clients that rely on dynamic registration need an endpoint even
	// when the upstream does not publish one; ours answers with the
	// pre-provisioned pair.
	if _, ok := doc["registration_endpoint"]; !ok && d.meta != nil {
		doc["registration_endpoint"] = strings.TrimRight(d.meta.Resource, "/") + "/oauth/register"
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_ = json.NewEncoder(w).Encode(doc)
}

func (d *Responder) fetchUpstreamMetadata(r *http.Request, issuer string) (map[string]any, error) {
	base := strings.TrimRight(issuer, "/")
	paths := []string{
		base + "/.well-known/oauth-authorization-server",
		base + "/.well-known/openid-configuration",
	}

	var lastErr error
	for _, u := range paths {
		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		resp, err := d.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("%s returned %d", u, resp.StatusCode)
			continue
		}
		var doc map[string]any
		if err := json.Unmarshal(body, &doc); err != nil {
			lastErr = fmt.Errorf("parsing %s: %w", u, err)
			continue
		}
		return doc, nil
	}
	return nil, lastErr
}

func (d *Responder) handleOpenIDConfiguration(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error":             "not_found",
		"error_description": "This server is an OAuth protected resource, not an OpenID provider; see /.well-known/oauth-protected-resource",
	})
}

func (d *Responder) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
			"error":             "invalid_request",
			"error_description": "Registration accepts GET or POST",
		})
		return
	}
	if d.dcrClientID == "" {
		d.logger.ErrorContext(r.Context(), "dynamic client registration requested without configured client pair")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":             "server_error",
			"error_description": "Client registration is not configured",
		})
		return
	}

	var req ClientRegistrationRequest
	if r.Body != nil {
		// A GET or an empty POST body registers with defaults.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	resp := ClientRegistrationResponse{
		ClientID:                d.dcrClientID,
		ClientSecret:            d.dcrClientSecret,
		ClientIDIssuedAt:        d.now().Unix(),
		ClientName:              req.ClientName,
		RedirectURIs:            req.RedirectURIs,
		GrantTypes:              req.GrantTypes,
		ResponseTypes:           req.ResponseTypes,
		TokenEndpointAuthMethod: req.TokenEndpointAuthMethod,
		Scope:                   req.Scope,
	}
	if len(resp.GrantTypes) == 0 {
		resp.GrantTypes = []string{"authorization_code", "refresh_token"}
	}
	if len(resp.ResponseTypes) == 0 {
		resp.ResponseTypes = []string{"code"}
	}
	if resp.TokenEndpointAuthMethod == "" {
		resp.TokenEndpointAuthMethod = "client_secret_post"
	}

	d.logger.InfoContext(r.Context(), "issued pre-provisioned client registration",
		slog.String("client_name", req.ClientName))
	writeJSON(w, http.StatusCreated, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
