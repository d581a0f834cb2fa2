package discovery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMetadata = `{
  "resource": "https://mcp.example.com",
  "authorization_servers": ["https://issuer.example.com"],
  "scopes_supported": ["box.read", "box.write"],
  "bearer_methods_supported": ["header"]
}`

func newTestResponder(t *testing.T, cfg Config) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	New(cfg).RegisterRoutes(mux)
	return mux
}

func loadedConfig(t *testing.T) Config {
	t.Helper()
	var meta ProtectedResourceMetadata
	require.NoError(t, json.Unmarshal([]byte(testMetadata), &meta))
	return Config{
		Raw:             []byte(testMetadata),
		Meta:            &meta,
		DCRClientID:     "fixed-client",
		DCRClientSecret: "fixed-secret",
	}
}

func TestLoadProtectedResource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".oauth-protected-resource.json")
	require.NoError(t, os.WriteFile(path, []byte(testMetadata), 0o600))

	raw, meta, err := LoadProtectedResource(path)
	require.NoError(t, err)
	assert.Equal(t, []byte(testMetadata), raw)
	assert.Equal(t, "https://mcp.example.com", meta.Resource)
	assert.Equal(t, []string{"https://issuer.example.com"}, meta.AuthorizationServers)

	t.Run("missing file", func(t *testing.T) {
		_, _, err := LoadProtectedResource(filepath.Join(dir, "absent.json"))
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
		_, _, err := LoadProtectedResource(bad)
		assert.Error(t, err)
	})

	t.Run("missing resource field", func(t *testing.T) {
		noResource := filepath.Join(dir, "nores.json")
		require.NoError(t, os.WriteFile(noResource, []byte(`{"authorization_servers":[]}`), 0o600))
		_, _, err := LoadProtectedResource(noResource)
		assert.ErrorContains(t, err, "no resource field")
	})
}

func TestProtectedResourceServedVerbatim(t *testing.T) {
	mux := newTestResponder(t, loadedConfig(t))

	for _, path := range []string{
		"/.well-known/oauth-protected-resource",
		"/.well-known/oauth-protected-resource/mcp",
	} {
		t.Run(path, func(t *testing.T) {
			var bodies []string
			for range 3 {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
				bodies = append(bodies, rec.Body.String())
			}
			assert.Equal(t, testMetadata, bodies[0], "file bytes served unmodified")
			assert.Equal(t, bodies[0], bodies[1])
			assert.Equal(t, bodies[1], bodies[2])
		})
	}
}

func TestProtectedResourceMissingDocument(t *testing.T) {
	mux := newTestResponder(t, Config{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/oauth-protected-resource", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "server_error", body["error"])
}

func TestAuthorizationServerProxyPatchesRegistration(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/oauth-authorization-server" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 "https://issuer.example.com",
			"authorization_endpoint": "https://issuer.example.com/authorize",
			"token_endpoint":         "https://issuer.example.com/token",
		})
	}))
	defer upstream.Close()

	cfg := loadedConfig(t)
	cfg.Meta.AuthorizationServers = []string{upstream.URL}
	mux := newTestResponder(t, cfg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/oauth-authorization-server", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "https://issuer.example.com/authorize", doc["authorization_endpoint"])
	assert.Equal(t, "https://mcp.example.com/oauth/register", doc["registration_endpoint"],
		"missing registration_endpoint is pointed at our stub")
}

func TestAuthorizationServerProxyKeepsUpstreamRegistration(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"issuer":                "https://issuer.example.com",
			"registration_endpoint": "https://issuer.example.com/register",
		})
	}))
	defer upstream.Close()

	cfg := loadedConfig(t)
	cfg.Meta.AuthorizationServers = []string{upstream.URL}
	mux := newTestResponder(t, cfg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/oauth-authorization-server", nil))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "https://issuer.example.com/register", doc["registration_endpoint"])
}

func TestAuthorizationServerNoUpstreamConfigured(t *testing.T) {
	cfg := loadedConfig(t)
	cfg.Meta.AuthorizationServers = nil
	mux := newTestResponder(t, cfg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/oauth-authorization-server", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthorizationServerUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	cfg := loadedConfig(t)
	cfg.Meta.AuthorizationServers = []string{upstream.URL}
	mux := newTestResponder(t, cfg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/oauth-authorization-server", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestOpenIDConfigurationAlwaysNotFound(t *testing.T) {
	mux := newTestResponder(t, loadedConfig(t))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/openid-configuration", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "oauth-protected-resource")
}

func TestRegisterEchoesAndIssuesFixedPair(t *testing.T) {
	mux := newTestResponder(t, loadedConfig(t))

	body := `{
	  "client_name": "Example MCP Client",
	  "redirect_uris": ["https://client.example.com/cb"],
	  "grant_types": ["authorization_code"],
	  "response_types": ["code"]
	}`
	req := httptest.NewRequest(http.MethodPost, "/oauth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp ClientRegistrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "fixed-client", resp.ClientID)
	assert.Equal(t, "fixed-secret", resp.ClientSecret)
	assert.Equal(t, []string{"https://client.example.com/cb"}, resp.RedirectURIs)
	assert.Equal(t, []string{"authorization_code"}, resp.GrantTypes)
	assert.NotZero(t, resp.ClientIDIssuedAt)
}

func TestRegisterDefaultsOnEmptyBody(t *testing.T) {
	mux := newTestResponder(t, loadedConfig(t))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/register", nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp ClientRegistrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"authorization_code", "refresh_token"}, resp.GrantTypes)
	assert.Equal(t, []string{"code"}, resp.ResponseTypes)
	assert.Equal(t, "client_secret_post", resp.TokenEndpointAuthMethod)
}

func TestRegisterUnconfigured(t *testing.T) {
	cfg := loadedConfig(t)
	cfg.DCRClientID = ""
	mux := newTestResponder(t, cfg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/oauth/register", strings.NewReader("{}")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestResourceMetadataURL(t *testing.T) {
	cfg := loadedConfig(t)
	d := New(cfg)
	assert.Equal(t, "https://mcp.example.com/.well-known/oauth-protected-resource", d.ResourceMetadataURL())

	assert.Empty(t, New(Config{}).ResourceMetadataURL())
}

func TestConfigFilePath(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	assert.Equal(t, DefaultConfigFile, ConfigFilePath())

	t.Setenv(ConfigFileEnv, "/etc/mcp/prm.json")
	assert.Equal(t, "/etc/mcp/prm.json", ConfigFilePath())
}
