package gate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInactive is returned when the issuer's introspection endpoint
// reports a token as not active.
var ErrTokenInactive = errors.New("token reported inactive by issuer")

// OIDCConfig configures issuer-backed token validation.
type OIDCConfig struct {
	// IssuerURL is the authorization server whose tokens are accepted.
	IssuerURL string
	// Audience, when set, must appear in the token's aud claim.
	Audience string
	// ClientID and ClientSecret authenticate introspection calls for
	// opaque tokens.
	ClientID     string
	ClientSecret string
	Logger       *slog.Logger
}

// OIDCValidator validates JWTs against the issuer's JWKS and falls back
// to RFC 7662 introspection for opaque tokens.
type OIDCValidator struct {
	cfg           OIDCConfig
	jwks          keyfunc.Keyfunc
	introspection string
	httpClient    *http.Client
}

// NewOIDCValidator discovers the issuer's metadata and fetches its JWKS.
func NewOIDCValidator(ctx context.Context, cfg OIDCConfig) (*OIDCValidator, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discovering issuer %s: %w", cfg.IssuerURL, err)
	}

	var meta struct {
		JWKSURI               string `json:"jwks_uri"`
		IntrospectionEndpoint string `json:"introspection_endpoint"`
	}
	if err := provider.Claims(&meta); err != nil {
		return nil, fmt.Errorf("reading issuer metadata: %w", err)
	}
	if meta.JWKSURI == "" {
		return nil, fmt.Errorf("issuer %s advertises no jwks_uri", cfg.IssuerURL)
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{meta.JWKSURI})
	if err != nil {
		return nil, fmt.Errorf("fetching JWKS from %s: %w", meta.JWKSURI, err)
	}

	return &OIDCValidator{
		cfg:           cfg,
		jwks:          jwks,
		introspection: meta.IntrospectionEndpoint,
		httpClient:    http.DefaultClient,
	}, nil
}

func (v *OIDCValidator) Validate(ctx context.Context, token string) error {
	if strings.Count(token, ".") == 2 {
		return v.validateJWT(token)
	}
	return v.introspect(ctx, token)
}

func (v *OIDCValidator) validateJWT(token string) error {
	opts := []jwt.ParserOption{
		jwt.WithIssuer(v.cfg.IssuerURL),
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512", "ES256", "ES384"}),
		jwt.WithExpirationRequired(),
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}
	if _, err := jwt.Parse(token, v.jwks.Keyfunc, opts...); err != nil {
		return fmt.Errorf("jwt validation: %w", err)
	}
	return nil
}

func (v *OIDCValidator) introspect(ctx context.Context, token string) error {
	if v.introspection == "" {
		return fmt.Errorf("opaque token presented but issuer %s advertises no introspection endpoint", v.cfg.IssuerURL)
	}

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.introspection,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(v.cfg.ClientID, v.cfg.ClientSecret)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("introspecting token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("introspection endpoint returned %d", resp.StatusCode)
	}

	var result struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding introspection response: %w", err)
	}
	if !result.Active {
		return ErrTokenInactive
	}
	return nil
}
