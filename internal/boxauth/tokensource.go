package boxauth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// BoxTokenURL is the Box OAuth 2.0 token endpoint. Overridable in token
// source constructors for tests.
const BoxTokenURL = "https://api.box.com/oauth2/token"

const jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// NewTokenSource builds a token source for the grant-based auth modes.
// For the jwt mode this contacts the token endpoint once before
// returning. The oauth and mcp_client modes carry their token with each
// request and have no server-side source.
func NewTokenSource(ctx context.Context, bundle CredentialBundle) (oauth2.TokenSource, error) {
	switch bundle.Mode {
	case ModeCCG:
		return withFileCache(NewCCGTokenSource(ctx, bundle, BoxTokenURL), bundle), nil
	case ModeJWT:
		src, err := NewJWTTokenSource(ctx, bundle, BoxTokenURL)
		if err != nil {
			return nil, err
		}
		return withFileCache(src, bundle), nil
	}
	return nil, fmt.Errorf("auth mode %q has no server-side token source", bundle.Mode)
}

// NewCCGTokenSource performs the client credentials grant with the Box
// subject parameters. Tokens are refreshed automatically on expiry.
func NewCCGTokenSource(ctx context.Context, bundle CredentialBundle, tokenURL string) oauth2.TokenSource {
	conf := &clientcredentials.Config{
		ClientID:     bundle.ClientID,
		ClientSecret: bundle.ClientSecret,
		TokenURL:     tokenURL,
		EndpointParams: url.Values{
			"box_subject_type": {string(bundle.SubjectType)},
			"box_subject_id":   {bundle.SubjectID},
		},
		AuthStyle: oauth2.AuthStyleInParams,
	}
	return conf.TokenSource(ctx)
}

// NewJWTTokenSource exchanges RS512 assertions for access tokens. The first
// token after construction is fetched and discarded; Box invalidates tokens
// minted before the app authorization replicates.
func NewJWTTokenSource(ctx context.Context, bundle CredentialBundle, tokenURL string) (oauth2.TokenSource, error) {
	key, err := ParsePrivateKey(bundle.PrivateKey, bundle.PrivateKeyPassphrase)
	if err != nil {
		return nil, newInvalidError(ModeJWT, "loading private key: %v", err)
	}
	src := &jwtAssertionSource{
		ctx:      ctx,
		bundle:   bundle,
		key:      key,
		tokenURL: tokenURL,
	}
	if _, err := src.Token(); err != nil {
		return nil, fmt.Errorf("initial jwt token exchange: %w", err)
	}
	return oauth2.ReuseTokenSource(nil, src), nil
}

type jwtAssertionSource struct {
	ctx      context.Context
	bundle   CredentialBundle
	key      *rsa.PrivateKey
	tokenURL string
}

func (s *jwtAssertionSource) Token() (*oauth2.Token, error) {
	assertion, err := s.signAssertion()
	if err != nil {
		return nil, err
	}
	form := url.Values{
		"grant_type":    {jwtBearerGrant},
		"assertion":     {assertion},
		"client_id":     {s.bundle.ClientID},
		"client_secret": {s.bundle.ClientSecret},
	}

	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient(s.ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var oauthErr struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&oauthErr)
		return nil, fmt.Errorf("token endpoint returned %d: %s %s",
			resp.StatusCode, oauthErr.Error, oauthErr.Description)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}
	return &oauth2.Token{
		AccessToken: body.AccessToken,
		TokenType:   body.TokenType,
		Expiry:      time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
	}, nil
}

func (s *jwtAssertionSource) signAssertion() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":          s.bundle.ClientID,
		"sub":          s.bundle.SubjectID,
		"box_sub_type": string(s.bundle.SubjectType),
		"aud":          s.tokenURL,
		"jti":          uuid.NewString(),
		"exp":          now.Add(45 * time.Second).Unix(),
		"iat":          now.Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS512, claims)
	tok.Header["kid"] = s.bundle.PublicKeyID
	signed, err := tok.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("signing assertion: %w", err)
	}
	return signed, nil
}

func httpClient(ctx context.Context) *http.Client {
	if c, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok {
		return c
	}
	return http.DefaultClient
}

// withFileCache wraps src with a write-through token cache stored as
// .auth.<mode>.<subjectType>.<subjectID> in the working directory so a
// restarted process reuses a still-valid token.
func withFileCache(src oauth2.TokenSource, bundle CredentialBundle) oauth2.TokenSource {
	name := fmt.Sprintf(".auth.%s.%s.%s", bundle.Mode, bundle.SubjectType, bundle.SubjectID)
	return &fileCachingSource{src: src, path: name}
}

type fileCachingSource struct {
	mu   sync.Mutex
	src  oauth2.TokenSource
	path string
}

func (c *fileCachingSource) Token() (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tok := c.load(); tok.Valid() {
		return tok, nil
	}
	tok, err := c.src.Token()
	if err != nil {
		return nil, err
	}
	c.store(tok)
	return tok, nil
}

func (c *fileCachingSource) load() *oauth2.Token {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil
	}
	return &tok
}

func (c *fileCachingSource) store(tok *oauth2.Token) {
	data, err := json.Marshal(tok)
	if err != nil {
		return
	}
	// Cache persistence is best effort; a read-only working directory
	// just means a fresh grant per process.
	_ = os.WriteFile(c.path, data, 0o600)
}
