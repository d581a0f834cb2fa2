package server

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/box-community/mcp-server-box/internal/boxauth"
	"github.com/box-community/mcp-server-box/internal/mcp/gate"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func oauthConfig() Config {
	return Config{
		Mode: boxauth.ModeOAuth,
		Environment: boxauth.Environment{
			ClientID:     "id",
			ClientSecret: "secret",
		},
		Logger: testLogger(),
	}
}

func ccgConfig() Config {
	return Config{
		Mode: boxauth.ModeCCG,
		Environment: boxauth.Environment{
			ClientID:     "id",
			ClientSecret: "secret",
			SubjectType:  "enterprise",
			SubjectID:    "42",
		},
		Logger:      testLogger(),
		TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}),
	}
}

func TestNewServerContextOAuthMintsPerRequest(t *testing.T) {
	sc, err := NewServerContext(context.Background(), oauthConfig())
	require.NoError(t, err)
	defer sc.Shutdown()

	assert.Equal(t, boxauth.ModeOAuth, sc.Mode())

	_, err = sc.ActiveClient(context.Background())
	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr, "oauth resolutions without a bearer token must fail")

	ctx := gate.WithBearerToken(context.Background(), "delegated-token")
	first, err := sc.ActiveClient(ctx)
	require.NoError(t, err)
	second, err := sc.ActiveClient(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second, "delegated clients must not be reused across requests")
}

func TestNewServerContextPropagatesConfigurationError(t *testing.T) {
	_, err := NewServerContext(context.Background(), Config{
		Mode:   boxauth.ModeCCG,
		Logger: testLogger(),
	})
	require.Error(t, err)

	var cfgErr *boxauth.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNewServerContextCCGValidatesTokenAtStartup(t *testing.T) {
	env := boxauth.Environment{
		ClientID:     "id",
		ClientSecret: "secret",
		SubjectType:  "enterprise",
		SubjectID:    "42",
	}

	t.Run("token source works", func(t *testing.T) {
		sc, err := NewServerContext(context.Background(), Config{
			Mode:        boxauth.ModeCCG,
			Environment: env,
			Logger:      testLogger(),
			TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}),
		})
		require.NoError(t, err)
		defer sc.Shutdown()

		client, err := sc.ActiveClient(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("token source fails", func(t *testing.T) {
		_, err := NewServerContext(context.Background(), Config{
			Mode:        boxauth.ModeCCG,
			Environment: env,
			Logger:      testLogger(),
			TokenSource: failingTokenSource{},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validating box credentials")
	})
}

type failingTokenSource struct{}

func (failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, assert.AnError
}

func TestActiveClientIdentityStableUnderConcurrency(t *testing.T) {
	sc, err := NewServerContext(context.Background(), ccgConfig())
	require.NoError(t, err)
	defer sc.Shutdown()

	const goroutines = 50
	clients := make([]any, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := range goroutines {
		go func() {
			defer wg.Done()
			client, err := sc.ActiveClient(context.Background())
			assert.NoError(t, err)
			clients[i] = client
		}()
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, clients[0], clients[i], "every resolution returns the same client")
	}
}

func TestActiveClientPassThroughMode(t *testing.T) {
	sc, err := NewServerContext(context.Background(), Config{
		Mode:   boxauth.ModeMCPClient,
		Logger: testLogger(),
	})
	require.NoError(t, err)
	defer sc.Shutdown()

	t.Run("no bearer token", func(t *testing.T) {
		_, err := sc.ActiveClient(context.Background())
		require.Error(t, err)

		var credErr *CredentialError
		require.ErrorAs(t, err, &credErr)
		assert.Equal(t, "mcp_client", credErr.Mode)
	})

	t.Run("clients are request scoped", func(t *testing.T) {
		ctx := gate.WithBearerToken(context.Background(), "tok-a")
		first, err := sc.ActiveClient(ctx)
		require.NoError(t, err)
		second, err := sc.ActiveClient(ctx)
		require.NoError(t, err)
		assert.NotSame(t, first, second, "pass-through clients must not be reused across requests")
	})
}

func TestShutdownIsIdempotentAndCancelsContext(t *testing.T) {
	sc, err := NewServerContext(context.Background(), oauthConfig())
	require.NoError(t, err)

	require.NoError(t, sc.Shutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())

	select {
	case <-sc.Context().Done():
	default:
		t.Fatal("session context not cancelled after shutdown")
	}
}
