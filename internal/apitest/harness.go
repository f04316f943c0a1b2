package apitest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-menu-client/apiclient"
	"github.com/jrsteele09/go-menu-client/navigation"
	"github.com/jrsteele09/go-menu-client/sessions"
	"github.com/jrsteele09/go-menu-client/storage/memory"
)

// Harness is a client wired to a Server with in-memory session storage and a Router.
type Harness struct {
	Server   *Server
	Client   *apiclient.Client
	Sessions *sessions.Store
	KV       *memory.Store
	Router   *navigation.Router
}

// NewHarness starts a Server and a client for it. The router starts on the dashboard.
func NewHarness(t *testing.T, opts ...apiclient.Option) *Harness {
	t.Helper()
	srv := New(t)
	kv := memory.New()
	store := sessions.NewStore(kv)
	router := navigation.NewRouter(navigation.RouteDashboard)

	client, err := apiclient.New(srv.BaseURL(), store, store, router, opts...)
	require.NoError(t, err)

	return &Harness{
		Server:   srv,
		Client:   client,
		Sessions: store,
		KV:       kv,
		Router:   router,
	}
}

// SignIn stores fresh credentials for phone as if it had logged in.
func (h *Harness) SignIn(t *testing.T, phone string) *oauth2.Token {
	t.Helper()
	access, refresh := h.Server.IssueTokens(phone)
	tok := &oauth2.Token{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}
	require.NoError(t, h.Sessions.Set(context.Background(), tok))
	return tok
}

// Stored returns the credentials currently in the session store.
func (h *Harness) Stored(t *testing.T) *oauth2.Token {
	t.Helper()
	tok, err := h.Sessions.Get(context.Background())
	require.NoError(t, err)
	return tok
}
