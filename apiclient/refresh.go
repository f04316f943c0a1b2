package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
	"github.com/jrsteele09/go-menu-client/navigation"
	"github.com/jrsteele09/go-menu-client/token"
)

// RefreshPath is the unauthenticated endpoint exchanging a refresh token for new credentials.
const RefreshPath = "/auth/refresh"

const refreshFlightKey = "refresh:"

// errSessionEnded is returned to requests that hit 401 after another request already
// tore the session down. They must not refresh or navigate again.
var errSessionEnded = errors.New("session ended by a concurrent request")

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// refreshResult is shared by every caller that joined the same refresh flight.
type refreshResult struct {
	token     *oauth2.Token
	err       error
	attempted bool // The refresh endpoint was called
	navigate  sync.Once
}

// Refresh exchanges the stored refresh token for new credentials. Concurrent callers share a
// single refresh call and all see its outcome. On failure the credentials are cleared and the
// navigator is sent to the login route once, unless every waiting caller has gone away.
//
// A caller whose ctx ends while waiting gets ctx's error; the refresh itself carries on,
// bounded by the refresh timeout, for the callers still waiting.
func (c *Client) Refresh(ctx context.Context) (*oauth2.Token, error) {
	current, err := c.sessions.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	stale := ""
	if current != nil {
		stale = current.AccessToken
	}
	return c.refreshFrom(ctx, stale)
}

// refreshFrom replaces the access token stale. Flights are keyed by stale and the store is
// read inside the flight, so a caller that arrives after the token was already replaced gets
// the stored token and no second refresh call is made.
func (c *Client) refreshFrom(ctx context.Context, stale string) (*oauth2.Token, error) {
	ch := c.refreshes.DoChan(refreshFlightKey+stale, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		defer cancel()

		current, err := c.sessions.Get(rctx)
		if err != nil {
			return &refreshResult{err: fmt.Errorf("read credentials: %w", err)}, nil
		}
		if current != nil && current.AccessToken != stale {
			return &refreshResult{token: current}, nil
		}
		if current == nil && stale != "" {
			return &refreshResult{err: errSessionEnded}, nil
		}

		tok, err := c.exchangeRefreshToken(rctx)
		c.metrics.RecordRefresh(err == nil)
		if err != nil {
			c.logger.Warn().Err(err).Msg("credential refresh failed, clearing session")
			c.sessionLock.Lock()
			if clearErr := c.sessions.Clear(rctx); clearErr != nil {
				c.logger.Error().Err(clearErr).Msg("failed to clear credentials")
			}
			c.sessionLock.Unlock()
		}
		return &refreshResult{token: tok, err: err, attempted: true}, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		result := res.Val.(*refreshResult)
		if result.err == nil {
			return result.token, nil
		}
		if result.attempted && ctx.Err() == nil {
			result.navigate.Do(func() {
				c.navigate(ctx, navigation.RouteLogin, navigation.ReasonSessionExpired)
			})
		}
		return nil, result.err
	}
}

func (c *Client) exchangeRefreshToken(ctx context.Context) (*oauth2.Token, error) {
	refreshToken, err := c.sessions.RefreshToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("read refresh token: %w", err)
	}
	if refreshToken == "" {
		return nil, menuerrors.ErrNoRefreshToken
	}

	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("encode refresh request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(RefreshPath, nil), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build refresh request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(requestIDHeader, uuid.NewString())

	c.logger.Debug().Msg("refreshing credentials")
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: http.MethodPost, Path: RefreshPath, BaseURL: c.baseURL, Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Method: http.MethodPost, Path: RefreshPath, BaseURL: c.baseURL, Err: err}
	}
	if httpResp.StatusCode >= http.StatusBadRequest {
		body := parseErrorBody(data)
		return nil, &RequestFailedError{
			Method:     http.MethodPost,
			Path:       RefreshPath,
			StatusCode: httpResp.StatusCode,
			Code:       body.Code,
			Message:    body.Message,
			Body:       data,
		}
	}

	var out refreshResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode refresh response: %w", err)
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("%w: refresh response without access token", menuerrors.ErrInvalidToken)
	}

	tok := &oauth2.Token{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		TokenType:    "Bearer",
	}
	if claims, err := token.Inspect(out.AccessToken); err == nil {
		tok.Expiry = claims.ExpiresAt
	}

	c.sessionLock.Lock()
	defer c.sessionLock.Unlock()
	if err := c.sessions.Set(ctx, tok); err != nil {
		return nil, fmt.Errorf("store refreshed credentials: %w", err)
	}
	return tok, nil
}

// endSession handles a 401 on an already retried request: the credentials are cleared and,
// if they were still present, the navigator is sent to login. Concurrent callers race on the
// lock so only the one that actually removed the credentials navigates.
func (c *Client) endSession(ctx context.Context) {
	c.sessionLock.Lock()
	current, err := c.sessions.Get(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to read credentials")
	}
	if clearErr := c.sessions.Clear(ctx); clearErr != nil {
		c.logger.Error().Err(clearErr).Msg("failed to clear credentials")
	}
	c.sessionLock.Unlock()

	if current != nil && ctx.Err() == nil {
		c.navigate(ctx, navigation.RouteLogin, navigation.ReasonSessionExpired)
	}
}

// TokenSource exposes the stored credentials as an oauth2.TokenSource. A token whose JWT
// expiry has passed is refreshed before it is returned.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, client: c}
}

type tokenSource struct {
	ctx    context.Context
	client *Client
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	tok, err := ts.client.sessions.Get(ts.ctx)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, menuerrors.ErrNotAuthenticated
	}
	if !tok.Expiry.IsZero() && !tok.Valid() {
		return ts.client.Refresh(ts.ctx)
	}
	return tok, nil
}
