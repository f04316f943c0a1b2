// Package apiclient is the session-aware HTTP client for the menu platform API.
//
// Every request carries the current bearer token. Failures are classified in order:
// no response (TransportError), 403 with SUBSCRIPTION_EXPIRED (SubscriptionExpiredError),
// 401 (one coalesced refresh and one retry, else SessionExpiredError) and everything else
// (RequestFailedError).
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/jrsteele09/go-menu-client/internal/metrics"
	"github.com/jrsteele09/go-menu-client/navigation"
	"github.com/jrsteele09/go-menu-client/sessions"
)

const requestIDHeader = "X-Request-ID"

// Client is safe for concurrent use.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	sessions       sessions.Repo
	notices        sessions.NoticeRepo
	navigator      navigation.Navigator
	logger         zerolog.Logger
	metrics        metrics.Recorder
	limiter        *rate.Limiter
	requestTimeout time.Duration
	refreshTimeout time.Duration
	userAgent      string

	refreshes   singleflight.Group
	sessionLock sync.Mutex
}

// New creates a Client for baseURL (e.g. "http://localhost:3001/api/v1").
// navigator may be nil, in which case forced navigations are skipped.
func New(baseURL string, sessionRepo sessions.Repo, noticeRepo sessions.NoticeRepo, navigator navigation.Navigator, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("[apiclient New] invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("[apiclient New] base URL %q must be http or https", baseURL)
	}
	if sessionRepo == nil || noticeRepo == nil {
		return nil, errors.New("[apiclient New] session and notice repos are required")
	}

	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{},
		sessions:       sessionRepo,
		notices:        noticeRepo,
		navigator:      navigator,
		logger:         log.Logger,
		metrics:        metrics.Nop{},
		requestTimeout: defaultRequestTimeout,
		refreshTimeout: defaultRefreshTimeout,
		userAgent:      defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// call tracks one logical request across its (at most two) transmissions.
type call struct {
	req       *Request
	requestID string
	body      []byte
	bodyType  string
	retried   bool
}

// Do sends r and applies the failure handling described in the package doc.
// Non-2xx results are returned as one of the package's typed errors, never as a Response.
func (c *Client) Do(ctx context.Context, r *Request) (*Response, error) {
	body, bodyType, err := r.encode()
	if err != nil {
		return nil, err
	}
	cl := &call{
		req:       r,
		requestID: uuid.NewString(),
		body:      body,
		bodyType:  bodyType,
	}

	resp, sentToken, err := c.send(ctx, cl, nil)
	if err != nil {
		return nil, err
	}
	return c.handle(ctx, cl, resp, sentToken)
}

func (c *Client) handle(ctx context.Context, cl *call, resp *Response, sentToken string) (*Response, error) {
	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	body := parseErrorBody(resp.Body)
	failed := &RequestFailedError{
		Method:     cl.req.Method,
		Path:       cl.req.Path,
		StatusCode: resp.StatusCode,
		Code:       body.Code,
		Message:    body.Message,
		Body:       resp.Body,
	}

	switch {
	case resp.StatusCode == http.StatusForbidden && body.Code == SubscriptionExpiredCode:
		return nil, c.subscriptionExpired(ctx, body, failed)

	case resp.StatusCode == http.StatusUnauthorized && !cl.req.SkipRefresh:
		if cl.retried {
			c.endSession(ctx)
			return nil, &SessionExpiredError{Err: failed}
		}
		cl.retried = true

		tok, err := c.refreshFrom(ctx, sentToken)
		if err != nil {
			if ctx.Err() != nil {
				return nil, c.transportError(cl, ctx.Err())
			}
			return nil, &SessionExpiredError{Err: err}
		}

		c.logger.Debug().
			Str("request_id", cl.requestID).
			Str("method", cl.req.Method).
			Str("path", cl.req.Path).
			Msg("retrying request with refreshed credentials")

		retryResp, retryToken, err := c.send(ctx, cl, tok)
		if err != nil {
			return nil, err
		}
		return c.handle(ctx, cl, retryResp, retryToken)

	default:
		return nil, failed
	}
}

// send transmits cl once. The bearer token is read from the session store right before
// transmission unless override is given. The token actually sent is returned.
func (c *Client) send(ctx context.Context, cl *call, override *oauth2.Token) (*Response, string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "", c.transportError(cl, err)
		}
	}

	var accessToken string
	if override != nil {
		accessToken = override.AccessToken
	} else {
		tok, err := c.sessions.Get(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("[apiclient send] read credentials: %w", err)
		}
		if tok != nil {
			accessToken = tok.AccessToken
		}
	}

	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	httpReq, err := c.newHTTPRequest(ctx, cl, accessToken)
	if err != nil {
		return nil, "", err
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.RecordTransportError(cl.req.Method)
		return nil, "", c.transportError(cl, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.metrics.RecordTransportError(cl.req.Method)
		return nil, "", c.transportError(cl, err)
	}
	c.metrics.RecordResponse(cl.req.Method, httpResp.StatusCode, time.Since(start))

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, accessToken, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, cl *call, accessToken string) (*http.Request, error) {
	target := c.url(cl.req.Path, cl.req.Query)

	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, cl.req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("[apiclient] build %s %s: %w", cl.req.Method, cl.req.Path, err)
	}

	for k, values := range cl.req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	if cl.bodyType != "" {
		httpReq.Header.Set("Content-Type", cl.bodyType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(requestIDHeader, cl.requestID)
	if accessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	}
	return httpReq, nil
}

func (c *Client) url(path string, query url.Values) string {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func (c *Client) transportError(cl *call, err error) error {
	te := &TransportError{
		Method:  cl.req.Method,
		Path:    cl.req.Path,
		BaseURL: c.baseURL,
		Err:     err,
	}
	if !errors.Is(err, context.Canceled) {
		c.logger.Error().
			Err(err).
			Str("request_id", cl.requestID).
			Str("method", cl.req.Method).
			Str("path", cl.req.Path).
			Str("api_url", c.baseURL).
			Bool("timeout", te.Timeout()).
			Msg("network error")
	}
	return te
}

func (c *Client) subscriptionExpired(ctx context.Context, body ErrorBody, failed *RequestFailedError) error {
	notice := sessions.SubscriptionNotice{
		Message:   body.Message,
		ExpiredAt: body.ExpiredAt,
	}
	if notice.Message == "" {
		notice.Message = sessions.DefaultSubscriptionMessage
	}

	if err := c.notices.PutSubscriptionNotice(ctx, notice); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store subscription notice")
	}

	if c.navigator != nil && ctx.Err() == nil && !navigation.IsSubscriptionPath(c.navigator.CurrentPath()) {
		c.navigate(ctx, navigation.RouteSubscriptionExpired, navigation.ReasonSubscriptionExpired)
	}
	return &SubscriptionExpiredError{Notice: notice, Err: failed}
}

// navigate forces the host application onto path. Callers check that ctx is still live.
func (c *Client) navigate(ctx context.Context, path, reason string) {
	if c.navigator == nil {
		return
	}
	c.logger.Info().Str("path", path).Str("reason", reason).Msg("forcing navigation")
	c.metrics.RecordNavigation(path)
	c.navigator.Navigate(navigation.WithReason(ctx, reason), path)
}

// Get decodes the JSON response of GET path into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, &Request{Method: http.MethodGet, Path: path}, out)
}

// GetWithQuery is Get with query parameters.
func (c *Client) GetWithQuery(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, &Request{Method: http.MethodPost, Path: path, Body: in}, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, &Request{Method: http.MethodPut, Path: path, Body: in}, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, &Request{Method: http.MethodPatch, Path: path, Body: in}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, &Request{Method: http.MethodDelete, Path: path}, out)
}

// Upload posts a multipart form with one file part.
func (c *Client) Upload(ctx context.Context, path string, fields map[string]string, file MultipartFile, out any) error {
	req, err := NewMultipartRequest(path, fields, file)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, out)
}

// DoJSON sends r and decodes the response into out.
func (c *Client) DoJSON(ctx context.Context, r *Request, out any) error {
	return c.doJSON(ctx, r, out)
}

func (c *Client) doJSON(ctx context.Context, r *Request, out any) error {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}
