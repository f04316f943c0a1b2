package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-menu-client/apiclient"
	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
	"github.com/jrsteele09/go-menu-client/navigation"
	"github.com/jrsteele09/go-menu-client/sessions"
	"github.com/jrsteele09/go-menu-client/token"
	"github.com/jrsteele09/go-menu-client/users"
)

// API routes used by the auth service
const (
	RouteLogin       = "/auth/login"
	RouteSetPassword = "/auth/set-password"
	RouteRegister    = "/auth/register"
	RouteLogout      = "/auth/logout"
)

// AuthResponse is returned by every endpoint that signs a user in.
type AuthResponse struct {
	User         *users.User `json:"user,omitempty"`
	AccessToken  string      `json:"accessToken,omitempty"`
	RefreshToken string      `json:"refreshToken,omitempty"`
}

// LoginResult is an AuthResponse, or a request to set a password first.
type LoginResult struct {
	AuthResponse
	RequiresPasswordSetup bool `json:"requiresPasswordSetup,omitempty"`
}

// NextRoute is where the host application goes after a login attempt.
func (r *LoginResult) NextRoute() string {
	if r.RequiresPasswordSetup {
		return navigation.RoutePasswordSetup
	}
	return routeForUser(r.User)
}

// NextRoute is where the host application goes after signing in.
func (r *AuthResponse) NextRoute() string {
	return routeForUser(r.User)
}

func routeForUser(u *users.User) string {
	if u.IsSuperAdmin() {
		return navigation.RouteAdmin
	}
	return navigation.RouteDashboard
}

type RegisterRequest struct {
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// SessionStatus describes the stored session without calling the API.
type SessionStatus struct {
	Authenticated   bool          `json:"authenticated"`
	HasRefreshToken bool          `json:"hasRefreshToken"`
	Claims          *token.Claims `json:"claims,omitempty"` // nil when the access token is not a JWT
}

// Service signs users in and out. Credentials it receives are persisted in the session repo,
// where the API client picks them up for every later request.
type Service struct {
	client   *apiclient.Client
	sessions sessions.Repo
	logger   zerolog.Logger
}

// ServiceOption modifies a Service
type ServiceOption func(*Service)

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(client *apiclient.Client, sessionRepo sessions.Repo, opts ...ServiceOption) *Service {
	s := &Service{
		client:   client,
		sessions: sessionRepo,
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login signs in with a phone number and an optional password. When the API answers that the
// account needs a password first, nothing is persisted and RequiresPasswordSetup is set.
func (s *Service) Login(ctx context.Context, phone, password string) (*LoginResult, error) {
	phone, err := users.NormalisePhone(phone)
	if err != nil {
		return nil, err
	}

	var result LoginResult
	err = s.client.DoJSON(ctx, &apiclient.Request{
		Method:      http.MethodPost,
		Path:        RouteLogin,
		Body:        map[string]string{"phone": phone, "password": password},
		SkipRefresh: true,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("[auth Login]: %w", err)
	}

	if result.RequiresPasswordSetup {
		return &result, nil
	}
	if err := s.persist(ctx, &result.AuthResponse); err != nil {
		return nil, fmt.Errorf("[auth Login]: %w", err)
	}
	return &result, nil
}

// SetPassword completes the first login of an account created without a password, or
// changes the password of the signed in user.
func (s *Service) SetPassword(ctx context.Context, password, confirmPassword string) (*AuthResponse, error) {
	if err := users.ValidateNewPassword(password, confirmPassword); err != nil {
		return nil, err
	}

	// A signed in user changing their password goes through the normal refresh handling,
	// a first time setup has no session to refresh.
	authenticated, err := s.IsAuthenticated(ctx)
	if err != nil {
		return nil, fmt.Errorf("[auth SetPassword]: %w", err)
	}

	var resp AuthResponse
	err = s.client.DoJSON(ctx, &apiclient.Request{
		Method:      http.MethodPost,
		Path:        RouteSetPassword,
		Body:        map[string]string{"password": password, "confirmPassword": confirmPassword},
		SkipRefresh: !authenticated,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("[auth SetPassword]: %w", err)
	}
	if err := s.persist(ctx, &resp); err != nil {
		return nil, fmt.Errorf("[auth SetPassword]: %w", err)
	}
	return &resp, nil
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	phone, err := users.NormalisePhone(req.Phone)
	if err != nil {
		return nil, err
	}
	req.Phone = phone
	if len([]rune(req.Password)) < users.MinPasswordLength {
		return nil, menuerrors.ErrPasswordTooShort
	}

	var resp AuthResponse
	err = s.client.DoJSON(ctx, &apiclient.Request{
		Method:      http.MethodPost,
		Path:        RouteRegister,
		Body:        req,
		SkipRefresh: true,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("[auth Register]: %w", err)
	}
	if err := s.persist(ctx, &resp); err != nil {
		return nil, fmt.Errorf("[auth Register]: %w", err)
	}
	return &resp, nil
}

// Logout tells the API to revoke the refresh token and clears local credentials.
// The API call is best effort: its failure is logged, local state is cleared regardless.
func (s *Service) Logout(ctx context.Context) error {
	refreshToken, err := s.sessions.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("[auth Logout]: %w", err)
	}

	if refreshToken != "" {
		err := s.client.DoJSON(ctx, &apiclient.Request{
			Method:      http.MethodPost,
			Path:        RouteLogout,
			Body:        map[string]string{"refreshToken": refreshToken},
			SkipRefresh: true,
		}, nil)
		if err != nil {
			s.logger.Warn().Err(err).Msg("logout request failed")
		}
	}

	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("[auth Logout]: %w", err)
	}
	return nil
}

// Token returns the stored credentials or ErrNotAuthenticated.
func (s *Service) Token(ctx context.Context) (*oauth2.Token, error) {
	tok, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, menuerrors.ErrNotAuthenticated
	}
	return tok, nil
}

func (s *Service) IsAuthenticated(ctx context.Context) (bool, error) {
	tok, err := s.sessions.Get(ctx)
	if err != nil {
		return false, err
	}
	return tok != nil, nil
}

func (s *Service) Status(ctx context.Context) (*SessionStatus, error) {
	tok, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.sessions.RefreshToken(ctx)
	if err != nil {
		return nil, err
	}

	status := &SessionStatus{
		Authenticated:   tok != nil,
		HasRefreshToken: refreshToken != "",
	}
	if tok != nil {
		if claims, err := token.Inspect(tok.AccessToken); err == nil {
			status.Claims = claims
		}
	}
	return status, nil
}

func (s *Service) persist(ctx context.Context, resp *AuthResponse) error {
	if strings.TrimSpace(resp.AccessToken) == "" {
		return MissingTokensErr
	}
	return s.sessions.Set(ctx, &oauth2.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    "Bearer",
	})
}
