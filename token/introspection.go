package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
	"github.com/jrsteele09/go-menu-client/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims is what the client can learn from an access token without the signing key.
// The API signs its tokens; the client never verifies them, it only reads them to show
// session status and to know when the token will lapse.
type Claims struct {
	Subject   string    `json:"sub,omitempty"`   // User ID
	Phone     string    `json:"phone,omitempty"` // Phone number used to log in
	Role      string    `json:"role,omitempty"`  // SUPER_ADMIN, RESTAURANT_OWNER, ...
	Roles     []string  `json:"roles,omitempty"` // Some deployments send a list instead
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"` // Zero when the token carries no exp claim
}

// Inspect parses a JWT access token without verifying its signature.
// Opaque (non JWT) tokens return ErrInvalidToken.
func Inspect(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, menuerrors.ErrInvalidToken
	}

	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", menuerrors.ErrInvalidToken, err)
	}

	claims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		sub, _ = claims["userId"].(string)
	}
	phone, _ := claims["phone"].(string)
	role, _ := claims["role"].(string)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)

	var roles []string
	if claimRoles, ok := claims["roles"].([]any); ok {
		roles = utils.ToStringSlice(claimRoles)
	}
	if role == "" && len(roles) > 0 {
		role = roles[0]
	}

	c := &Claims{
		Subject: sub,
		Phone:   phone,
		Role:    role,
		Roles:   roles,
	}
	if iat > 0 {
		c.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp > 0 {
		c.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return c, nil
}

// Expired reports whether the exp claim is in the past. Tokens without exp never expire here.
func (c *Claims) Expired() bool {
	return c.ExpiresWithin(0)
}

// ExpiresWithin reports whether the token lapses within d from now.
func (c *Claims) ExpiresWithin(d time.Duration) bool {
	if c == nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !NowTimeFunc().Add(d).Before(c.ExpiresAt)
}
