package apitest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const (
	refreshTokenLength     = 32
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// storedRefreshToken is the server side record of an opaque refresh token.
type storedRefreshToken struct {
	Token  string
	UserID string
	Iat    time.Time
}

// refreshTokens keeps at most one refresh token per user. Callers hold the server lock.
type refreshTokens struct {
	byToken map[string]*storedRefreshToken
	ttl     time.Duration
}

func newRefreshTokens(ttl time.Duration) *refreshTokens {
	return &refreshTokens{
		byToken: make(map[string]*storedRefreshToken),
		ttl:     ttl,
	}
}

// create issues a new token for userID, revoking the one it had before.
func (r *refreshTokens) create(userID string) (string, error) {
	for tok, stored := range r.byToken {
		if stored.UserID == userID {
			delete(r.byToken, tok)
		}
	}

	b := make([]byte, refreshTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("[apitest create] generate refresh token: %w", err)
	}
	tok := hex.EncodeToString(b)
	r.byToken[tok] = &storedRefreshToken{
		Token:  tok,
		UserID: userID,
		Iat:    NowTimeFunc(),
	}
	return tok, nil
}

// get returns the record for tok, or nil when it is unknown or has expired.
func (r *refreshTokens) get(tok string) *storedRefreshToken {
	stored, ok := r.byToken[tok]
	if !ok {
		return nil
	}
	if r.isExpired(stored) {
		delete(r.byToken, tok)
		return nil
	}
	return stored
}

func (r *refreshTokens) delete(tok string) {
	delete(r.byToken, tok)
}

func (r *refreshTokens) isExpired(stored *storedRefreshToken) bool {
	return NowTimeFunc().Sub(stored.Iat) > r.ttl
}
