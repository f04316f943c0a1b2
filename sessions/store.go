package sessions

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-menu-client/storage"
	"github.com/jrsteele09/go-menu-client/token"
)

var (
	_ Repo       = (*Store)(nil)
	_ NoticeRepo = (*Store)(nil)
)

// Store implements Repo and NoticeRepo on top of a key/value storage backend.
type Store struct {
	kv storage.Store
}

func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv}
}

func (s *Store) Get(ctx context.Context) (*oauth2.Token, error) {
	access, ok, err := s.kv.Get(ctx, AccessTokenKey)
	if err != nil {
		return nil, fmt.Errorf("[sessions Get] access token: %w", err)
	}
	if !ok || access == "" {
		return nil, nil
	}

	refresh, _, err := s.kv.Get(ctx, RefreshTokenKey)
	if err != nil {
		return nil, fmt.Errorf("[sessions Get] refresh token: %w", err)
	}
	return newToken(access, refresh), nil
}

func (s *Store) Set(ctx context.Context, t *oauth2.Token) error {
	if t == nil || t.AccessToken == "" {
		return fmt.Errorf("[sessions Set] empty access token")
	}
	if err := s.kv.Set(ctx, AccessTokenKey, t.AccessToken); err != nil {
		return fmt.Errorf("[sessions Set] access token: %w", err)
	}
	if t.RefreshToken != "" {
		if err := s.kv.Set(ctx, RefreshTokenKey, t.RefreshToken); err != nil {
			return fmt.Errorf("[sessions Set] refresh token: %w", err)
		}
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, AccessTokenKey, RefreshTokenKey); err != nil {
		return fmt.Errorf("[sessions Clear]: %w", err)
	}
	return nil
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	refresh, _, err := s.kv.Get(ctx, RefreshTokenKey)
	if err != nil {
		return "", fmt.Errorf("[sessions RefreshToken]: %w", err)
	}
	return refresh, nil
}

func (s *Store) PutSubscriptionNotice(ctx context.Context, notice SubscriptionNotice) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("[sessions PutSubscriptionNotice] encode: %w", err)
	}
	if err := s.kv.Set(ctx, SubscriptionExpiredKey, string(data)); err != nil {
		return fmt.Errorf("[sessions PutSubscriptionNotice]: %w", err)
	}
	return nil
}

func (s *Store) TakeSubscriptionNotice(ctx context.Context) (*SubscriptionNotice, error) {
	data, ok, err := s.kv.Take(ctx, SubscriptionExpiredKey)
	if err != nil {
		return nil, fmt.Errorf("[sessions TakeSubscriptionNotice]: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var notice SubscriptionNotice
	if err := json.Unmarshal([]byte(data), &notice); err != nil {
		return nil, fmt.Errorf("[sessions TakeSubscriptionNotice] decode: %w", err)
	}
	return &notice, nil
}

// newToken builds the oauth2 view of the stored strings, reading the expiry from the
// access token when it is a JWT.
func newToken(access, refresh string) *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}
	if claims, err := token.Inspect(access); err == nil {
		t.Expiry = claims.ExpiresAt
	}
	return t
}
