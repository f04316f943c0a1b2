package sessions

import (
	"context"

	"golang.org/x/oauth2"
)

// Repo holds the current credentials. There is at most one current access token;
// Set replaces it for every request issued afterwards.
type Repo interface {
	// Get returns the stored credentials, or nil when no access token is stored
	Get(ctx context.Context) (*oauth2.Token, error)

	// Set stores the access token, and the refresh token when it is non-empty
	Set(ctx context.Context, token *oauth2.Token) error

	// Clear removes both the access and the refresh token
	Clear(ctx context.Context) error

	// RefreshToken returns the stored refresh token, empty when none is stored
	RefreshToken(ctx context.Context) (string, error)
}

// NoticeRepo is the single-slot store for the subscription-expired signal.
type NoticeRepo interface {
	// PutSubscriptionNotice replaces any pending notice
	PutSubscriptionNotice(ctx context.Context, notice SubscriptionNotice) error

	// TakeSubscriptionNotice returns the pending notice and deletes it, nil when none is pending
	TakeSubscriptionNotice(ctx context.Context) (*SubscriptionNotice, error)
}
