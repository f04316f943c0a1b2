package sessions

import (
	"time"
)

// Fixed storage keys. They match what the web dashboard kept in local storage so a
// shared backend (e.g. Redis) can be read by both.
const (
	AccessTokenKey         = "accessToken"
	RefreshTokenKey        = "refreshToken"
	SubscriptionExpiredKey = "subscriptionExpired"
)

// DefaultSubscriptionMessage is recorded when the API omits a message.
const DefaultSubscriptionMessage = "subscription expired"

// SubscriptionNotice is the out-of-band signal left behind when the API reports that the
// restaurant's subscription has expired. It is written by the API client and read once by
// whichever view lands on the subscription-expired route.
type SubscriptionNotice struct {
	Message   string `json:"message"`
	ExpiredAt string `json:"expiredAt,omitempty"` // As sent by the API, usually RFC 3339
}

// ExpiredAtTime parses ExpiredAt. ok is false when it is missing or not RFC 3339.
func (n SubscriptionNotice) ExpiredAtTime() (t time.Time, ok bool) {
	if n.ExpiredAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, n.ExpiredAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
