package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
	"github.com/jrsteele09/go-menu-client/sessions"
)

// SubscriptionExpiredCode is the application error code the API sends with a 403 when the
// restaurant's subscription has lapsed.
const SubscriptionExpiredCode = "SUBSCRIPTION_EXPIRED"

// ErrorBody is the error payload returned by the API.
type ErrorBody struct {
	Message   string `json:"-"`
	Code      string `json:"code,omitempty"`
	ExpiredAt string `json:"expiredAt,omitempty"`
}

// UnmarshalJSON accepts message as a string or, for validation failures, a list of strings.
func (b *ErrorBody) UnmarshalJSON(data []byte) error {
	var raw struct {
		Message   json.RawMessage `json:"message"`
		Error     string          `json:"error"`
		Code      string          `json:"code"`
		ExpiredAt string          `json:"expiredAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Code = raw.Code
	b.ExpiredAt = raw.ExpiredAt

	var single string
	var list []string
	switch {
	case len(raw.Message) == 0:
		b.Message = raw.Error
	case json.Unmarshal(raw.Message, &single) == nil:
		b.Message = single
	case json.Unmarshal(raw.Message, &list) == nil:
		b.Message = strings.Join(list, "; ")
	default:
		b.Message = raw.Error
	}
	return nil
}

func parseErrorBody(body []byte) ErrorBody {
	var b ErrorBody
	_ = json.Unmarshal(body, &b)
	return b
}

// TransportError means no response was received: connection refused, DNS failure,
// timeout or cancellation. It is never retried.
type TransportError struct {
	Method  string
	Path    string
	BaseURL string
	Err     error
}

func (e *TransportError) Error() string {
	if errors.Is(e.Err, context.Canceled) {
		return fmt.Sprintf("%s %s: request cancelled: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: cannot connect to backend server, make sure it is running on %s: %v", e.Method, e.Path, e.BaseURL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// SessionExpiredError means the credentials were rejected and could not be refreshed.
// The stored credentials have been cleared by the time the caller sees it.
type SessionExpiredError struct {
	Err error
}

func (e *SessionExpiredError) Error() string {
	if e.Err == nil {
		return "session expired"
	}
	return fmt.Sprintf("session expired: %v", e.Err)
}

func (e *SessionExpiredError) Unwrap() error {
	return e.Err
}

// Is lets callers match any session failure with ErrNotAuthenticated.
func (e *SessionExpiredError) Is(target error) bool {
	return target == menuerrors.ErrNotAuthenticated
}

// SubscriptionExpiredError means the tenant's subscription no longer grants access.
type SubscriptionExpiredError struct {
	Notice sessions.SubscriptionNotice
	Err    *RequestFailedError
}

func (e *SubscriptionExpiredError) Error() string {
	if e.Notice.ExpiredAt != "" {
		return fmt.Sprintf("subscription expired at %s: %s", e.Notice.ExpiredAt, e.Notice.Message)
	}
	return fmt.Sprintf("subscription expired: %s", e.Notice.Message)
}

func (e *SubscriptionExpiredError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

// RequestFailedError is any other non-2xx response.
type RequestFailedError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
	Body       []byte
}

func (e *RequestFailedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %d %s (%s)", e.Method, e.Path, e.StatusCode, msg, e.Code)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// Is maps 404 responses onto ErrNotFound.
func (e *RequestFailedError) Is(target error) bool {
	return target == menuerrors.ErrNotFound && e.StatusCode == 404
}

// StatusCode returns the HTTP status carried by err, or 0 when err holds no response.
func StatusCode(err error) int {
	var rf *RequestFailedError
	if errors.As(err, &rf) {
		return rf.StatusCode
	}
	return 0
}

// Message returns the most useful human readable message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var sub *SubscriptionExpiredError
	if errors.As(err, &sub) {
		return sub.Notice.Message
	}
	var rf *RequestFailedError
	if errors.As(err, &rf) && rf.Message != "" {
		return rf.Message
	}
	return err.Error()
}
