package navigation

import (
	"context"
	"sync"
)

// Navigator is implemented by the host application. The API client calls Navigate instead
// of touching any global location.
type Navigator interface {
	CurrentPath() string
	Navigate(ctx context.Context, path string)
}

// Event is delivered to Router subscribers on every navigation.
type Event struct {
	From   string
	To     string
	Reason string // Empty for ordinary navigation
}

type reasonKey struct{}

// WithReason tags ctx so the navigation it triggers carries a reason.
func WithReason(ctx context.Context, reason string) context.Context {
	return context.WithValue(ctx, reasonKey{}, reason)
}

// ReasonFromContext returns the reason set by WithReason.
func ReasonFromContext(ctx context.Context) string {
	reason, _ := ctx.Value(reasonKey{}).(string)
	return reason
}

// Router is an in-memory Navigator: it tracks the current path and history and fans out
// events to subscribers. Subscribers run synchronously on the navigating goroutine.
type Router struct {
	current     string
	history     []Event
	subscribers []func(Event)
	lock        sync.RWMutex
}

var _ Navigator = (*Router)(nil)

func NewRouter(initialPath string) *Router {
	return &Router{current: initialPath}
}

func (r *Router) CurrentPath() string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.current
}

func (r *Router) Navigate(ctx context.Context, path string) {
	r.lock.Lock()
	ev := Event{From: r.current, To: path, Reason: ReasonFromContext(ctx)}
	r.current = path
	r.history = append(r.history, ev)
	subs := make([]func(Event), len(r.subscribers))
	copy(subs, r.subscribers)
	r.lock.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Subscribe registers fn for every later navigation.
func (r *Router) Subscribe(fn func(Event)) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

// History returns a copy of every navigation so far.
func (r *Router) History() []Event {
	r.lock.RLock()
	defer r.lock.RUnlock()
	h := make([]Event, len(r.history))
	copy(h, r.history)
	return h
}

// Count returns how many times the router navigated to path.
func (r *Router) Count(path string) int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	n := 0
	for _, ev := range r.history {
		if ev.To == path {
			n++
		}
	}
	return n
}
