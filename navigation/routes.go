package navigation

import "strings"

// Application routes the client can force the host application onto.
const (
	RouteLogin               = "/login"
	RoutePasswordSetup       = "/login/set-password"
	RouteDashboard           = "/dashboard"
	RouteAdmin               = "/admin"
	RouteSubscriptionExpired = "/dashboard/subscription-expired"
)

// Reasons attached to forced navigations.
const (
	ReasonSessionExpired      = "session-expired"
	ReasonSubscriptionExpired = "subscription-expired"
)

// IsSubscriptionPath reports whether path already shows subscription state, in which case
// a subscription-expired failure must not navigate again.
func IsSubscriptionPath(path string) bool {
	return strings.Contains(path, "/subscription")
}
