// Package admin covers the platform administrator endpoints. The API only answers them for
// SUPER_ADMIN sessions.
package admin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-menu-client/apiclient"
	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
	"github.com/jrsteele09/go-menu-client/restaurants"
)

const (
	statsPath         = "/admin/stats"
	restaurantsPath   = "/admin/restaurants"
	subscriptionsPath = "/admin/subscriptions"
)

type Growth struct {
	Last24h      int    `json:"last24h"`
	Last7d       int    `json:"last7d"`
	Last30d      int    `json:"last30d"`
	GrowthRate7d string `json:"growthRate7d"`
}

type Totals struct {
	TotalRestaurants       int `json:"totalRestaurants"`
	TotalUsers             int `json:"totalUsers"`
	TotalSubscriptions     int `json:"totalSubscriptions"`
	ActiveSubscriptions    int `json:"activeSubscriptions"`
	CancelledSubscriptions int `json:"cancelledSubscriptions"`
	PastDueSubscriptions   int `json:"pastDueSubscriptions"`
	TotalQRCodes           int `json:"totalQrCodes"`
	TotalScans             int `json:"totalScans"`
	TotalMenuItems         int `json:"totalMenuItems"`
	TotalCategories        int `json:"totalCategories"`
	TotalBranches          int `json:"totalBranches"`
}

type PlanCount struct {
	Plan  string `json:"plan"`
	Count int    `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// PlatformStats is the admin overview payload.
type PlatformStats struct {
	Stats  Totals `json:"stats"`
	Growth struct {
		Restaurants Growth `json:"restaurants"`
		Users       Growth `json:"users"`
		Scans       Growth `json:"scans"`
	} `json:"growth"`
	SubscriptionBreakdown       []PlanCount              `json:"subscriptionBreakdown,omitempty"`
	SubscriptionStatusBreakdown []StatusCount            `json:"subscriptionStatusBreakdown,omitempty"`
	TopRestaurantsByScans       []restaurants.Restaurant `json:"topRestaurantsByScans,omitempty"`
	RecentRestaurants           []restaurants.Restaurant `json:"recentRestaurants,omitempty"`
	RestaurantsWithMostItems    []restaurants.Restaurant `json:"restaurantsWithMostItems,omitempty"`
}

// RenewRequest extends a subscription by Duration months, optionally switching plan.
type RenewRequest struct {
	Duration int    `json:"duration"`
	Plan     string `json:"plan,omitempty"`
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Stats(ctx context.Context) (*PlatformStats, error) {
	var out PlatformStats
	if err := s.client.Get(ctx, statsPath, &out); err != nil {
		return nil, fmt.Errorf("[admin Stats]: %w", err)
	}
	return &out, nil
}

// ListRestaurants returns every restaurant on the platform. The API scopes /restaurants by
// role, so an administrator sees them all.
func (s *Service) ListRestaurants(ctx context.Context) ([]restaurants.Restaurant, error) {
	var out []restaurants.Restaurant
	if err := s.client.Get(ctx, "/restaurants", &out); err != nil {
		return nil, fmt.Errorf("[admin ListRestaurants]: %w", err)
	}
	return out, nil
}

func (s *Service) GetRestaurant(ctx context.Context, restaurantID string) (*restaurants.Restaurant, error) {
	p, err := idPath(restaurantsPath, restaurantID)
	if err != nil {
		return nil, err
	}
	var out restaurants.Restaurant
	if err := s.client.Get(ctx, p, &out); err != nil {
		return nil, fmt.Errorf("[admin GetRestaurant] %s: %w", restaurantID, err)
	}
	return &out, nil
}

func (s *Service) CancelSubscription(ctx context.Context, restaurantID string) (*restaurants.Subscription, error) {
	p, err := idPath(subscriptionsPath, restaurantID, "cancel")
	if err != nil {
		return nil, err
	}
	var out restaurants.Subscription
	if err := s.client.Patch(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("[admin CancelSubscription] %s: %w", restaurantID, err)
	}
	return &out, nil
}

func (s *Service) RenewSubscription(ctx context.Context, restaurantID string, req RenewRequest) (*restaurants.Subscription, error) {
	if req.Duration < 1 {
		return nil, fmt.Errorf("%w: renewal duration must be at least one month", menuerrors.ErrInvalidArgument)
	}
	p, err := idPath(subscriptionsPath, restaurantID, "renew")
	if err != nil {
		return nil, err
	}
	var out restaurants.Subscription
	if err := s.client.Patch(ctx, p, req, &out); err != nil {
		return nil, fmt.Errorf("[admin RenewSubscription] %s: %w", restaurantID, err)
	}
	return &out, nil
}

func idPath(base, id string, suffix ...string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%w: empty restaurant id", menuerrors.ErrInvalidArgument)
	}
	p := base + "/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p, nil
}
