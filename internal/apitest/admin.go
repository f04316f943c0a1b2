package apitest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jrsteele09/go-menu-client/admin"
	"github.com/jrsteele09/go-menu-client/restaurants"
)

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var out admin.PlatformStats
	out.Stats.TotalUsers = len(s.accounts)
	out.Stats.TotalRestaurants = len(s.restaurants)
	plans := map[string]int{}
	statuses := map[string]int{}
	now := time.Now()
	for _, id := range s.restaurantOrder {
		st := s.restaurants[id]
		out.Stats.TotalMenuItems += len(st.items)
		out.Stats.TotalCategories += len(st.categories)
		out.Stats.TotalQRCodes += len(st.qrCodes)
		for _, qr := range st.qrCodes {
			out.Stats.TotalScans += qr.ScanCount
		}
		if sub := st.restaurant.Subscription; sub != nil {
			out.Stats.TotalSubscriptions++
			plans[sub.Plan]++
			statuses[sub.Status]++
			switch sub.Status {
			case restaurants.StatusActive:
				out.Stats.ActiveSubscriptions++
			case restaurants.StatusCancelled:
				out.Stats.CancelledSubscriptions++
			case restaurants.StatusPastDue:
				out.Stats.PastDueSubscriptions++
			}
		}
		if now.Sub(st.restaurant.CreatedAt) < 24*time.Hour {
			out.Growth.Restaurants.Last24h++
		}
		out.Growth.Restaurants.Last7d++
		out.Growth.Restaurants.Last30d++
		out.RecentRestaurants = append(out.RecentRestaurants, st.withCounts())
	}
	out.Growth.Restaurants.GrowthRate7d = "0.0"
	out.Growth.Users.GrowthRate7d = "0.0"
	out.Growth.Scans.GrowthRate7d = "0.0"
	for plan, n := range plans {
		out.SubscriptionBreakdown = append(out.SubscriptionBreakdown, admin.PlanCount{Plan: plan, Count: n})
	}
	for status, n := range statuses {
		out.SubscriptionStatusBreakdown = append(out.SubscriptionStatusBreakdown, admin.StatusCount{Status: status, Count: n})
	}
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) adminRestaurant(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	st, ok := s.restaurants[chi.URLParam(r, "id")]
	if !ok {
		WriteError(w, http.StatusNotFound, "", "Restaurant not found")
		return
	}
	WriteJSON(w, http.StatusOK, st.withCounts())
}

func (s *Server) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	st, ok := s.restaurants[chi.URLParam(r, "id")]
	if !ok {
		WriteError(w, http.StatusNotFound, "", "Restaurant not found")
		return
	}
	st.restaurant.Subscription.Status = restaurants.StatusCancelled
	WriteJSON(w, http.StatusOK, st.restaurant.Subscription)
}

// renewSubscription extends from the later of now and the current period end.
func (s *Server) renewSubscription(w http.ResponseWriter, r *http.Request) {
	var req admin.RenewRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Duration < 1 {
		writeValidationError(w, "duration must not be less than 1")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	st, ok := s.restaurants[chi.URLParam(r, "id")]
	if !ok {
		WriteError(w, http.StatusNotFound, "", "Restaurant not found")
		return
	}
	sub := st.restaurant.Subscription
	from := time.Now()
	if sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.After(from) {
		from = *sub.CurrentPeriodEnd
	}
	end := addMonths(from, req.Duration)
	sub.CurrentPeriodEnd = &end
	sub.Status = restaurants.StatusActive
	if req.Plan != "" {
		sub.Plan = req.Plan
	}
	WriteJSON(w, http.StatusOK, sub)
}
