package admin_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-menu-client/admin"
	"github.com/jrsteele09/go-menu-client/apiclient"
	"github.com/jrsteele09/go-menu-client/internal/apitest"
	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
	"github.com/jrsteele09/go-menu-client/restaurants"
	"github.com/jrsteele09/go-menu-client/users"
)

const (
	adminPhone = "01000000000"
	ownerPhone = "01012345678"
)

func setupTestFixture(t *testing.T) (*admin.Service, *apitest.Harness, string) {
	t.Helper()
	h := apitest.NewHarness(t)
	h.Server.AddUser(adminPhone, "admin-password", users.RoleSuperAdmin)
	h.Server.AddUser(ownerPhone, "owner-password", users.RoleRestaurantOwner)
	id := h.Server.AddRestaurant(ownerPhone, "Koshary House")
	h.SignIn(t, adminPhone)
	return admin.NewService(h.Client), h, id
}

func TestStats(t *testing.T) {
	svc, h, _ := setupTestFixture(t)
	h.Server.AddRestaurant(ownerPhone, "Koshary House 2")

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, stats.Stats.TotalRestaurants)
	require.Equal(t, 2, stats.Stats.TotalUsers)
	require.Equal(t, 2, stats.Stats.ActiveSubscriptions)
	require.Equal(t, 2, stats.Growth.Restaurants.Last24h)
	require.Equal(t, []admin.PlanCount{{Plan: restaurants.PlanPro, Count: 2}}, stats.SubscriptionBreakdown)
	require.Len(t, stats.RecentRestaurants, 2)
}

func TestStatsRequireSuperAdmin(t *testing.T) {
	svc, h, _ := setupTestFixture(t)
	h.SignIn(t, ownerPhone)

	_, err := svc.Stats(context.Background())
	var failed *apiclient.RequestFailedError
	require.ErrorAs(t, err, &failed)
	require.Equal(t, http.StatusForbidden, failed.StatusCode)
	require.Empty(t, h.Router.History())
}

func TestRestaurants(t *testing.T) {
	ctx := context.Background()
	svc, _, id := setupTestFixture(t)

	list, err := svc.ListRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	r, err := svc.GetRestaurant(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Koshary House", r.Name)

	_, err = svc.GetRestaurant(ctx, "missing")
	require.ErrorIs(t, err, menuerrors.ErrNotFound)

	_, err = svc.GetRestaurant(ctx, "")
	require.ErrorIs(t, err, menuerrors.ErrInvalidArgument)
}

func TestCancelAndRenew(t *testing.T) {
	ctx := context.Background()
	svc, _, id := setupTestFixture(t)

	sub, err := svc.CancelSubscription(ctx, id)
	require.NoError(t, err)
	require.Equal(t, restaurants.StatusCancelled, sub.Status)

	_, err = svc.RenewSubscription(ctx, id, admin.RenewRequest{Duration: 0})
	require.ErrorIs(t, err, menuerrors.ErrInvalidArgument)

	sub, err = svc.RenewSubscription(ctx, id, admin.RenewRequest{Duration: 6, Plan: restaurants.PlanEnterprise})
	require.NoError(t, err)
	require.Equal(t, restaurants.StatusActive, sub.Status)
	require.Equal(t, restaurants.PlanEnterprise, sub.Plan)
	require.True(t, sub.CurrentPeriodEnd.After(time.Now().AddDate(0, 6, 0)))
}

func TestRenewRestoresOwnerAccess(t *testing.T) {
	ctx := context.Background()
	svc, h, id := setupTestFixture(t)
	owners := restaurants.NewService(h.Client)
	h.Server.ExpireSubscription(id, time.Now().Add(-time.Hour))

	h.SignIn(t, ownerPhone)
	_, err := owners.ListCategories(ctx, id)
	var expired *apiclient.SubscriptionExpiredError
	require.ErrorAs(t, err, &expired)

	h.SignIn(t, adminPhone)
	_, err = svc.RenewSubscription(ctx, id, admin.RenewRequest{Duration: 1})
	require.NoError(t, err)

	h.SignIn(t, ownerPhone)
	_, err = owners.ListCategories(ctx, id)
	require.NoError(t, err)
}
