package publicmenu_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-menu-client/apiclient"
	"github.com/jrsteele09/go-menu-client/internal/apitest"
	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
	"github.com/jrsteele09/go-menu-client/internal/utils"
	"github.com/jrsteele09/go-menu-client/navigation"
	"github.com/jrsteele09/go-menu-client/publicmenu"
	"github.com/jrsteele09/go-menu-client/restaurants"
	"github.com/jrsteele09/go-menu-client/users"
)

const ownerPhone = "01012345678"

type testFixture struct {
	h            *apitest.Harness
	svc          *publicmenu.Service
	restaurantID string
	code         string
}

// setupTestFixture builds a restaurant with one category holding an available and an
// unavailable item, then signs the owner out so the menu is read anonymously.
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	ctx := context.Background()
	h := apitest.NewHarness(t)
	h.Server.AddUser(ownerPhone, "owner-password", users.RoleRestaurantOwner)
	id := h.Server.AddRestaurant(ownerPhone, "Koshary House")
	h.SignIn(t, ownerPhone)

	owner := restaurants.NewService(h.Client)
	cat, err := owner.CreateCategory(ctx, id, restaurants.CategoryRequest{Name: "Mains"})
	require.NoError(t, err)
	_, err = owner.CreateItem(ctx, id, restaurants.MenuItemRequest{
		Name: utils.Ptr("Koshary"), Description: utils.Ptr("Rice, lentils and pasta"),
		CategoryID: utils.Ptr(cat.ID), Price: utils.Ptr(45.0),
	})
	require.NoError(t, err)
	_, err = owner.CreateItem(ctx, id, restaurants.MenuItemRequest{
		Name: utils.Ptr("Molokhia"), CategoryID: utils.Ptr(cat.ID), Price: utils.Ptr(60.0),
		IsAvailable: utils.Ptr(false),
	})
	require.NoError(t, err)
	qr, err := owner.CreateQRCode(ctx, id)
	require.NoError(t, err)

	require.NoError(t, h.Sessions.Clear(ctx))
	return &testFixture{h: h, svc: publicmenu.NewService(h.Client), restaurantID: id, code: qr.Code}
}

func TestMenuForCode(t *testing.T) {
	f := setupTestFixture(t)

	menu, err := f.svc.MenuForCode(context.Background(), f.code, "")
	require.NoError(t, err)
	require.Equal(t, f.restaurantID, menu.Restaurant.ID)
	require.Equal(t, "Koshary House", menu.Restaurant.Name)
	require.Len(t, menu.Categories, 1)
	require.Len(t, menu.Categories[0].Items, 1)
	require.Equal(t, "Koshary", menu.Categories[0].Items[0].Name)
	require.True(t, menu.Settings.PricesVisible())

	require.Equal(t, []string{publicmenu.DefaultLanguage}, f.h.Server.MenuLanguages())
	require.Equal(t, 1, f.h.Server.Calls(http.MethodGet, "/public/qr-codes/"+f.code))
}

func TestMenuLanguage(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.svc.Menu(context.Background(), f.restaurantID, "en")
	require.NoError(t, err)
	require.Equal(t, []string{"en"}, f.h.Server.MenuLanguages())
}

func TestUnknownCode(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.svc.LookupQRCode(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, menuerrors.ErrNotFound)

	_, err = f.svc.LookupQRCode(context.Background(), "")
	require.ErrorIs(t, err, menuerrors.ErrInvalidArgument)
	_, err = f.svc.Menu(context.Background(), "", "ar")
	require.ErrorIs(t, err, menuerrors.ErrInvalidArgument)
}

func TestExpiredRestaurantMenu(t *testing.T) {
	f := setupTestFixture(t)
	f.h.Server.ExpireSubscription(f.restaurantID, time.Now().Add(-time.Hour))

	_, err := f.svc.MenuForCode(context.Background(), f.code, "")
	var sub *apiclient.SubscriptionExpiredError
	require.ErrorAs(t, err, &sub)
	require.NotEmpty(t, sub.Notice.Message)
	require.Equal(t, navigation.RouteSubscriptionExpired, f.h.Router.CurrentPath())
}

func TestSearch(t *testing.T) {
	menu := &publicmenu.Menu{Categories: []publicmenu.Category{
		{ID: "c1", Name: "Mains", Items: []restaurants.MenuItem{
			{ID: "i1", Name: "Koshary", Description: "Rice and LENTILS"},
			{ID: "i2", Name: "Fattah"},
		}},
		{ID: "c2", Name: "Drinks", Items: []restaurants.MenuItem{
			{ID: "i3", Name: "Karkade"},
		}},
	}}

	found := menu.Search("lentils")
	require.Len(t, found, 1)
	require.Equal(t, "c1", found[0].ID)
	require.Len(t, found[0].Items, 1)
	require.Equal(t, "i1", found[0].Items[0].ID)

	found = menu.Search("  ")
	require.Len(t, found, 2)

	require.Empty(t, menu.Search("pizza"))
}

func TestPricesVisible(t *testing.T) {
	var missing *publicmenu.Settings
	require.True(t, missing.PricesVisible())
	require.True(t, (&publicmenu.Settings{}).PricesVisible())
	require.True(t, (&publicmenu.Settings{ShowPrices: utils.Ptr(true)}).PricesVisible())
	require.False(t, (&publicmenu.Settings{ShowPrices: utils.Ptr(false)}).PricesVisible())
}
