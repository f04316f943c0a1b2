package restaurants_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-menu-client/apiclient"
	"github.com/jrsteele09/go-menu-client/internal/apitest"
	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
	"github.com/jrsteele09/go-menu-client/internal/utils"
	"github.com/jrsteele09/go-menu-client/navigation"
	"github.com/jrsteele09/go-menu-client/restaurants"
	"github.com/jrsteele09/go-menu-client/users"
)

const (
	adminPhone = "01000000000"
	ownerPhone = "01012345678"
)

type testFixture struct {
	h            *apitest.Harness
	svc          *restaurants.Service
	restaurantID string
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	h := apitest.NewHarness(t)
	h.Server.AddUser(adminPhone, "admin-password", users.RoleSuperAdmin)
	h.Server.AddUser(ownerPhone, "owner-password", users.RoleRestaurantOwner)
	id := h.Server.AddRestaurant(ownerPhone, "Koshary House")
	h.SignIn(t, ownerPhone)
	return &testFixture{h: h, svc: restaurants.NewService(h.Client), restaurantID: id}
}

func TestListAndGet(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Koshary House", list[0].Name)
	require.Equal(t, restaurants.StatusActive, list[0].Subscription.Status)
	require.NotNil(t, list[0].Count)

	r, err := f.svc.Get(ctx, f.restaurantID)
	require.NoError(t, err)
	require.Equal(t, f.restaurantID, r.ID)
	require.Equal(t, ownerPhone, r.Owner.Phone)

	_, err = f.svc.Get(ctx, "nope")
	require.ErrorIs(t, err, menuerrors.ErrNotFound)
}

func TestEmptyIDsAreRejected(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	_, err := f.svc.Get(ctx, "")
	require.ErrorIs(t, err, menuerrors.ErrInvalidArgument)
	_, err = f.svc.UpdateItem(ctx, f.restaurantID, " ", restaurants.MenuItemRequest{})
	require.ErrorIs(t, err, menuerrors.ErrInvalidArgument)
	require.ErrorIs(t, f.svc.DeleteQRCode(ctx, f.restaurantID, ""), menuerrors.ErrInvalidArgument)

	_, err = f.svc.SetLogo(ctx, "", "logo.png", strings.NewReader("x"))
	require.ErrorIs(t, err, menuerrors.ErrInvalidArgument)
	require.Empty(t, f.h.Server.Uploads())
}

func TestCreateUpdateDeleteRestaurant(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.h.SignIn(t, adminPhone)

	_, err := f.svc.Create(ctx, restaurants.CreateRestaurantRequest{})
	require.ErrorIs(t, err, menuerrors.ErrInvalidArgument)

	created, err := f.svc.Create(ctx, restaurants.CreateRestaurantRequest{
		Name:                 "Falafel Corner",
		OwnerPhone:           "01099999999",
		OwnerFirstName:       "Omar",
		Plan:                 restaurants.PlanBasic,
		SubscriptionDuration: 3,
	})
	require.NoError(t, err)
	require.Equal(t, restaurants.PlanBasic, created.Subscription.Plan)
	require.True(t, created.Subscription.CurrentPeriodEnd.After(time.Now().AddDate(0, 2, 0)))

	updated, err := f.svc.Update(ctx, created.ID, restaurants.UpdateRestaurantRequest{
		Address: utils.Ptr("12 Tahrir Square"),
	})
	require.NoError(t, err)
	require.Equal(t, "12 Tahrir Square", updated.Address)
	require.Equal(t, "Falafel Corner", updated.Name)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	_, err = f.svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, menuerrors.ErrNotFound)
}

func TestOwnerCannotCreateRestaurant(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.svc.Create(context.Background(), restaurants.CreateRestaurantRequest{Name: "X", OwnerPhone: "0100"})
	require.Equal(t, http.StatusForbidden, apiclient.StatusCode(err))
}

func TestCategoriesAndItems(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	_, err := f.svc.CreateCategory(ctx, f.restaurantID, restaurants.CategoryRequest{})
	require.ErrorIs(t, err, menuerrors.ErrInvalidArgument)

	cat, err := f.svc.CreateCategory(ctx, f.restaurantID, restaurants.CategoryRequest{Name: "Mains"})
	require.NoError(t, err)

	_, err = f.svc.CreateItem(ctx, f.restaurantID, restaurants.MenuItemRequest{Name: utils.Ptr("Koshary")})
	require.ErrorIs(t, err, menuerrors.ErrInvalidArgument)
	_, err = f.svc.CreateItem(ctx, f.restaurantID, restaurants.MenuItemRequest{
		Name: utils.Ptr("Koshary"), CategoryID: utils.Ptr(cat.ID), Price: utils.Ptr(-1.0),
	})
	require.ErrorIs(t, err, menuerrors.ErrInvalidArgument)

	item, err := f.svc.CreateItem(ctx, f.restaurantID, restaurants.MenuItemRequest{
		Name:       utils.Ptr("Koshary"),
		CategoryID: utils.Ptr(cat.ID),
		Price:      utils.Ptr(45.0),
		Allergens:  []string{"gluten"},
	})
	require.NoError(t, err)
	require.True(t, item.IsAvailable)
	require.Equal(t, 45.0, item.Price)

	item, err = f.svc.SetItemAvailability(ctx, f.restaurantID, item.ID, false)
	require.NoError(t, err)
	require.False(t, item.IsAvailable)
	require.Equal(t, "Koshary", item.Name)

	categories, err := f.svc.ListCategories(ctx, f.restaurantID)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.Equal(t, 1, categories[0].Count.Items)

	renamed, err := f.svc.UpdateCategory(ctx, f.restaurantID, cat.ID, restaurants.CategoryRequest{Name: "Main dishes"})
	require.NoError(t, err)
	require.Equal(t, "Main dishes", renamed.Name)

	require.NoError(t, f.svc.DeleteItem(ctx, f.restaurantID, item.ID))
	items, err := f.svc.ListItems(ctx, f.restaurantID)
	require.NoError(t, err)
	require.Empty(t, items)

	require.NoError(t, f.svc.DeleteCategory(ctx, f.restaurantID, cat.ID))
	err = f.svc.DeleteCategory(ctx, f.restaurantID, cat.ID)
	require.ErrorIs(t, err, menuerrors.ErrNotFound)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	settings, err := f.svc.GetSettings(ctx, f.restaurantID)
	require.NoError(t, err)
	require.Equal(t, "ar", settings.DefaultLanguage)

	settings, err = f.svc.UpdateSettings(ctx, f.restaurantID, restaurants.SettingsUpdate{
		PrimaryColor: utils.Ptr("#ff0000"),
		Languages:    []string{"ar", "en", "fr"},
	})
	require.NoError(t, err)
	require.Equal(t, "#ff0000", settings.PrimaryColor)
	require.Equal(t, []string{"ar", "en", "fr"}, settings.Languages)
	require.Equal(t, "ar", settings.DefaultLanguage)
}

func TestQRCodes(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	first, err := f.svc.CreateQRCode(ctx, f.restaurantID)
	require.NoError(t, err)
	require.NotEmpty(t, first.Code)
	require.Contains(t, first.PublicURL, first.Code)

	fresh, err := f.svc.RegenerateQRCode(ctx, f.restaurantID)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, fresh.ID)

	codes, err := f.svc.ListQRCodes(ctx, f.restaurantID)
	require.NoError(t, err)
	require.Len(t, codes, 1)
	require.Equal(t, fresh.ID, codes[0].ID)
}

func TestUploadHelpers(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	settings, err := f.svc.SetLogo(ctx, f.restaurantID, "logo.png", strings.NewReader("logo"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.menu.test/logos/logo.png", settings.CustomLogo)

	cat, err := f.svc.CreateCategory(ctx, f.restaurantID, restaurants.CategoryRequest{Name: "Drinks"})
	require.NoError(t, err)
	item, err := f.svc.CreateItem(ctx, f.restaurantID, restaurants.MenuItemRequest{
		Name: utils.Ptr("Karkade"), CategoryID: utils.Ptr(cat.ID), Price: utils.Ptr(15.0),
	})
	require.NoError(t, err)

	item, err = f.svc.SetItemImage(ctx, f.restaurantID, item.ID, "karkade.jpg", strings.NewReader("img"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.menu.test/menu-items/karkade.jpg", item.Image)

	uploads := f.h.Server.Uploads()
	require.Len(t, uploads, 2)
	require.Equal(t, restaurants.FolderLogos, uploads[0].Folder)
	require.Equal(t, restaurants.FolderMenuItems, uploads[1].Folder)

	_, err = f.svc.UploadImage(ctx, restaurants.FolderLogos, "", strings.NewReader("x"))
	require.ErrorIs(t, err, menuerrors.ErrInvalidArgument)
}

func TestExpiredSubscriptionNavigates(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.h.Server.ExpireSubscription(f.restaurantID, time.Now().Add(-time.Hour))

	_, err := f.svc.ListItems(ctx, f.restaurantID)
	var sub *apiclient.SubscriptionExpiredError
	require.ErrorAs(t, err, &sub)
	require.Equal(t, navigation.RouteSubscriptionExpired, f.h.Router.CurrentPath())

	// The list endpoint is not restaurant scoped and keeps working.
	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, restaurants.StatusExpired, list[0].Subscription.Status)
}
