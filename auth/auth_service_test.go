package auth_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-menu-client/apiclient"
	"github.com/jrsteele09/go-menu-client/auth"
	"github.com/jrsteele09/go-menu-client/internal/apitest"
	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
	"github.com/jrsteele09/go-menu-client/navigation"
	"github.com/jrsteele09/go-menu-client/users"
)

const (
	adminPhone = "01000000000"
	ownerPhone = "01012345678"
	password   = "correct-horse"
)

func setupTestFixture(t *testing.T) (*auth.Service, *apitest.Harness) {
	t.Helper()
	h := apitest.NewHarness(t)
	h.Server.AddUser(adminPhone, password, users.RoleSuperAdmin)
	return auth.NewService(h.Client, h.Sessions), h
}

func TestLoginRequiringPasswordSetupPersistsNothing(t *testing.T) {
	ctx := context.Background()
	svc, h := setupTestFixture(t)
	h.Server.AddUser(ownerPhone, "", users.RoleRestaurantOwner)

	result, err := svc.Login(ctx, ownerPhone, "")
	require.NoError(t, err)
	require.True(t, result.RequiresPasswordSetup)
	require.Equal(t, navigation.RoutePasswordSetup, result.NextRoute())
	require.Empty(t, result.AccessToken)

	require.Nil(t, h.Stored(t))
	authenticated, err := svc.IsAuthenticated(ctx)
	require.NoError(t, err)
	require.False(t, authenticated)
}

func TestPasswordSetupFlow(t *testing.T) {
	ctx := context.Background()
	svc, h := setupTestFixture(t)
	h.Server.AddUser(ownerPhone, "", users.RoleRestaurantOwner)

	_, err := svc.Login(ctx, "  "+ownerPhone+" ", "")
	require.NoError(t, err)

	resp, err := svc.SetPassword(ctx, "new-password", "new-password")
	require.NoError(t, err)
	require.Equal(t, ownerPhone, resp.User.Phone)
	require.Equal(t, navigation.RouteDashboard, resp.NextRoute())

	tok, err := svc.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, resp.AccessToken, tok.AccessToken)
	require.Equal(t, resp.RefreshToken, tok.RefreshToken)

	result, err := svc.Login(ctx, ownerPhone, "new-password")
	require.NoError(t, err)
	require.False(t, result.RequiresPasswordSetup)
}

func TestSetPasswordValidation(t *testing.T) {
	svc, h := setupTestFixture(t)

	tests := []struct {
		name     string
		password string
		confirm  string
		err      error
	}{
		{"missing", "", "", menuerrors.ErrPasswordRequired},
		{"mismatch", "password-one", "password-two", menuerrors.ErrPasswordsDontMatch},
		{"too short", "short", "short", menuerrors.ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetPassword(context.Background(), tt.password, tt.confirm)
			require.ErrorIs(t, err, tt.err)
		})
	}
	require.Equal(t, 0, h.Server.Calls(http.MethodPost, auth.RouteSetPassword))
}

func TestSignedInPasswordChangeRefreshes(t *testing.T) {
	ctx := context.Background()
	svc, h := setupTestFixture(t)
	_, err := svc.Login(ctx, adminPhone, password)
	require.NoError(t, err)
	h.Server.ExpireAccessTokens()

	_, err = svc.SetPassword(ctx, "another-password", "another-password")
	require.NoError(t, err)
	require.Equal(t, 1, h.Server.Calls(http.MethodPost, "/auth/refresh"))
}

func TestLoginRoutesByRole(t *testing.T) {
	ctx := context.Background()
	svc, h := setupTestFixture(t)
	h.Server.AddUser(ownerPhone, password, users.RoleRestaurantOwner)

	result, err := svc.Login(ctx, adminPhone, password)
	require.NoError(t, err)
	require.Equal(t, navigation.RouteAdmin, result.NextRoute())
	require.True(t, result.User.IsSuperAdmin())

	result, err = svc.Login(ctx, ownerPhone, password)
	require.NoError(t, err)
	require.Equal(t, navigation.RouteDashboard, result.NextRoute())

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	require.True(t, status.Authenticated)
	require.True(t, status.HasRefreshToken)
	require.NotNil(t, status.Claims)
	require.Equal(t, result.User.ID, status.Claims.Subject)
	require.Equal(t, ownerPhone, status.Claims.Phone)
	require.Equal(t, string(users.RoleRestaurantOwner), status.Claims.Role)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, h := setupTestFixture(t)

	_, err := svc.Login(ctx, "   ", password)
	require.ErrorIs(t, err, menuerrors.ErrPhoneRequired)

	_, err = svc.Login(ctx, adminPhone, "wrong")
	var failed *apiclient.RequestFailedError
	require.ErrorAs(t, err, &failed)
	require.Equal(t, http.StatusUnauthorized, failed.StatusCode)
	require.Equal(t, "Invalid credentials", apiclient.Message(err))

	require.Equal(t, 0, h.Server.Calls(http.MethodPost, "/auth/refresh"))
	require.Empty(t, h.Router.History())
	require.Nil(t, h.Stored(t))
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, h := setupTestFixture(t)

	resp, err := svc.Register(ctx, auth.RegisterRequest{Phone: ownerPhone, Password: password, FirstName: "Mona"})
	require.NoError(t, err)
	require.Equal(t, users.RoleRestaurantOwner, resp.User.Role)
	require.Equal(t, "Mona", resp.User.DisplayName())
	require.Equal(t, resp.AccessToken, h.Stored(t).AccessToken)

	_, err = svc.Register(ctx, auth.RegisterRequest{Phone: ownerPhone, Password: password})
	require.Equal(t, http.StatusConflict, apiclient.StatusCode(err))

	_, err = svc.Register(ctx, auth.RegisterRequest{Phone: "0111", Password: "short"})
	require.ErrorIs(t, err, menuerrors.ErrPasswordTooShort)
}

func TestLogoutRevokesAndClears(t *testing.T) {
	ctx := context.Background()
	svc, h := setupTestFixture(t)
	result, err := svc.Login(ctx, adminPhone, password)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	require.Nil(t, h.Stored(t))
	require.False(t, h.Server.RefreshTokenValid(result.RefreshToken))
	require.Equal(t, 1, h.Server.Calls(http.MethodPost, auth.RouteLogout))

	_, err = svc.Token(ctx)
	require.ErrorIs(t, err, menuerrors.ErrNotAuthenticated)
}

func TestLogoutIsBestEffort(t *testing.T) {
	ctx := context.Background()
	svc, h := setupTestFixture(t)
	_, err := svc.Login(ctx, adminPhone, password)
	require.NoError(t, err)
	h.Server.Close()

	require.NoError(t, svc.Logout(ctx))
	require.Nil(t, h.Stored(t))
}

func TestLogoutWithoutSession(t *testing.T) {
	svc, h := setupTestFixture(t)
	require.NoError(t, svc.Logout(context.Background()))
	require.Equal(t, 0, h.Server.Calls(http.MethodPost, auth.RouteLogout))
}
