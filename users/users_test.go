package users_test

import (
	"testing"

	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
	"github.com/jrsteele09/go-menu-client/users"
	"github.com/stretchr/testify/require"
)

func TestValidateNewPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		wantErr  error
	}{
		{"ok", "password123", "password123", nil},
		{"missing confirmation", "password123", "", menuerrors.ErrPasswordRequired},
		{"missing password", "", "password123", menuerrors.ErrPasswordRequired},
		{"mismatch", "password123", "password124", menuerrors.ErrPasswordsDontMatch},
		{"too short", "pass123", "pass123", menuerrors.ErrPasswordTooShort},
		{"multibyte counts runes", "كلمةسرّ12", "كلمةسرّ12", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidateNewPassword(tt.password, tt.confirm)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalisePhone(t *testing.T) {
	phone, err := users.NormalisePhone("  01012345678 ")
	require.NoError(t, err)
	require.Equal(t, "01012345678", phone)

	_, err = users.NormalisePhone("   ")
	require.ErrorIs(t, err, menuerrors.ErrPhoneRequired)
}

func TestUserHelpers(t *testing.T) {
	admin := &users.User{Phone: "0100", Role: users.RoleSuperAdmin}
	require.True(t, admin.IsSuperAdmin())
	require.Equal(t, "0100", admin.DisplayName())

	owner := &users.User{Phone: "0101", FirstName: "Sara", LastName: "Ali", Role: users.RoleRestaurantOwner}
	require.False(t, owner.IsSuperAdmin())
	require.Equal(t, "Sara Ali", owner.DisplayName())

	var none *users.User
	require.False(t, none.IsSuperAdmin())
}
