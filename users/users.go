package users

import (
	"strings"

	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
)

// RoleType is the platform role reported by the API for a user
type RoleType string

const (
	RoleSuperAdmin      RoleType = "SUPER_ADMIN"      // Manages every restaurant and subscription
	RoleRestaurantOwner RoleType = "RESTAURANT_OWNER" // Manages their own restaurants
	RoleStaff           RoleType = "STAFF"            // Restaurant staff with dashboard access
)

// MinPasswordLength is the shortest password the API accepts
const MinPasswordLength = 8

type User struct {
	ID        string   `json:"id"`                  // Unique identifier for the user
	Phone     string   `json:"phone"`               // Phone number, the login identifier
	FirstName string   `json:"firstName,omitempty"` // First name of the user
	LastName  string   `json:"lastName,omitempty"`  // Last name of the user
	Role      RoleType `json:"role"`                // Platform role
}

// IsSuperAdmin returns true if the user has platform administrator privileges
func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Role == RoleSuperAdmin
}

// DisplayName returns the full name, falling back to the phone number
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Phone
	}
	return name
}

// NormalisePhone trims the phone number and checks it is present
func NormalisePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", menuerrors.ErrPhoneRequired
	}
	return phone, nil
}

// ValidateNewPassword checks a password and its confirmation before they are sent:
// - Both present
// - Equal
// - At least MinPasswordLength characters long
func ValidateNewPassword(password, confirm string) error {
	if password == "" || confirm == "" {
		return menuerrors.ErrPasswordRequired
	}
	if password != confirm {
		return menuerrors.ErrPasswordsDontMatch
	}
	if len([]rune(password)) < MinPasswordLength {
		return menuerrors.ErrPasswordTooShort
	}
	return nil
}
