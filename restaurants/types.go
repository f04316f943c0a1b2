package restaurants

import "time"

type Owner struct {
	ID        string `json:"id"`
	Phone     string `json:"phone"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Subscription plans and statuses as reported by the API
const (
	PlanFree       = "FREE"
	PlanBasic      = "BASIC"
	PlanPro        = "PRO"
	PlanEnterprise = "ENTERPRISE"

	StatusActive    = "ACTIVE"
	StatusCancelled = "CANCELLED"
	StatusPastDue   = "PAST_DUE"
	StatusExpired   = "EXPIRED"
)

type Subscription struct {
	ID                 string     `json:"id,omitempty"`
	Plan               string     `json:"plan"`
	Status             string     `json:"status"`
	CurrentPeriodStart *time.Time `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"currentPeriodEnd,omitempty"`
	CreatedAt          *time.Time `json:"createdAt,omitempty"`
}

// Counts are the aggregate counters the API attaches as "_count"
type Counts struct {
	QRCodes    int `json:"qrCodes"`
	MenuItems  int `json:"menuItems"`
	Categories int `json:"categories"`
	Branches   int `json:"branches"`
}

type Restaurant struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug,omitempty"`
	Description  string        `json:"description,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	Email        string        `json:"email,omitempty"`
	Address      string        `json:"address,omitempty"`
	Logo         string        `json:"logo,omitempty"`
	CoverImage   string        `json:"coverImage,omitempty"`
	Currency     string        `json:"currency,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	Owner        *Owner        `json:"owner,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`
	Count        *Counts       `json:"_count,omitempty"`
}

// CreateRestaurantRequest is what the platform administrator sends to onboard a restaurant.
type CreateRestaurantRequest struct {
	Name                 string `json:"name"`
	OwnerPhone           string `json:"ownerPhone"`
	OwnerFirstName       string `json:"ownerFirstName,omitempty"`
	OwnerLastName        string `json:"ownerLastName,omitempty"`
	Description          string `json:"description,omitempty"`
	Phone                string `json:"phone,omitempty"`
	Address              string `json:"address,omitempty"`
	Plan                 string `json:"plan,omitempty"`
	SubscriptionDuration int    `json:"subscriptionDuration,omitempty"` // Months
}

// UpdateRestaurantRequest only sends the fields that are set
type UpdateRestaurantRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Address     *string `json:"address,omitempty"`
	Logo        *string `json:"logo,omitempty"`
}

type Category struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	NameTranslations map[string]string `json:"nameTranslations,omitempty"`
	Description      string            `json:"description,omitempty"`
	IsActive         bool              `json:"isActive"`
	Count            *struct {
		Items int `json:"items"`
	} `json:"_count,omitempty"`
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type MenuItem struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	NameTranslations map[string]string `json:"nameTranslations,omitempty"`
	Description      string            `json:"description,omitempty"`
	Price            float64           `json:"price"`
	Image            string            `json:"image,omitempty"`
	CategoryID       string            `json:"categoryId"`
	IsAvailable      bool              `json:"isAvailable"`
	IsFeatured       bool              `json:"isFeatured,omitempty"`
	Allergens        []string          `json:"allergens,omitempty"`
	DietaryInfo      []string          `json:"dietaryInfo,omitempty"`
}

// MenuItemRequest is used for both create and partial update
type MenuItemRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	CategoryID  *string  `json:"categoryId,omitempty"`
	Image       *string  `json:"image,omitempty"`
	IsAvailable *bool    `json:"isAvailable,omitempty"`
	IsFeatured  *bool    `json:"isFeatured,omitempty"`
	Allergens   []string `json:"allergens,omitempty"`
	DietaryInfo []string `json:"dietaryInfo,omitempty"`
}

type Settings struct {
	ID              string   `json:"id"`
	CustomLogo      string   `json:"customLogo,omitempty"`
	PrimaryColor    string   `json:"primaryColor,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	DefaultLanguage string   `json:"defaultLanguage,omitempty"`
	ShowPrices      *bool    `json:"showPrices,omitempty"`
}

type SettingsUpdate struct {
	CustomLogo      *string  `json:"customLogo,omitempty"`
	PrimaryColor    *string  `json:"primaryColor,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	DefaultLanguage *string  `json:"defaultLanguage,omitempty"`
	ShowPrices      *bool    `json:"showPrices,omitempty"`
}

type QRCode struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	RestaurantID string `json:"restaurantId,omitempty"`
	QRImageURL   string `json:"qrImageUrl,omitempty"`
	PublicURL    string `json:"publicUrl,omitempty"`
	ScanCount    int    `json:"scanCount"`
}

// Upload folders understood by the storage endpoint
const (
	FolderLogos     = "logos"
	FolderMenuItems = "menu-items"
)

type UploadResult struct {
	URL string `json:"url"`
}
