// Package publicmenu reads the unauthenticated menu a guest sees after scanning a QR code.
package publicmenu

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-menu-client/apiclient"
	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
	"github.com/jrsteele09/go-menu-client/internal/utils"
	"github.com/jrsteele09/go-menu-client/restaurants"
)

// DefaultLanguage is used when Menu is called without a language.
const DefaultLanguage = "ar"

type Restaurant struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Logo       string  `json:"logo,omitempty"`
	CoverImage string  `json:"coverImage,omitempty"`
	Currency   string  `json:"currency"`
	TaxRate    float64 `json:"taxRate"`
	Address    string  `json:"address,omitempty"`
	Phone      string  `json:"phone,omitempty"`
}

type Category struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	NameTranslations map[string]string      `json:"nameTranslations,omitempty"`
	Items            []restaurants.MenuItem `json:"items"`
}

// Settings is the branding subset of the restaurant settings shown to guests.
type Settings struct {
	PrimaryColor string `json:"primaryColor,omitempty"`
	ShowPrices   *bool  `json:"showPrices,omitempty"`
}

// PricesVisible defaults to true when the restaurant did not say otherwise.
func (s *Settings) PricesVisible() bool {
	return s == nil || utils.ValueOr(s.ShowPrices, true)
}

type Menu struct {
	Restaurant Restaurant `json:"restaurant"`
	Settings   *Settings  `json:"settings,omitempty"`
	Categories []Category `json:"categories"`
}

// Search returns the categories holding items whose name or description contains query,
// each trimmed to its matching items. Matching ignores case.
func (m *Menu) Search(query string) []Category {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		matched := Category{ID: c.ID, Name: c.Name, NameTranslations: c.NameTranslations}
		for _, item := range c.Items {
			if q == "" ||
				strings.Contains(strings.ToLower(item.Name), q) ||
				strings.Contains(strings.ToLower(item.Description), q) {
				matched.Items = append(matched.Items, item)
			}
		}
		if len(matched.Items) > 0 {
			out = append(out, matched)
		}
	}
	return out
}

// QRCode is what the API resolves a scanned code to.
type QRCode struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Restaurant struct {
		ID   string `json:"id"`
		Name string `json:"name,omitempty"`
	} `json:"restaurant"`
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) LookupQRCode(ctx context.Context, code string) (*QRCode, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: empty qr code", menuerrors.ErrInvalidArgument)
	}
	var out QRCode
	if err := s.client.Get(ctx, "/public/qr-codes/"+url.PathEscape(code), &out); err != nil {
		return nil, fmt.Errorf("[publicmenu LookupQRCode] %s: %w", code, err)
	}
	if out.Restaurant.ID == "" {
		return nil, fmt.Errorf("[publicmenu LookupQRCode] %s: %w", code, menuerrors.ErrNotFound)
	}
	return &out, nil
}

func (s *Service) Menu(ctx context.Context, restaurantID, lang string) (*Menu, error) {
	if strings.TrimSpace(restaurantID) == "" {
		return nil, fmt.Errorf("%w: empty restaurant id", menuerrors.ErrInvalidArgument)
	}
	if lang == "" {
		lang = DefaultLanguage
	}
	var out Menu
	err := s.client.GetWithQuery(ctx, "/public/menus/restaurant/"+url.PathEscape(restaurantID), url.Values{"lang": {lang}}, &out)
	if err != nil {
		return nil, fmt.Errorf("[publicmenu Menu] %s: %w", restaurantID, err)
	}
	return &out, nil
}

// MenuForCode resolves a scanned code to its restaurant and loads that restaurant's menu.
func (s *Service) MenuForCode(ctx context.Context, code, lang string) (*Menu, error) {
	qr, err := s.LookupQRCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.Menu(ctx, qr.Restaurant.ID, lang)
}
