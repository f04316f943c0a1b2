// Package restaurants wraps the restaurant owner dashboard endpoints: restaurants, menu
// categories and items, branding settings, QR codes and image uploads.
package restaurants

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-menu-client/apiclient"
	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
)

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// path joins escaped segments onto /restaurants. Empty ids are rejected before any request.
func path(segments ...string) (string, error) {
	var b strings.Builder
	b.WriteString("/restaurants")
	for _, s := range segments {
		if strings.TrimSpace(s) == "" {
			return "", fmt.Errorf("%w: empty id in restaurants path", menuerrors.ErrInvalidArgument)
		}
		b.WriteString("/")
		b.WriteString(url.PathEscape(s))
	}
	return b.String(), nil
}

func (s *Service) List(ctx context.Context) ([]Restaurant, error) {
	var out []Restaurant
	if err := s.client.Get(ctx, "/restaurants", &out); err != nil {
		return nil, fmt.Errorf("[restaurants List]: %w", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, restaurantID string) (*Restaurant, error) {
	p, err := path(restaurantID)
	if err != nil {
		return nil, err
	}
	var out Restaurant
	if err := s.client.Get(ctx, p, &out); err != nil {
		return nil, fmt.Errorf("[restaurants Get] %s: %w", restaurantID, err)
	}
	return &out, nil
}

func (s *Service) Create(ctx context.Context, req CreateRestaurantRequest) (*Restaurant, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: restaurant name is required", menuerrors.ErrInvalidArgument)
	}
	var out Restaurant
	if err := s.client.Post(ctx, "/restaurants", req, &out); err != nil {
		return nil, fmt.Errorf("[restaurants Create]: %w", err)
	}
	return &out, nil
}

func (s *Service) Update(ctx context.Context, restaurantID string, req UpdateRestaurantRequest) (*Restaurant, error) {
	p, err := path(restaurantID)
	if err != nil {
		return nil, err
	}
	var out Restaurant
	if err := s.client.Patch(ctx, p, req, &out); err != nil {
		return nil, fmt.Errorf("[restaurants Update] %s: %w", restaurantID, err)
	}
	return &out, nil
}

func (s *Service) Delete(ctx context.Context, restaurantID string) error {
	p, err := path(restaurantID)
	if err != nil {
		return err
	}
	if err := s.client.Delete(ctx, p, nil); err != nil {
		return fmt.Errorf("[restaurants Delete] %s: %w", restaurantID, err)
	}
	return nil
}
