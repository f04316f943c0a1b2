package restaurants

import (
	"context"
	"fmt"
	"strings"

	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
	"github.com/jrsteele09/go-menu-client/internal/utils"
)

func (s *Service) ListItems(ctx context.Context, restaurantID string) ([]MenuItem, error) {
	p, err := path(restaurantID, "menus", "items")
	if err != nil {
		return nil, err
	}
	var out []MenuItem
	if err := s.client.Get(ctx, p, &out); err != nil {
		return nil, fmt.Errorf("[restaurants ListItems] %s: %w", restaurantID, err)
	}
	return out, nil
}

// CreateItem requires a name, a category and a non-negative price.
func (s *Service) CreateItem(ctx context.Context, restaurantID string, req MenuItemRequest) (*MenuItem, error) {
	switch {
	case strings.TrimSpace(utils.Value(req.Name)) == "":
		return nil, fmt.Errorf("%w: item name is required", menuerrors.ErrInvalidArgument)
	case utils.Value(req.CategoryID) == "":
		return nil, fmt.Errorf("%w: item category is required", menuerrors.ErrInvalidArgument)
	case req.Price == nil || *req.Price < 0:
		return nil, fmt.Errorf("%w: item price must be zero or more", menuerrors.ErrInvalidArgument)
	}

	p, err := path(restaurantID, "menus", "items")
	if err != nil {
		return nil, err
	}
	var out MenuItem
	if err := s.client.Post(ctx, p, req, &out); err != nil {
		return nil, fmt.Errorf("[restaurants CreateItem] %s: %w", restaurantID, err)
	}
	return &out, nil
}

func (s *Service) UpdateItem(ctx context.Context, restaurantID, itemID string, req MenuItemRequest) (*MenuItem, error) {
	if req.Price != nil && *req.Price < 0 {
		return nil, fmt.Errorf("%w: item price must be zero or more", menuerrors.ErrInvalidArgument)
	}
	p, err := path(restaurantID, "menus", "items", itemID)
	if err != nil {
		return nil, err
	}
	var out MenuItem
	if err := s.client.Patch(ctx, p, req, &out); err != nil {
		return nil, fmt.Errorf("[restaurants UpdateItem] %s: %w", itemID, err)
	}
	return &out, nil
}

// SetItemAvailability toggles whether an item is shown as orderable.
func (s *Service) SetItemAvailability(ctx context.Context, restaurantID, itemID string, available bool) (*MenuItem, error) {
	return s.UpdateItem(ctx, restaurantID, itemID, MenuItemRequest{IsAvailable: utils.Ptr(available)})
}

func (s *Service) DeleteItem(ctx context.Context, restaurantID, itemID string) error {
	p, err := path(restaurantID, "menus", "items", itemID)
	if err != nil {
		return err
	}
	if err := s.client.Delete(ctx, p, nil); err != nil {
		return fmt.Errorf("[restaurants DeleteItem] %s: %w", itemID, err)
	}
	return nil
}
