package restaurants

import (
	"context"
	"fmt"
	"strings"

	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
)

func (s *Service) ListCategories(ctx context.Context, restaurantID string) ([]Category, error) {
	p, err := path(restaurantID, "menus", "categories")
	if err != nil {
		return nil, err
	}
	var out []Category
	if err := s.client.Get(ctx, p, &out); err != nil {
		return nil, fmt.Errorf("[restaurants ListCategories] %s: %w", restaurantID, err)
	}
	return out, nil
}

func (s *Service) CreateCategory(ctx context.Context, restaurantID string, req CategoryRequest) (*Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: category name is required", menuerrors.ErrInvalidArgument)
	}
	p, err := path(restaurantID, "menus", "categories")
	if err != nil {
		return nil, err
	}
	var out Category
	if err := s.client.Post(ctx, p, req, &out); err != nil {
		return nil, fmt.Errorf("[restaurants CreateCategory] %s: %w", restaurantID, err)
	}
	return &out, nil
}

func (s *Service) UpdateCategory(ctx context.Context, restaurantID, categoryID string, req CategoryRequest) (*Category, error) {
	p, err := path(restaurantID, "menus", "categories", categoryID)
	if err != nil {
		return nil, err
	}
	var out Category
	if err := s.client.Patch(ctx, p, req, &out); err != nil {
		return nil, fmt.Errorf("[restaurants UpdateCategory] %s: %w", categoryID, err)
	}
	return &out, nil
}

func (s *Service) DeleteCategory(ctx context.Context, restaurantID, categoryID string) error {
	p, err := path(restaurantID, "menus", "categories", categoryID)
	if err != nil {
		return err
	}
	if err := s.client.Delete(ctx, p, nil); err != nil {
		return fmt.Errorf("[restaurants DeleteCategory] %s: %w", categoryID, err)
	}
	return nil
}
