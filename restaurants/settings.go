package restaurants

import (
	"context"
	"fmt"
)

func (s *Service) GetSettings(ctx context.Context, restaurantID string) (*Settings, error) {
	p, err := path(restaurantID, "settings")
	if err != nil {
		return nil, err
	}
	var out Settings
	if err := s.client.Get(ctx, p, &out); err != nil {
		return nil, fmt.Errorf("[restaurants GetSettings] %s: %w", restaurantID, err)
	}
	return &out, nil
}

func (s *Service) UpdateSettings(ctx context.Context, restaurantID string, update SettingsUpdate) (*Settings, error) {
	p, err := path(restaurantID, "settings")
	if err != nil {
		return nil, err
	}
	var out Settings
	if err := s.client.Patch(ctx, p, update, &out); err != nil {
		return nil, fmt.Errorf("[restaurants UpdateSettings] %s: %w", restaurantID, err)
	}
	return &out, nil
}
