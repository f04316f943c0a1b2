package restaurants

import (
	"context"
	"fmt"
)

func (s *Service) ListQRCodes(ctx context.Context, restaurantID string) ([]QRCode, error) {
	p, err := path(restaurantID, "qr-codes")
	if err != nil {
		return nil, err
	}
	var out []QRCode
	if err := s.client.Get(ctx, p, &out); err != nil {
		return nil, fmt.Errorf("[restaurants ListQRCodes] %s: %w", restaurantID, err)
	}
	return out, nil
}

// CreateQRCode asks the API to mint a new QR code pointing at the public menu.
func (s *Service) CreateQRCode(ctx context.Context, restaurantID string) (*QRCode, error) {
	p, err := path(restaurantID, "qr-codes")
	if err != nil {
		return nil, err
	}
	var out QRCode
	if err := s.client.Post(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("[restaurants CreateQRCode] %s: %w", restaurantID, err)
	}
	return &out, nil
}

func (s *Service) DeleteQRCode(ctx context.Context, restaurantID, qrCodeID string) error {
	p, err := path(restaurantID, "qr-codes", qrCodeID)
	if err != nil {
		return err
	}
	if err := s.client.Delete(ctx, p, nil); err != nil {
		return fmt.Errorf("[restaurants DeleteQRCode] %s: %w", qrCodeID, err)
	}
	return nil
}

// RegenerateQRCode replaces every existing QR code with a single fresh one.
func (s *Service) RegenerateQRCode(ctx context.Context, restaurantID string) (*QRCode, error) {
	existing, err := s.ListQRCodes(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	for _, qr := range existing {
		if err := s.DeleteQRCode(ctx, restaurantID, qr.ID); err != nil {
			return nil, err
		}
	}
	return s.CreateQRCode(ctx, restaurantID)
}
