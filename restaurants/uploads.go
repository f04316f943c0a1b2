package restaurants

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/go-menu-client/apiclient"
	menuerrors "github.com/jrsteele09/go-menu-client/internal/errors"
	"github.com/jrsteele09/go-menu-client/internal/utils"
)

const uploadPath = "/storage/upload"

// UploadImage stores an image under folder and returns its public URL.
func (s *Service) UploadImage(ctx context.Context, folder, fileName string, content io.Reader) (string, error) {
	if strings.TrimSpace(fileName) == "" || content == nil {
		return "", fmt.Errorf("%w: upload needs a file name and content", menuerrors.ErrInvalidArgument)
	}

	var out UploadResult
	err := s.client.Upload(ctx, uploadPath, map[string]string{"folder": folder}, apiclient.MultipartFile{
		Field:    "file",
		FileName: fileName,
		Content:  content,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("[restaurants UploadImage] %s: %w", fileName, err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("[restaurants UploadImage] %s: upload response without url", fileName)
	}
	return out.URL, nil
}

// SetLogo uploads a logo and makes it the restaurant's custom logo.
func (s *Service) SetLogo(ctx context.Context, restaurantID, fileName string, content io.Reader) (*Settings, error) {
	if _, err := path(restaurantID); err != nil {
		return nil, err
	}
	logoURL, err := s.UploadImage(ctx, FolderLogos, fileName, content)
	if err != nil {
		return nil, err
	}
	return s.UpdateSettings(ctx, restaurantID, SettingsUpdate{CustomLogo: utils.Ptr(logoURL)})
}

// SetItemImage uploads an image and attaches it to a menu item.
func (s *Service) SetItemImage(ctx context.Context, restaurantID, itemID, fileName string, content io.Reader) (*MenuItem, error) {
	if _, err := path(restaurantID, "menus", "items", itemID); err != nil {
		return nil, err
	}
	imageURL, err := s.UploadImage(ctx, FolderMenuItems, fileName, content)
	if err != nil {
		return nil, err
	}
	return s.UpdateItem(ctx, restaurantID, itemID, MenuItemRequest{Image: utils.Ptr(imageURL)})
}
