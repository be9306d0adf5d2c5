package libs

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/asset"
	"go.uber.org/zap"

	"profile-editor/utils"
)

type CloudinaryConfig struct {
	URL       string
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// CloudinaryStore keeps profile photos as Cloudinary assets. Images are
// image resources with public id "<folder>/<name without extension>";
// objects of unknown type are raw resources that keep their extension.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	logger *zap.Logger
}

func NewCloudinaryStore(cfg CloudinaryConfig, logger *zap.Logger) (*CloudinaryStore, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)

	switch {
	case cfg.CloudName != "" && cfg.APIKey != "" && cfg.APISecret != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
		if err != nil {
			return nil, fmt.Errorf("cloudinary init from params fail: %w", err)
		}
	case cfg.URL != "":
		logger.Info("cloudinary configured from url", zap.String("url", maskURL(cfg.URL)))
		cld, err = cloudinary.NewFromURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("cloudinary init from URL fail: %w", err)
		}
	default:
		return nil, errors.New("cloudinary credentials not configured")
	}
	cld.Config.URL.Secure = true

	return &CloudinaryStore{cld: cld, folder: strings.Trim(cfg.Folder, "/"), logger: logger}, nil
}

// resourceType maps a MIME classification to a Cloudinary resource type.
// Anything not recognised as an image is stored as a raw file.
func resourceType(mimeType string) string {
	if mimeType == "" || mimeType == utils.DefaultMimeType {
		return string(api.File)
	}
	return string(api.Image)
}

// publicID drops the extension for images only; raw files keep it in
// their public id.
func (s *CloudinaryStore) publicID(name string) string {
	base := name
	if resourceType(utils.MimeType(name)) == string(api.Image) {
		base = strings.TrimSuffix(name, path.Ext(name))
	}
	if s.folder == "" {
		return base
	}
	return s.folder + "/" + base
}

func dataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (s *CloudinaryStore) PutObject(ctx context.Context, name string, data []byte, mimeType string) error {
	publicID := s.publicID(name)
	s.logger.Debug("cloudinary upload",
		zap.String("public_id", publicID),
		zap.String("mime_type", mimeType),
		zap.Int("size", len(data)),
	)

	if mimeType == "" {
		mimeType = utils.DefaultMimeType
	}
	resp, err := s.cld.Upload.Upload(ctx, dataURI(mimeType, data), uploader.UploadParams{
		PublicID:     publicID,
		ResourceType: resourceType(mimeType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if resp == nil {
		return errors.New("cloudinary response is nil")
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary upload rejected: %s", resp.Error.Message)
	}
	return nil
}

func (s *CloudinaryStore) GetPublicLocator(_ context.Context, name string) (string, error) {
	var (
		img *asset.Asset
		err error
	)
	if resourceType(utils.MimeType(name)) == string(api.Image) {
		// The extension becomes the delivery format, so the name can be
		// recovered from the locator.
		img, err = s.cld.Image(s.publicID(name) + path.Ext(name))
	} else {
		img, err = s.cld.File(s.publicID(name))
	}
	if err != nil {
		return "", fmt.Errorf("cloudinary asset: %w", err)
	}
	url, err := img.String()
	if err != nil {
		return "", fmt.Errorf("cloudinary asset url: %w", err)
	}
	if url == "" {
		return "", errors.New("cloudinary returned empty url")
	}
	return url, nil
}

func (s *CloudinaryStore) DeleteObject(ctx context.Context, name string) error {
	publicID := s.publicID(name)

	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType(utils.MimeType(name)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	if result == nil {
		return errors.New("cloudinary response is nil")
	}
	if result.Result != "ok" {
		return fmt.Errorf("cloudinary deletion failed: %s", result.Result)
	}

	s.logger.Debug("cloudinary object deleted", zap.String("public_id", publicID))
	return nil
}

func maskURL(url string) string {
	if len(url) < 20 {
		return "***"
	}
	return url[:10] + "..." + url[len(url)-10:]
}
