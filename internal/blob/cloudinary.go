package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// CloudinaryConfig holds Cloudinary credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	// Folder is prefixed to every key.
	Folder string
}

// CloudinaryStore uploads proofs to Cloudinary and returns their secure URL.
type CloudinaryStore struct {
	folder   string
	uploader *uploader.API
}

var overwrite = true

// NewCloudinaryStore builds a store from Cloudinary cloud name, API key, and secret.
func NewCloudinaryStore(cfg CloudinaryConfig) (*CloudinaryStore, error) {
	c, err := config.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	up, err := uploader.NewWithConfiguration(c)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary uploader: %w", err)
	}
	return &CloudinaryStore{folder: cfg.Folder, uploader: up}, nil
}

// Put uploads r under key. A second upload for the same key replaces the first.
func (s *CloudinaryStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	folder, name := path.Split(path.Join(s.folder, cleaned))
	publicID := strings.TrimSuffix(name, path.Ext(name))

	result, err := s.uploader.Upload(ctx, r, uploader.UploadParams{
		Folder:       strings.TrimSuffix(folder, "/"),
		PublicID:     publicID,
		ResourceType: "auto",
		Overwrite:    &overwrite,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload proof: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload proof: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}
