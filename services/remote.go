package services

import (
	"context"
	"time"

	"profile-editor/models"
)

type RecordClient interface {
	FetchRecord(ctx context.Context, id string) (*models.UserRecord, error)
	UpdateRecord(ctx context.Context, id string, patch models.Patch) error
}

type AssetStore interface {
	PutObject(ctx context.Context, name string, data []byte, mimeType string) error
	GetPublicLocator(ctx context.Context, name string) (string, error)
	DeleteObject(ctx context.Context, name string) error
}

type ImagePicker interface {
	PickImage(ctx context.Context) (models.PickedImage, error)
}

// callTimeout bounds a single remote call. Zero means no deadline.
func callTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
