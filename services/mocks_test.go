package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"profile-editor/models"
)

type MockRecordClient struct {
	mock.Mock
}

func (m *MockRecordClient) FetchRecord(ctx context.Context, id string) (*models.UserRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserRecord), args.Error(1)
}

func (m *MockRecordClient) UpdateRecord(ctx context.Context, id string, patch models.Patch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) PutObject(ctx context.Context, name string, data []byte, mimeType string) error {
	args := m.Called(ctx, name, data, mimeType)
	return args.Error(0)
}

func (m *MockAssetStore) GetPublicLocator(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockAssetStore) DeleteObject(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

type stubPicker struct {
	image models.PickedImage
	err   error
}

func (p stubPicker) PickImage(context.Context) (models.PickedImage, error) {
	return p.image, p.err
}

const testUserID = "7f1d3c2a-9b7e-4c1a-8f3e-2d5b6a7c8e90"

var fixedNow = time.UnixMilli(1700000000000)

func strPtr(s string) *string { return &s }

func testRecord() *models.UserRecord {
	return &models.UserRecord{
		ID:        testUserID,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "0812345678",
		DOB:       "1815-12-10",
		Gender:    "female",
		Country:   "UK",
		State:     "England",
		City:      "London",
	}
}

// hydratedView returns a view already holding rec, as after a successful mount.
func hydratedView(t *testing.T, rec *models.UserRecord) *ProfileView {
	t.Helper()
	view := NewProfileView(nil, zap.NewNop(), 0)
	view.record = rec.Clone()
	view.loading = false
	return view
}
