package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"profile-editor/middleware"
	"profile-editor/models"
	"profile-editor/services"
	"profile-editor/utils"
)

const (
	testSecret = "controller-test-secret"
	testUserID = "7f1d3c2a-9b7e-4c1a-8f3e-2d5b6a7c8e90"
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
	return m.Called(ctx, id, patch).Error(0)
}

type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) PutObject(ctx context.Context, name string, data []byte, mimeType string) error {
	return m.Called(ctx, name, data, mimeType).Error(0)
}

func (m *MockAssetStore) GetPublicLocator(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockAssetStore) DeleteObject(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

type testServer struct {
	router  *gin.Engine
	records *MockRecordClient
	assets  *MockAssetStore
	logs    *observer.ObservedLogs
	token   string
}

func newTestServer(t *testing.T, maxUpload int64) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	records := new(MockRecordClient)
	assets := new(MockAssetStore)
	screens := services.NewScreenRegistry(records, assets, zap.NewNop(), services.ScreenConfig{
		Now: func() time.Time { return time.UnixMilli(1700000000000) },
	})
	core, logs := observer.New(zap.InfoLevel)
	ctrl := NewProfileController(screens, maxUpload, zap.New(core))

	router := gin.New()
	group := router.Group("/profile/screen", middleware.AuthMiddleware(testSecret))
	group.POST("", ctrl.MountScreen)
	group.GET("", ctrl.GetScreen)
	group.DELETE("", ctrl.UnmountScreen)
	group.POST("/edit", ctrl.BeginEdit)
	group.PATCH("/edit", ctrl.UpdateDraft)
	group.DELETE("/edit", ctrl.CancelEdit)
	group.POST("/edit/commit", ctrl.CommitEdit)
	group.POST("/photo", ctrl.UploadPhoto)
	group.DELETE("/photo", ctrl.DeletePhoto)

	token, err := utils.GenerateToken(testSecret, testUserID, "ada@example.com", time.Hour)
	require.NoError(t, err)

	return &testServer{router: router, records: records, assets: assets, logs: logs, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, models.ScreenResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return s.send(t, req)
}

func (s *testServer) upload(t *testing.T, fileName string, data []byte) (*httptest.ResponseRecorder, models.ScreenResponse) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("photo", fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/profile/screen/photo", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, models.ScreenResponse) {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp models.ScreenResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func (s *testServer) mount(t *testing.T, user *models.UserRecord) {
	t.Helper()
	s.records.On("FetchRecord", mock.Anything, testUserID).Return(user, nil).Once()
	rec, _ := s.do(t, http.MethodPost, "/profile/screen", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func testUser() *models.UserRecord {
	return &models.UserRecord{ID: testUserID, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", City: "London"}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{services.ErrFieldNotEditable, http.StatusBadRequest},
		{services.ErrScreenNotMounted, http.StatusNotFound},
		{errPhotoTooLarge, http.StatusRequestEntityTooLarge},
		{services.ErrNoEditSession, http.StatusConflict},
		{services.ErrEditSessionMismatch, http.StatusConflict},
		{services.ErrNotHydrated, http.StatusConflict},
		{services.ErrPipelineBusy, http.StatusConflict},
		{&services.RemoteError{Kind: services.RemoteWriteFailure, Op: "update", Err: errors.New("x")}, http.StatusBadGateway},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), "%v", tc.err)
	}
}

func TestRequiresBearerToken(t *testing.T) {
	s := newTestServer(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/profile/screen", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestScreenLifecycle(t *testing.T) {
	s := newTestServer(t, 0)

	rec, _ := s.do(t, http.MethodGet, "/profile/screen", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s.mount(t, testUser())

	rec, resp := s.do(t, http.MethodGet, "/profile/screen", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Ada", resp.Data.Record.FirstName)
	assert.False(t, resp.Data.Loading)
	assert.Equal(t, models.DisplayFields, resp.Data.Fields)
	assert.NotNil(t, resp.Notifications)

	rec, _ = s.do(t, http.MethodDelete, "/profile/screen", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodDelete, "/profile/screen", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMountScreen_HydrationFailure(t *testing.T) {
	s := newTestServer(t, 0)
	s.records.On("FetchRecord", mock.Anything, testUserID).Return(nil, errors.New("db down"))

	rec, resp := s.do(t, http.MethodPost, "/profile/screen", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Nil(t, resp.Data.Record)
	assert.False(t, resp.Data.Loading)
}

func TestEditAndCommitField(t *testing.T) {
	s := newTestServer(t, 0)
	s.mount(t, testUser())
	s.records.On("UpdateRecord", mock.Anything, testUserID, models.Patch{models.FieldCity: "Paris"}).Return(nil)

	rec, resp := s.do(t, http.MethodPost, "/profile/screen/edit", models.BeginEditRequest{Field: models.FieldCity, Value: "London"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Data.Editing)
	assert.Equal(t, models.FieldCity, resp.Data.Editing.Field)

	rec, resp = s.do(t, http.MethodPatch, "/profile/screen/edit", models.UpdateDraftRequest{Value: "Paris"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Paris", resp.Data.Editing.Draft)

	rec, resp = s.do(t, http.MethodPost, "/profile/screen/edit/commit", models.CommitRequest{Field: models.FieldCity})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Paris", resp.Data.Record.City)
	assert.Nil(t, resp.Data.Editing)
	assert.Equal(t, []models.Notification{{Kind: models.NotificationSuccess, Message: "Profile updated successfully!"}}, resp.Notifications)
	s.records.AssertExpectations(t)
}

func TestEditErrors(t *testing.T) {
	s := newTestServer(t, 0)
	s.mount(t, testUser())

	rec, _ := s.do(t, http.MethodPost, "/profile/screen/edit", models.BeginEditRequest{Field: models.FieldEmail})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/profile/screen/edit", map[string]string{"value": "no field"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/profile/screen/edit/commit", models.CommitRequest{Field: models.FieldCity})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, resp := s.do(t, http.MethodPost, "/profile/screen/edit", models.BeginEditRequest{Field: models.FieldPhone, Value: "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Data.Editing)

	rec, resp = s.do(t, http.MethodDelete, "/profile/screen/edit", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, resp.Data.Editing)
	s.records.AssertNotCalled(t, "UpdateRecord", mock.Anything, mock.Anything, mock.Anything)
}

func TestCommitRemoteFailure(t *testing.T) {
	s := newTestServer(t, 0)
	s.mount(t, testUser())
	s.records.On("UpdateRecord", mock.Anything, testUserID, mock.Anything).Return(errors.New("rejected"))

	s.do(t, http.MethodPost, "/profile/screen/edit", models.BeginEditRequest{Field: models.FieldCity, Value: "London"})
	s.do(t, http.MethodPatch, "/profile/screen/edit", models.UpdateDraftRequest{Value: "Paris"})
	rec, resp := s.do(t, http.MethodPost, "/profile/screen/edit/commit", models.CommitRequest{Field: models.FieldCity})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Paris", resp.Data.Record.City)
	assert.Equal(t, []models.Notification{{Kind: models.NotificationError, Message: "Failed to update profile."}}, resp.Notifications)
}

func TestServerFailuresAreLogged(t *testing.T) {
	s := newTestServer(t, 0)
	s.mount(t, testUser())
	s.records.On("UpdateRecord", mock.Anything, testUserID, mock.Anything).Return(errors.New("rejected"))

	s.do(t, http.MethodPost, "/profile/screen/edit", models.BeginEditRequest{Field: models.FieldCity, Value: "London"})
	rec, _ := s.do(t, http.MethodPost, "/profile/screen/edit/commit", models.CommitRequest{Field: models.FieldCity})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	entries := s.logs.FilterMessage("profile screen request failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, testUserID, fields["actor_id"])
	assert.Equal(t, int64(http.StatusBadGateway), fields["status"])
	assert.Equal(t, "/profile/screen/edit/commit", fields["path"])
}

func TestClientErrorsAreNotLogged(t *testing.T) {
	s := newTestServer(t, 0)
	s.mount(t, testUser())

	rec, _ := s.do(t, http.MethodPost, "/profile/screen/edit", models.BeginEditRequest{Field: models.FieldEmail})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Zero(t, s.logs.FilterMessage("profile screen request failed").Len())
}

func TestUploadPhoto(t *testing.T) {
	s := newTestServer(t, 0)
	s.mount(t, testUser())
	name := "profile_" + testUserID + "_1700000000000.png"
	locator := "https://cdn.example.com/" + name
	s.assets.On("PutObject", mock.Anything, name, []byte("png"), "image/png").Return(nil)
	s.assets.On("GetPublicLocator", mock.Anything, name).Return(locator, nil)
	s.records.On("UpdateRecord", mock.Anything, testUserID, models.Patch{models.FieldPhotoURL: locator}).Return(nil)

	rec, resp := s.upload(t, "me.PNG", []byte("png"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Data.Record.ProfilePhotoURL)
	assert.Equal(t, locator, *resp.Data.Record.ProfilePhotoURL)
	assert.False(t, resp.Data.Uploading)
	assert.Equal(t, []models.Notification{{Kind: models.NotificationSuccess, Message: "Profile picture updated successfully!"}}, resp.Notifications)
	s.assets.AssertExpectations(t)
}

func TestUploadPhoto_WithoutFileIsCancelled(t *testing.T) {
	s := newTestServer(t, 0)
	s.mount(t, testUser())

	rec, resp := s.do(t, http.MethodPost, "/profile/screen/photo", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.Notification{{Kind: models.NotificationInfo, Message: "No image selected"}}, resp.Notifications)
	s.assets.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadPhoto_TooLarge(t *testing.T) {
	s := newTestServer(t, 4)
	s.mount(t, testUser())

	rec, resp := s.upload(t, "big.jpg", []byte("0123456789"))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, []models.Notification{{Kind: models.NotificationError, Message: "Failed to upload profile picture."}}, resp.Notifications)
	s.assets.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadPhoto_BodyCappedBeforeParsing(t *testing.T) {
	s := newTestServer(t, 1024)
	s.mount(t, testUser())

	oversized := bytes.Repeat([]byte{0xff}, 1024+multipartOverhead+1)
	rec, resp := s.upload(t, "huge.png", oversized)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, []models.Notification{{Kind: models.NotificationError, Message: "Failed to upload profile picture."}}, resp.Notifications)
	s.assets.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeletePhoto(t *testing.T) {
	s := newTestServer(t, 0)
	user := testUser()
	locator := "https://cdn.example.com/profile_" + testUserID + "_1.jpg"
	user.ProfilePhotoURL = &locator
	s.mount(t, user)
	s.assets.On("DeleteObject", mock.Anything, "profile_"+testUserID+"_1.jpg").Return(nil)
	s.records.On("UpdateRecord", mock.Anything, testUserID, models.Patch{models.FieldPhotoURL: nil}).Return(nil)

	rec, resp := s.do(t, http.MethodDelete, "/profile/screen/photo", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, resp.Data.Record.ProfilePhotoURL)
	assert.Equal(t, []models.Notification{{Kind: models.NotificationSuccess, Message: "Profile picture deleted successfully!"}}, resp.Notifications)

	rec, resp = s.do(t, http.MethodDelete, "/profile/screen/photo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Notifications)
	s.assets.AssertNumberOfCalls(t, "DeleteObject", 1)
}
