package libs

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"profile-editor/utils"
)

func newTestCloudinary(t *testing.T, folder string) *CloudinaryStore {
	t.Helper()
	store, err := NewCloudinaryStore(CloudinaryConfig{
		CloudName: "demo",
		APIKey:    "123456789012345",
		APISecret: "not-a-real-secret",
		Folder:    folder,
	}, zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestNewCloudinaryStore_RequiresCredentials(t *testing.T) {
	_, err := NewCloudinaryStore(CloudinaryConfig{Folder: "profile-pictures"}, zap.NewNop())
	assert.Error(t, err)
}

func TestCloudinaryPublicID(t *testing.T) {
	assert.Equal(t, "profile-pictures/profile_u1_1", newTestCloudinary(t, "/profile-pictures/").publicID("profile_u1_1.png"))
	assert.Equal(t, "profile_u1_1", newTestCloudinary(t, "").publicID("profile_u1_1.png"))
	assert.Equal(t, "profile-pictures/profile_u1_1.heic", newTestCloudinary(t, "profile-pictures").publicID("profile_u1_1.heic"))
}

func TestCloudinaryResourceType(t *testing.T) {
	assert.Equal(t, "image", resourceType("image/png"))
	assert.Equal(t, "image", resourceType("image/svg+xml"))
	assert.Equal(t, "raw", resourceType(utils.DefaultMimeType))
	assert.Equal(t, "raw", resourceType(""))
}

func TestCloudinaryDataURICarriesMimeType(t *testing.T) {
	for _, mimeType := range []string{"image/png", "image/svg+xml", utils.DefaultMimeType} {
		uri := dataURI(mimeType, []byte("\x89PNG"))

		assert.True(t, strings.HasPrefix(uri, "data:"+mimeType+";base64,"), uri)
		assert.True(t, api.IsBase64Data(uri), uri)
	}
}

func TestCloudinaryLocatorOfRawObject(t *testing.T) {
	store := newTestCloudinary(t, "profile-pictures")

	locator, err := store.GetPublicLocator(context.Background(), "profile_u1_1700000000000.unknownext")

	require.NoError(t, err)
	assert.Contains(t, locator, "/raw/upload/")
	assert.Contains(t, locator, "profile-pictures/profile_u1_1700000000000.unknownext")
	assert.Equal(t, "profile_u1_1700000000000.unknownext", utils.ObjectNameFromLocator(locator))
}

func TestCloudinaryLocatorRoundTrip(t *testing.T) {
	store := newTestCloudinary(t, "profile-pictures")

	locator, err := store.GetPublicLocator(context.Background(), "profile_u1_1700000000000.jpg")

	require.NoError(t, err)
	assert.Contains(t, locator, "https://")
	assert.Contains(t, locator, "demo")
	assert.Contains(t, locator, "profile-pictures/profile_u1_1700000000000.jpg")

	assert.Contains(t, locator, "/image/upload/")
	assert.Equal(t, "profile_u1_1700000000000.jpg", utils.ObjectNameFromLocator(locator))
}
