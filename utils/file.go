package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const DefaultMimeType = "application/octet-stream"

var imageMimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// MimeType classifies fileName by its extension, ignoring case. Unknown
// extensions are never rejected, they map to DefaultMimeType.
func MimeType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if mime, ok := imageMimeTypes[ext]; ok {
		return mime
	}
	return DefaultMimeType
}

// PhotoObjectName builds a storage name unique per user and upload instant.
// The extension of the picked file is kept, defaulting to .jpg.
func PhotoObjectName(userID string, at time.Time, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || ext == "." {
		ext = ".jpg"
	}
	return fmt.Sprintf("profile_%s_%d%s", userID, at.UnixMilli(), ext)
}

// ObjectNameFromLocator returns the last path segment of a public locator.
func ObjectNameFromLocator(locator string) string {
	if i := strings.IndexAny(locator, "?#"); i != -1 {
		locator = locator[:i]
	}
	locator = strings.TrimRight(locator, "/")
	if i := strings.LastIndex(locator, "/"); i != -1 {
		return locator[i+1:]
	}
	return locator
}
