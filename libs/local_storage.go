package libs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"profile-editor/utils"
)

// LocalStore writes objects to a directory that the HTTP server exposes
// under BaseURL. The MIME type given at upload is kept in a hidden
// ".<name>.type" file and sent back as Content-Type when serving.
type LocalStore struct {
	dir     string
	baseURL string
	logger  *zap.Logger
}

func NewLocalStore(dir, baseURL string, logger *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid public base url: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: baseURL, logger: logger}, nil
}

// objectPath rejects names that are not a single visible file name, which
// also keeps type files out of reach.
func (s *LocalStore) objectPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *LocalStore) typePath(name string) string {
	return filepath.Join(s.dir, "."+name+".type")
}

func (s *LocalStore) PutObject(ctx context.Context, name string, data []byte, mimeType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.objectPath(name)
	if err != nil {
		return err
	}
	if mimeType == "" {
		mimeType = utils.DefaultMimeType
	}
	if err := os.WriteFile(s.typePath(name), []byte(mimeType), 0o644); err != nil {
		return fmt.Errorf("failed to save file type: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	s.logger.Debug("object saved", zap.String("path", p), zap.String("mime_type", mimeType))
	return nil
}

func (s *LocalStore) GetPublicLocator(_ context.Context, name string) (string, error) {
	if _, err := s.objectPath(name); err != nil {
		return "", err
	}
	return url.JoinPath(s.baseURL, name)
}

// ContentType returns the MIME type recorded for name, falling back to the
// classification of its extension for objects saved without one.
func (s *LocalStore) ContentType(name string) string {
	raw, err := os.ReadFile(s.typePath(name))
	if err != nil || len(raw) == 0 {
		return utils.MimeType(name)
	}
	return string(raw)
}

// DeleteObject treats a missing file as already deleted.
func (s *LocalStore) DeleteObject(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.objectPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := os.Remove(s.typePath(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to delete file type", zap.String("object", name), zap.Error(err))
	}
	return nil
}

// ServeObject serves GET <prefix>/:name with the recorded Content-Type and
// without content sniffing.
func (s *LocalStore) ServeObject(c *gin.Context) {
	name := c.Param("name")
	p, err := s.objectPath(name)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	if info, err := os.Stat(p); err != nil || info.IsDir() {
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Content-Type", s.ContentType(name))
	c.Header("X-Content-Type-Options", "nosniff")
	c.File(p)
}
