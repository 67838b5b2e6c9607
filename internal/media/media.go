// Package media stores uploaded images on the local filesystem.
package media

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"pos-backend/internal/apperr"
)

const maxImageSize = 5 << 20

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

type Storage struct {
	root   string
	prefix string
}

// New creates root if needed. prefix is the URL the files are served under.
func New(root, prefix string) (*Storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Storage{root: root, prefix: strings.TrimRight(prefix, "/")}, nil
}

func (s *Storage) Root() string { return s.root }

// SaveImage stores the multipart file in form field under dir and returns
// its path relative to the media root. It returns nil when the request
// carries no such file.
func (s *Storage) SaveImage(c *fiber.Ctx, field, dir string) (*string, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, fasthttp.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Validation(apperr.FieldError{Field: field, Code: "invalid", Message: "The submitted data was not a file."})
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExts[ext] {
		return nil, apperr.Validation(apperr.FieldError{Field: field, Code: "invalid_image", Message: "Upload a valid image."})
	}
	if fh.Size > maxImageSize {
		return nil, apperr.Validation(apperr.FieldError{Field: field, Code: "max_size", Message: "The image may not be larger than 5 MB."})
	}

	if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
		return nil, apperr.Internal(err)
	}
	rel := path.Join(dir, uuid.NewString()+ext)
	if err := c.SaveFile(fh, filepath.Join(s.root, filepath.FromSlash(rel))); err != nil {
		return nil, apperr.Internal(err)
	}
	return &rel, nil
}

// Remove deletes a stored file. Missing files are ignored.
func (s *Storage) Remove(rel *string) {
	if rel == nil || *rel == "" {
		return
	}
	_ = os.Remove(filepath.Join(s.root, filepath.FromSlash(*rel)))
}

// URL is the public address of a stored file, or nil.
func (s *Storage) URL(rel *string) *string {
	if rel == nil || *rel == "" {
		return nil
	}
	u := s.prefix + "/" + *rel
	return &u
}
