package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"blogcms/internal/service"

	"github.com/google/uuid"
)

// publicPrefix is the URL path under which stored images are served.
const publicPrefix = "/images/"

// allowedExtensions are the upload types accepted, lowercase with dot.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ImageStore saves uploaded article images to disk under a base directory
// and serves removal by public URL.
type ImageStore struct {
	baseDir  string
	maxBytes int64
}

// NewImageStore creates the base directory if missing.
func NewImageStore(baseDir string, maxBytes int64) (*ImageStore, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("image store base dir is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &ImageStore{baseDir: baseDir, maxBytes: maxBytes}, nil
}

var _ service.ImageRemover = (*ImageStore)(nil)

// Save validates and writes an uploaded file, returning its public URL.
// The stored name combines a millisecond timestamp with a random suffix so
// concurrent uploads cannot collide.
func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: only image files are allowed (jpg, jpeg, png, gif)", service.ErrUpload)
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", service.ErrUpload, s.maxBytes)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	target := filepath.Join(s.baseDir, name)

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}

	return publicPrefix + name, nil
}

// Remove deletes a stored image by its public URL. A missing file is not
// an error. Anything outside the store's directory is rejected.
func (s *ImageStore) Remove(publicURL string) error {
	if !strings.HasPrefix(publicURL, publicPrefix) {
		return fmt.Errorf("not a stored image url: %q", publicURL)
	}
	name := path.Base(strings.TrimPrefix(publicURL, publicPrefix))
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid image name in %q", publicURL)
	}
	err := os.Remove(filepath.Join(s.baseDir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image %q: %w", name, err)
	}
	return nil
}

// Dir returns the directory static file serving should be rooted at.
func (s *ImageStore) Dir() string { return s.baseDir }
