package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// PublicPrefix is the URL path uploads are served under
const PublicPrefix = "/uploads"

const maxNameAttempts = 100

var (
	// ErrFileTooLarge is returned when an upload exceeds the size limit
	ErrFileTooLarge = errors.New("storage: file too large")
	// ErrUnsupportedType is returned for non-image uploads
	ErrUnsupportedType = errors.New("storage: unsupported file type")
)

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Local stores uploaded files on the local filesystem.
type Local struct {
	root    string
	baseURL string
	maxSize int64
	now     func() time.Time
}

// NewLocal creates a filesystem store rooted at root. baseURL is prefixed to
// returned URLs so clients get absolute links.
func NewLocal(root, baseURL string, maxSize int64) *Local {
	return &Local{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Root returns the directory files are written to
func (s *Local) Root() string {
	return s.root
}

// SaveImage writes an uploaded image under <root>/<entity>/<millis>-<name><ext>
// and returns its absolute URL.
func (s *Local) SaveImage(entity string, fh *multipart.FileHeader) (string, error) {
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExt[ext] {
		return "", ErrUnsupportedType
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("storage: open upload: %w", err)
	}
	defer src.Close()

	return s.Save(entity, fh.Filename, src)
}

// Save writes r to a new file for entity and returns its absolute URL.
func (s *Local) Save(entity, originalName string, r io.Reader) (string, error) {
	dir := filepath.Join(s.root, entity)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create dir: %w", err)
	}

	dst, name, err := s.create(dir, originalName)
	if err != nil {
		return "", err
	}
	full := dst.Name()

	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("storage: write file: %w", err)
	}

	return s.baseURL + path.Join(PublicPrefix, entity, name), nil
}

// create opens a file that did not exist before, adding a counter to the
// name when another upload already took it.
func (s *Local) create(dir, originalName string) (*os.File, string, error) {
	base := s.fileName(originalName)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	name := base
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("storage: create file: %w", err)
		}
		name = fmt.Sprintf("%s-%d%s", stem, attempt, ext)
	}
	return nil, "", fmt.Errorf("storage: create file: no free name for %q", base)
}

// Delete removes a file previously returned by Save. Unknown URLs are ignored.
func (s *Local) Delete(url string) error {
	rel, ok := s.relativePath(url)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Local) fileName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := slug.Make(strings.TrimSuffix(filepath.Base(original), filepath.Ext(original)))
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), base, ext)
}

func (s *Local) relativePath(url string) (string, bool) {
	p := strings.TrimPrefix(url, s.baseURL)
	if !strings.HasPrefix(p, PublicPrefix+"/") {
		return "", false
	}
	rel := path.Clean(strings.TrimPrefix(p, PublicPrefix+"/"))
	if rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return rel, true
}
