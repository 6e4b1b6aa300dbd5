package mediamodule

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage writes uploaded media files to the upload directory and hands back
// the public URL under which they are served.
type Storage struct {
	dir       string
	publicURL string
}

// NewStorage creates the upload directory if needed.
func NewStorage(dir, publicURL string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Storage{dir: dir, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

// StoredFile describes a persisted upload.
type StoredFile struct {
	// OriginalName is the sanitized client filename, kept for display.
	OriginalName string
	// StoredName is the on-disk name, uuid-prefixed to avoid collisions.
	StoredName string
	Path       string
	URL        string
}

// Save streams the multipart file to disk.
func (s *Storage) Save(file *multipart.FileHeader) (*StoredFile, error) {
	name := SanitizeFilename(file.Filename)
	if name == "" {
		return nil, fmt.Errorf("empty filename")
	}

	storedName := uuid.NewString()[:8] + "_" + name
	dst := filepath.Join(s.dir, storedName)

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("failed to write %s: %w", dst, err)
	}

	return &StoredFile{
		OriginalName: name,
		StoredName:   storedName,
		Path:         dst,
		URL:          s.publicURL + "/" + storedName,
	}, nil
}

// Remove deletes a stored file. A missing file is not an error: the row is
// authoritative and the bytes may already be gone.
func (s *Storage) Remove(storedPath string) error {
	if storedPath == "" {
		return nil
	}
	if err := os.Remove(storedPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SanitizeFilename strips path components and replaces spaces, keeping the
// original name recognizable.
func SanitizeFilename(name string) string {
	name = path.Base(filepath.ToSlash(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "")
	if name == "." || name == ".." {
		return ""
	}
	return name
}
