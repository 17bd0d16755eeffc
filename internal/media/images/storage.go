// Package images validates, stores and describes uploaded recipe images.
package images

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// RecipeDir is the directory, relative to the media root, holding recipe
// images. Stored references have the form "uploads/recipe/{uuid}{ext}".
const RecipeDir = "uploads/recipe"

// Storage manages image files under a media root.
// Thread-safe for concurrent operations.
type Storage struct {
	root string
	mu   sync.RWMutex
}

// NewStorage creates the media root and the recipe image directory.
func NewStorage(root string) (*Storage, error) {
	if root == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(RecipeDir)), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", RecipeDir, err)
	}

	return &Storage{root: root}, nil
}

// Root returns the media root directory.
func (s *Storage) Root() string { return s.root }

// RecipeImagePath returns a fresh reference for a recipe image. The
// uploaded filename's extension, lower-cased, is kept only when it matches
// the detected format ("photo.JPEG" stays .jpeg); anything else gets the
// format's canonical extension.
func RecipeImagePath(filename string, format Format) string {
	ext := strings.ToLower(path.Ext(filepath.Base(filename)))
	if !format.allowsExt(ext) {
		ext = format.Ext
	}
	return path.Join(RecipeDir, uuid.NewString()+ext)
}

// Save writes data at the reference ref. The file is written to a temp
// name and renamed so readers never see a partial image.
func (s *Storage) Save(ref string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("image data cannot be empty")
	}
	full, err := s.Path(ref)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write image file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close image file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod image file: %w", err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move image file: %w", err)
	}
	return nil
}

// Exists reports whether a file is stored at ref.
func (s *Storage) Exists(ref string) bool {
	full, err := s.Path(ref)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err = os.Stat(full)
	return err == nil
}

// Delete removes the file at ref. A missing file is not an error.
func (s *Storage) Delete(ref string) error {
	full, err := s.Path(ref)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// Path resolves ref to a filesystem path under the media root. References
// that escape the root are rejected.
func (s *Storage) Path(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("image reference cannot be empty")
	}
	clean := path.Clean("/" + ref)[1:]
	if clean == "" || clean != ref {
		return "", fmt.Errorf("invalid image reference %q", ref)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
