// Package media stores uploaded post images on disk. Only the write path
// lives here; serving stored files is left to whatever fronts the service.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/MarkovDN/pulseblog/internal/common/constants"
)

var allowedExtensions = map[string]bool{
	".gif":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".webp": true,
}

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, "posts"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the upload under a fresh name and returns the stored
// reference (relative to the media root).
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported image extension: %q", ext)
	}

	ref := filepath.Join("posts", uuid.NewString()+ext)

	f, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(r, constants.MaxImageSizeBytes+1))
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	if written > constants.MaxImageSizeBytes {
		os.Remove(f.Name())
		return "", fmt.Errorf("image exceeds %d bytes", int64(constants.MaxImageSizeBytes))
	}

	return ref, nil
}
