package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localStorage keeps uploaded files on the local filesystem
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(basePath string) *localStorage {
	return &localStorage{
		basePath: basePath,
	}
}

// generatePath generates the full file path based on id and kind
// It converts underscores in kind to path separators
func (s *localStorage) generatePath(id, kind string) string {
	kindPath := strings.ReplaceAll(kind, "_", string(filepath.Separator))
	return filepath.Join(s.basePath, kindPath, id)
}

// Create creates a new file and returns a WriteCloser
func (s *localStorage) Create(id, kind string) (io.WriteCloser, error) {
	path := s.generatePath(id, kind)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return os.Create(path)
}

// Open opens a file for reading and returns a ReadCloser
func (s *localStorage) Open(id, kind string) (io.ReadCloser, error) {
	path := s.generatePath(id, kind)
	return os.Open(path)
}

// Delete removes a file
func (s *localStorage) Delete(id, kind string) error {
	path := s.generatePath(id, kind)
	return os.Remove(path)
}
