// Package uploads stores product images on the local filesystem and serves
// them back as static files under /uploads/.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for anything that is not an image upload.
var ErrUnsupportedType = errors.New("only image uploads are supported")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// FileStore writes uploaded images into a local directory.
type FileStore struct {
	rootDir string
}

// NewFileStore creates an upload store rooted at rootDir.
func NewFileStore(rootDir string) (*FileStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileStore{rootDir: rootDir}, nil
}

// Dir returns the root directory served under /uploads/.
func (s *FileStore) Dir() string {
	return s.rootDir
}

// Save writes the uploaded file to disk under a fresh name and returns its
// public path. The original filename only contributes its extension.
func (s *FileStore) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.rootDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return "/uploads/" + name, nil
}
