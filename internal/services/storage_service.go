package services

import (
	"os"
	"path/filepath"

	"github.com/wathiq/b2b-platform/internal/config"
)

// StorageService owns the upload directory layout. Agreement PDFs and
// any other generated documents go through it so the on-disk structure
// stays in one place.
type StorageService struct {
	config *config.Config
}

func NewStorageService(cfg *config.Config) *StorageService {
	os.MkdirAll(cfg.UploadDir, 0755)
	os.MkdirAll(filepath.Join(cfg.UploadDir, "documents"), 0755)

	return &StorageService{config: cfg}
}

// DocumentPath ensures the document subdirectory exists and returns
// the full path for a new file in it.
func (s *StorageService) DocumentPath(docType, filename string) (string, error) {
	docDir := filepath.Join(s.config.UploadDir, "documents", docType)
	if err := os.MkdirAll(docDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(docDir, filename), nil
}

// ResolvePath returns the full on-disk path for a stored relative path.
func (s *StorageService) ResolvePath(relativePath string) string {
	return filepath.Join(s.config.UploadDir, relativePath)
}

// PublicURL returns the URL a stored file is served under.
func (s *StorageService) PublicURL(relativePath string) string {
	return s.config.AppURL + "/uploads/" + relativePath
}
