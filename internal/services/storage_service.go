package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codelenshq/codelens/internal/models"
)

// StorageService stores project file blobs under a project-scoped path
// prefix on the local filesystem.
type StorageService struct {
	basePath string
}

// NewStorageService creates a new storage service rooted at basePath
func NewStorageService(basePath string) *StorageService {
	return &StorageService{basePath: basePath}
}

// SaveFiles writes all project files under the given prefix, preserving
// their relative directory structure. Paths that would land outside the
// prefix are refused.
func (s *StorageService) SaveFiles(prefix string, files []models.ProjectFile) error {
	for _, file := range files {
		key, err := s.keyFor(prefix, file.Path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(key), 0755); err != nil {
			return &models.StorageError{Op: "put", Err: err}
		}
		if err := os.WriteFile(key, []byte(file.Content), 0644); err != nil {
			return &models.StorageError{Op: "put", Err: err}
		}
	}
	return nil
}

// LoadFiles reads every file stored under the given prefix
func (s *StorageService) LoadFiles(prefix string) ([]models.ProjectFile, error) {
	root := filepath.Join(s.basePath, filepath.FromSlash(prefix))

	var files []models.ProjectFile
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, models.ProjectFile{
			Path:    filepath.ToSlash(rel),
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, &models.StorageError{Op: "get", Err: err}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// DeletePrefix removes everything stored under the given prefix
func (s *StorageService) DeletePrefix(prefix string) error {
	root := filepath.Join(s.basePath, filepath.FromSlash(prefix))
	if err := os.RemoveAll(root); err != nil {
		return &models.StorageError{Op: "delete", Err: err}
	}
	return nil
}

// keyFor maps a project-relative path to a filesystem location,
// normalizing separators and stripping any leading slashes. A path
// that still escapes the prefix after cleaning (".." components) is
// refused so one project can never reach another project's files.
func (s *StorageService) keyFor(prefix, path string) (string, error) {
	cleaned := strings.TrimLeft(strings.ReplaceAll(path, "\\", "/"), "/")
	local := filepath.Clean(filepath.FromSlash(cleaned))
	if !filepath.IsLocal(local) {
		return "", &models.StorageError{Op: "put", Err: fmt.Errorf("path %q escapes the storage prefix", path)}
	}
	return filepath.Join(s.basePath, filepath.FromSlash(prefix), local), nil
}
