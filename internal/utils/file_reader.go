package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/toyz/swiftmock/internal/errors"
)

// FileReader reads Swift sources and caches their content until the file
// on disk changes. Watch-style reruns and the check command read the same
// files repeatedly.
type FileReader struct {
	contentCache *Cache[string, string]
}

// NewFileReader creates a new file reader
func NewFileReader() *FileReader {
	return &FileReader{
		contentCache: NewCache[string, string](),
	}
}

// ReadFile returns the content of filePath, from the cache when the file is
// unchanged since the last read
func (fr *FileReader) ReadFile(filePath string) (string, error) {
	cleanPath, err := fr.validateAndCleanPath(filePath)
	if err != nil {
		return "", err
	}

	if content, ok := fr.contentCache.GetWithFileValidation(cleanPath, cleanPath); ok {
		return content, nil
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", errors.WrapFileSystemError("read", cleanPath, err)
	}
	content := string(data)

	// a failed stat only costs the cache entry
	_ = fr.contentCache.SetWithFileInfo(cleanPath, content, cleanPath)
	return content, nil
}

// InvalidateFile removes a specific file from the cache
func (fr *FileReader) InvalidateFile(filePath string) {
	fr.contentCache.Delete(filepath.Clean(filePath))
}

// ClearCache clears all cached files
func (fr *FileReader) ClearCache() {
	fr.contentCache.Clear()
}

// CachedFiles returns the number of cached files
func (fr *FileReader) CachedFiles() int {
	return fr.contentCache.Size()
}

func (fr *FileReader) validateAndCleanPath(filePath string) (string, error) {
	if err := NotEmpty("filePath")(filePath); err != nil {
		return "", errors.WrapFileSystemError("read", filePath, err)
	}

	cleanPath := filepath.Clean(filePath)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", errors.WrapFileSystemError("read", cleanPath, err).
			WithSuggestion("Check that the path exists and is readable")
	}
	if info.IsDir() {
		return "", errors.WrapFileSystemError("read", cleanPath, fmt.Errorf("is a directory"))
	}
	return cleanPath, nil
}
