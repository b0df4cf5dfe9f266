package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/swiftmock/internal/errors"
)

// RecursiveSuffix marks a path pattern that includes all subdirectories
const RecursiveSuffix = "/..."

// FileProcessor finds Swift files on disk
type FileProcessor struct {
	fileReader *FileReader
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		fileReader: NewFileReader(),
	}
}

// NewFileProcessorWithReader creates a file processor with an existing FileReader
func NewFileProcessorWithReader(reader *FileReader) *FileProcessor {
	return &FileProcessor{
		fileReader: reader,
	}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info fs.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// SwiftSourceFilter accepts .swift files that are not generated mocks,
// i.e. whose name does not end in <mockSuffix>.swift
func SwiftSourceFilter(mockSuffix string) FileFilter {
	return func(path string, info fs.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		name := info.Name()
		if !strings.HasSuffix(name, ".swift") {
			return false
		}
		return mockSuffix == "" || !strings.HasSuffix(name, mockSuffix+".swift")
	}
}

// MockFileFilter accepts files named <Anything><mockSuffix>.swift
func MockFileFilter(mockSuffix string) FileFilter {
	return func(path string, info fs.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		name := info.Name()
		suffix := mockSuffix + ".swift"
		return len(name) > len(suffix) && strings.HasSuffix(name, suffix)
	}
}

// DefaultDirectoryFilter skips hidden directories and the build and
// dependency folders of Swift projects
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"Pods":         true,
		"Carthage":     true,
		"DerivedData":  true,
		"node_modules": true,
		"build":        true,
		"vendor":       true,
	}

	return func(path string, info fs.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}
		return !skipDirs[name]
	}
}

// WalkFiles walks through files in a directory tree with filtering. The
// root itself is never filtered out.
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string

	err := filepath.WalkDir(rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		if entry.IsDir() {
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, entry) {
			matchedFiles = append(matchedFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapFileSystemError("walk", rootDir, err)
	}

	return matchedFiles, nil
}

// CollectFiles expands path patterns into a sorted, duplicate-free list of
// files accepted by filter. A pattern is a file, a directory (its files
// only) or a directory followed by "/..." (the whole tree).
func (fp *FileProcessor) CollectFiles(patterns []string, filter FileFilter) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(paths ...string) {
		for _, path := range paths {
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
		}
	}

	for _, pattern := range patterns {
		if base, recursive := strings.CutSuffix(pattern, RecursiveSuffix); recursive {
			if base == "" {
				base = "."
			}
			matched, err := fp.WalkFiles(filepath.Clean(base), FileWalkOptions{
				FileFilter:      filter,
				DirectoryFilter: DefaultDirectoryFilter(),
			})
			if err != nil {
				return nil, err
			}
			add(matched...)
			continue
		}

		path := filepath.Clean(pattern)
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.WrapFileSystemError("scan", path, err).
				WithSuggestion("Use an existing file or directory, or dir/... to scan recursively")
		}
		if !info.IsDir() {
			if filter == nil || filter(path, fs.FileInfoToDirEntry(info)) {
				add(path)
			}
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, errors.WrapFileSystemError("scan", path, err)
		}
		for _, entry := range entries {
			entryPath := filepath.Join(path, entry.Name())
			if !entry.IsDir() && (filter == nil || filter(entryPath, entry)) {
				add(entryPath)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// GetFileReader returns the underlying FileReader
func (fp *FileProcessor) GetFileReader() *FileReader {
	return fp.fileReader
}
