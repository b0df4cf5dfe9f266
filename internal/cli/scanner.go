package cli

import (
	"io/fs"
	"path/filepath"

	"github.com/toyz/swiftmock/internal/utils"
)

// SourceScanner finds the Swift files a run reads protocols from
type SourceScanner struct {
	fileProcessor *utils.FileProcessor
	mockSuffix    string
	include       []string
	exclude       []string
}

// NewSourceScanner creates a scanner for the given configuration
func NewSourceScanner(config Config, fileProcessor *utils.FileProcessor) *SourceScanner {
	return &SourceScanner{
		fileProcessor: fileProcessor,
		mockSuffix:    config.MockSuffix(),
		include:       config.Include,
		exclude:       config.Exclude,
	}
}

// ScanSources expands path patterns ("dir", "dir/...", "File.swift") into
// Swift sources, skipping generated mocks. A file must match an include
// pattern, when any are set, and no exclude pattern.
func (s *SourceScanner) ScanSources(paths []string) ([]string, error) {
	return s.fileProcessor.CollectFiles(paths, s.filter(utils.SwiftSourceFilter(s.mockSuffix)))
}

// ScanMocks expands path patterns into generated mock files
func (s *SourceScanner) ScanMocks(paths []string) ([]string, error) {
	return s.fileProcessor.CollectFiles(paths, utils.MockFileFilter(s.mockSuffix))
}

func (s *SourceScanner) filter(base utils.FileFilter) utils.FileFilter {
	return func(path string, info fs.DirEntry) bool {
		if !base(path, info) {
			return false
		}
		if len(s.include) > 0 && !matchesAny(s.include, path) {
			return false
		}
		return !matchesAny(s.exclude, path)
	}
}

// matchesAny matches patterns against the base name and the whole
// slash-separated path
func matchesAny(patterns []string, path string) bool {
	name := filepath.Base(path)
	slashed := filepath.ToSlash(path)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, slashed); ok {
			return true
		}
	}
	return false
}
