package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/swiftmock/internal/errors"
	"github.com/toyz/swiftmock/internal/synth"
	"github.com/toyz/swiftmock/internal/utils"
)

// Cleaner handles cleaning up generated mock files
type Cleaner struct {
	config      Config
	scanner     *SourceScanner
	reader      *utils.FileReader
	diagnostics *utils.DiagnosticSystem
}

// NewCleaner creates a new cleaner
func NewCleaner(config Config, diagnostics *utils.DiagnosticSystem) *Cleaner {
	processor := utils.NewFileProcessor()
	return &Cleaner{
		config:      config,
		scanner:     NewSourceScanner(config, processor),
		reader:      processor.GetFileReader(),
		diagnostics: diagnostics,
	}
}

// CleanGeneratedFiles removes the generated mocks found under paths and,
// when an output directory is configured, under that directory. A file
// counts as generated when its name ends in <suffix>.swift and it declares
// the matching mock class; hand-written files that only share the suffix
// are kept.
func (c *Cleaner) CleanGeneratedFiles(paths []string) ([]string, error) {
	patterns := append([]string(nil), paths...)
	if c.config.Output != "" {
		if _, err := os.Stat(c.config.Output); err == nil {
			patterns = append(patterns, c.config.Output+utils.RecursiveSuffix)
		}
	}

	candidates, err := c.scanner.ScanMocks(patterns)
	if err != nil {
		return nil, err
	}

	var removedFiles []string
	for _, path := range candidates {
		content, err := c.reader.ReadFile(path)
		if err != nil {
			return removedFiles, err
		}
		if !c.isGenerated(path, content) {
			c.diagnostics.Verbose("keeping %s: no generated mock class found", path)
			continue
		}

		if err := os.Remove(path); err != nil {
			return removedFiles, errors.WrapFileSystemError("remove", path, err)
		}
		c.reader.InvalidateFile(path)
		removedFiles = append(removedFiles, path)
		c.diagnostics.FileWritten("removed", path)
	}

	return removedFiles, nil
}

// isGenerated looks for `[public ]class <Prefix><Protocol>` followed by the
// generic clause or the conformance list
func (c *Cleaner) isGenerated(path, content string) bool {
	prefix := c.config.ClassPrefix
	if prefix == "" {
		prefix = synth.DefaultClassPrefix
	}
	protocol := strings.TrimSuffix(filepath.Base(path), c.config.MockSuffix()+".swift")
	declaration := "class " + prefix + protocol

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimPrefix(line, "public ")
		rest, found := strings.CutPrefix(line, declaration)
		if found && (strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "<")) {
			return true
		}
	}
	return false
}
