package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/akedrou/textdiff"

	"github.com/toyz/swiftmock/internal/errors"
	"github.com/toyz/swiftmock/internal/generator"
	"github.com/toyz/swiftmock/internal/utils"
)

// GenerationSummary contains information about a run
type GenerationSummary struct {
	SourcesScanned int
	ProtocolsFound int
	MocksGenerated int
	Skipped        int
	Warnings       int
	WrittenFiles   []string
	UnchangedFiles []string
	OutdatedFiles  []string
}

// Drift describes a mock file whose content differs from what the
// generator produces now
type Drift struct {
	Path    string
	Missing bool
	Diff    string // unified diff from the file on disk to the generated mock
}

// Generator coordinates the CLI generation process: scanning, reading,
// generating and writing or comparing mock files
type Generator struct {
	config      Config
	scanner     *SourceScanner
	reader      *utils.FileReader
	mocks       generator.MockGenerator
	reporter    *DiagnosticReporter
	diagnostics *utils.DiagnosticSystem
	summary     GenerationSummary
}

// NewGenerator creates a new CLI generator
func NewGenerator(config Config, diagnostics *utils.DiagnosticSystem, reporter *DiagnosticReporter) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	mocks, err := generator.NewGenerator(config.GeneratorConfig())
	if err != nil {
		return nil, err
	}

	processor := utils.NewFileProcessor()
	return &Generator{
		config:      config,
		scanner:     NewSourceScanner(config, processor),
		reader:      processor.GetFileReader(),
		mocks:       mocks,
		reporter:    reporter,
		diagnostics: diagnostics,
	}, nil
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

type plannedMock struct {
	result generator.Result
	path   string
}

// Generate writes a mock file for every protocol declared under paths.
// Files whose content would not change are left untouched. Protocols that
// fail are reported and skipped; the returned error then collects them.
func (g *Generator) Generate(ctx context.Context, paths []string) error {
	planned, failures, err := g.produce(ctx, paths)
	if err != nil {
		return err
	}

	for _, mock := range planned {
		current, readErr := g.reader.ReadFile(mock.path)
		if readErr == nil && current == mock.result.Content {
			g.summary.UnchangedFiles = append(g.summary.UnchangedFiles, mock.path)
			g.diagnostics.Verbose("%s is up to date", mock.path)
			continue
		}

		if err := g.write(mock.path, mock.result.Content); err != nil {
			g.skip(&failures, err)
			continue
		}
		g.summary.WrittenFiles = append(g.summary.WrittenFiles, mock.path)
		g.diagnostics.FileWritten("wrote", mock.path)
	}

	return failures.ErrOrNil()
}

// Check compares every mock the generator would write with the file on
// disk and returns the differences. Nothing is written.
func (g *Generator) Check(ctx context.Context, paths []string) ([]Drift, error) {
	planned, failures, err := g.produce(ctx, paths)
	if err != nil {
		return nil, err
	}

	var drifts []Drift
	for _, mock := range planned {
		current, readErr := g.reader.ReadFile(mock.path)
		switch {
		case errors.Is(readErr, fs.ErrNotExist):
			drifts = append(drifts, Drift{Path: mock.path, Missing: true})
		case readErr != nil:
			g.skip(&failures, readErr)
			continue
		case current != mock.result.Content:
			drifts = append(drifts, Drift{
				Path: mock.path,
				Diff: textdiff.Unified(mock.path+" (current)", mock.path+" (generated)", current, mock.result.Content),
			})
		default:
			g.summary.UnchangedFiles = append(g.summary.UnchangedFiles, mock.path)
			continue
		}
		g.summary.OutdatedFiles = append(g.summary.OutdatedFiles, mock.path)
	}

	return drifts, failures.ErrOrNil()
}

// produce scans and reads the sources under paths and generates their
// mocks. Per-protocol failures are reported and collected; err is only set
// when the run itself cannot continue.
func (g *Generator) produce(ctx context.Context, paths []string) ([]plannedMock, *errors.MultipleErrors, error) {
	g.summary = GenerationSummary{}

	sources, err := g.scanner.ScanSources(paths)
	if err != nil {
		return nil, nil, err
	}
	g.summary.SourcesScanned = len(sources)
	if len(sources) == 0 {
		g.diagnostics.Warn("no Swift sources found in %s", strings.Join(paths, ", "))
		return nil, nil, nil
	}

	units := make([]generator.Unit, 0, len(sources))
	for _, source := range sources {
		content, err := g.reader.ReadFile(source)
		if err != nil {
			return nil, nil, err
		}
		g.diagnostics.Verbose("read %s", source)
		units = append(units, generator.Unit{Name: source, Source: content})
	}

	// failed results carry their own error, collected again below
	results, err := g.mocks.GenerateBatch(ctx, units)
	var batchFailures *errors.MultipleErrors
	if err != nil && !errors.As(err, &batchFailures) {
		return nil, nil, err
	}

	var failures *errors.MultipleErrors
	var planned []plannedMock
	owners := make(map[string]generator.Result)
	for _, result := range results {
		g.summary.ProtocolsFound++
		for _, warning := range result.Warnings {
			g.summary.Warnings++
			g.diagnostics.Warn("%s: %s", result.Unit, warning)
		}

		if !result.OK() {
			g.skip(&failures, result.Err)
			continue
		}

		path := g.config.OutputPath(result.Unit, result.FileName)
		if first, taken := owners[path]; taken {
			g.skip(&failures, errors.WrapFileSystemError("write", path,
				fmt.Errorf("already generated for protocol '%s' from %s", first.Protocol, first.Unit)).
				WithContext("protocol", result.Protocol).
				WithSuggestion("Give the protocols distinct names or write mocks next to their sources"))
			continue
		}
		owners[path] = result

		g.summary.MocksGenerated++
		planned = append(planned, plannedMock{result: result, path: path})
	}

	return planned, failures, nil
}

func (g *Generator) skip(failures **errors.MultipleErrors, err error) {
	g.summary.Skipped++
	g.reporter.ReportError(err)
	mockErr, ok := errors.AsMockError(err)
	if !ok {
		mockErr = errors.Wrap(errors.UnknownErrorCode, err.Error(), err)
	}
	errors.AddToMultiple(failures, mockErr)
}

func (g *Generator) write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapFileSystemError("create directory", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.WrapFileSystemError("write", path, err)
	}
	g.reader.InvalidateFile(path)
	return nil
}
