package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/swiftmock/internal/utils"
)

func newTestCleaner(config Config) (*Cleaner, *bytes.Buffer) {
	var out bytes.Buffer
	diagnostics := utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	diagnostics.SetOutput(&out, &out)
	return NewCleaner(config, diagnostics), &out
}

func TestCleaner_CleanGeneratedFiles(t *testing.T) {
	tempDir := t.TempDir()
	writeTree(t, tempDir, map[string]string{
		"Clock.swift":            clockSource,
		"ClockMock.swift":        clockMock,
		"Nested/StoreMock.swift": "// generated\n\npublic class MockStore<Item>: Store {\n}\n",
		"HandMock.swift":         "final class HandWrittenMock {}\n",
		"Mock.swift":             "class Mock: Thing {}\n",
	})

	cleaner, out := newTestCleaner(DefaultConfig())
	removed, err := cleaner.CleanGeneratedFiles([]string{tempDir + "/..."})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(tempDir, "ClockMock.swift"),
		filepath.Join(tempDir, "Nested", "StoreMock.swift"),
	}, removed)
	assert.NoFileExists(t, filepath.Join(tempDir, "ClockMock.swift"))
	assert.FileExists(t, filepath.Join(tempDir, "Clock.swift"))
	assert.FileExists(t, filepath.Join(tempDir, "HandMock.swift"))
	assert.FileExists(t, filepath.Join(tempDir, "Mock.swift"))
	assert.Contains(t, out.String(), "removed "+filepath.Join(tempDir, "ClockMock.swift"))
}

func TestCleaner_NonRecursive(t *testing.T) {
	tempDir := t.TempDir()
	writeTree(t, tempDir, map[string]string{
		"ClockMock.swift":        clockMock,
		"Nested/StoreMock.swift": "class MockStore: Store {\n}\n",
	})

	cleaner, _ := newTestCleaner(DefaultConfig())
	removed, err := cleaner.CleanGeneratedFiles([]string{tempDir})
	require.NoError(t, err)
	assert.Len(t, removed, 1)
	assert.FileExists(t, filepath.Join(tempDir, "Nested", "StoreMock.swift"))
}

func TestCleaner_OutputDirectory(t *testing.T) {
	tempDir := t.TempDir()
	writeTree(t, tempDir, map[string]string{
		"Sources/Clock.swift": clockSource,
	})

	config := DefaultConfig()
	config.Output = filepath.Join(tempDir, "Mocks")
	config.ClassPrefix = "Fake"
	config.FileSuffix = "Fake"

	var buf bytes.Buffer
	diagnostics := utils.NewQuietDiagnostics()
	diagnostics.SetOutput(&buf, &buf)
	g, err := NewGenerator(config, diagnostics, NewDiagnosticReporter(false, &buf))
	require.NoError(t, err)
	require.NoError(t, g.Generate(context.Background(), []string{filepath.Join(tempDir, "Sources")}))
	require.FileExists(t, filepath.Join(tempDir, "Mocks", "ClockFake.swift"))

	cleaner, _ := newTestCleaner(config)
	removed, err := cleaner.CleanGeneratedFiles([]string{filepath.Join(tempDir, "Sources")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tempDir, "Mocks", "ClockFake.swift")}, removed)
}

func TestCleaner_MissingOutputDirectory(t *testing.T) {
	tempDir := t.TempDir()
	config := DefaultConfig()
	config.Output = filepath.Join(tempDir, "Mocks")

	cleaner, _ := newTestCleaner(config)
	removed, err := cleaner.CleanGeneratedFiles([]string{tempDir})
	require.NoError(t, err)
	assert.Empty(t, removed)
}
