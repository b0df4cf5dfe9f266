package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clockSource = `protocol Clock {
    func now() -> Date
}
`

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(args ...string) result {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// project creates files in a temporary directory and makes it the working
// directory for the rest of the test
func project(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	t.Chdir(dir)
	return dir
}

func TestHelp(t *testing.T) {
	res := execute("--help")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "swiftmock")
	for _, command := range []string{"generate", "check", "clean"} {
		assert.Contains(t, res.stdout, command)
	}
	assert.Contains(t, res.stdout, "--output")
}

func TestUnknownFlag(t *testing.T) {
	res := execute("generate", "--module", "x")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Error: unknown flag: --module")
}

func TestGenerate(t *testing.T) {
	project(t, map[string]string{
		"Sources/Clock.swift": clockSource,
	})

	res := execute("generate")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Generation Complete!")
	assert.Contains(t, res.stdout, "Mocks generated: 1")
	assert.FileExists(t, filepath.Join("Sources", "ClockMock.swift"))

	res = execute("generate", "./Sources")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Files unchanged: 1")
}

func TestGenerate_ConfigAndFlags(t *testing.T) {
	project(t, map[string]string{
		".swiftmock.yaml": "access: public\nclass_prefix: Fake\nheader:\n  - generated\n",
		"Clock.swift":     clockSource,
		"Legacy.swift":    "protocol Legacy {\n    func old()\n}\n",
	})

	res := execute("generate", "--output", "Mocks", "--exclude", "Legacy*", ".")
	require.Equal(t, 0, res.code, res.stderr)

	data, err := os.ReadFile(filepath.Join("Mocks", "ClockMock.swift"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "// generated\n\npublic class FakeClock: Clock {")
	assert.NoFileExists(t, filepath.Join("Mocks", "LegacyMock.swift"))
}

func TestGenerate_ExplicitConfig(t *testing.T) {
	dir := project(t, map[string]string{
		"config/mocks.yaml": "file_suffix: Spy\n",
		"Clock.swift":       clockSource,
	})

	res := execute("generate", "--config", filepath.Join(dir, "config", "mocks.yaml"), ".")
	require.Equal(t, 0, res.code, res.stderr)
	assert.FileExists(t, "ClockSpy.swift")

	res = execute("generate", "--config", "missing.yaml")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Configuration Error")
}

func TestGenerate_InvalidConfig(t *testing.T) {
	project(t, map[string]string{
		".swiftmock.yaml": "access: private\n",
		"Clock.swift":     clockSource,
	})

	res := execute("generate")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Configuration Error")
	assert.NotContains(t, res.stderr, "Error: ")
	assert.NoFileExists(t, "ClockMock.swift")
}

func TestGenerate_PartialFailure(t *testing.T) {
	project(t, map[string]string{
		"Broken.swift": "protocol Broken {\n    func bad(x Int)\n}\n",
		"Clock.swift":  clockSource,
	})

	res := execute("generate")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Parse Error")
	assert.Contains(t, res.stderr, "1 mock(s) could not be generated (Parse Error: 1)")
	assert.FileExists(t, "ClockMock.swift")
}

func TestGenerate_Quiet(t *testing.T) {
	project(t, map[string]string{"Clock.swift": clockSource})

	res := execute("generate", "--quiet")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stdout)
	assert.FileExists(t, "ClockMock.swift")
}

func TestGenerate_Verbose(t *testing.T) {
	project(t, map[string]string{"Clock.swift": clockSource})

	res := execute("generate", "--verbose", "--workers", "2")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Configuration:")
	assert.Contains(t, res.stdout, "Paths: ./...")
	assert.Contains(t, res.stdout, "[VERBOSE] read Clock.swift")
}

func TestCheck(t *testing.T) {
	project(t, map[string]string{"Clock.swift": clockSource})

	res := execute("check")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "ClockMock.swift is missing")
	assert.NoFileExists(t, "ClockMock.swift")

	require.Equal(t, 0, execute("generate").code)
	res = execute("check")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "1 mock(s) up to date")

	data, err := os.ReadFile("ClockMock.swift")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile("ClockMock.swift", append([]byte("// stale\n"), data...), 0644))

	res = execute("check")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "ClockMock.swift is out of date")
	assert.Contains(t, res.stdout, "-// stale")
	assert.Contains(t, res.stderr, "1 mock(s) out of date")
}

func TestClean(t *testing.T) {
	project(t, map[string]string{
		"Clock.swift":    clockSource,
		"HandMock.swift": "final class HandRolled {}\n",
	})

	require.Equal(t, 0, execute("generate").code)
	require.FileExists(t, "ClockMock.swift")

	res := execute("clean")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Removed 1 generated mock(s)")
	assert.NoFileExists(t, "ClockMock.swift")
	assert.FileExists(t, "HandMock.swift")
	assert.FileExists(t, "Clock.swift")
}
