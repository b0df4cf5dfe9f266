package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// DiagnosticLevel represents the level of diagnostic output
type DiagnosticLevel int

const (
	DiagnosticSilent DiagnosticLevel = iota
	DiagnosticError
	DiagnosticWarn
	DiagnosticInfo
	DiagnosticVerbose
	DiagnosticDebug
)

// DiagnosticSystem provides structured, user-friendly output
type DiagnosticSystem struct {
	mu        sync.Mutex
	level     DiagnosticLevel
	useColors bool
	showTime  bool
	output    io.Writer
	errorOut  io.Writer
	indent    int
	spin      *spinner.Spinner
	progress  string
}

// NewDiagnosticSystem creates a new diagnostic system
func NewDiagnosticSystem(level DiagnosticLevel) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:     level,
		useColors: shouldUseColors(),
		showTime:  level >= DiagnosticVerbose,
		output:    os.Stdout,
		errorOut:  os.Stderr,
		indent:    0,
	}
}

// NewQuietDiagnostics creates a diagnostic system that only shows errors
func NewQuietDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticError)
}

// NewVerboseDiagnostics creates a diagnostic system with full output
func NewVerboseDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticVerbose)
}

// SetOutput redirects regular and error output, disabling colors, timestamps
// and the spinner. Used by commands that capture output.
func (d *DiagnosticSystem) SetOutput(output, errorOut io.Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.output = output
	d.errorOut = errorOut
	d.useColors = false
	d.showTime = false
}

// Level returns the configured diagnostic level
func (d *DiagnosticSystem) Level() DiagnosticLevel {
	return d.level
}

var levelColors = map[string]*color.Color{
	"ERROR":   color.New(color.FgRed),
	"WARN":    color.New(color.FgYellow),
	"INFO":    color.New(color.FgBlue),
	"SUCCESS": color.New(color.FgGreen),
	"VERBOSE": color.New(color.FgHiBlack),
	"DEBUG":   color.New(color.FgMagenta),
}

// Error outputs error messages (always shown unless silent)
func (d *DiagnosticSystem) Error(format string, args ...interface{}) {
	if d.level >= DiagnosticError {
		d.writeMessage(d.errorOut, "ERROR", format, args...)
	}
}

// Warn outputs warning messages
func (d *DiagnosticSystem) Warn(format string, args ...interface{}) {
	if d.level >= DiagnosticWarn {
		d.writeMessage(d.output, "WARN", format, args...)
	}
}

// Info outputs informational messages
func (d *DiagnosticSystem) Info(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "INFO", format, args...)
	}
}

// Success outputs success messages with emphasis
func (d *DiagnosticSystem) Success(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "SUCCESS", format, args...)
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (d *DiagnosticSystem) Verbose(format string, args ...interface{}) {
	if d.level >= DiagnosticVerbose {
		d.writeMessage(d.output, "VERBOSE", format, args...)
	}
}

// Debug outputs debug messages (highest verbosity)
func (d *DiagnosticSystem) Debug(format string, args ...interface{}) {
	if d.level >= DiagnosticDebug {
		d.writeMessage(d.output, "DEBUG", format, args...)
	}
}

// Section creates a prominent section header
func (d *DiagnosticSystem) Section(title string) {
	if d.level >= DiagnosticInfo {
		d.printf(d.output, color.New(color.FgCyan, color.Bold), "%s\n", title)
	}
}

// Subsection creates a subsection header
func (d *DiagnosticSystem) Subsection(title string) {
	if d.level >= DiagnosticInfo {
		d.printf(d.output, color.New(color.FgBlue), "\n%s:\n", title)
	}
}

// List outputs a bulleted list item
func (d *DiagnosticSystem) List(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		message := fmt.Sprintf(format, args...)
		d.printf(d.output, nil, "%s- %s\n", d.getIndent(), message)
	}
}

// Indent increases the indentation level
func (d *DiagnosticSystem) Indent() {
	d.indent++
}

// Unindent decreases the indentation level
func (d *DiagnosticSystem) Unindent() {
	if d.indent > 0 {
		d.indent--
	}
}

// Summary outputs a final summary with statistics, keys in sorted order
func (d *DiagnosticSystem) Summary(title string, stats map[string]interface{}) {
	if d.level < DiagnosticInfo {
		return
	}

	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	d.printf(d.output, color.New(color.FgGreen), "\n%s\n", title)
	for _, key := range keys {
		d.printf(d.output, nil, "   %s: %v\n", key, stats[key])
	}
	d.printf(d.output, nil, "\n")
}

// StartProgress shows a spinner with a message until EndProgress is
// called. Without a terminal the message is printed once instead.
func (d *DiagnosticSystem) StartProgress(message string) {
	if d.level < DiagnosticInfo {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.progress = message
	if !d.useColors || d.level >= DiagnosticVerbose {
		return
	}
	d.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithColor("green"), spinner.WithWriter(d.output))
	d.spin.Suffix = " " + message
	d.spin.Start()
}

// EndProgress stops the spinner and reports how the step ended. An empty
// message reuses the one given to StartProgress.
func (d *DiagnosticSystem) EndProgress(success bool, message string) {
	if d.level < DiagnosticInfo {
		return
	}

	d.mu.Lock()
	if d.spin != nil {
		d.spin.Stop()
		d.spin = nil
	}
	if message == "" {
		message = d.progress
	}
	d.progress = ""
	d.mu.Unlock()

	if message == "" {
		return
	}
	if success {
		d.printf(d.output, color.New(color.FgGreen), "✓ %s\n", message)
	} else {
		d.printf(d.errorOut, color.New(color.FgRed), "✗ %s\n", message)
	}
}

// FileWritten reports a generated or removed file
func (d *DiagnosticSystem) FileWritten(action, path string) {
	if d.level >= DiagnosticInfo {
		d.printf(d.output, color.New(color.FgMagenta), "%s✏ ", d.getIndent())
		d.printf(d.output, nil, "%s %s\n", action, path)
	}
}

// printf writes formatted text, colored when colors are enabled
func (d *DiagnosticSystem) printf(writer io.Writer, c *color.Color, format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c != nil && d.useColors {
		c.Fprintf(writer, format, args...)
		return
	}
	fmt.Fprintf(writer, format, args...)
}

// writeMessage is the internal message writing function
func (d *DiagnosticSystem) writeMessage(writer io.Writer, level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	var output strings.Builder
	output.WriteString(d.getIndent())

	// Add timestamp if enabled
	if d.showTime {
		output.WriteString(time.Now().Format("15:04:05 "))
	}

	if c, ok := levelColors[level]; ok && d.useColors {
		output.WriteString(c.Sprintf("[%s]", level))
		output.WriteString(" ")
	} else {
		output.WriteString(fmt.Sprintf("[%s] ", level))
	}

	output.WriteString(message)
	output.WriteString("\n")

	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprint(writer, output.String())
}

// getIndent returns the current indentation string
func (d *DiagnosticSystem) getIndent() string {
	return strings.Repeat("  ", d.indent)
}

// shouldUseColors determines if colors should be used
func shouldUseColors() bool {
	// Check if NO_COLOR is set (standard)
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Check if FORCE_COLOR is set
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	// color.NoColor is set when stdout is not a terminal
	return !color.NoColor
}
