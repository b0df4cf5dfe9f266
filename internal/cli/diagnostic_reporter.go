package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/swiftmock/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a reporter writing to out
func NewDiagnosticReporter(verbose bool, out io.Writer) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     out,
	}
}

// ReportWarning prints a one-line warning
func (r *DiagnosticReporter) ReportWarning(message string) {
	orange := color.New(color.FgYellow, color.Bold)
	orange.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints an error with its location, context and suggestions.
// Collected errors are reported one after the other.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	var multiple *errors.MultipleErrors
	if errors.As(err, &multiple) {
		for _, inner := range multiple.Errors {
			r.ReportError(inner)
		}
		return
	}

	mockErr, ok := errors.AsMockError(err)
	if !ok {
		r.printHeader("Error")
		fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
		return
	}

	r.printHeader(r.title(mockErr.ErrorCode()))
	fmt.Fprintf(r.out, "Message: %s\n\n", mockErr.Error())

	if loc := mockErr.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc.String())
	}
	if context := mockErr.Context(); len(context) > 0 {
		r.printContext(context)
	}
	if suggestions := mockErr.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}
	if r.verbose {
		r.printErrorChain(mockErr.Unwrap())
	}
}

// Breakdown counts collected failures by kind, e.g. "Parse Error: 2"
func (r *DiagnosticReporter) Breakdown(failures *errors.MultipleErrors) []string {
	var counts []string
	for code := errors.UnknownErrorCode; code <= errors.ConfigurationErrorCode; code++ {
		if n := len(failures.GetByCode(code)); n > 0 {
			counts = append(counts, fmt.Sprintf("%s: %d", r.title(code), n))
		}
	}
	return counts
}

func (r *DiagnosticReporter) title(code errors.ErrorCode) string {
	switch code {
	case errors.ParseErrorCode:
		return "Parse Error"
	case errors.InvalidSignatureErrorCode:
		return "Invalid Signature"
	case errors.NamingCollisionErrorCode:
		return "Naming Collision"
	case errors.TemplateErrorCode:
		return "Template Error"
	case errors.FileSystemErrorCode:
		return "File System Error"
	case errors.ConfigurationErrorCode:
		return "Configuration Error"
	default:
		return "Error"
	}
}

func (r *DiagnosticReporter) printHeader(title string) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(r.out, "%s\n", title)
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("-", len(title)))
}

// printContext prints the well-known keys first, the rest sorted
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.out, "Context:\n")

	importantKeys := []string{"protocol", "member", "field", "owners", "path", "config_key"}
	printed := make(map[string]bool)
	for _, key := range importantKeys {
		if value, exists := context[key]; exists {
			fmt.Fprintf(r.out, "   %s: %s\n", r.formatContextKey(key), r.formatValue(value))
			printed[key] = true
		}
	}

	var rest []string
	for key := range context {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(r.out, "   %s: %s\n", r.formatContextKey(key), r.formatValue(context[key]))
	}

	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) formatValue(value interface{}) string {
	if list, ok := value.([]string); ok {
		return strings.Join(list, ", ")
	}
	return fmt.Sprint(value)
}

// formatContextKey converts snake_case keys to Title Case
func (r *DiagnosticReporter) formatContextKey(key string) string {
	if key == "config_key" {
		return "Setting"
	}
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, suggestion)
	}
	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) printErrorChain(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(r.out, "Error Chain:\n")
	level := 1
	for err != nil {
		fmt.Fprintf(r.out, "   %d. %s\n", level, err.Error())
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
		level++
	}
	fmt.Fprintf(r.out, "\n")
}
