package parser

import (
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/swiftmock/internal/errors"
)

// ErrorReporter turns grammar failures into ParseErrors that name the
// protocol and member and suggest a fix
type ErrorReporter struct{}

// NewErrorReporter creates a new parse error reporter
func NewErrorReporter() *ErrorReporter {
	return &ErrorReporter{}
}

// ReportMemberError builds the ParseError for a member whose text does not
// match the member grammar. Positions in err are relative to the member.
func (r *ErrorReporter) ReportMemberError(protocol, member string, conv *converter, err error) *errors.ParseError {
	issue := err.Error()
	rel := lexer.Position{Line: 1, Column: 1}

	var perr participle.Error
	if goerrors.As(err, &perr) {
		issue = perr.Message()
		rel = perr.Position()
	}

	parseErr := errors.NewParseError(protocol, member, conv.location(rel), fmt.Errorf("%s", issue))
	for _, suggestion := range r.suggestionsFor(member, issue) {
		parseErr.WithSuggestion(suggestion)
	}
	return parseErr
}

// ReportLexError builds the ParseError for text the lexer cannot split
func (r *ErrorReporter) ReportLexError(filename string, err error) *errors.ParseError {
	loc := errors.SourceLocation{File: filename}
	var perr participle.Error
	if goerrors.As(err, &perr) {
		loc = location(perr.Position())
	}
	return errors.NewParseError("", "", loc, err)
}

func (r *ErrorReporter) suggestionsFor(member, issue string) []string {
	var suggestions []string

	switch {
	case strings.Contains(issue, "unexpected token \"<EOF>\""), strings.Contains(issue, "EOF"):
		suggestions = append(suggestions,
			"The declaration ends early; look for an unclosed '(' '[' or '<'",
		)
	case strings.Contains(issue, "\":\""):
		suggestions = append(suggestions,
			"Every parameter needs a type annotation: label name: Type",
		)
	case strings.Contains(issue, "\")\""), strings.Contains(issue, "\"(\""):
		suggestions = append(suggestions,
			"Check that every '(' has a matching ')'",
		)
	case strings.Contains(issue, "\"->\""):
		suggestions = append(suggestions,
			"A return arrow must be followed by a type",
		)
	}

	if strings.HasPrefix(member, KeywordVar+" ") {
		suggestions = append(suggestions, "Property requirements are written as: var name: Type { get set }")
	}
	return suggestions
}
