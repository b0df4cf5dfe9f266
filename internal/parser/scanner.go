package parser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/swiftmock/internal/errors"
)

// protocolSpan locates one protocol declaration in a token stream
type protocolSpan struct {
	Name     string
	Access   string
	Inherits []string
	Keyword  int // index of the `protocol` token
	Open     int // index of the body's `{`
	Close    int // index of the matching `}`
}

// memberSpan is the token range [Start, End) of one protocol member
type memberSpan struct {
	Label string // e.g. "func mixed", used in error messages
	Start int
	End   int
}

func location(pos lexer.Position) errors.SourceLocation {
	return errors.SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}

// findProtocols walks the top level of a file and returns every protocol
// declaration. Other declarations are skipped by brace matching.
func findProtocols(tokens []lexer.Token) ([]protocolSpan, error) {
	var spans []protocolSpan
	depth := 0
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case isPunct(tok, "{"):
			depth++
		case isPunct(tok, "}"):
			if depth > 0 {
				depth--
			}
		case depth == 0 && isIdent(tok, KeywordProtocol) && !(i > 0 && isPunct(tokens[i-1], ".")):
			span, err := readProtocol(tokens, i)
			if err != nil {
				return spans, err
			}
			spans = append(spans, span)
			i = span.Close
		}
	}
	return spans, nil
}

// readProtocol reads the header and finds the body of the protocol whose
// keyword sits at index i
func readProtocol(tokens []lexer.Token, i int) (protocolSpan, error) {
	keyword := tokens[i]
	if i+1 >= len(tokens) || tokens[i+1].Type != kinds.ident {
		return protocolSpan{}, errors.NewParseError("", "", location(keyword.Pos),
			fmt.Errorf("expected a protocol name after 'protocol'"))
	}

	span := protocolSpan{
		Name:    strings.Trim(tokens[i+1].Value, "`"),
		Access:  accessBefore(tokens, i),
		Keyword: i,
		Open:    -1,
	}

	j := i + 2
	if j < len(tokens) && isPunct(tokens[j], "<") {
		// primary associated types repeat the body's associatedtype requirements
		j = skipAngles(tokens, j)
	}
	if j < len(tokens) && isPunct(tokens[j], ":") {
		span.Inherits, j = readInherits(tokens, j+1)
	}
	for ; j < len(tokens); j++ {
		if isPunct(tokens[j], "{") {
			span.Open = j
			break
		}
	}
	if span.Open < 0 {
		return span, errors.NewParseError(span.Name, "", location(keyword.Pos),
			fmt.Errorf("expected '{' to open the protocol body"))
	}

	depth := 0
	for k := span.Open; k < len(tokens); k++ {
		switch {
		case isPunct(tokens[k], "{"):
			depth++
		case isPunct(tokens[k], "}"):
			depth--
			if depth == 0 {
				span.Close = k
				return span, nil
			}
		}
	}
	return span, errors.NewParseError(span.Name, "", location(tokens[span.Open].Pos),
		fmt.Errorf("unterminated protocol body: missing '}'")).
		WithSuggestion("Every '{' in the protocol body needs a matching '}'")
}

// accessBefore returns the access modifier written in front of a keyword
func accessBefore(tokens []lexer.Token, i int) string {
	for j := i - 1; j >= 0; j-- {
		tok := tokens[j]
		if tok.Type != kinds.ident || !declarationModifiers[tok.Value] {
			break
		}
		if accessModifiers[tok.Value] {
			return tok.Value
		}
	}
	return ""
}

// readInherits reads `A, B & C, Foundation.D` up to the body or a where
// clause. Generic arguments are dropped from the names.
func readInherits(tokens []lexer.Token, j int) ([]string, int) {
	var inherits []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			inherits = append(inherits, current.String())
			current.Reset()
		}
	}

	for j < len(tokens) {
		tok := tokens[j]
		switch {
		case isPunct(tok, "{"), isIdent(tok, KeywordWhere):
			flush()
			return inherits, j
		case isPunct(tok, ","), isPunct(tok, "&"):
			flush()
		case isPunct(tok, "<"):
			j = skipAngles(tokens, j)
			continue
		default:
			current.WriteString(strings.Trim(tok.Value, "`"))
		}
		j++
	}
	flush()
	return inherits, j
}

// skipAngles returns the index after the `>` matching the `<` at j
func skipAngles(tokens []lexer.Token, j int) int {
	depth := 0
	for ; j < len(tokens); j++ {
		switch {
		case isPunct(tokens[j], "<"):
			depth++
		case isPunct(tokens[j], ">"):
			depth--
			if depth == 0 {
				return j + 1
			}
		case isPunct(tokens[j], "{"):
			return j
		}
	}
	return j
}

// splitMembers cuts a protocol body into members at the declaration
// keywords found outside nested braces, parentheses and brackets. Leading
// attributes and modifiers stay with the member they precede.
func splitMembers(tokens []lexer.Token, span protocolSpan) ([]memberSpan, error) {
	first := span.Open + 1
	body := tokens[first:span.Close]

	var members []memberSpan
	braces, nesting := 0, 0
	lower := 0
	for k, tok := range body {
		switch {
		case isPunct(tok, "{"):
			braces++
		case isPunct(tok, "}"):
			braces--
		case isPunct(tok, "("), isPunct(tok, "["):
			nesting++
		case isPunct(tok, ")"), isPunct(tok, "]"):
			if nesting > 0 {
				nesting--
			}
		case braces == 0 && nesting == 0 && tok.Type == kinds.ident && memberKeywords[tok.Value] &&
			!(k > 0 && isPunct(body[k-1], ".")):
			start := memberStart(body, k, lower)
			if len(members) == 0 {
				if err := checkLeading(body[:start], span); err != nil {
					return nil, err
				}
			} else {
				members[len(members)-1].End = first + start
			}
			members = append(members, memberSpan{
				Label: memberLabel(body, k),
				Start: first + start,
				End:   span.Close,
			})
			lower = k + 1
		}
	}

	if len(members) == 0 {
		if err := checkLeading(body, span); err != nil {
			return nil, err
		}
	}
	return members, nil
}

// checkLeading rejects tokens in a body that belong to no member
func checkLeading(tokens []lexer.Token, span protocolSpan) error {
	for _, tok := range tokens {
		if isPunct(tok, ";") {
			continue
		}
		return errors.NewParseError(span.Name, "", location(tok.Pos),
			fmt.Errorf("unexpected '%s' in protocol body", tok.Value)).
			WithSuggestion("Protocol members start with func, var, associatedtype, init, subscript or typealias")
	}
	return nil
}

// memberStart walks back from a member keyword over its modifiers and
// attributes, never past lower
func memberStart(body []lexer.Token, k, lower int) int {
	j := k - 1
	for j >= lower {
		tok := body[j]
		switch {
		case tok.Type == kinds.ident && declarationModifiers[tok.Value]:
			j--
		case tok.Type == kinds.attribute:
			j--
		case isPunct(tok, ")"):
			open := matchingOpen(body, j, lower)
			if open <= lower || body[open-1].Type != kinds.attribute {
				return j + 1
			}
			j = open - 2
		default:
			return j + 1
		}
	}
	return lower
}

// matchingOpen returns the index of the `(` closed at j, or -1
func matchingOpen(body []lexer.Token, j, lower int) int {
	depth := 0
	for ; j >= lower; j-- {
		switch {
		case isPunct(body[j], ")"):
			depth++
		case isPunct(body[j], "("):
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

func memberLabel(body []lexer.Token, k int) string {
	keyword := body[k].Value
	if keyword == KeywordInit || keyword == KeywordSubscript || k+1 >= len(body) {
		return keyword
	}
	next := body[k+1]
	if next.Type == kinds.ident {
		return keyword + " " + strings.Trim(next.Value, "`")
	}

	// operator functions: func == (lhs: Self, rhs: Self)
	var name strings.Builder
	for _, tok := range body[k+1:] {
		if tok.Type != kinds.punct || tok.Value == "(" || tok.Value == "<" {
			break
		}
		name.WriteString(tok.Value)
	}
	if name.Len() == 0 {
		return keyword
	}
	return keyword + " " + name.String()
}

// memberText slices the source text of a member span
func memberText(src string, tokens []lexer.Token, member memberSpan) string {
	start := tokens[member.Start].Pos.Offset
	end := len(src)
	if member.End < len(tokens) {
		end = tokens[member.End].Pos.Offset
	}
	if start > end || end > len(src) {
		return ""
	}
	return src[start:end]
}
