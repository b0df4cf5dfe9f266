package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// swiftLexer tokenizes the subset of Swift that appears in protocol
// declarations. Rules are tried in order.
var swiftLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "BlockComment", Pattern: `/\*(?s:.)*?\*/`},
	{Name: "Directive", Pattern: `#[a-zA-Z]+[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\\n])*"`},
	{Name: "Number", Pattern: `[0-9][0-9a-fA-FxXoObB_]*(\.[0-9][0-9_]*)?`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Ellipsis", Pattern: `\.\.\.`},
	{Name: "Attribute", Pattern: `@[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Ident", Pattern: "`[^`\\n]+`|[\\p{L}_][\\p{L}\\p{N}_]*"},
	{Name: "Punct", Pattern: `[^\s\p{L}\p{N}_]`},
})

// elidedTokens never carry meaning for the generator
var elidedTokens = []string{"Whitespace", "Comment", "BlockComment", "Directive"}

// tokenKinds caches the token type of every lexer rule
type tokenKinds struct {
	ident     lexer.TokenType
	attribute lexer.TokenType
	punct     lexer.TokenType
	elided    map[lexer.TokenType]bool
}

func newTokenKinds() tokenKinds {
	symbols := swiftLexer.Symbols()
	kinds := tokenKinds{
		ident:     symbols["Ident"],
		attribute: symbols["Attribute"],
		punct:     symbols["Punct"],
		elided:    make(map[lexer.TokenType]bool, len(elidedTokens)),
	}
	for _, name := range elidedTokens {
		kinds.elided[symbols[name]] = true
	}
	return kinds
}

var kinds = newTokenKinds()

// tokenize lexes source text and drops whitespace, comments and compiler
// directives
func tokenize(filename, src string) ([]lexer.Token, error) {
	lex, err := swiftLexer.Lex(filename, strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	all, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}

	tokens := make([]lexer.Token, 0, len(all))
	for _, tok := range all {
		if tok.EOF() || kinds.elided[tok.Type] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func isIdent(tok lexer.Token, value string) bool {
	return tok.Type == kinds.ident && tok.Value == value
}

func isPunct(tok lexer.Token, value string) bool {
	return tok.Type == kinds.punct && tok.Value == value
}
