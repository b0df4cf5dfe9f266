package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// memberNode is a single protocol member, from its leading attributes to
// the end of its declaration
type memberNode struct {
	Pos lexer.Position

	Attributes []*attributeNode `parser:"@@*"`
	Modifiers  []string         `parser:"@( 'public' | 'private' | 'fileprivate' | 'internal' | 'package' | 'open' | 'static' | 'class' | 'mutating' | 'nonmutating' | 'optional' | 'required' | 'final' | 'override' | 'nonisolated' | 'dynamic' | 'convenience' | 'lazy' | 'weak' | 'unowned' | 'indirect' | 'prefix' | 'postfix' | 'infix' | 'distributed' )*"`

	Func      *funcNode      `parser:"(   @@"`
	Var       *varNode       `parser:"  | @@"`
	Assoc     *assocNode     `parser:"  | @@"`
	Unhandled *unhandledNode `parser:"  | @@ ) ';'*"`
}

// attributeNode is a declaration attribute such as @objc or
// @available(iOS 13, *)
type attributeNode struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name      string   `parser:"@Attribute"`
	Arguments []string `parser:"( '(' @( ~')' )* ')' )?"`
}

type funcNode struct {
	Name     string         `parser:"'func' ( @Ident | @( ~( '(' | '<' ) )+ )"`
	Generics *angleNode     `parser:"@@?"`
	Params   []*paramNode   `parser:"'(' ( @@ ( ',' @@ )* ','? )? ')'"`
	Effects  []*effectNode  `parser:"@@*"`
	Return   *typeNode      `parser:"( Arrow @@ )?"`
	Where    *rawClauseNode `parser:"( 'where' @@ )?"`
}

// angleNode is a balanced <...> clause kept as source text
type angleNode struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Items []*angleItem `parser:"'<' @@* '>'"`
}

type angleItem struct {
	Nested *angleNode `parser:"  @@"`
	Token  string     `parser:"| @( ~( '<' | '>' ) )"`
}

// rawClauseNode captures the remaining tokens of a member verbatim
type rawClauseNode struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Tokens []string `parser:"@( ~';' )+"`
}

type effectNode struct {
	Name  string   `parser:"@( 'async' | 'throws' | 'rethrows' | 'reasync' )"`
	Error []string `parser:"( '(' @( ~')' )* ')' )?"`
}

type paramNode struct {
	Pos lexer.Position

	Label    string       `parser:"@Ident"`
	Name     string       `parser:"@Ident?"`
	Type     *typeNode    `parser:"':' @@"`
	Variadic bool         `parser:"@Ellipsis?"`
	Default  *defaultNode `parser:"( '=' @@ )?"`
}

// defaultNode is a default argument value, kept as source text
type defaultNode struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Items []*exprItem `parser:"@@+"`
}

type exprItem struct {
	Paren   *exprGroup `parser:"  '(' @@ ')'"`
	Bracket *exprGroup `parser:"| '[' @@ ']'"`
	Brace   *exprGroup `parser:"| '{' @@ '}'"`
	Token   string     `parser:"| @( ~( ',' | '(' | ')' | '[' | ']' | '{' | '}' ) )"`
}

type exprGroup struct {
	Items []*groupItem `parser:"@@*"`
}

type groupItem struct {
	Item  *exprItem `parser:"  @@"`
	Comma bool      `parser:"| @','"`
}

// typeNode is a full type: attributes, specifiers, a composition of
// postfix types and an optional function tail
type typeNode struct {
	Attributes []string       `parser:"@Attribute*"`
	Specifiers []string       `parser:"@( 'inout' | 'some' | 'any' | 'borrowing' | 'consuming' | '__owned' | '__shared' | 'isolated' | 'sending' )*"`
	Members    []*postfixNode `parser:"@@ ( '&' @@ )*"`
	Function   *functionTail  `parser:"@@?"`
}

type functionTail struct {
	Effects []*effectNode `parser:"@@*"`
	Result  *typeNode     `parser:"Arrow @@"`
}

type postfixNode struct {
	Primary *primaryNode `parser:"@@"`
	Markers []string     `parser:"@( '?' | '!' )*"`
}

type primaryNode struct {
	Tuple      *tupleNode      `parser:"  @@"`
	Collection *collectionNode `parser:"| @@"`
	Named      *namedNode      `parser:"| @@"`
}

type tupleNode struct {
	Elements []*tupleElement `parser:"'(' ( @@ ( ',' @@ )* )? ')'"`
}

type tupleElement struct {
	Label    string    `parser:"( @Ident"`
	Inner    string    `parser:"  @Ident? ':' )?"`
	Type     *typeNode `parser:"@@"`
	Variadic bool      `parser:"@Ellipsis?"`
}

type collectionNode struct {
	Key   *typeNode `parser:"'[' @@"`
	Value *typeNode `parser:"( ':' @@ )? ']'"`
}

type namedNode struct {
	Segments []*nameSegment `parser:"@@ ( '.' @@ )*"`
}

type nameSegment struct {
	Name      string      `parser:"@Ident"`
	Arguments []*typeNode `parser:"( '<' @@ ( ',' @@ )* '>' )?"`
}

type varNode struct {
	Keyword   string          `parser:"@( 'var' | 'let' )"`
	Name      string          `parser:"@Ident"`
	Type      *typeNode       `parser:"':' @@"`
	Accessors []*accessorNode `parser:"( '{' @@* '}' )?"`
}

type accessorNode struct {
	Attributes []string      `parser:"@Attribute*"`
	Modifiers  []string      `parser:"@( 'mutating' | 'nonmutating' )*"`
	Kind       string        `parser:"@( 'get' | 'set' | '_read' | '_modify' )"`
	Effects    []*effectNode `parser:"@@*"`
}

type assocNode struct {
	Name     string         `parser:"'associatedtype' @Ident"`
	Inherits []*typeNode    `parser:"( ':' @@ ( ',' @@ )* )?"`
	Default  *typeNode      `parser:"( '=' @@ )?"`
	Where    *rawClauseNode `parser:"( 'where' @@ )?"`
}

// unhandledNode is an init, subscript or typealias requirement. These are
// recorded for diagnostics but not mocked.
type unhandledNode struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Kind   string   `parser:"@( 'init' | 'subscript' | 'typealias' )"`
	Tokens []string `parser:"@( ~';' )*"`
}

// memberParser parses one protocol member at a time
var memberParser = participle.MustBuild[memberNode](
	participle.Lexer(swiftLexer),
	participle.Elide(elidedTokens...),
	participle.UseLookahead(4),
)
