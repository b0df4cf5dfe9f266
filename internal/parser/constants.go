package parser

const (
	// KeywordProtocol opens a protocol declaration
	KeywordProtocol = "protocol"

	// Member keywords inside a protocol body
	KeywordFunc           = "func"
	KeywordVar            = "var"
	KeywordLet            = "let"
	KeywordAssociatedType = "associatedtype"
	KeywordInit           = "init"
	KeywordSubscript      = "subscript"
	KeywordTypealias      = "typealias"

	// KeywordWhere opens a generic where clause
	KeywordWhere = "where"

	// PositionalNamePrefix names parameters whose internal name is `_`
	PositionalNamePrefix = "arg"
)

// memberKeywords start a new member of a protocol body
var memberKeywords = map[string]bool{
	KeywordFunc:           true,
	KeywordVar:            true,
	KeywordLet:            true,
	KeywordAssociatedType: true,
	KeywordInit:           true,
	KeywordSubscript:      true,
	KeywordTypealias:      true,
}

// declarationModifiers may precede a member or protocol keyword
var declarationModifiers = map[string]bool{
	"public":      true,
	"private":     true,
	"fileprivate": true,
	"internal":    true,
	"package":     true,
	"open":        true,
	"static":      true,
	"class":       true,
	"mutating":    true,
	"nonmutating": true,
	"optional":    true,
	"required":    true,
	"final":       true,
	"override":    true,
	"nonisolated": true,
	"dynamic":     true,
	"convenience": true,
	"lazy":        true,
	"weak":        true,
	"unowned":     true,
	"indirect":    true,
	"prefix":      true,
	"postfix":     true,
	"infix":       true,
	"distributed": true,
}

// accessModifiers are the declaration modifiers that set visibility
var accessModifiers = map[string]bool{
	"public":      true,
	"private":     true,
	"fileprivate": true,
	"internal":    true,
	"package":     true,
	"open":        true,
}
