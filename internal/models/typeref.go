package models

import (
	"strings"
	"unicode"
)

// TypeKind identifies the structural shape of a Swift type reference
type TypeKind int

const (
	NamedType       TypeKind = iota // Int, Swift.Result<A, B>
	ArrayType                       // [T]
	DictionaryType                  // [K: V]
	TupleType                       // (a: A, B), also parenthesized types
	FunctionType                    // (A) async throws -> B
	CompositionType                 // A & B
	NestedType                      // the inner T? of T??
)

// TypeRef is a structured, otherwise opaque, Swift type reference.
// Only the outer optionality marker carries generator semantics.
type TypeRef struct {
	Kind        TypeKind
	Name        string    // NamedType: dotted identifier
	Arguments   []TypeRef // generic arguments, element types, tuple members, function parameters
	Labels      []string  // TupleType element labels, "" when unlabeled
	Result      *TypeRef  // FunctionType result
	Effects     []string  // FunctionType effects (async, throws)
	Attributes  []string  // @escaping, @Sendable, ...
	Specifiers  []string  // inout, some, any, ...
	Optionality Optionality
}

// Named creates a named type reference
func Named(name string, args ...TypeRef) TypeRef {
	return TypeRef{Kind: NamedType, Name: name, Arguments: args}
}

// String renders the type as canonical Swift source
func (t TypeRef) String() string {
	var b strings.Builder
	for _, attr := range t.Attributes {
		b.WriteString(attr)
		b.WriteString(" ")
	}
	for _, spec := range t.Specifiers {
		b.WriteString(spec)
		b.WriteString(" ")
	}
	b.WriteString(t.body())
	b.WriteString(t.Optionality.Marker())
	return b.String()
}

func (t TypeRef) body() string {
	switch t.Kind {
	case ArrayType:
		return "[" + t.arg(0).String() + "]"
	case DictionaryType:
		return "[" + t.arg(0).String() + ": " + t.arg(1).String() + "]"
	case TupleType:
		return "(" + t.tupleElements() + ")"
	case FunctionType:
		var b strings.Builder
		b.WriteString("(")
		b.WriteString(joinTypes(t.Arguments, ", "))
		b.WriteString(")")
		for _, effect := range t.Effects {
			b.WriteString(" ")
			b.WriteString(effect)
		}
		b.WriteString(" -> ")
		if t.Result != nil {
			b.WriteString(t.Result.String())
		} else {
			b.WriteString("Void")
		}
		return b.String()
	case CompositionType:
		return joinTypes(t.Arguments, " & ")
	case NestedType:
		return t.arg(0).String()
	default:
		if len(t.Arguments) == 0 {
			return t.Name
		}
		return t.Name + "<" + joinTypes(t.Arguments, ", ") + ">"
	}
}

func (t TypeRef) tupleElements() string {
	parts := make([]string, len(t.Arguments))
	for i, elem := range t.Arguments {
		if i < len(t.Labels) && t.Labels[i] != "" {
			parts[i] = t.Labels[i] + ": " + elem.String()
		} else {
			parts[i] = elem.String()
		}
	}
	return strings.Join(parts, ", ")
}

func (t TypeRef) arg(i int) TypeRef {
	if i < len(t.Arguments) {
		return t.Arguments[i]
	}
	return Named("_")
}

func joinTypes(types []TypeRef, sep string) string {
	parts := make([]string, len(types))
	for i, typ := range types {
		parts[i] = typ.String()
	}
	return strings.Join(parts, sep)
}

// Base returns the type without its outer optionality marker
func (t TypeRef) Base() TypeRef {
	t.Optionality = Required
	return t
}

// WithOptionality returns a copy carrying the given outer optionality
func (t TypeRef) WithOptionality(o Optionality) TypeRef {
	t.Optionality = o
	return t
}

// Mentions reports whether t refers to one of names anywhere, including
// member types such as T.Element
func (t TypeRef) Mentions(names map[string]bool) bool {
	if t.Kind == NamedType {
		head, _, _ := strings.Cut(t.Name, ".")
		if names[head] {
			return true
		}
	}
	for _, arg := range t.Arguments {
		if arg.Mentions(names) {
			return true
		}
	}
	return t.Result != nil && t.Result.Mentions(names)
}

func (t TypeRef) isParenthesized() bool {
	return t.Kind == TupleType && len(t.Arguments) == 1 && (len(t.Labels) == 0 || t.Labels[0] == "")
}

// Closure returns the function type behind parentheses and optionality, if any
func (t TypeRef) Closure() (TypeRef, bool) {
	inner := t
	for {
		if inner.Kind == FunctionType {
			return inner, true
		}
		if inner.isParenthesized() || inner.Kind == NestedType {
			inner = inner.Arguments[0]
			continue
		}
		return TypeRef{}, false
	}
}

// IsClosure reports whether the type is a (possibly optional) function type
func (t TypeRef) IsClosure() bool {
	_, ok := t.Closure()
	return ok
}

// IsVoid reports whether the type is Void or ()
func (t TypeRef) IsVoid() bool {
	if t.Optionality != Required {
		return false
	}
	switch t.Kind {
	case NamedType:
		return (t.Name == "Void" || t.Name == "Swift.Void") && len(t.Arguments) == 0
	case TupleType:
		return len(t.Arguments) == 0
	}
	return false
}

// NeedsParentheses reports whether an optionality marker would bind to
// the wrong part of the rendered type: A & B?, () -> Void!, any P?
func (t TypeRef) NeedsParentheses() bool {
	if len(t.Attributes) > 0 || len(t.Specifiers) > 0 {
		return true
	}
	return t.Kind == FunctionType || t.Kind == CompositionType
}

// Optionalized wraps the type in the given optionality, parenthesizing it
// where Swift requires and nesting already optional types (Int? -> Int?!)
func (t TypeRef) Optionalized(o Optionality) TypeRef {
	switch {
	case o == Required:
		return t
	case t.NeedsParentheses():
		t = TypeRef{Kind: TupleType, Arguments: []TypeRef{t}}
	case t.Optionality != Required:
		t = TypeRef{Kind: NestedType, Arguments: []TypeRef{t}}
	}
	t.Optionality = o
	return t
}

var storageStrippedSpecifiers = map[string]bool{
	"inout":       true,
	"borrowing":   true,
	"consuming":   true,
	"__owned":     true,
	"__shared":    true,
	"isolated":    true,
	"sending":     true,
	"nonisolated": true,
}

// StorageType returns the type as it may appear in a stored property or
// tuple: parameter specifiers and type attributes are dropped and opaque
// `some` types become existential `any` types.
func (t TypeRef) StorageType() TypeRef {
	t.Attributes = nil
	specs := make([]string, 0, len(t.Specifiers))
	for _, spec := range t.Specifiers {
		switch {
		case storageStrippedSpecifiers[spec]:
		case spec == "some":
			specs = append(specs, "any")
		default:
			specs = append(specs, spec)
		}
	}
	t.Specifiers = specs
	if len(t.Specifiers) == 0 {
		t.Specifiers = nil
	}
	return t
}

// Discriminator derives an identifier fragment from the type's structure,
// used to tell overloads apart: Int? -> IntOptional, [String: Int] -> StringIntDictionary
func (t TypeRef) Discriminator() string {
	var b strings.Builder
	for _, spec := range t.Specifiers {
		if spec == "inout" {
			b.WriteString("Inout")
		}
	}
	switch t.Kind {
	case ArrayType:
		b.WriteString(t.arg(0).Discriminator())
		b.WriteString("Array")
	case DictionaryType:
		b.WriteString(t.arg(0).Discriminator())
		b.WriteString(t.arg(1).Discriminator())
		b.WriteString("Dictionary")
	case TupleType:
		switch {
		case len(t.Arguments) == 0:
			b.WriteString("Void")
		case t.isParenthesized():
			b.WriteString(t.Arguments[0].Discriminator())
		default:
			for _, elem := range t.Arguments {
				b.WriteString(elem.Discriminator())
			}
			b.WriteString("Tuple")
		}
	case FunctionType:
		for _, param := range t.Arguments {
			b.WriteString(param.Discriminator())
		}
		b.WriteString("To")
		if t.Result != nil {
			b.WriteString(t.Result.Discriminator())
		} else {
			b.WriteString("Void")
		}
		b.WriteString("Closure")
	case CompositionType, NestedType:
		for _, member := range t.Arguments {
			b.WriteString(member.Discriminator())
		}
	default:
		b.WriteString(Identifier(t.Name))
		for _, arg := range t.Arguments {
			b.WriteString(arg.Discriminator())
		}
	}
	switch t.Optionality {
	case Optional:
		b.WriteString("Optional")
	case ImplicitlyUnwrapped:
		b.WriteString("Unwrapped")
	}
	return b.String()
}

// Identifier turns arbitrary Swift text into a capitalized identifier
// fragment: "`default`" -> "Default", "Swift.Int" -> "SwiftInt"
func Identifier(text string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Capitalize upper-cases the first letter of a name, stripping backticks
func Capitalize(name string) string {
	name = strings.Trim(name, "`")
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
