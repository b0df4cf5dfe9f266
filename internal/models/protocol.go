package models

import (
	"fmt"
	"strings"

	"github.com/toyz/swiftmock/internal/errors"
)

// Protocol is a parsed Swift protocol declaration. It is immutable once
// the parser hands it out.
type Protocol struct {
	Name            string
	Access          string   // "public", "open", ... or empty
	Inherits        []string // inherited protocols in declaration order
	AssociatedTypes []AssociatedType
	Properties      []Property
	Methods         []*Method
	Unsupported     []UnsupportedMember
	Location        errors.SourceLocation
}

// NewProtocol creates a protocol declaration
func NewProtocol(name string, loc errors.SourceLocation) (*Protocol, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewInvalidSignatureError("", "protocol", "protocol name is empty").WithLocation(loc)
	}
	return &Protocol{Name: name, Location: loc}, nil
}

// AssociatedType is an `associatedtype` requirement
type AssociatedType struct {
	Name       string
	Constraint string // rendered inheritance clause, e.g. "Equatable"
}

// Property is a `var` requirement
type Property struct {
	Name     string
	Type     TypeRef
	Settable bool
	Static   bool
	Location errors.SourceLocation
}

// Signature renders the property requirement as written
func (p Property) Signature() string {
	accessors := "{ get }"
	if p.Settable {
		accessors = "{ get set }"
	}
	prefix := ""
	if p.Static {
		prefix = "static "
	}
	return fmt.Sprintf("%svar %s: %s %s", prefix, p.Name, p.Type.String(), accessors)
}

// UnsupportedMember records a requirement the generator parses but does
// not mock (init, subscript, typealias)
type UnsupportedMember struct {
	Kind     string
	Text     string
	Location errors.SourceLocation
}

// Parameter is one parameter of a method declaration
type Parameter struct {
	Label        string // external label as written, "_" for none
	Name         string // internal name, used as the tuple field name
	Type         TypeRef
	Variadic     bool
	DefaultValue string
}

// NewParameter creates a parameter. When only one name is written Swift
// uses it as both label and internal name.
func NewParameter(label, name string, typ TypeRef) Parameter {
	if name == "" {
		name = label
	}
	return Parameter{Label: label, Name: name, Type: typ}
}

// Optionality returns the optionality kind of the parameter type
func (p Parameter) Optionality() Optionality {
	return p.Type.Optionality
}

// IsClosure reports whether the parameter is a callback
func (p Parameter) IsClosure() bool {
	return p.Type.IsClosure()
}

// ExternalName returns the name callers see, falling back to the internal
// name for `_` labels
func (p Parameter) ExternalName() string {
	if p.Label == "" || p.Label == "_" {
		return p.Name
	}
	return p.Label
}

// Declaration renders the parameter for an override signature
func (p Parameter) Declaration() string {
	var b strings.Builder
	b.WriteString(p.Label)
	if p.Name != p.Label {
		b.WriteString(" ")
		b.WriteString(p.Name)
	}
	b.WriteString(": ")
	b.WriteString(p.Type.String())
	if p.Variadic {
		b.WriteString("...")
	}
	return b.String()
}

// RecordedType returns the type stored in the invoked-parameters tuple
func (p Parameter) RecordedType() TypeRef {
	typ := p.Type.StorageType()
	if p.Variadic {
		return TypeRef{Kind: ArrayType, Arguments: []TypeRef{typ}}
	}
	return typ
}

// Method is a `func` requirement
type Method struct {
	Name          string
	Parameters    []Parameter
	Return        *TypeRef // nil for Void
	GenericClause string   // rendered "<T: Equatable>", tolerated
	WhereClause   string   // rendered "where T: Hashable", tolerated
	Effects       []string // async, throws, rethrows
	Modifiers     []string // static, mutating, optional, ...
	Attributes    []string // @objc, @discardableResult, ...
	Location      errors.SourceLocation
}

// MethodOption configures a method under construction
type MethodOption func(*Method)

// WithGenerics sets the tolerated generic and where clauses
func WithGenerics(genericClause, whereClause string) MethodOption {
	return func(m *Method) {
		m.GenericClause = genericClause
		m.WhereClause = whereClause
	}
}

// WithEffects sets async/throws/rethrows
func WithEffects(effects ...string) MethodOption {
	return func(m *Method) {
		m.Effects = effects
	}
}

// WithModifiers sets declaration modifiers
func WithModifiers(modifiers ...string) MethodOption {
	return func(m *Method) {
		m.Modifiers = modifiers
	}
}

// WithAttributes sets declaration attributes
func WithAttributes(attributes ...string) MethodOption {
	return func(m *Method) {
		m.Attributes = attributes
	}
}

// WithLocation sets the source location
func WithLocation(loc errors.SourceLocation) MethodOption {
	return func(m *Method) {
		m.Location = loc
	}
}

// NewMethod creates a method declaration, rejecting signatures whose
// parameters cannot be named uniquely in the invoked-parameters tuple
func NewMethod(name string, params []Parameter, ret *TypeRef, opts ...MethodOption) (*Method, error) {
	m := &Method{
		Name:       name,
		Parameters: params,
		Return:     ret,
	}
	for _, opt := range opts {
		opt(m)
	}

	if strings.TrimSpace(name) == "" {
		return nil, errors.NewInvalidSignatureError("", "func", "method name is empty").WithLocation(m.Location)
	}

	seen := make(map[string]bool, len(params))
	for _, param := range params {
		if param.Name == "" {
			return nil, errors.NewInvalidSignatureError("", m.Signature(),
				"every parameter needs a name to be recorded").
				WithLocation(m.Location)
		}
		key := strings.Trim(param.Name, "`")
		if seen[key] {
			return nil, errors.NewInvalidSignatureError("", m.Signature(),
				fmt.Sprintf("duplicate parameter name '%s'", param.Name)).
				WithLocation(m.Location).
				WithSuggestion("Give every parameter a distinct internal name")
		}
		seen[key] = true
	}

	return m, nil
}

// IsVoid reports whether the method returns nothing
func (m *Method) IsVoid() bool {
	return m.Return == nil || m.Return.IsVoid()
}

// IsStatic reports whether the method is a type-level requirement
func (m *Method) IsStatic() bool {
	return m.HasModifier("static") || m.HasModifier("class")
}

// HasModifier reports whether the declaration carries a modifier
func (m *Method) HasModifier(modifier string) bool {
	for _, mod := range m.Modifiers {
		if mod == modifier {
			return true
		}
	}
	return false
}

// GenericNames returns the type parameters declared by the method's own
// generic clause, e.g. T and U for <T: Equatable, each U>
func (m *Method) GenericNames() map[string]bool {
	clause := strings.TrimSpace(m.GenericClause)
	clause = strings.TrimSuffix(strings.TrimPrefix(clause, "<"), ">")
	if clause == "" {
		return nil
	}

	names := make(map[string]bool)
	depth, start := 0, 0
	add := func(item string) {
		item, _, _ = strings.Cut(item, ":")
		item = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(item), "each "))
		if item != "" {
			names[item] = true
		}
	}
	for i, r := range clause {
		switch r {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case ',':
			if depth == 0 {
				add(clause[start:i])
				start = i + 1
			}
		}
	}
	add(clause[start:])
	return names
}

// Selector returns the Swift selector-style identity, e.g. fetch(id:completion:)
func (m *Method) Selector() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteString("(")
	for _, param := range m.Parameters {
		b.WriteString(param.Label)
		b.WriteString(":")
	}
	b.WriteString(")")
	return b.String()
}

// Signature renders the full declaration, used for identity and messages
func (m *Method) Signature() string {
	var b strings.Builder
	if m.IsStatic() {
		b.WriteString("static ")
	}
	b.WriteString("func ")
	b.WriteString(m.Name)
	b.WriteString(m.GenericClause)
	b.WriteString("(")
	for i, param := range m.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(param.Declaration())
	}
	b.WriteString(")")
	for _, effect := range m.Effects {
		b.WriteString(" ")
		b.WriteString(effect)
	}
	if m.Return != nil {
		b.WriteString(" -> ")
		b.WriteString(m.Return.String())
	}
	if m.WhereClause != "" {
		b.WriteString(" ")
		b.WriteString(m.WhereClause)
	}
	return b.String()
}

// RecordedParameters returns the parameters stored in the invoked-parameters
// tuple; callbacks are invoked rather than recorded
func (m *Method) RecordedParameters() []Parameter {
	recorded := make([]Parameter, 0, len(m.Parameters))
	for _, param := range m.Parameters {
		if !param.IsClosure() {
			recorded = append(recorded, param)
		}
	}
	return recorded
}

// ClosureParameters returns the callback parameters
func (m *Method) ClosureParameters() []Parameter {
	var closures []Parameter
	for _, param := range m.Parameters {
		if param.IsClosure() {
			closures = append(closures, param)
		}
	}
	return closures
}
