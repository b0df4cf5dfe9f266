package models

import "github.com/toyz/swiftmock/internal/errors"

// MockArtifact is the synthesized mock class for one protocol, ready to render
type MockArtifact struct {
	ClassName         string
	ProtocolName      string
	Conformances      []string
	GenericParameters []string
	Access            string // "public" or empty
	Properties        []PropertyMock
	Methods           []MethodMock
	Location          errors.SourceLocation
}

// Field is a stored tracking property of the mock
type Field struct {
	Name    string
	Type    TypeRef
	Initial string // literal initializer, empty when the field starts as nil
}

// TupleField is one element of an invoked-parameters tuple
type TupleField struct {
	Name        string  // internal parameter name, empty for the placeholder
	Type        TypeRef // recorded type, optionality preserved
	Placeholder bool    // trailing Void element of single-parameter tuples
}

// ParametersHolder is the invoked-parameters tuple of a method
type ParametersHolder struct {
	Name   string
	Fields []TupleField
}

// IsEmpty reports whether the method records no parameters
func (h ParametersHolder) IsEmpty() bool {
	return len(h.Fields) == 0
}

// ParameterFields returns the fields backed by real parameters
func (h ParametersHolder) ParameterFields() []TupleField {
	fields := make([]TupleField, 0, len(h.Fields))
	for _, field := range h.Fields {
		if !field.Placeholder {
			fields = append(fields, field)
		}
	}
	return fields
}

// ClosureStub supplies arguments for a callback parameter
type ClosureStub struct {
	Parameter Parameter
	Field     *Field    // nil when the closure takes no arguments
	Arguments []TypeRef // closure argument types
	Casts     []string  // per argument, the type a stored Any is cast back to, or ""
}

// MethodMock is the member group generated for one protocol method
type MethodMock struct {
	Method        *Method
	UniqueName    string
	Static        bool
	Invoked       Field
	Parameters    ParametersHolder
	Closures      []ClosureStub
	StubbedResult *Field // nil when the method returns Void
	ResultCast    string // return type the stored result is cast to, or ""
}

// TrackingFields returns the invoked flag, the parameters holder and,
// for non-Void methods, the stubbed result, in that order
func (m MethodMock) TrackingFields() []string {
	names := []string{m.Invoked.Name, m.Parameters.Name}
	if m.StubbedResult != nil {
		names = append(names, m.StubbedResult.Name)
	}
	return names
}

// PropertyMock is the member group generated for one protocol property
type PropertyMock struct {
	Property Property
	Static   bool
	Invoked  *Field // nil for get-only properties
	Stubbed  Field
}
