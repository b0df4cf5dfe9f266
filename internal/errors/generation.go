package errors

import (
	goerrors "errors"
	"fmt"
	"strings"
)

// ParseError reports source text that does not decompose into a protocol
// or member declaration
type ParseError struct {
	*BaseError
	Protocol string // protocol being parsed, empty when the header itself failed
	Member   string // member being parsed, empty for header failures
}

// NewParseError creates a parse error for a protocol member
func NewParseError(protocol, member string, loc SourceLocation, cause error) *ParseError {
	message := "failed to parse declaration"
	switch {
	case protocol != "" && member != "":
		message = fmt.Sprintf("failed to parse '%s' in protocol '%s'", member, protocol)
	case protocol != "":
		message = fmt.Sprintf("failed to parse protocol '%s'", protocol)
	}

	base := Wrap(ParseErrorCode, message, cause).
		WithLocation(loc).
		WithSuggestion("Check that parentheses, brackets and braces are balanced")
	if protocol != "" {
		base.WithContext("protocol", protocol)
	}
	if member != "" {
		base.WithContext("member", member)
	}

	return &ParseError{
		BaseError: base,
		Protocol:  protocol,
		Member:    member,
	}
}

// WithSuggestion adds a helpful suggestion
func (e *ParseError) WithSuggestion(suggestion string) *ParseError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// InvalidSignatureError reports a declaration that parsed but is semantically
// inconsistent, such as two parameters sharing a name
type InvalidSignatureError struct {
	*BaseError
	Protocol string
	Member   string
	Reason   string
}

// NewInvalidSignatureError creates an invalid signature error
func NewInvalidSignatureError(protocol, member, reason string) *InvalidSignatureError {
	message := fmt.Sprintf("invalid signature for '%s': %s", member, reason)
	if protocol != "" {
		message = fmt.Sprintf("invalid signature for '%s' in protocol '%s': %s", member, protocol, reason)
	}

	base := New(InvalidSignatureErrorCode, message).
		WithContext("member", member).
		WithContext("reason", reason)
	if protocol != "" {
		base.WithContext("protocol", protocol)
	}

	return &InvalidSignatureError{
		BaseError: base,
		Protocol:  protocol,
		Member:    member,
		Reason:    reason,
	}
}

// WithProtocol attributes the error to a protocol once it is known
func (e *InvalidSignatureError) WithProtocol(protocol string) *InvalidSignatureError {
	if e.Protocol == "" && protocol != "" {
		e.Protocol = protocol
		e.BaseError.Message = fmt.Sprintf("invalid signature for '%s' in protocol '%s': %s", e.Member, protocol, e.Reason)
		e.BaseError.WithContext("protocol", protocol)
	}
	return e
}

// WithLocation adds location information to the error
func (e *InvalidSignatureError) WithLocation(loc SourceLocation) *InvalidSignatureError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *InvalidSignatureError) WithSuggestion(suggestion string) *InvalidSignatureError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// NamingCollisionError reports two generated members that ended up with the
// same name inside one mock class
type NamingCollisionError struct {
	*BaseError
	Protocol string
	Field    string
	Owners   []string
}

// NewNamingCollisionError creates a naming collision error
func NewNamingCollisionError(protocol, field string, owners ...string) *NamingCollisionError {
	message := fmt.Sprintf("generated member '%s' is produced by more than one declaration (%s)",
		field, strings.Join(owners, ", "))
	if protocol != "" {
		message = fmt.Sprintf("mock for protocol '%s': %s", protocol, message)
	}

	base := New(NamingCollisionErrorCode, message).
		WithContext("protocol", protocol).
		WithContext("field", field).
		WithContext("owners", owners).
		WithSuggestions(
			"Rename one of the conflicting members in the protocol",
			"Properties and methods with the same name share the invoked<Name> prefix",
		)

	return &NamingCollisionError{
		BaseError: base,
		Protocol:  protocol,
		Field:     field,
		Owners:    owners,
	}
}

// WithLocation adds location information to the error
func (e *NamingCollisionError) WithLocation(loc SourceLocation) *NamingCollisionError {
	e.BaseError.WithLocation(loc)
	return e
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return goerrors.As(err, target)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// AsMockError finds the first MockError in an error chain
func AsMockError(err error) (MockError, bool) {
	var mockErr MockError
	if goerrors.As(err, &mockErr) {
		return mockErr, true
	}
	return nil, false
}

// CodeOf returns the error code of the first MockError in the chain
func CodeOf(err error) ErrorCode {
	if mockErr, ok := AsMockError(err); ok {
		return mockErr.ErrorCode()
	}
	return UnknownErrorCode
}

// IsRecoverable reports whether a failure only affects the unit that produced it
func IsRecoverable(err error) bool {
	switch CodeOf(err) {
	case ParseErrorCode, InvalidSignatureErrorCode, NamingCollisionErrorCode:
		return true
	default:
		return false
	}
}
