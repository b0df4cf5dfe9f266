package templates

import (
	"strconv"
	"strings"

	"github.com/toyz/swiftmock/internal/models"
)

// TemplateUtils provides common utilities for template generation
type TemplateUtils struct{}

// NewTemplateUtils creates a new template utilities instance
func NewTemplateUtils() *TemplateUtils {
	return &TemplateUtils{}
}

// MemberPrefix builds the modifiers written before a generated member
func (tu *TemplateUtils) MemberPrefix(access string, static bool) string {
	prefix := tu.AccessPrefix(access)
	if static {
		prefix += "static "
	}
	return prefix
}

// AccessPrefix renders an access level followed by a space, or nothing
func (tu *TemplateUtils) AccessPrefix(access string) string {
	if access == "" {
		return ""
	}
	return access + " "
}

// FieldDeclaration renders a stored tracking property. Fields with an
// initializer let Swift infer their type.
func (tu *TemplateUtils) FieldDeclaration(field models.Field) string {
	if field.Initial != "" {
		return "var " + field.Name + " = " + field.Initial
	}
	return "var " + field.Name + ": " + field.Type.String()
}

// TupleType renders the type of an invoked-parameters holder. Swift does not
// allow implicitly unwrapped optionals inside a tuple, so they are spelled
// as plain optionals there.
func (tu *TemplateUtils) TupleType(holder models.ParametersHolder) string {
	elements := make([]string, len(holder.Fields))
	for i, field := range holder.Fields {
		typ := field.Type
		if typ.Optionality == models.ImplicitlyUnwrapped {
			typ = typ.WithOptionality(models.Optional)
		}
		if field.Placeholder || field.Name == "" {
			elements[i] = typ.String()
		} else {
			elements[i] = field.Name + ": " + typ.String()
		}
	}
	return "(" + strings.Join(elements, ", ") + ")?"
}

// TupleValue renders the value assigned to an invoked-parameters holder
func (tu *TemplateUtils) TupleValue(holder models.ParametersHolder) string {
	elements := make([]string, len(holder.Fields))
	for i, field := range holder.Fields {
		if field.Placeholder {
			elements[i] = "()"
		} else {
			elements[i] = field.Name
		}
	}
	return "(" + strings.Join(elements, ", ") + ")"
}

// ClosureCall renders the call of a callback parameter with its stubbed
// arguments: completion(result), completion(result.0, result.1), done?()
func (tu *TemplateUtils) ClosureCall(stub models.ClosureStub) string {
	var b strings.Builder
	b.WriteString(stub.Parameter.Name)
	if stub.Parameter.Type.Optionality == models.Optional {
		b.WriteString("?")
	}
	b.WriteString("(")
	switch {
	case stub.Field == nil:
	case len(stub.Arguments) == 1:
		b.WriteString(castArgument("result", stub.Casts, 0))
	default:
		for i := range stub.Arguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(castArgument("result."+strconv.Itoa(i), stub.Casts, i))
		}
	}
	b.WriteString(")")
	return b.String()
}

// castArgument appends the cast back from Any for erased generic arguments
func castArgument(expr string, casts []string, i int) string {
	if i < len(casts) && casts[i] != "" {
		return expr + " as! " + casts[i]
	}
	return expr
}

// GenericClause renders the generic parameter clause of the mock class
func (tu *TemplateUtils) GenericClause(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "<" + strings.Join(params, ", ") + ">"
}

// CommentLine renders one line of a header comment
func (tu *TemplateUtils) CommentLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if line == "" {
		return "//"
	}
	return "// " + line
}

// DefaultTemplateUtils provides a global instance for convenience
var DefaultTemplateUtils = NewTemplateUtils()
