package parser

import (
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/swiftmock/internal/errors"
	"github.com/toyz/swiftmock/internal/models"
)

// converter turns grammar nodes of one member into model values. Node
// positions are relative to the member text; base anchors them in the file.
type converter struct {
	protocol string
	base     lexer.Position
	text     string
}

func (c *converter) location(rel lexer.Position) errors.SourceLocation {
	loc := errors.SourceLocation{File: c.base.Filename, Line: c.base.Line + rel.Line - 1, Column: rel.Column}
	if rel.Line <= 1 {
		loc.Column = c.base.Column + rel.Column - 1
	}
	return loc
}

// span returns the member source between two node positions
func (c *converter) span(pos, end lexer.Position) string {
	start, stop := pos.Offset, end.Offset
	if stop <= start || stop > len(c.text) {
		stop = len(c.text)
	}
	if start < 0 || start > stop {
		return ""
	}
	return strings.TrimSpace(c.text[start:stop])
}

// apply adds the member to the protocol under construction
func (c *converter) apply(proto *models.Protocol, node *memberNode) error {
	loc := c.location(node.Pos)
	switch {
	case node.Func != nil:
		method, err := c.method(node, loc)
		if err != nil {
			return err
		}
		proto.Methods = append(proto.Methods, method)

	case node.Var != nil:
		proto.Properties = append(proto.Properties, c.property(node, loc))

	case node.Assoc != nil:
		constraints := make([]string, 0, len(node.Assoc.Inherits))
		for _, inherited := range node.Assoc.Inherits {
			constraints = append(constraints, c.typeRef(inherited).String())
		}
		proto.AssociatedTypes = append(proto.AssociatedTypes, models.AssociatedType{
			Name:       strings.Trim(node.Assoc.Name, "`"),
			Constraint: strings.Join(constraints, " & "),
		})

	case node.Unhandled != nil:
		proto.Unsupported = append(proto.Unsupported, models.UnsupportedMember{
			Kind:     node.Unhandled.Kind,
			Text:     c.span(node.Unhandled.Pos, node.Unhandled.EndPos),
			Location: loc,
		})
	}
	return nil
}

func (c *converter) method(node *memberNode, loc errors.SourceLocation) (*models.Method, error) {
	fn := node.Func

	params := make([]models.Parameter, 0, len(fn.Params))
	named := make(map[string]bool, len(fn.Params))
	for _, pn := range fn.Params {
		param := models.NewParameter(pn.Label, pn.Name, c.typeRef(pn.Type))
		if param.Name != "_" {
			named[param.Name] = true
		}
		param.Variadic = pn.Variadic
		if pn.Default != nil {
			param.DefaultValue = c.span(pn.Default.Pos, pn.Default.EndPos)
		}
		params = append(params, param)
	}
	for i := range params {
		if params[i].Name == "_" {
			params[i].Name = positionalName(i, named)
			named[params[i].Name] = true
		}
	}

	var ret *models.TypeRef
	if fn.Return != nil {
		typ := c.typeRef(fn.Return)
		ret = &typ
	}

	var generics, where string
	if fn.Generics != nil {
		generics = c.span(fn.Generics.Pos, fn.Generics.EndPos)
	}
	if fn.Where != nil {
		where = KeywordWhere + " " + c.span(fn.Where.Pos, fn.Where.EndPos)
	}

	method, err := models.NewMethod(fn.Name, params, ret,
		models.WithGenerics(generics, where),
		models.WithEffects(effects(fn.Effects)...),
		models.WithModifiers(node.Modifiers...),
		models.WithAttributes(c.attributes(node.Attributes)...),
		models.WithLocation(loc),
	)
	if err != nil {
		var invalid *errors.InvalidSignatureError
		if goerrors.As(err, &invalid) {
			return nil, invalid.WithProtocol(c.protocol)
		}
		return nil, err
	}
	return method, nil
}

// positionalName names the unnamed parameter at index i arg<N>, or
// arg<N>_<k> when a named parameter already uses that
func positionalName(i int, taken map[string]bool) string {
	name := fmt.Sprintf("%s%d", PositionalNamePrefix, i+1)
	for k := 2; taken[name]; k++ {
		name = fmt.Sprintf("%s%d_%d", PositionalNamePrefix, i+1, k)
	}
	return name
}

func (c *converter) property(node *memberNode, loc errors.SourceLocation) models.Property {
	v := node.Var
	settable := v.Keyword == KeywordVar && len(v.Accessors) == 0
	for _, accessor := range v.Accessors {
		if accessor.Kind == "set" || accessor.Kind == "_modify" {
			settable = true
		}
	}
	return models.Property{
		Name:     v.Name,
		Type:     c.typeRef(v.Type),
		Settable: settable,
		Static:   hasAny(node.Modifiers, "static", "class"),
		Location: loc,
	}
}

func (c *converter) attributes(nodes []*attributeNode) []string {
	attrs := make([]string, 0, len(nodes))
	for _, attr := range nodes {
		text := c.span(attr.Pos, attr.EndPos)
		if text == "" {
			text = attr.Name
		}
		attrs = append(attrs, text)
	}
	return attrs
}

func effects(nodes []*effectNode) []string {
	out := make([]string, 0, len(nodes))
	for _, effect := range nodes {
		if len(effect.Error) > 0 {
			out = append(out, effect.Name+"("+strings.Join(effect.Error, "")+")")
			continue
		}
		out = append(out, effect.Name)
	}
	return out
}

func hasAny(values []string, wanted ...string) bool {
	for _, value := range values {
		for _, w := range wanted {
			if value == w {
				return true
			}
		}
	}
	return false
}

// typeRef converts a type node into a structured type reference
func (c *converter) typeRef(node *typeNode) models.TypeRef {
	var typ models.TypeRef
	if len(node.Members) == 1 {
		typ = c.postfix(node.Members[0])
	} else {
		typ = models.TypeRef{Kind: models.CompositionType}
		for _, member := range node.Members {
			typ.Arguments = append(typ.Arguments, c.postfix(member))
		}
	}

	if node.Function != nil {
		fn := models.TypeRef{
			Kind:      models.FunctionType,
			Arguments: functionArguments(typ),
			Effects:   effects(node.Function.Effects),
		}
		result := c.typeRef(node.Function.Result)
		fn.Result = &result
		typ = fn
	}

	typ.Attributes = node.Attributes
	typ.Specifiers = node.Specifiers
	return typ
}

// functionArguments unpacks the parameter list of a function type:
// (Int, String) -> Void takes two arguments, () -> Void none
func functionArguments(params models.TypeRef) []models.TypeRef {
	if params.Kind != models.TupleType || params.Optionality != models.Required {
		return []models.TypeRef{params}
	}
	return params.Arguments
}

func (c *converter) postfix(node *postfixNode) models.TypeRef {
	typ := c.primary(node.Primary)
	for _, marker := range node.Markers {
		if typ.Optionality != models.Required {
			typ = models.TypeRef{Kind: models.NestedType, Arguments: []models.TypeRef{typ}}
		}
		typ.Optionality = models.OptionalityFromMarker(marker)
	}
	return typ
}

func (c *converter) primary(node *primaryNode) models.TypeRef {
	switch {
	case node.Tuple != nil:
		typ := models.TypeRef{Kind: models.TupleType}
		labeled := false
		for _, elem := range node.Tuple.Elements {
			elemType := c.typeRef(elem.Type)
			if elem.Variadic {
				elemType = models.TypeRef{Kind: models.ArrayType, Arguments: []models.TypeRef{elemType}}
			}
			label := elem.Label
			if elem.Inner != "" && label == "_" {
				label = ""
			}
			labeled = labeled || label != ""
			typ.Arguments = append(typ.Arguments, elemType)
			typ.Labels = append(typ.Labels, label)
		}
		if !labeled {
			typ.Labels = nil
		}
		return typ

	case node.Collection != nil:
		key := c.typeRef(node.Collection.Key)
		if node.Collection.Value == nil {
			return models.TypeRef{Kind: models.ArrayType, Arguments: []models.TypeRef{key}}
		}
		return models.TypeRef{Kind: models.DictionaryType, Arguments: []models.TypeRef{key, c.typeRef(node.Collection.Value)}}

	default:
		return c.named(node.Named)
	}
}

// named joins a dotted path; generic arguments of the last segment become
// the type's arguments, inner ones stay in the name
func (c *converter) named(node *namedNode) models.TypeRef {
	var name strings.Builder
	var args []models.TypeRef
	for i, segment := range node.Segments {
		if i > 0 {
			name.WriteString(".")
		}
		name.WriteString(segment.Name)
		segmentArgs := make([]models.TypeRef, 0, len(segment.Arguments))
		for _, arg := range segment.Arguments {
			segmentArgs = append(segmentArgs, c.typeRef(arg))
		}
		if i == len(node.Segments)-1 {
			args = segmentArgs
		} else if len(segmentArgs) > 0 {
			name.WriteString("<")
			for j, arg := range segmentArgs {
				if j > 0 {
					name.WriteString(", ")
				}
				name.WriteString(arg.String())
			}
			name.WriteString(">")
		}
	}
	if len(args) == 0 {
		args = nil
	}
	return models.Named(name.String(), args...)
}
