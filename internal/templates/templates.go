package templates

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/toyz/swiftmock/internal/errors"
	"github.com/toyz/swiftmock/internal/models"
)

// EmptyParameters selects how methods without recorded parameters render
// their invoked-parameters holder
type EmptyParameters string

const (
	// EmptyParametersRecord renders `var invokedXParameters: ()?` and assigns `()`
	EmptyParametersRecord EmptyParameters = "record"
	// EmptyParametersOmit leaves the holder out of the generated class
	EmptyParametersOmit EmptyParameters = "omit"
)

// Options controls rendering choices that are fixed for a whole run
type Options struct {
	EmptyParameters EmptyParameters
	Header          []string // comment lines written above the class
}

// MockData is the view of a mock class handed to the mock template
type MockData struct {
	Header       []string
	Access       string
	ClassName    string
	Generics     string
	Conformances string
	Properties   []PropertyData
	Methods      []MethodData
}

// PropertyData is the view of a property mock
type PropertyData struct {
	Prefix      string
	Name        string
	Type        string
	Settable    bool
	Invoked     string
	InvokedType string
	Stubbed     string
	StubbedType string
}

// MethodData is the view of a method mock
type MethodData struct {
	Prefix           string
	Access           string
	Fields           []string
	Signature        string
	Invoked          string
	RecordParameters bool
	Parameters       string
	ParametersValue  string
	Closures         []ClosureCallData
	Result           string
}

// ClosureCallData is the view of one callback invocation
type ClosureCallData struct {
	Holder string // empty when the closure is called without arguments
	Call   string
}

// Renderer serializes mock artifacts into Swift source. Output depends only
// on the artifact and the options; a renderer is safe for concurrent use.
type Renderer struct {
	options Options
	tmpl    *template.Template
	utils   *TemplateUtils
}

// NewRenderer parses the mock templates of the default registry
func NewRenderer(options Options) (*Renderer, error) {
	return NewRendererWithRegistry(options, DefaultTemplateRegistry)
}

// NewRendererWithRegistry parses the mock templates of the given registry
func NewRendererWithRegistry(options Options, registry *TemplateRegistry) (*Renderer, error) {
	switch options.EmptyParameters {
	case "":
		options.EmptyParameters = EmptyParametersRecord
	case EmptyParametersRecord, EmptyParametersOmit:
	default:
		return nil, errors.ConfigurationError("empty_parameters",
			fmt.Sprintf("unknown mode '%s'", options.EmptyParameters)).
			WithSuggestion("Use 'record' or 'omit'")
	}

	utils := DefaultTemplateUtils
	funcMap := template.FuncMap{
		"comment": utils.CommentLine,
	}

	root := template.New("swiftmock").Funcs(funcMap)
	for _, name := range registry.Names() {
		text, _ := registry.Get(name)
		if _, err := root.New(name).Parse(text); err != nil {
			return nil, errors.WrapTemplateError(name, "parse", err)
		}
	}
	if root.Lookup(MockTemplate) == nil {
		return nil, errors.WrapTemplateError(MockTemplate, "find", fmt.Errorf("template not registered"))
	}

	return &Renderer{options: options, tmpl: root, utils: utils}, nil
}

// Render produces the Swift source of a mock class
func (r *Renderer) Render(artifact *models.MockArtifact) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, MockTemplate, r.mockData(artifact)); err != nil {
		return "", errors.WrapTemplateError(MockTemplate, "execute", err).
			WithContext("protocol", artifact.ProtocolName)
	}
	return buf.String(), nil
}

func (r *Renderer) mockData(artifact *models.MockArtifact) MockData {
	data := MockData{
		Header:       r.options.Header,
		Access:       r.utils.AccessPrefix(artifact.Access),
		ClassName:    artifact.ClassName,
		Generics:     r.utils.GenericClause(artifact.GenericParameters),
		Conformances: strings.Join(artifact.Conformances, ", "),
	}
	for _, pm := range artifact.Properties {
		data.Properties = append(data.Properties, r.propertyData(artifact.Access, pm))
	}
	for _, mm := range artifact.Methods {
		data.Methods = append(data.Methods, r.methodData(artifact.Access, mm))
	}
	return data
}

func (r *Renderer) propertyData(access string, pm models.PropertyMock) PropertyData {
	pd := PropertyData{
		Prefix:      r.utils.MemberPrefix(access, pm.Static),
		Name:        pm.Property.Name,
		Type:        pm.Property.Type.String(),
		Settable:    pm.Invoked != nil,
		Stubbed:     pm.Stubbed.Name,
		StubbedType: pm.Stubbed.Type.String(),
	}
	if pm.Invoked != nil {
		pd.Invoked = pm.Invoked.Name
		pd.InvokedType = pm.Invoked.Type.String()
	}
	return pd
}

func (r *Renderer) methodData(access string, mm models.MethodMock) MethodData {
	md := MethodData{
		Prefix:    r.utils.MemberPrefix(access, mm.Static),
		Access:    r.utils.AccessPrefix(access),
		Signature: mm.Method.Signature(),
		Invoked:   mm.Invoked.Name,
	}

	md.Fields = append(md.Fields, r.utils.FieldDeclaration(mm.Invoked))
	md.RecordParameters = !mm.Parameters.IsEmpty() || r.options.EmptyParameters == EmptyParametersRecord
	if md.RecordParameters {
		md.Parameters = mm.Parameters.Name
		md.ParametersValue = r.utils.TupleValue(mm.Parameters)
		md.Fields = append(md.Fields, "var "+mm.Parameters.Name+": "+r.utils.TupleType(mm.Parameters))
	}

	for _, closure := range mm.Closures {
		call := ClosureCallData{Call: r.utils.ClosureCall(closure)}
		if closure.Field != nil {
			call.Holder = closure.Field.Name
			md.Fields = append(md.Fields, r.utils.FieldDeclaration(*closure.Field))
		}
		md.Closures = append(md.Closures, call)
	}

	if mm.StubbedResult != nil {
		md.Result = mm.StubbedResult.Name
		if mm.ResultCast != "" {
			md.Result += " as! " + mm.ResultCast
		}
		md.Fields = append(md.Fields, r.utils.FieldDeclaration(*mm.StubbedResult))
	}
	return md
}
