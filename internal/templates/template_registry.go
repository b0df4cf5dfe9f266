package templates

import "sort"

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerClassTemplates()
	registry.registerPropertyTemplates()
	registry.registerMethodTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// Names returns the registered template names in sorted order
func (tr *TemplateRegistry) Names() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template names
const (
	MockTemplate        = "mock"
	PropertyTemplate    = "property"
	MethodTemplate      = "method"
	ClosureCallTemplate = "closure-call"
)

// registerClassTemplates registers the mock class template. Members follow
// the blank line after the class header without separators.
func (tr *TemplateRegistry) registerClassTemplates() {
	tr.templates[MockTemplate] = `{{range .Header}}{{comment .}}
{{end}}{{if .Header}}
{{end}}{{.Access}}class {{.ClassName}}{{.Generics}}: {{.Conformances}} {

{{range .Properties}}{{template "property" .}}{{end}}{{range .Methods}}{{template "method" .}}{{end}}}
`
}

// registerPropertyTemplates registers the computed property template
func (tr *TemplateRegistry) registerPropertyTemplates() {
	tr.templates[PropertyTemplate] = `{{if .Settable}}    {{.Prefix}}var {{.Invoked}}: {{.InvokedType}}
{{end}}    {{.Prefix}}var {{.Stubbed}}: {{.StubbedType}}
    {{.Prefix}}var {{.Name}}: {{.Type}} {
{{if .Settable}}        set {
            {{.Invoked}} = newValue
        }
        get {
            return {{.Stubbed}}
        }
{{else}}        return {{.Stubbed}}
{{end}}    }
`
}

// registerMethodTemplates registers the tracking fields and override of a method
func (tr *TemplateRegistry) registerMethodTemplates() {
	tr.templates[MethodTemplate] = `{{range .Fields}}    {{$.Prefix}}{{.}}
{{end}}    {{.Access}}{{.Signature}} {
        {{.Invoked}} = true
{{if .RecordParameters}}        {{.Parameters}} = {{.ParametersValue}}
{{end}}{{range .Closures}}{{template "closure-call" .}}{{end}}{{if .Result}}        return {{.Result}}
{{end}}    }
`

	tr.templates[ClosureCallTemplate] = `{{if .Holder}}        if let result = {{.Holder}} {
            {{.Call}}
        }
{{else}}        {{.Call}}
{{end}}`
}

// DefaultTemplateRegistry is the registry renderers use unless given another
var DefaultTemplateRegistry = NewTemplateRegistry()
