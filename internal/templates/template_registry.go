package templates

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"
)

// Template names
const (
	ClientStructTemplate      = "client-struct"
	ClientConstructorTemplate = "client-constructor"
	InterfaceAssertTemplate   = "interface-assertion"
	RegistrationTemplate      = "registration"
	MethodTemplate            = "method"
	FileHeaderTemplate        = "file-header"
)

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerFileTemplates()
	registry.registerClientTemplates()
	registry.registerMethodTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// Execute runs the named template with data
func (tr *TemplateRegistry) Execute(name string, data interface{}) (string, error) {
	tmpl, ok := tr.Get(name)
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}
	return executeTemplate(name, tmpl, data)
}

func (tr *TemplateRegistry) registerFileTemplates() {
	tr.templates[FileHeaderTemplate] = `// Code generated by synapse. DO NOT EDIT.
{{- range .Sources}}
// source: {{.}}
{{- end}}

package {{.PackageName}}

{{.Imports}}`
}

func (tr *TemplateRegistry) registerClientTemplates() {
	tr.templates[ClientStructTemplate] = `// {{.Name}} calls the {{.Interface}} endpoints over HTTP
type {{.Name}} struct {
{{- range .Parents}}
	*{{.Name}}
{{- end}}
	client *synapse.Client
{{- if .UsesToken}}
	tokens {{.TokenType}}
{{- end}}
}`

	tr.templates[ClientConstructorTemplate] = `// New{{.Name}} creates a {{.Name}}. Options are applied after the
// defaults declared on {{.Interface}}.
func New{{.Name}}({{if .UsesToken}}tokens {{.TokenType}}, {{end}}opts ...synapse.Option) *{{.Name}} {
	defaults := []synapse.Option{
{{- range .Defaults}}
		{{.}},
{{- end}}
	}
	return &{{.Name}}{
{{- range .Parents}}
		{{.Name}}: New{{.Name}}({{if .UsesToken}}tokens, {{end}}opts...),
{{- end}}
		client: synapse.New({{quote .Interface}}, append(defaults, opts...)...),
{{- if .UsesToken}}
		tokens: tokens,
{{- end}}
	}
}`

	tr.templates[InterfaceAssertTemplate] = `var _ {{.Interface}} = (*{{.Name}})(nil)`

	tr.templates[RegistrationTemplate] = `func init() {
	synapse.DefaultRegistry.MustRegister(synapse.Registration{
		Group:     {{quote .Group}},
		Interface: {{quote .Interface}},
		Client:    {{quote .Name}},
		Operations: []synapse.OperationInfo{
{{- range .Operations}}
			{Name: {{quote .Name}}, Method: {{quote .Method}}, Path: {{quote .Path}}, Scope: {{.Scope}}, Response: {{.Response}}},
{{- end}}
		},
	})
}`
}

func (tr *TemplateRegistry) registerMethodTemplates() {
	tr.templates[MethodTemplate] = `{{if .Doc}}// {{.Doc}}
{{end}}func ({{.Receiver}} *{{.Client}}) {{.Name}}({{.Params}}) {{.Results}} {
{{- range .Body}}
	{{.}}
{{- end}}
}`
}

// executeTemplate executes a Go template with the given data
func executeTemplate(name, templateStr string, data interface{}) (string, error) {
	funcMap := template.FuncMap{
		"quote": strconv.Quote,
	}

	tmpl, err := template.New(name).Funcs(funcMap).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
