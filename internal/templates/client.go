package templates

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/toyz/synapse/internal/models"
)

// ClientData is the input of the client templates
type ClientData struct {
	Name      string
	Interface string
	Parents   []ParentData
	UsesToken bool
	TokenType string
	Defaults  []string

	Group      string
	Operations []OperationData
}

// ParentData is an embedded parent client
type ParentData struct {
	Name      string
	UsesToken bool
}

// OperationData is one registry entry
type OperationData struct {
	Name     string
	Method   string
	Path     string
	Scope    string
	Response string
}

// NewClientData flattens a client plan for the templates
func NewClientData(plan *models.ClientPlan) ClientData {
	iface := plan.Interface
	data := ClientData{
		Name:      plan.Name(),
		Interface: iface.Name,
		UsesToken: plan.UsesToken,
		TokenType: plan.Token.Type,
		Defaults:  ClientDefaults(plan),
		Group:     iface.Group,
	}
	for _, parent := range plan.Parents {
		data.Parents = append(data.Parents, ParentData{Name: parent.Name(), UsesToken: parent.UsesToken})
	}
	for _, op := range plan.Operations() {
		data.Operations = append(data.Operations, OperationData{
			Name:     op.Name,
			Method:   op.Method.Verb,
			Path:     RoutePattern(op),
			Scope:    scopeExpr(op.Scope),
			Response: responseExpr(op.Response),
		})
	}
	return data
}

// ClientDefaults renders the options declared on the client annotation
func ClientDefaults(plan *models.ClientPlan) []string {
	iface := plan.Interface
	var opts []string
	if iface.BaseAddress != "" {
		opts = append(opts, fmt.Sprintf("synapse.WithBaseURL(%s)", strconv.Quote(iface.BaseAddress)))
	}
	if iface.Timeout > 0 {
		opts = append(opts, fmt.Sprintf("synapse.WithTimeout(%s)", DurationLiteral(iface.Timeout)))
	}
	if iface.ContentType != "" {
		opts = append(opts, fmt.Sprintf("synapse.WithContentType(%s)", strconv.Quote(iface.ContentType)))
	}
	for _, h := range iface.Headers {
		opts = append(opts, fmt.Sprintf("synapse.WithHeader(%s, %s)", strconv.Quote(h.Key), strconv.Quote(h.Value)))
	}
	for _, q := range iface.Query {
		opts = append(opts, fmt.Sprintf("synapse.WithQuery(%s, %s)", strconv.Quote(q.Key), strconv.Quote(q.Value)))
	}
	if tm := plan.Token; plan.UsesToken && (tm.Header != "" || tm.Scheme != "") {
		opts = append(opts, fmt.Sprintf("synapse.WithTokenHeader(%s, %s)", strconv.Quote(tm.Header), strconv.Quote(tm.Scheme)))
	}
	return opts
}

// GenerateClient renders a client: struct, constructor, methods, the
// interface assertion when the client satisfies it and the registry block.
func (tr *TemplateRegistry) GenerateClient(plan *models.ClientPlan) (string, error) {
	data := NewClientData(plan)
	var parts []string

	for _, name := range []string{ClientStructTemplate, ClientConstructorTemplate} {
		code, err := tr.Execute(name, data)
		if err != nil {
			return "", err
		}
		parts = append(parts, code)
	}

	for _, m := range plan.Methods {
		code, err := tr.GenerateMethod(data.Name, m)
		if err != nil {
			return "", fmt.Errorf("%s.%s: %w", plan.Interface.Name, m.Name, err)
		}
		parts = append(parts, code)
	}

	if plan.Implements() {
		code, err := tr.Execute(InterfaceAssertTemplate, data)
		if err != nil {
			return "", err
		}
		parts = append(parts, code)
	}

	if plan.Register {
		code, err := tr.Execute(RegistrationTemplate, data)
		if err != nil {
			return "", err
		}
		parts = append(parts, code)
	}

	return strings.Join(parts, "\n\n") + "\n", nil
}
