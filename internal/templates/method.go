package templates

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/pkg/synapse"
)

// MethodData is the input of the method template
type MethodData struct {
	Receiver string
	Client   string
	Name     string
	Doc      string
	Params   string
	Results  string
	Body     []string
}

// GenerateMethod renders one generated method of client
func (tr *TemplateRegistry) GenerateMethod(client string, plan *models.MethodPlan) (string, error) {
	body, err := BindingLines(plan)
	if err != nil {
		return "", err
	}
	names := localNames(plan)
	body = append(body, invokeLines(plan, names)...)

	data := MethodData{
		Receiver: names.receiver,
		Client:   client,
		Name:     plan.Name,
		Doc:      strings.TrimSpace(fmt.Sprintf("%s sends %s %s", plan.Name, plan.Method.Verb, plan.Method.Template)),
		Params:   Signature(plan.Exposed),
		Results:  Results(plan.Method.Return),
		Body:     body,
	}
	return tr.Execute(MethodTemplate, data)
}

// Signature renders a parameter list
func Signature(params []*models.ParameterDescriptor) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		typ := p.Type
		if p.Variadic {
			typ = "..." + strings.TrimPrefix(typ, "[]")
		}
		parts = append(parts, p.Name+" "+typ)
	}
	return strings.Join(parts, ", ")
}

// Results renders a result list
func Results(ret models.ReturnSpec) string {
	if ret.Role.HasValue() {
		return "(" + ret.Type + ", error)"
	}
	return "error"
}

// invokeLines renders the dispatch and return statements
func invokeLines(plan *models.MethodPlan, names locals) []string {
	ctx := "context.Background()"
	if plan.Cancellation != nil {
		ctx = plan.Cancellation.Name
	}

	ret := plan.Method.Return
	resultType := ret.Type
	if !ret.Role.HasValue() {
		resultType = "struct{}"
	}

	var mapper string
	switch plan.Response {
	case models.ResponseFile:
		mapper = fmt.Sprintf("synapse.File[%s](%s, %s)", resultType, plan.File.Name, bufferSizeExpr(plan.File.BufferSize))
	case models.ResponseBytes:
		mapper = "synapse.Bytes()"
	case models.ResponseJSON:
		mapper = fmt.Sprintf("synapse.JSON[%s]()", resultType)
	default:
		mapper = "synapse.None()"
	}

	call := fmt.Sprintf("synapse.Invoke(%s, %s.client, %s, %s)", ctx, names.receiver, names.request, mapper)
	if ret.Role.HasValue() {
		return []string{"return " + call}
	}
	return []string{"_, " + names.err + " := " + call, "return " + names.err}
}

func bufferSizeExpr(n int) string {
	if n == 0 || n == synapse.DefaultBufferSize {
		return "synapse.DefaultBufferSize"
	}
	return strconv.Itoa(n)
}
