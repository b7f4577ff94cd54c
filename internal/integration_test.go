package internal

import (
	"go/ast"
	goparser "go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/toyz/synapse/internal/generator"
	"github.com/toyz/synapse/internal/parser"
	"github.com/toyz/synapse/internal/planner"
)

// TestClientGenerationIntegration runs source through parsing, planning and
// emission and checks the generated client
func TestClientGenerationIntegration(t *testing.T) {
	source := `package shop

import (
	"context"
	"strings"
)

type Order struct {
	ID int
}

type Report struct {
	Title string
}

//synapse::client -BaseAddress=https://shop.example.com -Group=Shop
type Shop interface {
	//synapse::http GET /users/{userId}/orders/{orderId}
	GetOrder(ctx context.Context, userId int, orderId int) (*Order, error)

	//synapse::http GET /orders
	//synapse::param ids -Role=arrayQuery
	Find(ctx context.Context, ids []int) ([]Order, error)

	//synapse::http GET /reports/{id}
	//synapse::param token -Role=token -Scope=either
	FetchReportAsync(ctx context.Context, token string, id int) (*Report, error)
}

func normalize(s string) string { return strings.ToLower(s) }`

	metadata, err := parser.NewParser().ParseSource("shop.go", source)
	if err != nil {
		t.Fatalf("failed to parse source: %v", err)
	}
	if len(metadata.Interfaces) != 1 {
		t.Fatalf("expected 1 interface, got %d", len(metadata.Interfaces))
	}

	result, err := planner.New().Plan(metadata)
	if err != nil {
		t.Fatalf("failed to plan: %v", err)
	}
	if len(result.Clients) != 1 {
		t.Fatalf("expected 1 client, got %d", len(result.Clients))
	}
	if got := len(result.Clients[0].Methods); got != 4 {
		t.Errorf("expected 4 method plans (either scope forks), got %d", got)
	}

	file, err := generator.NewGenerator().Generate(metadata, result.Clients)
	if err != nil {
		t.Fatalf("failed to generate: %v", err)
	}
	code := file.Content

	expectedElements := []string{
		"package shop",
		"type ShopClient struct {",
		"func NewShopClient(tokens synapse.TokenProvider, opts ...synapse.Option) *ShopClient {",
		"func (c *ShopClient) GetOrder(ctx context.Context, userId int, orderId int) (*Order, error) {",
		`synapse.PathValue(orderId, "")`,
		`synapse.QuerySeq(req, "ids", ids, "", "")`,
		"func (c *ShopClient) FetchReport_Tenant_Async(ctx context.Context, id int) (*Report, error) {",
		"func (c *ShopClient) FetchReport_User_Async(ctx context.Context, id int) (*Report, error) {",
		"req.Authorize(synapse.ScopeTenant, c.tokens.TenantToken)",
		`Group:     "Shop",`,
	}
	for _, expected := range expectedElements {
		if !strings.Contains(code, expected) {
			t.Errorf("generated client missing expected element: %s\n\nGenerated code:\n%s", expected, code)
		}
	}

	// scoped names diverge from the interface, and the unused strings
	// import of the source file is pruned
	if strings.Contains(code, "var _ Shop = ") {
		t.Errorf("diverging client must not assert the interface")
	}
	if strings.Contains(code, `"strings"`) {
		t.Errorf("unused source import was carried over")
	}

	body := extractFuncBody(t, code, "Find")
	if !strings.Contains(body, "synapse.JSON[[]Order]()") {
		t.Errorf("Find should decode JSON into []Order, got:\n%s", body)
	}
}

// extractFuncBody returns the source of the method named name
func extractFuncBody(t *testing.T, code, name string) string {
	t.Helper()
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, "autogen_client.go", code, 0)
	if err != nil {
		t.Fatalf("generated code does not parse: %v", err)
	}
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Name.Name != name || fn.Body == nil {
			continue
		}
		return code[fset.Position(fn.Body.Pos()).Offset:fset.Position(fn.Body.End()).Offset]
	}
	return ""
}
