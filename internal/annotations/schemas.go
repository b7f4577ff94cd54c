package annotations

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/toyz/synapse/internal/models"
)

var optionValidate = validator.New()

// HTTPVerbs lists the verbs an http annotation accepts
var HTTPVerbs = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// Built-in annotation schemas

// ClientAnnotationSchema defines the schema for //synapse::client annotations
var ClientAnnotationSchema = AnnotationSchema{
	Type:        ClientAnnotation,
	Description: "Marks an interface as an HTTP client contract",
	Parameters: map[string]ParameterSpec{
		"BaseAddress": {
			Type:        StringType,
			Description: "Absolute base URL requests are resolved against",
			Validator: func(v interface{}) error {
				if err := optionValidate.Var(v, "url"); err != nil {
					return fmt.Errorf("must be an absolute URL, got '%s'", v)
				}
				return nil
			},
		},
		"Timeout": {
			Type:        DurationType,
			Description: "Per-request timeout, e.g. 30s",
		},
		"ContentType": {
			Type:        StringType,
			Description: "Default body content type for every method",
		},
		"Group": {
			Type:        StringType,
			Description: "Registry group; must be a valid Go identifier for registration",
		},
		"TokenManager": {
			Type:        StringType,
			Description: "Go type of the token provider the client is constructed with",
		},
		"TenantCall": {
			Type:        StringType,
			Description: "Method on the token manager that acquires tenant tokens",
			Validator:   validateIdent,
		},
		"UserCall": {
			Type:        StringType,
			Description: "Method on the token manager that acquires user tokens",
			Validator:   validateIdent,
		},
		"TokenHeader": {
			Type:        StringType,
			Description: "Header the token is sent in (default Authorization)",
		},
		"TokenScheme": {
			Type:        StringType,
			Description: "Scheme prefix of the token header value (default Bearer)",
		},
		"Header": {
			Type:        KeyValueType,
			Description: "Default headers, comma-separated key:value pairs",
		},
		"Query": {
			Type:        KeyValueType,
			Description: "Default query parameters, comma-separated key:value pairs",
		},
		"Abstract": {
			Type:         BoolType,
			DefaultValue: false,
			Description:  "Generate no client; methods are inherited by embedding interfaces",
		},
	},
	Examples: []string{
		"//synapse::client",
		"//synapse::client -BaseAddress=https://api.example.com -Timeout=30s",
		"//synapse::client -Group=Billing -Header=X-Api-Version:2,Accept:application/json",
		"//synapse::client -TokenManager=*auth.Manager -TenantCall=AppToken -UserCall=OnBehalfOf",
		"//synapse::client -Abstract",
	},
}

// HTTPAnnotationSchema defines the schema for //synapse::http annotations
var HTTPAnnotationSchema = AnnotationSchema{
	Type:        HTTPAnnotation,
	Description: "Binds an interface method to an HTTP verb and URL template",
	Positional:  []string{"verb", "path"},
	Parameters: map[string]ParameterSpec{
		"verb": {
			Type:        StringType,
			Required:    true,
			Description: "HTTP verb (GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS)",
			Validator: func(v interface{}) error {
				verb := strings.ToUpper(v.(string))
				for _, valid := range HTTPVerbs {
					if verb == valid {
						return nil
					}
				}
				return fmt.Errorf("must be one of: %s, got '%s'", strings.Join(HTTPVerbs, ", "), v)
			},
		},
		"path": {
			Type:         StringType,
			DefaultValue: "",
			Description:  "URL template, relative (/users/{id}) or absolute",
		},
		"ContentType": {
			Type:        StringType,
			Description: "Body content type for this method",
		},
		"IgnoreImplementation": {
			Type:         BoolType,
			DefaultValue: false,
			Description:  "Leave the method to a hand-written implementation",
		},
		"IgnoreWrapper": {
			Type:         BoolType,
			DefaultValue: false,
			Description:  "Generate the method but do not register it as an operation",
		},
	},
	Examples: []string{
		"//synapse::http GET /users/{id}",
		"//synapse::http POST /users -ContentType=application/merge-patch+json",
		"//synapse::http GET https://status.example.com/health -IgnoreWrapper",
		"//synapse::http GET /reports/{date:2006-01-02}",
	},
}

// ParamAnnotationSchema defines the schema for //synapse::param annotations
var ParamAnnotationSchema = AnnotationSchema{
	Type:        ParamAnnotation,
	Description: "Overrides how one method parameter is bound to the request",
	Positional:  []string{"name"},
	Parameters: map[string]ParameterSpec{
		"name": {
			Type:        StringType,
			Required:    true,
			Description: "Name of the method parameter",
			Validator:   validateIdent,
		},
		"Role": {
			Type:        StringType,
			Description: "Binding role of the parameter",
			Validator: func(v interface{}) error {
				if _, ok := models.ParseRole(v.(string)); !ok {
					return fmt.Errorf("unknown role '%s'", v)
				}
				return nil
			},
		},
		"Alias": {
			Type:        StringType,
			Description: "Query or header key to use instead of the parameter name",
		},
		"Separator": {
			Type:        StringType,
			Description: "Joins sequence values into one query value",
		},
		"Format": {
			Type:        StringType,
			Description: "Format applied to the value before it is sent",
		},
		"ContentType": {
			Type:        StringType,
			Description: "Content type of a body parameter",
		},
		"Raw": {
			Type:         BoolType,
			DefaultValue: false,
			Description:  "Send a string body as-is instead of JSON encoding it",
		},
		"BufferSize": {
			Type:        IntType,
			Description: "Copy buffer size for file downloads",
			Validator: func(v interface{}) error {
				if v.(int) <= 0 {
					return fmt.Errorf("must be positive, got %d", v)
				}
				return nil
			},
		},
		"Scope": {
			Type:        StringType,
			Description: "Token scope: tenant, user or either",
			Validator: func(v interface{}) error {
				switch models.TokenScope(strings.ToLower(v.(string))) {
				case models.ScopeTenant, models.ScopeUser, models.ScopeEither:
					return nil
				}
				return fmt.Errorf("must be tenant, user or either, got '%s'", v)
			},
		},
		"Default": {
			Type:        StringType,
			Description: "Go literal substituted when the argument is the zero value",
		},
	},
	Examples: []string{
		"//synapse::param ids -Role=arrayQuery",
		"//synapse::param tags -Role=query -Separator=,",
		"//synapse::param since -Format=2006-01-02",
		"//synapse::param token -Role=token -Scope=either",
		"//synapse::param dest -Role=filePath -BufferSize=65536",
		"//synapse::param limit -Default=20",
	},
}

func validateIdent(v interface{}) error {
	s := v.(string)
	if !IsIdent(s) {
		return fmt.Errorf("must be a Go identifier, got '%s'", s)
	}
	return nil
}

// IsIdent reports whether s is a valid Go identifier
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// RegisterBuiltinSchemas registers all built-in annotation schemas with the given registry
func RegisterBuiltinSchemas(registry AnnotationRegistry) error {
	for _, schema := range GetBuiltinSchemas() {
		if err := registry.Register(schema.Type, schema); err != nil {
			return fmt.Errorf("failed to register %s schema: %w", schema.Type.String(), err)
		}
	}
	return nil
}

// GetBuiltinSchemas returns all built-in annotation schemas
func GetBuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{
		ClientAnnotationSchema,
		HTTPAnnotationSchema,
		ParamAnnotationSchema,
	}
}

// ValidateHTTPTemplate checks the path of an http annotation is relative
// with a leading slash, absolute, or empty.
func ValidateHTTPTemplate(annotation *ParsedAnnotation) error {
	path := annotation.GetString("path")
	if path == "" || strings.HasPrefix(path, "/") {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return nil
	}
	return fmt.Errorf("path must start with '/' or be an absolute URL, got '%s'", path)
}

// ValidateParamOptions rejects options that have no effect for the declared role
func ValidateParamOptions(annotation *ParsedAnnotation) error {
	if !annotation.HasParameter("Role") {
		return nil
	}
	role, _ := models.ParseRole(annotation.GetString("Role"))

	if annotation.HasParameter("Scope") && role != models.RoleToken {
		return fmt.Errorf("-Scope applies only to token parameters, not %s", role)
	}
	if annotation.HasParameter("BufferSize") && role != models.RoleFilePath {
		return fmt.Errorf("-BufferSize applies only to filePath parameters, not %s", role)
	}
	if annotation.HasParameter("Separator") && role != models.RoleQuery && role != models.RoleArrayQuery {
		return fmt.Errorf("-Separator applies only to query parameters, not %s", role)
	}
	return nil
}

// ValidateTokenCalls rejects identical tenant and user acquisition calls
func ValidateTokenCalls(annotation *ParsedAnnotation) error {
	tenant, user := annotation.GetString("TenantCall"), annotation.GetString("UserCall")
	if tenant != "" && tenant == user {
		return fmt.Errorf("-TenantCall and -UserCall must differ, both are '%s'", tenant)
	}
	return nil
}

func init() {
	ClientAnnotationSchema.Validators = []CustomValidator{ValidateTokenCalls}
	HTTPAnnotationSchema.Validators = []CustomValidator{ValidateHTTPTemplate}
	ParamAnnotationSchema.Validators = []CustomValidator{ValidateParamOptions}
}
