package parser

const (
	// Annotation keywords following the //synapse:: prefix
	KeywordClient = "client"
	KeywordHTTP   = "http"
	KeywordParam  = "param"

	// Option names read from client annotations
	OptionBaseAddress  = "BaseAddress"
	OptionTimeout      = "Timeout"
	OptionContentType  = "ContentType"
	OptionGroup        = "Group"
	OptionTokenManager = "TokenManager"
	OptionTenantCall   = "TenantCall"
	OptionUserCall     = "UserCall"
	OptionTokenHeader  = "TokenHeader"
	OptionTokenScheme  = "TokenScheme"
	OptionHeader       = "Header"
	OptionQuery        = "Query"
	OptionAbstract     = "Abstract"

	// Option names read from http and param annotations
	OptionIgnoreImplementation = "IgnoreImplementation"
	OptionIgnoreWrapper        = "IgnoreWrapper"
	OptionRole                 = "Role"
	OptionAlias                = "Alias"
	OptionSeparator            = "Separator"
	OptionFormat               = "Format"
	OptionRaw                  = "Raw"
	OptionBufferSize           = "BufferSize"
	OptionScope                = "Scope"
	OptionDefault              = "Default"

	// Positional arguments
	ArgVerb = "verb"
	ArgPath = "path"
	ArgName = "name"
)
