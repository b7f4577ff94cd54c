package annotations

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/synapse/internal/errors"
)

// AnnotationPrefix starts every synapse annotation comment
const AnnotationPrefix = "//synapse::"

var prefixPattern = regexp.MustCompile(`^//\s*synapse::`)

// annotationLexer tokenizes a single annotation line. Rules are tried in
// order, so Flag and Equals win over Word at the start of a token.
var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Prefix", Pattern: `//\s*synapse::`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Flag", Pattern: `-[A-Za-z][A-Za-z0-9]*`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Word", Pattern: `[^\s"]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// annotationAST is the grammar of one annotation line:
//
//	//synapse::<kind> [arg ...] [-Option[=value] ...]
type annotationAST struct {
	Pos   lexer.Position
	Kind  string     `parser:"Prefix @Word"`
	Args  []string   `parser:"( @Word | @String )*"`
	Flags []*flagAST `parser:"@@*"`
}

type flagAST struct {
	Pos   lexer.Position
	Name  string  `parser:"@Flag"`
	Value *string `parser:"( Equals @( Word | String ) )?"`
}

var grammar = participle.MustBuild[annotationAST](
	participle.Lexer(annotationLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// Parser turns annotation comments into schema-checked ParsedAnnotations
type Parser struct {
	registry AnnotationRegistry
}

// NewParser creates a parser backed by registry; nil means DefaultRegistry
func NewParser(registry AnnotationRegistry) *Parser {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Parser{registry: registry}
}

// IsAnnotation reports whether a comment line is a synapse annotation
func IsAnnotation(comment string) bool {
	return prefixPattern.MatchString(strings.TrimSpace(comment))
}

// Parse parses and validates one annotation comment. loc is the position of
// the comment; reported positions are offset into the line from there.
func (p *Parser) Parse(comment string, loc SourceLocation) (*ParsedAnnotation, error) {
	text := strings.TrimSpace(comment)
	if !IsAnnotation(text) {
		return nil, errors.NewAnnotationSyntaxError("missing '//synapse::' prefix", loc, errors.UnknownAnnotation)
	}
	if strings.TrimSpace(prefixPattern.ReplaceAllString(text, "")) == "" {
		return nil, errors.NewAnnotationSyntaxError("missing annotation type after '//synapse::'", loc, errors.UnknownAnnotation)
	}

	ast, err := grammar.ParseString(loc.File, text)
	if err != nil {
		return nil, syntaxError(err, text, loc)
	}

	annotationType, err := ParseAnnotationType(ast.Kind)
	if err != nil {
		return nil, errors.NewAnnotationSchemaError(
			fmt.Sprintf("unknown annotation '%s'", ast.Kind), loc, errors.UnknownAnnotation)
	}

	schema, err := p.registry.GetSchema(annotationType)
	if err != nil {
		return nil, errors.NewAnnotationSchemaError(err.Error(), loc, annotationType.Kind())
	}

	parsed, err := bind(ast, schema, loc)
	if err != nil {
		return nil, err
	}
	parsed.Raw = text
	return parsed, nil
}

func syntaxError(err error, text string, loc SourceLocation) error {
	kind := errors.UnknownAnnotation
	if m := strings.Fields(prefixPattern.ReplaceAllString(text, "")); len(m) > 0 {
		if t, err := ParseAnnotationType(m[0]); err == nil {
			kind = t.Kind()
		}
	}
	if (strings.Count(text, `"`)-strings.Count(text, `\"`))%2 == 1 {
		return errors.NewAnnotationSyntaxError("unterminated quoted value", loc, kind)
	}

	var perr participle.Error
	if !stderrors.As(err, &perr) {
		return errors.WrapParseError(text, err).WithLocation(loc)
	}

	pos := perr.Position()
	at := loc
	if at.Column > 0 {
		at.Column += pos.Column - 1
	} else {
		at.Column = pos.Column
	}
	return errors.NewAnnotationSyntaxError(perr.Message(), at, kind)
}
