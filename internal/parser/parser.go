package parser

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"github.com/toyz/synapse/internal/annotations"
	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/utils"
)

// Parser extracts annotated client interfaces from Go source
type Parser struct {
	reader      *utils.FileReader
	processor   *utils.FileProcessor
	annotations *annotations.Parser
}

// NewParser creates a parser with its own file cache
func NewParser() *Parser {
	return NewParserWithReader(utils.NewFileReader())
}

// NewParserWithReader creates a parser that shares reader's file cache
func NewParserWithReader(reader *utils.FileReader) *Parser {
	return &Parser{
		reader:      reader,
		processor:   utils.NewFileProcessorWithReader(reader),
		annotations: annotations.NewParser(nil),
	}
}

// ParseSource parses a single in-memory file
func (p *Parser) ParseSource(filename, source string) (*models.PackageMetadata, error) {
	file, err := p.reader.ParseGoSource(filename, source)
	if err != nil {
		return nil, errors.WrapParseError(filename, err)
	}

	return p.parseFiles(file.Name.Name, "./", []string{filename}, map[string]*ast.File{filename: file})
}

// ParseDirectory parses the package in path. Generated files and tests are
// skipped. When individual interfaces or methods are rejected the accepted
// ones are still returned, together with a *errors.MultipleErrors.
func (p *Parser) ParseDirectory(path string) (*models.PackageMetadata, error) {
	pkg, err := p.processor.ParseDirectoryFiles(path)
	if err != nil {
		return nil, err
	}
	return p.parseFiles(pkg.Name, path, pkg.Paths, pkg.Files)
}

func (p *Parser) parseFiles(name, dir string, paths []string, files map[string]*ast.File) (*models.PackageMetadata, error) {
	metadata := &models.PackageMetadata{
		PackageName: name,
		PackagePath: dir,
	}

	locals := collectLocalTypes(files)
	problems := errors.NewMultipleErrors()

	for _, path := range paths {
		file := files[path]
		found, errs := p.ExtractInterfaces(file, path, locals)
		problems.Merge(errs)
		if len(found) == 0 {
			continue
		}
		for _, d := range found {
			d.Package = name
		}
		metadata.Interfaces = append(metadata.Interfaces, found...)
		for _, imp := range fileImports(file) {
			metadata.AddImport(imp)
		}
	}

	return metadata, problems.ErrorOrNil()
}

// ExtractInterfaces returns the client interfaces declared in file. locals
// maps package-local type names to their underlying type expressions and
// may be nil.
func (p *Parser) ExtractInterfaces(file *ast.File, fileName string, locals map[string]string) ([]*models.InterfaceDescriptor, *errors.MultipleErrors) {
	problems := errors.NewMultipleErrors()
	var found []*models.InterfaceDescriptor

	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			typeSpec := spec.(*ast.TypeSpec)
			iface, ok := typeSpec.Type.(*ast.InterfaceType)
			if !ok {
				continue
			}

			doc := typeSpec.Doc
			if doc == nil && len(gen.Specs) == 1 {
				doc = gen.Doc
			}
			client, err := p.findAnnotation(doc, fileName, annotations.ClientAnnotation)
			if err != nil {
				addProblem(problems, err)
				continue
			}
			if client == nil {
				continue
			}

			desc := p.describeInterface(typeSpec.Name.Name, client, fileName)
			desc.Line = p.reader.Position(typeSpec.Pos()).Line
			p.extractMethods(desc, iface, fileName, locals, problems)
			found = append(found, desc)
		}
	}

	return found, problems
}

func (p *Parser) describeInterface(name string, client *annotations.ParsedAnnotation, fileName string) *models.InterfaceDescriptor {
	desc := &models.InterfaceDescriptor{
		Name:        name,
		File:        fileName,
		BaseAddress: client.GetString(OptionBaseAddress),
		Timeout:     client.GetDuration(OptionTimeout),
		ContentType: client.GetString(OptionContentType),
		Group:       client.GetString(OptionGroup),
		Abstract:    client.GetBool(OptionAbstract),
		Token: models.TokenManager{
			Type:       client.GetString(OptionTokenManager),
			TenantCall: client.GetString(OptionTenantCall),
			UserCall:   client.GetString(OptionUserCall),
			Header:     client.GetString(OptionTokenHeader),
			Scheme:     client.GetString(OptionTokenScheme),
			Explicit:   client.HasParameter(OptionTokenManager),
		},
	}
	for _, kv := range client.GetKeyValues(OptionHeader) {
		desc.Headers = append(desc.Headers, models.KeyValue{Key: kv.Key, Value: kv.Value})
	}
	for _, kv := range client.GetKeyValues(OptionQuery) {
		desc.Query = append(desc.Query, models.KeyValue{Key: kv.Key, Value: kv.Value})
	}
	return desc
}

func (p *Parser) extractMethods(desc *models.InterfaceDescriptor, iface *ast.InterfaceType, fileName string, locals map[string]string, problems *errors.MultipleErrors) {
	for _, field := range iface.Methods.List {
		if len(field.Names) == 0 {
			// embedded interface
			desc.Inherits = append(desc.Inherits, types.ExprString(field.Type))
			continue
		}

		fn, ok := field.Type.(*ast.FuncType)
		if !ok {
			continue
		}
		name := field.Names[0].Name
		line := p.reader.Position(field.Pos()).Line

		method, err := p.extractMethod(desc.Name, name, fn, field.Doc, fileName, locals)
		if err != nil {
			addProblem(problems, err)
			continue
		}
		method.Line = line
		desc.Methods = append(desc.Methods, method)
	}
}

func (p *Parser) extractMethod(iface, name string, fn *ast.FuncType, doc *ast.CommentGroup, fileName string, locals map[string]string) (*models.MethodDescriptor, error) {
	loc := func(node ast.Node) errors.SourceLocation {
		pos := p.reader.Position(node.Pos())
		return errors.SourceLocation{File: fileName, Line: pos.Line, Column: pos.Column}
	}

	httpAnn, params, err := p.methodAnnotations(doc, fileName)
	if err != nil {
		return nil, err
	}
	if httpAnn == nil {
		return nil, errors.NewDefinitionError(errors.RuleVerb, iface, name, "missing //synapse::http annotation").
			WithLocation(loc(fn)).
			WithSuggestion("Add //synapse::http VERB /path above the method")
	}

	method := &models.MethodDescriptor{
		Name:                 name,
		Verb:                 strings.ToUpper(httpAnn.GetString(ArgVerb)),
		Template:             httpAnn.GetString(ArgPath),
		ContentType:          httpAnn.GetString(OptionContentType),
		IgnoreImplementation: httpAnn.GetBool(OptionIgnoreImplementation),
		IgnoreWrapper:        httpAnn.GetBool(OptionIgnoreWrapper),
	}

	async := false
	for _, field := range fn.Params.List {
		typeExpr := field.Type
		variadic := false
		if ellipsis, ok := typeExpr.(*ast.Ellipsis); ok {
			typeExpr = &ast.ArrayType{Elt: ellipsis.Elt}
			variadic = true
		}
		typ := types.ExprString(typeExpr)

		if len(field.Names) == 0 {
			return nil, errors.NewDefinitionErrorf(errors.RuleSignature, iface, name, "parameter of type %s must be named", typ).
				WithLocation(loc(field))
		}
		for _, ident := range field.Names {
			if ident.Name == "_" {
				return nil, errors.NewDefinitionError(errors.RuleSignature, iface, name, "blank parameter names cannot be bound").
					WithLocation(loc(ident))
			}
			param := &models.ParameterDescriptor{Name: ident.Name, Type: typ, Variadic: variadic}
			classify(param, locals)
			if param.Kind == models.KindContext {
				async = true
			}
			method.Params = append(method.Params, param)
		}
	}

	for paramName, ann := range params {
		param := method.Param(paramName)
		if param == nil {
			return nil, errors.NewDefinitionErrorf(errors.RuleParameter, iface, name, "//synapse::param names unknown parameter '%s'", paramName).
				WithLocation(ann.Location)
		}
		applyParamAnnotation(param, ann)
	}

	ret, err := returnSpec(fn.Results)
	if err != nil {
		return nil, errors.NewDefinitionError(errors.RuleSignature, iface, name, err.Error()).
			WithLocation(loc(fn)).
			WithSuggestion("Remote methods return (error) or (T, error)")
	}
	ret.Role = models.ReturnRoleFor(ret.Type != "", async)
	method.Return = ret

	return method, nil
}

// methodAnnotations collects the http annotation and the param annotations
// keyed by parameter name.
func (p *Parser) methodAnnotations(doc *ast.CommentGroup, fileName string) (*annotations.ParsedAnnotation, map[string]*annotations.ParsedAnnotation, error) {
	var httpAnn *annotations.ParsedAnnotation
	params := make(map[string]*annotations.ParsedAnnotation)
	if doc == nil {
		return nil, params, nil
	}

	collector := errors.NewAnnotationErrorCollector(0)
	for _, c := range doc.List {
		if !annotations.IsAnnotation(c.Text) {
			continue
		}
		pos := p.reader.Position(c.Pos())
		loc := errors.SourceLocation{File: fileName, Line: pos.Line, Column: pos.Column}

		ann, err := p.annotations.Parse(c.Text, loc)
		if err != nil {
			addProblem(collector.MultipleErrors, err)
			continue
		}

		switch ann.Type {
		case annotations.HTTPAnnotation:
			if httpAnn != nil {
				collector.Add(errors.NewAnnotationSchemaError("duplicate //synapse::http annotation", loc, errors.HTTPAnnotation))
				continue
			}
			httpAnn = ann
		case annotations.ParamAnnotation:
			name := ann.GetString(ArgName)
			if _, dup := params[name]; dup {
				collector.Add(errors.NewAnnotationSchemaError(
					fmt.Sprintf("duplicate //synapse::param annotation for '%s'", name), loc, errors.ParamAnnotation))
				continue
			}
			params[name] = ann
		case annotations.ClientAnnotation:
			collector.Add(errors.NewAnnotationSchemaError("//synapse::client belongs on the interface, not a method", loc, errors.ClientAnnotation))
		}
	}

	if !collector.IsEmpty() {
		if collector.Count() == 1 {
			return nil, nil, collector.Errors[0]
		}
		return nil, nil, collector.MultipleErrors
	}
	return httpAnn, params, nil
}

// findAnnotation returns the single annotation of type want in doc, or nil.
// Other synapse annotations on the same declaration are errors.
func (p *Parser) findAnnotation(doc *ast.CommentGroup, fileName string, want annotations.AnnotationType) (*annotations.ParsedAnnotation, error) {
	if doc == nil {
		return nil, nil
	}

	var found *annotations.ParsedAnnotation
	for _, c := range doc.List {
		if !annotations.IsAnnotation(c.Text) {
			continue
		}
		pos := p.reader.Position(c.Pos())
		loc := errors.SourceLocation{File: fileName, Line: pos.Line, Column: pos.Column}

		ann, err := p.annotations.Parse(c.Text, loc)
		if err != nil {
			return nil, err
		}
		if ann.Type != want {
			return nil, errors.NewAnnotationSchemaError(
				fmt.Sprintf("//synapse::%s is not valid on an interface", ann.Type), loc, ann.Type.Kind())
		}
		if found != nil {
			return nil, errors.NewAnnotationSchemaError(
				fmt.Sprintf("duplicate //synapse::%s annotation", want), loc, want.Kind())
		}
		found = ann
	}
	return found, nil
}

func applyParamAnnotation(param *models.ParameterDescriptor, ann *annotations.ParsedAnnotation) {
	if role, ok := models.ParseRole(ann.GetString(OptionRole)); ok {
		param.Role = role
	}
	param.Alias = ann.GetString(OptionAlias)
	param.Separator = ann.GetString(OptionSeparator)
	param.Format = ann.GetString(OptionFormat)
	param.ContentType = ann.GetString(OptionContentType)
	param.Raw = ann.GetBool(OptionRaw)
	param.BufferSize = ann.GetInt(OptionBufferSize)
	param.Scope = models.TokenScope(strings.ToLower(ann.GetString(OptionScope)))
	param.Default = ann.GetString(OptionDefault)
}

// returnSpec checks the result list is (error) or (T, error)
func returnSpec(results *ast.FieldList) (models.ReturnSpec, error) {
	var typesOut []string
	if results != nil {
		for _, field := range results.List {
			typ := types.ExprString(field.Type)
			n := len(field.Names)
			if n == 0 {
				n = 1
			}
			for i := 0; i < n; i++ {
				typesOut = append(typesOut, typ)
			}
		}
	}

	switch {
	case len(typesOut) == 0:
		return models.ReturnSpec{}, fmt.Errorf("method must return error")
	case typesOut[len(typesOut)-1] != "error":
		return models.ReturnSpec{}, fmt.Errorf("last result must be error, got %s", typesOut[len(typesOut)-1])
	case len(typesOut) > 2:
		return models.ReturnSpec{}, fmt.Errorf("method returns %d values, at most (T, error) is supported", len(typesOut))
	case len(typesOut) == 2:
		return models.ReturnSpec{Type: typesOut[0]}, nil
	}
	return models.ReturnSpec{}, nil
}

// classify fills the type classification, treating package-local named
// types by their underlying type.
func classify(param *models.ParameterDescriptor, locals map[string]string) {
	param.Classify()
	if param.Kind != models.KindObject {
		return
	}
	underlying, ok := locals[strings.TrimPrefix(param.Type, "*")]
	if !ok {
		return
	}
	info := models.ClassifyType(underlying)
	switch info.Kind {
	case models.KindScalar, models.KindSequence, models.KindBytes, models.KindMap:
		param.Kind = info.Kind
		param.Elem = info.Elem
		param.Nullable = param.Nullable || info.Nullable
	}
}

// collectLocalTypes maps every type declared in files to its underlying
// type expression. Struct and interface types are skipped.
func collectLocalTypes(files map[string]*ast.File) map[string]string {
	locals := make(map[string]string)
	for _, file := range files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts := spec.(*ast.TypeSpec)
				switch ts.Type.(type) {
				case *ast.StructType, *ast.InterfaceType:
					continue
				}
				locals[ts.Name.Name] = types.ExprString(ts.Type)
			}
		}
	}

	// resolve chains such as type A B; type B int
	for name, underlying := range locals {
		seen := map[string]bool{name: true}
		for {
			next, ok := locals[underlying]
			if !ok || seen[underlying] {
				break
			}
			seen[underlying] = true
			underlying = next
		}
		locals[name] = underlying
	}
	return locals
}

func fileImports(file *ast.File) []models.Import {
	var out []models.Import
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imp := models.Import{Path: path}
		if spec.Name != nil {
			if spec.Name.Name == "_" {
				continue
			}
			imp.Alias = spec.Name.Name
		}
		out = append(out, imp)
	}
	return out
}

// addProblem records err, flattening collections
func addProblem(problems *errors.MultipleErrors, err error) {
	switch e := err.(type) {
	case *errors.MultipleErrors:
		problems.Merge(e)
	case errors.SynapseError:
		problems.Add(e)
	default:
		problems.Add(errors.Wrap(errors.UnknownErrorCode, "extraction failed", err))
	}
}
