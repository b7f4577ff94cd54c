package generator

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/templates"
	"github.com/toyz/synapse/internal/utils"
)

// GeneratedFile is one rendered client file
type GeneratedFile struct {
	PackageName string
	FilePath    string
	Content     string
	Clients     []string
}

// Generator implements the CodeGenerator interface
type Generator struct {
	templates *templates.TemplateRegistry
	output    string
}

// NewGenerator creates a new code generator instance
func NewGenerator() *Generator {
	return NewGeneratorWithOutput(utils.DefaultOutputFile)
}

// NewGeneratorWithOutput creates a generator that writes to the named file
// in each package directory
func NewGeneratorWithOutput(output string) *Generator {
	if output == "" {
		output = utils.DefaultOutputFile
	}
	return &Generator{
		templates: templates.NewTemplateRegistry(),
		output:    output,
	}
}

// OutputFile is the generated file name
func (g *Generator) OutputFile() string {
	return g.output
}

// Generate renders the client file of a package. It returns nil when there
// are no clients to emit.
func (g *Generator) Generate(metadata *models.PackageMetadata, clients []*models.ClientPlan) (*GeneratedFile, error) {
	if metadata == nil {
		return nil, fmt.Errorf("metadata cannot be nil")
	}
	if len(clients) == 0 {
		return nil, nil
	}

	filePath := filepath.Join(metadata.PackagePath, g.output)

	im := templates.NewImportManager()
	im.AddSourceImports(requiredImports(metadata.Imports, clients))

	content, err := g.templates.GenerateFile(metadata.PackageName, sourceFiles(clients), im, clients)
	if err != nil {
		return nil, errors.WrapGenerateError("render", filePath, err)
	}

	formatted, err := utils.FormatGoCodeString(filePath, content)
	if err != nil {
		return nil, errors.WrapGenerateError("format", filePath, err)
	}

	file := &GeneratedFile{
		PackageName: metadata.PackageName,
		FilePath:    filePath,
		Content:     formatted,
	}
	for _, c := range clients {
		file.Clients = append(file.Clients, c.Name())
	}
	return file, nil
}

// Write writes a generated file, creating its directory if needed
func (g *Generator) Write(file *GeneratedFile) error {
	if err := os.MkdirAll(filepath.Dir(file.FilePath), 0755); err != nil {
		return errors.WrapFileSystemError("create directory", filepath.Dir(file.FilePath), err)
	}
	if err := os.WriteFile(file.FilePath, []byte(file.Content), 0644); err != nil {
		return errors.WrapFileSystemError("write", file.FilePath, err)
	}
	return nil
}

// RemoveStale deletes a previously generated file from a package that no
// longer declares clients. It reports whether a file was removed.
func (g *Generator) RemoveStale(packagePath string) (bool, error) {
	target := filepath.Join(packagePath, g.output)
	err := os.Remove(target)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	}
	return false, errors.WrapFileSystemError("remove", target, err)
}

// sourceFiles lists the base names of the files that declared the clients
func sourceFiles(clients []*models.ClientPlan) []string {
	seen := make(map[string]bool)
	var files []string
	for _, c := range clients {
		name := filepath.Base(c.Interface.File)
		if c.Interface.File == "" || seen[name] {
			continue
		}
		seen[name] = true
		files = append(files, name)
	}
	sort.Strings(files)
	return files
}

// requiredImports keeps the source imports whose package is referenced by a
// generated signature or token type. If a qualifier cannot be matched to an
// import by name, every import is kept and formatting prunes the rest.
func requiredImports(imports []models.Import, clients []*models.ClientPlan) []models.Import {
	qualifiers := make(map[string]bool)
	note := func(typ string) {
		if q := utils.ExtractPackageFromType(typ); q != "" {
			qualifiers[q] = true
		}
	}
	for _, c := range clients {
		if c.UsesToken {
			note(c.Token.Type)
		}
		for _, m := range c.Methods {
			note(m.Method.Return.Type)
			for _, p := range m.Exposed {
				note(p.Type)
			}
		}
	}

	var kept []models.Import
	matched := make(map[string]bool)
	for _, imp := range imports {
		name := importName(imp)
		if qualifiers[name] {
			kept = append(kept, imp)
			matched[name] = true
		}
	}
	for q := range qualifiers {
		if !matched[q] && q != "synapse" && q != "context" && q != "time" {
			return imports
		}
	}
	return kept
}

// importName guesses the package name of an import: the alias, or the last
// path element without a major version suffix
func importName(imp models.Import) string {
	if imp.Alias != "" {
		return imp.Alias
	}
	name := path.Base(imp.Path)
	if len(name) > 1 && name[0] == 'v' && strings.Trim(name[1:], "0123456789") == "" {
		name = path.Base(path.Dir(imp.Path))
	}
	name = strings.TrimPrefix(name, "go-")
	return strings.TrimSuffix(name, "-go")
}
