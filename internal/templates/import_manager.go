package templates

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/synapse/internal/models"
)

// RuntimeImport is the import path of the runtime the generated code calls
const RuntimeImport = "github.com/toyz/synapse/pkg/synapse"

// ImportManager collects the imports of a generated file. Imports the
// source files declare are carried over as-is; unused ones are pruned when
// the file is formatted.
type ImportManager struct {
	standardImports map[string]bool
	packageImports  map[string]string // path -> alias, alias may be empty
}

// NewImportManager creates an import manager that already knows the runtime
func NewImportManager() *ImportManager {
	im := &ImportManager{
		standardImports: make(map[string]bool),
		packageImports:  make(map[string]string),
	}
	im.AddPackageImport("", RuntimeImport)
	return im
}

// AddImport adds a standard library import
func (im *ImportManager) AddImport(importPath string) {
	if importPath != "" {
		im.standardImports[importPath] = true
	}
}

// AddPackageImport adds a third-party or module import, optionally renamed
func (im *ImportManager) AddPackageImport(alias, path string) {
	if path == "" {
		return
	}
	if isStandard(path) && alias == "" {
		im.standardImports[path] = true
		return
	}
	im.packageImports[path] = alias
}

// AddSourceImports carries over the imports of the annotated files
func (im *ImportManager) AddSourceImports(imports []models.Import) {
	for _, imp := range imports {
		im.AddPackageImport(imp.Alias, imp.Path)
	}
}

// GenerateImports renders the import block, standard library first
func (im *ImportManager) GenerateImports() string {
	var std, pkgs []string
	for imp := range im.standardImports {
		std = append(std, fmt.Sprintf("%q", imp))
	}
	for path, alias := range im.packageImports {
		if alias != "" {
			pkgs = append(pkgs, fmt.Sprintf("%s %q", alias, path))
		} else {
			pkgs = append(pkgs, fmt.Sprintf("%q", path))
		}
	}
	if len(std)+len(pkgs) == 0 {
		return ""
	}
	sort.Strings(std)
	sort.Slice(pkgs, func(i, j int) bool { return importPath(pkgs[i]) < importPath(pkgs[j]) })

	var result strings.Builder
	result.WriteString("import (\n")
	for _, imp := range std {
		result.WriteString("\t" + imp + "\n")
	}
	if len(std) > 0 && len(pkgs) > 0 {
		result.WriteString("\n")
	}
	for _, imp := range pkgs {
		result.WriteString("\t" + imp + "\n")
	}
	result.WriteString(")\n")
	return result.String()
}

// Merge merges another import manager into this one
func (im *ImportManager) Merge(other *ImportManager) {
	for imp := range other.standardImports {
		im.standardImports[imp] = true
	}
	for path, alias := range other.packageImports {
		im.packageImports[path] = alias
	}
}

// isStandard treats paths without a dot in the first element as standard library
func isStandard(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

func importPath(line string) string {
	if i := strings.IndexByte(line, '"'); i >= 0 {
		return line[i:]
	}
	return line
}
