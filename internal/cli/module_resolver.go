package cli

import (
	"fmt"
	"os"

	"github.com/toyz/synapse/internal/utils"
)

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	gomod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{gomod: utils.NewGoModParser(utils.NewFileReader())}
}

// Resolve finds the module enclosing the working directory. A non-empty
// customModule replaces the module path read from go.mod; without a go.mod
// the working directory becomes the module root.
func (r *ModuleResolver) Resolve(customModule string) (*utils.ModuleInfo, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	goModPath, findErr := r.gomod.FindGoModFile(cwd)
	if findErr != nil {
		if customModule == "" {
			return nil, fmt.Errorf("failed to determine module name: %w (consider using --module flag)", findErr)
		}
		return &utils.ModuleInfo{Path: customModule, Root: cwd}, nil
	}

	info, err := r.gomod.Parse(goModPath)
	if err != nil {
		if customModule == "" {
			return nil, fmt.Errorf("failed to determine module name: %w (consider using --module flag)", err)
		}
		info = &utils.ModuleInfo{Root: cwd}
	}
	if customModule != "" {
		info.Path = customModule
	}
	return info, nil
}

// ResolveModuleName resolves the module name for imports
func (r *ModuleResolver) ResolveModuleName(customModule string) (string, error) {
	info, err := r.Resolve(customModule)
	if err != nil {
		return "", err
	}
	return info.Path, nil
}

// BuildPackagePath builds the full import path for a package directory
func (r *ModuleResolver) BuildPackagePath(module *utils.ModuleInfo, packageDir string) (string, error) {
	return module.ImportPath(packageDir)
}
