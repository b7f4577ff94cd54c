package models

// Import is one import of a source file
type Import struct {
	Alias string // empty unless renamed
	Path  string
}

// PackageMetadata represents all client contracts found in a package
type PackageMetadata struct {
	PackageName string                 // name of the Go package
	PackagePath string                 // file system path to the package
	Imports     []Import               // union of the source files' imports
	Interfaces  []*InterfaceDescriptor // annotated interfaces in declaration order
}

// Interface returns the descriptor with the given name, or nil
func (p *PackageMetadata) Interface(name string) *InterfaceDescriptor {
	for _, d := range p.Interfaces {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// AddImport records an import once
func (p *PackageMetadata) AddImport(imp Import) {
	for _, existing := range p.Imports {
		if existing.Path == imp.Path && existing.Alias == imp.Alias {
			return
		}
	}
	p.Imports = append(p.Imports, imp)
}
