package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
)

// Contract is the YAML form of a package's client interfaces.
//
//	package: billing
//	imports:
//	  - github.com/acme/billing/model
//	  - auth github.com/acme/auth
//	interfaces:
//	  - name: InvoiceService
//	    base_address: https://billing.example.com
//	    methods:
//	      - name: Get
//	        verb: GET
//	        path: /invoices/{id}
//	        params:
//	          - {name: ctx, type: context.Context}
//	          - {name: id, type: string}
//	        returns: {type: "*model.Invoice"}
type Contract struct {
	Package    string                        `yaml:"package"`
	Imports    []string                      `yaml:"imports"`
	Interfaces []*models.InterfaceDescriptor `yaml:"interfaces"`
}

// LoadContract reads a contract file. The package directory is the
// directory holding the file.
func LoadContract(path string) (*models.PackageMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read contract", path, err)
	}
	metadata, err := ParseContract(path, data)
	if err != nil {
		return nil, err
	}
	metadata.PackagePath = filepath.Dir(path)
	return metadata, nil
}

// ParseContract decodes a contract. Unknown keys are rejected.
func ParseContract(name string, data []byte) (*models.PackageMetadata, error) {
	var contract Contract
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&contract); err != nil && err != io.EOF {
		return nil, errors.WrapParseError(name, err)
	}

	if contract.Package == "" {
		return nil, errors.NewSchemaError("contract has no package name").
			WithLocation(errors.SourceLocation{File: name})
	}

	metadata := &models.PackageMetadata{PackageName: contract.Package}
	for _, line := range contract.Imports {
		imp, err := parseImportLine(line)
		if err != nil {
			return nil, errors.NewSchemaError(err.Error()).WithLocation(errors.SourceLocation{File: name})
		}
		metadata.AddImport(imp)
	}

	for _, iface := range contract.Interfaces {
		if iface == nil {
			continue
		}
		normalizeContractInterface(iface, contract.Package, name)
		metadata.Interfaces = append(metadata.Interfaces, iface)
	}
	return metadata, nil
}

func normalizeContractInterface(iface *models.InterfaceDescriptor, pkg, file string) {
	iface.Package = pkg
	iface.File = file
	iface.Token.Explicit = iface.Token.Type != ""

	for _, m := range iface.Methods {
		if m == nil {
			continue
		}
		m.Verb = strings.ToUpper(m.Verb)

		async := false
		for _, p := range m.Params {
			if p == nil {
				continue
			}
			p.Classify()
			if p.Kind == models.KindContext {
				async = true
			}
			if p.Role != "" {
				if role, ok := models.ParseRole(string(p.Role)); ok {
					p.Role = role
				}
			}
			p.Scope = models.TokenScope(strings.ToLower(string(p.Scope)))
		}

		if m.Return.Role == "" {
			m.Return.Role = models.ReturnRoleFor(m.Return.Type != "", async)
		}
	}
}

// parseImportLine accepts "path" or "alias path"
func parseImportLine(line string) (models.Import, error) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 1:
		return models.Import{Path: strings.Trim(fields[0], `"`)}, nil
	case 2:
		return models.Import{Alias: fields[0], Path: strings.Trim(fields[1], `"`)}, nil
	}
	return models.Import{}, fmt.Errorf("invalid import %q: expected \"path\" or \"alias path\"", line)
}
