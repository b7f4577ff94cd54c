package parser

import "github.com/toyz/synapse/internal/models"

// ContractParser extracts client contracts from a package directory.
//
// Implementations may return metadata together with a non-nil
// *errors.MultipleErrors when only some interfaces or methods were
// rejected; the metadata then holds everything that was accepted.
type ContractParser interface {
	ParseDirectory(path string) (*models.PackageMetadata, error)
	ParseSource(filename, source string) (*models.PackageMetadata, error)
}

var _ ContractParser = (*Parser)(nil)
