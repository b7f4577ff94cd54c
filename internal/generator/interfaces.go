package generator

import (
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/planner"
)

// CodeGenerator renders and writes client files
type CodeGenerator interface {
	Generate(metadata *models.PackageMetadata, clients []*models.ClientPlan) (*GeneratedFile, error)
	Write(file *GeneratedFile) error
	RemoveStale(packagePath string) (bool, error)
}

// ClientPlanner turns package metadata into client plans
type ClientPlanner interface {
	Plan(metadata *models.PackageMetadata) (*planner.Result, error)
}

var (
	_ CodeGenerator = (*Generator)(nil)
	_ ClientPlanner = (*planner.Planner)(nil)
)
