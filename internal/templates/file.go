package templates

import (
	"strings"

	"github.com/toyz/synapse/internal/models"
)

// FileData is the input of the file header template
type FileData struct {
	PackageName string
	Sources     []string
	Imports     string
}

// GenerateFile renders an unformatted generated file holding every client
func (tr *TemplateRegistry) GenerateFile(packageName string, sources []string, im *ImportManager, clients []*models.ClientPlan) (string, error) {
	im.AddImport("context")
	im.AddImport("time")

	header, err := tr.Execute(FileHeaderTemplate, FileData{
		PackageName: packageName,
		Sources:     sources,
		Imports:     im.GenerateImports(),
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(header)
	for _, client := range clients {
		code, err := tr.GenerateClient(client)
		if err != nil {
			return "", err
		}
		b.WriteString("\n")
		b.WriteString(code)
	}
	return b.String(), nil
}
