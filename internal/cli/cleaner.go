package cli

import (
	"fmt"

	"github.com/toyz/synapse/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	fileProcessor *utils.FileProcessor
	output        string
}

// NewCleaner creates a cleaner for files named output; empty means the
// default generated file name.
func NewCleaner(output string) *Cleaner {
	if output == "" {
		output = utils.DefaultOutputFile
	}
	return &Cleaner{
		fileProcessor: utils.NewFileProcessor(),
		output:        output,
	}
}

// CleanGeneratedFiles removes the generated client files below directories
// and returns the removed paths
func (c *Cleaner) CleanGeneratedFiles(directories []string) ([]string, error) {
	if len(directories) == 0 {
		directories = []string{"."}
	}

	dirs := make([]string, 0, len(directories))
	for _, dir := range directories {
		dirs = append(dirs, trimRecursivePattern(dir))
	}

	removed, err := c.fileProcessor.CleanDirectories(dirs, c.output)
	if err != nil {
		return removed, fmt.Errorf("failed to clean generated files: %w", err)
	}
	return removed, nil
}
