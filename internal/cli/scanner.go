package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/utils"
)

// DirectoryScanner finds the package directories below the requested roots
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(),
	}
}

// ScanDirectories returns the directories below rootDirs that contain Go
// files. A trailing "/..." is accepted and means the same as the bare path,
// since every root is scanned recursively.
func (s *DirectoryScanner) ScanDirectories(rootDirs []string) ([]string, error) {
	cleanDirs := make([]string, 0, len(rootDirs))

	for _, rootDir := range rootDirs {
		baseDir := trimRecursivePattern(rootDir)
		cleanPath, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, errors.WrapWithOperation("process", fmt.Sprintf("path resolution %s", baseDir), err)
		}
		cleanDirs = append(cleanDirs, cleanPath)
	}

	return s.fileProcessor.ScanDirectoriesWithGoFiles(cleanDirs)
}

// trimRecursivePattern strips a Go-style "/..." suffix
func trimRecursivePattern(dir string) string {
	if dir == "..." {
		return "."
	}
	if strings.HasSuffix(dir, "/...") {
		dir = strings.TrimSuffix(dir, "/...")
		if dir == "" {
			return "."
		}
	}
	return dir
}
