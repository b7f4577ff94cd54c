package utils

import (
	"fmt"
	"go/ast"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/synapse/internal/errors"
)

// GeneratedFilePrefix marks files written by the generator. They are never
// scanned for annotations.
const GeneratedFilePrefix = "autogen_"

// DefaultOutputFile is the name of the generated client file
const DefaultOutputFile = GeneratedFilePrefix + "client.go"

// FileProcessor finds, parses and cleans package directories
type FileProcessor struct {
	fileReader *FileReader
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		fileReader: NewFileReader(),
	}
}

// NewFileProcessorWithReader creates a file processor with an existing FileReader
func NewFileProcessorWithReader(reader *FileReader) *FileProcessor {
	return &FileProcessor{
		fileReader: reader,
	}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// DefaultGoFileFilter accepts .go sources, excluding tests and generated files
func DefaultGoFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		name := info.Name()
		return strings.HasSuffix(name, ".go") &&
			!strings.HasSuffix(name, "_test.go") &&
			!strings.HasPrefix(name, GeneratedFilePrefix)
	}
}

// GeneratedFileFilter accepts files named output, DefaultOutputFile when
// output is empty
func GeneratedFileFilter(output string) FileFilter {
	if output == "" {
		output = DefaultOutputFile
	}
	return func(path string, info os.DirEntry) bool {
		return !info.IsDir() && info.Name() == output
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		".git":         true,
		".svn":         true,
		".hg":          true,
		"testdata":     true,
		"build":        true,
		"dist":         true,
		"target":       true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}
		name := info.Name()
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}
		// underscore directories are ignored by the go tool as well
		if strings.HasPrefix(name, "_") {
			return false
		}
		return !skipDirs[name]
	}
}

// fileInfoDirEntry adapts os.FileInfo to os.DirEntry
type fileInfoDirEntry struct {
	info os.FileInfo
}

func (f fileInfoDirEntry) Name() string               { return f.info.Name() }
func (f fileInfoDirEntry) IsDir() bool                { return f.info.IsDir() }
func (f fileInfoDirEntry) Type() os.FileMode          { return f.info.Mode().Type() }
func (f fileInfoDirEntry) Info() (os.FileInfo, error) { return f.info, nil }

// WalkFiles walks through files in a directory tree with filtering
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		dirEntry := fileInfoDirEntry{info: info}
		if info.IsDir() {
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, dirEntry) {
				return filepath.SkipDir
			}
			return nil
		}
		if options.FileFilter == nil || options.FileFilter(path, dirEntry) {
			matchedFiles = append(matchedFiles, path)
		}
		return nil
	})

	return matchedFiles, err
}

// ScanDirectoriesWithGoFiles scans directories and returns those containing Go files
func (fp *FileProcessor) ScanDirectoriesWithGoFiles(rootDirs []string) ([]string, error) {
	var packageDirs []string
	visited := make(map[string]bool)

	for _, rootDir := range rootDirs {
		dirs, err := fp.scanDirectoryRecursive(rootDir, visited)
		if err != nil {
			return nil, err
		}
		packageDirs = append(packageDirs, dirs...)
	}

	return packageDirs, nil
}

func (fp *FileProcessor) scanDirectoryRecursive(dir string, visited map[string]bool) ([]string, error) {
	// absolute paths guard against symlink cycles
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("resolve", dir, err)
	}
	if visited[absDir] {
		return nil, nil
	}
	visited[absDir] = true

	var packageDirs []string
	hasGoFiles, err := fp.HasGoFiles(dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("scan", dir, err)
	}
	if hasGoFiles {
		packageDirs = append(packageDirs, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("read directory", dir, err)
	}

	directoryFilter := DefaultDirectoryFilter()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		entryPath := filepath.Join(dir, entry.Name())
		if !directoryFilter(entryPath, entry) {
			continue
		}
		subDirs, err := fp.scanDirectoryRecursive(entryPath, visited)
		if err != nil {
			return nil, err
		}
		packageDirs = append(packageDirs, subDirs...)
	}

	return packageDirs, nil
}

// HasGoFiles checks if a directory contains .go sources other than tests and generated files
func (fp *FileProcessor) HasGoFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}

	fileFilter := DefaultGoFileFilter()
	for _, entry := range entries {
		if fileFilter(filepath.Join(dir, entry.Name()), entry) {
			return true, nil
		}
	}
	return false, nil
}

// PackageFiles is the parsed source of one package directory
type PackageFiles struct {
	Name  string
	Dir   string
	Paths []string // sorted
	Files map[string]*ast.File
}

// ParseDirectoryFiles parses the Go sources of a directory, skipping tests
// and generated files. Every file must belong to the same package.
func (fp *FileProcessor) ParseDirectoryFiles(dirPath string) (*PackageFiles, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, errors.WrapFileSystemError("read directory", dirPath, err)
	}

	pkg := &PackageFiles{Dir: dirPath, Files: make(map[string]*ast.File)}
	fileFilter := DefaultGoFileFilter()

	for _, entry := range entries {
		filePath := filepath.Join(dirPath, entry.Name())
		if !fileFilter(filePath, entry) {
			continue
		}

		file, err := fp.fileReader.ParseGoFile(filePath)
		if err != nil {
			return nil, errors.WrapParseError(entry.Name(), err)
		}

		if pkg.Name == "" {
			pkg.Name = file.Name.Name
		} else if file.Name.Name != pkg.Name {
			return nil, fmt.Errorf("multiple packages found in %s: %s and %s", dirPath, pkg.Name, file.Name.Name)
		}

		pkg.Files[filePath] = file
		pkg.Paths = append(pkg.Paths, filePath)
	}

	if len(pkg.Files) == 0 {
		return nil, fmt.Errorf("no Go files found in %s", dirPath)
	}
	sort.Strings(pkg.Paths)
	return pkg, nil
}

// CleanDirectories removes the generated file named output from every
// directory below baseDirs and returns the removed paths. Unreadable
// directories are skipped.
func (fp *FileProcessor) CleanDirectories(baseDirs []string, output string) ([]string, error) {
	options := FileWalkOptions{
		FileFilter:      GeneratedFileFilter(output),
		DirectoryFilter: DefaultDirectoryFilter(),
		SkipErrors:      true,
	}

	var removedFiles []string
	for _, baseDir := range baseDirs {
		if baseDir == "" {
			baseDir = "."
		}
		files, err := fp.WalkFiles(baseDir, options)
		if err != nil {
			return removedFiles, errors.WrapFileSystemError("walk", baseDir, err)
		}
		for _, path := range files {
			if err := os.Remove(path); err != nil {
				return removedFiles, errors.WrapFileSystemError("remove", path, err)
			}
			removedFiles = append(removedFiles, path)
		}
	}

	return removedFiles, nil
}
