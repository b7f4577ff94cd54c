package cli

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/toyz/synapse/internal/config"
	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/generator"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/parser"
	"github.com/toyz/synapse/internal/planner"
	"github.com/toyz/synapse/internal/utils"
)

// ProblemsError is returned by Run when clients were generated but some
// definitions were dropped. The problems have already been reported.
type ProblemsError struct {
	Problems *errors.MultipleErrors
}

func (e *ProblemsError) Error() string {
	return fmt.Sprintf("generation finished with %d problem(s)", e.Problems.Count())
}

func (e *ProblemsError) Unwrap() error { return e.Problems }

// Generator coordinates the CLI generation process
type Generator struct {
	scanner        *DirectoryScanner
	moduleResolver *ModuleResolver
	parser         parser.ContractParser
	planner        generator.ClientPlanner
	codeGenerator  generator.CodeGenerator
	reporter       *DiagnosticReporter
	diagnostics    *utils.DiagnosticSystem
	logger         *zap.Logger
	summary        GenerationSummary
}

// NewGenerator creates a new CLI generator
func NewGenerator(verbose bool) *Generator {
	level := utils.DiagnosticInfo
	if verbose {
		level = utils.DiagnosticVerbose
	}
	return NewGeneratorWithDiagnostics(verbose, utils.NewDiagnosticSystem(level))
}

// NewGeneratorWithDiagnostics creates a CLI generator reporting through diagnostics
func NewGeneratorWithDiagnostics(verbose bool, diagnostics *utils.DiagnosticSystem) *Generator {
	return &Generator{
		scanner:        NewDirectoryScanner(),
		moduleResolver: NewModuleResolver(),
		parser:         parser.NewParser(),
		planner:        planner.New(),
		codeGenerator:  generator.NewGenerator(),
		reporter:       NewDiagnosticReporter(verbose),
		diagnostics:    diagnostics,
		logger:         zap.NewNop(),
	}
}

// WithLogger sets the structured logger used for per-package events
func (g *Generator) WithLogger(logger *zap.Logger) *Generator {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Reporter returns the reporter used for fatal errors
func (g *Generator) Reporter() *DiagnosticReporter {
	return g.reporter
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Generate runs with default settings for the given directories
func (g *Generator) Generate(directories []string) error {
	return g.Run(Config{Directories: directories})
}

// packageSet keeps package metadata by directory in first-seen order
type packageSet struct {
	order []string
	byDir map[string]*models.PackageMetadata
}

func (s *packageSet) add(dir string, metadata *models.PackageMetadata) error {
	existing, ok := s.byDir[dir]
	if !ok {
		s.order = append(s.order, dir)
		s.byDir[dir] = metadata
		return nil
	}
	if existing.PackageName != metadata.PackageName {
		return errors.Newf(errors.ValidationErrorCode,
			"contract package %q does not match package %q in %s", metadata.PackageName, existing.PackageName, dir).
			WithSuggestion("Set the contract's package to the name of the Go package in that directory")
	}
	for _, iface := range metadata.Interfaces {
		if existing.Interface(iface.Name) != nil {
			return errors.Newf(errors.ValidationErrorCode, "interface %s is declared twice in %s", iface.Name, dir)
		}
	}
	existing.Interfaces = append(existing.Interfaces, metadata.Interfaces...)
	for _, imp := range metadata.Imports {
		existing.AddImport(imp)
	}
	return nil
}

// Run executes the complete generation process
func (g *Generator) Run(cfg Config) error {
	startTime := time.Now()
	g.summary = GenerationSummary{GeneratedFiles: make([]string, 0)}
	if cfg.Output != "" {
		g.codeGenerator = generator.NewGeneratorWithOutput(cfg.Output)
	}

	d := g.diagnostics
	d.Verbose("Starting code generation at %s", startTime.Format("15:04:05"))
	d.Debug("Scanning directories: %v", cfg.Directories)

	module, err := g.moduleResolver.Resolve(cfg.ModuleName)
	if err != nil {
		return errors.Wrap(errors.ConfigurationErrorCode, "failed to resolve module", err).
			WithContext("provided_module", cfg.ModuleName).
			WithSuggestions(
				"Check your go.mod file exists and is valid",
				"Ensure you're running from the correct directory",
				"Try specifying --module flag explicitly",
			)
	}
	d.Debug("Resolved module %s", module.Path)
	d.SourcePath(module.Root)

	var packageDirs []string
	if len(cfg.Directories) > 0 {
		packageDirs, err = g.scanner.ScanDirectories(cfg.Directories)
		if err != nil {
			return errors.Wrap(errors.FileSystemErrorCode, "failed to scan directories", err).
				WithContext("directories", cfg.Directories).
				WithSuggestions(
					"Check that the specified directories exist",
					"Ensure you have read permissions for the directories",
				)
		}
	}
	if len(packageDirs) == 0 && len(cfg.Contracts) == 0 {
		return errors.New(errors.ValidationErrorCode, "no Go packages found in specified directories").
			WithContext("directories", cfg.Directories).
			WithSuggestions(
				"Ensure the directories contain Go files",
				"Try scanning parent directories or use './...' pattern",
			)
	}

	problems := errors.NewMultipleErrors()
	packages := &packageSet{byDir: make(map[string]*models.PackageMetadata)}

	d.PhaseHeader("Parsing")
	for _, dir := range packageDirs {
		metadata, err := g.parser.ParseDirectory(dir)
		g.collect(problems, err)
		if metadata == nil {
			continue
		}
		importPath, pathErr := module.ImportPath(dir)
		if pathErr != nil {
			importPath = dir
		}
		d.Debug("Parsed %s: %d interfaces", importPath, len(metadata.Interfaces))
		g.logger.Debug("package parsed",
			zap.String("package", importPath),
			zap.Int("interfaces", len(metadata.Interfaces)))
		g.collect(problems, packages.add(dir, metadata))
	}

	for _, path := range cfg.Contracts {
		metadata, err := parser.LoadContract(path)
		if err != nil {
			g.collect(problems, err)
			continue
		}
		dir, err := filepath.Abs(metadata.PackagePath)
		if err != nil {
			g.collect(problems, errors.WrapFileSystemError("resolve", metadata.PackagePath, err))
			continue
		}
		metadata.PackagePath = dir
		d.PhaseItem(fmt.Sprintf("Contract %s (%d interfaces)", path, len(metadata.Interfaces)))
		g.summary.ContractsLoaded++
		g.collect(problems, packages.add(dir, metadata))
	}

	d.PhaseHeader("Generating")
	for _, dir := range packages.order {
		g.generatePackage(packages.byDir[dir], cfg.Defaults, problems)
	}
	g.summary.PackagesProcessed = len(packages.order)
	g.summary.Problems = problems.Count()

	if len(g.summary.RemovedFiles) > 0 {
		d.Section("Removed stale files")
		d.Indent()
		for _, path := range g.summary.RemovedFiles {
			d.List("%s", path)
		}
		d.Unindent()
	}

	d.Summary("Generation summary", map[string]interface{}{
		"Packages":  g.summary.PackagesProcessed,
		"Clients":   g.summary.ClientsGenerated,
		"Methods":   g.summary.MethodsGenerated,
		"Files":     len(g.summary.GeneratedFiles),
		"Problems":  g.summary.Problems,
		"Warnings":  g.summary.Warnings,
		"Duration":  time.Since(startTime).Round(time.Millisecond),
		"Contracts": g.summary.ContractsLoaded,
	})
	d.GenerationComplete(problems.Count())

	if !problems.IsEmpty() {
		return &ProblemsError{Problems: problems}
	}
	return nil
}

// generatePackage plans, renders and writes one package. A package without
// clients has its stale output removed.
func (g *Generator) generatePackage(metadata *models.PackageMetadata, defaults config.Defaults, problems *errors.MultipleErrors) {
	d := g.diagnostics
	defaults.Apply(metadata)

	result, err := g.planner.Plan(metadata)
	g.collect(problems, err)
	for _, warning := range result.Warnings {
		d.Warn("%s", warning)
		g.summary.Warnings++
	}

	file, err := g.codeGenerator.Generate(metadata, result.Clients)
	if err != nil {
		g.collect(problems, err)
		return
	}

	if file == nil {
		removed, err := g.codeGenerator.RemoveStale(metadata.PackagePath)
		if err != nil {
			g.collect(problems, err)
			return
		}
		if removed {
			path := filepath.Join(metadata.PackagePath, g.outputFile())
			g.summary.RemovedFiles = append(g.summary.RemovedFiles, path)
		}
		return
	}

	d.PhaseProgress("Writing " + file.FilePath)
	if err := g.codeGenerator.Write(file); err != nil {
		g.collect(problems, err)
		return
	}

	methods := 0
	for _, client := range result.Clients {
		methods += len(client.Methods)
	}
	g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, file.FilePath)
	g.summary.ClientsGenerated += len(file.Clients)
	g.summary.MethodsGenerated += methods
	g.logger.Info("client file written",
		zap.String("file", file.FilePath),
		zap.Strings("clients", file.Clients),
		zap.Int("methods", methods))
}

// collect reports err and adds it to problems
func (g *Generator) collect(problems *errors.MultipleErrors, err error) {
	if err == nil {
		return
	}
	g.diagnostics.Problem(err)

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) {
		problems.Merge(multi)
		return
	}
	var se errors.SynapseError
	if stderrors.As(err, &se) {
		problems.Add(se)
		return
	}
	problems.Add(errors.Wrap(errors.UnknownErrorCode, err.Error(), err))
}

func (g *Generator) outputFile() string {
	if out, ok := g.codeGenerator.(interface{ OutputFile() string }); ok {
		return out.OutputFile()
	}
	return utils.DefaultOutputFile
}
