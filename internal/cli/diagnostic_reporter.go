package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/synapse/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
	errOut  io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
}

// SetOutput redirects the reporter, mainly for tests
func (r *DiagnosticReporter) SetOutput(out, errOut io.Writer) {
	r.out, r.errOut = out, errOut
}

// ReportWarning provides user-friendly warning reporting
func (r *DiagnosticReporter) ReportWarning(message string, suggestions ...string) {
	orange := color.New(color.FgYellow, color.Bold)
	orange.Fprint(r.errOut, "! ")
	fmt.Fprintf(r.errOut, "%s\n", message)
	for _, s := range suggestions {
		fmt.Fprintf(r.errOut, "  hint: %s\n", s)
	}
}

// ReportError provides comprehensive error reporting with user-friendly output
func (r *DiagnosticReporter) ReportError(err error) {
	fmt.Fprintf(r.errOut, "\nERROR: Code Generation Failed\n")
	fmt.Fprintf(r.errOut, "=============================\n\n")

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) {
		for i, e := range multi.Errors {
			if i > 0 {
				fmt.Fprintf(r.errOut, "\n")
			}
			r.reportSynapseError(e)
		}
	} else if se := r.findSynapseError(err); se != nil {
		r.reportSynapseError(se)
	} else {
		r.reportBasicError(err)
	}

	fmt.Fprintf(r.errOut, "\n")
}

// reportSynapseError reports a located error with context and suggestions
func (r *DiagnosticReporter) reportSynapseError(se errors.SynapseError) {
	r.printErrorHeader(se)

	fmt.Fprintf(r.errOut, "Message: %s\n\n", se.Error())

	if r.verbose {
		if cause := stderrors.Unwrap(se); cause != nil {
			fmt.Fprintf(r.errOut, "Underlying cause: %s\n\n", cause.Error())
		}
	}

	if loc := se.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.errOut, "Location: %s\n\n", loc.String())
	}

	if ctx := se.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}

	if hints := se.Suggestions(); len(hints) > 0 {
		r.printSuggestions(hints)
	}

	r.printAdditionalHelp(se)
}

// reportBasicError reports a basic error without rich context
func (r *DiagnosticReporter) reportBasicError(err error) {
	fmt.Fprintf(r.errOut, "Message: %s\n\n", err.Error())

	errorMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errorMsg, "annotation"):
		fmt.Fprintf(r.errOut, "This appears to be an annotation-related issue.\n")
		fmt.Fprintf(r.errOut, "Common solutions:\n")
		fmt.Fprintf(r.errOut, "  - Check your //synapse:: annotation syntax\n")
		fmt.Fprintf(r.errOut, "  - Ensure //synapse::client is on the interface and //synapse::http on each method\n\n")
	case strings.Contains(errorMsg, "module"):
		fmt.Fprintf(r.errOut, "This appears to be a module-related issue.\n")
		fmt.Fprintf(r.errOut, "Common solutions:\n")
		fmt.Fprintf(r.errOut, "  - Check your go.mod file\n")
		fmt.Fprintf(r.errOut, "  - Try specifying --module flag explicitly\n\n")
	}
}

// printErrorHeader prints a formatted error header based on error code
func (r *DiagnosticReporter) printErrorHeader(se errors.SynapseError) {
	var errorTypeStr string

	switch se.ErrorCode() {
	case errors.SyntaxErrorCode:
		errorTypeStr = "Annotation Syntax Error"
	case errors.ValidationErrorCode:
		errorTypeStr = "Validation Error"
	case errors.SchemaErrorCode:
		errorTypeStr = "Annotation Schema Error"
	case errors.DefinitionErrorCode:
		errorTypeStr = "Client Definition Error"
	case errors.GenerationErrorCode:
		errorTypeStr = "Code Generation Error"
	case errors.FileSystemErrorCode:
		errorTypeStr = "File System Error"
	case errors.ConfigurationErrorCode:
		errorTypeStr = "Configuration Error"
	default:
		errorTypeStr = "Unknown Error"
	}

	fmt.Fprintf(r.errOut, "Type: %s\n", errorTypeStr)
	fmt.Fprintf(r.errOut, "%s\n\n", strings.Repeat("-", len(errorTypeStr)+6))
}

// printContext prints context information in a readable format
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.errOut, "Context:\n")

	importantKeys := []string{"interface", "method", "rule", "stage", "target_file"}
	printed := make(map[string]bool)

	for _, key := range importantKeys {
		if value, exists := context[key]; exists {
			fmt.Fprintf(r.errOut, "   %s: %v\n", r.formatContextKey(key), value)
			printed[key] = true
		}
	}

	var rest []string
	for key := range context {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(r.errOut, "   %s: %v\n", r.formatContextKey(key), context[key])
	}

	fmt.Fprintf(r.errOut, "\n")
}

// formatContextKey formats context keys to be more readable
func (r *DiagnosticReporter) formatContextKey(key string) string {
	switch key {
	case "target_file":
		return "File"
	default:
		// Convert snake_case to Title Case
		parts := strings.Split(key, "_")
		for i, part := range parts {
			if len(part) > 0 {
				parts[i] = strings.ToUpper(part[:1]) + part[1:]
			}
		}
		return strings.Join(parts, " ")
	}
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.errOut, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.errOut, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.errOut, "      %s\n", line)
			}
		}
	}
	fmt.Fprintf(r.errOut, "\n")
}

// printAdditionalHelp prints rule-specific help for definition errors
func (r *DiagnosticReporter) printAdditionalHelp(se errors.SynapseError) {
	var def *errors.DefinitionError
	if !stderrors.As(se, &def) {
		return
	}
	switch def.Rule {
	case errors.RuleUnmatchedPlaceholder:
		fmt.Fprintf(r.errOut, "Every {placeholder} in the URL template needs a parameter of the same name,\n")
		fmt.Fprintf(r.errOut, "or one declared with //synapse::param NAME -Alias=placeholder.\n\n")
	case errors.RuleScope:
		fmt.Fprintf(r.errOut, "Scope either emits a _Tenant and a _User method, so the token manager\n")
		fmt.Fprintf(r.errOut, "needs two distinct acquisition calls.\n\n")
	case errors.RuleSignature:
		fmt.Fprintf(r.errOut, "Client methods return error or (T, error); take context.Context to be cancellable.\n\n")
	}
}

// findSynapseError searches wrapped errors for a SynapseError
func (r *DiagnosticReporter) findSynapseError(err error) errors.SynapseError {
	var se errors.SynapseError
	if stderrors.As(err, &se) {
		return se
	}
	return nil
}

// Debug prints debug information when verbose mode is enabled
func (r *DiagnosticReporter) Debug(format string, args ...interface{}) {
	if r.verbose {
		fmt.Fprintf(r.errOut, "[DEBUG] "+format+"\n", args...)
	}
}

// ReportSuccess reports successful generation with summary information
func (r *DiagnosticReporter) ReportSuccess(summary GenerationSummary) {
	fmt.Fprintf(r.out, "\nCode Generation Completed\n")
	fmt.Fprintf(r.out, "=========================\n\n")

	if summary.PackagesProcessed > 0 {
		fmt.Fprintf(r.out, "Processed %d packages\n", summary.PackagesProcessed)
	}
	if summary.ContractsLoaded > 0 {
		fmt.Fprintf(r.out, "Loaded %d contracts\n", summary.ContractsLoaded)
	}
	if summary.ClientsGenerated > 0 {
		fmt.Fprintf(r.out, "Generated %d clients with %d methods\n", summary.ClientsGenerated, summary.MethodsGenerated)
	}
	if summary.Problems > 0 {
		fmt.Fprintf(r.out, "Dropped %d definitions with errors\n", summary.Problems)
	}
	if summary.Warnings > 0 {
		fmt.Fprintf(r.out, "Reported %d warnings\n", summary.Warnings)
	}

	if len(summary.GeneratedFiles) > 0 {
		fmt.Fprintf(r.out, "\nGenerated files:\n")
		for _, file := range summary.GeneratedFiles {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}
	if len(summary.RemovedFiles) > 0 {
		fmt.Fprintf(r.out, "\nRemoved stale files:\n")
		for _, file := range summary.RemovedFiles {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}
}

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	PackagesProcessed int
	ContractsLoaded   int
	ClientsGenerated  int
	MethodsGenerated  int
	Problems          int
	Warnings          int
	GeneratedFiles    []string
	RemovedFiles      []string
}
