package cli

import "github.com/toyz/synapse/internal/config"

// Config holds the configuration for the CLI generator
type Config struct {
	// Directories is the list of directories to scan for annotated Go files.
	// Patterns ending in "/..." are scanned recursively.
	Directories []string

	// ModuleName overrides the module path read from go.mod
	ModuleName string

	// Output is the generated file name in each package directory
	Output string

	// Contracts are YAML contract files generated alongside the scanned packages
	Contracts []string

	// Defaults fill descriptor fields the annotations leave empty
	Defaults config.Defaults

	// Verbose enables detailed logging and error reporting
	Verbose bool
}

// ConfigFrom merges file configuration with command line values. Non-empty
// command line values win; contracts are appended.
func ConfigFrom(cfg *config.Config, directories []string, module, output string, contracts []string) Config {
	c := Config{
		Directories: directories,
		ModuleName:  module,
		Output:      output,
		Contracts:   contracts,
	}
	if cfg == nil {
		return c
	}
	if c.ModuleName == "" {
		c.ModuleName = cfg.Module
	}
	if c.Output == "" {
		c.Output = cfg.Output
	}
	c.Contracts = append(append([]string{}, cfg.Contracts...), contracts...)
	c.Defaults = cfg.Defaults
	return c
}
