// Package config loads generator settings from synapse.yaml, the
// environment and an optional .env file.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/utils"
)

// EnvPrefix prefixes every environment override, e.g. SYNAPSE_OUTPUT
const EnvPrefix = "SYNAPSE"

// DefaultConfigName is the config file looked up in the working directory
const DefaultConfigName = "synapse"

// Config holds all generator configuration.
type Config struct {
	Module      string    `mapstructure:"module"`
	Output      string    `mapstructure:"output"`
	Diagnostics string    `mapstructure:"diagnostics"`
	Contracts   []string  `mapstructure:"contracts"`
	Defaults    Defaults  `mapstructure:"defaults"`
	Log         LogConfig `mapstructure:"log"`
}

// Defaults fill descriptor fields that the annotations leave empty
type Defaults struct {
	QuerySeparator string `mapstructure:"query_separator"`
	BufferSize     int    `mapstructure:"buffer_size"`
	ContentType    string `mapstructure:"content_type"`
}

type LogConfig struct {
	Env   string `mapstructure:"env"`
	Level string `mapstructure:"level"`
}

var (
	outputRules = utils.NewValidatorChain(
		utils.HasSuffix("output", ".go"),
		utils.NoPathSeparator("output"),
	)
	logEnvRule = utils.IsOneOf("log.env", "", "dev", "prod")
)

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if _, ok := utils.ParseDiagnosticLevel(c.Diagnostics); !ok {
		warnings = append(warnings, fmt.Sprintf("unknown diagnostics level '%s', using info", c.Diagnostics))
	}
	if c.Output != "" {
		if err := outputRules.Validate(c.Output); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if err := logEnvRule(c.Log.Env); err != nil {
		warnings = append(warnings, err.Error())
	}
	if c.Defaults.BufferSize < 0 {
		warnings = append(warnings, fmt.Sprintf("defaults.buffer_size %d is negative and will be ignored", c.Defaults.BufferSize))
	}

	return warnings
}

// Load reads configuration from file and environment. An empty path looks
// for synapse.yaml in the working directory; a missing file there is not an
// error. A .env file next to the config is loaded first.
func Load(path string) (*Config, error) {
	envFile := ".env"
	if path != "" {
		envFile = filepath.Join(filepath.Dir(path), ".env")
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, errors.WrapConfigurationError(envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, errors.WrapConfigurationError(describe(path), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapConfigurationError(describe(path), err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("module", "")
	v.SetDefault("output", utils.DefaultOutputFile)
	v.SetDefault("diagnostics", "info")
	v.SetDefault("contracts", []string{})
	v.SetDefault("defaults.query_separator", "")
	v.SetDefault("defaults.buffer_size", 0)
	v.SetDefault("defaults.content_type", "")
	v.SetDefault("log.env", "dev")
	v.SetDefault("log.level", "warn")
}

func describe(path string) string {
	if path == "" {
		return DefaultConfigName + ".yaml"
	}
	return path
}

// Apply fills empty descriptor fields of metadata. Sequence parameters that
// are not declared arrayQuery get the query separator, filePath parameters
// the buffer size and interfaces the content type.
func (d Defaults) Apply(metadata *models.PackageMetadata) {
	for _, iface := range metadata.Interfaces {
		if iface.ContentType == "" {
			iface.ContentType = d.ContentType
		}
		for _, m := range iface.Methods {
			for _, p := range m.Params {
				switch {
				case p.Kind == models.KindSequence && p.Role != models.RoleArrayQuery && p.Separator == "":
					p.Separator = d.QuerySeparator
				case p.Role == models.RoleFilePath && p.BufferSize == 0 && d.BufferSize > 0:
					p.BufferSize = d.BufferSize
				}
			}
		}
	}
}
