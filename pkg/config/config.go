package config

import (
	"context"
	"time"
)

// Config represents the complete configuration for the converter.
type Config struct {
	Log    LogConfig    `koanf:"log"    json:"log"    yaml:"log"`
	YAML   YAMLConfig   `koanf:"yaml"   json:"yaml"   yaml:"yaml"`
	JSON   JSONConfig   `koanf:"json"   json:"json"   yaml:"json"`
	Plist  PlistConfig  `koanf:"plist"  json:"plist"  yaml:"plist"`
	Recipe RecipeConfig `koanf:"recipe" json:"recipe" yaml:"recipe"`
	Batch  BatchConfig  `koanf:"batch"  json:"batch"  yaml:"batch"`
	CLI    CLIConfig    `koanf:"cli"    json:"cli"    yaml:"cli"`
}

// LogConfig controls diagnostic logging written to stderr.
type LogConfig struct {
	Level  string `koanf:"level"  json:"level"  yaml:"level"  env:"PLISTYAML_LOG_LEVEL"  flag:"log-level"  validate:"oneof=debug info warn error disabled"`
	JSON   bool   `koanf:"json"   json:"json"   yaml:"json"   env:"PLISTYAML_LOG_JSON" flag:"log-json"`
	Source bool   `koanf:"source" json:"source" yaml:"source" env:"PLISTYAML_LOG_SOURCE" flag:"log-source"`
}

// YAMLConfig contains YAML writer settings.
type YAMLConfig struct {
	Indent int `koanf:"indent" json:"indent" yaml:"indent" env:"PLISTYAML_YAML_INDENT" flag:"yaml-indent" validate:"min=1,max=8"`
}

// JSONConfig contains JSON writer settings.
type JSONConfig struct {
	Indent int `koanf:"indent" json:"indent" yaml:"indent" env:"PLISTYAML_JSON_INDENT" flag:"json-indent" validate:"min=1,max=8"`
	Width  int `koanf:"width"  json:"width"  yaml:"width"  env:"PLISTYAML_JSON_WIDTH"  flag:"json-width"  validate:"min=0"`
}

// PlistConfig contains property list writer settings.
type PlistConfig struct {
	Format   string `koanf:"format"    json:"format"    yaml:"format"    env:"PLISTYAML_PLIST_FORMAT"    flag:"plist-format"    validate:"oneof=xml binary"`
	SortKeys bool   `koanf:"sort_keys" json:"sort_keys" yaml:"sort_keys" env:"PLISTYAML_PLIST_SORT_KEYS" flag:"sort-keys"`
}

// RecipeConfig names the file suffixes that mark recipe documents.
type RecipeConfig struct {
	PlistSuffixes []string `koanf:"plist_suffixes" json:"plist_suffixes" yaml:"plist_suffixes" env:"PLISTYAML_RECIPE_PLIST_SUFFIXES" validate:"min=1,dive,file_suffix"`
	YAMLSuffix    string   `koanf:"yaml_suffix"    json:"yaml_suffix"    yaml:"yaml_suffix"    env:"PLISTYAML_RECIPE_YAML_SUFFIX"    validate:"file_suffix"`
}

// BatchConfig bounds concurrent batch processing.
type BatchConfig struct {
	Workers int  `koanf:"workers" json:"workers" yaml:"workers" env:"PLISTYAML_BATCH_WORKERS" flag:"workers" validate:"min=1,max=256"`
	Strict  bool `koanf:"strict"  json:"strict"  yaml:"strict"  env:"PLISTYAML_BATCH_STRICT" flag:"strict"`
}

// CLIConfig contains presentation settings for command output.
type CLIConfig struct {
	NoColor bool   `koanf:"no_color" json:"no_color" yaml:"no_color" env:"PLISTYAML_NO_COLOR" flag:"no-color"`
	Output  string `koanf:"output"   json:"output"   yaml:"output"   env:"PLISTYAML_OUTPUT"   flag:"output"   validate:"oneof=text json"`
}

// Service defines the configuration management service interface.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns the source type for a specific configuration key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source.
	Load() (map[string]any, error)
	// Type returns the source type identifier.
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Load loads configuration from defaults and the environment.
func Load() (*Config, error) {
	return NewService().Load(context.Background())
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		YAML: YAMLConfig{
			Indent: 2,
		},
		JSON: JSONConfig{
			Indent: 2,
			Width:  80,
		},
		Plist: PlistConfig{
			Format:   "xml",
			SortKeys: true,
		},
		Recipe: RecipeConfig{
			PlistSuffixes: []string{".recipe", ".recipe.plist"},
			YAMLSuffix:    ".recipe.yaml",
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		CLI: CLIConfig{
			Output: "text",
		},
	}
}
