package config

import (
	"reflect"
	"sync"
)

// EnvMapping represents a mapping between a config path and the environment
// variable and CLI flag that can override it.
type EnvMapping struct {
	EnvVar     string
	Flag       string
	ConfigPath string
}

var (
	cachedMappings []EnvMapping
	mappingsOnce   sync.Once
)

// GenerateEnvMappings generates environment variable mappings from config struct tags
func GenerateEnvMappings() []EnvMapping {
	mappingsOnce.Do(func() {
		cfg := &Config{}
		cachedMappings = extractMappings(reflect.TypeOf(cfg).Elem(), "")
	})
	return cachedMappings
}

// extractMappings recursively extracts env mappings from struct fields
func extractMappings(t reflect.Type, prefix string) []EnvMapping {
	var mappings []EnvMapping
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		koanfTag := field.Tag.Get("koanf")
		if koanfTag == "" || koanfTag == "-" {
			continue
		}
		configPath := koanfTag
		if prefix != "" {
			configPath = prefix + "." + koanfTag
		}
		if field.Type.Kind() == reflect.Struct {
			mappings = append(mappings, extractMappings(field.Type, configPath)...)
			continue
		}
		envTag := field.Tag.Get("env")
		flagTag := field.Tag.Get("flag")
		if envTag == "" && flagTag == "" {
			continue
		}
		mappings = append(mappings, EnvMapping{
			EnvVar:     envTag,
			Flag:       flagTag,
			ConfigPath: configPath,
		})
	}
	return mappings
}

// GenerateEnvToConfigMap generates a map from env var to config path
func GenerateEnvToConfigMap() map[string]string {
	result := make(map[string]string)
	for _, m := range GenerateEnvMappings() {
		if m.EnvVar != "" {
			result[m.EnvVar] = m.ConfigPath
		}
	}
	return result
}

// GenerateFlagToConfigMap generates a map from CLI flag name to config path
func GenerateFlagToConfigMap() map[string]string {
	result := make(map[string]string)
	for _, m := range GenerateEnvMappings() {
		if m.Flag != "" {
			result[m.Flag] = m.ConfigPath
		}
	}
	return result
}

// GetEnvVarForConfigPath returns the environment variable for a given config path
func GetEnvVarForConfigPath(configPath string) string {
	for _, m := range GenerateEnvMappings() {
		if m.ConfigPath == configPath {
			return m.EnvVar
		}
	}
	return ""
}
