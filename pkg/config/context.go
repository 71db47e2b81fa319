package config

import (
	"context"
	"sync"

	"github.com/compozy/plistyaml/pkg/logger"
)

// ContextKey is an alias used for storing values in context
type ContextKey string

// ConfigCtxKey is the context key used to store the active *Config
const ConfigCtxKey ContextKey = "config"

// ContextWithConfig stores the configuration in the context
func ContextWithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ConfigCtxKey, cfg)
}

var (
	defaultConfig     *Config
	defaultConfigOnce sync.Once
)

// FromContext returns the configuration attached to ctx. Without one it falls
// back to defaults plus environment overrides, loaded once.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(ConfigCtxKey).(*Config); ok && cfg != nil {
			return cfg
		}
	}
	defaultConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			logger.FromContext(ctx).Warn("failed to load default configuration, using built-in defaults", "error", err)
			cfg = Default()
		}
		defaultConfig = cfg
	})
	return defaultConfig
}

// ServiceCtxKey is the context key used to store the Service that produced
// the active configuration
const ServiceCtxKey ContextKey = "config_service"

// ContextWithService stores the configuration service in the context
func ContextWithService(ctx context.Context, s Service) context.Context {
	return context.WithValue(ctx, ServiceCtxKey, s)
}

// ServiceFromContext returns the service stored in ctx, or nil.
func ServiceFromContext(ctx context.Context) Service {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(ServiceCtxKey).(Service)
	return s
}
