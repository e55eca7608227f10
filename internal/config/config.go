package config

import (
	"fmt"
	"time"

	config_pkg "github.com/kumarabd/gokit/config"

	"github.com/kumarabd/triage-plane/internal/metrics"
	"github.com/kumarabd/triage-plane/pkg/normalize"
	"github.com/kumarabd/triage-plane/pkg/server"
	"github.com/kumarabd/triage-plane/pkg/service"
	"github.com/kumarabd/triage-plane/pkg/translate"
)

var (
	ApplicationName    = "triage-plane"
	ApplicationVersion = "dev"
)

type Config struct {
	Server  *server.Config   `json:"server,omitempty" yaml:"server,omitempty"`
	Service *service.Config  `json:"service" yaml:"service"`
	Metrics *metrics.Options `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// New creates a new config instance
func New() (*Config, error) {
	// Create default config object
	configObject := &Config{
		Server: &server.Config{
			HTTP: &server.HTTPConfig{
				Host:         "0.0.0.0",
				Port:         "8080",
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			},
		},
		Service: &service.Config{
			Analysis: &normalize.Config{
				MaxLineBytes:  1048576, // 1MB per line
				DiagnosticCap: 200,     // errors/warnings shown
			},
			Translate: &translate.Config{
				Endpoint: "http://localhost:11434/api/generate",
				Model:    "tinyllama",
				Timeout:  10 * time.Second,
			},
		},
		Metrics: &metrics.Options{},
	}

	// Load config using gokit config package
	finalConfig, err := config_pkg.New(configObject)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if finalConfig == nil {
		return nil, fmt.Errorf("config is nil")
	}

	cfg, ok := finalConfig.(*Config)
	if !ok {
		return nil, fmt.Errorf("config type assertion failed: expected *Config, got %T", finalConfig)
	}

	return cfg, nil
}
