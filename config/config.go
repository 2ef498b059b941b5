package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/routegap/core/factory"
	coremetrics "github.com/kilianp07/routegap/core/metrics"
	"github.com/kilianp07/routegap/infra/mqtt"
)

type Config struct {
	Analysis AnalysisConfig       `json:"analysis"`
	Source   factory.ModuleConfig `json:"source"`
	Metrics  coremetrics.Config   `json:"metrics"`
	Server   ServerConfig         `json:"server"`
	Report   ReportConfig         `json:"report"`
	MQTT     mqtt.Config          `json:"mqtt"`
	Logging  LoggingConfig        `json:"logging"`
	Sentry   SentryConfig         `json:"sentry"`
}

// Load reads the configuration file at path, applies K_ prefixed environment
// overrides (K_ANALYSIS__CAPACITY_PER_VEHICLE=20) and validates the result.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	// Set before the file so an explicit zero capacity is kept and rejected
	// by the analyzer instead of silently replaced.
	if err := k.Set("analysis.capacity_per_vehicle", DefaultCapacityPerVehicle); err != nil {
		return nil, err
	}
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Analysis.SetDefaults()
	if c.Source.Type == "" {
		c.Source.Type = "synthetic"
	}
	c.Server.SetDefaults()
	c.Report.SetDefaults()
	c.Logging.SetDefaults()
	if c.MQTT.Enabled() {
		c.MQTT.SetDefaults()
	}
}

var validate = validator.New()

// Validate checks struct constraints of every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Analysis: AnalysisConfig{CapacityPerVehicle: DefaultCapacityPerVehicle}}
	cfg.SetDefaults()
	return cfg
}
