package agent

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/core-tools/hsu-autodiscovery/pkg/errors"
	"github.com/core-tools/hsu-autodiscovery/pkg/logging"
	"github.com/core-tools/hsu-autodiscovery/pkg/probes"
	"github.com/core-tools/hsu-autodiscovery/pkg/resource"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level configuration file structure
type Config struct {
	Agent  AgentOptions  `yaml:"agent"`
	Probes []ProbeConfig `yaml:"probes,omitempty"`
}

// AgentOptions represents agent-level configuration
type AgentOptions struct {
	LogLevel        string            `yaml:"log_level,omitempty"`
	PlatformName    string            `yaml:"platform_name,omitempty"`
	PlatformOptions map[string]string `yaml:"platform_options,omitempty"`
	Output          OutputFormat      `yaml:"output,omitempty"`
	Services        *bool             `yaml:"services,omitempty"`
	Interval        time.Duration     `yaml:"interval,omitempty"` // zero runs a single cycle
}

// ProbeConfig toggles one built-in probe. Probes not listed stay enabled.
type ProbeConfig struct {
	Name    string `yaml:"name"`
	Enabled *bool  `yaml:"enabled,omitempty"` // Pointer to distinguish unset from false
}

type OutputFormat string

const (
	OutputYAML OutputFormat = "yaml"
	OutputJSON OutputFormat = "json"
)

// DefaultConfig is what the agent runs with when no file is given.
func DefaultConfig() *Config {
	config := &Config{}
	setConfigDefaults(config)
	return config
}

// LoadConfigFromFile loads agent configuration from a YAML file
func LoadConfigFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("configuration file not found", err).WithContext("filename", filename)
		}
		return nil, errors.NewIOError("failed to read configuration file", err).WithContext("filename", filename)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.NewValidationError("failed to parse YAML configuration", err).WithContext("filename", filename)
	}

	setConfigDefaults(&config)

	return &config, nil
}

func setConfigDefaults(config *Config) {
	if config.Agent.LogLevel == "" {
		config.Agent.LogLevel = "info"
	}
	if config.Agent.Output == "" {
		config.Agent.Output = OutputYAML
	}

	for i := range config.Probes {
		probe := &config.Probes[i]
		if probe.Enabled == nil {
			enabled := true
			probe.Enabled = &enabled
		}
	}
}

// ValidateConfig validates the entire configuration structure
func ValidateConfig(config *Config) error {
	if config == nil {
		return errors.NewValidationError("configuration cannot be nil", nil)
	}

	if err := validateAgentOptions(&config.Agent); err != nil {
		return errors.NewValidationError("invalid agent configuration", err)
	}

	if err := validateProbesConfig(config.Probes); err != nil {
		return errors.NewValidationError("invalid probes configuration", err)
	}

	return nil
}

func validateAgentOptions(options *AgentOptions) error {
	collection := errors.NewErrorCollection()

	if _, err := logging.ParseLevel(options.LogLevel); err != nil {
		collection.Add(errors.NewValidationError("invalid log level", err).WithContext("log_level", options.LogLevel))
	}

	if err := ValidateOutputFormat(options.Output); err != nil {
		collection.Add(err)
	}

	if options.Interval < 0 {
		collection.Add(errors.NewValidationError("interval cannot be negative", nil).WithContext("interval", options.Interval.String()))
	}

	return collection.ToError()
}

// ValidateOutputFormat accepts yaml and json; empty means the default.
func ValidateOutputFormat(format OutputFormat) error {
	switch format {
	case "", OutputYAML, OutputJSON:
		return nil
	default:
		return errors.NewValidationError(fmt.Sprintf("unsupported output format: %s", format), nil).
			WithContext("supported_formats", "yaml, json")
	}
}

func validateProbesConfig(probeConfigs []ProbeConfig) error {
	collection := errors.NewErrorCollection()
	seen := make(map[string]int, len(probeConfigs))

	for i, probe := range probeConfigs {
		if probe.Name == "" {
			collection.Add(errors.NewValidationError(fmt.Sprintf("probe at index %d has no name", i), nil))
			continue
		}
		if !probes.IsKnown(probe.Name) {
			collection.Add(errors.NewValidationError(fmt.Sprintf("unknown probe: %s", probe.Name), nil).
				WithContext("probe_index", i))
		}
		if first, ok := seen[probe.Name]; ok {
			collection.Add(errors.NewValidationError(fmt.Sprintf("duplicate probe: %s", probe.Name), nil).
				WithContext("first_index", first).
				WithContext("probe_index", i))
			continue
		}
		seen[probe.Name] = i
	}

	return collection.ToError()
}

// IsProbeEnabled reports whether the named probe should run.
func (c *Config) IsProbeEnabled(name string) bool {
	for _, probe := range c.Probes {
		if probe.Name == name {
			return probe.Enabled == nil || *probe.Enabled
		}
	}
	return true
}

// ServicesEnabled reports whether service discovery runs under found servers.
// Off unless asked for.
func (c *Config) ServicesEnabled() bool {
	return c.Agent.Services != nil && *c.Agent.Services
}

// PlatformConfig renders the platform options as a host configuration tree.
func (c *Config) PlatformConfig() resource.ConfigTree {
	names := make([]string, 0, len(c.Agent.PlatformOptions))
	for name := range c.Agent.PlatformOptions {
		names = append(names, name)
	}
	sort.Strings(names)

	options := make([]resource.Option, 0, len(names))
	for _, name := range names {
		options = append(options, resource.String(name, c.Agent.PlatformOptions[name]))
	}
	return resource.NewConfigTree(options...)
}

// ValidateConfigFile validates a configuration file without running a cycle
func ValidateConfigFile(configFile string) error {
	config, err := LoadConfigFromFile(configFile)
	if err != nil {
		return err
	}

	if err := ValidateConfig(config); err != nil {
		return errors.NewValidationError("configuration validation failed", err).WithContext("config_file", configFile)
	}

	return nil
}
