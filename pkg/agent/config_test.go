package agent

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/core-tools/hsu-autodiscovery/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "autodiscovery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	tests := []struct {
		name        string
		configYAML  string
		expectError bool
		validate    func(*testing.T, *Config)
	}{
		{
			name: "valid comprehensive config",
			configYAML: `
agent:
  log_level: "debug"
  platform_name: "atrcx123"
  platform_options:
    site: "lab"
  output: "json"
  services: true
  interval: 5m

probes:
  - name: "backlog"
  - name: "ee-sgeh"
    enabled: false
`,
			validate: func(t *testing.T, config *Config) {
				assert.Equal(t, "debug", config.Agent.LogLevel)
				assert.Equal(t, "atrcx123", config.Agent.PlatformName)
				assert.Equal(t, OutputJSON, config.Agent.Output)
				assert.Equal(t, 5*time.Minute, config.Agent.Interval)
				assert.True(t, config.ServicesEnabled())

				require.Len(t, config.Probes, 2)
				require.NotNil(t, config.Probes[0].Enabled)
				assert.True(t, *config.Probes[0].Enabled)
				assert.True(t, config.IsProbeEnabled("backlog"))
				assert.False(t, config.IsProbeEnabled("ee-sgeh"))
				assert.True(t, config.IsProbeEnabled("ombs-backup"))

				site, ok := config.PlatformConfig().GetString("site")
				assert.True(t, ok)
				assert.Equal(t, "lab", site)
			},
		},
		{
			name:       "empty config gets defaults",
			configYAML: "agent: {}\n",
			validate: func(t *testing.T, config *Config) {
				assert.Equal(t, "info", config.Agent.LogLevel)
				assert.Equal(t, OutputYAML, config.Agent.Output)
				assert.False(t, config.ServicesEnabled())
				assert.Zero(t, config.Agent.Interval)
				assert.Equal(t, 0, config.PlatformConfig().Len())
			},
		},
		{
			name:        "invalid yaml",
			configYAML:  "agent: [unclosed\n",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfigFromFile(writeConfig(t, tt.configYAML))
			if tt.expectError {
				assert.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			require.NoError(t, ValidateConfig(config))
			tt.validate(t, config)
		})
	}
}

func TestLoadConfigFromMissingFile(t *testing.T) {
	_, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestValidateConfig(t *testing.T) {
	enabled := true

	tests := []struct {
		name   string
		config *Config
		valid  bool
	}{
		{"nil config", nil, false},
		{"defaults", DefaultConfig(), true},
		{"bad log level", &Config{Agent: AgentOptions{LogLevel: "verbose"}}, false},
		{"bad output", &Config{Agent: AgentOptions{Output: "xml"}}, false},
		{"negative interval", &Config{Agent: AgentOptions{Interval: -time.Second}}, false},
		{"unknown probe", &Config{Probes: []ProbeConfig{{Name: "frop"}}}, false},
		{"unnamed probe", &Config{Probes: []ProbeConfig{{Enabled: &enabled}}}, false},
		{"duplicate probe", &Config{Probes: []ProbeConfig{{Name: "backlog"}, {Name: "backlog"}}}, false},
		{"known probes", &Config{Probes: []ProbeConfig{{Name: "backlog"}, {Name: "rolling-snapshot"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.config)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestValidateConfigFile(t *testing.T) {
	assert.NoError(t, ValidateConfigFile(writeConfig(t, "probes:\n  - name: ee-ltees\n")))

	err := ValidateConfigFile(writeConfig(t, "probes:\n  - name: nope\n"))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
