package resource

import (
	"testing"

	"github.com/core-tools/hsu-autodiscovery/pkg/gate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigTree(t *testing.T) {
	tree := NewConfigTree(
		String("script", "/opt/assuremonitoring-plugins/scripts/backlog.pl"),
		Int("timeout", 60),
		Bool("enabled", true),
		Option{Name: "ratio", Value: 0.5},
	)

	assert.Equal(t, 3, tree.Len())
	assert.Equal(t, []string{"enabled", "script", "timeout"}, tree.Keys())

	script, ok := tree.GetString("script")
	assert.True(t, ok)
	assert.Equal(t, "/opt/assuremonitoring-plugins/scripts/backlog.pl", script)

	timeout, ok := tree.GetInt("timeout")
	assert.True(t, ok)
	assert.Equal(t, 60, timeout)

	_, ok = tree.Get("ratio")
	assert.False(t, ok)

	_, ok = tree.GetInt("script")
	assert.False(t, ok)
}

func TestConfigTreeLaterOptionWins(t *testing.T) {
	tree := NewConfigTree(Int("timeout", 30), Int("timeout", 60))
	timeout, _ := tree.GetInt("timeout")
	assert.Equal(t, 60, timeout)
	assert.Equal(t, 1, tree.Len())
}

func TestConfigTreeZeroValueIsUsable(t *testing.T) {
	var tree ConfigTree
	assert.Equal(t, 0, tree.Len())
	tree.SetBool("debug", false)
	v, ok := tree.Get("debug")
	assert.True(t, ok)
	assert.Equal(t, false, v)
}

func TestConfigTreeCloneIsIndependent(t *testing.T) {
	base := BuildMeasurementConfig(Int("timeout", 60))
	clone := base.Clone()
	clone.SetString("interface_name", "eth0-up")

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, clone.Len())

	m := base.Map()
	m["timeout"] = 1
	timeout, _ := base.GetInt("timeout")
	assert.Equal(t, 60, timeout)
}

func TestConfigTreeAsStruct(t *testing.T) {
	tree := NewConfigTree(String("script", "/x.pl"), Int("timeout", 60), Bool("enabled", true))

	s, err := tree.AsStruct()
	require.NoError(t, err)
	assert.Equal(t, "/x.pl", s.Fields["script"].GetStringValue())
	assert.Equal(t, float64(60), s.Fields["timeout"].GetNumberValue())
	assert.True(t, s.Fields["enabled"].GetBoolValue())

	empty, err := ConfigTree{}.AsStruct()
	require.NoError(t, err)
	assert.Empty(t, empty.Fields)
}

func TestConfigTreeYAML(t *testing.T) {
	trees := DefaultTrees()
	trees.Measurement.SetInt("timeout", 60)

	out, err := yaml.Marshal(trees)
	require.NoError(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, 60, decoded["measurement"]["timeout"])
	assert.Empty(t, decoded["custom"])
	assert.Len(t, decoded, 4)
}

func TestSynthesizePassedGate(t *testing.T) {
	id := Identity{Type: "EE-SGEH", Name: "EE-SGEH", InstallPath: "EE-SGEH"}

	server, ok := Synthesize(gate.Pass(), id, "Performance Metrics", func() Trees {
		return Trees{Measurement: BuildMeasurementConfig(Int("timeout", 60))}
	})

	require.True(t, ok)
	require.NotNil(t, server)
	assert.Equal(t, "EE-SGEH", server.Name)
	assert.Equal(t, "Performance Metrics", server.Description)
	assert.Equal(t, 1, server.Config.Measurement.Len())
	assert.NotNil(t, server.Config.Product.values)
	assert.NotNil(t, server.Config.Control.values)
	assert.NotNil(t, server.Config.Custom.values)
}

func TestSynthesizeNilBuilderAttachesEmptyTrees(t *testing.T) {
	server, ok := Synthesize(gate.Pass(), Identity{InstallPath: "/OMBS Backup"}, "d", nil)
	require.True(t, ok)
	assert.Equal(t, "/OMBS Backup", server.Name)
	assert.Equal(t, DefaultTrees(), server.Config)
}

func TestSynthesizeFailedGateBuildsNothing(t *testing.T) {
	called := false
	server, ok := Synthesize(gate.Fail("script"), Identity{Name: "EE-SGEH"}, "d", func() Trees {
		called = true
		return DefaultTrees()
	})

	assert.False(t, ok)
	assert.Nil(t, server)
	assert.False(t, called)
}

func TestSynthesizeService(t *testing.T) {
	base := BuildMeasurementConfig(String("script", "/x.pl"), Int("timeout", 60))

	service := SynthesizeService("Interface", "eth0-up", "ENIQ Interface", base, "interface_name")

	assert.Equal(t, "Interface", service.Type)
	assert.Equal(t, "eth0-up", service.Name)
	assert.Equal(t, "ENIQ Interface", service.Description)
	name, ok := service.Config.Measurement.GetString("interface_name")
	assert.True(t, ok)
	assert.Equal(t, "eth0-up", name)
	assert.Equal(t, 3, service.Config.Measurement.Len())
	assert.Equal(t, 2, base.Len())
	assert.Equal(t, 0, service.Config.Product.Len())
}
