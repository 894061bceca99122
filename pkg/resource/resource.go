// Package resource describes what a probe reports to the monitoring host and
// builds those descriptors once a gate has passed.
package resource

import (
	"github.com/core-tools/hsu-autodiscovery/pkg/gate"
)

// Trees are the four configuration sub-trees attached to every resource.
type Trees struct {
	Measurement ConfigTree `yaml:"measurement"`
	Product     ConfigTree `yaml:"product"`
	Control     ConfigTree `yaml:"control"`
	Custom      ConfigTree `yaml:"custom"`
}

// DefaultTrees are four empty trees, deferring every option to the host.
func DefaultTrees() Trees {
	return Trees{
		Measurement: BuildMeasurementConfig(),
		Product:     BuildProductConfig(),
		Control:     BuildControlConfig(),
		Custom:      BuildCustomProperties(),
	}
}

func (t Trees) withEmptyDefaults() Trees {
	if t.Measurement.values == nil {
		t.Measurement = BuildMeasurementConfig()
	}
	if t.Product.values == nil {
		t.Product = BuildProductConfig()
	}
	if t.Control.values == nil {
		t.Control = BuildControlConfig()
	}
	if t.Custom.values == nil {
		t.Custom = BuildCustomProperties()
	}
	return t
}

// Identity names a server resource.
type Identity struct {
	Type        string
	Name        string
	InstallPath string
}

// Server is a discovered server resource.
type Server struct {
	Type        string `yaml:"type"`
	Name        string `yaml:"name"`
	InstallPath string `yaml:"install_path"`
	Description string `yaml:"description"`
	Config      Trees  `yaml:"config"`
}

// Service is one dynamic sub-resource of a server.
type Service struct {
	Type        string `yaml:"type"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Config      Trees  `yaml:"config"`
}

// Synthesize builds the server descriptor when g passed. On a failed gate it
// returns (nil, false) without calling build.
func Synthesize(g gate.Result, id Identity, description string, build func() Trees) (*Server, bool) {
	if !g.Passed() {
		return nil, false
	}

	trees := DefaultTrees()
	if build != nil {
		trees = build().withEmptyDefaults()
	}

	name := id.Name
	if name == "" {
		name = id.InstallPath
	}
	return &Server{
		Type:        id.Type,
		Name:        name,
		InstallPath: id.InstallPath,
		Description: description,
		Config:      trees,
	}, true
}

// SynthesizeService builds one service whose measurement tree is a copy of
// base with identityOption set to the service name.
func SynthesizeService(serviceType, name, description string, base ConfigTree, identityOption string) *Service {
	measurement := base.Clone()
	measurement.SetString(identityOption, name)

	trees := DefaultTrees()
	trees.Measurement = measurement
	return &Service{
		Type:        serviceType,
		Name:        name,
		Description: description,
		Config:      trees,
	}
}
