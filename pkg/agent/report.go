package agent

import (
	"fmt"
	"io"

	"github.com/core-tools/hsu-autodiscovery/pkg/errors"
	"github.com/core-tools/hsu-autodiscovery/pkg/resource"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

// Report is the outcome of one discovery cycle.
type Report struct {
	Platform string        `yaml:"platform,omitempty"`
	Probes   []ProbeReport `yaml:"probes"`
}

type ProbeReport struct {
	Name     string              `yaml:"name"`
	Found    bool                `yaml:"found"`
	Server   *resource.Server    `yaml:"server,omitempty"`
	Services []*resource.Service `yaml:"services,omitempty"`
}

func (r *Report) FoundCount() int {
	count := 0
	for _, p := range r.Probes {
		if p.Found {
			count++
		}
	}
	return count
}

// WriteReport encodes report to w in the requested format.
func WriteReport(w io.Writer, report *Report, format OutputFormat) error {
	if report == nil {
		return errors.NewValidationError("report cannot be nil", nil)
	}

	switch format {
	case "", OutputYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return errors.NewIOError("failed to write YAML report", err)
		}
		if err := encoder.Close(); err != nil {
			return errors.NewIOError("failed to write YAML report", err)
		}
		return nil

	case OutputJSON:
		s, err := report.AsStruct()
		if err != nil {
			return errors.NewInternalError("failed to convert report", err)
		}
		data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
		if err != nil {
			return errors.NewInternalError("failed to marshal JSON report", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return errors.NewIOError("failed to write JSON report", err)
		}
		return nil

	default:
		return ValidateOutputFormat(format)
	}
}

// AsStruct renders the report as a protobuf Struct.
func (r *Report) AsStruct() (*structpb.Struct, error) {
	probeValues := make([]*structpb.Value, 0, len(r.Probes))
	for _, p := range r.Probes {
		v, err := p.asValue()
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", p.Name, err)
		}
		probeValues = append(probeValues, v)
	}

	fields := map[string]*structpb.Value{
		"probes": structpb.NewListValue(&structpb.ListValue{Values: probeValues}),
	}
	if r.Platform != "" {
		fields["platform"] = structpb.NewStringValue(r.Platform)
	}
	return &structpb.Struct{Fields: fields}, nil
}

func (p ProbeReport) asValue() (*structpb.Value, error) {
	fields := map[string]*structpb.Value{
		"name":  structpb.NewStringValue(p.Name),
		"found": structpb.NewBoolValue(p.Found),
	}

	if p.Server != nil {
		config, err := treesValue(p.Server.Config)
		if err != nil {
			return nil, err
		}
		fields["server"] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"type":         structpb.NewStringValue(p.Server.Type),
			"name":         structpb.NewStringValue(p.Server.Name),
			"install_path": structpb.NewStringValue(p.Server.InstallPath),
			"description":  structpb.NewStringValue(p.Server.Description),
			"config":       config,
		}})
	}

	if len(p.Services) > 0 {
		services := make([]*structpb.Value, 0, len(p.Services))
		for _, service := range p.Services {
			config, err := treesValue(service.Config)
			if err != nil {
				return nil, err
			}
			services = append(services, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
				"type":        structpb.NewStringValue(service.Type),
				"name":        structpb.NewStringValue(service.Name),
				"description": structpb.NewStringValue(service.Description),
				"config":      config,
			}}))
		}
		fields["services"] = structpb.NewListValue(&structpb.ListValue{Values: services})
	}

	return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
}

func treesValue(trees resource.Trees) (*structpb.Value, error) {
	fields := make(map[string]*structpb.Value, 4)
	for name, tree := range map[string]resource.ConfigTree{
		"measurement": trees.Measurement,
		"product":     trees.Product,
		"control":     trees.Control,
		"custom":      trees.Custom,
	} {
		s, err := tree.AsStruct()
		if err != nil {
			return nil, fmt.Errorf("%s config: %w", name, err)
		}
		fields[name] = structpb.NewStructValue(s)
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
}
