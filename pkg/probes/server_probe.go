// Package probes is the ENIQ probe family. Every probe shares one protocol:
// evaluate all gate conditions, then synthesize the server resource.
package probes

import (
	"context"
	"fmt"

	"github.com/core-tools/hsu-autodiscovery/pkg/fileprobe"
	"github.com/core-tools/hsu-autodiscovery/pkg/gate"
	"github.com/core-tools/hsu-autodiscovery/pkg/logging"
	"github.com/core-tools/hsu-autodiscovery/pkg/probe"
	"github.com/core-tools/hsu-autodiscovery/pkg/resource"
	"github.com/core-tools/hsu-autodiscovery/pkg/servertype"
)

const scriptDir = "/opt/assuremonitoring-plugins/scripts/"

// serverProbe implements DiscoverServer for a fixed set of conditions. The
// conditions are rebuilt on every call so nothing is cached across cycles.
type serverProbe struct {
	probe.Base

	name        string
	serverType  string
	conditions  func() []gate.Condition
	identity    func(host probe.HostContext) resource.Identity
	description func(host probe.HostContext) string
	trees       func() resource.Trees
	logger      logging.Logger
}

func (p *serverProbe) Name() string { return p.name }

func (p *serverProbe) DiscoverServer(ctx context.Context, host probe.HostContext) (*resource.Server, bool) {
	p.logger.Debugf("DiscoverServer called")

	result := gate.Evaluate(p.logger, p.conditions()...)
	build := p.trees
	if build == nil {
		build = p.Trees
	}

	server, ok := resource.Synthesize(result, p.identity(host), p.description(host), build)
	if !ok {
		p.logger.Debugf("Auto-discovery conditions are not met for server type %s", p.serverType)
		return nil, false
	}

	p.logger.Debugf("Auto-discovery conditions are valid for server type %s", p.serverType)
	return server, true
}

func pathCondition(name string, check fileprobe.PathCheck, logger logging.Logger) gate.Condition {
	return gate.Condition{
		Name: name,
		Check: func() bool {
			ok := check.Check()
			logger.Debugf("%s is %t for %s", name, ok, check)
			return ok
		},
	}
}

func serverTypeCondition(classifier servertype.Classifier, logger logging.Logger) gate.Condition {
	return gate.Condition{
		Name: "valid server type",
		Check: func() bool {
			return classifier.Accepts(logger)
		},
	}
}

// fixedIdentity names the server after its plugin, as the events probes do.
func fixedIdentity(serverType string) func(probe.HostContext) resource.Identity {
	return func(host probe.HostContext) resource.Identity {
		return resource.Identity{Type: serverType, Name: serverType, InstallPath: serverType}
	}
}

func fixedDescription(description string) func(probe.HostContext) string {
	return func(probe.HostContext) string { return description }
}

// platformIdentity prefixes the platform name, as the backup probes do:
// install path "/<type>", name "<platform> <type>".
func platformIdentity(serverType string) func(probe.HostContext) resource.Identity {
	return func(host probe.HostContext) resource.Identity {
		return resource.Identity{
			Type:        serverType,
			Name:        platformQualified(host, serverType),
			InstallPath: "/" + serverType,
		}
	}
}

func platformDescription(serverType string) func(probe.HostContext) string {
	return func(host probe.HostContext) string {
		return fmt.Sprintf("The %s server.", platformQualified(host, serverType))
	}
}

func platformQualified(host probe.HostContext, serverType string) string {
	if host.PlatformName == "" {
		return serverType
	}
	return host.PlatformName + " " + serverType
}

func probeLogger(logger logging.Logger, name string) logging.Logger {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return logging.WithPrefix(logger, fmt.Sprintf("probe: %s, ", name))
}
