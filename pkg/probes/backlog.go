package probes

import (
	"context"

	"github.com/core-tools/hsu-autodiscovery/pkg/gate"
	"github.com/core-tools/hsu-autodiscovery/pkg/logging"
	"github.com/core-tools/hsu-autodiscovery/pkg/probe"
	"github.com/core-tools/hsu-autodiscovery/pkg/process"
	"github.com/core-tools/hsu-autodiscovery/pkg/resource"
	"github.com/core-tools/hsu-autodiscovery/pkg/servertype"
	"github.com/core-tools/hsu-autodiscovery/pkg/servicediscovery"
)

const (
	BacklogName = "backlog"

	backlogServerType         = "Backlog Analysis"
	backlogServerDescription  = "ENIQ Backlog Analysis"
	backlogServiceType        = "Interface"
	backlogServiceDescription = "ENIQ Interface"

	// Compiled in, never read from host options.
	BacklogScript  = scriptDir + "backlog.pl"
	backlogTimeout = 60

	pfexec                = "/usr/bin/pfexec"
	interfaceNameOption   = "interface_name"
	activeInterfacesQuery = "get_active_interfaces"
)

// BacklogLayout holds what tests may substitute: where the server type is
// read from and how the interface listing command is started. The command
// itself is fixed.
type BacklogLayout struct {
	ServerTypeFile string
	Runner         servicediscovery.Runner
}

func DefaultBacklogLayout() BacklogLayout {
	return BacklogLayout{ServerTypeFile: servertype.DescriptorFile}
}

type backlogProbe struct {
	*serverProbe
	discoverer servicediscovery.Discoverer
}

// NewBacklogWithLayout builds the backlog analysis probe: a server gated on the
// stats server types and one Interface service per active interface.
func NewBacklogWithLayout(layout BacklogLayout, logger logging.Logger) probe.Probe {
	logger = probeLogger(logger, BacklogName)
	classifier := servertype.Classifier{
		Path:      layout.ServerTypeFile,
		Whitelist: servertype.NewWhitelist("eniq_stats", "stats_coordinator"),
	}

	p := &backlogProbe{
		serverProbe: &serverProbe{
			name:       BacklogName,
			serverType: backlogServerType,
			conditions: func() []gate.Condition {
				return []gate.Condition{serverTypeCondition(classifier, logger)}
			},
			identity:    fixedIdentity(backlogServerType),
			description: fixedDescription(backlogServerDescription),
			logger:      logger,
		},
		discoverer: servicediscovery.Discoverer{
			Command: process.ExecutionConfig{
				ExecutablePath: pfexec,
				Args:           []string{BacklogScript, "-function", activeInterfacesQuery},
			},
			Runner:          layout.Runner,
			ServiceType:     backlogServiceType,
			Description:     backlogServiceDescription,
			BaseMeasurement: backlogMeasurementConfig(),
			IdentityOption:  interfaceNameOption,
		},
	}
	p.serverProbe.trees = p.trees
	return p
}

func NewBacklog(logger logging.Logger) probe.Probe {
	return NewBacklogWithLayout(DefaultBacklogLayout(), logger)
}

func backlogMeasurementConfig() resource.ConfigTree {
	return resource.BuildMeasurementConfig(
		resource.String("script", BacklogScript),
		resource.Int("timeout", backlogTimeout),
	)
}

func (p *backlogProbe) trees() resource.Trees {
	trees := resource.DefaultTrees()
	trees.Measurement = backlogMeasurementConfig()
	return trees
}

// DiscoverServices lists the active interfaces through the backlog script.
func (p *backlogProbe) DiscoverServices(ctx context.Context, host probe.HostContext) ([]*resource.Service, bool) {
	services, ok := p.discoverer.Discover(ctx, p.logger)
	if !ok {
		p.logger.Debugf("No active interfaces found")
		return nil, false
	}
	p.logger.Debugf("%d services of type %s added to server resource %s", len(services), backlogServiceType, backlogServerType)
	return services, true
}
