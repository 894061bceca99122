// Package probe defines the capability every auto-discovery probe offers the
// monitoring host.
package probe

import (
	"context"

	"github.com/core-tools/hsu-autodiscovery/pkg/resource"
)

// HostContext is what the host passes in on each discovery call.
type HostContext struct {
	PlatformName   string
	PlatformConfig resource.ConfigTree
}

// Probe detects one monitored component. A false second result means nothing
// to report and always comes with a nil value.
type Probe interface {
	Name() string
	DiscoverServer(ctx context.Context, host HostContext) (*resource.Server, bool)
	DiscoverServices(ctx context.Context, host HostContext) ([]*resource.Service, bool)
}

// Base carries the defaults shared by the probe family. Probes embed it and
// override what they need.
type Base struct{}

// Trees defers every option to the host.
func (Base) Trees() resource.Trees {
	return resource.DefaultTrees()
}

// DiscoverServices reports no dynamic sub-resources.
func (Base) DiscoverServices(ctx context.Context, host HostContext) ([]*resource.Service, bool) {
	return nil, false
}
