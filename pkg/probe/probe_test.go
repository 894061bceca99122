package probe

import (
	"context"
	"testing"

	"github.com/core-tools/hsu-autodiscovery/pkg/resource"

	"github.com/stretchr/testify/assert"
)

type staticProbe struct {
	Base
	found bool
}

func (p staticProbe) Name() string { return "static" }

func (p staticProbe) DiscoverServer(ctx context.Context, host HostContext) (*resource.Server, bool) {
	if !p.found {
		return nil, false
	}
	return &resource.Server{Name: host.PlatformName + " static", Config: p.Trees()}, true
}

func TestBaseDefaults(t *testing.T) {
	var p Probe = staticProbe{found: true}

	services, ok := p.DiscoverServices(context.Background(), HostContext{})
	assert.False(t, ok)
	assert.Nil(t, services)

	server, ok := p.DiscoverServer(context.Background(), HostContext{PlatformName: "eniqs"})
	assert.True(t, ok)
	assert.Equal(t, "eniqs static", server.Name)
	assert.Equal(t, resource.DefaultTrees(), server.Config)
}
