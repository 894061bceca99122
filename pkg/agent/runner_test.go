package agent

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/core-tools/hsu-autodiscovery/pkg/errors"
	"github.com/core-tools/hsu-autodiscovery/pkg/logging"
	"github.com/core-tools/hsu-autodiscovery/pkg/metrics"
	"github.com/core-tools/hsu-autodiscovery/pkg/probe"
	"github.com/core-tools/hsu-autodiscovery/pkg/probes"
	"github.com/core-tools/hsu-autodiscovery/pkg/resource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProbe struct {
	name     string
	server   *resource.Server
	services []*resource.Service

	serverCalls   int32
	servicesCalls int32
	lastHost      probe.HostContext
}

func (p *stubProbe) Name() string { return p.name }

func (p *stubProbe) DiscoverServer(ctx context.Context, host probe.HostContext) (*resource.Server, bool) {
	atomic.AddInt32(&p.serverCalls, 1)
	p.lastHost = host
	return p.server, p.server != nil
}

func (p *stubProbe) DiscoverServices(ctx context.Context, host probe.HostContext) ([]*resource.Service, bool) {
	atomic.AddInt32(&p.servicesCalls, 1)
	return p.services, len(p.services) > 0
}

func foundProbe(name string, services ...string) *stubProbe {
	p := &stubProbe{
		name: name,
		server: &resource.Server{
			Type: name, Name: name, InstallPath: name,
			Description: "test server", Config: resource.DefaultTrees(),
		},
	}
	for _, s := range services {
		p.services = append(p.services, resource.SynthesizeService("Interface", s, "test service", resource.BuildMeasurementConfig(), "interface_name"))
	}
	return p
}

func TestRunCycle(t *testing.T) {
	found := foundProbe("found", "eth0-up", "eth1-down")
	absent := &stubProbe{name: "absent"}
	collector := metrics.NewCollector()

	runner := NewRunner(RunnerOptions{
		Probes:  []probe.Probe{found, absent},
		Host:    probe.HostContext{PlatformName: "atrcx123"},
		Metrics: collector,
	}, logging.NewNopLogger())

	report, err := runner.RunCycle(context.Background(), CycleOptions{Services: true})

	require.NoError(t, err)
	assert.Equal(t, "atrcx123", report.Platform)
	require.Len(t, report.Probes, 2)

	assert.Equal(t, "found", report.Probes[0].Name)
	assert.True(t, report.Probes[0].Found)
	assert.Same(t, found.server, report.Probes[0].Server)
	assert.Len(t, report.Probes[0].Services, 2)

	assert.Equal(t, "absent", report.Probes[1].Name)
	assert.False(t, report.Probes[1].Found)
	assert.Nil(t, report.Probes[1].Server)
	assert.Empty(t, report.Probes[1].Services)

	assert.Equal(t, 1, report.FoundCount())
	assert.Equal(t, "atrcx123", found.lastHost.PlatformName)
	assert.Equal(t, int32(0), atomic.LoadInt32(&absent.servicesCalls), "services are only discovered under a found server")
}

func TestRunCycleWithoutServices(t *testing.T) {
	found := foundProbe("found", "eth0-up")
	runner := NewRunner(RunnerOptions{Probes: []probe.Probe{found}}, nil)

	report, err := runner.RunCycle(context.Background(), CycleOptions{})

	require.NoError(t, err)
	assert.True(t, report.Probes[0].Found)
	assert.Nil(t, report.Probes[0].Services)
	assert.Equal(t, int32(0), atomic.LoadInt32(&found.servicesCalls))
}

func TestRunCycleCancelled(t *testing.T) {
	first := foundProbe("first")
	ctx, cancel := context.WithCancel(context.Background())
	second := &cancellingProbe{stubProbe: foundProbe("second"), cancel: cancel}
	third := foundProbe("third")

	runner := NewRunner(RunnerOptions{Probes: []probe.Probe{first, second, third}}, nil)
	report, err := runner.RunCycle(ctx, CycleOptions{})

	require.Error(t, err)
	assert.True(t, errors.IsTimeoutError(err))
	assert.Len(t, report.Probes, 2)
	assert.Equal(t, int32(0), atomic.LoadInt32(&third.serverCalls))
}

type cancellingProbe struct {
	*stubProbe
	cancel context.CancelFunc
}

func (p *cancellingProbe) DiscoverServer(ctx context.Context, host probe.HostContext) (*resource.Server, bool) {
	defer p.cancel()
	return p.stubProbe.DiscoverServer(ctx, host)
}

func TestRunSingleCycle(t *testing.T) {
	p := foundProbe("found")
	runner := NewRunner(RunnerOptions{Probes: []probe.Probe{p}}, nil)

	var reports []*Report
	err := runner.Run(context.Background(), 0, CycleOptions{}, func(r *Report) error {
		reports = append(reports, r)
		return nil
	})

	require.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.serverCalls))
}

func TestRunRepeatsUntilCancelled(t *testing.T) {
	p := foundProbe("found")
	runner := NewRunner(RunnerOptions{Probes: []probe.Probe{p}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cycles := 0
	err := runner.Run(ctx, time.Millisecond, CycleOptions{}, func(r *Report) error {
		cycles++
		if cycles == 3 {
			cancel()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, cycles)
}

func TestRunStopsOnSinkError(t *testing.T) {
	runner := NewRunner(RunnerOptions{Probes: []probe.Probe{foundProbe("found")}}, nil)

	err := runner.Run(context.Background(), time.Millisecond, CycleOptions{}, func(*Report) error {
		return errors.NewIOError("disk full", nil)
	})

	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
}

func TestRunRejectsNegativeInterval(t *testing.T) {
	runner := NewRunner(RunnerOptions{}, nil)

	err := runner.Run(context.Background(), -time.Second, CycleOptions{}, nil)

	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestSelectProbes(t *testing.T) {
	disabled := false
	config := DefaultConfig()
	config.Probes = []ProbeConfig{{Name: probes.EESgehName, Enabled: &disabled}}

	selected, err := SelectProbes(config, nil, nil)
	require.NoError(t, err)
	names := probeNames(selected)
	assert.Len(t, names, len(probes.Names())-1)
	assert.NotContains(t, names, probes.EESgehName)
	assert.Equal(t, probes.BacklogName, names[0])

	selected, err = SelectProbes(config, []string{probes.RollingSnapshotName, probes.BacklogName}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{probes.BacklogName, probes.RollingSnapshotName}, probeNames(selected))

	selected, err = SelectProbes(config, []string{probes.EESgehName}, nil)
	require.NoError(t, err)
	assert.Empty(t, selected)

	_, err = SelectProbes(config, []string{"frop"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, err = SelectProbes(nil, nil, nil)
	assert.Error(t, err)
}

func probeNames(list []probe.Probe) []string {
	names := make([]string, 0, len(list))
	for _, p := range list {
		names = append(names, p.Name())
	}
	return names
}
