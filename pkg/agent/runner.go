// Package agent stands in for the monitoring host: it drives the probes
// through discovery cycles and reports what they found.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/core-tools/hsu-autodiscovery/pkg/errors"
	"github.com/core-tools/hsu-autodiscovery/pkg/logging"
	"github.com/core-tools/hsu-autodiscovery/pkg/metrics"
	"github.com/core-tools/hsu-autodiscovery/pkg/probe"
	"github.com/core-tools/hsu-autodiscovery/pkg/probes"
)

type CycleOptions struct {
	// Services also runs DiscoverServices for every probe whose server was found.
	Services bool
}

type RunnerOptions struct {
	Probes  []probe.Probe
	Host    probe.HostContext
	Metrics *metrics.Collector // optional
}

// Runner calls the probes one after another; a cycle never runs two probes at
// once and never retries a probe within a cycle.
type Runner struct {
	probes  []probe.Probe
	host    probe.HostContext
	metrics *metrics.Collector
	logger  logging.Logger
	now     func() time.Time
}

func NewRunner(options RunnerOptions, logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Runner{
		probes:  options.Probes,
		host:    options.Host,
		metrics: options.Metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// SelectProbes builds the enabled built-in probes in registry order. A
// non-empty only list further restricts them to the names given.
func SelectProbes(config *Config, only []string, logger logging.Logger) ([]probe.Probe, error) {
	if config == nil {
		return nil, errors.NewValidationError("configuration cannot be nil", nil)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		if !probes.IsKnown(name) {
			return nil, errors.NewValidationError(fmt.Sprintf("unknown probe: %s", name), nil).
				WithContext("known_probes", probes.Names())
		}
		wanted[name] = true
	}

	var selected []probe.Probe
	for _, name := range probes.Names() {
		if len(wanted) > 0 && !wanted[name] {
			continue
		}
		if !config.IsProbeEnabled(name) {
			logger.Infof("Skipping disabled probe, name: %s", name)
			continue
		}
		p, _ := probes.ByName(name, logger)
		selected = append(selected, p)
	}
	return selected, nil
}

// RunCycle runs every probe once. On cancellation the probes reached so far
// are reported together with a timeout error.
func (r *Runner) RunCycle(ctx context.Context, options CycleOptions) (*Report, error) {
	start := r.now()
	report := &Report{
		Platform: r.host.PlatformName,
		Probes:   make([]ProbeReport, 0, len(r.probes)),
	}

	r.logger.Debugf("Discovery cycle starting, probes: %d, services: %t", len(r.probes), options.Services)

	for _, p := range r.probes {
		if err := ctx.Err(); err != nil {
			return report, errors.NewTimeoutError("discovery cycle interrupted", err).
				WithContext("completed_probes", len(report.Probes))
		}
		report.Probes = append(report.Probes, r.runProbe(ctx, p, options))
	}

	completed := r.now()
	if r.metrics != nil {
		r.metrics.RecordCycle(completed.Sub(start), completed)
	}

	r.logger.Infof("Discovery cycle finished, servers found: %d of %d", report.FoundCount(), len(report.Probes))
	return report, nil
}

func (r *Runner) runProbe(ctx context.Context, p probe.Probe, options CycleOptions) ProbeReport {
	result := ProbeReport{Name: p.Name()}

	server, found := p.DiscoverServer(ctx, r.host)
	if r.metrics != nil {
		r.metrics.RecordDiscovery(p.Name(), found)
	}
	if !found {
		r.logger.Debugf("Probe %s found nothing", p.Name())
		if r.metrics != nil {
			r.metrics.RecordServices(p.Name(), 0)
		}
		return result
	}

	result.Found = true
	result.Server = server
	r.logger.Infof("Probe %s found server %s", p.Name(), server.Name)

	if options.Services {
		if services, ok := p.DiscoverServices(ctx, r.host); ok {
			result.Services = services
			r.logger.Infof("Probe %s found %d services", p.Name(), len(services))
		}
	}
	if r.metrics != nil {
		r.metrics.RecordServices(p.Name(), len(result.Services))
	}
	return result
}

// Run repeats RunCycle every interval until ctx is done, handing each report
// to sink. A zero interval runs exactly one cycle.
func (r *Runner) Run(ctx context.Context, interval time.Duration, options CycleOptions, sink func(*Report) error) error {
	if interval < 0 {
		return errors.NewValidationError("interval cannot be negative", nil)
	}

	for {
		report, err := r.RunCycle(ctx, options)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Infof("Discovery stopped: %v", err)
				return nil
			}
			return err
		}
		if sink != nil {
			if err := sink(report); err != nil {
				return err
			}
		}

		if interval == 0 {
			return nil
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Infof("Discovery stopped")
			return nil
		case <-timer.C:
		}
	}
}
