// Package metrics records what each discovery cycle found, in Prometheus
// format. Collectors live on their own registry so several agents (and tests)
// never share state.
package metrics

import (
	"time"

	"github.com/core-tools/hsu-autodiscovery/pkg/errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "autodiscovery"

const (
	ResultFound  = "found"
	ResultAbsent = "absent"
)

type Collector struct {
	registry *prometheus.Registry

	cycles        prometheus.Counter
	discoveries   *prometheus.CounterVec
	services      *prometheus.GaugeVec
	cycleDuration prometheus.Gauge
	lastCycle     prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total number of discovery cycles run",
		}),
		discoveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_discoveries_total",
			Help:      "Server discovery attempts by probe and result",
		}, []string{"probe", "result"}),
		services: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "services_discovered",
			Help:      "Services found by the probe in the last cycle",
		}, []string{"probe"}),
		cycleDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of the last discovery cycle",
		}),
		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time the last discovery cycle completed",
		}),
	}

	c.registry.MustRegister(c.cycles, c.discoveries, c.services, c.cycleDuration, c.lastCycle)
	return c
}

// Registry exposes the collectors for callers that serve or gather them.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordDiscovery counts one DiscoverServer call.
func (c *Collector) RecordDiscovery(probe string, found bool) {
	result := ResultAbsent
	if found {
		result = ResultFound
	}
	c.discoveries.WithLabelValues(probe, result).Inc()
}

// RecordServices sets the service count for probe; absence records zero.
func (c *Collector) RecordServices(probe string, count int) {
	c.services.WithLabelValues(probe).Set(float64(count))
}

func (c *Collector) RecordCycle(duration time.Duration, completed time.Time) {
	c.cycles.Inc()
	c.cycleDuration.Set(duration.Seconds())
	c.lastCycle.Set(float64(completed.Unix()))
}

// WriteTextfile writes every metric to path in the node exporter textfile
// format. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if path == "" {
		return errors.NewValidationError("metrics textfile path cannot be empty", nil)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.NewIOError("failed to write metrics textfile", err).WithContext("path", path)
	}
	return nil
}
