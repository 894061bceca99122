// Package servicediscovery turns the output of an external command into
// service resources, one per "<id> <state>" line.
package servicediscovery

import (
	"context"
	"io"

	"github.com/core-tools/hsu-autodiscovery/pkg/logging"
	"github.com/core-tools/hsu-autodiscovery/pkg/process"
	"github.com/core-tools/hsu-autodiscovery/pkg/resource"
)

// Stream is the standard output of a started command.
type Stream interface {
	io.Reader
	Wait() error
}

// Runner starts external commands.
type Runner interface {
	Start(ctx context.Context, execution process.ExecutionConfig) (Stream, error)
}

// ExecRunner spawns real child processes.
type ExecRunner struct {
	Logger logging.Logger
}

func (r ExecRunner) Start(ctx context.Context, execution process.ExecutionConfig) (Stream, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	started, err := process.Start(ctx, execution, execution.ExecutablePath, logger)
	if err != nil {
		return nil, err
	}
	return started, nil
}

// Discoverer runs one command per cycle and synthesizes a service for every
// parsed record.
type Discoverer struct {
	Command         process.ExecutionConfig
	Runner          Runner
	ServiceType     string
	Description     string
	BaseMeasurement resource.ConfigTree
	IdentityOption  string // measurement option carrying the service name

	// CheckExitStatus turns a non-zero exit into absence. Off by default:
	// only stdout decides the result.
	CheckExitStatus bool
}

// Discover returns the services found, or (nil, false) when there are none or
// the command could not be run.
func (d Discoverer) Discover(ctx context.Context, logger logging.Logger) ([]*resource.Service, bool) {
	if ctx == nil {
		ctx = context.Background()
	}

	runner := d.Runner
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}

	logger.Debugf("Executing command: %s %v", d.Command.ExecutablePath, d.Command.Args)

	stream, err := runner.Start(ctx, d.Command)
	if err != nil {
		logger.Errorf("Exception executing %s: %v", d.Command.ExecutablePath, err)
		return nil, false
	}

	records, dropped, readErr := ParseRecords(stream)
	if readErr != nil {
		logger.Errorf("Exception reading output of %s: %v", d.Command.ExecutablePath, readErr)
	}
	if dropped > 0 {
		logger.Debugf("Ignored %d malformed lines from %s", dropped, d.Command.ExecutablePath)
	}

	waitErr := stream.Wait()
	if waitErr != nil {
		logger.Debugf("Command %s ended with: %v", d.Command.ExecutablePath, waitErr)
		if d.CheckExitStatus {
			logger.Warnf("Discarding output of %s, command failed: %v", d.Command.ExecutablePath, waitErr)
			return nil, false
		}
	}

	if len(records) == 0 {
		return nil, false
	}

	services := make([]*resource.Service, 0, len(records))
	for _, record := range records {
		service := resource.SynthesizeService(d.ServiceType, record.Name(), d.Description, d.BaseMeasurement, d.IdentityOption)
		logger.Debugf("Service %s of type %s discovered", service.Name, d.ServiceType)
		services = append(services, service)
	}
	return services, true
}
