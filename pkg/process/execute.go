package process

import (
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/core-tools/hsu-autodiscovery/pkg/errors"
	"github.com/core-tools/hsu-autodiscovery/pkg/logging"
)

// ExecutionConfig describes a one-shot external command. The child inherits
// the environment and working directory of the agent.
type ExecutionConfig struct {
	ExecutablePath string        `yaml:"executable_path"`
	Args           []string      `yaml:"args,omitempty"`
	Timeout        time.Duration `yaml:"timeout,omitempty"`    // zero means wait as long as the child runs
	WaitDelay      time.Duration `yaml:"wait_delay,omitempty"` // after a kill, how long to wait for pipes to close
}

// Execution is a running child whose standard output is being consumed.
// Stdout must be read to EOF before Wait is called.
type Execution struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	ctx    context.Context
	cancel context.CancelFunc
	id     string
}

// Start spawns the command and returns its standard output stream. Standard
// error is discarded.
func Start(ctx context.Context, execution ExecutionConfig, id string, logger logging.Logger) (*Execution, error) {
	if ctx == nil {
		return nil, errors.NewValidationError("context cannot be nil", nil).WithContext("id", id)
	}

	if err := ValidateExecutionConfig(execution); err != nil {
		logger.Errorf("Execution configuration validation failed, id: %s, error: %v", id, err)
		return nil, errors.NewValidationError("invalid execution configuration", err).WithContext("id", id)
	}

	cancel := context.CancelFunc(func() {})
	if execution.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, execution.Timeout)
	}

	cmd := exec.CommandContext(ctx, execution.ExecutablePath, execution.Args...)
	setupProcessAttributes(cmd)
	cmd.WaitDelay = execution.WaitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, errors.NewProcessError("failed to create stdout pipe", err).WithContext("id", id).WithContext("executable_path", execution.ExecutablePath)
	}

	logger.Debugf("Executing command, id: %s, executable path: '%s', args: %v", id, execution.ExecutablePath, execution.Args)

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, errors.NewProcessError("failed to start the process", err).WithContext("id", id).WithContext("executable_path", execution.ExecutablePath)
	}

	logger.Debugf("Started command, id: %s, PID: %d", id, cmd.Process.Pid)

	return &Execution{
		cmd:    cmd,
		stdout: stdout,
		ctx:    ctx,
		cancel: cancel,
		id:     id,
	}, nil
}

func (e *Execution) Read(p []byte) (int, error) {
	return e.stdout.Read(p)
}

// Wait reaps the child and reports how it ended: nil on a zero exit status,
// a timeout error when the deadline killed it, a process error otherwise.
func (e *Execution) Wait() error {
	defer e.cancel()

	err := e.cmd.Wait()
	if e.ctx.Err() == context.DeadlineExceeded {
		return errors.NewTimeoutError("command exceeded its timeout", err).WithContext("id", e.id)
	}
	if err != nil {
		exitCode := -1
		if e.cmd.ProcessState != nil {
			exitCode = e.cmd.ProcessState.ExitCode()
		}
		return errors.NewProcessError("command did not exit cleanly", err).WithContext("id", e.id).WithContext("exit_code", exitCode)
	}
	return nil
}

// ExitCode is valid after Wait; -1 when the child was killed by a signal.
func (e *Execution) ExitCode() int {
	if e.cmd.ProcessState == nil {
		return -1
	}
	return e.cmd.ProcessState.ExitCode()
}
