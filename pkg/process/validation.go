package process

import (
	"os"

	"github.com/core-tools/hsu-autodiscovery/pkg/errors"
)

// ValidateExecutionConfig checks the command before anything is spawned.
// Unlike a supervisor, discovery never makes a file executable on its own.
func ValidateExecutionConfig(config ExecutionConfig) error {
	if config.ExecutablePath == "" {
		return errors.NewValidationError("executable path is required", nil)
	}

	info, err := os.Stat(config.ExecutablePath)
	if os.IsNotExist(err) {
		return errors.NewNotFoundError("executable not found: "+config.ExecutablePath, err)
	}
	if err != nil {
		return errors.NewIOError("executable not accessible: "+config.ExecutablePath, err)
	}
	if info.IsDir() {
		return errors.NewValidationError("executable path is a directory: "+config.ExecutablePath, nil)
	}

	if config.Timeout < 0 {
		return errors.NewValidationError("timeout cannot be negative", nil)
	}

	if config.WaitDelay < 0 {
		return errors.NewValidationError("wait delay cannot be negative", nil)
	}

	return nil
}
