//go:build windows

package process

import "os/exec"

func setupProcessAttributes(cmd *exec.Cmd) {}
