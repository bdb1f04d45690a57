//go:build !unix

package driver

import (
	"os/exec"
	"syscall"
)

// setProcessGroup is a no-op on non-unix platforms: there is no process
// group concept to join, so the child is left with its default attributes.
func setProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(pid int, sig syscall.Signal) {}
