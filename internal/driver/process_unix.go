//go:build unix

package driver

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcessGroup puts cmd in its own process group so a SIGINT/SIGTERM
// delivered to the driver can be forwarded to the whole group (the
// downstream compiler may itself fork helper processes), instead of
// leaving them orphaned when the driver exits. Mirrors the teacher's
// cli/main.go os/signal + syscall pattern, generalized from "cancel a
// context" to "own a process group" since the driver's child is a
// subprocess, not a goroutine.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends sig to the process group led by pid.
func killProcessGroup(pid int, sig syscall.Signal) {
	_ = unix.Kill(-pid, unix.Signal(sig))
}
