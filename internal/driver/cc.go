package driver

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/frankischilling/bcc/internal/config"
)

// resolveCC picks the downstream C compiler binary: $CC if set, else "cc",
// matching the conventional Unix toolchain override.
func resolveCC(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv("CC"); v != "" {
		return v
	}
	return "cc"
}

// ccVersion runs `cc -dumpversion` and trims the result to a bare version
// string ("11.4.0"), the GCC/Clang-compatible convention.
func ccVersion(cc string) (string, error) {
	out, err := exec.Command(cc, "-dumpversion").Output()
	if err != nil {
		return "", fmt.Errorf("could not determine %s version: %w", cc, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// checkCCMinVersion enforces --cc-min-version (or its config-file default)
// against the downstream compiler's reported version, returning a tooling
// error (never a two-letter diagnostic) on failure, per SPEC_FULL.md §7.1.
func checkCCMinVersion(cc, min string) error {
	if min == "" {
		return nil
	}
	reported, err := ccVersion(cc)
	if err != nil {
		return err
	}
	if !config.MeetsMinVersion(reported, min) {
		return fmt.Errorf("%s reports version %s, which is older than the required minimum %s", cc, reported, min)
	}
	return nil
}

// runCC invokes the downstream compiler with args, running it in its own
// process group (§5.1) and forwarding SIGINT/SIGTERM to that group so an
// interrupted build doesn't leave an orphaned child.
func runCC(cc string, args []string, stdout, stderr io.Writer) (int, error) {
	cmd := exec.Command(cc, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return 1, fmt.Errorf("could not start %s: %w", cc, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case sig := <-sigCh:
		if s, ok := sig.(syscall.Signal); ok {
			killProcessGroup(cmd.Process.Pid, s)
		}
		<-done
		return 1, fmt.Errorf("%s interrupted", cc)
	case err := <-done:
		signal.Stop(sigCh)
		if err == nil {
			return 0, nil
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), err
		}
		return 1, err
	}
}
