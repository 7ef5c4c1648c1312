//go:build unix

package tui

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func signalProcess(pid int, action actionKind) error {
	sig := unix.SIGTERM
	if action == actionKill {
		sig = unix.SIGKILL
	}
	if err := unix.Kill(pid, sig); err != nil {
		return fmt.Errorf("signal %v to PID %d failed: %w", sig, pid, err)
	}
	return nil
}
