//go:build !unix

package tui

import (
	"fmt"
	"runtime"
)

func signalProcess(pid int, action actionKind) error {
	return fmt.Errorf("signalling PID %d is not supported on %s", pid, runtime.GOOS)
}
