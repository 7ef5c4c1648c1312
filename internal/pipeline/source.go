package pipeline

import "github.com/pranshuparmar/lsport/pkg/model"

// SocketSource provides the kernel TCP socket tables.
type SocketSource interface {
	TCP4() ([]model.Socket, error)
	TCP6() ([]model.Socket, error)
}

// ProcessSource lists every process visible right now.
type ProcessSource interface {
	ListProcesses() ([]ProcessHandle, error)
}

// ProcessHandle gives access to one process. Every accessor may fail
// independently, typically because the process exited or is not readable.
type ProcessHandle interface {
	PID() int
	FileDescriptors() ([]model.FDEntry, error)
	CommandName() (string, error)
	CommandLine() ([]string, error)
	WorkingDirectory() (string, error)
	OwnerUID() (int, error)
}

// UserDirectory resolves numeric user ids to names.
type UserDirectory interface {
	LookupUser(uid int) (string, bool)
}
