// Package proc reads listening sockets and process state from the local
// kernel.
package proc

import "errors"

// DefaultRoot is where procfs is normally mounted.
const DefaultRoot = "/proc"

// ErrUnsupported is returned on platforms without procfs.
var ErrUnsupported = errors.New("local scanning is only supported on Linux")
