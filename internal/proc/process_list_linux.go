//go:build linux

package proc

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pranshuparmar/lsport/internal/pipeline"
)

// FS reads process and socket state from a procfs mount.
type FS struct {
	root string
}

// NewFS returns a reader rooted at root, usually DefaultRoot.
func NewFS(root string) (*FS, error) {
	if root == "" {
		root = DefaultRoot
	}
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("procfs: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("procfs: %s is not a directory", root)
	}
	return &FS{root: root}, nil
}

// ListProcesses returns a handle for every numeric entry under the root.
// Nothing is read from the processes themselves here; each handle reads
// lazily and a process that exits later only fails its own reads.
func (f *FS) ListProcesses() ([]pipeline.ProcessHandle, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.root, err)
	}

	processes := make([]pipeline.ProcessHandle, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		processes = append(processes, &Process{fs: f, pid: pid})
	}
	return processes, nil
}
