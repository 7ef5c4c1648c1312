//go:build !linux

package proc

import (
	"github.com/pranshuparmar/lsport/internal/pipeline"
	"github.com/pranshuparmar/lsport/pkg/model"
)

type FS struct{}

func NewFS(string) (*FS, error) {
	return nil, ErrUnsupported
}

func (*FS) TCP4() ([]model.Socket, error) { return nil, ErrUnsupported }
func (*FS) TCP6() ([]model.Socket, error) { return nil, ErrUnsupported }

func (*FS) ListProcesses() ([]pipeline.ProcessHandle, error) { return nil, ErrUnsupported }
