package pipeline

import (
	"fmt"
	"io"

	"github.com/pranshuparmar/lsport/internal/services"
	"github.com/pranshuparmar/lsport/pkg/model"
	"github.com/sirupsen/logrus"
)

type ScanConfig struct {
	Sockets   SocketSource
	Processes ProcessSource
	Users     UserDirectory
	Registry  *services.Registry
	Log       logrus.FieldLogger
}

// ListeningPorts runs one full scan. It fails only when the socket tables or
// the process list cannot be read at all.
func ListeningPorts(cfg ScanConfig) ([]model.PortInfo, error) {
	tcp4, err := cfg.Sockets.TCP4()
	if err != nil {
		return nil, fmt.Errorf("read tcp table: %w", err)
	}
	tcp6, err := cfg.Sockets.TCP6()
	if err != nil {
		return nil, fmt.Errorf("read tcp6 table: %w", err)
	}

	procs, err := cfg.Processes.ListProcesses()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	index := BuildInodeIndex(procs, cfg.Log)

	byPID := make(map[int]ProcessHandle, len(procs))
	for _, p := range procs {
		byPID[p.PID()] = p
	}

	sockets := make([]model.Socket, 0, len(tcp4)+len(tcp6))
	sockets = append(sockets, tcp4...)
	sockets = append(sockets, tcp6...)

	return Correlate(sockets, index, Enricher{
		Processes: byPID,
		Users:     cfg.Users,
		Registry:  cfg.Registry,
		Log:       cfg.Log,
	}), nil
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func orDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return discard
	}
	return log
}
