package app

import (
	"errors"
	"fmt"

	"github.com/pranshuparmar/lsport/internal/pipeline"
	"github.com/pranshuparmar/lsport/internal/proc"
	"github.com/pranshuparmar/lsport/internal/services"
	"github.com/pranshuparmar/lsport/internal/snapshot"
	"github.com/pranshuparmar/lsport/pkg/model"
	"github.com/sirupsen/logrus"
)

var ErrUnknownMethod = errors.New("unknown scan method")

const (
	methodLocal    = "local"
	methodSnapshot = "snapshot"
)

// scanner runs the pipeline against the sources --method selected.
type scanner struct {
	sockets   pipeline.SocketSource
	processes pipeline.ProcessSource
	users     func() pipeline.UserDirectory
	registry  *services.Registry
	log       logrus.FieldLogger
}

// Scan is safe to call repeatedly; the interactive view calls it on every
// refresh.
func (s *scanner) Scan() ([]model.PortInfo, error) {
	return pipeline.ListeningPorts(pipeline.ScanConfig{
		Sockets:   s.sockets,
		Processes: s.processes,
		Users:     s.users(),
		Registry:  s.registry,
		Log:       s.log,
	})
}

func (o *options) newScanner(log logrus.FieldLogger) (*scanner, error) {
	registry, err := o.registry(log)
	if err != nil {
		return nil, err
	}

	s := &scanner{registry: registry, log: log}
	switch o.method {
	case methodLocal, "":
		fs, err := proc.NewFS(o.procRoot)
		if err != nil {
			return nil, err
		}
		s.sockets, s.processes = fs, fs
		// fresh cache per scan so renamed accounts show up on refresh
		s.users = func() pipeline.UserDirectory { return proc.NewUsers() }
	case methodSnapshot:
		if o.snapshot == "" {
			return nil, fmt.Errorf("--method %s needs --snapshot PATH", methodSnapshot)
		}
		snap, err := snapshot.LoadFile(o.snapshot)
		if err != nil {
			return nil, err
		}
		log.WithField("host", snap.Host).WithField("captured", snap.Captured).Debug("loaded snapshot")
		s.sockets, s.processes = snap, snap
		s.users = func() pipeline.UserDirectory { return snap }
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownMethod, o.method, methodLocal, methodSnapshot)
	}
	return s, nil
}

func (o *options) registry(log logrus.FieldLogger) (*services.Registry, error) {
	if o.servicesFile == "" {
		return services.Default(), nil
	}
	reg, err := services.Load(o.servicesFile)
	if err != nil {
		return nil, err
	}
	if n := reg.Skipped(); n > 0 {
		log.WithField("path", o.servicesFile).WithField("skipped", n).Warn("skipped malformed service lines")
	}
	return reg, nil
}
