package pipeline

import (
	"github.com/pranshuparmar/lsport/pkg/model"
	"github.com/sirupsen/logrus"
)

// BuildInodeIndex maps every socket inode held by procs to its PID.
// Processes whose descriptor table cannot be read contribute nothing.
// If two processes claim the same inode, the later one in procs wins.
func BuildInodeIndex(procs []ProcessHandle, log logrus.FieldLogger) model.InodeIndex {
	log = orDiscard(log)
	index := make(model.InodeIndex)

	for _, p := range procs {
		fds, err := p.FileDescriptors()
		if err != nil {
			log.WithField("pid", p.PID()).WithError(err).Debug("skipping unreadable fd table")
			continue
		}
		for _, fd := range fds {
			if fd.Kind != model.FDSocket {
				continue
			}
			if prev, ok := index[fd.Inode]; ok && prev != p.PID() {
				log.WithFields(logrus.Fields{"inode": fd.Inode, "pid": p.PID(), "previous": prev}).
					Debug("socket inode claimed by more than one process")
			}
			index[fd.Inode] = p.PID()
		}
	}
	return index
}
