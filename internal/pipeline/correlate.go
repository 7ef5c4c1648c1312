package pipeline

import (
	"strings"

	"github.com/pranshuparmar/lsport/internal/services"
	"github.com/pranshuparmar/lsport/pkg/model"
	"github.com/sirupsen/logrus"
)

// Enricher supplies the per-record lookups Correlate needs.
type Enricher struct {
	Processes map[int]ProcessHandle
	Users     UserDirectory
	Registry  *services.Registry
	Log       logrus.FieldLogger
}

// Correlate joins listening sockets with their owning processes.
//
// Non-LISTEN sockets are ignored. A socket whose inode is not in index is
// dropped. Records are unique per (port, pid); the first socket seen for a
// pair wins, so the IPv4 entry of a dual-stack bind is the one kept when
// sockets lists IPv4 before IPv6. Output preserves input order.
func Correlate(sockets []model.Socket, index model.InodeIndex, e Enricher) []model.PortInfo {
	log := orDiscard(e.Log)

	var ports []model.PortInfo
	seen := make(map[model.PortKey]bool)
	dropped := 0

	for _, s := range sockets {
		if !s.Listening() {
			continue
		}

		pid, ok := index[s.Inode]
		if !ok {
			dropped++
			continue
		}

		key := model.PortKey{Port: s.Port, PID: pid}
		if seen[key] {
			continue
		}
		seen[key] = true

		info := model.PortInfo{
			Port:       s.Port,
			Inode:      s.Inode,
			IPv6:       s.IPv6,
			Host:       s.Address,
			PID:        pid,
			Privileged: model.IsPrivileged(s.Port),
		}
		if svc, ok := e.Registry.Lookup(s.Port, "tcp"); ok {
			info.Service = svc.Name
		}

		if p, ok := e.Processes[pid]; ok {
			enrichProcess(&info, p, e.Users, log.WithField("pid", pid))
		} else {
			log.WithField("pid", pid).Debug("owning process missing from snapshot")
		}

		ports = append(ports, info)
	}

	if dropped > 0 {
		log.WithField("count", dropped).Debug("dropped listening sockets with no owning process")
	}
	return ports
}

// enrichProcess fills the process fields of info. Each failed read leaves
// only its own field empty.
func enrichProcess(info *model.PortInfo, p ProcessHandle, users UserDirectory, log logrus.FieldLogger) {
	if comm, err := p.CommandName(); err == nil {
		info.Process = comm
	} else {
		log.WithError(err).Debug("read command name")
	}

	if args, err := p.CommandLine(); err == nil {
		info.Command = strings.Join(args, " ")
	} else {
		log.WithError(err).Debug("read command line")
	}

	if cwd, err := p.WorkingDirectory(); err == nil {
		info.Cwd = cwd
	} else {
		log.WithError(err).Debug("read working directory")
	}

	uid, err := p.OwnerUID()
	if err != nil {
		log.WithError(err).Debug("read owner uid")
		return
	}
	if users == nil {
		return
	}
	if name, ok := users.LookupUser(uid); ok {
		info.User = name
	}
}
