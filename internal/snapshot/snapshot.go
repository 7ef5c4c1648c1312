// Package snapshot records a scan's raw inputs to a JSON document and serves
// them back through the pipeline's source interfaces.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/pranshuparmar/lsport/internal/pipeline"
	"github.com/pranshuparmar/lsport/pkg/model"
)

// ErrNotCaptured is returned by a recorded process for a field that could
// not be read at capture time.
var ErrNotCaptured = errors.New("not captured")

// Snapshot is everything one scan reads from the host.
type Snapshot struct {
	Host      string            `json:"host,omitempty"`
	Captured  time.Time         `json:"captured"`
	IPv4      []model.Socket    `json:"tcp4"`
	IPv6      []model.Socket    `json:"tcp6"`
	Processes []Process         `json:"processes"`
	Users     map[string]string `json:"users,omitempty"`
}

// Process is a recorded process. The *Err fields carry the read error seen
// at capture time; when set, the matching value is ignored.
type Process struct {
	ID      int             `json:"pid"`
	FDs     []model.FDEntry `json:"fds,omitempty"`
	FDErr   string          `json:"fds_error,omitempty"`
	Comm    string          `json:"comm,omitempty"`
	CommErr string          `json:"comm_error,omitempty"`
	Cmdline []string        `json:"cmdline,omitempty"`
	CmdErr  string          `json:"cmdline_error,omitempty"`
	Cwd     string          `json:"cwd,omitempty"`
	CwdErr  string          `json:"cwd_error,omitempty"`
	UID     int             `json:"uid"`
	UIDErr  string          `json:"uid_error,omitempty"`
}

// Capture reads the sources once. It fails where a live scan would fail.
func Capture(sockets pipeline.SocketSource, procs pipeline.ProcessSource, users pipeline.UserDirectory) (*Snapshot, error) {
	tcp4, err := sockets.TCP4()
	if err != nil {
		return nil, fmt.Errorf("read tcp table: %w", err)
	}
	tcp6, err := sockets.TCP6()
	if err != nil {
		return nil, fmt.Errorf("read tcp6 table: %w", err)
	}
	handles, err := procs.ListProcesses()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	snap := &Snapshot{
		Captured: time.Now().UTC(),
		IPv4:     tcp4,
		IPv6:     tcp6,
		Users:    make(map[string]string),
	}
	if host, err := os.Hostname(); err == nil {
		snap.Host = host
	}

	for _, h := range handles {
		p := Process{ID: h.PID()}

		if fds, err := h.FileDescriptors(); err != nil {
			p.FDErr = err.Error()
		} else {
			p.FDs = fds
		}
		if comm, err := h.CommandName(); err != nil {
			p.CommErr = err.Error()
		} else {
			p.Comm = comm
		}
		if args, err := h.CommandLine(); err != nil {
			p.CmdErr = err.Error()
		} else {
			p.Cmdline = args
		}
		if cwd, err := h.WorkingDirectory(); err != nil {
			p.CwdErr = err.Error()
		} else {
			p.Cwd = cwd
		}
		if uid, err := h.OwnerUID(); err != nil {
			p.UIDErr = err.Error()
		} else {
			p.UID = uid
			if users != nil {
				if name, ok := users.LookupUser(uid); ok {
					snap.Users[strconv.Itoa(uid)] = name
				}
			}
		}

		snap.Processes = append(snap.Processes, p)
	}

	sort.Slice(snap.Processes, func(i, j int) bool {
		return snap.Processes[i].ID < snap.Processes[j].ID
	})
	return snap, nil
}

// Save writes the snapshot as indented JSON.
func (s *Snapshot) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func Load(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (s *Snapshot) TCP4() ([]model.Socket, error) {
	return s.IPv4, nil
}

func (s *Snapshot) TCP6() ([]model.Socket, error) {
	return s.IPv6, nil
}

func (s *Snapshot) ListProcesses() ([]pipeline.ProcessHandle, error) {
	handles := make([]pipeline.ProcessHandle, len(s.Processes))
	for i := range s.Processes {
		handles[i] = &s.Processes[i]
	}
	return handles, nil
}

func (s *Snapshot) LookupUser(uid int) (string, bool) {
	name, ok := s.Users[strconv.Itoa(uid)]
	return name, ok
}

func recorded(msg string) error {
	if msg == "" {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotCaptured, msg)
}

func (p *Process) PID() int {
	return p.ID
}

func (p *Process) FileDescriptors() ([]model.FDEntry, error) {
	return p.FDs, recorded(p.FDErr)
}

func (p *Process) CommandName() (string, error) {
	return p.Comm, recorded(p.CommErr)
}

func (p *Process) CommandLine() ([]string, error) {
	return p.Cmdline, recorded(p.CmdErr)
}

func (p *Process) WorkingDirectory() (string, error) {
	return p.Cwd, recorded(p.CwdErr)
}

func (p *Process) OwnerUID() (int, error) {
	return p.UID, recorded(p.UIDErr)
}
