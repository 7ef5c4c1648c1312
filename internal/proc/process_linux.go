//go:build linux

package proc

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pranshuparmar/lsport/pkg/model"
)

// Process reads /proc/<pid>/*. Every method is a fresh read.
type Process struct {
	fs  *FS
	pid int
}

func (p *Process) PID() int {
	return p.pid
}

func (p *Process) path(elem ...string) string {
	return filepath.Join(append([]string{p.fs.root, strconv.Itoa(p.pid)}, elem...)...)
}

// FileDescriptors lists the fd directory and classifies each link target.
// Descriptors closed between the listing and the readlink are skipped.
func (p *Process) FileDescriptors() ([]model.FDEntry, error) {
	fdPath := p.path("fd")
	entries, err := os.ReadDir(fdPath)
	if err != nil {
		return nil, err
	}

	fds := make([]model.FDEntry, 0, len(entries))
	for _, e := range entries {
		fd, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		link, err := os.Readlink(filepath.Join(fdPath, e.Name()))
		if err != nil {
			continue
		}
		entry := classifyLink(link)
		entry.FD = fd
		fds = append(fds, entry)
	}
	return fds, nil
}

func classifyLink(link string) model.FDEntry {
	if strings.HasPrefix(link, "socket:[") && strings.HasSuffix(link, "]") {
		raw := strings.TrimSuffix(strings.TrimPrefix(link, "socket:["), "]")
		if inode, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return model.FDEntry{Kind: model.FDSocket, Inode: inode}
		}
	}
	if strings.HasPrefix(link, "/") {
		return model.FDEntry{Kind: model.FDFile}
	}
	return model.FDEntry{Kind: model.FDOther}
}

// CommandName returns comm from /proc/<pid>/stat.
func (p *Process) CommandName() (string, error) {
	stat, err := os.ReadFile(p.path("stat"))
	if err != nil {
		return "", err
	}
	// stat format is evil, command is inside ()
	raw := string(stat)
	open := strings.Index(raw, "(")
	close := strings.LastIndex(raw, ")")
	if open == -1 || close == -1 || close <= open {
		return "", fmt.Errorf("invalid stat format for pid %d", p.pid)
	}
	return raw[open+1 : close], nil
}

// CommandLine returns argv. Kernel threads have an empty cmdline.
func (p *Process) CommandLine() ([]string, error) {
	data, err := os.ReadFile(p.path("cmdline"))
	if err != nil {
		return nil, err
	}
	data = []byte(strings.TrimRight(string(data), "\x00"))
	if len(data) == 0 {
		return nil, nil
	}
	return strings.Split(string(data), "\x00"), nil
}

func (p *Process) WorkingDirectory() (string, error) {
	return os.Readlink(p.path("cwd"))
}

// OwnerUID returns the real uid from the Uid: line of /proc/<pid>/status.
func (p *Process) OwnerUID() (int, error) {
	f, err := os.Open(p.path("status"))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Uid:") {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, "Uid:"))
		if len(fields) == 0 {
			break
		}
		return strconv.Atoi(fields[0])
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("no Uid line in status for pid %d", p.pid)
}
