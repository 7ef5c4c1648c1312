//go:build linux

package proc

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pranshuparmar/lsport/internal/pipeline"
	"github.com/pranshuparmar/lsport/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tcpHeader = "  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode\n"

const tcpTable = tcpHeader +
	"   0: 00000000:0016 00000000:0000 0A 00000000:00000000 00:00000000 00000000     0        0 14365 1 0000000000000000 100 0 0 10 0\n" +
	"   1: 0100007F:1F90 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 2001 1 0000000000000000 100 0 0 10 0\n" +
	"   2: 0100007F:A2B4 0100007F:1F90 01 00000000:00000000 00:00000000 00000000  1000        0 2002 1 0000000000000000 20 4 30 10 -1\n" +
	"   3: garbage\n"

const tcp6Table = tcpHeader +
	"   0: 00000000000000000000000000000000:0016 00000000000000000000000000000000:0000 0A 00000000:00000000 00:00000000 00000000     0        0 14367 1 0000000000000000 100 0 0 10 0\n" +
	"   1: 00000000000000000000000001000000:0277 00000000000000000000000000000000:0000 0A 00000000:00000000 00:00000000 00000000     0        0 3001 1 0000000000000000 100 0 0 10 0\n"

type fakeProcfs struct {
	t    *testing.T
	root string
}

func newFakeProcfs(t *testing.T) *fakeProcfs {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "net"), 0o755))
	return &fakeProcfs{t: t, root: root}
}

func (f *fakeProcfs) write(rel, content string) {
	path := filepath.Join(f.root, rel)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0o644))
}

func (f *fakeProcfs) link(rel, target string) {
	path := filepath.Join(f.root, rel)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(f.t, os.Symlink(target, path))
}

func (f *fakeProcfs) fs() *FS {
	fs, err := NewFS(f.root)
	require.NoError(f.t, err)
	return fs
}

func TestParseSocketLine(t *testing.T) {
	s, err := parseSocketLine("   1: 0100007F:1F90 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 2001 1 0000000000000000 100 0 0 10 0", false)
	require.NoError(t, err)
	assert.Equal(t, model.Socket{Port: 8080, Address: "127.0.0.1", State: model.StateListen, Inode: 2001}, s)

	_, err = parseSocketLine("   3: garbage", false)
	assert.Error(t, err)
}

func TestParseAddrIPv6(t *testing.T) {
	addr, port, err := parseAddr("00000000000000000000000001000000:0277", true)
	require.NoError(t, err)
	assert.Equal(t, "::1", addr)
	assert.Equal(t, uint16(631), port)

	addr, _, err = parseAddr("00000000000000000000000000000000:0016", true)
	require.NoError(t, err)
	assert.Equal(t, "::", addr)

	_, _, err = parseAddr("0000:0016", true)
	assert.Error(t, err)
}

func TestParseState(t *testing.T) {
	st, err := parseState("0A")
	require.NoError(t, err)
	assert.Equal(t, model.StateListen, st)

	st, err = parseState("FF")
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN (FF)", st.String())

	_, err = parseState("zz")
	assert.Error(t, err)
}

func TestSocketTables(t *testing.T) {
	p := newFakeProcfs(t)
	p.write("net/tcp", tcpTable)
	p.write("net/tcp6", tcp6Table)
	fs := p.fs()

	tcp4, err := fs.TCP4()
	require.NoError(t, err)
	require.Len(t, tcp4, 3)
	assert.Equal(t, uint16(22), tcp4[0].Port)
	assert.Equal(t, "0.0.0.0", tcp4[0].Address)
	assert.Equal(t, model.StateEstablished, tcp4[2].State)

	tcp6, err := fs.TCP6()
	require.NoError(t, err)
	require.Len(t, tcp6, 2)
	assert.True(t, tcp6[0].IPv6)
	assert.Equal(t, uint64(3001), tcp6[1].Inode)
}

func TestSocketTablesMissing(t *testing.T) {
	fs := newFakeProcfs(t).fs()

	_, err := fs.TCP4()
	assert.Error(t, err)

	tcp6, err := fs.TCP6()
	assert.NoError(t, err)
	assert.Empty(t, tcp6)
}

func TestProcessHandles(t *testing.T) {
	p := newFakeProcfs(t)
	cwd := t.TempDir()

	p.write("42/stat", "42 (my (odd) daemon) S 1 42 42 0 -1 4194560 0 0 0 0 0 0 0 0 20 0 1 0 100 0 0\n")
	p.write("42/cmdline", "/usr/bin/daemon\x00--port\x008080\x00")
	p.write("42/status", "Name:\tdaemon\nUid:\t1000\t1000\t1000\t1000\nGid:\t1000\t1000\t1000\t1000\n")
	p.link("42/cwd", cwd)
	p.link("42/fd/0", "/dev/null")
	p.link("42/fd/3", "socket:[2001]")
	p.link("42/fd/4", "pipe:[77]")
	p.link("42/fd/5", "anon_inode:[eventfd]")

	p.write("7/stat", "7 (kworker/0:1) I 2 0 0 0 -1 0 0 0 0 0 0 0 0 0 20 0 1 0 5 0 0\n")
	p.write("7/cmdline", "")

	p.write("self/stat", "not a pid dir")
	p.write("uptime", "1.0 1.0\n")

	procs, err := p.fs().ListProcesses()
	require.NoError(t, err)
	require.Len(t, procs, 2)

	byPID := map[int]pipeline.ProcessHandle{}
	for _, h := range procs {
		byPID[h.PID()] = h
	}
	daemon := byPID[42]
	require.NotNil(t, daemon)

	comm, err := daemon.CommandName()
	require.NoError(t, err)
	assert.Equal(t, "my (odd) daemon", comm)

	args, err := daemon.CommandLine()
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/bin/daemon", "--port", "8080"}, args)

	dir, err := daemon.WorkingDirectory()
	require.NoError(t, err)
	assert.Equal(t, cwd, dir)

	uid, err := daemon.OwnerUID()
	require.NoError(t, err)
	assert.Equal(t, 1000, uid)

	fds, err := daemon.FileDescriptors()
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.FDEntry{
		{FD: 0, Kind: model.FDFile},
		{FD: 3, Kind: model.FDSocket, Inode: 2001},
		{FD: 4, Kind: model.FDOther},
		{FD: 5, Kind: model.FDOther},
	}, fds)

	kworker := byPID[7]
	require.NotNil(t, kworker)
	args, err = kworker.CommandLine()
	require.NoError(t, err)
	assert.Empty(t, args)

	_, err = kworker.FileDescriptors()
	assert.Error(t, err, "no fd directory")
	_, err = kworker.WorkingDirectory()
	assert.Error(t, err)
	_, err = kworker.OwnerUID()
	assert.Error(t, err)
}

func TestScanAgainstFakeProcfs(t *testing.T) {
	p := newFakeProcfs(t)
	p.write("net/tcp", tcpTable)
	p.write("net/tcp6", tcp6Table)

	p.write("100/stat", "100 (sshd) S 1 100 100 0 -1 0 0 0 0 0 0 0 0 0 20 0 1 0 100 0 0\n")
	p.write("100/cmdline", "sshd: /usr/sbin/sshd -D\x00")
	p.write("100/status", "Uid:\t0\t0\t0\t0\n")
	p.link("100/cwd", "/")
	p.link("100/fd/3", "socket:[14365]")
	p.link("100/fd/4", "socket:[14367]")

	p.write("200/stat", "200 (web) S 1 200 200 0 -1 0 0 0 0 0 0 0 0 0 20 0 1 0 100 0 0\n")
	p.link("200/fd/7", "socket:[2001]")

	fs := p.fs()
	ports, err := pipeline.ListeningPorts(pipeline.ScanConfig{
		Sockets:   fs,
		Processes: fs,
		Users:     stubUsers{0: "root"},
	})
	require.NoError(t, err)
	require.Len(t, ports, 2)

	assert.Equal(t, uint16(22), ports[0].Port)
	assert.Equal(t, 100, ports[0].PID)
	assert.Equal(t, uint64(14365), ports[0].Inode)
	assert.Equal(t, "root", ports[0].User)
	assert.Equal(t, "sshd: /usr/sbin/sshd -D", ports[0].Command)

	assert.Equal(t, uint16(8080), ports[1].Port)
	assert.Equal(t, 200, ports[1].PID)
	assert.Equal(t, "web", ports[1].Process)
	assert.Empty(t, ports[1].Cwd)
}

func TestNewFSRejectsMissingRoot(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

type stubUsers map[int]string

func (s stubUsers) LookupUser(uid int) (string, bool) {
	name, ok := s[uid]
	return name, ok
}

func TestUsersCachesLookups(t *testing.T) {
	calls := 0
	u := NewUsers()
	u.lookup = func(uid string) (*user.User, error) {
		calls++
		if uid == "0" {
			return &user.User{Uid: "0", Username: "root"}, nil
		}
		return nil, user.UnknownUserIdError(4242)
	}

	name, ok := u.LookupUser(0)
	assert.True(t, ok)
	assert.Equal(t, "root", name)
	_, _ = u.LookupUser(0)

	_, ok = u.LookupUser(4242)
	assert.False(t, ok)
	_, ok = u.LookupUser(4242)
	assert.False(t, ok)

	assert.Equal(t, 2, calls)
}

func TestClassifyLink(t *testing.T) {
	assert.Equal(t, model.FDSocket, classifyLink("socket:[1]").Kind)
	assert.Equal(t, model.FDOther, classifyLink("socket:[abc]").Kind)
	assert.Equal(t, model.FDFile, classifyLink("/var/log/syslog").Kind)
	assert.Equal(t, model.FDOther, classifyLink(strings.Repeat("x", 3)).Kind)
}
