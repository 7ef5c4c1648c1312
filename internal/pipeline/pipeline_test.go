package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/pranshuparmar/lsport/internal/services"
	"github.com/pranshuparmar/lsport/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errGone = errors.New("process exited")

type fakeProc struct {
	pid     int
	fds     []model.FDEntry
	fdErr   error
	comm    string
	commErr error
	args    []string
	argsErr error
	cwd     string
	cwdErr  error
	uid     int
	uidErr  error
}

func (p fakeProc) PID() int                                  { return p.pid }
func (p fakeProc) FileDescriptors() ([]model.FDEntry, error) { return p.fds, p.fdErr }
func (p fakeProc) CommandName() (string, error)              { return p.comm, p.commErr }
func (p fakeProc) CommandLine() ([]string, error)            { return p.args, p.argsErr }
func (p fakeProc) WorkingDirectory() (string, error)         { return p.cwd, p.cwdErr }
func (p fakeProc) OwnerUID() (int, error)                    { return p.uid, p.uidErr }

type fakeSockets struct {
	tcp4, tcp6 []model.Socket
	err4, err6 error
}

func (f fakeSockets) TCP4() ([]model.Socket, error) { return f.tcp4, f.err4 }
func (f fakeSockets) TCP6() ([]model.Socket, error) { return f.tcp6, f.err6 }

type fakeProcesses struct {
	procs []ProcessHandle
	err   error
}

func (f fakeProcesses) ListProcesses() ([]ProcessHandle, error) { return f.procs, f.err }

type fakeUsers map[int]string

func (u fakeUsers) LookupUser(uid int) (string, bool) {
	name, ok := u[uid]
	return name, ok
}

func sock(inode uint64) model.FDEntry {
	return model.FDEntry{Kind: model.FDSocket, Inode: inode}
}

func listen(port uint16, inode uint64) model.Socket {
	return model.Socket{Port: port, Address: "0.0.0.0", State: model.StateListen, Inode: inode}
}

func testRegistry() *services.Registry {
	return services.Parse(strings.NewReader("ssh 22/tcp 0.1\nhttp 80/tcp 0.5 WWW\n"))
}

func TestBuildInodeIndex(t *testing.T) {
	procs := []ProcessHandle{
		fakeProc{pid: 1, fds: []model.FDEntry{sock(10), {Kind: model.FDFile}, sock(11)}},
		fakeProc{pid: 2, fdErr: errGone},
		fakeProc{pid: 3, fds: []model.FDEntry{{Kind: model.FDOther}, sock(30)}},
	}

	index := BuildInodeIndex(procs, nil)
	assert.Equal(t, model.InodeIndex{10: 1, 11: 1, 30: 3}, index)
}

func TestBuildInodeIndexLastWriteWins(t *testing.T) {
	procs := []ProcessHandle{
		fakeProc{pid: 1, fds: []model.FDEntry{sock(10)}},
		fakeProc{pid: 2, fds: []model.FDEntry{sock(10)}},
	}
	assert.Equal(t, 2, BuildInodeIndex(procs, nil)[10])
}

func TestListeningPortsSingleRecord(t *testing.T) {
	cfg := ScanConfig{
		Sockets: fakeSockets{tcp4: []model.Socket{listen(22, 100)}},
		Processes: fakeProcesses{procs: []ProcessHandle{
			fakeProc{pid: 50, fds: []model.FDEntry{sock(100)}, comm: "sshd",
				args: []string{"/usr/sbin/sshd", "-D"}, cwd: "/", uid: 0},
		}},
		Users:    fakeUsers{0: "root"},
		Registry: testRegistry(),
	}

	ports, err := ListeningPorts(cfg)
	require.NoError(t, err)
	require.Len(t, ports, 1)
	assert.Equal(t, model.PortInfo{
		Port:       22,
		Inode:      100,
		Host:       "0.0.0.0",
		PID:        50,
		Process:    "sshd",
		Command:    "/usr/sbin/sshd -D",
		Cwd:        "/",
		Service:    "ssh",
		Privileged: true,
		User:       "root",
	}, ports[0])
}

func TestListeningPortsDualStackCollapses(t *testing.T) {
	v6 := listen(8080, 201)
	v6.IPv6 = true
	v6.Address = "::"

	cfg := ScanConfig{
		Sockets: fakeSockets{tcp4: []model.Socket{listen(8080, 200)}, tcp6: []model.Socket{v6}},
		Processes: fakeProcesses{procs: []ProcessHandle{
			fakeProc{pid: 7, fds: []model.FDEntry{sock(200), sock(201)}, comm: "app"},
		}},
		Registry: testRegistry(),
	}

	ports, err := ListeningPorts(cfg)
	require.NoError(t, err)
	require.Len(t, ports, 1)
	assert.Equal(t, uint64(200), ports[0].Inode)
	assert.False(t, ports[0].IPv6)
	assert.False(t, ports[0].Privileged)
}

func TestCorrelateFiltersStatesAndDropsUnowned(t *testing.T) {
	established := listen(443, 2)
	established.State = model.StateEstablished

	sockets := []model.Socket{
		listen(80, 1),
		established,
		listen(81, 99), // no owner
		listen(80, 3),  // same port, different process
	}
	index := model.InodeIndex{1: 10, 2: 10, 3: 11}

	ports := Correlate(sockets, index, Enricher{Registry: testRegistry()})
	require.Len(t, ports, 2)
	assert.Equal(t, model.PortKey{Port: 80, PID: 10}, ports[0].Key())
	assert.Equal(t, model.PortKey{Port: 80, PID: 11}, ports[1].Key())
	assert.Equal(t, "http", ports[0].Service)
	assert.Empty(t, ports[0].Process, "no handle means no process fields")
}

func TestCorrelateKeepsInputOrder(t *testing.T) {
	sockets := []model.Socket{listen(9000, 1), listen(22, 2), listen(5432, 3)}
	index := model.InodeIndex{1: 3, 2: 1, 3: 2}

	ports := Correlate(sockets, index, Enricher{})
	require.Len(t, ports, 3)
	assert.Equal(t, []uint16{9000, 22, 5432}, []uint16{ports[0].Port, ports[1].Port, ports[2].Port})
}

func TestCorrelateAbsorbsMetadataFailures(t *testing.T) {
	procs := map[int]ProcessHandle{
		5: fakeProc{pid: 5, comm: "nginx", argsErr: errGone, cwdErr: errGone, uidErr: errGone},
		6: fakeProc{pid: 6, commErr: errGone, args: []string{"redis-server"}, cwd: "/var/lib/redis", uid: 999},
	}
	sockets := []model.Socket{listen(80, 1), listen(6379, 2)}
	index := model.InodeIndex{1: 5, 2: 6}

	ports := Correlate(sockets, index, Enricher{Processes: procs, Users: fakeUsers{}})
	require.Len(t, ports, 2)

	assert.Equal(t, "nginx", ports[0].Process)
	assert.Empty(t, ports[0].Command)
	assert.Empty(t, ports[0].Cwd)
	assert.Empty(t, ports[0].User)

	assert.Empty(t, ports[1].Process)
	assert.Equal(t, "redis-server", ports[1].Command)
	assert.Equal(t, "/var/lib/redis", ports[1].Cwd)
	assert.Empty(t, ports[1].User, "uid without a name stays empty")
}

func TestCorrelateInvariants(t *testing.T) {
	var sockets []model.Socket
	index := model.InodeIndex{}
	for i := 0; i < 200; i++ {
		port := uint16(1000 + i%37)
		inode := uint64(i + 1)
		sockets = append(sockets, listen(port, inode))
		if i%5 != 0 {
			index[inode] = 100 + i%3
		}
	}

	ports := Correlate(sockets, index, Enricher{})
	seen := map[model.PortKey]bool{}
	for _, p := range ports {
		assert.False(t, seen[p.Key()], "duplicate %v", p.Key())
		seen[p.Key()] = true
		assert.Equal(t, p.Port < 1024, p.Privileged)
		_, owned := index[p.Inode]
		assert.True(t, owned)
	}
}

func TestListeningPortsFatalErrors(t *testing.T) {
	ok := fakeProcesses{}

	_, err := ListeningPorts(ScanConfig{Sockets: fakeSockets{err4: errGone}, Processes: ok})
	assert.ErrorIs(t, err, errGone)

	_, err = ListeningPorts(ScanConfig{Sockets: fakeSockets{err6: errGone}, Processes: ok})
	assert.ErrorIs(t, err, errGone)

	_, err = ListeningPorts(ScanConfig{Sockets: fakeSockets{}, Processes: fakeProcesses{err: errGone}})
	assert.ErrorIs(t, err, errGone)
}

func TestListeningPortsIdempotent(t *testing.T) {
	cfg := ScanConfig{
		Sockets: fakeSockets{tcp4: []model.Socket{listen(22, 1), listen(80, 2)}},
		Processes: fakeProcesses{procs: []ProcessHandle{
			fakeProc{pid: 1, fds: []model.FDEntry{sock(1)}, comm: "sshd"},
			fakeProc{pid: 2, fds: []model.FDEntry{sock(2)}, comm: "nginx"},
		}},
		Registry: testRegistry(),
	}

	first, err := ListeningPorts(cfg)
	require.NoError(t, err)
	second, err := ListeningPorts(cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
