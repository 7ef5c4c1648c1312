//go:build linux

package proc

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pranshuparmar/lsport/pkg/model"
)

// TCP4 reads <root>/net/tcp.
func (f *FS) TCP4() ([]model.Socket, error) {
	return readSocketTable(filepath.Join(f.root, "net", "tcp"), false)
}

// TCP6 reads <root>/net/tcp6. A kernel without IPv6 has no such file, which
// is reported as an empty table.
func (f *FS) TCP6() ([]model.Socket, error) {
	sockets, err := readSocketTable(filepath.Join(f.root, "net", "tcp6"), true)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return sockets, err
}

func readSocketTable(path string, ipv6 bool) ([]model.Socket, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var sockets []model.Socket

	scanner := bufio.NewScanner(file)
	scanner.Scan() // skip header

	for scanner.Scan() {
		s, err := parseSocketLine(scanner.Text(), ipv6)
		if err != nil {
			continue
		}
		sockets = append(sockets, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return sockets, nil
}

// parseSocketLine parses one row of /proc/net/tcp{,6}:
//
//	sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
//	0: 0100007F:1F90 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 51234 ...
func parseSocketLine(line string, ipv6 bool) (model.Socket, error) {
	fields := strings.Fields(line)
	if len(fields) < 10 {
		return model.Socket{}, fmt.Errorf("short socket line: %d fields", len(fields))
	}

	addr, port, err := parseAddr(fields[1], ipv6)
	if err != nil {
		return model.Socket{}, err
	}
	state, err := parseState(fields[3])
	if err != nil {
		return model.Socket{}, err
	}
	inode, err := strconv.ParseUint(fields[9], 10, 64)
	if err != nil {
		return model.Socket{}, fmt.Errorf("invalid inode %q", fields[9])
	}

	return model.Socket{
		Port:    port,
		IPv6:    ipv6,
		Address: addr,
		State:   state,
		Inode:   inode,
	}, nil
}

func parseAddr(raw string, ipv6 bool) (string, uint16, error) {
	ipHex, portHex, ok := strings.Cut(raw, ":")
	if !ok {
		return "", 0, fmt.Errorf("invalid address %q", raw)
	}
	port, err := strconv.ParseUint(portHex, 16, 16)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q", portHex)
	}

	b, err := hex.DecodeString(ipHex)
	if err != nil {
		return "", 0, fmt.Errorf("invalid ip %q", ipHex)
	}

	if ipv6 {
		if len(b) != net.IPv6len {
			return "", 0, fmt.Errorf("invalid ipv6 length %d", len(b))
		}
		// /proc/net/tcp6 stores IPv6 as 4 little-endian 32-bit groups
		ip := make(net.IP, net.IPv6len)
		for i := 0; i < 4; i++ {
			ip[i*4+0] = b[i*4+3]
			ip[i*4+1] = b[i*4+2]
			ip[i*4+2] = b[i*4+1]
			ip[i*4+3] = b[i*4+0]
		}
		return ip.String(), uint16(port), nil
	}

	if len(b) != net.IPv4len {
		return "", 0, fmt.Errorf("invalid ipv4 length %d", len(b))
	}
	return net.IPv4(b[3], b[2], b[1], b[0]).String(), uint16(port), nil
}
